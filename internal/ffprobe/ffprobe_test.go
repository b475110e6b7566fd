package ffprobe

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"dubber/internal/services"
)

type fakeExecutor struct {
	stdout []byte
	err    error
}

func (f *fakeExecutor) Run(context.Context, string, []string, []byte) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.stdout, nil
}

func writeStub(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("stub"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestInspectParsesStreams(t *testing.T) {
	payload := `{
		"streams": [
			{"index": 0, "codec_type": "video", "codec_name": "h264", "width": 1920, "height": 1080},
			{"index": 1, "codec_type": "audio", "codec_name": "aac", "channels": 2}
		],
		"format": {"filename": "in.mp4", "nb_streams": 2, "duration": "93.5"}
	}`
	prober := New("ffprobe", 10, nil, WithExecutor(&fakeExecutor{stdout: []byte(payload)}))

	result, err := prober.Inspect(t.Context(), writeStub(t, "in.mp4"))
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if !result.HasVideo() {
		t.Fatal("expected a video stream")
	}
	if result.AudioStreamCount() != 1 {
		t.Fatalf("audio streams = %d, want 1", result.AudioStreamCount())
	}
	if result.DurationMs() != 93500 {
		t.Fatalf("duration = %d ms, want 93500", result.DurationMs())
	}
}

func TestInspectMissingFile(t *testing.T) {
	prober := New("ffprobe", 10, nil, WithExecutor(&fakeExecutor{}))
	_, err := prober.Inspect(t.Context(), filepath.Join(t.TempDir(), "absent.mp4"))
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestInspectToolFailure(t *testing.T) {
	prober := New("ffprobe", 10, nil, WithExecutor(&fakeExecutor{err: errors.New("moov atom not found")}))
	_, err := prober.Inspect(t.Context(), writeStub(t, "bad.mp4"))
	if !errors.Is(err, services.ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}

func TestInspectGarbageJSON(t *testing.T) {
	prober := New("ffprobe", 10, nil, WithExecutor(&fakeExecutor{stdout: []byte("not json")}))
	_, err := prober.Inspect(t.Context(), writeStub(t, "in.mkv"))
	if !errors.Is(err, services.ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}

func TestResultDurationFallbacks(t *testing.T) {
	if got := (Result{Format: Format{Duration: "bad"}}).DurationSeconds(); got != 0 {
		t.Fatalf("invalid duration = %v, want 0", got)
	}
	if got := (Result{}).DurationSeconds(); got != 0 {
		t.Fatalf("missing duration = %v, want 0", got)
	}
}
