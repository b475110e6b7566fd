package oracle

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"dubber/internal/ratelimit"
	"dubber/internal/services"
)

// recordedEntry is one captured log line with its flattened attributes.
type recordedEntry struct {
	message string
	attrs   map[string]string
}

// recordingHandler captures every emitted record, folding in attrs attached
// via Logger.With, so tests can assert on the final field set.
type recordingHandler struct {
	mu      *sync.Mutex
	entries *[]recordedEntry
	with    []slog.Attr
}

func newRecordingHandler() *recordingHandler {
	return &recordingHandler{mu: &sync.Mutex{}, entries: &[]recordedEntry{}}
}

func (h *recordingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *recordingHandler) Handle(_ context.Context, rec slog.Record) error {
	attrs := make(map[string]string)
	for _, attr := range h.with {
		attrs[attr.Key] = attr.Value.String()
	}
	rec.Attrs(func(attr slog.Attr) bool {
		attrs[attr.Key] = attr.Value.String()
		return true
	})
	h.mu.Lock()
	*h.entries = append(*h.entries, recordedEntry{message: rec.Message, attrs: attrs})
	h.mu.Unlock()
	return nil
}

func (h *recordingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.with = append(append([]slog.Attr(nil), h.with...), attrs...)
	return &clone
}

func (h *recordingHandler) WithGroup(string) slog.Handler { return h }

func (h *recordingHandler) find(message string) (recordedEntry, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, entry := range *h.entries {
		if entry.message == message {
			return entry, true
		}
	}
	return recordedEntry{}, false
}

// scriptedOracle fails a fixed number of times per operation before
// succeeding, recording every call it receives.
type scriptedOracle struct {
	failures   int
	failWith   error
	calls      int
	voices     []Voice
	segments   []DialogueSegment
	diarizeErr error
}

func (o *scriptedOracle) Translate(_ context.Context, req Request) (Result, error) {
	o.calls++
	o.voices = append(o.voices, req.Voice)
	if o.calls <= o.failures {
		return Result{}, o.failWith
	}
	return NewResult([]byte("ID3ok")), nil
}

func (o *scriptedOracle) DiarizeAndTranslate(context.Context, Request) ([]DialogueSegment, error) {
	if o.diarizeErr != nil {
		return nil, o.diarizeErr
	}
	return o.segments, nil
}

func (o *scriptedOracle) Synthesize(_ context.Context, _ string, voice Voice) (Result, error) {
	o.calls++
	o.voices = append(o.voices, voice)
	if o.calls <= o.failures {
		return Result{}, o.failWith
	}
	return NewResult([]byte{0x01, 0x02}), nil
}

func noSleep(context.Context, time.Duration) error { return nil }

func newTestClient(t *testing.T, backend Oracle, maxRetries int) (*RetryingClient, *ratelimit.Limiter) {
	t.Helper()
	limiter, err := ratelimit.New(1000, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	cfg := RetryConfig{MaxRetries: maxRetries, Backoff: time.Second}
	return NewRetryingClient(backend, limiter, cfg, nil, WithSleep(noSleep)), limiter
}

func TestTranslateRetriesThroughRateLimit(t *testing.T) {
	backend := &scriptedOracle{failures: 2, failWith: services.ErrRateLimited}
	client, limiter := newTestClient(t, backend, 3)

	res, err := client.Translate(t.Context(), Request{Voice: VoiceAuto})
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if res.Encoding != EncodingMP3 {
		t.Fatalf("encoding = %v, want MP3", res.Encoding)
	}
	if backend.calls != 3 {
		t.Fatalf("oracle calls = %d, want 3", backend.calls)
	}
	// Every attempt, including retries, consumes a limiter slot.
	if limiter.Recorded() != 3 {
		t.Fatalf("limiter slots = %d, want 3", limiter.Recorded())
	}
}

func TestTranslateNamedVoiceFallsBackToDefault(t *testing.T) {
	backend := &scriptedOracle{failures: 3, failWith: errors.New("synthesis refused")}
	client, limiter := newTestClient(t, backend, 3)

	res, err := client.Translate(t.Context(), Request{Voice: VoicePuck})
	if err != nil {
		t.Fatalf("expected fallback to succeed, got %v", err)
	}
	if len(res.Data) == 0 {
		t.Fatal("fallback returned empty result")
	}
	if backend.calls != 4 {
		t.Fatalf("oracle calls = %d, want 3 retries + 1 fallback", backend.calls)
	}
	for i := 0; i < 3; i++ {
		if backend.voices[i] != VoicePuck {
			t.Fatalf("attempt %d used voice %q, want Puck", i, backend.voices[i])
		}
	}
	if backend.voices[3] != DefaultVoice {
		t.Fatalf("fallback used voice %q, want %q", backend.voices[3], DefaultVoice)
	}
	if limiter.Recorded() != 4 {
		t.Fatalf("limiter slots = %d, want 4", limiter.Recorded())
	}
}

func TestTranslateFallbackFailureIsExhausted(t *testing.T) {
	backend := &scriptedOracle{failures: 10, failWith: services.ErrRateLimited}
	client, _ := newTestClient(t, backend, 3)

	_, err := client.Translate(t.Context(), Request{Voice: VoiceFenrir})
	if !errors.Is(err, services.ErrChunkExhausted) {
		t.Fatalf("expected ErrChunkExhausted, got %v", err)
	}
	if backend.calls != 4 {
		t.Fatalf("oracle calls = %d, want exactly 4 (3 + fallback)", backend.calls)
	}
}

func TestTranslateDefaultVoiceGetsNoFallback(t *testing.T) {
	backend := &scriptedOracle{failures: 10, failWith: errors.New("boom")}
	client, _ := newTestClient(t, backend, 3)

	_, err := client.Translate(t.Context(), Request{Voice: DefaultVoice})
	if !errors.Is(err, services.ErrChunkExhausted) {
		t.Fatalf("expected ErrChunkExhausted, got %v", err)
	}
	if backend.calls != 3 {
		t.Fatalf("oracle calls = %d, want 3 (no fallback for default voice)", backend.calls)
	}
}

func TestTranslateAutoVoiceGetsNoFallback(t *testing.T) {
	backend := &scriptedOracle{failures: 10, failWith: errors.New("boom")}
	client, _ := newTestClient(t, backend, 2)

	_, err := client.Translate(t.Context(), Request{Voice: VoiceAuto})
	if !errors.Is(err, services.ErrChunkExhausted) {
		t.Fatalf("expected ErrChunkExhausted, got %v", err)
	}
	if backend.calls != 2 {
		t.Fatalf("oracle calls = %d, want 2", backend.calls)
	}
}

func TestTranslateCancellationStopsRetries(t *testing.T) {
	backend := &scriptedOracle{failures: 10, failWith: errors.New("boom")}
	limiter, err := ratelimit.New(1000, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(t.Context())
	client := NewRetryingClient(backend, limiter, RetryConfig{MaxRetries: 5, Backoff: time.Second}, nil,
		WithSleep(func(context.Context, time.Duration) error {
			cancel()
			return ctx.Err()
		}))

	_, err = client.Translate(ctx, Request{Voice: VoicePuck})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if backend.calls != 1 {
		t.Fatalf("oracle calls = %d, want 1", backend.calls)
	}
}

func TestRetryWarningsCarryContextFields(t *testing.T) {
	backend := &scriptedOracle{failures: 1, failWith: services.ErrRateLimited}
	limiter, err := ratelimit.New(1000, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	handler := newRecordingHandler()
	client := NewRetryingClient(backend, limiter, RetryConfig{MaxRetries: 3, Backoff: time.Second},
		slog.New(handler), WithSleep(noSleep))

	ctx := services.WithRunID(t.Context(), "run-123")
	ctx = services.WithChunk(ctx, 7)
	ctx = services.WithStage(ctx, "translating")
	if _, err := client.Translate(ctx, Request{Voice: VoiceAuto}); err != nil {
		t.Fatalf("Translate: %v", err)
	}

	entry, ok := handler.find("oracle throttled the call")
	if !ok {
		t.Fatal("no throttle warning recorded")
	}
	if entry.attrs["run_id"] != "run-123" {
		t.Fatalf("run_id = %q, want run-123", entry.attrs["run_id"])
	}
	if entry.attrs["chunk"] != "7" {
		t.Fatalf("chunk = %q, want 7", entry.attrs["chunk"])
	}
	if entry.attrs["stage"] != "translating" {
		t.Fatalf("stage = %q, want translating", entry.attrs["stage"])
	}
}

func TestTranslateDialogueSynthesizesEachTurn(t *testing.T) {
	backend := &scriptedOracle{segments: []DialogueSegment{
		{Speaker: "Speaker 1", Category: "Young Man", Text: "hola"},
		{Speaker: "Speaker 2", Category: "Woman", Text: "adios"},
	}}
	client, _ := newTestClient(t, backend, 3)

	results, err := client.TranslateDialogue(t.Context(), Request{})
	if err != nil {
		t.Fatalf("TranslateDialogue: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	if backend.voices[0] != VoicePuck || backend.voices[1] != VoiceKore {
		t.Fatalf("voices = %v, want [Puck Kore]", backend.voices)
	}
}

func TestTranslateDialogueEmptySegmentsFallsBack(t *testing.T) {
	backend := &scriptedOracle{}
	client, _ := newTestClient(t, backend, 3)

	results, err := client.TranslateDialogue(t.Context(), Request{Voice: VoiceAuto})
	if err != nil {
		t.Fatalf("TranslateDialogue: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("results = %d, want 1 from single-voice fallback", len(results))
	}
	if backend.calls != 1 {
		t.Fatalf("oracle calls = %d, want 1 Translate call", backend.calls)
	}
}

func TestTranslateDialogueDiarizeFailureSurfaces(t *testing.T) {
	backend := &scriptedOracle{diarizeErr: services.ErrContentBlocked}
	client, _ := newTestClient(t, backend, 2)

	_, err := client.TranslateDialogue(t.Context(), Request{})
	if !errors.Is(err, services.ErrChunkExhausted) {
		t.Fatalf("expected ErrChunkExhausted, got %v", err)
	}
	if !errors.Is(err, services.ErrContentBlocked) {
		t.Fatalf("expected wrapped ErrContentBlocked, got %v", err)
	}
}
