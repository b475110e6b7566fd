package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"dubber/internal/logging"
	"dubber/internal/services"
)

// Executor abstracts subprocess execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, stdin []byte) (stdout []byte, err error)
}

// CommandExecutor returns the default Executor backed by real subprocesses.
func CommandExecutor() Executor { return commandExecutor{} }

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string, stdin []byte) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}
	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf
	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(errBuf.String())
		if detail != "" {
			return nil, fmt.Errorf("%s: %w: %s", binary, err, truncate(detail, 400))
		}
		return nil, fmt.Errorf("%s: %w", binary, err)
	}
	return out.Bytes(), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Option configures a Store.
type Option func(*Store)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(s *Store) {
		if exec != nil {
			s.exec = exec
		}
	}
}

// Store decodes and encodes audio through ffmpeg, translating between media
// containers on disk and the canonical in-memory PCM format.
type Store struct {
	ffmpeg  string
	timeout time.Duration
	logger  *slog.Logger
	exec    Executor
}

// NewStore constructs a Store around the given ffmpeg binary.
func NewStore(ffmpeg string, timeoutSeconds int, logger *slog.Logger, opts ...Option) *Store {
	if strings.TrimSpace(ffmpeg) == "" {
		ffmpeg = "ffmpeg"
	}
	timeout := time.Duration(timeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	store := &Store{
		ffmpeg:  ffmpeg,
		timeout: timeout,
		logger:  logging.NewComponentLogger(logger, "audio-store"),
		exec:    commandExecutor{},
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

var rawOutputArgs = []string{
	"-f", "s16le",
	"-acodec", "pcm_s16le",
	"-ac", strconv.Itoa(Channels),
	"-ar", strconv.Itoa(SampleRate),
}

// Load decodes the audio track of any container ffmpeg understands into a
// canonical Track. Video inputs have their audio stream extracted.
func (s *Store) Load(ctx context.Context, path string) (Track, error) {
	if _, err := os.Stat(path); err != nil {
		return Track{}, services.Wrap(services.ErrNotFound, "loading", "stat", path, err)
	}
	args := append([]string{"-v", "error", "-i", path, "-vn"}, rawOutputArgs...)
	args = append(args, "pipe:1")
	data, err := s.run(ctx, args, nil)
	if err != nil {
		return Track{}, services.Wrap(services.ErrDecode, "loading", "decode", path, err)
	}
	if len(data) == 0 {
		return Track{}, services.Wrap(services.ErrDecode, "loading", "decode", path+": no audio data", nil)
	}
	track := NewTrack(samplesFromBytes(data), SampleRate, Channels)
	logging.WithContext(ctx, s.logger).Debug("decoded input",
		logging.String("path", path),
		logging.Int("duration_ms", track.DurationMs()))
	return track, nil
}

// DecodeBytes decodes a self-describing audio payload (WAV, MP3, ...) into a
// canonical Track. Raw PCM payloads must be wrapped with WrapPCM first.
func (s *Store) DecodeBytes(ctx context.Context, payload []byte) (Track, error) {
	if len(payload) == 0 {
		return Track{}, services.Wrap(services.ErrDecode, "", "decode bytes", "empty payload", nil)
	}
	args := append([]string{"-v", "error", "-i", "pipe:0", "-vn"}, rawOutputArgs...)
	args = append(args, "pipe:1")
	data, err := s.run(ctx, args, payload)
	if err != nil {
		return Track{}, services.Wrap(services.ErrDecode, "", "decode bytes", "", err)
	}
	return NewTrack(samplesFromBytes(data), SampleRate, Channels), nil
}

// Save encodes the track to path; the container and codec are inferred from
// the file extension by ffmpeg.
func (s *Store) Save(ctx context.Context, track Track, path string) error {
	args := append([]string{"-v", "error", "-y"}, rawInputArgs(track)...)
	args = append(args, path)
	if _, err := s.run(ctx, args, samplesToBytes(track.Samples())); err != nil {
		return services.Wrap(services.ErrExternalTool, "export", "encode", path, err)
	}
	logging.WithContext(ctx, s.logger).Debug("saved track",
		logging.String("path", path),
		logging.Int("duration_ms", track.DurationMs()))
	return nil
}

// EncodeBytes encodes the track into the named container format (e.g. "mp3",
// "wav") and returns the bytes.
func (s *Store) EncodeBytes(ctx context.Context, track Track, format string) ([]byte, error) {
	if strings.TrimSpace(format) == "" {
		return nil, errors.New("encode bytes: format required")
	}
	args := append([]string{"-v", "error"}, rawInputArgs(track)...)
	args = append(args, "-f", format, "pipe:1")
	data, err := s.run(ctx, args, samplesToBytes(track.Samples()))
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "", "encode bytes", format, err)
	}
	return data, nil
}

func rawInputArgs(track Track) []string {
	return []string{
		"-f", "s16le",
		"-ar", strconv.Itoa(track.SampleRate()),
		"-ac", strconv.Itoa(track.ChannelCount()),
		"-i", "pipe:0",
	}
}

func (s *Store) run(ctx context.Context, args []string, stdin []byte) ([]byte, error) {
	runCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.exec.Run(runCtx, s.ffmpeg, args, stdin)
}
