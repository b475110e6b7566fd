package ffprobe

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"dubber/internal/audio"
	"dubber/internal/logging"
	"dubber/internal/services"
)

// Result is the parsed ffprobe inspection of one container.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream describes a single stream in the container.
type Stream struct {
	Index      int    `json:"index"`
	CodecName  string `json:"codec_name"`
	CodecType  string `json:"codec_type"`
	Duration   string `json:"duration"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	SampleRate string `json:"sample_rate"`
	Channels   int    `json:"channels"`
}

// Format captures container-level metadata.
type Format struct {
	Filename   string `json:"filename"`
	NBStreams  int    `json:"nb_streams"`
	Duration   string `json:"duration"`
	FormatName string `json:"format_name"`
}

// HasVideo reports whether the container carries at least one video stream.
func (r Result) HasVideo() bool {
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, "video") {
			return true
		}
	}
	return false
}

// AudioStreamCount returns the number of audio streams discovered.
func (r Result) AudioStreamCount() int {
	count := 0
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, "audio") {
			count++
		}
	}
	return count
}

// DurationSeconds returns the container duration in seconds, or 0 when the
// container does not report one.
func (r Result) DurationSeconds() float64 {
	parsed := parseFloat(r.Format.Duration)
	if math.IsNaN(parsed) || parsed < 0 {
		return 0
	}
	return parsed
}

// DurationMs returns the container duration in whole milliseconds.
func (r Result) DurationMs() int {
	return int(r.DurationSeconds() * 1000)
}

// Option configures a Prober.
type Option func(*Prober)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec audio.Executor) Option {
	return func(p *Prober) {
		if exec != nil {
			p.exec = exec
		}
	}
}

// Prober wraps the ffprobe binary.
type Prober struct {
	binary  string
	timeout time.Duration
	logger  *slog.Logger
	exec    audio.Executor
}

// New constructs a Prober around the given ffprobe binary.
func New(binary string, timeoutSeconds int, logger *slog.Logger, opts ...Option) *Prober {
	if strings.TrimSpace(binary) == "" {
		binary = "ffprobe"
	}
	timeout := time.Duration(timeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = time.Minute
	}
	prober := &Prober{
		binary:  binary,
		timeout: timeout,
		logger:  logging.NewComponentLogger(logger, "ffprobe"),
		exec:    audio.CommandExecutor(),
	}
	for _, opt := range opts {
		opt(prober)
	}
	return prober
}

// Inspect probes the container at path and decodes the JSON response.
func (p *Prober) Inspect(ctx context.Context, path string) (Result, error) {
	if _, err := os.Stat(path); err != nil {
		return Result{}, services.Wrap(services.ErrNotFound, "loading", "probe", path, err)
	}
	args := []string{
		"-v", "error",
		"-hide_banner",
		"-show_format",
		"-show_streams",
		"-of", "json",
		"--", path,
	}
	runCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	output, err := p.exec.Run(runCtx, p.binary, args, nil)
	if err != nil {
		return Result{}, services.Wrap(services.ErrDecode, "loading", "probe", path, err)
	}
	var result Result
	if err := json.Unmarshal(output, &result); err != nil {
		return Result{}, services.Wrap(services.ErrDecode, "loading", "probe parse", path, err)
	}
	p.logger.Debug("container inspected",
		logging.String("path", path),
		logging.Bool("video", result.HasVideo()),
		logging.Int("duration_ms", result.DurationMs()))
	return result, nil
}

func parseFloat(value string) float64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0
	}
	if parsed, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return parsed
	}
	return math.NaN()
}
