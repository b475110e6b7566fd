// Package drift adjusts the tempo of translated speech so each chunk lands
// back on the source timeline. Correction is best effort: when ffmpeg fails
// the uncorrected audio is used and the drift is absorbed downstream.
package drift

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"dubber/internal/audio"
	"dubber/internal/logging"
)

// Tempo factor limits. A required factor outside the sane range is clamped
// to the conservative range instead; heavily clamped chunks still drift but
// stay intelligible.
const (
	saneFactorMin = 0.25
	saneFactorMax = 4.0
	clampedMin    = 0.5
	clampedMax    = 2.0
)

// noopThreshold is the relative deviation below which correction is skipped.
const noopThreshold = 0.01

// Option configures a Corrector.
type Option func(*Corrector)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec audio.Executor) Option {
	return func(c *Corrector) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// Corrector retimes tracks through ffmpeg's atempo filter.
type Corrector struct {
	ffmpeg  string
	timeout time.Duration
	logger  *slog.Logger
	exec    audio.Executor
}

// New constructs a Corrector around the given ffmpeg binary.
func New(ffmpeg string, timeoutSeconds int, logger *slog.Logger, opts ...Option) *Corrector {
	if strings.TrimSpace(ffmpeg) == "" {
		ffmpeg = "ffmpeg"
	}
	timeout := time.Duration(timeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	corrector := &Corrector{
		ffmpeg:  ffmpeg,
		timeout: timeout,
		logger:  logging.NewComponentLogger(logger, "drift"),
		exec:    audio.CommandExecutor(),
	}
	for _, opt := range opts {
		opt(corrector)
	}
	return corrector
}

// Correct retimes track toward targetMs. It never fails: when the deviation
// is under one percent, the target is invalid, or ffmpeg errors out, the
// input comes back unchanged.
func (c *Corrector) Correct(ctx context.Context, track audio.Track, targetMs int) audio.Track {
	current := track.DurationMs()
	if current == 0 || targetMs <= 0 {
		return track
	}

	factor := float64(current) / float64(targetMs)
	deviation := factor - 1
	if deviation < 0 {
		deviation = -deviation
	}
	if deviation < noopThreshold {
		return track
	}
	logger := logging.WithContext(ctx, c.logger)

	applied := factor
	if factor < saneFactorMin || factor > saneFactorMax {
		applied = clampFactor(factor)
		logger.Warn("tempo factor outside sane range, clamping",
			logging.Float64("factor", factor),
			logging.Float64("clamped", applied))
	}

	filter := atempoChain(applied)
	args := []string{
		"-v", "error",
		"-f", "s16le",
		"-ar", strconv.Itoa(track.SampleRate()),
		"-ac", strconv.Itoa(track.ChannelCount()),
		"-i", "pipe:0",
		"-filter:a", filter,
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		"-ac", strconv.Itoa(track.ChannelCount()),
		"-ar", strconv.Itoa(track.SampleRate()),
		"pipe:1",
	}

	runCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	data, err := c.exec.Run(runCtx, c.ffmpeg, args, track.RawBytes())
	if err != nil || len(data) == 0 {
		logger.Warn("tempo correction failed, keeping uncorrected audio",
			logging.Int("duration_ms", current),
			logging.Int("target_ms", targetMs),
			logging.Error(err))
		return track
	}

	corrected := audio.FromRaw(data, track.SampleRate(), track.ChannelCount())
	logger.Debug("tempo corrected",
		logging.Int("from_ms", current),
		logging.Int("to_ms", corrected.DurationMs()),
		logging.Int("target_ms", targetMs),
		logging.String("filter", filter))
	return corrected
}

func clampFactor(factor float64) float64 {
	if factor < clampedMin {
		return clampedMin
	}
	if factor > clampedMax {
		return clampedMax
	}
	return factor
}

// atempoChain decomposes a tempo factor into a chain of atempo filters, each
// within the filter's supported [0.5, 2.0] range.
func atempoChain(factor float64) string {
	var stages []string
	for factor > 2.0 {
		stages = append(stages, "atempo=2.0")
		factor /= 2.0
	}
	for factor < 0.5 {
		stages = append(stages, "atempo=0.5")
		factor /= 0.5
	}
	stages = append(stages, fmt.Sprintf("atempo=%.6f", factor))
	return strings.Join(stages, ",")
}
