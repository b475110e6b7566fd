// Package mux remuxes the translated audio back into the source video
// container. The video stream is copied untouched; only the audio stream is
// re-encoded.
package mux

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"dubber/internal/audio"
	"dubber/internal/logging"
	"dubber/internal/services"
)

// Option configures a Muxer.
type Option func(*Muxer)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec audio.Executor) Option {
	return func(m *Muxer) {
		if exec != nil {
			m.exec = exec
		}
	}
}

// Muxer combines a video file and an audio file into one output container.
type Muxer struct {
	ffmpeg  string
	timeout time.Duration
	logger  *slog.Logger
	exec    audio.Executor
}

// New constructs a Muxer around the given ffmpeg binary.
func New(ffmpeg string, timeoutSeconds int, logger *slog.Logger, opts ...Option) *Muxer {
	if strings.TrimSpace(ffmpeg) == "" {
		ffmpeg = "ffmpeg"
	}
	timeout := time.Duration(timeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	muxer := &Muxer{
		ffmpeg:  ffmpeg,
		timeout: timeout,
		logger:  logging.NewComponentLogger(logger, "mux"),
		exec:    audio.CommandExecutor(),
	}
	for _, opt := range opts {
		opt(muxer)
	}
	return muxer
}

// Mux writes outputPath containing the video stream of videoPath and the
// audio stream of audioPath. The shorter stream bounds the output.
func (m *Muxer) Mux(ctx context.Context, videoPath, audioPath, outputPath string) error {
	if _, err := os.Stat(videoPath); err != nil {
		return services.Wrap(services.ErrMux, "muxing", "stat video", videoPath, err)
	}
	if _, err := os.Stat(audioPath); err != nil {
		return services.Wrap(services.ErrMux, "muxing", "stat audio", audioPath, err)
	}

	args := []string{
		"-v", "error",
		"-y",
		"-i", videoPath,
		"-i", audioPath,
		"-c:v", "copy",
		"-c:a", "aac",
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-shortest",
		outputPath,
	}

	runCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	if _, err := m.exec.Run(runCtx, m.ffmpeg, args, nil); err != nil {
		return services.Wrap(services.ErrMux, "muxing", "remux", outputPath, err)
	}
	logging.WithContext(ctx, m.logger).Info("video remuxed",
		logging.String("video", videoPath),
		logging.String("output", outputPath))
	return nil
}
