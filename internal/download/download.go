// Package download fetches remote sources through yt-dlp. URLs are handed
// off wholesale; yt-dlp decides the extractor and the container, and reports
// the final file path on stdout.
package download

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"dubber/internal/audio"
	"dubber/internal/logging"
	"dubber/internal/services"
)

// OutputStem is the fixed basename for downloaded sources; the extension is
// chosen by yt-dlp.
const OutputStem = "downloaded_video"

// Option configures a Downloader.
type Option func(*Downloader)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec audio.Executor) Option {
	return func(d *Downloader) {
		if exec != nil {
			d.exec = exec
		}
	}
}

// Downloader wraps the yt-dlp binary.
type Downloader struct {
	ytdlp   string
	timeout time.Duration
	logger  *slog.Logger
	exec    audio.Executor
}

// New constructs a Downloader around the given yt-dlp binary.
func New(ytdlp string, timeoutSeconds int, logger *slog.Logger, opts ...Option) *Downloader {
	if strings.TrimSpace(ytdlp) == "" {
		ytdlp = "yt-dlp"
	}
	timeout := time.Duration(timeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	downloader := &Downloader{
		ytdlp:   ytdlp,
		timeout: timeout,
		logger:  logging.NewComponentLogger(logger, "download"),
		exec:    audio.CommandExecutor(),
	}
	for _, opt := range opts {
		opt(downloader)
	}
	return downloader
}

// IsURL reports whether the input names a remote source rather than a local
// file.
func IsURL(input string) bool {
	lower := strings.ToLower(strings.TrimSpace(input))
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Fetch downloads url into dir and returns the path of the downloaded file.
// With preferVideo the best muxed video is requested so the result can be
// remuxed later; otherwise audio-only formats are preferred.
func (d *Downloader) Fetch(ctx context.Context, url, dir string, preferVideo bool) (string, error) {
	format := "bestaudio/best"
	if preferVideo {
		format = "bv*+ba/b"
	}
	args := []string{
		"--no-playlist",
		"--force-overwrites",
		"--quiet",
		"--no-simulate",
		"--print", "after_move:filepath",
		"-f", format,
		"-o", filepath.Join(dir, OutputStem+".%(ext)s"),
		url,
	}

	runCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	out, err := d.exec.Run(runCtx, d.ytdlp, args, nil)
	if err != nil {
		return "", services.Wrap(services.ErrDownload, "downloading", "yt-dlp", url, err)
	}
	path := lastLine(string(out))
	if path == "" {
		return "", services.Wrap(services.ErrDownload, "downloading", "yt-dlp", url+": no file path reported", nil)
	}
	logging.WithContext(ctx, d.logger).Info("source downloaded",
		logging.String("url", url),
		logging.String("path", path))
	return path, nil
}

func lastLine(out string) string {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
