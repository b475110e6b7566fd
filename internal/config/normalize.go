package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeGemini()
	c.normalizeRateLimit()
	c.normalizeSegmenter()
	c.normalizeMixer()
	c.normalizeTools()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = defaultWorkDir
	}
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeGemini() {
	c.Gemini.APIKey = strings.TrimSpace(c.Gemini.APIKey)
	if c.Gemini.APIKey == "" {
		c.Gemini.APIKey = strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	}
	if strings.TrimSpace(c.Gemini.Model) == "" {
		c.Gemini.Model = defaultModel
	}
	if strings.TrimSpace(c.Gemini.TTSModel) == "" {
		c.Gemini.TTSModel = defaultTTSModel
	}
	if c.Gemini.TimeoutSeconds <= 0 {
		c.Gemini.TimeoutSeconds = defaultOracleTimeout
	}
	if c.Gemini.MaxRetries <= 0 {
		c.Gemini.MaxRetries = defaultMaxRetries
	}
	if c.Gemini.BackoffSeconds <= 0 {
		c.Gemini.BackoffSeconds = defaultBackoffSeconds
	}
}

func (c *Config) normalizeRateLimit() {
	if c.RateLimit.Calls <= 0 {
		c.RateLimit.Calls = defaultRateCalls
	}
	if c.RateLimit.WindowSeconds <= 0 {
		c.RateLimit.WindowSeconds = defaultRateWindow
	}
}

func (c *Config) normalizeSegmenter() {
	if c.Segmenter.MinSilenceMs <= 0 {
		c.Segmenter.MinSilenceMs = defaultMinSilenceMs
	}
	if c.Segmenter.SilenceThresholdOffsetDb == 0 {
		c.Segmenter.SilenceThresholdOffsetDb = defaultSilenceOffset
	}
	if c.Segmenter.TargetChunkLenMs <= 0 {
		c.Segmenter.TargetChunkLenMs = defaultTargetChunkMs
	}
}

func (c *Config) normalizeMixer() {
	if c.Mixer.DuckingAttenuationDb <= 0 {
		c.Mixer.DuckingAttenuationDb = defaultDuckingDb
	}
}

func (c *Config) normalizeTools() {
	if strings.TrimSpace(c.Tools.FFmpeg) == "" {
		c.Tools.FFmpeg = defaultFFmpeg
	}
	if strings.TrimSpace(c.Tools.FFprobe) == "" {
		c.Tools.FFprobe = defaultFFprobe
	}
	if strings.TrimSpace(c.Tools.YtDlp) == "" {
		c.Tools.YtDlp = defaultYtDlp
	}
	if c.Tools.TimeoutSeconds <= 0 {
		c.Tools.TimeoutSeconds = defaultToolTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
