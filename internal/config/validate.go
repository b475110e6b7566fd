package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateGemini(); err != nil {
		return err
	}
	if err := c.validateRateLimit(); err != nil {
		return err
	}
	if err := c.validateSegmenter(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateGemini() error {
	if c.Gemini.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/dubber/config.toml"
		}
		return fmt.Errorf("gemini.api_key is required. Set GEMINI_API_KEY env var or edit %s (create with 'dubber config init')", defaultPath)
	}
	return nil
}

func (c *Config) validateRateLimit() error {
	if c.RateLimit.Calls < 1 {
		return errors.New("rate_limit.calls must be at least 1")
	}
	if c.RateLimit.WindowSeconds < 1 {
		return errors.New("rate_limit.window_seconds must be at least 1")
	}
	return nil
}

func (c *Config) validateSegmenter() error {
	if c.Segmenter.SilenceThresholdOffsetDb >= 0 {
		return errors.New("segmenter.silence_threshold_offset_db must be negative (relative to track loudness)")
	}
	if c.Segmenter.MinSilenceMs < 50 {
		return errors.New("segmenter.min_silence_ms must be at least 50")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
		return nil
	default:
		return fmt.Errorf("logging.format must be \"console\" or \"json\", got %q", c.Logging.Format)
	}
}
