package config

const (
	defaultWorkDir        = "~/.local/share/dubber/work"
	defaultLogDir         = "~/.local/share/dubber/logs"
	defaultModel          = "gemini-2.5-flash"
	defaultTTSModel       = "gemini-2.5-flash-preview-tts"
	defaultOracleTimeout  = 180
	defaultMaxRetries     = 3
	defaultBackoffSeconds = 5
	defaultRateCalls      = 10
	defaultRateWindow     = 60
	defaultMinSilenceMs   = 500
	defaultSilenceOffset  = -14
	defaultTargetChunkMs  = 45000
	defaultDuckingDb      = 15
	defaultFFmpeg         = "ffmpeg"
	defaultFFprobe        = "ffprobe"
	defaultYtDlp          = "yt-dlp"
	defaultToolTimeout    = 600
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir: defaultWorkDir,
			LogDir:  defaultLogDir,
		},
		Gemini: Gemini{
			Model:          defaultModel,
			TTSModel:       defaultTTSModel,
			TimeoutSeconds: defaultOracleTimeout,
			MaxRetries:     defaultMaxRetries,
			BackoffSeconds: defaultBackoffSeconds,
		},
		RateLimit: RateLimit{
			Calls:         defaultRateCalls,
			WindowSeconds: defaultRateWindow,
		},
		Segmenter: Segmenter{
			MinSilenceMs:             defaultMinSilenceMs,
			SilenceThresholdOffsetDb: defaultSilenceOffset,
			TargetChunkLenMs:         defaultTargetChunkMs,
		},
		Mixer: Mixer{
			DuckingAttenuationDb: defaultDuckingDb,
		},
		Tools: Tools{
			FFmpeg:         defaultFFmpeg,
			FFprobe:        defaultFFprobe,
			YtDlp:          defaultYtDlp,
			TimeoutSeconds: defaultToolTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
