package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"dubber/internal/audio"
	"dubber/internal/download"
	"dubber/internal/drift"
	"dubber/internal/ffprobe"
	"dubber/internal/logging"
	"dubber/internal/mixer"
	"dubber/internal/mux"
	"dubber/internal/oracle"
	"dubber/internal/ratelimit"
	"dubber/internal/segment"
	"dubber/internal/services/gemini"
	"dubber/internal/workflow"
)

func newTranslateCommand(ctx *commandContext) *cobra.Command {
	var (
		output string
		lang   string
		voice  string
		mode   string
		duck   bool
	)

	cmd := &cobra.Command{
		Use:   "translate <input>",
		Short: "Translate a local file or URL into another language",
		Long: `Translate the speech of an audio or video source into the target language.

The input is a local media file or an http(s) URL fetched with yt-dlp. Video
inputs keep their video stream; the translated audio is remuxed in. Failed
chunks leave their region silent instead of aborting the run.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if strings.TrimSpace(lang) == "" {
				return fmt.Errorf("a target language is required (use --lang)")
			}
			selectedVoice, ok := oracle.ParseVoice(voice)
			if !ok {
				// The speech model accepts more voices than the built-in
				// list, so an unknown name is forwarded as-is.
				fmt.Fprintf(cmd.ErrOrStderr(),
					"Warning: voice %q is not in the known voice list (see `dubber voices`), proceeding anyway\n", voice)
				selectedVoice = oracle.Voice(strings.TrimSpace(voice))
			}
			dialogue, err := parseMode(mode)
			if err != nil {
				return err
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("initialize logging: %w", err)
			}

			limiter, err := ratelimit.New(cfg.RateLimit.Calls,
				time.Duration(cfg.RateLimit.WindowSeconds)*time.Second)
			if err != nil {
				return err
			}
			client, err := gemini.New(cmd.Context(), gemini.Config{
				APIKey:         cfg.Gemini.APIKey,
				Model:          cfg.Gemini.Model,
				TTSModel:       cfg.Gemini.TTSModel,
				TimeoutSeconds: cfg.Gemini.TimeoutSeconds,
			}, logger)
			if err != nil {
				return err
			}
			translator := oracle.NewRetryingClient(client, limiter, oracle.RetryConfig{
				MaxRetries: cfg.Gemini.MaxRetries,
				Backoff:    time.Duration(cfg.Gemini.BackoffSeconds) * time.Second,
			}, logger)

			deps := workflow.Deps{
				Store:  audio.NewStore(cfg.Tools.FFmpeg, cfg.Tools.TimeoutSeconds, logger),
				Prober: ffprobe.New(cfg.Tools.FFprobe, cfg.Tools.TimeoutSeconds, logger),
				Segmenter: segment.New(segment.Options{
					MinSilenceMs:             cfg.Segmenter.MinSilenceMs,
					SilenceThresholdOffsetDb: float64(cfg.Segmenter.SilenceThresholdOffsetDb),
					TargetChunkLenMs:         cfg.Segmenter.TargetChunkLenMs,
				}, logger),
				Translator: translator,
				Corrector:  drift.New(cfg.Tools.FFmpeg, cfg.Tools.TimeoutSeconds, logger),
				Mixer:      mixer.New(cfg.Mixer.DuckingAttenuationDb, logger),
				Muxer:      mux.New(cfg.Tools.FFmpeg, cfg.Tools.TimeoutSeconds, logger),
				Downloader: download.New(cfg.Tools.YtDlp, cfg.Tools.TimeoutSeconds, logger),
			}
			orch, err := workflow.New(cfg, deps, logger)
			if err != nil {
				return err
			}

			summary, err := orch.Run(cmd.Context(), workflow.Request{
				Input:          args[0],
				Output:         output,
				TargetLanguage: lang,
				Voice:          selectedVoice,
				Dialogue:       dialogue,
				Ducking:        duck,
			})
			if err != nil {
				return err
			}

			printSummary(cmd.OutOrStdout(), summary)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output path (derived from the input when omitted)")
	cmd.Flags().StringVarP(&lang, "lang", "l", "", "Target language, code or name (e.g. es, Spanish)")
	cmd.Flags().StringVar(&voice, "voice", "auto", "Synthesis voice (see `dubber voices`)")
	cmd.Flags().StringVar(&mode, "mode", "monologue", "Translation mode: monologue or dialogue")
	cmd.Flags().BoolVar(&duck, "ducking", false, "Mix the translation over the attenuated original audio")
	return cmd
}

func parseMode(mode string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "monologue":
		return false, nil
	case "dialogue":
		return true, nil
	default:
		return false, fmt.Errorf("unknown mode %q (expected monologue or dialogue)", mode)
	}
}
