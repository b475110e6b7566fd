package oracle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"dubber/internal/logging"
	"dubber/internal/ratelimit"
	"dubber/internal/services"
)

// RetryConfig bounds the retry behavior of a RetryingClient.
type RetryConfig struct {
	// MaxRetries is the total number of attempts per call, not counting the
	// single default-voice fallback attempt.
	MaxRetries int
	// Backoff is the pause between failed attempts.
	Backoff time.Duration
}

// RetryOption customizes a RetryingClient.
type RetryOption func(*RetryingClient)

// WithSleep overrides the inter-attempt sleeper (for tests).
func WithSleep(sleep func(context.Context, time.Duration) error) RetryOption {
	return func(c *RetryingClient) {
		if sleep != nil {
			c.sleep = sleep
		}
	}
}

// RetryingClient wraps an Oracle with the rate limiter and the retry policy.
// A limiter slot is acquired before every single attempt, so retries count
// against the same budget as fresh calls. After all attempts with an
// explicitly named non-default voice fail, exactly one more attempt is made
// with the default voice before the failure is surfaced.
type RetryingClient struct {
	oracle  Oracle
	limiter *ratelimit.Limiter
	cfg     RetryConfig
	logger  *slog.Logger
	sleep   func(context.Context, time.Duration) error
}

// NewRetryingClient wraps oracle with retry and rate limiting.
func NewRetryingClient(oracle Oracle, limiter *ratelimit.Limiter, cfg RetryConfig, logger *slog.Logger, opts ...RetryOption) *RetryingClient {
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = 3
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 5 * time.Second
	}
	client := &RetryingClient{
		oracle:  oracle,
		limiter: limiter,
		cfg:     cfg,
		logger:  logging.NewComponentLogger(logger, "oracle"),
		sleep:   ratelimit.SleepWithContext,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Translate runs req through the oracle under the retry policy.
func (c *RetryingClient) Translate(ctx context.Context, req Request) (Result, error) {
	return c.callWithFallback(ctx, req.Voice, "translate", func(callCtx context.Context, voice Voice) (Result, error) {
		attempt := req
		attempt.Voice = voice
		return c.oracle.Translate(callCtx, attempt)
	})
}

// Synthesize renders text in the given voice under the retry policy.
func (c *RetryingClient) Synthesize(ctx context.Context, text string, voice Voice) (Result, error) {
	return c.callWithFallback(ctx, voice, "synthesize", func(callCtx context.Context, v Voice) (Result, error) {
		return c.oracle.Synthesize(callCtx, text, v)
	})
}

// TranslateDialogue diarizes the chunk and synthesizes each speaker turn in a
// voice matching its category. When diarization finds no usable turns the
// chunk falls back to single-voice translation. A turn that fails synthesis
// even after retries is dropped with a warning; the remaining turns still
// come back in order.
func (c *RetryingClient) TranslateDialogue(ctx context.Context, req Request) ([]Result, error) {
	segments, err := c.diarize(ctx, req)
	if err != nil {
		return nil, err
	}
	logger := logging.WithContext(ctx, c.logger)
	if len(segments) == 0 {
		logger.Warn("diarization found no speaker turns, falling back to single voice")
		res, err := c.Translate(ctx, req)
		if err != nil {
			return nil, err
		}
		return []Result{res}, nil
	}

	results := make([]Result, 0, len(segments))
	for i, seg := range segments {
		voice := VoiceForCategory(seg.Category)
		res, err := c.Synthesize(ctx, seg.Text, voice)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			logger.Warn("dropping speaker turn after failed synthesis",
				logging.Int("segment", i),
				logging.String("speaker", seg.Speaker),
				logging.Error(err))
			continue
		}
		results = append(results, res)
	}
	return results, nil
}

// diarize runs DiarizeAndTranslate under the retry policy. There is no voice
// fallback here because diarization produces text, not speech.
func (c *RetryingClient) diarize(ctx context.Context, req Request) ([]DialogueSegment, error) {
	var segments []DialogueSegment
	_, err := c.attempt(ctx, "diarize", VoiceAuto, func(callCtx context.Context, _ Voice) (Result, error) {
		segs, err := c.oracle.DiarizeAndTranslate(callCtx, req)
		segments = segs
		return Result{}, err
	})
	if err != nil {
		return nil, err
	}
	return segments, nil
}

func (c *RetryingClient) callWithFallback(ctx context.Context, voice Voice, op string, fn func(context.Context, Voice) (Result, error)) (Result, error) {
	res, err := c.attempt(ctx, op, voice, fn)
	if err == nil {
		return res, nil
	}
	if ctx.Err() != nil {
		return Result{}, err
	}
	if voice.IsAuto() || voice == DefaultVoice {
		return Result{}, err
	}

	// One last attempt with the default voice before giving up on the chunk.
	logging.WithContext(ctx, c.logger).Warn("retries exhausted, attempting fallback voice",
		logging.String("operation", op),
		logging.String("requested_voice", voice.String()),
		logging.String("fallback_voice", DefaultVoice.String()))
	if acquireErr := c.limiter.Acquire(ctx); acquireErr != nil {
		return Result{}, acquireErr
	}
	res, fallbackErr := fn(ctx, DefaultVoice)
	if fallbackErr == nil {
		return res, nil
	}
	return Result{}, services.Wrap(services.ErrChunkExhausted, "", op,
		fmt.Sprintf("fallback voice %s also failed", DefaultVoice), fallbackErr)
}

// attempt runs fn up to MaxRetries times, acquiring a limiter slot before
// each try. Rate-limit rejections and other failures both consume attempts
// but are logged apart so throttling is visible in the run log.
func (c *RetryingClient) attempt(ctx context.Context, op string, voice Voice, fn func(context.Context, Voice) (Result, error)) (Result, error) {
	logger := logging.WithContext(ctx, c.logger)
	var lastErr error
	for try := 1; try <= c.cfg.MaxRetries; try++ {
		if err := c.limiter.Acquire(ctx); err != nil {
			return Result{}, err
		}
		res, err := fn(ctx, voice)
		if err == nil {
			return res, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return Result{}, err
		}

		fields := []any{
			logging.String("operation", op),
			logging.Int("attempt", try),
			logging.Int("max_attempts", c.cfg.MaxRetries),
			logging.Error(err),
		}
		if errors.Is(err, services.ErrRateLimited) {
			logger.Warn("oracle throttled the call", fields...)
		} else {
			logger.Warn("oracle call failed", fields...)
		}

		if try < c.cfg.MaxRetries {
			if err := c.sleep(ctx, c.cfg.Backoff); err != nil {
				return Result{}, err
			}
		}
	}
	return Result{}, services.Wrap(services.ErrChunkExhausted, "", op,
		fmt.Sprintf("after %d attempts", c.cfg.MaxRetries), lastErr)
}
