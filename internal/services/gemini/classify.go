package gemini

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/genai"

	"dubber/internal/services"
)

// classify maps a transport error onto the shared sentinel taxonomy so the
// retry layer can log throttling apart from other failures.
func classify(err error, op string) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return services.Wrap(services.ErrTimeout, "translating", op, "call timed out", err)
	case errors.Is(err, context.Canceled):
		return err
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == 429:
			return services.Wrap(services.ErrRateLimited, "translating", op, "", err)
		case apiErr.Code >= 500:
			return services.Wrap(services.ErrTransient, "translating", op, "", err)
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "429"),
		strings.Contains(msg, "resource_exhausted"),
		strings.Contains(msg, "rate limit"),
		strings.Contains(msg, "quota"):
		return services.Wrap(services.ErrRateLimited, "translating", op, "", err)
	case strings.Contains(msg, "blocked"),
		strings.Contains(msg, "safety"),
		strings.Contains(msg, "prohibited"):
		return services.Wrap(services.ErrContentBlocked, "translating", op, "", err)
	default:
		return services.Wrap(services.ErrTransient, "translating", op, "", err)
	}
}
