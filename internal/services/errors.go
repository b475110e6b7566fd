package services

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel markers used to classify failures across pipeline stages. Wrap tags
// an error with one of these so callers can decide between aborting the run
// and degrading gracefully without inspecting message text.
var (
	ErrNotFound        = errors.New("input not found")
	ErrDownload        = errors.New("download failure")
	ErrDecode          = errors.New("decode failure")
	ErrRateLimited     = errors.New("oracle rate limited")
	ErrContentBlocked  = errors.New("oracle content blocked")
	ErrChunkExhausted  = errors.New("chunk retries exhausted")
	ErrDriftCorrection = errors.New("drift correction failure")
	ErrMux             = errors.New("mux failure")
	ErrExternalTool    = errors.New("external tool error")
	ErrConfiguration   = errors.New("configuration error")
	ErrTimeout         = errors.New("timeout")
	ErrTransient       = errors.New("transient failure")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Fatal reports whether err must abort the whole run. Only missing input,
// download, decode, and configuration failures qualify; everything else is
// contained at the chunk or export stage.
func Fatal(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrDownload),
		errors.Is(err, ErrDecode),
		errors.Is(err, ErrConfiguration):
		return true
	default:
		return false
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
