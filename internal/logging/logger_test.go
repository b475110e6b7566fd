package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"dubber/internal/services"
)

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	lvl := new(slog.LevelVar)
	lvl.Set(slog.LevelDebug)
	return slog.New(newConsoleHandler(buf, lvl, false))
}

func TestConsoleHandlerRendersStageAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	logger.Info("chunk translated", String(FieldStage, "chunks"), Int(FieldChunk, 2), Duration("elapsed", 0))

	line := buf.String()
	if !strings.Contains(line, "INF") {
		t.Fatalf("missing level tag: %q", line)
	}
	if !strings.Contains(line, "[chunks]") {
		t.Fatalf("missing stage tag: %q", line)
	}
	if !strings.Contains(line, "chunk=2") {
		t.Fatalf("missing chunk attr: %q", line)
	}
}

func TestConsoleHandlerQuotesValuesWithSpaces(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	logger.Warn("fallback voice", String("voice", "Kore default"))
	if !strings.Contains(buf.String(), `voice="Kore default"`) {
		t.Fatalf("expected quoted value: %q", buf.String())
	}
}

func TestWithContextAddsFields(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	ctx := services.WithStage(t.Context(), "reconstructing")
	ctx = services.WithChunk(ctx, 7)
	WithContext(ctx, logger).Info("overlay placed")

	line := buf.String()
	if !strings.Contains(line, "[reconstructing]") || !strings.Contains(line, "chunk=7") {
		t.Fatalf("context fields missing: %q", line)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewNopDiscards(t *testing.T) {
	NewNop().Info("should not panic")
}
