package services

import "context"

type contextKey string

const (
	stageKey   contextKey = "stage"
	chunkKey   contextKey = "chunk"
	runIDKey   contextKey = "run_id"
	unsetChunk            = -1
)

// WithStage annotates ctx with the active pipeline stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the pipeline stage recorded on ctx, if any.
func StageFromContext(ctx context.Context) (string, bool) {
	stage, ok := ctx.Value(stageKey).(string)
	return stage, ok && stage != ""
}

// WithChunk annotates ctx with the chunk index being processed.
func WithChunk(ctx context.Context, index int) context.Context {
	return context.WithValue(ctx, chunkKey, index)
}

// ChunkFromContext returns the chunk index recorded on ctx, if any.
func ChunkFromContext(ctx context.Context) (int, bool) {
	index, ok := ctx.Value(chunkKey).(int)
	if !ok || index == unsetChunk {
		return 0, false
	}
	return index, true
}

// WithRunID annotates ctx with the pipeline run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext returns the run identifier recorded on ctx, if any.
func RunIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(runIDKey).(string)
	return id, ok && id != ""
}
