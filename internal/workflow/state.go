package workflow

import (
	"context"

	"dubber/internal/services"
)

// State names the pipeline stage a run is currently in.
type State string

const (
	StateIdle           State = "idle"
	StateLoading        State = "loading"
	StateSegmenting     State = "segmenting"
	StateTranslating    State = "translating"
	StateReconstructing State = "reconstructing"
	StateMixing         State = "mixing"
	StateExporting      State = "exporting"
	StateDone           State = "done"
	StateFailed         State = "failed"
)

// Status is a point-in-time snapshot of a run.
type Status struct {
	State       State
	Chunk       int // 1-based chunk currently translating, 0 otherwise
	TotalChunks int
}

func (o *Orchestrator) setState(state State) {
	o.mu.Lock()
	o.status.State = state
	if state != StateTranslating {
		o.status.Chunk = 0
	}
	o.mu.Unlock()
}

// enterState records the state transition and stamps the stage onto the
// context so downstream components log it with every record.
func (o *Orchestrator) enterState(ctx context.Context, state State) context.Context {
	o.setState(state)
	return services.WithStage(ctx, string(state))
}

func (o *Orchestrator) setChunkProgress(current, total int) {
	o.mu.Lock()
	o.status.State = StateTranslating
	o.status.Chunk = current
	o.status.TotalChunks = total
	o.mu.Unlock()
}

// Status returns the current run status. Safe for concurrent use.
func (o *Orchestrator) Status() Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status
}
