package workflow

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"dubber/internal/audio"
	"dubber/internal/config"
	"dubber/internal/download"
	"dubber/internal/language"
	"dubber/internal/logging"
	"dubber/internal/oracle"
	"dubber/internal/segment"
	"dubber/internal/services"
	"dubber/internal/timeline"
)

// Request describes one dubbing run.
type Request struct {
	// Input is a local media path or an http(s) URL.
	Input string
	// Output is the destination path; empty derives it from the input.
	Output string
	// TargetLanguage is a code or word form ("es", "Spanish").
	TargetLanguage string
	// Voice pins the synthesis voice; VoiceAuto matches the source speaker.
	Voice oracle.Voice
	// Dialogue enables diarized multi-voice translation.
	Dialogue bool
	// Ducking mixes the translation over the attenuated original instead of
	// exporting the voice-over alone.
	Ducking bool
}

// Summary reports what a completed run produced.
type Summary struct {
	RunID            string
	Input            string
	Output           string
	TargetLanguage   string
	SourceDurationMs int
	Chunks           int
	TranslatedChunks int
	FailedChunks     int
	VideoOutput      bool
	Elapsed          time.Duration
}

// Orchestrator owns the run state machine.
type Orchestrator struct {
	cfg    *config.Config
	deps   Deps
	logger *slog.Logger

	mu     sync.Mutex
	status Status
}

// New constructs an Orchestrator.
func New(cfg *config.Config, deps Deps, logger *slog.Logger) (*Orchestrator, error) {
	if cfg == nil {
		return nil, errors.New("workflow: config is required")
	}
	if err := deps.validate(); err != nil {
		return nil, err
	}
	return &Orchestrator{
		cfg:    cfg,
		deps:   deps,
		logger: logging.NewComponentLogger(logger, "workflow"),
		status: Status{State: StateIdle},
	}, nil
}

// Run executes one dubbing run to completion. Chunk failures degrade to
// silence in the output; the returned error is non-nil only for failures
// that abort the whole run.
func (o *Orchestrator) Run(ctx context.Context, req Request) (Summary, error) {
	start := time.Now()
	summary := Summary{Input: req.Input}

	if strings.TrimSpace(req.Input) == "" {
		return o.fail(summary, services.Wrap(services.ErrConfiguration, "", "run", "input is required", nil))
	}
	if strings.TrimSpace(req.TargetLanguage) == "" {
		return o.fail(summary, services.Wrap(services.ErrConfiguration, "", "run", "target language is required", nil))
	}
	targetLang := language.DisplayName(req.TargetLanguage)
	summary.TargetLanguage = targetLang

	runID := uuid.NewString()
	summary.RunID = runID
	ctx = services.WithRunID(ctx, runID)
	logger := o.logger.With(logging.String(logging.FieldRunID, runID))

	workDir, lock, err := o.acquireWorkDir(runID)
	if err != nil {
		return o.fail(summary, err)
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			logger.Warn("failed to remove work dir", logging.String("path", workDir), logging.Error(err))
		}
		if err := lock.Unlock(); err != nil {
			logger.Warn("failed to release run lock", logging.Error(err))
		}
	}()

	logger.Info("run started",
		logging.String("input", req.Input),
		logging.String("language", targetLang),
		logging.String("voice", req.Voice.String()),
		logging.Bool("dialogue", req.Dialogue),
		logging.Bool("ducking", req.Ducking))

	// Loading
	ctx = o.enterState(ctx, StateLoading)
	inputPath := req.Input
	remote := download.IsURL(req.Input)
	if remote {
		preferVideo := req.Output == "" || IsVideoPath(req.Output)
		inputPath, err = o.deps.Downloader.Fetch(ctx, req.Input, workDir, preferVideo)
		if err != nil {
			return o.fail(summary, err)
		}
	}

	info, err := o.deps.Prober.Inspect(ctx, inputPath)
	if err != nil {
		return o.fail(summary, err)
	}
	hasVideo := info.HasVideo()

	outputPath := strings.TrimSpace(req.Output)
	if outputPath == "" {
		outputPath = defaultOutputPath(inputPath, remote, hasVideo)
	}
	produceVideo := hasVideo && IsVideoPath(outputPath)
	if IsVideoPath(outputPath) && !hasVideo {
		logger.Warn("video output requested but source has no video stream, writing audio only",
			logging.String("output", outputPath))
	}
	summary.Output = outputPath
	summary.VideoOutput = produceVideo

	track, err := o.deps.Store.Load(ctx, inputPath)
	if err != nil {
		return o.fail(summary, err)
	}
	if track.Empty() {
		return o.fail(summary, services.Wrap(services.ErrDecode, "loading", "decode", inputPath+": no audio", nil))
	}
	total := track.DurationMs()
	summary.SourceDurationMs = total

	// Segmenting
	ctx = o.enterState(ctx, StateSegmenting)
	chunks := o.deps.Segmenter.Segment(track)
	summary.Chunks = len(chunks)

	// Translating
	ctx = services.WithStage(ctx, string(StateTranslating))
	positioned := make([]timeline.Positioned, 0, len(chunks))
	for i, chunk := range chunks {
		o.setChunkProgress(i+1, len(chunks))
		if err := ctx.Err(); err != nil {
			return o.fail(summary, err)
		}
		seg, err := o.processChunk(ctx, workDir, chunk, targetLang, req)
		if err != nil {
			if services.Fatal(err) || errors.Is(err, context.Canceled) {
				return o.fail(summary, err)
			}
			logger.Warn("chunk failed, leaving its region silent",
				logging.Int(logging.FieldChunk, chunk.Index),
				logging.Int("start_ms", chunk.StartMs),
				logging.Int("duration_ms", chunk.DurationMs()),
				logging.Error(err))
			summary.FailedChunks++
			continue
		}
		summary.TranslatedChunks++
		positioned = append(positioned, seg)
	}

	// Reconstructing
	ctx = o.enterState(ctx, StateReconstructing)
	voiceOver := timeline.Reconstruct(total, positioned, logger)

	final := voiceOver
	if req.Ducking {
		ctx = o.enterState(ctx, StateMixing)
		final, err = o.deps.Mixer.Duck(track, voiceOver)
		if err != nil {
			return o.fail(summary, err)
		}
	}

	// Exporting
	ctx = o.enterState(ctx, StateExporting)
	if produceVideo {
		dubPath := filepath.Join(workDir, "dub-"+uuid.NewString()+".wav")
		if err := o.deps.Store.Save(ctx, final, dubPath); err != nil {
			return o.fail(summary, err)
		}
		if err := o.deps.Muxer.Mux(ctx, inputPath, dubPath, outputPath); err != nil {
			logger.Warn("remux failed, exporting translated audio only",
				logging.String("output", outputPath),
				logging.Error(err))
			if saveErr := o.deps.Store.Save(ctx, final, outputPath); saveErr != nil {
				return o.fail(summary, saveErr)
			}
			summary.VideoOutput = false
		}
	} else {
		if err := o.deps.Store.Save(ctx, final, outputPath); err != nil {
			return o.fail(summary, err)
		}
	}

	o.setState(StateDone)
	summary.Elapsed = time.Since(start)
	logger.Info("run complete",
		logging.String("output", summary.Output),
		logging.Int("chunks", summary.Chunks),
		logging.Int("translated", summary.TranslatedChunks),
		logging.Int("failed", summary.FailedChunks),
		logging.Duration("elapsed", summary.Elapsed))
	return summary, nil
}

// processChunk translates one chunk and retimes it to its source slot. The
// encoded chunk is also staged as a uuid-named temp file so tool failures
// leave something inspectable while the run holds the work dir; the file is
// removed when the chunk finishes either way.
func (o *Orchestrator) processChunk(ctx context.Context, workDir string, chunk segment.Chunk, targetLang string, req Request) (timeline.Positioned, error) {
	ctx = services.WithChunk(ctx, chunk.Index)

	payload, err := o.deps.Store.EncodeBytes(ctx, chunk.Audio, "mp3")
	if err != nil {
		return timeline.Positioned{}, err
	}
	tempPath := filepath.Join(workDir, "chunk-"+uuid.NewString()+".mp3")
	if err := os.WriteFile(tempPath, payload, 0o644); err != nil {
		return timeline.Positioned{}, services.Wrap(services.ErrTransient, "translating", "stage chunk", tempPath, err)
	}
	defer os.Remove(tempPath)

	oracleReq := oracle.Request{
		Payload:        payload,
		TargetLanguage: targetLang,
		DurationMs:     chunk.DurationMs(),
		Voice:          req.Voice,
	}

	var translated audio.Track
	if req.Dialogue {
		results, err := o.deps.Translator.TranslateDialogue(ctx, oracleReq)
		if err != nil {
			return timeline.Positioned{}, err
		}
		for _, res := range results {
			part, err := o.decodeOracleAudio(ctx, res)
			if err != nil {
				return timeline.Positioned{}, err
			}
			translated, err = translated.Append(part)
			if err != nil {
				return timeline.Positioned{}, services.Wrap(services.ErrTransient, "translating", "join turns", err.Error(), nil)
			}
		}
	} else {
		res, err := o.deps.Translator.Translate(ctx, oracleReq)
		if err != nil {
			return timeline.Positioned{}, err
		}
		translated, err = o.decodeOracleAudio(ctx, res)
		if err != nil {
			return timeline.Positioned{}, err
		}
	}
	if translated.Empty() {
		return timeline.Positioned{}, services.Wrap(services.ErrTransient, "translating", "decode", "oracle returned no audio", nil)
	}

	corrected := o.deps.Corrector.Correct(ctx, translated, chunk.DurationMs())
	return timeline.Positioned{StartMs: chunk.StartMs, Audio: corrected}, nil
}

// decodeOracleAudio decodes a translated payload. Decode failures here are
// chunk-level, not fatal like input decode failures, so the underlying error
// is flattened into the message instead of wrapped.
func (o *Orchestrator) decodeOracleAudio(ctx context.Context, res oracle.Result) (audio.Track, error) {
	track, err := o.deps.Store.DecodeBytes(ctx, res.Container())
	if err != nil {
		return audio.Track{}, services.Wrap(services.ErrTransient, "translating", "decode oracle audio", err.Error(), nil)
	}
	return track, nil
}

// acquireWorkDir creates the per-run scratch directory and takes the shared
// run lock. Runs are serialized per work dir so the oracle rate limit holds
// across the machine, not just one process.
func (o *Orchestrator) acquireWorkDir(runID string) (string, *flock.Flock, error) {
	base := o.cfg.Paths.WorkDir
	if err := os.MkdirAll(base, 0o755); err != nil {
		return "", nil, services.Wrap(services.ErrConfiguration, "", "work dir", base, err)
	}
	lock := flock.New(filepath.Join(base, "dubber.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return "", nil, services.Wrap(services.ErrConfiguration, "", "run lock", "", err)
	}
	if !locked {
		return "", nil, services.Wrap(services.ErrConfiguration, "", "run lock", "another run is already in progress", nil)
	}
	dir := filepath.Join(base, "run-"+runID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		_ = lock.Unlock()
		return "", nil, services.Wrap(services.ErrConfiguration, "", "work dir", dir, err)
	}
	return dir, lock, nil
}

func (o *Orchestrator) fail(summary Summary, err error) (Summary, error) {
	o.setState(StateFailed)
	return summary, err
}
