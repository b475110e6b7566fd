package workflow

import (
	"context"
	"errors"

	"dubber/internal/audio"
	"dubber/internal/ffprobe"
	"dubber/internal/oracle"
	"dubber/internal/segment"
)

// AudioStore converts between media files and canonical in-memory tracks.
type AudioStore interface {
	Load(ctx context.Context, path string) (audio.Track, error)
	Save(ctx context.Context, track audio.Track, path string) error
	EncodeBytes(ctx context.Context, track audio.Track, format string) ([]byte, error)
	DecodeBytes(ctx context.Context, payload []byte) (audio.Track, error)
}

// Prober inspects input containers.
type Prober interface {
	Inspect(ctx context.Context, path string) (ffprobe.Result, error)
}

// Segmenter splits a track into silence-bounded chunks.
type Segmenter interface {
	Segment(track audio.Track) []segment.Chunk
}

// Translator is the retry-wrapped oracle surface the pipeline consumes.
type Translator interface {
	Translate(ctx context.Context, req oracle.Request) (oracle.Result, error)
	TranslateDialogue(ctx context.Context, req oracle.Request) ([]oracle.Result, error)
}

// Corrector retimes translated chunks toward their source duration.
type Corrector interface {
	Correct(ctx context.Context, track audio.Track, targetMs int) audio.Track
}

// Mixer blends the voice-over with the ducked original.
type Mixer interface {
	Duck(original, voiceOver audio.Track) (audio.Track, error)
}

// Muxer remuxes translated audio into the source video container.
type Muxer interface {
	Mux(ctx context.Context, videoPath, audioPath, outputPath string) error
}

// Downloader fetches remote sources.
type Downloader interface {
	Fetch(ctx context.Context, url, dir string, preferVideo bool) (string, error)
}

// Deps bundles the pipeline components an Orchestrator drives.
type Deps struct {
	Store      AudioStore
	Prober     Prober
	Segmenter  Segmenter
	Translator Translator
	Corrector  Corrector
	Mixer      Mixer
	Muxer      Muxer
	Downloader Downloader
}

func (d Deps) validate() error {
	switch {
	case d.Store == nil:
		return errors.New("workflow: audio store is required")
	case d.Prober == nil:
		return errors.New("workflow: prober is required")
	case d.Segmenter == nil:
		return errors.New("workflow: segmenter is required")
	case d.Translator == nil:
		return errors.New("workflow: translator is required")
	case d.Corrector == nil:
		return errors.New("workflow: corrector is required")
	case d.Mixer == nil:
		return errors.New("workflow: mixer is required")
	case d.Muxer == nil:
		return errors.New("workflow: muxer is required")
	case d.Downloader == nil:
		return errors.New("workflow: downloader is required")
	}
	return nil
}
