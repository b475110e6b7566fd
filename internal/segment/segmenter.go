package segment

import (
	"log/slog"
	"math"

	"dubber/internal/audio"
	"dubber/internal/logging"
)

// windowMs is the RMS analysis window used for silence detection. Silence
// gaps are required to be at least MinSilenceMs, so a 10 ms grid is plenty.
const windowMs = 10

// Chunk is a contiguous speech region of the source, possibly merged with
// adjacent regions, tied to its original timeline position. Immutable after
// creation.
type Chunk struct {
	Index   int
	StartMs int
	EndMs   int
	Audio   audio.Track
}

// DurationMs returns the chunk length in milliseconds.
func (c Chunk) DurationMs() int { return c.EndMs - c.StartMs }

// Options controls silence detection and chunk grouping.
type Options struct {
	// MinSilenceMs is the minimum gap length treated as a chunk boundary.
	MinSilenceMs int
	// SilenceThresholdOffsetDb is added to the track's overall loudness to
	// derive the silence threshold; always negative.
	SilenceThresholdOffsetDb float64
	// TargetChunkLenMs is advisory: adjacent speech intervals are merged
	// while the chunk stays under it, but a single longer utterance is
	// never cut.
	TargetChunkLenMs int
}

// Segmenter splits a track into silence-bounded chunks.
type Segmenter struct {
	opts   Options
	logger *slog.Logger
}

// New constructs a Segmenter.
func New(opts Options, logger *slog.Logger) *Segmenter {
	if opts.MinSilenceMs <= 0 {
		opts.MinSilenceMs = 500
	}
	if opts.SilenceThresholdOffsetDb >= 0 {
		opts.SilenceThresholdOffsetDb = -14
	}
	if opts.TargetChunkLenMs <= 0 {
		opts.TargetChunkLenMs = 45000
	}
	return &Segmenter{opts: opts, logger: logging.NewComponentLogger(logger, "segmenter")}
}

// Segment detects speech intervals and groups them into timeline chunks.
// Never returns an empty slice: an all-silent track yields a single chunk
// spanning the whole input.
func (s *Segmenter) Segment(track audio.Track) []Chunk {
	total := track.DurationMs()
	intervals := s.detectNonSilent(track)
	if len(intervals) == 0 {
		s.logger.Warn("no speech detected, using whole track as one chunk",
			logging.Int("duration_ms", total))
		return []Chunk{{Index: 0, StartMs: 0, EndMs: total, Audio: track}}
	}

	merged := mergeIntervals(intervals, s.opts.TargetChunkLenMs)
	chunks := make([]Chunk, 0, len(merged))
	for i, iv := range merged {
		chunks = append(chunks, Chunk{
			Index:   i,
			StartMs: iv.start,
			EndMs:   iv.end,
			Audio:   track.Slice(iv.start, iv.end),
		})
	}
	s.logger.Info("track segmented",
		logging.Int("speech_intervals", len(intervals)),
		logging.Int("chunks", len(chunks)),
		logging.Int("duration_ms", total))
	return chunks
}

type interval struct {
	start int
	end   int
}

// detectNonSilent returns the chronological speech intervals of the track.
// The silence threshold is relative to the track's overall loudness so quiet
// recordings are not classified as all-silence.
func (s *Segmenter) detectNonSilent(track audio.Track) []interval {
	loudness := track.LoudnessDb()
	if math.IsInf(loudness, -1) {
		return nil
	}
	threshold := loudness + s.opts.SilenceThresholdOffsetDb

	windows := windowLoudness(track)
	silent := make([]bool, len(windows))
	for i, db := range windows {
		silent[i] = db <= threshold
	}

	minWindows := s.opts.MinSilenceMs / windowMs
	total := track.DurationMs()

	var intervals []interval
	speechStart := -1
	i := 0
	for i < len(silent) {
		if !silent[i] {
			if speechStart < 0 {
				speechStart = i * windowMs
			}
			i++
			continue
		}
		// Measure the silent run; short gaps stay inside the utterance.
		runStart := i
		for i < len(silent) && silent[i] {
			i++
		}
		if i-runStart < minWindows {
			if speechStart < 0 && runStart == 0 {
				// Short leading quiet still counts as speech onset.
				speechStart = 0
			}
			continue
		}
		if speechStart >= 0 {
			intervals = append(intervals, interval{start: speechStart, end: runStart * windowMs})
			speechStart = -1
		}
	}
	if speechStart >= 0 {
		intervals = append(intervals, interval{start: speechStart, end: total})
	}
	return intervals
}

// mergeIntervals greedily extends each chunk while the span from the chunk's
// start to the next interval's end stays under the target, including the
// silence between intervals. Target length is advisory, never a hard cap.
func mergeIntervals(intervals []interval, targetLenMs int) []interval {
	merged := make([]interval, 0, len(intervals))
	current := intervals[0]
	for _, next := range intervals[1:] {
		if next.end-current.start < targetLenMs {
			current.end = next.end
			continue
		}
		merged = append(merged, current)
		current = next
	}
	return append(merged, current)
}

// windowLoudness computes RMS loudness per analysis window.
func windowLoudness(track audio.Track) []float64 {
	samples := track.Samples()
	perWindow := track.SampleRate() * windowMs / 1000 * track.ChannelCount()
	if perWindow == 0 {
		return nil
	}
	count := (len(samples) + perWindow - 1) / perWindow
	out := make([]float64, 0, count)
	for start := 0; start < len(samples); start += perWindow {
		end := start + perWindow
		if end > len(samples) {
			end = len(samples)
		}
		out = append(out, rmsDb(samples[start:end]))
	}
	return out
}

func rmsDb(samples []int16) float64 {
	if len(samples) == 0 {
		return math.Inf(-1)
	}
	var sum float64
	for _, v := range samples {
		f := float64(v)
		sum += f * f
	}
	rms := math.Sqrt(sum / float64(len(samples)))
	if rms == 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(rms/32768)
}
