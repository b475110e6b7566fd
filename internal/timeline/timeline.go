// Package timeline rebuilds a full-length track from translated chunks. The
// output always spans exactly the source duration: gaps between chunks stay
// silent and material running past the end is trimmed, so downstream mixing
// and muxing can rely on the length.
package timeline

import (
	"log/slog"
	"sort"

	"dubber/internal/audio"
	"dubber/internal/logging"
)

// Positioned pairs translated chunk audio with its original start time.
type Positioned struct {
	StartMs int
	Audio   audio.Track
}

// Reconstruct lays the positioned segments onto a silent canvas of
// totalDurationMs. Segments are placed in start order; overlapping material
// mixes additively. A chunk that failed translation simply has no segment
// here, which leaves its region silent.
func Reconstruct(totalDurationMs int, segments []Positioned, logger *slog.Logger) audio.Track {
	log := logging.NewComponentLogger(logger, "timeline")
	canvas := audio.Silent(totalDurationMs)

	ordered := make([]Positioned, len(segments))
	copy(ordered, segments)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].StartMs < ordered[j].StartMs })

	placed := 0
	for _, seg := range ordered {
		if seg.Audio.Empty() || seg.StartMs < 0 || seg.StartMs >= totalDurationMs {
			log.Warn("skipping unplaceable segment",
				logging.Int("start_ms", seg.StartMs),
				logging.Int("duration_ms", seg.Audio.DurationMs()))
			continue
		}
		mixed, err := canvas.Overlay(seg.Audio, seg.StartMs)
		if err != nil {
			log.Warn("skipping segment with mismatched format",
				logging.Int("start_ms", seg.StartMs),
				logging.Error(err))
			continue
		}
		canvas = mixed
		placed++
	}

	log.Info("timeline reconstructed",
		logging.Int("segments", placed),
		logging.Int("skipped", len(segments)-placed),
		logging.Int("duration_ms", canvas.DurationMs()))
	return canvas
}
