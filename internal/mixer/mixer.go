// Package mixer blends the translated voice-over back over the original
// program audio, ducking the original so the translation stays intelligible
// while music and effects remain audible underneath.
package mixer

import (
	"log/slog"

	"dubber/internal/audio"
	"dubber/internal/logging"
)

// DefaultAttenuationDb is how far the original audio is pulled down under
// the voice-over when no explicit value is configured.
const DefaultAttenuationDb = 15.0

// Mixer produces the ducked mix.
type Mixer struct {
	attenuationDb float64
	logger        *slog.Logger
}

// New constructs a Mixer. attenuationDb is the positive number of decibels
// the original track is reduced by.
func New(attenuationDb float64, logger *slog.Logger) *Mixer {
	if attenuationDb <= 0 {
		attenuationDb = DefaultAttenuationDb
	}
	return &Mixer{
		attenuationDb: attenuationDb,
		logger:        logging.NewComponentLogger(logger, "mixer"),
	}
}

// Duck attenuates the original track and overlays the voice-over on top.
// The result keeps the original's duration; voice-over material past the end
// is trimmed.
func (m *Mixer) Duck(original, voiceOver audio.Track) (audio.Track, error) {
	ducked := original.Gain(-m.attenuationDb)
	mixed, err := ducked.Overlay(voiceOver, 0)
	if err != nil {
		return audio.Track{}, err
	}
	m.logger.Debug("ducking mix complete",
		logging.Float64("attenuation_db", m.attenuationDb),
		logging.Int("duration_ms", mixed.DurationMs()))
	return mixed, nil
}
