package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Canonical in-memory PCM format. Every decoded source is resampled into
// this shape so slicing, overlaying, and mixing never have to reconcile
// formats mid-pipeline.
const (
	SampleRate = 44100
	Channels   = 2
	BitDepth   = 16
)

// Track is an in-memory PCM audio buffer, immutable by convention: operations
// return a new Track and never modify the receiver's samples. A Track is
// owned by whichever component currently holds it and must not be mutated
// concurrently.
type Track struct {
	samples    []int16 // interleaved
	sampleRate int
	channels   int
}

// NewTrack wraps interleaved samples in a Track. The caller must not retain
// the slice.
func NewTrack(samples []int16, sampleRate, channels int) Track {
	if sampleRate <= 0 {
		sampleRate = SampleRate
	}
	if channels <= 0 {
		channels = Channels
	}
	return Track{samples: samples, sampleRate: sampleRate, channels: channels}
}

// Silent returns a track of the given duration containing only silence.
func Silent(durationMs int) Track {
	if durationMs < 0 {
		durationMs = 0
	}
	frames := durationMs * SampleRate / 1000
	return Track{
		samples:    make([]int16, frames*Channels),
		sampleRate: SampleRate,
		channels:   Channels,
	}
}

// DurationMs returns the playback duration in milliseconds.
func (t Track) DurationMs() int {
	if t.sampleRate == 0 || t.channels == 0 {
		return 0
	}
	frames := len(t.samples) / t.channels
	return int(int64(frames) * 1000 / int64(t.sampleRate))
}

// SampleRate returns the sample rate in Hz.
func (t Track) SampleRate() int { return t.sampleRate }

// ChannelCount returns the number of interleaved channels.
func (t Track) ChannelCount() int { return t.channels }

// Samples exposes the underlying interleaved buffer. Callers must treat it
// as read-only.
func (t Track) Samples() []int16 { return t.samples }

// Empty reports whether the track holds no samples.
func (t Track) Empty() bool { return len(t.samples) == 0 }

// Slice returns the sub-track covering [startMs, endMs). Bounds are clamped
// to the track.
func (t Track) Slice(startMs, endMs int) Track {
	if startMs < 0 {
		startMs = 0
	}
	if endMs > t.DurationMs() {
		endMs = t.DurationMs()
	}
	if endMs <= startMs {
		return Track{sampleRate: t.sampleRate, channels: t.channels}
	}
	start := t.frameIndex(startMs) * t.channels
	end := t.frameIndex(endMs) * t.channels
	out := make([]int16, end-start)
	copy(out, t.samples[start:end])
	return Track{samples: out, sampleRate: t.sampleRate, channels: t.channels}
}

// Append returns the concatenation of t and other. Both tracks must share
// the canonical format.
func (t Track) Append(other Track) (Track, error) {
	if t.Empty() {
		return other, nil
	}
	if other.Empty() {
		return t, nil
	}
	if t.sampleRate != other.sampleRate || t.channels != other.channels {
		return Track{}, fmt.Errorf("append: format mismatch: %dHz/%dch vs %dHz/%dch",
			t.sampleRate, t.channels, other.sampleRate, other.channels)
	}
	out := make([]int16, 0, len(t.samples)+len(other.samples))
	out = append(out, t.samples...)
	out = append(out, other.samples...)
	return Track{samples: out, sampleRate: t.sampleRate, channels: t.channels}, nil
}

// Gain returns a copy of the track with a decibel gain applied. Negative
// values attenuate. Samples saturate instead of wrapping.
func (t Track) Gain(db float64) Track {
	factor := math.Pow(10, db/20)
	out := make([]int16, len(t.samples))
	for i, s := range t.samples {
		out[i] = clampSample(float64(s) * factor)
	}
	return Track{samples: out, sampleRate: t.sampleRate, channels: t.channels}
}

// Overlay returns a copy of t with other mixed in additively starting at
// atMs. Material extending past the end of t is dropped; overlapping samples
// sum with saturation, so later overlays layer on top of earlier content
// instead of replacing it.
func (t Track) Overlay(other Track, atMs int) (Track, error) {
	if t.sampleRate != other.sampleRate || t.channels != other.channels {
		return Track{}, fmt.Errorf("overlay: format mismatch: %dHz/%dch vs %dHz/%dch",
			t.sampleRate, t.channels, other.sampleRate, other.channels)
	}
	if atMs < 0 {
		return Track{}, errors.New("overlay: negative offset")
	}
	out := make([]int16, len(t.samples))
	copy(out, t.samples)
	offset := t.frameIndex(atMs) * t.channels
	for i, s := range other.samples {
		j := offset + i
		if j >= len(out) {
			break
		}
		out[j] = clampSample(float64(out[j]) + float64(s))
	}
	return Track{samples: out, sampleRate: t.sampleRate, channels: t.channels}, nil
}

// LoudnessDb returns the overall RMS loudness in dBFS. A silent track
// reports -inf.
func (t Track) LoudnessDb() float64 {
	return rmsDb(t.samples)
}

func (t Track) frameIndex(ms int) int {
	frames := len(t.samples) / t.channels
	idx := int(int64(ms) * int64(t.sampleRate) / 1000)
	if idx > frames {
		idx = frames
	}
	return idx
}

func rmsDb(samples []int16) float64 {
	if len(samples) == 0 {
		return math.Inf(-1)
	}
	var sum float64
	for _, s := range samples {
		v := float64(s)
		sum += v * v
	}
	rms := math.Sqrt(sum / float64(len(samples)))
	if rms == 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(rms/maxAmplitude)
}

const maxAmplitude = 32768

func clampSample(v float64) int16 {
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}

// FromRaw builds a Track from interleaved little-endian s16 PCM bytes.
func FromRaw(data []byte, sampleRate, channels int) Track {
	return NewTrack(samplesFromBytes(data), sampleRate, channels)
}

// RawBytes returns the samples as interleaved little-endian s16 PCM bytes.
func (t Track) RawBytes() []byte {
	return samplesToBytes(t.samples)
}

func samplesFromBytes(data []byte) []int16 {
	out := make([]int16, len(data)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}
	return out
}

func samplesToBytes(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}
