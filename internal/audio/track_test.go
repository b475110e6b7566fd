package audio

import (
	"math"
	"testing"
)

func toneTrack(durationMs int, amplitude int16) Track {
	frames := durationMs * SampleRate / 1000
	samples := make([]int16, frames*Channels)
	for i := range samples {
		samples[i] = amplitude
	}
	return NewTrack(samples, SampleRate, Channels)
}

func TestSilentDuration(t *testing.T) {
	track := Silent(1500)
	if got := track.DurationMs(); got != 1500 {
		t.Fatalf("duration = %d, want 1500", got)
	}
	if !math.IsInf(track.LoudnessDb(), -1) {
		t.Fatalf("silent track loudness = %v, want -inf", track.LoudnessDb())
	}
}

func TestSliceBoundsClamped(t *testing.T) {
	track := toneTrack(2000, 1000)
	part := track.Slice(500, 5000)
	if got := part.DurationMs(); got != 1500 {
		t.Fatalf("slice duration = %d, want 1500", got)
	}
	empty := track.Slice(1800, 1700)
	if !empty.Empty() {
		t.Fatal("expected empty slice for inverted range")
	}
}

func TestAppendConcatenates(t *testing.T) {
	a := toneTrack(400, 100)
	b := toneTrack(600, 100)
	joined, err := a.Append(b)
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if got := joined.DurationMs(); got != 1000 {
		t.Fatalf("joined duration = %d, want 1000", got)
	}
}

func TestAppendRejectsFormatMismatch(t *testing.T) {
	a := toneTrack(100, 100)
	b := NewTrack(make([]int16, 2400), 24000, 1)
	if _, err := a.Append(b); err == nil {
		t.Fatal("expected format mismatch error")
	}
}

func TestGainAttenuates(t *testing.T) {
	track := toneTrack(100, 10000)
	quieter := track.Gain(-6)
	want := int16(float64(10000) * math.Pow(10, -6.0/20))
	got := quieter.Samples()[0]
	if got < want-1 || got > want+1 {
		t.Fatalf("attenuated sample = %d, want ~%d", got, want)
	}
	// Receiver untouched.
	if track.Samples()[0] != 10000 {
		t.Fatal("gain mutated the receiver")
	}
}

func TestGainSaturatesInsteadOfWrapping(t *testing.T) {
	track := toneTrack(10, 30000)
	louder := track.Gain(12)
	if got := louder.Samples()[0]; got != math.MaxInt16 {
		t.Fatalf("sample = %d, want saturation at %d", got, math.MaxInt16)
	}
}

func TestOverlayIsAdditive(t *testing.T) {
	base := toneTrack(1000, 1000)
	voice := toneTrack(200, 500)
	mixed, err := base.Overlay(voice, 500)
	if err != nil {
		t.Fatalf("overlay: %v", err)
	}
	if mixed.DurationMs() != 1000 {
		t.Fatalf("overlay changed duration: %d", mixed.DurationMs())
	}
	samples := mixed.Samples()
	before := samples[0]
	at := samples[600*SampleRate/1000*Channels]
	if before != 1000 {
		t.Fatalf("sample before overlay = %d, want 1000", before)
	}
	if at != 1500 {
		t.Fatalf("sample inside overlay = %d, want 1500", at)
	}
}

func TestOverlayPastEndIsDropped(t *testing.T) {
	base := toneTrack(500, 0)
	voice := toneTrack(1000, 200)
	mixed, err := base.Overlay(voice, 400)
	if err != nil {
		t.Fatalf("overlay: %v", err)
	}
	if mixed.DurationMs() != 500 {
		t.Fatalf("overlay extended track to %d ms", mixed.DurationMs())
	}
}

func TestLoudnessDbFullScale(t *testing.T) {
	track := toneTrack(100, math.MaxInt16)
	if db := track.LoudnessDb(); db > 0.01 || db < -0.05 {
		t.Fatalf("full-scale loudness = %v, want ~0 dBFS", db)
	}
}

func TestWrapPCMHeader(t *testing.T) {
	data := make([]byte, 48000) // 1s of 24kHz mono 16-bit
	wav := WrapPCM(data, 24000, 16, 1)
	if len(wav) != 44+len(data) {
		t.Fatalf("wav length = %d, want %d", len(wav), 44+len(data))
	}
	if string(wav[:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		t.Fatalf("bad header magic: %q %q", wav[:4], wav[8:12])
	}
	if string(wav[36:40]) != "data" {
		t.Fatalf("missing data chunk: %q", wav[36:40])
	}
}

func TestSampleByteRoundTrip(t *testing.T) {
	in := []int16{0, 1, -1, math.MaxInt16, math.MinInt16, 12345}
	out := samplesFromBytes(samplesToBytes(in))
	if len(out) != len(in) {
		t.Fatalf("length mismatch: %d vs %d", len(out), len(in))
	}
	for i := range in {
		if in[i] != out[i] {
			t.Fatalf("sample %d: %d != %d", i, in[i], out[i])
		}
	}
}
