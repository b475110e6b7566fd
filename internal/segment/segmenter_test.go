package segment

import (
	"testing"

	"dubber/internal/audio"
)

// trackWithSpeech builds a canonical-format track of totalMs where each
// [start,end) interval carries a tone and everything else is silence.
func trackWithSpeech(totalMs int, speech ...[2]int) audio.Track {
	frames := totalMs * audio.SampleRate / 1000
	samples := make([]int16, frames*audio.Channels)
	for _, iv := range speech {
		start := iv[0] * audio.SampleRate / 1000 * audio.Channels
		end := iv[1] * audio.SampleRate / 1000 * audio.Channels
		for i := start; i < end && i < len(samples); i++ {
			samples[i] = 8000
		}
	}
	return audio.NewTrack(samples, audio.SampleRate, audio.Channels)
}

func defaultOptions() Options {
	return Options{MinSilenceMs: 500, SilenceThresholdOffsetDb: -14, TargetChunkLenMs: 45000}
}

func TestSegmentAllSilentReturnsSingleChunk(t *testing.T) {
	seg := New(defaultOptions(), nil)
	chunks := seg.Segment(audio.Silent(3000))
	if len(chunks) != 1 {
		t.Fatalf("chunks = %d, want 1", len(chunks))
	}
	if chunks[0].StartMs != 0 || chunks[0].EndMs != 3000 {
		t.Fatalf("chunk range = [%d,%d), want [0,3000)", chunks[0].StartMs, chunks[0].EndMs)
	}
	if chunks[0].Audio.DurationMs() != 3000 {
		t.Fatalf("chunk audio duration = %d", chunks[0].Audio.DurationMs())
	}
}

func TestSegmentMergesWithinTarget(t *testing.T) {
	track := trackWithSpeech(12000, [2]int{0, 4000}, [2]int{5000, 12000})
	opts := defaultOptions()
	opts.TargetChunkLenMs = 100000
	chunks := New(opts, nil).Segment(track)
	if len(chunks) != 1 {
		t.Fatalf("chunks = %d, want 1 (merged)", len(chunks))
	}
	if chunks[0].StartMs != 0 || chunks[0].EndMs != 12000 {
		t.Fatalf("merged range = [%d,%d), want [0,12000)", chunks[0].StartMs, chunks[0].EndMs)
	}
}

func TestSegmentSplitsBeyondTarget(t *testing.T) {
	track := trackWithSpeech(12000, [2]int{0, 4000}, [2]int{5000, 12000})
	opts := defaultOptions()
	opts.TargetChunkLenMs = 8000
	chunks := New(opts, nil).Segment(track)
	if len(chunks) != 2 {
		t.Fatalf("chunks = %d, want 2", len(chunks))
	}
	first, second := chunks[0], chunks[1]
	if first.StartMs != 0 || !near(first.EndMs, 4000, 20) {
		t.Fatalf("first chunk = [%d,%d), want ~[0,4000)", first.StartMs, first.EndMs)
	}
	if !near(second.StartMs, 5000, 20) || second.EndMs != 12000 {
		t.Fatalf("second chunk = [%d,%d), want ~[5000,12000)", second.StartMs, second.EndMs)
	}
	if first.Index != 0 || second.Index != 1 {
		t.Fatalf("chunk indexes = %d,%d", first.Index, second.Index)
	}
}

func TestSegmentCoversEveryIntervalOnce(t *testing.T) {
	track := trackWithSpeech(30000,
		[2]int{1000, 3000}, [2]int{4000, 8000}, [2]int{10000, 15000}, [2]int{20000, 29000})
	opts := defaultOptions()
	opts.TargetChunkLenMs = 9000
	chunks := New(opts, nil).Segment(track)
	if len(chunks) == 0 {
		t.Fatal("no chunks")
	}
	prevEnd := -1
	for _, c := range chunks {
		if c.StartMs <= prevEnd {
			t.Fatalf("chunk [%d,%d) overlaps or reorders previous end %d", c.StartMs, c.EndMs, prevEnd)
		}
		if c.EndMs <= c.StartMs {
			t.Fatalf("empty chunk [%d,%d)", c.StartMs, c.EndMs)
		}
		prevEnd = c.EndMs
	}
	// Every detected speech interval must fall inside exactly one chunk.
	for _, iv := range [][2]int{{1000, 3000}, {4000, 8000}, {10000, 15000}, {20000, 29000}} {
		mid := (iv[0] + iv[1]) / 2
		covered := 0
		for _, c := range chunks {
			if mid >= c.StartMs && mid < c.EndMs {
				covered++
			}
		}
		if covered != 1 {
			t.Fatalf("interval %v covered by %d chunks", iv, covered)
		}
	}
}

func TestSegmentLongUtteranceNeverCut(t *testing.T) {
	track := trackWithSpeech(10000, [2]int{0, 10000})
	opts := defaultOptions()
	opts.TargetChunkLenMs = 2000
	chunks := New(opts, nil).Segment(track)
	if len(chunks) != 1 {
		t.Fatalf("chunks = %d, want 1 (single utterance)", len(chunks))
	}
	if chunks[0].DurationMs() != 10000 {
		t.Fatalf("chunk duration = %d, want 10000", chunks[0].DurationMs())
	}
}

func TestSegmentShortGapsStayInsideUtterance(t *testing.T) {
	// 200 ms pauses are below the 500 ms minimum and must not split.
	track := trackWithSpeech(5000, [2]int{0, 2000}, [2]int{2200, 5000})
	chunks := New(defaultOptions(), nil).Segment(track)
	if len(chunks) != 1 {
		t.Fatalf("chunks = %d, want 1", len(chunks))
	}
}

func near(got, want, tolerance int) bool {
	diff := got - want
	if diff < 0 {
		diff = -diff
	}
	return diff <= tolerance
}
