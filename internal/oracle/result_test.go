package oracle

import (
	"bytes"
	"testing"
)

func TestDetectEncoding(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		want Encoding
	}{
		{"wav", []byte("RIFF....WAVE"), EncodingWAV},
		{"id3 tagged mp3", []byte("ID3\x04\x00"), EncodingMP3},
		{"bare mpeg frame", []byte{0xFF, 0xFB, 0x90, 0x00}, EncodingMP3},
		{"raw pcm", []byte{0x00, 0x01, 0x02, 0x03}, EncodingRawPCM},
		{"empty", nil, EncodingRawPCM},
	}
	for _, tc := range cases {
		if got := DetectEncoding(tc.data); got != tc.want {
			t.Errorf("%s: DetectEncoding = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestContainerWrapsRawPCM(t *testing.T) {
	pcm := make([]byte, 480) // 10 ms of 24 kHz mono s16le
	res := NewResult(pcm)
	if res.Encoding != EncodingRawPCM {
		t.Fatalf("encoding = %v, want raw PCM", res.Encoding)
	}
	if res.SampleRate != RawPCMSampleRate || res.Channels != RawPCMChannels {
		t.Fatalf("pcm params = %d Hz / %d ch", res.SampleRate, res.Channels)
	}
	wrapped := res.Container()
	if !bytes.HasPrefix(wrapped, []byte("RIFF")) {
		t.Fatal("wrapped payload is not a RIFF container")
	}
	if len(wrapped) != 44+len(pcm) {
		t.Fatalf("wrapped length = %d, want %d", len(wrapped), 44+len(pcm))
	}
}

func TestContainerPassesThroughMP3(t *testing.T) {
	data := []byte("ID3payload")
	res := NewResult(data)
	if !bytes.Equal(res.Container(), data) {
		t.Fatal("MP3 payload must pass through unchanged")
	}
}
