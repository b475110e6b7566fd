package oracle

import "dubber/internal/audio"

// Encoding identifies how a Result payload is packaged.
type Encoding int

const (
	// EncodingRawPCM is headerless little-endian PCM. The speech model
	// returns this for TTS output.
	EncodingRawPCM Encoding = iota
	// EncodingWAV is a RIFF/WAVE container.
	EncodingWAV
	// EncodingMP3 is an MPEG audio stream, with or without an ID3 tag.
	EncodingMP3
)

// Raw PCM parameters used when the oracle does not state them. These match
// the speech model's documented output format.
const (
	RawPCMSampleRate = 24000
	RawPCMBitDepth   = 16
	RawPCMChannels   = 1
)

// Result is translated speech returned by the oracle.
type Result struct {
	Data     []byte
	Encoding Encoding

	// PCM parameters, meaningful only when Encoding is EncodingRawPCM.
	SampleRate    int
	BitsPerSample int
	Channels      int
}

// NewResult sniffs the payload encoding once, at the oracle boundary, so the
// rest of the pipeline never inspects magic bytes.
func NewResult(data []byte) Result {
	res := Result{Data: data, Encoding: DetectEncoding(data)}
	if res.Encoding == EncodingRawPCM {
		res.SampleRate = RawPCMSampleRate
		res.BitsPerSample = RawPCMBitDepth
		res.Channels = RawPCMChannels
	}
	return res
}

// Container returns the payload as a self-describing container: WAV and MP3
// pass through unchanged, raw PCM is wrapped in a WAV header.
func (r Result) Container() []byte {
	if r.Encoding != EncodingRawPCM {
		return r.Data
	}
	return audio.WrapPCM(r.Data, r.SampleRate, r.BitsPerSample, r.Channels)
}

// DetectEncoding classifies an audio payload by its leading bytes. Anything
// that is neither RIFF nor MPEG audio is treated as raw PCM.
func DetectEncoding(data []byte) Encoding {
	if len(data) >= 4 && string(data[:4]) == "RIFF" {
		return EncodingWAV
	}
	if len(data) >= 3 && string(data[:3]) == "ID3" {
		return EncodingMP3
	}
	// Bare MPEG frame: 11 set sync bits.
	if len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0 {
		return EncodingMP3
	}
	return EncodingRawPCM
}
