package audio

import "encoding/binary"

// WrapPCM wraps raw little-endian PCM data in a minimal RIFF/WAVE header so
// downstream decoders can discover the sample parameters from the payload
// itself.
func WrapPCM(data []byte, sampleRate, bitsPerSample, channels int) []byte {
	if sampleRate <= 0 {
		sampleRate = 24000
	}
	if bitsPerSample <= 0 {
		bitsPerSample = 16
	}
	if channels <= 0 {
		channels = 1
	}

	blockAlign := channels * bitsPerSample / 8
	byteRate := sampleRate * blockAlign

	out := make([]byte, 0, 44+len(data))
	out = append(out, 'R', 'I', 'F', 'F')
	out = appendUint32(out, uint32(36+len(data)))
	out = append(out, 'W', 'A', 'V', 'E')
	out = append(out, 'f', 'm', 't', ' ')
	out = appendUint32(out, 16) // fmt chunk size
	out = appendUint16(out, 1)  // PCM
	out = appendUint16(out, uint16(channels))
	out = appendUint32(out, uint32(sampleRate))
	out = appendUint32(out, uint32(byteRate))
	out = appendUint16(out, uint16(blockAlign))
	out = appendUint16(out, uint16(bitsPerSample))
	out = append(out, 'd', 'a', 't', 'a')
	out = appendUint32(out, uint32(len(data)))
	out = append(out, data...)
	return out
}

func appendUint32(b []byte, v uint32) []byte {
	return binary.LittleEndian.AppendUint32(b, v)
}

func appendUint16(b []byte, v uint16) []byte {
	return binary.LittleEndian.AppendUint16(b, v)
}
