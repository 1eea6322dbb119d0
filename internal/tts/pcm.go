package tts

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// PCMHeaderBytes is the fixed region skipped at the start of every payload:
// 32 little-endian 16-bit words covering the container header.
const PCMHeaderBytes = 64

// ErrTruncatedAudio is returned for payloads too short to hold the header region.
var ErrTruncatedAudio = errors.New("audio payload shorter than header")

// DecodePCM skips the header region and converts the remaining 16-bit signed
// little-endian samples to float32. Samples keep their 16-bit amplitude scale
// so the writer can store them back without rescaling. A trailing odd byte is dropped.
func DecodePCM(payload []byte) ([]float32, error) {
	if len(payload) < PCMHeaderBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrTruncatedAudio, len(payload))
	}

	body := payload[PCMHeaderBytes:]
	samples := make([]float32, len(body)/2)

	for i := range samples {
		samples[i] = float32(int16(binary.LittleEndian.Uint16(body[2*i:])))
	}

	return samples, nil
}
