package audio

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// File and directory permissions.
const (
	filePermissions = 0o644
	dirPermissions  = 0o750
	wavPCMFormat    = 1
)

// Convert filters and decimates the render buffer. samples is modified by the filter.
func Convert(samples []float32, format Format) []float32 {
	LowPass(samples, float64(format.SourceRate), format.Cutoff)

	return Downsample(samples, format.Factor())
}

// Encode writes already converted samples as a WAV stream at the target rate.
// Samples are truncated toward zero and clamped to the 16-bit range.
func Encode(w io.WriteSeeker, samples []float32, format Format) error {
	err := format.Validate()
	if err != nil {
		return err
	}

	encoder := wav.NewEncoder(w, format.TargetRate, format.BitDepth, format.Channels, wavPCMFormat)

	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: format.Channels,
			SampleRate:  format.TargetRate,
		},
		Data:           toInt16Range(samples),
		SourceBitDepth: format.BitDepth,
	}

	err = encoder.Write(buf)
	if err != nil {
		return fmt.Errorf("failed to write wav samples: %w", err)
	}

	err = encoder.Close()
	if err != nil {
		return fmt.Errorf("failed to finalize wav: %w", err)
	}

	return nil
}

// EncodeBytes converts the render buffer and returns the WAV file contents.
func EncodeBytes(samples []float32, format Format) ([]byte, error) {
	err := format.Validate()
	if err != nil {
		return nil, err
	}

	out := &memoryFile{}

	err = Encode(out, Convert(samples, format), format)
	if err != nil {
		return nil, err
	}

	return out.buf.Bytes(), nil
}

// WriteFile converts the render buffer and writes it to path. The file is
// written next to path under a temporary name and renamed on success, so a
// failed write never leaves a partial output.
func WriteFile(path string, samples []float32, format Format) error {
	data, err := EncodeBytes(samples, format)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)

	err = os.MkdirAll(dir, dirPermissions)
	if err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	tempFile, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp output file: %w", err)
	}

	tempName := tempFile.Name()

	_, writeErr := tempFile.Write(data)
	closeErr := tempFile.Close()

	if writeErr == nil {
		writeErr = closeErr
	}

	if writeErr == nil {
		writeErr = os.Chmod(tempName, filePermissions)
	}

	if writeErr == nil {
		writeErr = os.Rename(tempName, path)
	}

	if writeErr != nil {
		_ = os.Remove(tempName)

		return fmt.Errorf("failed to write output file %s: %w", path, writeErr)
	}

	return nil
}

func toInt16Range(samples []float32) []int {
	data := make([]int, len(samples))

	for i, sample := range samples {
		switch {
		case sample >= math.MaxInt16:
			data[i] = math.MaxInt16
		case sample <= math.MinInt16:
			data[i] = math.MinInt16
		default:
			data[i] = int(sample)
		}
	}

	return data
}

// memoryFile is an in-memory io.WriteSeeker for the wav encoder.
type memoryFile struct {
	buf bytes.Buffer
	pos int
}

func (m *memoryFile) Write(p []byte) (int, error) {
	data := m.buf.Bytes()

	if m.pos == len(data) {
		n, _ := m.buf.Write(p)
		m.pos += n

		return n, nil
	}

	overlap := copy(data[m.pos:], p)
	m.pos += overlap

	if overlap < len(p) {
		n, _ := m.buf.Write(p[overlap:])
		m.pos += n
	}

	return len(p), nil
}

func (m *memoryFile) Seek(offset int64, whence int) (int64, error) {
	var next int64

	switch whence {
	case io.SeekStart:
		next = offset
	case io.SeekCurrent:
		next = int64(m.pos) + offset
	case io.SeekEnd:
		next = int64(m.buf.Len()) + offset
	default:
		return 0, fmt.Errorf("invalid whence %d", whence)
	}

	if next < 0 || next > int64(m.buf.Len()) {
		return 0, fmt.Errorf("seek position %d out of range", next)
	}

	m.pos = int(next)

	return next, nil
}
