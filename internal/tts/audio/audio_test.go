package audio_test

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/book-expert/broadcast-service/internal/tts/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wavHeaderBytes = 44

func TestDefaultFormat_Validate(t *testing.T) {
	t.Parallel()

	format := audio.DefaultFormat()
	require.NoError(t, format.Validate())
	assert.Equal(t, 3, format.Factor())
}

func TestFormat_ValidateRejects(t *testing.T) {
	t.Parallel()

	cases := map[string]func(*audio.Format){
		"zero target":       func(f *audio.Format) { f.TargetRate = 0 },
		"not a multiple":    func(f *audio.Format) { f.TargetRate = 7_000 },
		"upsampling":        func(f *audio.Format) { f.TargetRate = 48_000 },
		"24-bit":            func(f *audio.Format) { f.BitDepth = 24 },
		"stereo":            func(f *audio.Format) { f.Channels = 2 },
		"negative cutoff":   func(f *audio.Format) { f.Cutoff = -1 },
		"huge source rates": func(f *audio.Format) { f.SourceRate = 1_000_000 },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			format := audio.DefaultFormat()
			mutate(&format)
			require.ErrorIs(t, format.Validate(), audio.ErrInvalidFormat)
		})
	}
}

func TestLowPass_Recurrence(t *testing.T) {
	t.Parallel()

	samples := []float32{1000, 1000, 1000, 1000}
	audio.LowPass(samples, 24_000, 8_000)

	rc := 1.0 / (2 * math.Pi * 8_000)
	dt := 1.0 / 24_000.0
	alpha := float32(dt / (rc + dt))

	expected := make([]float32, 4)
	expected[0] = 1000 * alpha

	for i := 1; i < 4; i++ {
		expected[i] = expected[i-1] + alpha*(1000-expected[i-1])
	}

	assert.InDeltaSlice(t, expected, samples, 0.001)
	assert.Less(t, samples[0], samples[3], "step response rises")
}

func TestLowPass_ZeroCutoffIsNoop(t *testing.T) {
	t.Parallel()

	samples := []float32{1, -2, 3}
	audio.LowPass(samples, 24_000, 0)
	assert.Equal(t, []float32{1, -2, 3}, samples)

	audio.LowPass(nil, 24_000, 8_000)
}

func TestDownsample(t *testing.T) {
	t.Parallel()

	samples := []float32{0, 1, 2, 3, 4, 5, 6, 7}
	assert.Equal(t, []float32{2, 5}, audio.Downsample(samples, 3))
	assert.Empty(t, audio.Downsample([]float32{0, 1}, 3))
	assert.Equal(t, samples, audio.Downsample(samples, 1))
}

func TestEncodeBytes_Header(t *testing.T) {
	t.Parallel()

	samples := make([]float32, 24_000)
	data, err := audio.EncodeBytes(samples, audio.DefaultFormat())
	require.NoError(t, err)

	require.Len(t, data, wavHeaderBytes+8_000*2)
	assert.Equal(t, "RIFF", string(data[0:4]))
	assert.Equal(t, "WAVE", string(data[8:12]))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(data[22:24]), "mono")
	assert.Equal(t, uint32(8_000), binary.LittleEndian.Uint32(data[24:28]), "sample rate")
	assert.Equal(t, uint16(16), binary.LittleEndian.Uint16(data[34:36]), "bit depth")
}

func TestEncodeBytes_ClampsSamples(t *testing.T) {
	t.Parallel()

	format := audio.DefaultFormat()
	format.Cutoff = 0

	samples := []float32{0, 0, 100_000, 0, 0, -100_000, 0, 0, 12.9}
	data, err := audio.EncodeBytes(samples, format)
	require.NoError(t, err)

	body := data[wavHeaderBytes:]
	require.Len(t, body, 6)
	assert.Equal(t, int16(math.MaxInt16), int16(binary.LittleEndian.Uint16(body[0:])))
	assert.Equal(t, int16(math.MinInt16), int16(binary.LittleEndian.Uint16(body[2:])))
	assert.Equal(t, int16(12), int16(binary.LittleEndian.Uint16(body[4:])))
}

func TestWriteFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out", "audio.wav")
	samples := make([]float32, 2_400)

	require.NoError(t, audio.WriteFile(path, samples, audio.DefaultFormat()))

	file, err := os.Open(path)
	require.NoError(t, err)

	defer file.Close()

	decoder := wav.NewDecoder(file)
	require.True(t, decoder.IsValidFile())
	assert.Equal(t, uint32(8_000), decoder.SampleRate)
	assert.Equal(t, uint16(1), decoder.NumChans)
	assert.Equal(t, uint16(16), decoder.BitDepth)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteFile_InvalidFormatLeavesNoFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "audio.wav")
	format := audio.DefaultFormat()
	format.Channels = 2

	require.ErrorIs(t, audio.WriteFile(path, []float32{1, 2, 3}, format), audio.ErrInvalidFormat)

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
