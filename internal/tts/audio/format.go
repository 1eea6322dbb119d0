// Package audio turns the 24 kHz render buffer into the 8 kHz mono 16-bit WAV
// broadcast output.
package audio

import (
	"errors"
	"fmt"
)

// Default output settings.
const (
	DefaultSourceRate = 24_000
	DefaultTargetRate = 8_000
	DefaultBitDepth   = 16
	DefaultChannels   = 1
)

// Limits for format validation.
const (
	maxSampleRate = 192_000
)

// Error message formats.
const (
	errFmtSampleRateRange = "%w: %s sample rate must be between 1 and %d Hz, got %d"
	errFmtNotDivisible    = "%w: source rate %d is not a multiple of target rate %d"
	errFmtBitDepth        = "%w: bit depth must be 16, got %d"
	errFmtChannels        = "%w: channels must be 1, got %d"
	errFmtCutoff          = "%w: cutoff must be between 0 and %d Hz, got %.1f"
)

// ErrInvalidFormat is returned for output settings the writer cannot produce.
var ErrInvalidFormat = errors.New("invalid output format")

// Format describes the conversion from the render buffer to the output file.
type Format struct {
	SourceRate int
	TargetRate int
	BitDepth   int
	Channels   int
	// Cutoff is the low-pass cutoff in Hz applied before decimation.
	Cutoff float64
}

// DefaultFormat returns 24 kHz to 8 kHz, mono, 16-bit, cut off at 8 kHz.
func DefaultFormat() Format {
	return Format{
		SourceRate: DefaultSourceRate,
		TargetRate: DefaultTargetRate,
		BitDepth:   DefaultBitDepth,
		Channels:   DefaultChannels,
		Cutoff:     DefaultTargetRate,
	}
}

// Factor returns the decimation factor.
func (f Format) Factor() int {
	return f.SourceRate / f.TargetRate
}

// Validate checks that the format can be produced.
func (f Format) Validate() error {
	err := validateSampleRate("source", f.SourceRate)
	if err != nil {
		return err
	}

	err = validateSampleRate("target", f.TargetRate)
	if err != nil {
		return err
	}

	if f.TargetRate > f.SourceRate || f.SourceRate%f.TargetRate != 0 {
		return fmt.Errorf(errFmtNotDivisible, ErrInvalidFormat, f.SourceRate, f.TargetRate)
	}

	if f.BitDepth != DefaultBitDepth {
		return fmt.Errorf(errFmtBitDepth, ErrInvalidFormat, f.BitDepth)
	}

	if f.Channels != DefaultChannels {
		return fmt.Errorf(errFmtChannels, ErrInvalidFormat, f.Channels)
	}

	if f.Cutoff < 0 || f.Cutoff > float64(f.SourceRate) {
		return fmt.Errorf(errFmtCutoff, ErrInvalidFormat, f.SourceRate, f.Cutoff)
	}

	return nil
}

func validateSampleRate(name string, sampleRate int) error {
	if sampleRate <= 0 || sampleRate > maxSampleRate {
		return fmt.Errorf(errFmtSampleRateRange, ErrInvalidFormat, name, maxSampleRate, sampleRate)
	}

	return nil
}
