package audio

import "math"

// LowPass applies a single-pole RC low-pass filter to samples in place.
// A cutoff of zero leaves the samples untouched.
func LowPass(samples []float32, sampleRate, cutoff float64) {
	if len(samples) == 0 || cutoff <= 0 || sampleRate <= 0 {
		return
	}

	rc := 1.0 / (2 * math.Pi * cutoff)
	dt := 1.0 / sampleRate
	alpha := float32(dt / (rc + dt))

	samples[0] *= alpha

	for i := 1; i < len(samples); i++ {
		samples[i] = samples[i-1] + alpha*(samples[i]-samples[i-1])
	}
}

// Downsample keeps every factor-th sample, starting at index factor-1.
func Downsample(samples []float32, factor int) []float32 {
	if factor <= 1 {
		return append([]float32(nil), samples...)
	}

	out := make([]float32, 0, len(samples)/factor)

	for i := factor - 1; i < len(samples); i += factor {
		out = append(out, samples[i])
	}

	return out
}
