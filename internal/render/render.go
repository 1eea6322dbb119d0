// Package render turns a clip sequence into one flat sample buffer at the
// source rate.
package render

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/book-expert/broadcast-service/internal/clip"
	"github.com/book-expert/broadcast-service/internal/metrics"
	"github.com/book-expert/broadcast-service/internal/transform"
	"github.com/book-expert/logger"
)

// Log messages.
const (
	logRendered = "Rendered %d samples (%d clips) in %dms"
)

// ErrUnknownClip is returned for clip values the renderer does not handle.
var ErrUnknownClip = errors.New("unknown clip type")

// Generator produces decoded samples for text spoken with an optional voice.
type Generator interface {
	Generate(ctx context.Context, text string, voice clip.VoiceModel) ([]float32, error)
}

// Renderer appends rendered clips to a sample buffer. It calls its Generator
// sequentially, so one Renderer serves one render pass at a time.
type Renderer struct {
	generator Generator
	log       *logger.Logger
}

// New creates a Renderer.
func New(generator Generator, log *logger.Logger) *Renderer {
	return &Renderer{generator: generator, log: log}
}

// Render appends one clip to samples and returns the extended buffer. On error
// the returned buffer still holds everything rendered before the failure.
func (r *Renderer) Render(ctx context.Context, samples []float32, c clip.Clip) ([]float32, error) {
	switch typed := c.(type) {
	case clip.Pause:
		return appendSilence(samples, typed.Samples()), nil
	case clip.Speak:
		return r.renderSpeak(ctx, samples, typed)
	default:
		return samples, fmt.Errorf("%w: %T", ErrUnknownClip, c)
	}
}

// RenderAll renders clips in order into a new buffer and records the pass
// in the render metrics.
func (r *Renderer) RenderAll(ctx context.Context, clips []clip.Clip) ([]float32, error) {
	start := time.Now()

	var samples []float32

	for i, c := range clips {
		var err error

		samples, err = r.Render(ctx, samples, c)
		if err != nil {
			return nil, fmt.Errorf("clip %d: %w", i, err)
		}
	}

	elapsed := time.Since(start)
	metrics.ObserveRender(len(clips), len(samples), elapsed)
	r.log.Info(logRendered, len(samples), len(clips), elapsed.Milliseconds())

	return samples, nil
}

func (r *Renderer) renderSpeak(ctx context.Context, samples []float32, speak clip.Speak) ([]float32, error) {
	for _, segment := range transform.Expand(speak) {
		if segment.IsSilence() {
			samples = appendSilence(samples, segment.SilenceSamples)

			continue
		}

		err := ctx.Err()
		if err != nil {
			return samples, fmt.Errorf("render cancelled: %w", err)
		}

		generated, err := r.generator.Generate(ctx, segment.Text, segment.Voice)
		if err != nil {
			return samples, err
		}

		samples = append(samples, generated...)
	}

	return samples, nil
}

func appendSilence(samples []float32, count int) []float32 {
	if count <= 0 {
		return samples
	}

	return append(samples, make([]float32, count)...)
}
