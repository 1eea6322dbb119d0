// Package broadcast composes the synthesis orchestrator, the clip renderer
// and the WAV writer into render sessions.
package broadcast

import (
	"context"
	"fmt"
	"time"

	"github.com/book-expert/broadcast-service/internal/clip"
	"github.com/book-expert/broadcast-service/internal/config"
	"github.com/book-expert/broadcast-service/internal/core"
	"github.com/book-expert/broadcast-service/internal/render"
	"github.com/book-expert/broadcast-service/internal/tts"
	"github.com/book-expert/broadcast-service/internal/tts/audio"
	"github.com/book-expert/logger"
	"github.com/google/uuid"
)

// Log messages.
const (
	logSessionStart = "Render session %s: %d clips (backend %s, cache %t, randomness %t)"
	logWrote        = "Wrote broadcast to %s"
)

// Service renders clip scripts. Every call runs in its own session with a
// fresh orchestrator, so concurrent calls never share a generator or cache table.
type Service struct {
	synth        core.Synthesizer
	store        core.ObjectStore
	log          *logger.Logger
	cfg          *config.Config
	format       audio.Format
	defaultVoice clip.VoiceModel
}

// NewService creates a Service. store is the durable cache tier and may be nil.
func NewService(cfg *config.Config, synth core.Synthesizer, store core.ObjectStore, log *logger.Logger) (*Service, error) {
	format := audio.DefaultFormat()
	format.TargetRate = cfg.Output.SampleRate
	format.Cutoff = cfg.Output.CutoffHz

	err := format.Validate()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrInvalidOutput, err)
	}

	defaultVoice, err := clip.ParseVoice(cfg.Synthesis.DefaultVoice)
	if err != nil {
		return nil, fmt.Errorf("invalid default voice: %w", err)
	}

	return &Service{
		synth:        synth,
		store:        store,
		log:          log,
		cfg:          cfg,
		format:       format,
		defaultVoice: defaultVoice,
	}, nil
}

// Format returns the output format.
func (s *Service) Format() audio.Format {
	return s.format
}

// Render returns the 24 kHz sample buffer for clips.
func (s *Service) Render(ctx context.Context, clips []clip.Clip, opts core.RenderOptions) ([]float32, error) {
	session := uuid.NewString()
	ttsConfig := s.sessionConfig(opts)

	s.log.Info(logSessionStart, session, len(clips), s.synth.Name(), !ttsConfig.DisableCache, !ttsConfig.DisableRandomness)

	voice := opts.DefaultVoice
	if !voice.IsSet() {
		voice = s.defaultVoice
	}

	orchestrator := tts.New(ttsConfig, s.synth, s.store, s.log)

	samples, err := render.New(orchestrator, s.log).RenderAll(ctx, clip.ApplyDefaultVoice(clips, voice))
	if err != nil {
		return nil, fmt.Errorf("render session %s: %w", session, err)
	}

	return samples, nil
}

// RenderWAV renders clips and returns the finished WAV file contents.
func (s *Service) RenderWAV(ctx context.Context, clips []clip.Clip, opts core.RenderOptions) ([]byte, error) {
	samples, err := s.Render(ctx, clips, opts)
	if err != nil {
		return nil, err
	}

	data, err := audio.EncodeBytes(samples, s.format)
	if err != nil {
		return nil, fmt.Errorf("failed to encode wav: %w", err)
	}

	return data, nil
}

// RenderToFile renders clips and writes the WAV file to path. Nothing is
// written when rendering fails.
func (s *Service) RenderToFile(ctx context.Context, clips []clip.Clip, path string, opts core.RenderOptions) error {
	samples, err := s.Render(ctx, clips, opts)
	if err != nil {
		return err
	}

	err = audio.WriteFile(path, samples, s.format)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	s.log.Info(logWrote, path)

	return nil
}

func (s *Service) sessionConfig(opts core.RenderOptions) tts.Config {
	seed := s.cfg.Synthesis.Seed
	if opts.Seed != 0 {
		seed = opts.Seed
	}

	if seed == 0 {
		seed = tts.DefaultSeed
	}

	retry := s.cfg.Retry

	return tts.Config{
		Seed:              seed,
		DisableCache:      s.cfg.Cache.DisableCache || opts.DisableCache,
		DisableRandomness: s.cfg.Synthesis.DisableRandomness || opts.DisableRandomness,
		Timeout:           s.cfg.SynthesisTimeout(),
		Retry: tts.RetryPolicy{
			MaxAttempts:    retry.MaxAttempts,
			InitialBackoff: time.Duration(retry.InitialBackoffMillis) * time.Millisecond,
			MaxBackoff:     time.Duration(retry.MaxBackoffMillis) * time.Millisecond,
			Multiplier:     retry.Multiplier,
		},
	}
}
