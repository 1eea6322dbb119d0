package tts

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/book-expert/broadcast-service/internal/cache"
	"github.com/book-expert/broadcast-service/internal/clip"
	"github.com/book-expert/broadcast-service/internal/core"
	"github.com/book-expert/broadcast-service/internal/metrics"
	"github.com/book-expert/logger"
)

// Orchestrator defaults.
const (
	// DefaultSeed seeds the voice generator when no seed is configured.
	DefaultSeed uint64 = 0x0102030405060708
	// FallbackVoice is used when no voice is given and randomness is disabled.
	FallbackVoice = clip.VoiceF
	// DefaultTimeout bounds a single synthesis call.
	DefaultTimeout = 30 * time.Second
)

// Log messages.
const (
	logCacheHit       = "Cache hit: \"%s\" (model %s)"
	logCacheMiss      = "Cache miss: \"%s\" (model %s)"
	logCorruptEntry   = "Discarding corrupt cache entry for \"%s\" (model %s): %v"
	logCacheWriteFail = "Continuing without caching \"%s\": %v"
)

// ErrSynthesisFailed wraps every error returned by the synthesis backend.
var ErrSynthesisFailed = errors.New("synthesis failed")

// Config holds the orchestrator flags.
type Config struct {
	Seed              uint64
	DisableCache      bool
	DisableRandomness bool
	Timeout           time.Duration
	Retry             RetryPolicy
}

// Tts is one render session's synthesis orchestrator. It owns the seeded voice
// generator and the audio cache; calls on one Tts must be serialized.
type Tts struct {
	synth  core.Synthesizer
	cache  *cache.Cache
	rng    *rand.Rand
	log    *logger.Logger
	config Config
}

// New creates an orchestrator. store is the durable cache tier and may be nil.
func New(cfg Config, synth core.Synthesizer, store core.ObjectStore, log *logger.Logger) *Tts {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry = DefaultRetryPolicy()
	}

	audioCache := cache.New(store, log)
	if cfg.DisableCache {
		audioCache.Disable()
	}

	return &Tts{
		synth:  synth,
		cache:  audioCache,
		rng:    rand.New(rand.NewPCG(cfg.Seed, ^cfg.Seed)),
		log:    log,
		config: cfg,
	}
}

// ResolveVoice picks the concrete voice for a request. An explicit voice wins;
// otherwise the seeded generator draws one when randomness is enabled, and
// FallbackVoice is used when it is not.
func (t *Tts) ResolveVoice(voice clip.VoiceModel) clip.VoiceModel {
	if voice.IsSet() {
		return voice
	}

	if t.config.DisableRandomness {
		return FallbackVoice
	}

	voices := clip.AllVoices()

	return voices[t.rng.IntN(len(voices))]
}

// Generate returns the decoded samples for text spoken with voice. The text is
// lowercased before lookup and synthesis.
func (t *Tts) Generate(ctx context.Context, text string, voice clip.VoiceModel) ([]float32, error) {
	text = strings.ToLower(text)
	model := t.synth.VoiceName(t.ResolveVoice(voice).String())

	payload, ok := t.cache.Get(ctx, text, model)
	if ok {
		samples, err := DecodePCM(payload)
		if err == nil {
			t.log.Info(logCacheHit, text, model)
			metrics.ObserveSynthesis(metrics.ResultHit)

			return samples, nil
		}

		t.log.Warn(logCorruptEntry, text, model, err)
		t.cache.Forget(text, model)
	}

	t.log.Info(logCacheMiss, text, model)

	payload, err := t.synthesize(ctx, text, model)
	if err != nil {
		metrics.ObserveSynthesis(metrics.ResultError)

		return nil, err
	}

	samples, err := DecodePCM(payload)
	if err != nil {
		metrics.ObserveSynthesis(metrics.ResultError)

		return nil, fmt.Errorf("%w for \"%s\" (model %s): %w", ErrSynthesisFailed, text, model, err)
	}

	metrics.ObserveSynthesis(metrics.ResultMiss)

	err = t.cache.Put(ctx, text, model, payload)
	if err != nil {
		t.log.Warn(logCacheWriteFail, text, err)
	}

	return samples, nil
}

func (t *Tts) synthesize(ctx context.Context, text, model string) ([]byte, error) {
	var payload []byte

	err := t.config.Retry.Do(ctx, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, t.config.Timeout)
		defer cancel()

		data, err := t.synth.Synthesize(callCtx, text, model)
		if err != nil {
			return err
		}

		payload = data

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w for \"%s\" (model %s) via %s: %w", ErrSynthesisFailed, text, model, t.synth.Name(), err)
	}

	return payload, nil
}
