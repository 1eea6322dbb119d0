package broadcast

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/book-expert/broadcast-service/internal/cache"
	"github.com/book-expert/broadcast-service/internal/config"
	"github.com/book-expert/broadcast-service/internal/core"
	"github.com/book-expert/broadcast-service/internal/objectstore"
	"github.com/book-expert/broadcast-service/internal/tts"
	"github.com/nats-io/nats.go"
)

// ErrJetStreamRequired is returned when the NATS cache tier is selected without a connection.
var ErrJetStreamRequired = errors.New("nats cache backend requires a jetstream connection")

// NewSynthesizer builds the configured synthesis backend. The Google bearer
// token is read from the environment variable named in the configuration.
func NewSynthesizer(cfg *config.Config, httpClient *http.Client) (core.Synthesizer, error) {
	switch cfg.Synthesis.Backend {
	case config.BackendGoogle:
		google := cfg.Synthesis.Google

		client, err := tts.NewGoogleClient(tts.GoogleConfig{
			Endpoint: google.Endpoint,
			Bearer:   os.Getenv(google.BearerEnv),
			Project:  google.Project,
		}, httpClient)
		if err != nil {
			return nil, fmt.Errorf("failed to create google backend (bearer from $%s): %w", google.BearerEnv, err)
		}

		return client, nil
	case config.BackendEspeak:
		espeak := cfg.Synthesis.Espeak

		return tts.NewEspeakProcessor(tts.EspeakConfig{
			Binary: espeak.Binary,
			Speed:  espeak.Speed,
			Pitch:  espeak.Pitch,
		}), nil
	default:
		return nil, fmt.Errorf("%w: synthesis backend %q", config.ErrUnknownBackend, cfg.Synthesis.Backend)
	}
}

// NewCacheStore builds the durable cache tier. jetstreamContext is only used
// by the NATS backend and may be nil otherwise.
func NewCacheStore(cfg *config.Config, jetstreamContext nats.JetStreamContext) (core.ObjectStore, error) {
	switch cfg.Cache.Backend {
	case config.CacheBackendFile:
		return cache.NewFileStore(cache.ResolveDir(cfg.Cache.Dir)), nil
	case config.CacheBackendNATS:
		if jetstreamContext == nil {
			return nil, ErrJetStreamRequired
		}

		store, err := objectstore.New(jetstreamContext, cfg.NATS.CacheObjectStoreBucket)
		if err != nil {
			return nil, fmt.Errorf("failed to open cache bucket: %w", err)
		}

		return store, nil
	default:
		return nil, fmt.Errorf("%w: cache backend %q", config.ErrUnknownBackend, cfg.Cache.Backend)
	}
}
