// Package config provides the configuration structure for the broadcast service.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/book-expert/configurator"
	"github.com/book-expert/logger"
	"github.com/pelletier/go-toml/v2"
)

// Synthesis backends.
const (
	BackendGoogle = "google"
	BackendEspeak = "espeak"
)

// Durable cache backends.
const (
	CacheBackendFile = "file"
	CacheBackendNATS = "nats"
)

// Default values.
const (
	DefaultNATSURL             = "nats://127.0.0.1:4222"
	DefaultRenderSubject       = "broadcast.render"
	DefaultScriptBucket        = "BROADCAST_SCRIPTS"
	DefaultAudioBucket         = "BROADCAST_AUDIO"
	DefaultCacheBucket         = "BROADCAST_TTS_CACHE"
	DefaultJobTimeoutSeconds   = 300
	DefaultTimeoutSeconds      = 30
	DefaultBearerEnv           = "GCLOUD_BEARER"
	DefaultMaxAttempts         = 3
	DefaultInitialBackoffMilli = 200
	DefaultMaxBackoffMillis    = 5_000
	DefaultBackoffMultiplier   = 2.0
	DefaultOutputPath          = "/tmp/broadcast-service/audio.wav"
	DefaultSampleRate          = 8_000
	DefaultCutoffHz            = 8_000.0
	sourceSampleRate           = 24_000
)

var (
	// ErrUnknownBackend is returned for an unsupported synthesis or cache backend.
	ErrUnknownBackend = errors.New("unknown backend")
	// ErrInvalidOutput is returned for output settings that cannot be produced.
	ErrInvalidOutput = errors.New("invalid output settings")
	// ErrSourceUnavailable is returned when the configurator cannot supply a configuration.
	ErrSourceUnavailable = errors.New("configuration source unavailable")
)

// NATSConfig holds the configuration for NATS.
type NATSConfig struct {
	URL                     string `toml:"url"`
	RenderSubject           string `toml:"render_subject"`
	ScriptObjectStoreBucket string `toml:"script_object_store_bucket"`
	AudioObjectStoreBucket  string `toml:"audio_object_store_bucket"`
	CacheObjectStoreBucket  string `toml:"cache_object_store_bucket"`
	JobTimeoutSeconds       int    `toml:"job_timeout_seconds"`
}

// GoogleConfig holds the Google Text-to-Speech settings. The bearer token is
// read from the environment variable named by BearerEnv.
type GoogleConfig struct {
	Endpoint  string `toml:"endpoint"`
	Project   string `toml:"project"`
	BearerEnv string `toml:"bearer_env"`
}

// EspeakConfig holds the local espeak settings.
type EspeakConfig struct {
	Binary string `toml:"binary"`
	Speed  int    `toml:"speed"`
	Pitch  int    `toml:"pitch"`
}

// SynthesisConfig holds backend selection and orchestrator flags.
type SynthesisConfig struct {
	Backend           string       `toml:"backend"`
	TimeoutSeconds    int          `toml:"timeout_seconds"`
	Seed              uint64       `toml:"seed"`
	DisableRandomness bool         `toml:"disable_randomness"`
	DefaultVoice      string       `toml:"default_voice"`
	Google            GoogleConfig `toml:"google"`
	Espeak            EspeakConfig `toml:"espeak"`
}

// RetryConfig controls retries of failed synthesis calls.
type RetryConfig struct {
	MaxAttempts          int     `toml:"max_attempts"`
	InitialBackoffMillis int     `toml:"initial_backoff_ms"`
	MaxBackoffMillis     int     `toml:"max_backoff_ms"`
	Multiplier           float64 `toml:"multiplier"`
}

// CacheConfig selects the durable cache tier.
type CacheConfig struct {
	Backend      string `toml:"backend"`
	Dir          string `toml:"dir"`
	DisableCache bool   `toml:"disable_cache"`
}

// OutputConfig describes the written WAV file.
type OutputConfig struct {
	Path       string  `toml:"path"`
	SampleRate int     `toml:"sample_rate"`
	CutoffHz   float64 `toml:"cutoff_hz"`
}

// PathsConfig holds the configuration for file paths.
type PathsConfig struct {
	BaseLogsDir string `toml:"base_logs_dir"`
}

// MetricsConfig holds the Prometheus endpoint settings. An empty address
// disables the endpoint.
type MetricsConfig struct {
	ListenAddress string `toml:"listen_address"`
}

// Config is the root configuration structure.
type Config struct {
	NATS      NATSConfig      `toml:"nats"`
	Synthesis SynthesisConfig `toml:"synthesis"`
	Retry     RetryConfig     `toml:"retry"`
	Cache     CacheConfig     `toml:"cache"`
	Output    OutputConfig    `toml:"output"`
	Paths     PathsConfig     `toml:"paths"`
	Metrics   MetricsConfig   `toml:"metrics"`
}

// Default returns a complete configuration that needs no file.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()

	return cfg
}

// Load loads the configuration through the central configurator.
func Load(log *logger.Logger) (*Config, error) {
	var cfg Config

	err := configurator.Load(&cfg, log)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load configuration from configurator: %w", ErrSourceUnavailable, err)
	}

	return finish(&cfg)
}

// LoadFile loads the configuration from a TOML file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config

	err = toml.Unmarshal(data, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return finish(&cfg)
}

func finish(cfg *Config) (*Config, error) {
	cfg.ApplyDefaults()

	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyDefaults fills every zero value with its default.
func (c *Config) ApplyDefaults() {
	setDefault(&c.NATS.URL, DefaultNATSURL)
	setDefault(&c.NATS.RenderSubject, DefaultRenderSubject)
	setDefault(&c.NATS.ScriptObjectStoreBucket, DefaultScriptBucket)
	setDefault(&c.NATS.AudioObjectStoreBucket, DefaultAudioBucket)
	setDefault(&c.NATS.CacheObjectStoreBucket, DefaultCacheBucket)
	setDefault(&c.NATS.JobTimeoutSeconds, DefaultJobTimeoutSeconds)

	setDefault(&c.Synthesis.Backend, BackendGoogle)
	setDefault(&c.Synthesis.TimeoutSeconds, DefaultTimeoutSeconds)
	setDefault(&c.Synthesis.Google.BearerEnv, DefaultBearerEnv)

	setDefault(&c.Retry.MaxAttempts, DefaultMaxAttempts)
	setDefault(&c.Retry.InitialBackoffMillis, DefaultInitialBackoffMilli)
	setDefault(&c.Retry.MaxBackoffMillis, DefaultMaxBackoffMillis)
	setDefault(&c.Retry.Multiplier, DefaultBackoffMultiplier)

	setDefault(&c.Cache.Backend, CacheBackendFile)

	setDefault(&c.Output.Path, DefaultOutputPath)
	setDefault(&c.Output.SampleRate, DefaultSampleRate)
	setDefault(&c.Output.CutoffHz, DefaultCutoffHz)

	setDefault(&c.Paths.BaseLogsDir, os.TempDir())
}

// Validate rejects unknown backends and output settings the writer cannot produce.
func (c *Config) Validate() error {
	switch c.Synthesis.Backend {
	case BackendGoogle, BackendEspeak:
	default:
		return fmt.Errorf("%w: synthesis backend %q", ErrUnknownBackend, c.Synthesis.Backend)
	}

	switch c.Cache.Backend {
	case CacheBackendFile, CacheBackendNATS:
	default:
		return fmt.Errorf("%w: cache backend %q", ErrUnknownBackend, c.Cache.Backend)
	}

	if c.Output.SampleRate <= 0 || c.Output.SampleRate > sourceSampleRate || sourceSampleRate%c.Output.SampleRate != 0 {
		return fmt.Errorf("%w: sample rate %d must divide %d", ErrInvalidOutput, c.Output.SampleRate, sourceSampleRate)
	}

	if c.Output.CutoffHz < 0 {
		return fmt.Errorf("%w: cutoff %.1f must not be negative", ErrInvalidOutput, c.Output.CutoffHz)
	}

	return nil
}

// SynthesisTimeout returns the per-call synthesis timeout.
func (c *Config) SynthesisTimeout() time.Duration {
	return time.Duration(c.Synthesis.TimeoutSeconds) * time.Second
}

// JobTimeout returns the time budget of one worker job.
func (c *Config) JobTimeout() time.Duration {
	return time.Duration(c.NATS.JobTimeoutSeconds) * time.Second
}

func setDefault[T comparable](field *T, value T) {
	var zero T
	if *field == zero {
		*field = value
	}
}
