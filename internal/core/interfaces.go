// Package core defines the interfaces shared by the broadcast service components.
package core

import (
	"context"
	"errors"

	"github.com/book-expert/broadcast-service/internal/clip"
)

// ErrObjectNotFound is returned by an ObjectStore when a key has no object.
var ErrObjectNotFound = errors.New("object not found")

// ObjectStore defines the interface for interacting with a key-value blob store.
type ObjectStore interface {
	Download(ctx context.Context, key string) ([]byte, error)
	Upload(ctx context.Context, key string, data []byte) error
}

// Synthesizer is an external text-to-speech backend.
type Synthesizer interface {
	// Name identifies the backend in logs and metrics.
	Name() string
	// VoiceName maps a voice letter (A through J) to the backend's identifier.
	VoiceName(model string) string
	// Synthesize returns a 16-bit PCM WAVE payload for text spoken by voice.
	Synthesize(ctx context.Context, text, voice string) ([]byte, error)
}

// RenderOptions customises a single render session.
type RenderOptions struct {
	// Seed overrides the configured generator seed when non-zero.
	Seed uint64
	// DefaultVoice pins every Speak clip that has no voice of its own.
	DefaultVoice clip.VoiceModel
	// DisableCache skips the durable cache tier for this session.
	DisableCache bool
	// DisableRandomness makes unpinned clips use the fallback voice.
	DisableRandomness bool
}

// BroadcastRenderer turns a clip script into a finished waveform file.
type BroadcastRenderer interface {
	RenderWAV(ctx context.Context, clips []clip.Clip, opts RenderOptions) ([]byte, error)
}
