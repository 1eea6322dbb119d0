package tts

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
)

// espeak defaults.
const (
	DefaultEspeakBinary = "espeak"
	defaultEspeakSpeed  = 140
	defaultEspeakPitch  = 30
	espeakVoice         = "en"
	espeakBackendName   = "espeak"
)

// EspeakConfig configures the local espeak backend.
type EspeakConfig struct {
	Binary string
	Speed  int
	Pitch  int
}

// EspeakProcessor implements core.Synthesizer by running the espeak binary
// and reading the WAV payload from its stdout.
type EspeakProcessor struct {
	config EspeakConfig
}

// NewEspeakProcessor creates an espeak backend, filling unset fields with defaults.
func NewEspeakProcessor(cfg EspeakConfig) *EspeakProcessor {
	if cfg.Binary == "" {
		cfg.Binary = DefaultEspeakBinary
	}

	if cfg.Speed == 0 {
		cfg.Speed = defaultEspeakSpeed
	}

	if cfg.Pitch == 0 {
		cfg.Pitch = defaultEspeakPitch
	}

	return &EspeakProcessor{config: cfg}
}

// Name returns the backend name.
func (p *EspeakProcessor) Name() string {
	return espeakBackendName
}

// VoiceName ignores the model letter; espeak has a single English voice.
func (p *EspeakProcessor) VoiceName(string) string {
	return espeakVoice
}

// Synthesize runs espeak for text.
func (p *EspeakProcessor) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	args := []string{
		text,
		"--stdout",
		"-v", voice,
		"-s", strconv.Itoa(p.config.Speed),
		"-p", strconv.Itoa(p.config.Pitch),
	}

	// #nosec G204 -- the binary comes from configuration and text is passed as a single argument
	cmd := exec.CommandContext(ctx, p.config.Binary, args...)

	var stdout, stderr bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		return nil, fmt.Errorf("%s execution failed: %w - output: %s", p.config.Binary, err, stderr.String())
	}

	return stdout.Bytes(), nil
}
