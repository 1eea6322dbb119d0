package clip

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownVoice is returned when a voice name is not one of A through J.
var ErrUnknownVoice = errors.New("unknown voice model")

// VoiceModel identifies one synthetic voice from a closed set (A through J).
// The zero value means no voice was chosen and the synthesis session picks one.
type VoiceModel int

// Voice models, named after the en-US-Standard-* voice family.
const (
	VoiceUnset VoiceModel = iota
	VoiceA
	VoiceB
	VoiceC
	VoiceD
	VoiceE
	VoiceF
	VoiceG
	VoiceH
	VoiceI
	VoiceJ
)

const voiceLetters = "ABCDEFGHIJ"

// AllVoices lists every selectable voice in order.
func AllVoices() []VoiceModel {
	return []VoiceModel{VoiceA, VoiceB, VoiceC, VoiceD, VoiceE, VoiceF, VoiceG, VoiceH, VoiceI, VoiceJ}
}

// IsSet reports whether v names a concrete voice.
func (v VoiceModel) IsSet() bool {
	return v >= VoiceA && v <= VoiceJ
}

// String returns the voice letter, or an empty string when unset.
func (v VoiceModel) String() string {
	if !v.IsSet() {
		return ""
	}

	return string(voiceLetters[v-VoiceA])
}

// ParseVoice converts a single letter (any case) into a VoiceModel.
// An empty string yields VoiceUnset.
func ParseVoice(name string) (VoiceModel, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return VoiceUnset, nil
	}

	index := strings.Index(voiceLetters, strings.ToUpper(name))
	if len(name) != 1 || index < 0 {
		return VoiceUnset, fmt.Errorf("%w: %q", ErrUnknownVoice, name)
	}

	return VoiceA + VoiceModel(index), nil
}
