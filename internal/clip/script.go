package clip

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Script entry types.
const (
	entryTypeSpeak = "speak"
	entryTypePause = "pause"
)

// Static errors for script parsing.
var (
	ErrEmptyScript      = errors.New("script contains no clips")
	ErrUnknownEntryType = errors.New("unknown script entry type")
	ErrEmptySpeakText   = errors.New("speak entry has no text")
)

// ScriptEntry is the JSON form of one clip.
//
//	{"type": "speak", "text": "hello", "voice": "A", "encoding": "ascii"}
//	{"type": "pause", "duration_ms": 1000}
type ScriptEntry struct {
	Type       string `json:"type"`
	Text       string `json:"text,omitempty"`
	Voice      string `json:"voice,omitempty"`
	Encoding   string `json:"encoding,omitempty"`
	DurationMS uint32 `json:"duration_ms,omitempty"`
}

// ParseScript decodes a JSON array of script entries into clips.
func ParseScript(data []byte) ([]Clip, error) {
	var entries []ScriptEntry

	err := json.Unmarshal(data, &entries)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal script: %w", err)
	}

	if len(entries) == 0 {
		return nil, ErrEmptyScript
	}

	clips := make([]Clip, 0, len(entries))

	for index, entry := range entries {
		parsed, entryErr := entry.toClip()
		if entryErr != nil {
			return nil, fmt.Errorf("script entry %d: %w", index, entryErr)
		}

		clips = append(clips, parsed)
	}

	return clips, nil
}

// MarshalScript encodes clips into the JSON form accepted by ParseScript.
func MarshalScript(clips []Clip) ([]byte, error) {
	entries := make([]ScriptEntry, 0, len(clips))

	for _, current := range clips {
		switch typed := current.(type) {
		case Speak:
			entry := ScriptEntry{Type: entryTypeSpeak, Text: typed.Text, Voice: typed.Voice.String()}
			if typed.Encoding != EncodingNone {
				entry.Encoding = typed.Encoding.String()
			}

			entries = append(entries, entry)
		case Pause:
			entries = append(entries, ScriptEntry{Type: entryTypePause, DurationMS: typed.DurationMillis})
		}
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal script: %w", err)
	}

	return data, nil
}

func (e ScriptEntry) toClip() (Clip, error) {
	switch e.Type {
	case entryTypePause:
		return NewPause(e.DurationMS), nil
	case entryTypeSpeak:
		if e.Text == "" {
			return nil, ErrEmptySpeakText
		}

		voice, err := ParseVoice(e.Voice)
		if err != nil {
			return nil, err
		}

		encoding, err := ParseEncoding(e.Encoding)
		if err != nil {
			return nil, err
		}

		return NewSpeak(e.Text).WithVoice(voice).WithEncoding(encoding), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEntryType, e.Type)
	}
}
