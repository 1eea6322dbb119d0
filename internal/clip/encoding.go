package clip

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownEncoding is returned when an encoding name is not recognised.
var ErrUnknownEncoding = errors.New("unknown encoding")

// Encoding selects how a Speak clip's text is expanded before synthesis.
type Encoding int

const (
	// EncodingNone speaks the text as a single request.
	EncodingNone Encoding = iota
	// EncodingWords speaks each whitespace-separated word on its own.
	EncodingWords
	// EncodingASCII spells every byte as three decimal digits, in groups of five.
	EncodingASCII
	// EncodingPhonetic spells every character with the NATO phonetic alphabet.
	EncodingPhonetic
)

var encodingNames = map[Encoding]string{
	EncodingNone:     "none",
	EncodingWords:    "words",
	EncodingASCII:    "ascii",
	EncodingPhonetic: "phonetic",
}

func (e Encoding) String() string {
	name, ok := encodingNames[e]
	if !ok {
		return fmt.Sprintf("encoding(%d)", int(e))
	}

	return name
}

// ParseEncoding converts a case-insensitive name into an Encoding.
// An empty string yields EncodingNone.
func ParseEncoding(name string) (Encoding, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return EncodingNone, nil
	}

	for encoding, candidate := range encodingNames {
		if candidate == name {
			return encoding, nil
		}
	}

	return EncodingNone, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
}
