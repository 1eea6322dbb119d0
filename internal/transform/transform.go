package transform

import (
	"fmt"
	"strings"

	"github.com/book-expert/broadcast-service/internal/clip"
)

// Expand returns the segments for a Speak clip according to its encoding.
// Unknown encodings fall back to speaking the text unchanged.
func Expand(speak clip.Speak) []Segment {
	switch speak.Encoding {
	case clip.EncodingWords:
		return Words(speak.Text, speak.Voice)
	case clip.EncodingASCII:
		return ASCII(speak.Text, speak.Voice)
	case clip.EncodingPhonetic:
		return Phonetic(speak.Text, speak.Voice)
	case clip.EncodingNone:
		return Plain(speak.Text, speak.Voice)
	default:
		return Plain(speak.Text, speak.Voice)
	}
}

// Plain speaks the whole text as one request. Blank text yields no segments.
func Plain(text string, voice clip.VoiceModel) []Segment {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	return []Segment{Speech(text, voice)}
}

// Words speaks each whitespace-separated word as its own request, without
// pauses between them.
func Words(text string, voice clip.VoiceModel) []Segment {
	words := strings.Fields(text)
	segments := make([]Segment, 0, len(words))

	for _, word := range words {
		segments = append(segments, Speech(word, voice))
	}

	return segments
}

// ASCII spells every byte of text as a zero-padded three digit decimal code.
// Each digit is spoken alone followed by a short pause, and every group of
// five digits is followed by a longer pause.
func ASCII(text string, voice clip.VoiceModel) []Segment {
	digits := ASCIIDigits(text)
	if digits == "" {
		return nil
	}

	chunkCount := (len(digits) + ASCIIChunkSize - 1) / ASCIIChunkSize
	segments := make([]Segment, 0, 2*len(digits)+chunkCount)

	for start := 0; start < len(digits); start += ASCIIChunkSize {
		end := min(start+ASCIIChunkSize, len(digits))

		for _, digit := range digits[start:end] {
			segments = append(segments, Speech(string(digit), voice), Silence(ShortPauseMillis))
		}

		segments = append(segments, Silence(ChunkPauseMillis))
	}

	return segments
}

// ASCIIDigits returns the concatenated three digit codes of every byte in text.
func ASCIIDigits(text string) string {
	var builder strings.Builder

	builder.Grow(3 * len(text))

	for index := range len(text) {
		fmt.Fprintf(&builder, "%03d", text[index])
	}

	return builder.String()
}

// Phonetic spells text with the NATO alphabet. Each code word is spoken and
// followed by a short pause; blanks become a long pause and are not spoken.
func Phonetic(text string, voice clip.VoiceModel) []Segment {
	words := strings.Fields(NATO.Convert(text))
	segments := make([]Segment, 0, 2*len(words))

	for _, word := range words {
		if strings.EqualFold(word, spaceWord) {
			segments = append(segments, Silence(SpacePauseMillis))

			continue
		}

		segments = append(segments, Speech(word, voice), Silence(ShortPauseMillis))
	}

	return segments
}
