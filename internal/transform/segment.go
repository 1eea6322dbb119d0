// Package transform expands a Speak clip's text into an ordered list of
// synthesis and silence segments, one list per encoding mode.
package transform

import (
	"github.com/book-expert/broadcast-service/internal/clip"
)

// Pause lengths inserted between encoded units, in milliseconds.
const (
	ShortPauseMillis = 160
	ChunkPauseMillis = 400
	SpacePauseMillis = 600
)

// ASCIIChunkSize is the number of digits spoken before a chunk pause.
const ASCIIChunkSize = 5

// spaceWord is the phonetic spelling of a blank, rendered as silence.
const spaceWord = "space"

// Segment is one atomic step of a rendered clip: either a synthesis request
// for Text in Voice, or SilenceSamples samples of silence.
type Segment struct {
	Text           string
	Voice          clip.VoiceModel
	SilenceSamples int
}

// IsSilence reports whether the segment is a silence span.
func (s Segment) IsSilence() bool {
	return s.Text == ""
}

// Speech creates a synthesis segment.
func Speech(text string, voice clip.VoiceModel) Segment {
	return Segment{Text: text, Voice: voice}
}

// Silence creates a silence segment of the given length in milliseconds.
func Silence(millis int) Segment {
	return Segment{SilenceSamples: clip.SamplesPerMillisecond * millis}
}
