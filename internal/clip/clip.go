// Package clip defines the broadcast script model: spoken text and silent pauses.
package clip

// Source audio is produced at 24 kHz mono before the final downsampling.
const (
	SourceSampleRate      = 24_000
	SamplesPerMillisecond = SourceSampleRate / 1000
)

// DefaultPreamble is spoken before the message of a classic broadcast.
const DefaultPreamble = "This is an automated broadcast. Please listen carefully."

// preamblePauseMillis separates the preamble from the message.
const preamblePauseMillis = 1000

// Clip is one unit of a broadcast script, either a Speak or a Pause.
type Clip interface {
	isClip()
}

// Speak is a clip that is rendered through text-to-speech.
type Speak struct {
	Text     string
	Voice    VoiceModel
	Encoding Encoding
}

// NewSpeak creates a Speak clip with no fixed voice and no encoding.
func NewSpeak(text string) Speak {
	return Speak{Text: text}
}

// WithVoice returns a copy of the clip pinned to the given voice.
func (s Speak) WithVoice(voice VoiceModel) Speak {
	s.Voice = voice

	return s
}

// WithEncoding returns a copy of the clip using the given encoding.
func (s Speak) WithEncoding(encoding Encoding) Speak {
	s.Encoding = encoding

	return s
}

func (Speak) isClip() {}

// Pause is a clip of silence.
type Pause struct {
	DurationMillis uint32
}

// NewPause creates a pause of the given length in milliseconds.
func NewPause(millis uint32) Pause {
	return Pause{DurationMillis: millis}
}

// Samples returns the number of source-rate samples the pause spans.
func (p Pause) Samples() int {
	return SamplesPerMillisecond * int(p.DurationMillis)
}

func (Pause) isClip() {}

// Broadcast builds the classic script: the preamble, a one second pause, then
// the message spoken with the given encoding. An empty preamble skips both the
// preamble and the pause.
func Broadcast(preamble, message string, encoding Encoding) []Clip {
	clips := make([]Clip, 0, 3)

	if preamble != "" {
		clips = append(clips, NewSpeak(preamble), NewPause(preamblePauseMillis))
	}

	return append(clips, NewSpeak(message).WithEncoding(encoding))
}

// ApplyDefaultVoice pins every Speak clip without a voice to voice.
// Clips are copied; the input slice is not modified.
func ApplyDefaultVoice(clips []Clip, voice VoiceModel) []Clip {
	result := make([]Clip, len(clips))

	for index, current := range clips {
		speak, ok := current.(Speak)
		if ok && !speak.Voice.IsSet() && voice.IsSet() {
			current = speak.WithVoice(voice)
		}

		result[index] = current
	}

	return result
}
