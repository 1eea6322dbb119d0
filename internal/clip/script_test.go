package clip_test

import (
	"testing"

	"github.com/book-expert/broadcast-service/internal/clip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScript(t *testing.T) {
	t.Parallel()

	data := []byte(`[
		{"type": "speak", "text": "Phonetic encoding"},
		{"type": "speak", "text": "ABCD", "encoding": "phonetic", "voice": "b"},
		{"type": "pause", "duration_ms": 400}
	]`)

	clips, err := clip.ParseScript(data)
	require.NoError(t, err)
	require.Len(t, clips, 3)

	assert.Equal(t, clip.NewSpeak("Phonetic encoding"), clips[0])
	assert.Equal(t, clip.NewSpeak("ABCD").WithVoice(clip.VoiceB).WithEncoding(clip.EncodingPhonetic), clips[1])
	assert.Equal(t, clip.NewPause(400), clips[2])
}

func TestParseScript_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{name: "empty array", data: `[]`, wantErr: clip.ErrEmptyScript},
		{name: "unknown type", data: `[{"type": "beep"}]`, wantErr: clip.ErrUnknownEntryType},
		{name: "missing text", data: `[{"type": "speak"}]`, wantErr: clip.ErrEmptySpeakText},
		{name: "bad voice", data: `[{"type": "speak", "text": "x", "voice": "Z"}]`, wantErr: clip.ErrUnknownVoice},
		{name: "bad encoding", data: `[{"type": "speak", "text": "x", "encoding": "rot13"}]`, wantErr: clip.ErrUnknownEncoding},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			_, err := clip.ParseScript([]byte(testCase.data))
			require.ErrorIs(t, err, testCase.wantErr)
		})
	}

	_, err := clip.ParseScript([]byte(`{not json`))
	require.Error(t, err)
}

func TestMarshalScript(t *testing.T) {
	t.Parallel()

	clips := []clip.Clip{
		clip.NewSpeak("hi").WithVoice(clip.VoiceA),
		clip.NewPause(250),
		clip.NewSpeak("AB").WithEncoding(clip.EncodingASCII),
	}

	data, err := clip.MarshalScript(clips)
	require.NoError(t, err)

	parsed, err := clip.ParseScript(data)
	require.NoError(t, err)
	assert.Equal(t, clips, parsed)
}
