package transform

import (
	"strings"
	"unicode"
)

// PhoneticConverter spells text one character at a time using a code word
// table. Characters without a code word are kept as they are.
type PhoneticConverter struct {
	words map[rune]string
}

// NATO is the converter for the NATO spelling alphabet.
var NATO = NewPhoneticConverter(map[rune]string{
	'a': "Alfa", 'b': "Bravo", 'c': "Charlie", 'd': "Delta", 'e': "Echo",
	'f': "Foxtrot", 'g': "Golf", 'h': "Hotel", 'i': "India", 'j': "Juliett",
	'k': "Kilo", 'l': "Lima", 'm': "Mike", 'n': "November", 'o': "Oscar",
	'p': "Papa", 'q': "Quebec", 'r': "Romeo", 's': "Sierra", 't': "Tango",
	'u': "Uniform", 'v': "Victor", 'w': "Whiskey", 'x': "X-ray", 'y': "Yankee",
	'z': "Zulu",
	'0': "Zero", '1': "One", '2': "Two", '3': "Three", '4': "Four",
	'5': "Five", '6': "Six", '7': "Seven", '8': "Eight", '9': "Nine",
	' ': "Space", '.': "Stop", ',': "Comma", '-': "Dash", '?': "Query",
})

// NewPhoneticConverter builds a converter from a lowercase character table.
func NewPhoneticConverter(words map[rune]string) *PhoneticConverter {
	return &PhoneticConverter{words: words}
}

// Convert returns the code words for each character of text, separated by
// single spaces. Uppercase letters map to the same word as lowercase ones.
func (c *PhoneticConverter) Convert(text string) string {
	parts := make([]string, 0, len(text))

	for _, character := range text {
		word, ok := c.words[unicode.ToLower(character)]
		if !ok {
			word = string(character)
		}

		parts = append(parts, word)
	}

	return strings.Join(parts, " ")
}
