// internal/cw/alphabet.go

// Package cw holds the Morse alphabet, the ITU timing model and a
// fixed-speed decoder used to check rendered audio.
package cw

import (
	"strings"
	"unicode"
)

// Element is one keyed unit of a Morse character.
type Element uint8

const (
	Dit Element = iota
	Dah
)

// Pattern is an ordered sequence of elements for one character or prosign.
// An empty pattern means the symbol is not in the table.
type Pattern []Element

// String renders the pattern as dots and dashes.
func (p Pattern) String() string {
	var b strings.Builder
	for _, e := range p {
		if e == Dah {
			b.WriteByte('-')
		} else {
			b.WriteByte('.')
		}
	}
	return b.String()
}

// ParsePattern converts a ".-" string into a Pattern. Characters other than
// '.' and '-' are ignored.
func ParsePattern(s string) Pattern {
	p := make(Pattern, 0, len(s))
	for _, c := range s {
		switch c {
		case '.':
			p = append(p, Dit)
		case '-':
			p = append(p, Dah)
		}
	}
	return p
}

// ProsignMarker prefixes a word that must be keyed as a single prosign.
const ProsignMarker = '@'

// Character sets offered to the practice generator.
var (
	Letters = []rune("ABCDEFGHIJKLMNOPQRSTUVWXYZ")
	Numbers = []rune("0123456789")
	Symbols = []rune(".,/=?")
)

var chars = map[rune]string{
	'A': ".-", 'B': "-...", 'C': "-.-.", 'D': "-..", 'E': ".",
	'F': "..-.", 'G': "--.", 'H': "....", 'I': "..", 'J': ".---",
	'K': "-.-", 'L': ".-..", 'M': "--", 'N': "-.", 'O': "---",
	'P': ".--.", 'Q': "--.-", 'R': ".-.", 'S': "...", 'T': "-",
	'U': "..-", 'V': "...-", 'W': ".--", 'X': "-..-", 'Y': "-.--",
	'Z': "--..",
	'1': ".----", '2': "..---", '3': "...--", '4': "....-", '5': ".....",
	'6': "-....", '7': "--...", '8': "---..", '9': "----.", '0': "-----",
	'/': "-..-.", '=': "-...-", '?': "..--..", '.': ".-.-.-", ',': "--..--",
}

var prosigns = map[string]string{
	"AR": ".-.-.",
	"BT": "-...-",
	"SK": "...-.-",
	"KN": "-.--.",
	"BK": "-...-.-",
}

// prosignOrder keeps Prosigns() deterministic.
var prosignOrder = []string{"AR", "BT", "SK", "KN", "BK"}

// PatternFor returns the pattern for r, upper-casing letters first.
// Unknown symbols yield an empty pattern.
func PatternFor(r rune) Pattern {
	s, ok := chars[unicode.ToUpper(r)]
	if !ok {
		return nil
	}
	return ParsePattern(s)
}

// ProsignFor returns the pattern for a prosign name such as "SK". A leading
// ProsignMarker is accepted and stripped.
func ProsignFor(name string) Pattern {
	name = strings.TrimPrefix(strings.ToUpper(name), string(ProsignMarker))
	s, ok := prosigns[name]
	if !ok {
		return nil
	}
	return ParsePattern(s)
}

// Prosigns returns the known prosign names.
func Prosigns() []string {
	out := make([]string, len(prosignOrder))
	copy(out, prosignOrder)
	return out
}
