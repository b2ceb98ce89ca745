// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package effect

import (
	"math/rand/v2"
	"strings"
)

// Class is a character class used to constrain scrambling.
type Class int

const (
	Other Class = iota
	Lower
	Upper
	Digit
	Punct
)

func (c Class) String() string {
	switch c {
	case Lower:
		return "lower"
	case Upper:
		return "upper"
	case Digit:
		return "digit"
	case Punct:
		return "punct"
	default:
		return "other"
	}
}

const (
	lowercase   = "abcdefghijklmnopqrstuvwxyz"
	uppercase   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digits      = "0123456789"
	punctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"
	letters     = lowercase + uppercase
)

// ClassOf returns the class of r. Only ASCII characters are classified;
// everything else is Other.
func ClassOf(r rune) Class {
	switch {
	case 'a' <= r && r <= 'z':
		return Lower
	case 'A' <= r && r <= 'Z':
		return Upper
	case '0' <= r && r <= '9':
		return Digit
	case r < 0x80 && strings.ContainsRune(punctuation, r):
		return Punct
	default:
		return Other
	}
}

// Alphabet returns the replacement alphabet for characters of class c.
// Other characters are replaced from the full letter alphabet.
func (c Class) Alphabet() string {
	switch c {
	case Lower:
		return lowercase
	case Upper:
		return uppercase
	case Digit:
		return digits
	case Punct:
		return punctuation
	default:
		return letters
	}
}

// Scramble returns a document with the same shape as doc where each
// character has been replaced by one drawn uniformly from the alphabet
// of its class using rnd. Empty words make no draws.
func Scramble(doc Document, rnd *rand.Rand) Document {
	dup := Document{Lines: make([][]string, len(doc.Lines))}
	var buf strings.Builder
	for i, l := range doc.Lines {
		dup.Lines[i] = make([]string, len(l))
		for j, w := range l {
			if w == "" {
				continue
			}
			buf.Reset()
			for _, r := range w {
				alpha := ClassOf(r).Alphabet()
				buf.WriteByte(alpha[rnd.IntN(len(alpha))])
			}
			dup.Lines[i][j] = buf.String()
		}
	}
	return dup
}
