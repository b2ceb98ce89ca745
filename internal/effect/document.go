// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package effect provides the text transformations behind the typewrite
// and flashup animations and plans the frame sequences built from them.
package effect

import (
	"strings"
	"unicode/utf8"
)

const (
	lineSep = "\n"
	wordSep = " "
)

// Document is a text partitioned into lines of words. Lines are separated
// by a newline and words by a single space. Runs of separators give empty
// words, which are retained so that String reconstructs the source.
type Document struct {
	Lines [][]string
}

// Parse returns the Document for s.
func Parse(s string) Document {
	lines := strings.Split(s, lineSep)
	doc := Document{Lines: make([][]string, len(lines))}
	for i, l := range lines {
		doc.Lines[i] = strings.Split(l, wordSep)
	}
	return doc
}

// String returns the text held by the document.
func (d Document) String() string {
	var buf strings.Builder
	for i, l := range d.Lines {
		if i != 0 {
			buf.WriteString(lineSep)
		}
		buf.WriteString(strings.Join(l, wordSep))
	}
	return buf.String()
}

// Shape returns the number of characters in each word of each line.
func (d Document) Shape() [][]int {
	shape := make([][]int, len(d.Lines))
	for i, l := range d.Lines {
		shape[i] = make([]int, len(l))
		for j, w := range l {
			shape[i][j] = utf8.RuneCountInString(w)
		}
	}
	return shape
}

// Validate returns s with any invalid UTF-8 removed. All length and
// truncation operations in this package count Unicode scalar values of
// validated text.
func Validate(s string) string {
	return strings.ToValidUTF8(s, "")
}
