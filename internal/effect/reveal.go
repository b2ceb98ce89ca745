// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package effect

import "unicode/utf8"

// Reveal returns the typewriter snapshots of text: the full text followed
// by successively shorter prefixes down to the first character. The number
// of snapshots is the number of characters in the validated text.
func Reveal(text string) []string {
	text = Validate(text)
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return nil
	}
	snaps := make([]string, 0, n)
	for i := n; i > 0; i-- {
		snaps = append(snaps, Prefix(text, i))
	}
	return snaps
}

// Prefix returns the first n characters of s. If s is shorter than n
// characters, s is returned. A cut never splits an encoded character;
// an incomplete trailing encoding is dropped.
func Prefix(s string, n int) string {
	if n <= 0 {
		return ""
	}
	for i := range s {
		if n == 0 {
			return trimIncomplete(s[:i])
		}
		n--
	}
	return trimIncomplete(s)
}

// trimIncomplete drops a trailing partial UTF-8 encoding from s.
func trimIncomplete(s string) string {
	for len(s) != 0 {
		r, size := utf8.DecodeLastRuneInString(s)
		if r != utf8.RuneError || size != 1 {
			return s
		}
		s = s[:len(s)-1]
	}
	return s
}
