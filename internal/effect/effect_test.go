// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package effect

import (
	"math/rand/v2"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
)

var documentTests = []struct {
	name  string
	text  string
	want  Document
	shape [][]int
}{
	{
		name:  "single",
		text:  "GNU",
		want:  Document{Lines: [][]string{{"GNU"}}},
		shape: [][]int{{3}},
	},
	{
		name:  "two_words",
		text:  "Hi there",
		want:  Document{Lines: [][]string{{"Hi", "there"}}},
		shape: [][]int{{2, 5}},
	},
	{
		name:  "double_space",
		text:  "a  b",
		want:  Document{Lines: [][]string{{"a", "", "b"}}},
		shape: [][]int{{1, 0, 1}},
	},
	{
		name:  "lines",
		text:  "GNU\nImage\n\nManipulation Program",
		want:  Document{Lines: [][]string{{"GNU"}, {"Image"}, {""}, {"Manipulation", "Program"}}},
		shape: [][]int{{3}, {5}, {0}, {12, 7}},
	},
	{
		name:  "multibyte",
		text:  "héllo wörld",
		want:  Document{Lines: [][]string{{"héllo", "wörld"}}},
		shape: [][]int{{5, 5}},
	},
}

func TestDocument(t *testing.T) {
	for _, test := range documentTests {
		t.Run(test.name, func(t *testing.T) {
			got := Parse(test.text)
			if !cmp.Equal(test.want, got) {
				t.Errorf("unexpected document:\n--- want:\n+++ got:\n%s", cmp.Diff(test.want, got))
			}
			if got.String() != test.text {
				t.Errorf("unexpected round trip: got:%q want:%q", got.String(), test.text)
			}
			if !cmp.Equal(test.shape, got.Shape()) {
				t.Errorf("unexpected shape:\n--- want:\n+++ got:\n%s", cmp.Diff(test.shape, got.Shape()))
			}
		})
	}
}

var revealTests = []struct {
	name string
	text string
	want []string
}{
	{
		name: "gnu",
		text: "GNU",
		want: []string{"GNU", "GN", "G"},
	},
	{
		name: "single",
		text: "x",
		want: []string{"x"},
	},
	{
		name: "empty",
		text: "",
		want: nil,
	},
	{
		name: "multibyte",
		text: "añ€",
		want: []string{"añ€", "añ", "a"},
	},
	{
		name: "newline",
		text: "a\nb",
		want: []string{"a\nb", "a\n", "a"},
	},
	{
		name: "invalid_dropped",
		text: "ab\xffc",
		want: []string{"abc", "ab", "a"},
	},
}

func TestReveal(t *testing.T) {
	for _, test := range revealTests {
		t.Run(test.name, func(t *testing.T) {
			got := Reveal(test.text)
			if !cmp.Equal(test.want, got) {
				t.Errorf("unexpected snapshots:\n--- want:\n+++ got:\n%s", cmp.Diff(test.want, got))
			}
			for i := 1; i < len(got); i++ {
				prev := utf8.RuneCountInString(got[i-1])
				curr := utf8.RuneCountInString(got[i])
				if curr != prev-1 {
					t.Errorf("snapshot %d length not decreasing by one: %d -> %d", i, prev, curr)
				}
				if !strings.HasPrefix(got[i-1], got[i]) {
					t.Errorf("snapshot %d is not a prefix of its predecessor: %q %q", i, got[i], got[i-1])
				}
			}
		})
	}
}

var prefixTests = []struct {
	s    string
	n    int
	want string
}{
	{s: "GNU", n: 0, want: ""},
	{s: "GNU", n: -1, want: ""},
	{s: "GNU", n: 2, want: "GN"},
	{s: "GNU", n: 10, want: "GNU"},
	{s: "€uro", n: 1, want: "€"},
	{s: "a\xe2\x82", n: 3, want: "a"},
	{s: "ab\xe2\x82", n: 3, want: "ab"},
}

func TestPrefix(t *testing.T) {
	for _, test := range prefixTests {
		got := Prefix(test.s, test.n)
		if got != test.want {
			t.Errorf("unexpected prefix for %q[:%d]: got:%q want:%q", test.s, test.n, got, test.want)
		}
		if !utf8.ValidString(got) {
			t.Errorf("invalid prefix for %q[:%d]: %q", test.s, test.n, got)
		}
	}
}

var classTests = []struct {
	r    rune
	want Class
}{
	{r: 'a', want: Lower},
	{r: 'z', want: Lower},
	{r: 'A', want: Upper},
	{r: 'Z', want: Upper},
	{r: '0', want: Digit},
	{r: '9', want: Digit},
	{r: '!', want: Punct},
	{r: '~', want: Punct},
	{r: '\\', want: Punct},
	{r: '`', want: Punct},
	{r: 'é', want: Other},
	{r: '€', want: Other},
	{r: '\t', want: Other},
	{r: '«', want: Other},
}

func TestClassOf(t *testing.T) {
	for _, test := range classTests {
		got := ClassOf(test.r)
		if got != test.want {
			t.Errorf("unexpected class for %q: got:%v want:%v", test.r, got, test.want)
		}
	}
}

var scrambleTests = []struct {
	name string
	text string
}{
	{name: "hi_there", text: "Hi there"},
	{name: "double_space", text: "a  b"},
	{name: "default", text: "GNU\nImage\nManipulation\nProgram"},
	{name: "mixed", text: "R2-D2 says: «héllo», 42!\n\n  trailing  "},
	{name: "only_spaces", text: "   "},
}

func TestScramble(t *testing.T) {
	for _, test := range scrambleTests {
		t.Run(test.name, func(t *testing.T) {
			src := Parse(test.text)
			rnd := rand.New(rand.NewPCG(1, 2))
			for i := 0; i < 50; i++ {
				got := Scramble(src, rnd)
				if !cmp.Equal(src.Shape(), got.Shape()) {
					t.Fatalf("unexpected shape:\n--- want:\n+++ got:\n%s", cmp.Diff(src.Shape(), got.Shape()))
				}
				for l, line := range src.Lines {
					for w, word := range line {
						dup := []rune(got.Lines[l][w])
						for c, r := range []rune(word) {
							alpha := ClassOf(r).Alphabet()
							if !strings.ContainsRune(alpha, dup[c]) {
								t.Errorf("replacement %q for %q not in %v alphabet", dup[c], r, ClassOf(r))
							}
						}
					}
				}
			}
		})
	}
}

func TestScrambleSeparators(t *testing.T) {
	rnd := rand.New(rand.NewPCG(3, 4))
	got := Scramble(Parse("a  b"), rnd).String()
	if len(got) != 4 || got[1:3] != "  " {
		t.Errorf("separators not preserved: %q", got)
	}
	toks := strings.Split(got, " ")
	if len(toks) != 3 || len(toks[0]) != 1 || toks[1] != "" || len(toks[2]) != 1 {
		t.Errorf("unexpected tokens: %q", toks)
	}
}

func TestScrambleReproducible(t *testing.T) {
	src := Parse("GNU\nImage Manipulation\nProgram 2.10!")
	a := Scramble(src, rand.New(rand.NewPCG(42, 42)))
	b := Scramble(src, rand.New(rand.NewPCG(42, 42)))
	if !cmp.Equal(a, b) {
		t.Errorf("unexpected difference between seeded runs:\n--- a:\n+++ b:\n%s", cmp.Diff(a, b))
	}
}

func TestScrambleEmptyWordsNoDraws(t *testing.T) {
	// Two sources seeded identically must stay in step when one of them
	// has been used to scramble only empty words.
	x := rand.New(rand.NewPCG(7, 7))
	y := rand.New(rand.NewPCG(7, 7))
	Scramble(Parse("  \n "), x)
	if x.Uint64() != y.Uint64() {
		t.Error("empty words consumed random draws")
	}
}

var planTests = []struct {
	name   string
	effect Kind
	text   string
	frames int
	want   []Frame
}{
	{
		name:   "typewrite_gnu",
		effect: Typewrite,
		text:   "GNU",
		want: []Frame{
			{Index: 0, Kind: Initial, Text: "GNU"},
			{Index: 1, Kind: Content, Text: "GN"},
			{Index: 2, Kind: Content, Text: "G"},
			{Index: 3, Kind: Blank},
		},
	},
	{
		name:   "typewrite_single",
		effect: Typewrite,
		text:   "G",
		want: []Frame{
			{Index: 0, Kind: Initial, Text: "G"},
			{Index: 1, Kind: Blank},
		},
	},
}

func TestPlan(t *testing.T) {
	for _, test := range planTests {
		t.Run(test.name, func(t *testing.T) {
			got, err := Plan(test.effect, test.text, test.frames, nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !cmp.Equal(test.want, got.Frames) {
				t.Errorf("unexpected frames:\n--- want:\n+++ got:\n%s", cmp.Diff(test.want, got.Frames))
			}
		})
	}
}

func TestPlanTypewriteCount(t *testing.T) {
	for _, text := range []string{"a", "GNU", "GNU\nImage\nManipulation\nProgram", "añ€ x"} {
		seq, err := Plan(Typewrite, text, 0, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := utf8.RuneCountInString(text) + 1
		if len(seq.Frames) != want {
			t.Errorf("unexpected frame count for %q: got:%d want:%d", text, len(seq.Frames), want)
		}
	}
}

func TestPlanFlashup(t *testing.T) {
	const text = "GNU\nImage  Manipulation\nProgram"
	for _, frames := range []int{1, 2, 30} {
		seq, err := Plan(Flashup, text, frames, rand.New(rand.NewPCG(1, 1)))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(seq.Frames) != frames+2 {
			t.Errorf("unexpected frame count: got:%d want:%d", len(seq.Frames), frames+2)
		}
		first, last := seq.Frames[0], seq.Frames[len(seq.Frames)-1]
		if first.Kind != Initial || first.Text != text {
			t.Errorf("unexpected initial frame: %+v", first)
		}
		if last.Kind != Blank || last.Text != "" {
			t.Errorf("unexpected final frame: %+v", last)
		}
		shape := Parse(text).Shape()
		for _, f := range seq.Frames[1 : len(seq.Frames)-1] {
			if f.Kind != Content {
				t.Errorf("unexpected kind for frame %d: %v", f.Index, f.Kind)
			}
			if got := Parse(f.Text).Shape(); !cmp.Equal(shape, got) {
				t.Errorf("unexpected shape for frame %d:\n--- want:\n+++ got:\n%s", f.Index, cmp.Diff(shape, got))
			}
		}
		play := seq.Playback()
		if play[0].Kind != Blank || play[len(play)-1].Text != text {
			t.Errorf("playback does not end with the original text: %+v", play)
		}
	}
}

func TestPlanFlashupReproducible(t *testing.T) {
	a, err := Plan(Flashup, "Hi there", 5, rand.New(rand.NewPCG(9, 9)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := Plan(Flashup, "Hi there", 5, rand.New(rand.NewPCG(9, 9)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cmp.Equal(a, b) {
		t.Errorf("unexpected difference between seeded plans:\n--- a:\n+++ b:\n%s", cmp.Diff(a, b))
	}
}

func TestPlanErrors(t *testing.T) {
	rnd := rand.New(rand.NewPCG(1, 1))
	if _, err := Plan(Typewrite, "", 0, nil); err != ErrEmptyText {
		t.Errorf("unexpected error for empty text: %v", err)
	}
	if _, err := Plan(Flashup, "\xff", 1, rnd); err != ErrEmptyText {
		t.Errorf("unexpected error for invalid text: %v", err)
	}
	if _, err := Plan(Flashup, "x", 0, rnd); err == nil {
		t.Error("expected error for zero frames")
	}
	if _, err := Plan(Flashup, "x", 1, nil); err == nil {
		t.Error("expected error for missing random source")
	}
	if _, err := Plan(Kind(9), "x", 1, rnd); err == nil {
		t.Error("expected error for unknown effect")
	}
}
