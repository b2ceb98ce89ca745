// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package effect

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
)

// Kind is an animation effect.
type Kind int

const (
	Typewrite Kind = iota // Progressive reveal of the text.
	Flashup               // Scrambled text resolving to the original.
)

func (k Kind) String() string {
	switch k {
	case Typewrite:
		return "typewrite"
	case Flashup:
		return "flashup"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// FrameKind is the role of a frame in a sequence.
type FrameKind int

const (
	Initial FrameKind = iota // Verbatim text used to size the canvas.
	Content                  // An effect snapshot.
	Blank                    // Background only.
)

func (k FrameKind) String() string {
	switch k {
	case Initial:
		return "initial"
	case Content:
		return "content"
	case Blank:
		return "blank"
	default:
		return fmt.Sprintf("FrameKind(%d)", int(k))
	}
}

// Frame is a single animation step.
type Frame struct {
	Index int
	Kind  FrameKind
	Text  string
}

// Sequence is the ordered set of frames for a run in render order. The
// first frame is always Initial and the last is always Blank.
type Sequence struct {
	Effect Kind
	Frames []Frame
}

// Playback returns the frames in display order. Each rendered frame is
// placed beneath those before it, so playback is the reverse of render
// order and ends with the verbatim text.
func (s Sequence) Playback() []Frame {
	p := slices.Clone(s.Frames)
	slices.Reverse(p)
	return p
}

// ErrEmptyText is returned by Plan when there is no text to animate.
var ErrEmptyText = errors.New("empty text")

// Plan returns the frame sequence for the effect applied to text. For
// Flashup, frames is the number of scrambled frames and rnd is the source
// of randomness; both are ignored for Typewrite.
//
// A Typewrite sequence holds N+1 frames for a text of N characters and a
// Flashup sequence holds frames+2.
func Plan(effect Kind, text string, frames int, rnd *rand.Rand) (Sequence, error) {
	text = Validate(text)
	if text == "" {
		return Sequence{}, ErrEmptyText
	}
	seq := Sequence{Effect: effect}
	switch effect {
	case Typewrite:
		snaps := Reveal(text)
		seq.Frames = make([]Frame, 0, len(snaps)+1)
		seq.add(Initial, snaps[0])
		for _, s := range snaps[1:] {
			seq.add(Content, s)
		}
	case Flashup:
		if frames < 1 {
			return Sequence{}, fmt.Errorf("invalid frame count: %d", frames)
		}
		if rnd == nil {
			return Sequence{}, errors.New("missing random source")
		}
		doc := Parse(text)
		seq.Frames = make([]Frame, 0, frames+2)
		seq.add(Initial, text)
		for range frames {
			seq.add(Content, Scramble(doc, rnd).String())
		}
	default:
		return Sequence{}, fmt.Errorf("unknown effect: %v", effect)
	}
	seq.add(Blank, "")
	return seq, nil
}

func (s *Sequence) add(kind FrameKind, text string) {
	s.Frames = append(s.Frames, Frame{Index: len(s.Frames), Kind: kind, Text: text})
}
