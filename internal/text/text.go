// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package text provides functions for measuring and rendering multi-line
// text with a [font.Face].
package text

import (
	"image"
	"image/color"
	"image/draw"
	"strings"

	"github.com/bbrks/wrap/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// LineHeight returns the distance between baselines of consecutive lines
// rendered with face.
func LineHeight(face font.Face) int {
	m := face.Metrics()
	h := m.Height.Ceil()
	if h == 0 {
		h = (m.Ascent + m.Descent).Ceil()
	}
	return h
}

// Measure returns the size of the rectangle covering text rendered with
// face. Lines are separated by '\n'. Empty text measures zero.
func Measure(face font.Face, text string) image.Point {
	if text == "" {
		return image.Point{}
	}
	lines := strings.Split(text, "\n")
	var width fixed.Int26_6
	for _, l := range lines {
		width = max(width, font.MeasureString(face, l))
	}
	m := face.Metrics()
	height := LineHeight(face)*(len(lines)-1) + (m.Ascent + m.Descent).Ceil()
	return image.Point{X: width.Ceil(), Y: height}
}

// Draw draws text to dst in the provided color with the top left of the
// first line at the given point.
func Draw(dst draw.Image, at image.Point, text string, col color.Color, face font.Face) {
	ascent := face.Metrics().Ascent.Ceil()
	height := LineHeight(face)
	drawer := font.Drawer{
		Dst:  dst,
		Src:  &image.Uniform{col},
		Face: face,
	}
	for i, l := range strings.Split(text, "\n") {
		drawer.Dot = fixed.P(at.X, at.Y+ascent+height*i)
		drawer.DrawString(l)
	}
}

// Wrap breaks each line of text at word boundaries so that no line is
// longer than cols characters where possible. Words longer than cols are
// cut. If cols is less than one, text is returned unaltered.
func Wrap(text string, cols int) string {
	if cols < 1 {
		return text
	}
	wrapper := wrap.NewWrapper()
	wrapper.StripTrailingNewline = true
	wrapper.CutLongWords = true
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		if l == "" {
			continue
		}
		wrapped := strings.Split(wrapper.Wrap(l, cols), "\n")
		for j, w := range wrapped {
			wrapped[j] = strings.TrimSpace(w)
		}
		lines[i] = strings.Join(wrapped, "\n")
	}
	return strings.Join(lines, "\n")
}

// KeepAspectRatio returns a draw rectangle that can be used in a call to
// a draw.Scaler to maintain the src aspect ratio in the dst image.
//
//	draw.BiLinear.Scale(dst, KeepAspectRatio(dst, src), src, src.Bounds(), op, opts)
func KeepAspectRatio(dst, src image.Image) image.Rectangle {
	b := dst.Bounds()
	dx, dy := src.Bounds().Dx(), src.Bounds().Dy()
	switch {
	case dx < dy:
		dx, dy = dx*b.Dy()/dy, b.Dy()
	case dx > dy:
		dx, dy = b.Dx(), dy*b.Dx()/dx
	default:
		return b
	}
	offset := b.Min.Add(image.Point{X: (b.Dx() - dx) / 2, Y: (b.Dy() - dy) / 2})
	return image.Rectangle{Max: image.Point{X: dx, Y: dy}}.Add(offset)
}
