// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package backend defines the capabilities an image editing engine must
// provide to compose animation frames.
package backend

import (
	"fmt"
	"image"
	"image/color"
)

// Canvas is an image made of a stack of layers.
type Canvas interface {
	Bounds() image.Rectangle
}

// Layer is a single paintable surface of a canvas. A layer returned by
// RenderText with a non-nil target is a floating selection attached to
// the target until it is anchored.
type Layer interface {
	Bounds() image.Rectangle
}

// Colorspace is the base color model of a canvas.
type Colorspace int

const (
	RGB Colorspace = iota
	Gray
)

func (c Colorspace) String() string {
	switch c {
	case RGB:
		return "rgb"
	case Gray:
		return "gray"
	default:
		return fmt.Sprintf("Colorspace(%d)", int(c))
	}
}

// Mode is a layer compositing mode.
type Mode int

const (
	Normal Mode = iota
)

// Position is a location in a canvas's layer stack.
type Position int

const (
	Top Position = iota
	Bottom
)

func (p Position) String() string {
	switch p {
	case Top:
		return "top"
	case Bottom:
		return "bottom"
	default:
		return fmt.Sprintf("Position(%d)", int(p))
	}
}

// Fill is the source of a layer fill.
type Fill int

const (
	FillForeground Fill = iota // The current foreground color.
	FillBackground             // The current background color.
	FillTransparent
)

func (f Fill) String() string {
	switch f {
	case FillForeground:
		return "foreground"
	case FillBackground:
		return "background"
	case FillTransparent:
		return "transparent"
	default:
		return fmt.Sprintf("Fill(%d)", int(f))
	}
}

// Renderer is the canvas and layer manipulation capability.
type Renderer interface {
	// NewCanvas returns a new empty canvas.
	NewCanvas(width, height int, cs Colorspace) (Canvas, error)

	// RenderText renders text in the current foreground color. If target
	// is nil the text is placed in a new layer at the top of the canvas,
	// otherwise it floats over target until anchored.
	RenderText(c Canvas, target Layer, text, font string, size int) (Layer, error)

	// NewLayer returns a new layer that is not yet part of the canvas.
	NewLayer(c Canvas, width, height int, mode Mode, name string, opacity float64) (Layer, error)
	// InsertLayer places l in the canvas's layer stack.
	InsertLayer(c Canvas, l Layer, pos Position) error
	// FillLayer fills l from src.
	FillLayer(l Layer, src Fill) error

	// ResizeCanvas changes the canvas size without scaling layers,
	// offsetting them by dx and dy.
	ResizeCanvas(c Canvas, width, height, dx, dy int) error
	// ResizeLayerToCanvas sets the size of l to the size of its canvas.
	ResizeLayerToCanvas(l Layer) error

	// MergeDown merges l into the layer below it, clipped to the canvas,
	// and returns the merged layer.
	MergeDown(c Canvas, l Layer) (Layer, error)
	// Anchor merges a floating selection into the layer it floats over.
	Anchor(l Layer) error
}

// ColorContext is the current drawing color state of an engine.
type ColorContext interface {
	SetForeground(color.Color) error
	SetBackground(color.Color) error
	Foreground() (color.Color, error)
	Background() (color.Color, error)
}

// Progress reports progress of a long running operation.
type Progress interface {
	ProgressInit(message string) error
	ProgressPulse() error
}

// Displayer presents a finished canvas.
type Displayer interface {
	Display(c Canvas) error
}

// Backend is the complete capability set used to build an animation.
type Backend interface {
	Renderer
	ColorContext
	Progress
	Displayer
}

// SameColor returns whether a and b are the same color. Two nil colors
// are the same.
func SameColor(a, b color.Color) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	r1, g1, b1, a1 := a.RGBA()
	r2, g2, b2, a2 := b.RGBA()
	return r1 == r2 && g1 == g2 && b1 == b2 && a1 == a2
}
