// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package backendtest provides a recording backend for testing code that
// drives a backend.Backend.
package backendtest

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/peanutbutterandcrackers/gimp-scripts/internal/backend"
)

// Recorder is a backend.Backend that records the calls made to it and
// maintains a model of the canvas and layer stack.
type Recorder struct {
	// Calls is the list of calls made, in order.
	Calls []Call

	// Measure returns the size of a rendered text layer. If nil, each
	// character is size pixels square.
	Measure func(text, font string, size int) (width, height int)

	// Fail holds errors to return from the named method.
	Fail map[string]error

	// Canvas is the most recently created canvas.
	Canvas *Canvas
	// Displayed is the canvas passed to Display.
	Displayed *Canvas

	fg, bg color.Color
	pulses int
}

// Call is a recorded method call.
type Call struct {
	Method string
	Args   []any
}

func (c Call) String() string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = fmt.Sprint(a)
	}
	return c.Method + "(" + strings.Join(args, ", ") + ")"
}

// New returns a new Recorder with a black on white color context.
func New() *Recorder {
	return &Recorder{fg: color.Black, bg: color.White}
}

// Canvas is a recorded canvas.
type Canvas struct {
	Width, Height int
	Colorspace    backend.Colorspace

	// Layers is the layer stack, top first.
	Layers []*Layer

	// History is the canvas size after creation and after each resize.
	History []image.Rectangle
}

func (c *Canvas) Bounds() image.Rectangle {
	return image.Rect(0, 0, c.Width, c.Height)
}

// Layer is a recorded layer.
type Layer struct {
	Name          string
	Width, Height int
	Offset        image.Point
	Opacity       float64

	// Text is the text rendered into the layer, if any.
	Text string
	// Fill is the color filled into the layer. Nil is transparent.
	Fill color.Color
	// Anchored holds the text of floating layers anchored to the layer.
	Anchored []string

	canvas   *Canvas
	parent   *Layer
	floating *Layer
}

func (l *Layer) Bounds() image.Rectangle {
	return image.Rect(0, 0, l.Width, l.Height).Add(l.Offset)
}

// Floating returns the floating selection over l, or nil.
func (l *Layer) Floating() *Layer {
	return l.floating
}

// Pulses returns the number of progress pulses.
func (r *Recorder) Pulses() int {
	return r.pulses
}

// Count returns the number of calls to the named method.
func (r *Recorder) Count(method string) int {
	var n int
	for _, c := range r.Calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

// Methods returns the names of the recorded calls in order.
func (r *Recorder) Methods() []string {
	m := make([]string, len(r.Calls))
	for i, c := range r.Calls {
		m[i] = c.Method
	}
	return m
}

func (r *Recorder) record(method string, args ...any) error {
	r.Calls = append(r.Calls, Call{Method: method, Args: args})
	return r.Fail[method]
}

func (r *Recorder) NewCanvas(width, height int, cs backend.Colorspace) (backend.Canvas, error) {
	err := r.record("NewCanvas", width, height, cs)
	if err != nil {
		return nil, err
	}
	r.Canvas = &Canvas{Width: width, Height: height, Colorspace: cs}
	r.Canvas.History = append(r.Canvas.History, r.Canvas.Bounds())
	return r.Canvas, nil
}

func (r *Recorder) RenderText(c backend.Canvas, target backend.Layer, text, font string, size int) (backend.Layer, error) {
	err := r.record("RenderText", text, font, size, target != nil)
	if err != nil {
		return nil, err
	}
	cv, err := canvasOf(c)
	if err != nil {
		return nil, err
	}
	w, h := r.measure(text, font, size)
	l := &Layer{Name: "text", Width: w, Height: h, Opacity: 100, Text: text, canvas: cv}
	if target == nil {
		cv.Layers = slices.Insert(cv.Layers, 0, l)
		return l, nil
	}
	parent, err := layerOf(target)
	if err != nil {
		return nil, err
	}
	if parent.floating != nil {
		return nil, errors.New("layer already has a floating selection")
	}
	l.parent = parent
	parent.floating = l
	return l, nil
}

func (r *Recorder) measure(text, font string, size int) (int, int) {
	if r.Measure != nil {
		return r.Measure(text, font, size)
	}
	lines := strings.Split(text, "\n")
	var w int
	for _, l := range lines {
		w = max(w, utf8.RuneCountInString(l)*size)
	}
	return w, len(lines) * size
}

func (r *Recorder) NewLayer(c backend.Canvas, width, height int, mode backend.Mode, name string, opacity float64) (backend.Layer, error) {
	err := r.record("NewLayer", width, height, name)
	if err != nil {
		return nil, err
	}
	cv, err := canvasOf(c)
	if err != nil {
		return nil, err
	}
	return &Layer{Name: name, Width: width, Height: height, Opacity: opacity, canvas: cv}, nil
}

func (r *Recorder) InsertLayer(c backend.Canvas, l backend.Layer, pos backend.Position) error {
	err := r.record("InsertLayer", pos)
	if err != nil {
		return err
	}
	cv, err := canvasOf(c)
	if err != nil {
		return err
	}
	ly, err := layerOf(l)
	if err != nil {
		return err
	}
	if slices.Contains(cv.Layers, ly) {
		return errors.New("layer already in canvas")
	}
	switch pos {
	case backend.Top:
		cv.Layers = slices.Insert(cv.Layers, 0, ly)
	case backend.Bottom:
		cv.Layers = append(cv.Layers, ly)
	default:
		return fmt.Errorf("invalid position: %v", pos)
	}
	return nil
}

func (r *Recorder) FillLayer(l backend.Layer, src backend.Fill) error {
	err := r.record("FillLayer", src)
	if err != nil {
		return err
	}
	ly, err := layerOf(l)
	if err != nil {
		return err
	}
	switch src {
	case backend.FillForeground:
		ly.Fill = r.fg
	case backend.FillBackground:
		ly.Fill = r.bg
	case backend.FillTransparent:
		ly.Fill = nil
	}
	return nil
}

func (r *Recorder) ResizeCanvas(c backend.Canvas, width, height, dx, dy int) error {
	err := r.record("ResizeCanvas", width, height, dx, dy)
	if err != nil {
		return err
	}
	cv, err := canvasOf(c)
	if err != nil {
		return err
	}
	cv.Width, cv.Height = width, height
	for _, l := range cv.Layers {
		l.Offset = l.Offset.Add(image.Pt(dx, dy))
	}
	cv.History = append(cv.History, cv.Bounds())
	return nil
}

func (r *Recorder) ResizeLayerToCanvas(l backend.Layer) error {
	err := r.record("ResizeLayerToCanvas")
	if err != nil {
		return err
	}
	ly, err := layerOf(l)
	if err != nil {
		return err
	}
	ly.Width, ly.Height = ly.canvas.Width, ly.canvas.Height
	ly.Offset = image.Point{}
	return nil
}

func (r *Recorder) MergeDown(c backend.Canvas, l backend.Layer) (backend.Layer, error) {
	err := r.record("MergeDown")
	if err != nil {
		return nil, err
	}
	cv, err := canvasOf(c)
	if err != nil {
		return nil, err
	}
	ly, err := layerOf(l)
	if err != nil {
		return nil, err
	}
	i := slices.Index(cv.Layers, ly)
	if i < 0 || i == len(cv.Layers)-1 {
		return nil, errors.New("no layer to merge down into")
	}
	below := cv.Layers[i+1]
	below.Anchored = append(below.Anchored, ly.Text)
	below.Width, below.Height = cv.Width, cv.Height
	below.Offset = image.Point{}
	cv.Layers = slices.Delete(cv.Layers, i, i+1)
	return below, nil
}

func (r *Recorder) Anchor(l backend.Layer) error {
	err := r.record("Anchor")
	if err != nil {
		return err
	}
	ly, err := layerOf(l)
	if err != nil {
		return err
	}
	if ly.parent == nil {
		return errors.New("layer is not floating")
	}
	ly.parent.Anchored = append(ly.parent.Anchored, ly.Text)
	ly.parent.floating = nil
	ly.parent = nil
	return nil
}

func (r *Recorder) SetForeground(c color.Color) error {
	err := r.record("SetForeground", c)
	if err != nil {
		return err
	}
	r.fg = c
	return nil
}

func (r *Recorder) SetBackground(c color.Color) error {
	err := r.record("SetBackground", c)
	if err != nil {
		return err
	}
	r.bg = c
	return nil
}

func (r *Recorder) Foreground() (color.Color, error) {
	return r.fg, r.record("Foreground")
}

func (r *Recorder) Background() (color.Color, error) {
	return r.bg, r.record("Background")
}

func (r *Recorder) ProgressInit(message string) error {
	return r.record("ProgressInit", message)
}

func (r *Recorder) ProgressPulse() error {
	err := r.record("ProgressPulse")
	if err != nil {
		return err
	}
	r.pulses++
	return nil
}

func (r *Recorder) Display(c backend.Canvas) error {
	err := r.record("Display")
	if err != nil {
		return err
	}
	cv, err := canvasOf(c)
	if err != nil {
		return err
	}
	r.Displayed = cv
	return nil
}

func canvasOf(c backend.Canvas) (*Canvas, error) {
	cv, ok := c.(*Canvas)
	if !ok {
		return nil, fmt.Errorf("not a recorded canvas: %T", c)
	}
	return cv, nil
}

func layerOf(l backend.Layer) (*Layer, error) {
	ly, ok := l.(*Layer)
	if !ok {
		return nil, fmt.Errorf("not a recorded layer: %T", l)
	}
	return ly, nil
}
