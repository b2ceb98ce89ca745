// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package raster provides an in-memory raster implementation of
// [backend.Backend] built on golang.org/x/image.
package raster

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"slices"

	"golang.org/x/image/draw"

	"github.com/peanutbutterandcrackers/gimp-scripts/internal/backend"
	"github.com/peanutbutterandcrackers/gimp-scripts/internal/display"
	"github.com/peanutbutterandcrackers/gimp-scripts/internal/slogext"
	"github.com/peanutbutterandcrackers/gimp-scripts/internal/text"
)

// Border is the width of the transparent border around rendered text.
const Border = 10

// Engine is a raster image engine. Layers are held as [image.RGBA] and
// composited with golang.org/x/image/draw.
//
// Engine is not safe for concurrent use.
type Engine struct {
	ctx   context.Context
	log   *slog.Logger
	fonts *Fonts
	sink  display.Sink
	wrap  int

	fg, bg color.Color

	message string
	pulses  int
}

var _ backend.Backend = (*Engine)(nil)

// Options are optional Engine parameters.
type Options struct {
	// Fonts is the font registry. If nil a new
	// registry is used.
	Fonts *Fonts

	// Wrap is the column at which rendered text is word
	// wrapped. Zero disables wrapping.
	Wrap int

	Log *slog.Logger
}

// New returns a new Engine that shows displayed canvases on sink. The
// context is used for logging and is passed to sink. The initial
// foreground and background colors are black and white.
func New(ctx context.Context, sink display.Sink, opts *Options) *Engine {
	if opts == nil {
		opts = &Options{}
	}
	e := &Engine{
		ctx:   ctx,
		log:   opts.Log,
		fonts: opts.Fonts,
		sink:  sink,
		wrap:  opts.Wrap,
		fg:    color.Black,
		bg:    color.White,
	}
	if e.log == nil {
		e.log = slogext.Discard()
	}
	if e.fonts == nil {
		e.fonts = NewFonts()
	}
	return e
}

// Canvas is a raster canvas.
type Canvas struct {
	bounds image.Rectangle
	cs     backend.Colorspace

	// layers is the layer stack, top first.
	layers []*Layer
}

// Bounds returns the canvas bounds. The minimum point is always the origin.
func (c *Canvas) Bounds() image.Rectangle {
	return c.bounds
}

// Len returns the number of layers in the canvas's stack.
func (c *Canvas) Len() int {
	return len(c.layers)
}

// convert returns col in the canvas's colorspace.
func (c *Canvas) convert(col color.Color) color.Color {
	if c.cs == backend.Gray {
		_, _, _, a := col.RGBA()
		g := color.Gray16Model.Convert(col).(color.Gray16)
		return color.NRGBA64{R: g.Y, G: g.Y, B: g.Y, A: uint16(a)}
	}
	return col
}

// Layer is a raster layer.
type Layer struct {
	name    string
	img     *image.RGBA
	offset  image.Point
	opacity float64
	fill    color.Color

	canvas   *Canvas
	parent   *Layer
	floating *Layer
}

// Bounds returns the layer bounds in canvas coordinates.
func (l *Layer) Bounds() image.Rectangle {
	return l.img.Bounds().Add(l.offset)
}

// Name returns the layer name.
func (l *Layer) Name() string {
	return l.name
}

// Image returns the layer's pixels. The image's minimum point is the
// origin.
func (l *Layer) Image() *image.RGBA {
	return l.img
}

func (e *Engine) NewCanvas(width, height int, cs backend.Colorspace) (backend.Canvas, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("invalid canvas size: %dx%d", width, height)
	}
	switch cs {
	case backend.RGB, backend.Gray:
	default:
		return nil, fmt.Errorf("invalid colorspace: %v", cs)
	}
	e.log.LogAttrs(e.ctx, slog.LevelDebug, "new canvas", slog.Int("width", width), slog.Int("height", height), slog.Any("colorspace", slogext.Stringer{Stringer: cs}))
	return &Canvas{bounds: image.Rect(0, 0, width, height), cs: cs}, nil
}

func (e *Engine) RenderText(c backend.Canvas, target backend.Layer, txt, fontName string, size int) (backend.Layer, error) {
	cv, err := canvasOf(c)
	if err != nil {
		return nil, err
	}
	face, err := e.fonts.Face(fontName, size)
	if err != nil {
		return nil, err
	}
	txt = text.Wrap(txt, e.wrap)
	sz := text.Measure(face, txt)
	l := &Layer{
		name:    "text",
		img:     image.NewRGBA(image.Rect(0, 0, sz.X+2*Border, sz.Y+2*Border)),
		opacity: 100,
		canvas:  cv,
	}
	text.Draw(l.img, image.Pt(Border, Border), txt, cv.convert(e.fg), face)
	e.log.LogAttrs(e.ctx, slog.LevelDebug, "render text",
		slog.String("font", fontName),
		slog.Int("size", size),
		slog.Int("width", l.img.Bounds().Dx()),
		slog.Int("height", l.img.Bounds().Dy()),
		slog.Bool("floating", target != nil),
	)

	if target == nil {
		cv.layers = slices.Insert(cv.layers, 0, l)
		return l, nil
	}
	parent, err := layerOf(target)
	if err != nil {
		return nil, err
	}
	if parent.canvas != cv {
		return nil, errors.New("target layer belongs to another canvas")
	}
	if parent.floating != nil {
		return nil, errors.New("target layer already has a floating selection")
	}
	l.parent = parent
	parent.floating = l
	return l, nil
}

func (e *Engine) NewLayer(c backend.Canvas, width, height int, mode backend.Mode, name string, opacity float64) (backend.Layer, error) {
	cv, err := canvasOf(c)
	if err != nil {
		return nil, err
	}
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("invalid layer size: %dx%d", width, height)
	}
	if mode != backend.Normal {
		return nil, fmt.Errorf("unsupported layer mode: %d", mode)
	}
	if opacity < 0 || 100 < opacity {
		return nil, fmt.Errorf("opacity out of range: %v", opacity)
	}
	return &Layer{
		name:    name,
		img:     image.NewRGBA(image.Rect(0, 0, width, height)),
		opacity: opacity,
		canvas:  cv,
	}, nil
}

func (e *Engine) InsertLayer(c backend.Canvas, l backend.Layer, pos backend.Position) error {
	cv, err := canvasOf(c)
	if err != nil {
		return err
	}
	ly, err := layerOf(l)
	if err != nil {
		return err
	}
	if ly.canvas != cv {
		return errors.New("layer belongs to another canvas")
	}
	if ly.parent != nil {
		return errors.New("cannot insert floating selection")
	}
	if slices.Contains(cv.layers, ly) {
		return errors.New("layer already in canvas")
	}
	switch pos {
	case backend.Top:
		cv.layers = slices.Insert(cv.layers, 0, ly)
	case backend.Bottom:
		cv.layers = append(cv.layers, ly)
	default:
		return fmt.Errorf("invalid position: %v", pos)
	}
	return nil
}

func (e *Engine) FillLayer(l backend.Layer, src backend.Fill) error {
	ly, err := layerOf(l)
	if err != nil {
		return err
	}
	switch src {
	case backend.FillForeground:
		ly.fill = ly.canvas.convert(e.fg)
	case backend.FillBackground:
		ly.fill = ly.canvas.convert(e.bg)
	case backend.FillTransparent:
		ly.fill = nil
	default:
		return fmt.Errorf("invalid fill: %v", src)
	}
	fill := ly.fill
	if fill == nil {
		fill = color.Transparent
	}
	draw.Draw(ly.img, ly.img.Bounds(), &image.Uniform{fill}, image.Point{}, draw.Src)
	return nil
}

func (e *Engine) ResizeCanvas(c backend.Canvas, width, height, dx, dy int) error {
	cv, err := canvasOf(c)
	if err != nil {
		return err
	}
	if width < 1 || height < 1 {
		return fmt.Errorf("invalid canvas size: %dx%d", width, height)
	}
	cv.bounds = image.Rect(0, 0, width, height)
	d := image.Pt(dx, dy)
	for _, l := range cv.layers {
		l.offset = l.offset.Add(d)
		if l.floating != nil {
			l.floating.offset = l.floating.offset.Add(d)
		}
	}
	e.log.LogAttrs(e.ctx, slog.LevelDebug, "resize canvas", slog.Int("width", width), slog.Int("height", height))
	return nil
}

func (e *Engine) ResizeLayerToCanvas(l backend.Layer) error {
	ly, err := layerOf(l)
	if err != nil {
		return err
	}
	img := image.NewRGBA(ly.canvas.bounds)
	if ly.fill != nil {
		draw.Draw(img, img.Bounds(), &image.Uniform{ly.fill}, image.Point{}, draw.Src)
	}
	draw.Draw(img, ly.Bounds(), ly.img, image.Point{}, draw.Src)
	ly.img = img
	ly.offset = image.Point{}
	return nil
}

func (e *Engine) MergeDown(c backend.Canvas, l backend.Layer) (backend.Layer, error) {
	cv, err := canvasOf(c)
	if err != nil {
		return nil, err
	}
	ly, err := layerOf(l)
	if err != nil {
		return nil, err
	}
	i := slices.Index(cv.layers, ly)
	if i < 0 {
		return nil, errors.New("layer not in canvas")
	}
	if i == len(cv.layers)-1 {
		return nil, errors.New("no layer to merge down into")
	}
	if ly.floating != nil || cv.layers[i+1].floating != nil {
		return nil, errors.New("cannot merge layer with floating selection")
	}
	below := cv.layers[i+1]
	merged := &Layer{
		name:    below.name,
		img:     image.NewRGBA(cv.bounds),
		opacity: 100,
		canvas:  cv,
	}
	composite(merged.img, below)
	composite(merged.img, ly)
	cv.layers[i+1] = merged
	cv.layers = slices.Delete(cv.layers, i, i+1)
	return merged, nil
}

func (e *Engine) Anchor(l backend.Layer) error {
	ly, err := layerOf(l)
	if err != nil {
		return err
	}
	parent := ly.parent
	if parent == nil {
		return errors.New("layer is not a floating selection")
	}
	composite(parent.img, &Layer{img: ly.img, offset: ly.offset.Sub(parent.offset), opacity: ly.opacity})
	parent.floating = nil
	ly.parent = nil
	return nil
}

// composite draws l over dst at l's offset and opacity.
func composite(dst *image.RGBA, l *Layer) {
	r := l.Bounds()
	if l.opacity >= 100 {
		draw.Draw(dst, r, l.img, image.Point{}, draw.Over)
		return
	}
	mask := &image.Uniform{color.Alpha16{A: uint16(l.opacity / 100 * 0xffff)}}
	draw.DrawMask(dst, r, l.img, image.Point{}, mask, image.Point{}, draw.Over)
}

func (e *Engine) SetForeground(c color.Color) error {
	if c == nil {
		return errors.New("nil foreground color")
	}
	e.fg = c
	return nil
}

func (e *Engine) SetBackground(c color.Color) error {
	if c == nil {
		return errors.New("nil background color")
	}
	e.bg = c
	return nil
}

func (e *Engine) Foreground() (color.Color, error) {
	return e.fg, nil
}

func (e *Engine) Background() (color.Color, error) {
	return e.bg, nil
}

func (e *Engine) ProgressInit(message string) error {
	e.message = message
	e.pulses = 0
	e.log.LogAttrs(e.ctx, slog.LevelInfo, message)
	return nil
}

func (e *Engine) ProgressPulse() error {
	e.pulses++
	e.log.LogAttrs(e.ctx, slog.LevelDebug, "progress", slog.String("task", e.message), slog.Int("pulses", e.pulses))
	return nil
}

// Pulses returns the number of progress pulses since the last call to
// ProgressInit.
func (e *Engine) Pulses() int {
	return e.pulses
}

// Frames returns the canvas's layers flattened into canvas sized frames in
// playback order, from the bottom of the layer stack to the top.
func (e *Engine) Frames(c backend.Canvas) ([]image.Image, error) {
	cv, err := canvasOf(c)
	if err != nil {
		return nil, err
	}
	frames := make([]image.Image, 0, len(cv.layers))
	for _, l := range slices.Backward(cv.layers) {
		if l.floating != nil {
			return nil, fmt.Errorf("layer %q has an unanchored floating selection", l.name)
		}
		img := image.NewRGBA(cv.bounds)
		composite(img, l)
		frames = append(frames, img)
	}
	return frames, nil
}

// Display flattens the canvas into frames and shows them on the engine's
// display sink.
func (e *Engine) Display(c backend.Canvas) error {
	if e.sink == nil {
		return errors.New("no display")
	}
	frames, err := e.Frames(c)
	if err != nil {
		return err
	}
	e.log.LogAttrs(e.ctx, slog.LevelInfo, "display", slog.Int("frames", len(frames)))
	return e.sink.Show(e.ctx, frames)
}

func canvasOf(c backend.Canvas) (*Canvas, error) {
	cv, ok := c.(*Canvas)
	if !ok || cv == nil {
		return nil, fmt.Errorf("not a raster canvas: %T", c)
	}
	return cv, nil
}

func layerOf(l backend.Layer) (*Layer, error) {
	ly, ok := l.(*Layer)
	if !ok || ly == nil {
		return nil, fmt.Errorf("not a raster layer: %T", l)
	}
	return ly, nil
}
