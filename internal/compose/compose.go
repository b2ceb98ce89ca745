// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package compose performs the per-frame canvas and layer lifecycle of an
// animation against a [backend.Backend].
package compose

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"log/slog"

	"github.com/peanutbutterandcrackers/gimp-scripts/internal/backend"
	"github.com/peanutbutterandcrackers/gimp-scripts/internal/config"
	"github.com/peanutbutterandcrackers/gimp-scripts/internal/slogext"
)

// Placeholder is the size of the canvas created before the initial text
// has been measured.
var Placeholder = image.Point{X: 100, Y: 100}

// Compositor composes animation frames onto a single canvas. It holds
// the most recently applied foreground and background colors so that the
// backend's color context is only changed when a frame needs a different
// color.
//
// A Compositor is owned by a single run and is not safe for concurrent use.
type Compositor struct {
	b   backend.Backend
	cfg config.Animation
	log *slog.Logger

	fg, bg color.Color
}

// New returns a new Compositor using b with the provided configuration.
// The color cache is seeded from b's current color context.
func New(ctx context.Context, b backend.Backend, cfg config.Animation, log *slog.Logger) (*Compositor, error) {
	if log == nil {
		log = slogext.Discard()
	}
	fg, err := b.Foreground()
	if err != nil {
		return nil, fmt.Errorf("get foreground: %w", err)
	}
	bg, err := b.Background()
	if err != nil {
		return nil, fmt.Errorf("get background: %w", err)
	}
	log.LogAttrs(ctx, slog.LevelDebug, "seeded color cache", slog.String("fg", formatColor(fg)), slog.String("bg", formatColor(bg)))
	return &Compositor{b: b, cfg: cfg, log: log, fg: fg, bg: bg}, nil
}

func formatColor(c color.Color) string {
	if c == nil {
		return "<nil>"
	}
	return config.FormatColor(c)
}

// Initial creates a canvas sized to fit text rendered with the
// configured font and size, with the text merged onto a background as a
// single layer.
func (c *Compositor) Initial(ctx context.Context, text string) (backend.Canvas, error) {
	canvas, err := c.b.NewCanvas(Placeholder.X, Placeholder.Y, backend.RGB)
	if err != nil {
		return nil, fmt.Errorf("create canvas: %w", err)
	}
	txt, err := c.text(canvas, nil, text)
	if err != nil {
		return nil, err
	}
	size := txt.Bounds().Size()
	err = c.b.ResizeCanvas(canvas, size.X, size.Y, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("resize canvas: %w", err)
	}
	_, err = c.background(canvas)
	if err != nil {
		return nil, err
	}
	_, err = c.b.MergeDown(canvas, txt)
	if err != nil {
		return nil, fmt.Errorf("merge initial text: %w", err)
	}
	c.log.LogAttrs(ctx, slog.LevelDebug, "sized canvas", slog.Int("width", size.X), slog.Int("height", size.Y))
	return canvas, nil
}

// Frame composes a single frame of text onto a new background layer at
// the bottom of the canvas's layer stack, growing the canvas if the text
// does not fit.
func (c *Compositor) Frame(ctx context.Context, canvas backend.Canvas, text string) error {
	bg, err := c.background(canvas)
	if err != nil {
		return err
	}
	txt, err := c.text(canvas, bg, text)
	if err != nil {
		return err
	}
	err = c.fit(ctx, canvas, bg, txt.Bounds().Size())
	if err != nil {
		return err
	}
	err = c.b.Anchor(txt)
	if err != nil {
		return fmt.Errorf("anchor text: %w", err)
	}
	return c.pulse()
}

// Blank composes a background-only frame at the bottom of the canvas's
// layer stack.
func (c *Compositor) Blank(ctx context.Context, canvas backend.Canvas) error {
	_, err := c.background(canvas)
	if err != nil {
		return err
	}
	return c.pulse()
}

// fit grows the canvas to the component-wise maximum of its size and
// size if either dimension of size exceeds the canvas, and resizes bg to
// the new canvas size.
func (c *Compositor) fit(ctx context.Context, canvas backend.Canvas, bg backend.Layer, size image.Point) error {
	cur := canvas.Bounds().Size()
	if size.X <= cur.X && size.Y <= cur.Y {
		return nil
	}
	w, h := max(cur.X, size.X), max(cur.Y, size.Y)
	err := c.b.ResizeCanvas(canvas, w, h, 0, 0)
	if err != nil {
		return fmt.Errorf("grow canvas: %w", err)
	}
	err = c.b.ResizeLayerToCanvas(bg)
	if err != nil {
		return fmt.Errorf("resize background: %w", err)
	}
	c.log.LogAttrs(ctx, slog.LevelDebug, "grew canvas", slog.Int("width", w), slog.Int("height", h))
	return nil
}

func (c *Compositor) background(canvas backend.Canvas) (backend.Layer, error) {
	err := c.setBackground(c.cfg.Background)
	if err != nil {
		return nil, err
	}
	size := canvas.Bounds().Size()
	l, err := c.b.NewLayer(canvas, size.X, size.Y, backend.Normal, "backdrop", 100)
	if err != nil {
		return nil, fmt.Errorf("create background: %w", err)
	}
	err = c.b.InsertLayer(canvas, l, backend.Bottom)
	if err != nil {
		return nil, fmt.Errorf("insert background: %w", err)
	}
	if !c.cfg.Transparent {
		err = c.b.FillLayer(l, backend.FillBackground)
		if err != nil {
			return nil, fmt.Errorf("fill background: %w", err)
		}
	}
	return l, nil
}

func (c *Compositor) text(canvas backend.Canvas, target backend.Layer, text string) (backend.Layer, error) {
	err := c.setForeground(c.cfg.Foreground)
	if err != nil {
		return nil, err
	}
	l, err := c.b.RenderText(canvas, target, text, c.cfg.Font, c.cfg.Size)
	if err != nil {
		return nil, fmt.Errorf("render text: %w", err)
	}
	return l, nil
}

func (c *Compositor) setForeground(col color.Color) error {
	if backend.SameColor(c.fg, col) {
		return nil
	}
	err := c.b.SetForeground(col)
	if err != nil {
		return fmt.Errorf("set foreground: %w", err)
	}
	c.fg = col
	return nil
}

func (c *Compositor) setBackground(col color.Color) error {
	if backend.SameColor(c.bg, col) {
		return nil
	}
	err := c.b.SetBackground(col)
	if err != nil {
		return fmt.Errorf("set background: %w", err)
	}
	c.bg = col
	return nil
}

func (c *Compositor) pulse() error {
	err := c.b.ProgressPulse()
	if err != nil {
		return fmt.Errorf("progress: %w", err)
	}
	return nil
}
