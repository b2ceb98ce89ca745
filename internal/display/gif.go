// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package display

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/gif"
	"io"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"
)

// Palette is the GIF palette: a transparent entry followed by the web-safe
// colors.
var Palette = append(color.Palette{color.Transparent}, palette.WebSafe...)

// GIF is a Sink that writes frames as an animated GIF.
type GIF struct {
	// W is the destination of the GIF stream.
	W io.Writer

	// Delay is the delay between frames. It is
	// rounded to the nearest 10ms. If zero,
	// DefaultDelay is used.
	Delay time.Duration

	// LoopCount is the GIF loop count.
	// A LoopCount of 0 means to loop forever.
	// A LoopCount of -1 means to show each frame only once.
	// Otherwise, the animation is looped LoopCount+1 times.
	LoopCount int

	Log *slog.Logger
}

// Show quantises the frames to Palette and writes them to g.W.
func (g *GIF) Show(ctx context.Context, frames []image.Image) error {
	if len(frames) == 0 {
		return ErrNoFrames
	}
	b := frames[0].Bounds()
	for i, f := range frames[1:] {
		if f.Bounds() != b {
			return fmt.Errorf("mismatched bounds at %d: %v != %v", i+1, f.Bounds(), b)
		}
	}

	delay := g.Delay
	if delay == 0 {
		delay = DefaultDelay
	}
	cs := int((delay + 5*time.Millisecond) / (10 * time.Millisecond))

	anim := &gif.GIF{
		Image:     make([]*image.Paletted, len(frames)),
		Delay:     make([]int, len(frames)),
		Disposal:  make([]byte, len(frames)),
		LoopCount: g.LoopCount,
		Config: image.Config{
			ColorModel: Palette,
			Width:      b.Dx(),
			Height:     b.Dy(),
		},
	}
	start := time.Now()
	grp, gctx := errgroup.WithContext(ctx)
	grp.SetLimit(runtime.GOMAXPROCS(0))
	for i, f := range frames {
		anim.Delay[i] = cs
		anim.Disposal[i] = gif.DisposalBackground
		grp.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			anim.Image[i] = Quantise(f)
			return nil
		})
	}
	err := grp.Wait()
	if err != nil {
		return err
	}
	if g.Log != nil {
		g.Log.LogAttrs(ctx, slog.LevelDebug, "quantised frames",
			slog.Int("frames", len(frames)),
			slog.Duration("elapsed", time.Since(start)),
		)
	}
	return gif.EncodeAll(g.W, anim)
}

// Quantise returns img converted to Palette with Floyd-Steinberg error
// diffusion. The returned image's bounds start at the origin.
func Quantise(img image.Image) *image.Paletted {
	b := img.Bounds()
	dst := image.NewPaletted(image.Rectangle{Max: b.Size()}, Palette)
	draw.FloydSteinberg.Draw(dst, dst.Bounds(), img, b.Min)
	return dst
}
