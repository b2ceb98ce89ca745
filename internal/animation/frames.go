// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package animation plays rendered frames onto a fixed size display
// surface with a frame delay and loop count.
package animation

import (
	"context"
	"image"
	"image/color"
	"sync"
	"time"

	"golang.org/x/image/draw"

	"github.com/peanutbutterandcrackers/gimp-scripts/internal/text"
)

// Animator plays a sequence of frames into a destination image.
type Animator interface {
	// Animate draws each frame into dst and passes the
	// result to fn, waiting the frame delay between calls.
	Animate(ctx context.Context, dst draw.Image, fn func(image.Image) error) error
}

// Frames is an animator that animates through a set of frames in order
// similar to an animated GIF. Frames are scaled to the destination image,
// keeping their aspect ratio.
type Frames struct {
	// The successive frames.
	Frames []image.Image

	// Delay is the delay between frames.
	Delay time.Duration

	// LoopCount controls the number of times an animation will be
	// restarted during display.
	// A LoopCount of 0 means to loop forever.
	// A LoopCount of -1 means to show each frame only once.
	// Otherwise, the animation is looped LoopCount+1 times.
	LoopCount int

	// Background is the color drawn behind each frame.
	// If nil, black is used.
	Background color.Color

	// Cache caches frames in the internal format
	// of the display. Cache must not be changed while
	// an animation is running.
	Cache *Cache
}

var _ Animator = (*Frames)(nil)

// Animate renders the receiver's frames into dst and calls fn on each
// rendered image. If the animation terminates, fn is called a final time
// with the last frame.
func (f *Frames) Animate(ctx context.Context, dst draw.Image, fn func(image.Image) error) error {
	if len(f.Frames) == 0 {
		return nil
	}

	bg := f.Background
	if bg == nil {
		bg = color.Black
	}
	loopCount := f.LoopCount
	if loopCount <= 0 {
		loopCount = -loopCount - 1
	}
	var last image.Image
	for i := 0; i <= loopCount || loopCount == -1; i++ {
		for _, frame := range f.Frames {
			r, ok := f.Cache.get(frame)
			if !ok {
				// Slow path.
				draw.Draw(dst, dst.Bounds(), &image.Uniform{bg}, image.Point{}, draw.Src)
				draw.BiLinear.Scale(dst, text.KeepAspectRatio(dst, frame), frame, frame.Bounds(), draw.Over, nil)
				var err error
				r, err = f.Cache.put(frame, dst)
				if err != nil {
					return err
				}
			}
			err := fn(r)
			if err != nil {
				return err
			}
			last = r
			err = wait(ctx, f.Delay)
			if err != nil {
				return err
			}
		}
	}
	return fn(last)
}

func wait(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	delay := time.NewTimer(d)
	select {
	case <-ctx.Done():
		delay.Stop()
		return ctx.Err()
	case <-delay.C:
		return nil
	}
}

// Cache is a cache of frames converted to a display's internal format.
type Cache struct {
	miss func(image.Image) (image.Image, error)

	mu    sync.Mutex
	cache map[image.Image]image.Image
}

// RawImager wraps the RawImage method.
type RawImager interface {
	RawImage(img image.Image) (image.Image, error)
}

// NewCache returns a Cache that converts frames with dev.
func NewCache(dev RawImager) *Cache {
	return &Cache{
		miss:  dev.RawImage,
		cache: make(map[image.Image]image.Image),
	}
}

// Len returns the number of cached frames.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.cache)
}

// get returns the cached raw image for the provided key image.
func (c *Cache) get(key image.Image) (image.Image, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.Lock()
	r, ok := c.cache[key]
	c.mu.Unlock()
	return r, ok
}

// put calculates and returns a raw image for the provided
// image and caches the result for key.
func (c *Cache) put(key, img image.Image) (image.Image, error) {
	if c == nil {
		return img, nil
	}
	r, err := c.miss(img)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.cache[key] = r
	c.mu.Unlock()
	return r, nil
}
