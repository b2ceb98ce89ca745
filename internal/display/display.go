// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package display provides presentation surfaces for finished animations.
package display

import (
	"context"
	"errors"
	"image"
	"time"
)

// Sink presents a sequence of animation frames in playback order.
type Sink interface {
	Show(ctx context.Context, frames []image.Image) error
}

// DefaultDelay is the default delay between displayed frames.
const DefaultDelay = 100 * time.Millisecond

// ErrNoFrames is returned when a sink is asked to show an empty animation.
var ErrNoFrames = errors.New("no frames to display")

// Func is a function that implements Sink.
type Func func(ctx context.Context, frames []image.Image) error

func (f Func) Show(ctx context.Context, frames []image.Image) error {
	return f(ctx, frames)
}
