// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package display

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/kortschak/ardilla"

	"github.com/peanutbutterandcrackers/gimp-scripts/internal/animation"
)

// Deck is a Sink that plays frames on a single key of an Elgato Stream Deck.
type Deck struct {
	// PID and Serial select the device as described
	// by the documentation for [ardilla.NewDeck].
	PID    ardilla.PID
	Serial string

	// Row and Col are the key position.
	Row, Col int

	// Delay is the delay between frames. If zero,
	// DefaultDelay is used.
	Delay time.Duration

	// LoopCount is the animation loop count with the
	// semantics of [animation.Frames].
	LoopCount int

	// LockDir is the directory holding device lock files.
	LockDir string

	Log *slog.Logger

	// open opens the device. If nil, the device is opened
	// with ardilla.
	open func(pid ardilla.PID, serial string) (device, error)
}

// device is the subset of [ardilla.Deck] used by Deck.
type device interface {
	Serial() (string, error)
	Layout() (rows, cols int)
	Bounds() (image.Rectangle, error)
	RawImage(img image.Image) (image.Image, error)
	SetImage(row, col int, img image.Image) error
	Close() error
}

type ardillaDeck struct {
	*ardilla.Deck
}

func (d ardillaDeck) RawImage(img image.Image) (image.Image, error) {
	return d.Deck.RawImage(img)
}

func openArdilla(pid ardilla.PID, serial string) (device, error) {
	d, err := ardilla.NewDeck(pid, serial)
	if err != nil {
		return nil, err
	}
	return ardillaDeck{d}, nil
}

// Show plays the frames on the configured key. The device is held with an
// exclusive lock in LockDir for the duration of the animation.
func (d *Deck) Show(ctx context.Context, frames []image.Image) error {
	if len(frames) == 0 {
		return ErrNoFrames
	}
	open := d.open
	if open == nil {
		open = openArdilla
	}
	dev, err := open(d.PID, d.Serial)
	if err != nil {
		return fmt.Errorf("open deck: %w", err)
	}
	defer dev.Close()

	serial := d.Serial
	if serial == "" {
		serial, err = dev.Serial()
		if err != nil {
			return fmt.Errorf("deck serial: %w", err)
		}
	}
	rows, cols := dev.Layout()
	if d.Row < 0 || rows <= d.Row || d.Col < 0 || cols <= d.Col {
		return fmt.Errorf("key (%d, %d) out of range for %dx%d deck", d.Row, d.Col, rows, cols)
	}

	lockDir := d.LockDir
	if lockDir == "" {
		lockDir = os.TempDir()
	}
	lockFile := filepath.Join(lockDir, "deck-"+serial+".lock")
	fl := flock.New(lockFile)
	ok, err := fl.TryLock()
	if err != nil {
		return fmt.Errorf("lock deck: %w", err)
	}
	if !ok {
		return fmt.Errorf("deck %s is in use", serial)
	}
	defer func() {
		fl.Unlock()
		os.Remove(lockFile)
	}()

	bounds, err := dev.Bounds()
	if err != nil {
		return fmt.Errorf("deck key bounds: %w", err)
	}
	delay := d.Delay
	if delay == 0 {
		delay = DefaultDelay
	}
	var anim animation.Animator = &animation.Frames{
		Frames:     frames,
		Delay:      delay,
		LoopCount:  d.LoopCount,
		Background: color.Black,
		Cache:      animation.NewCache(dev),
	}
	if d.Log != nil {
		d.Log.LogAttrs(ctx, slog.LevelInfo, "playing on deck",
			slog.String("serial", serial),
			slog.Int("row", d.Row),
			slog.Int("col", d.Col),
			slog.Int("frames", len(frames)),
		)
	}
	return anim.Animate(ctx, image.NewRGBA(bounds), func(img image.Image) error {
		return dev.SetImage(d.Row, d.Col, img)
	})
}
