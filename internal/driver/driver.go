// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package driver orchestrates a complete animation run: validation,
// canvas sizing, frame composition and display.
package driver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/peanutbutterandcrackers/gimp-scripts/internal/backend"
	"github.com/peanutbutterandcrackers/gimp-scripts/internal/compose"
	"github.com/peanutbutterandcrackers/gimp-scripts/internal/config"
	"github.com/peanutbutterandcrackers/gimp-scripts/internal/effect"
	"github.com/peanutbutterandcrackers/gimp-scripts/internal/slogext"
)

// State is the state of a Driver.
type State int

const (
	Uninitialized State = iota
	Sized
	Rendering
	Finalized
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Sized:
		return "sized"
	case Rendering:
		return "rendering"
	case Finalized:
		return "finalized"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Messages are the progress messages for each effect.
var Messages = map[effect.Kind]string{
	effect.Typewrite: "Typewriting. Please wait...",
	effect.Flashup:   "Flashing up. Please wait...",
}

// Typewrite renders text as a typewriter animation with b and displays it.
func Typewrite(ctx context.Context, b backend.Backend, text string, cfg config.Animation, log *slog.Logger) error {
	return New(b, effect.Typewrite, cfg, nil, log).Run(ctx, text)
}

// Flashup renders text as a flashup animation with b and displays it. If
// rnd is nil, a source seeded from cfg.Seed is used.
func Flashup(ctx context.Context, b backend.Backend, text string, cfg config.Animation, rnd *rand.Rand, log *slog.Logger) error {
	if rnd == nil {
		rnd = NewRand(cfg.Seed)
	}
	return New(b, effect.Flashup, cfg, rnd, log).Run(ctx, text)
}

// NewRand returns a random source seeded with seed. If seed is nil, the
// source is randomly seeded.
func NewRand(seed *uint64) *rand.Rand {
	if seed == nil {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(*seed, *seed))
}

// Driver runs a single animation. A Driver moves through its states in
// order and may not be reused.
type Driver struct {
	b    backend.Backend
	kind effect.Kind
	cfg  config.Animation
	rnd  *rand.Rand
	log  *slog.Logger

	state  State
	canvas backend.Canvas
	comp   *compose.Compositor
}

// New returns a new Driver in the Uninitialized state.
func New(b backend.Backend, kind effect.Kind, cfg config.Animation, rnd *rand.Rand, log *slog.Logger) *Driver {
	if log == nil {
		log = slogext.Discard()
	}
	return &Driver{
		b:    b,
		kind: kind,
		cfg:  cfg,
		rnd:  rnd,
		log:  log.With(slog.String("component", "driver"), slog.Any("effect", slogext.Stringer{Stringer: kind})),
	}
}

// State returns the current state of the driver.
func (d *Driver) State() State {
	return d.state
}

// Run validates the configuration and text, composes every planned frame
// and displays the result. Invalid configuration or text is reported with
// an error wrapping [config.ErrInvalid] before the backend is used. The
// first backend error aborts the run and nothing is displayed.
func (d *Driver) Run(ctx context.Context, text string) error {
	if d.state != Uninitialized {
		return fmt.Errorf("driver already run: state %v", d.state)
	}
	err := errors.Join(config.ValidateText(text), d.cfg.Validate(d.kind))
	if err != nil {
		return err
	}
	seq, err := effect.Plan(d.kind, text, d.cfg.Frames, d.rnd)
	if err != nil {
		return fmt.Errorf("%w: %v", config.ErrInvalid, err)
	}
	d.log.LogAttrs(ctx, slog.LevelDebug, "planned", slog.Int("frames", len(seq.Frames)))

	err = d.size(ctx, seq.Frames[0])
	if err != nil {
		return err
	}
	err = d.render(ctx, seq.Frames[1:len(seq.Frames)-1])
	if err != nil {
		return err
	}
	return d.finalize(ctx)
}

// size performs the Uninitialized to Sized transition.
func (d *Driver) size(ctx context.Context, initial effect.Frame) error {
	err := d.b.ProgressInit(Messages[d.kind])
	if err != nil {
		return fmt.Errorf("progress: %w", err)
	}
	d.comp, err = compose.New(ctx, d.b, d.cfg, d.log)
	if err != nil {
		return err
	}
	d.canvas, err = d.comp.Initial(ctx, initial.Text)
	if err != nil {
		return err
	}
	return d.transition(ctx, Uninitialized, Sized)
}

// render performs the Sized to Rendering transition.
func (d *Driver) render(ctx context.Context, frames []effect.Frame) error {
	err := d.transition(ctx, Sized, Rendering)
	if err != nil {
		return err
	}
	for _, f := range frames {
		err = d.comp.Frame(ctx, d.canvas, f.Text)
		if err != nil {
			return fmt.Errorf("frame %d: %w", f.Index, err)
		}
	}
	return nil
}

// finalize performs the Rendering to Finalized transition.
func (d *Driver) finalize(ctx context.Context) error {
	if d.state != Rendering {
		return fmt.Errorf("invalid transition: %v -> %v", d.state, Finalized)
	}
	err := d.comp.Blank(ctx, d.canvas)
	if err != nil {
		return fmt.Errorf("blank frame: %w", err)
	}
	err = d.b.Display(d.canvas)
	if err != nil {
		return fmt.Errorf("display: %w", err)
	}
	return d.transition(ctx, Rendering, Finalized)
}

func (d *Driver) transition(ctx context.Context, from, to State) error {
	if d.state != from {
		return fmt.Errorf("invalid transition: %v -> %v", d.state, to)
	}
	d.state = to
	d.log.LogAttrs(ctx, slog.LevelDebug, "state", slog.Any("state", slogext.Stringer{Stringer: to}))
	return nil
}
