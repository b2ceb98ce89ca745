// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config provides animation configuration types, defaults,
// validation and configuration file handling.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"strings"

	"github.com/peanutbutterandcrackers/gimp-scripts/internal/effect"
)

// ErrInvalid is the error wrapped by all configuration validation errors.
var ErrInvalid = errors.New("invalid configuration")

const (
	// MaxSize is the largest font size accepted.
	MaxSize = 3000
	// DefaultFrames is the default number of flashup frames.
	DefaultFrames = 30
	// DefaultText is the text animated when none is given.
	DefaultText = "GNU\nImage\nManipulation\nProgram"
)

// Animation is the configuration of a single animation run.
type Animation struct {
	// Font is the font identifier passed to the backend.
	Font string
	// Size is the font size in pixels.
	Size int

	Foreground color.Color
	Background color.Color
	// Transparent leaves frame backgrounds unfilled.
	Transparent bool

	// Frames is the number of scrambled frames in a
	// flashup animation. It is not used by typewrite.
	Frames int

	// Wrap is the column at which frame text is word
	// wrapped during rendering. Zero disables wrapping.
	Wrap int

	// Seed is the flashup random seed. If nil a random
	// seed is used.
	Seed *uint64
}

// Default returns the default configuration for the effect.
func Default(kind effect.Kind) Animation {
	a := Animation{
		Font:        "Sans",
		Size:        50,
		Foreground:  color.White,
		Background:  color.Black,
		Transparent: true,
	}
	if kind == effect.Flashup {
		a.Font = "Mono"
		a.Frames = DefaultFrames
	}
	return a
}

// Validate returns an error wrapping ErrInvalid for each problem found in
// the configuration when used for the given effect.
func (a Animation) Validate(kind effect.Kind) error {
	var errs []error
	if strings.TrimSpace(a.Font) == "" {
		errs = append(errs, fmt.Errorf("%w: empty font", ErrInvalid))
	}
	if a.Size < 1 || MaxSize < a.Size {
		errs = append(errs, fmt.Errorf("%w: font size %d out of range [1, %d]", ErrInvalid, a.Size, MaxSize))
	}
	if a.Foreground == nil {
		errs = append(errs, fmt.Errorf("%w: missing foreground color", ErrInvalid))
	}
	if a.Background == nil {
		errs = append(errs, fmt.Errorf("%w: missing background color", ErrInvalid))
	}
	if a.Wrap < 0 {
		errs = append(errs, fmt.Errorf("%w: negative wrap column %d", ErrInvalid, a.Wrap))
	}
	switch kind {
	case effect.Typewrite:
	case effect.Flashup:
		if a.Frames < 1 {
			errs = append(errs, fmt.Errorf("%w: frame count %d not positive", ErrInvalid, a.Frames))
		}
	default:
		errs = append(errs, fmt.Errorf("%w: unknown effect %v", ErrInvalid, kind))
	}
	return errors.Join(errs...)
}

// ValidateText returns an error wrapping ErrInvalid if text has nothing
// to animate once invalid UTF-8 has been removed.
func ValidateText(text string) error {
	if effect.Validate(text) == "" {
		return fmt.Errorf("%w: no text to animate", ErrInvalid)
	}
	return nil
}
