// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cli implements the typewrite and flashup commands.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/kortschak/ardilla"

	"github.com/peanutbutterandcrackers/gimp-scripts/internal/backend/raster"
	"github.com/peanutbutterandcrackers/gimp-scripts/internal/config"
	"github.com/peanutbutterandcrackers/gimp-scripts/internal/display"
	"github.com/peanutbutterandcrackers/gimp-scripts/internal/driver"
	"github.com/peanutbutterandcrackers/gimp-scripts/internal/effect"
	"github.com/peanutbutterandcrackers/gimp-scripts/internal/slogext"
	"github.com/peanutbutterandcrackers/gimp-scripts/internal/version"
	"github.com/peanutbutterandcrackers/gimp-scripts/internal/xdg"
)

// Exit status codes.
const (
	success       = 0
	internalError = 1 << (iota - 1)
	invocationError
)

// Main runs the command for the effect using the process's arguments and
// standard streams, and returns the exit status.
func Main(kind effect.Kind) int {
	return Run(kind, filepath.Base(os.Args[0]), os.Args[1:], os.Stdout, os.Stderr)
}

// settings is the complete set of resolved command settings.
type settings struct {
	anim    config.Animation
	display displaySettings
}

type displaySettings struct {
	kind   string
	delay  time.Duration
	loop   int
	output string
	pid    uint16
	serial string
	row    int
	col    int
}

// Run runs the command for the effect with the provided arguments and
// returns the exit status.
func Run(kind effect.Kind, name string, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)

	def := config.Default(kind)
	text := fs.String("text", config.DefaultText, "text to animate")
	cfgPath := fs.String("config", "", "path to configuration file (default from XDG config directory)")
	font := fs.String("font", def.Font, "font name or path to a .ttf or .otf file")
	size := fs.Int("size", def.Size, fmt.Sprintf("font size in pixels [1, %d]", config.MaxSize))
	fg := fs.String("fg", "#ffffff", "foreground color (#rrggbb or ANSI color name)")
	bg := fs.String("bg", "#000000", "background color (#rrggbb or ANSI color name)")
	transparent := fs.Bool("transparent", def.Transparent, "leave frame backgrounds transparent")
	wrap := fs.Int("wrap", 0, "word wrap column for rendered text (0 for no wrapping)")
	var (
		frames *int
		seed   *uint64
	)
	if kind == effect.Flashup {
		frames = fs.Int("frames", def.Frames, "number of scrambled frames")
		seed = fs.Uint64("seed", 0, "random seed for scrambled frames (default random)")
	}

	displayKind := fs.String("display", "gif", "display kind (gif or deck)")
	output := fs.String("o", "-", "GIF output path (- for stdout)")
	delay := fs.Duration("delay", display.DefaultDelay, "delay between frames")
	loop := fs.Int("loop", 0, "animation loop count (0 loops forever, -1 plays once)")
	pid := fs.Uint("deck_pid", 0, "Stream Deck product ID (0 for any)")
	serial := fs.String("deck_serial", "", "Stream Deck serial number (empty for any)")
	row := fs.Int("key_row", 0, "Stream Deck key row")
	col := fs.Int("key_col", 0, "Stream Deck key column")

	fonts := fs.Bool("fonts", false, "list built in fonts and exit")
	logging := fs.String("log", "info", "logging level (debug, info, warn or error)")
	logFormat := fs.String("log_format", "json", "log format (json or text)")
	lines := fs.Bool("lines", false, "display source line details in logs")
	v := fs.Bool("version", false, "print version and exit")
	err := fs.Parse(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return success
		}
		return invocationError
	}
	if *v {
		err := version.Fprint(stdout)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return internalError
		}
		return success
	}
	if *fonts {
		for _, n := range raster.NewFonts().Names() {
			fmt.Fprintln(stdout, n)
		}
		return success
	}
	if fs.NArg() != 0 {
		fs.Usage()
		return invocationError
	}

	var level slog.LevelVar
	err = level.UnmarshalText([]byte(*logging))
	if err != nil {
		fs.Usage()
		return invocationError
	}
	h, err := slogext.NewHandler(stderr, slogext.Format(*logFormat), &slogext.HandlerOptions{
		Level:     &level,
		AddSource: slogext.NewAtomicBool(*lines),
	})
	if err != nil {
		fmt.Fprintln(stderr, err)
		return invocationError
	}
	log := slog.New(slogext.GoID{Handler: h}).With(slog.String("component", name))

	var file *config.File
	if *cfgPath != "" {
		file, err = config.Load(*cfgPath)
	} else {
		file, err = config.LoadDefault()
	}
	if err != nil {
		fmt.Fprintln(stderr, err)
		return invocationError
	}

	s := settings{
		anim: def,
		display: displaySettings{
			kind:   "gif",
			delay:  display.DefaultDelay,
			output: "-",
		},
	}
	err = s.applyFile(file)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return invocationError
	}

	var errs []error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "font":
			s.anim.Font = *font
		case "size":
			s.anim.Size = *size
		case "fg":
			c, err := config.ParseColor(*fg)
			if err != nil {
				errs = append(errs, fmt.Errorf("%w: fg: %v", config.ErrInvalid, err))
				return
			}
			s.anim.Foreground = c
		case "bg":
			c, err := config.ParseColor(*bg)
			if err != nil {
				errs = append(errs, fmt.Errorf("%w: bg: %v", config.ErrInvalid, err))
				return
			}
			s.anim.Background = c
		case "transparent":
			s.anim.Transparent = *transparent
		case "wrap":
			s.anim.Wrap = *wrap
		case "frames":
			s.anim.Frames = *frames
		case "seed":
			s.anim.Seed = seed
		case "display":
			s.display.kind = *displayKind
		case "o":
			s.display.output = *output
		case "delay":
			s.display.delay = *delay
		case "loop":
			s.display.loop = *loop
		case "deck_pid":
			if *pid > 0xffff {
				errs = append(errs, fmt.Errorf("%w: deck_pid out of range: %#x", config.ErrInvalid, *pid))
				return
			}
			s.display.pid = uint16(*pid)
		case "deck_serial":
			s.display.serial = *serial
		case "key_row":
			s.display.row = *row
		case "key_col":
			s.display.col = *col
		}
	})
	errs = append(errs, config.ValidateText(*text), s.anim.Validate(kind), s.display.validate())
	err = errors.Join(errs...)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return invocationError
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	sink, closeSink, err := s.display.sink(stdout, log)
	if err != nil {
		log.LogAttrs(ctx, slog.LevelError, "display", slog.Any("error", err))
		return internalError
	}
	engine := raster.New(ctx, sink, &raster.Options{Wrap: s.anim.Wrap, Log: log})

	switch kind {
	case effect.Typewrite:
		err = driver.Typewrite(ctx, engine, *text, s.anim, log)
	case effect.Flashup:
		err = driver.Flashup(ctx, engine, *text, s.anim, nil, log)
	default:
		err = fmt.Errorf("unknown effect: %v", kind)
	}
	err = closeSink(err)
	if err != nil {
		if errors.Is(err, config.ErrInvalid) {
			fmt.Fprintln(stderr, err)
			return invocationError
		}
		log.LogAttrs(ctx, slog.LevelError, "animation failed", slog.Any("error", err))
		return internalError
	}
	return success
}

// applyFile applies the settings in f to s.
func (s *settings) applyFile(f *config.File) error {
	if f == nil {
		return nil
	}
	err := f.Apply(&s.anim)
	if err != nil {
		return err
	}
	d := f.Display
	if d == nil {
		return nil
	}
	if d.Kind != nil {
		s.display.kind = *d.Kind
	}
	if d.Delay != nil {
		s.display.delay = time.Duration(*d.Delay) * time.Millisecond
	}
	if d.Loop != nil {
		s.display.loop = *d.Loop
	}
	if d.Output != nil {
		s.display.output = *d.Output
	}
	if d.PID != nil {
		s.display.pid = *d.PID
	}
	if d.Serial != nil {
		s.display.serial = *d.Serial
	}
	if d.Row != nil {
		s.display.row = *d.Row
	}
	if d.Col != nil {
		s.display.col = *d.Col
	}
	return nil
}

func (d displaySettings) validate() error {
	var errs []error
	switch d.kind {
	case "gif", "deck":
	default:
		errs = append(errs, fmt.Errorf("%w: unknown display: %q", config.ErrInvalid, d.kind))
	}
	if d.delay < 0 {
		errs = append(errs, fmt.Errorf("%w: negative delay: %v", config.ErrInvalid, d.delay))
	}
	if d.loop < -1 {
		errs = append(errs, fmt.Errorf("%w: invalid loop count: %d", config.ErrInvalid, d.loop))
	}
	if d.row < 0 || d.col < 0 {
		errs = append(errs, fmt.Errorf("%w: invalid key: (%d, %d)", config.ErrInvalid, d.row, d.col))
	}
	return errors.Join(errs...)
}

// sink returns the display sink described by d and a function to release
// its resources. The release function is passed the result of the run and
// returns it joined with any error from releasing the sink.
func (d displaySettings) sink(stdout io.Writer, log *slog.Logger) (display.Sink, func(error) error, error) {
	log = log.With(slog.String("display", d.kind))
	switch d.kind {
	case "gif":
		if d.output == "" || d.output == "-" {
			return &display.GIF{W: stdout, Delay: d.delay, LoopCount: d.loop, Log: log}, func(err error) error { return err }, nil
		}
		// The output is replaced only when the run succeeds.
		f, err := os.CreateTemp(filepath.Dir(d.output), "."+filepath.Base(d.output)+".*")
		if err != nil {
			return nil, nil, err
		}
		release := func(err error) error {
			if err == nil {
				err = f.Chmod(0o644)
			}
			err = errors.Join(err, f.Close())
			if err == nil {
				err = os.Rename(f.Name(), d.output)
			}
			if err != nil {
				os.Remove(f.Name())
			}
			return err
		}
		return &display.GIF{W: f, Delay: d.delay, LoopCount: d.loop, Log: log}, release, nil
	case "deck":
		dir, err := xdg.Runtime(config.App)
		if err != nil {
			return nil, nil, err
		}
		return &display.Deck{
			PID:       ardilla.PID(d.pid),
			Serial:    d.serial,
			Row:       d.row,
			Col:       d.col,
			Delay:     d.delay,
			LoopCount: d.loop,
			LockDir:   dir,
			Log:       log,
		}, func(err error) error { return err }, nil
	default:
		return nil, nil, fmt.Errorf("unknown display: %q", d.kind)
	}
}
