// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cli

import (
	"errors"
	"flag"
	"fmt"
	"image/gif"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rogpeppe/go-internal/testscript"

	"github.com/peanutbutterandcrackers/gimp-scripts/internal/config"
	"github.com/peanutbutterandcrackers/gimp-scripts/internal/display"
	"github.com/peanutbutterandcrackers/gimp-scripts/internal/effect"
)

var (
	update = flag.Bool("update", false, "update tests")
	keep   = flag.Bool("keep", false, "keep $WORK directory after tests")
)

func TestMain(m *testing.M) {
	os.Exit(testscript.RunMain(m, map[string]func() int{
		"typewrite": func() int { return Main(effect.Typewrite) },
		"flashup":   func() int { return Main(effect.Flashup) },
	}))
}

func TestScripts(t *testing.T) {
	t.Parallel()

	p := testscript.Params{
		Dir:           filepath.Join("testdata"),
		UpdateScripts: *update,
		TestWork:      *keep,
		Cmds: map[string]func(ts *testscript.TestScript, neg bool, args []string){
			"gifinfo": gifinfo,
		},
	}
	testscript.Run(t, p)
}

// gifinfo writes a summary of a GIF file to stdout.
func gifinfo(ts *testscript.TestScript, neg bool, args []string) {
	if neg {
		ts.Fatalf("unsupported: ! gifinfo")
	}
	if len(args) != 1 {
		ts.Fatalf("usage: gifinfo file")
	}
	f, err := os.Open(ts.MkAbs(args[0]))
	ts.Check(err)
	defer f.Close()
	g, err := gif.DecodeAll(f)
	ts.Check(err)
	fmt.Fprintf(ts.Stdout(), "frames: %d\nsize: %dx%d\nloop: %d\n", len(g.Image), g.Config.Width, g.Config.Height, g.LoopCount)
	if len(g.Delay) != 0 {
		fmt.Fprintf(ts.Stdout(), "delay: %d\n", g.Delay[0])
	}
}

var applyFileTests = []struct {
	name    string
	file    *config.File
	want    displaySettings
	wantErr bool
}{
	{
		name: "nil",
		want: displaySettings{kind: "gif", delay: display.DefaultDelay, output: "-"},
	},
	{
		name: "gif",
		file: &config.File{Display: &config.Display{
			Delay:  ptr(40),
			Loop:   ptr(-1),
			Output: ptr("out.gif"),
		}},
		want: displaySettings{kind: "gif", delay: 40 * time.Millisecond, loop: -1, output: "out.gif"},
	},
	{
		name: "deck",
		file: &config.File{Display: &config.Display{
			Kind:   ptr("deck"),
			PID:    ptr[uint16](0x0063),
			Serial: ptr("CL01"),
			Row:    ptr(1),
			Col:    ptr(2),
		}},
		want: displaySettings{kind: "deck", delay: display.DefaultDelay, output: "-", pid: 0x0063, serial: "CL01", row: 1, col: 2},
	},
	{
		name:    "bad_color",
		file:    &config.File{Foreground: ptr("mauve")},
		want:    displaySettings{kind: "gif", delay: display.DefaultDelay, output: "-"},
		wantErr: true,
	},
}

func TestApplyFile(t *testing.T) {
	for _, test := range applyFileTests {
		t.Run(test.name, func(t *testing.T) {
			s := settings{
				anim:    config.Default(effect.Typewrite),
				display: displaySettings{kind: "gif", delay: display.DefaultDelay, output: "-"},
			}
			err := s.applyFile(test.file)
			if (err != nil) != test.wantErr {
				t.Fatalf("unexpected error: got:%v want error:%t", err, test.wantErr)
			}
			if err != nil {
				if !errors.Is(err, config.ErrInvalid) {
					t.Errorf("error does not wrap ErrInvalid: %v", err)
				}
				return
			}
			if !cmp.Equal(test.want, s.display, cmp.AllowUnexported(displaySettings{})) {
				t.Errorf("unexpected display settings:\n--- want:\n+++ got:\n%s", cmp.Diff(test.want, s.display, cmp.AllowUnexported(displaySettings{})))
			}
		})
	}
}

var displayValidateTests = []struct {
	name    string
	d       displaySettings
	wantErr bool
}{
	{name: "gif", d: displaySettings{kind: "gif"}},
	{name: "deck", d: displaySettings{kind: "deck", row: 1, col: 4}},
	{name: "play_once", d: displaySettings{kind: "gif", loop: -1}},
	{name: "unknown_kind", d: displaySettings{kind: "window"}, wantErr: true},
	{name: "negative_delay", d: displaySettings{kind: "gif", delay: -time.Second}, wantErr: true},
	{name: "bad_loop", d: displaySettings{kind: "gif", loop: -2}, wantErr: true},
	{name: "bad_key", d: displaySettings{kind: "deck", row: -1}, wantErr: true},
}

func TestDisplayValidate(t *testing.T) {
	for _, test := range displayValidateTests {
		t.Run(test.name, func(t *testing.T) {
			err := test.d.validate()
			if (err != nil) != test.wantErr {
				t.Fatalf("unexpected error: got:%v want error:%t", err, test.wantErr)
			}
			if err != nil && !errors.Is(err, config.ErrInvalid) {
				t.Errorf("error does not wrap ErrInvalid: %v", err)
			}
		})
	}
}

func ptr[T any](v T) *T { return &v }
