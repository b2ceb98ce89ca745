// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/peanutbutterandcrackers/gimp-scripts/internal/effect"
)

var parseColorTests = []struct {
	val     string
	want    color.Color
	wantErr bool
}{
	{val: "#ff8000", want: color.NRGBA{R: 0xff, G: 0x80, B: 0x00, A: 0xff}},
	{val: "#FFFFFF", want: color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}},
	{val: "black", want: color.NRGBA{A: 0xff}},
	{val: "HiRed", want: color.NRGBA{R: 0xff, A: 0xff}},
	{val: "#fff", wantErr: true},
	{val: "#gggggg", wantErr: true},
	{val: "purple", wantErr: true},
	{val: "", wantErr: true},
}

func TestParseColor(t *testing.T) {
	for _, test := range parseColorTests {
		got, err := ParseColor(test.val)
		if (err != nil) != test.wantErr {
			t.Errorf("unexpected error for %q: got:%v want error:%t", test.val, err, test.wantErr)
			continue
		}
		if err != nil {
			continue
		}
		if got != test.want {
			t.Errorf("unexpected color for %q: got:%v want:%v", test.val, got, test.want)
		}
		if FormatColor(got) != FormatColor(test.want) {
			t.Errorf("unexpected formatted color for %q: got:%s want:%s", test.val, FormatColor(got), FormatColor(test.want))
		}
	}
}

func TestDefault(t *testing.T) {
	for _, kind := range []effect.Kind{effect.Typewrite, effect.Flashup} {
		cfg := Default(kind)
		err := cfg.Validate(kind)
		if err != nil {
			t.Errorf("default %v configuration is invalid: %v", kind, err)
		}
	}
	if got := Default(effect.Typewrite).Font; got != "Sans" {
		t.Errorf("unexpected typewrite font: got:%q want:%q", got, "Sans")
	}
	if got := Default(effect.Flashup).Font; got != "Mono" {
		t.Errorf("unexpected flashup font: got:%q want:%q", got, "Mono")
	}
	if got := Default(effect.Flashup).Frames; got != DefaultFrames {
		t.Errorf("unexpected flashup frames: got:%d want:%d", got, DefaultFrames)
	}
}

var animationValidateTests = []struct {
	name    string
	kind    effect.Kind
	mutate  func(*Animation)
	wantErr bool
}{
	{
		name:   "valid_typewrite",
		kind:   effect.Typewrite,
		mutate: func(*Animation) {},
	},
	{
		name:   "typewrite_ignores_frames",
		kind:   effect.Typewrite,
		mutate: func(a *Animation) { a.Frames = 0 },
	},
	{
		name:    "zero_frames_flashup",
		kind:    effect.Flashup,
		mutate:  func(a *Animation) { a.Frames = 0 },
		wantErr: true,
	},
	{
		name:   "many_frames_flashup",
		kind:   effect.Flashup,
		mutate: func(a *Animation) { a.Frames = 10000 },
	},
	{
		name:    "zero_size",
		kind:    effect.Typewrite,
		mutate:  func(a *Animation) { a.Size = 0 },
		wantErr: true,
	},
	{
		name:   "max_size",
		kind:   effect.Typewrite,
		mutate: func(a *Animation) { a.Size = MaxSize },
	},
	{
		name:    "over_max_size",
		kind:    effect.Typewrite,
		mutate:  func(a *Animation) { a.Size = MaxSize + 1 },
		wantErr: true,
	},
	{
		name:    "empty_font",
		kind:    effect.Flashup,
		mutate:  func(a *Animation) { a.Font = " " },
		wantErr: true,
	},
	{
		name:    "nil_color",
		kind:    effect.Typewrite,
		mutate:  func(a *Animation) { a.Foreground = nil },
		wantErr: true,
	},
	{
		name:    "negative_wrap",
		kind:    effect.Typewrite,
		mutate:  func(a *Animation) { a.Wrap = -1 },
		wantErr: true,
	},
	{
		name:    "unknown_effect",
		kind:    effect.Kind(-1),
		mutate:  func(*Animation) {},
		wantErr: true,
	},
}

func TestAnimationValidate(t *testing.T) {
	for _, test := range animationValidateTests {
		t.Run(test.name, func(t *testing.T) {
			cfg := Default(effect.Flashup)
			test.mutate(&cfg)
			err := cfg.Validate(test.kind)
			if (err != nil) != test.wantErr {
				t.Fatalf("unexpected error: got:%v want error:%t", err, test.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalid) {
				t.Errorf("error does not wrap ErrInvalid: %v", err)
			}
		})
	}
}

func TestValidateText(t *testing.T) {
	if err := ValidateText("GNU"); err != nil {
		t.Errorf("unexpected error for valid text: %v", err)
	}
	for _, text := range []string{"", "\xff\xfe"} {
		err := ValidateText(text)
		if !errors.Is(err, ErrInvalid) {
			t.Errorf("unexpected error for %q: got:%v want:%v", text, err, ErrInvalid)
		}
	}
}

var loadTests = []struct {
	name    string
	file    string
	data    string
	want    *File
	wantErr bool
}{
	{
		name: "toml",
		file: "config.toml",
		data: `font = "Mono Bold"
size = 72
fg = "#00ff00"
transparent = false
seed = 42

[display]
kind = "gif"
delay = 80
`,
		want: &File{
			Font:        ptr("Mono Bold"),
			Size:        ptr(72),
			Foreground:  ptr("#00ff00"),
			Transparent: ptr(false),
			Seed:        ptr[uint64](42),
			Display: &Display{
				Kind:  ptr("gif"),
				Delay: ptr(80),
			},
		},
	},
	{
		name: "yaml",
		file: "config.yaml",
		data: `bg: hiblue
frames: 12
wrap: 20
display:
  kind: deck
  row: 1
  col: 2
`,
		want: &File{
			Background: ptr("hiblue"),
			Frames:     ptr(12),
			Wrap:       ptr(20),
			Display: &Display{
				Kind: ptr("deck"),
				Row:  ptr(1),
				Col:  ptr(2),
			},
		},
	},
	{
		name: "empty_yaml",
		file: "config.yml",
		data: "",
		want: &File{},
	},
	{
		name:    "size_too_large",
		file:    "config.toml",
		data:    "size = 4000\n",
		wantErr: true,
	},
	{
		name:    "bad_color",
		file:    "config.yaml",
		data:    "fg: purple\n",
		wantErr: true,
	},
	{
		name:    "bad_display_kind",
		file:    "config.toml",
		data:    "[display]\nkind = \"window\"\n",
		wantErr: true,
	},
	{
		name:    "unknown_yaml_field",
		file:    "config.yaml",
		data:    "colour: red\n",
		wantErr: true,
	},
	{
		name:    "unknown_toml_field",
		file:    "config.toml",
		data:    "colour = \"red\"\n",
		wantErr: true,
	},
	{
		name:    "unknown_toml_display_field",
		file:    "config.toml",
		data:    "[display]\nspeed = 3\n",
		wantErr: true,
	},
	{
		name:    "unknown_format",
		file:    "config.json",
		data:    "{}",
		wantErr: true,
	},
}

func TestLoad(t *testing.T) {
	for _, test := range loadTests {
		t.Run(test.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), test.file)
			err := os.WriteFile(path, []byte(test.data), 0o644)
			if err != nil {
				t.Fatalf("failed to write config: %v", err)
			}
			got, err := Load(path)
			if (err != nil) != test.wantErr {
				t.Fatalf("unexpected error: got:%v want error:%t", err, test.wantErr)
			}
			if err != nil {
				if !errors.Is(err, ErrInvalid) {
					t.Errorf("error does not wrap ErrInvalid: %v", err)
				}
				return
			}
			if !cmp.Equal(test.want, got) {
				t.Errorf("unexpected result:\n--- want:\n+++ got:\n%s", cmp.Diff(test.want, got))
			}
		})
	}
}

func TestSchemaPaths(t *testing.T) {
	paths, err := Validate(Schema, &File{Size: ptr(0), Font: ptr("Sans")})
	if err == nil {
		t.Fatal("expected error for zero size")
	}
	want := [][]string{{"size"}}
	if !cmp.Equal(want, paths) {
		t.Errorf("unexpected paths:\n--- want:\n+++ got:\n%s", cmp.Diff(want, paths))
	}
}

func TestApply(t *testing.T) {
	f := &File{
		Font:       ptr("Smallcaps"),
		Foreground: ptr("#102030"),
		Frames:     ptr(5),
		Seed:       ptr[uint64](7),
	}
	got := Default(effect.Flashup)
	err := f.Apply(&got)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Default(effect.Flashup)
	want.Font = "Smallcaps"
	want.Foreground = color.NRGBA{R: 0x10, G: 0x20, B: 0x30, A: 0xff}
	want.Frames = 5
	want.Seed = ptr[uint64](7)
	if !cmp.Equal(want, got) {
		t.Errorf("unexpected result:\n--- want:\n+++ got:\n%s", cmp.Diff(want, got))
	}

	err = (&File{Background: ptr("mauve")}).Apply(&got)
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("unexpected error for invalid color: got:%v want:%v", err, ErrInvalid)
	}

	var none *File
	err = none.Apply(&got)
	if err != nil {
		t.Errorf("unexpected error for nil file: %v", err)
	}
}

func ptr[T any](v T) *T { return &v }
