// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/peanutbutterandcrackers/gimp-scripts/internal/xdg"
)

// App is the application directory name used for configuration and
// runtime files.
const App = "gimp-scripts"

// File is a configuration file. All fields are optional and unset fields
// leave the corresponding default or flag value unaltered.
type File struct {
	Font        *string  `json:"font,omitempty" toml:"font" yaml:"font"`
	Size        *int     `json:"size,omitempty" toml:"size" yaml:"size"`
	Foreground  *string  `json:"fg,omitempty" toml:"fg" yaml:"fg"`
	Background  *string  `json:"bg,omitempty" toml:"bg" yaml:"bg"`
	Transparent *bool    `json:"transparent,omitempty" toml:"transparent" yaml:"transparent"`
	Frames      *int     `json:"frames,omitempty" toml:"frames" yaml:"frames"`
	Wrap        *int     `json:"wrap,omitempty" toml:"wrap" yaml:"wrap"`
	Seed        *uint64  `json:"seed,omitempty" toml:"seed" yaml:"seed"`
	Display     *Display `json:"display,omitempty" toml:"display" yaml:"display"`
}

// Display is the configuration of the animation display.
type Display struct {
	// Kind is the display kind, "gif" or "deck".
	Kind *string `json:"kind,omitempty" toml:"kind" yaml:"kind"`
	// Delay is the per-frame delay in milliseconds.
	Delay *int `json:"delay,omitempty" toml:"delay" yaml:"delay"`
	// Loop is the GIF loop count. Zero loops forever,
	// -1 plays once.
	Loop *int `json:"loop,omitempty" toml:"loop" yaml:"loop"`
	// Output is the GIF output path. Empty or "-" is
	// stdout.
	Output *string `json:"output,omitempty" toml:"output" yaml:"output"`

	PID    *uint16 `json:"pid,omitempty" toml:"pid" yaml:"pid"`
	Serial *string `json:"serial,omitempty" toml:"serial" yaml:"serial"`
	Row    *int    `json:"row,omitempty" toml:"row" yaml:"row"`
	Col    *int    `json:"col,omitempty" toml:"col" yaml:"col"`
}

// Find returns the path to the user's configuration file. If no file
// exists, Find returns an error satisfying errors.Is(err, fs.ErrNotExist).
func Find() (string, error) {
	return xdg.Config(App, "config.toml", "config.yaml", "config.yml")
}

// Load reads the configuration file at path. The file format is selected
// by the path's extension, TOML for ".toml" and YAML for ".yaml" and
// ".yml". The decoded file is validated against Schema, and validation
// failures are returned wrapping ErrInvalid.
func Load(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f File
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		var md toml.MetaData
		md, err = toml.NewDecoder(bytes.NewReader(b)).Decode(&f)
		if err == nil {
			if keys := md.Undecoded(); len(keys) != 0 {
				err = fmt.Errorf("unknown fields: %v", keys)
			}
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(b))
		dec.KnownFields(true)
		err = dec.Decode(&f)
		if errors.Is(err, io.EOF) {
			err = nil
		}
	default:
		return nil, fmt.Errorf("%w: unknown config file format: %q", ErrInvalid, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalid, path, err)
	}
	_, err = Validate(Schema, &f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalid, path, err)
	}
	return &f, nil
}

// LoadDefault loads the configuration file found by Find. If no file
// exists, LoadDefault returns a nil *File and a nil error.
func LoadDefault() (*File, error) {
	path, err := Find()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return Load(path)
}

// Apply sets the fields of a that are set in f. Apply on a nil *File is
// a no-op.
func (f *File) Apply(a *Animation) error {
	if f == nil {
		return nil
	}
	if f.Font != nil {
		a.Font = *f.Font
	}
	if f.Size != nil {
		a.Size = *f.Size
	}
	var errs []error
	if f.Foreground != nil {
		c, err := ParseColor(*f.Foreground)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: fg: %v", ErrInvalid, err))
		} else {
			a.Foreground = c
		}
	}
	if f.Background != nil {
		c, err := ParseColor(*f.Background)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: bg: %v", ErrInvalid, err))
		} else {
			a.Background = c
		}
	}
	if f.Transparent != nil {
		a.Transparent = *f.Transparent
	}
	if f.Frames != nil {
		a.Frames = *f.Frames
	}
	if f.Wrap != nil {
		a.Wrap = *f.Wrap
	}
	if f.Seed != nil {
		seed := *f.Seed
		a.Seed = &seed
	}
	return errors.Join(errs...)
}
