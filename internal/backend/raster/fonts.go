// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package raster

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/gofont/gosmallcaps"
	"golang.org/x/image/font/opentype"
)

// Fixed is the name of the fixed size bitmap font. It renders at 7x13
// pixels regardless of the requested size.
const Fixed = "fixed"

var builtin = map[string][]byte{
	"sans":        goregular.TTF,
	"sans bold":   gobold.TTF,
	"sans italic": goitalic.TTF,
	"mono":        gomono.TTF,
	"mono bold":   gomonobold.TTF,
	"smallcaps":   gosmallcaps.TTF,
}

// Fonts is a font registry. The built in fonts are "Sans", "Sans Bold",
// "Sans Italic", "Mono", "Mono Bold", "Smallcaps" and "fixed". Names are
// case insensitive. A name ending in ".ttf" or ".otf" is loaded from the
// file system.
type Fonts struct {
	mu    sync.Mutex
	fonts map[string]*opentype.Font
	faces map[faceKey]font.Face
}

type faceKey struct {
	name string
	size int
}

// NewFonts returns a new font registry.
func NewFonts() *Fonts {
	return &Fonts{
		fonts: make(map[string]*opentype.Font),
		faces: make(map[faceKey]font.Face),
	}
}

// Names returns the names of the built in fonts.
func (f *Fonts) Names() []string {
	names := []string{Fixed}
	for n := range builtin {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Face returns the named font face at the given pixel size.
func (f *Fonts) Face(name string, size int) (font.Face, error) {
	if size < 1 {
		return nil, fmt.Errorf("invalid font size: %d", size)
	}
	key := strings.ToLower(strings.TrimSpace(name))
	if key == Fixed {
		return basicfont.Face7x13, nil
	}
	if isFontFile(name) {
		key = name
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if face, ok := f.faces[faceKey{key, size}]; ok {
		return face, nil
	}
	fnt, err := f.font(key)
	if err != nil {
		return nil, err
	}
	face, err := opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("font %q: %w", name, err)
	}
	f.faces[faceKey{key, size}] = face
	return face, nil
}

// font returns the parsed font for key. It must be called with f.mu held.
func (f *Fonts) font(key string) (*opentype.Font, error) {
	if fnt, ok := f.fonts[key]; ok {
		return fnt, nil
	}
	data, ok := builtin[key]
	if !ok {
		if !isFontFile(key) {
			return nil, fmt.Errorf("unknown font: %q", key)
		}
		var err error
		data, err = os.ReadFile(key)
		if err != nil {
			return nil, fmt.Errorf("font %q: %w", key, err)
		}
	}
	fnt, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("font %q: %w", key, err)
	}
	f.fonts[key] = fnt
	return fnt, nil
}

func isFontFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".ttf", ".otf":
		return true
	default:
		return false
	}
}
