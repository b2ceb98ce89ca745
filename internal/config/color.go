// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"encoding/binary"
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// ParseColor returns the color described by val. Valid values are web
// colors, "#rrggbb", and the ANSI color names black, red, green, yellow,
// blue, magenta, cyan and white, optionally prefixed with "hi".
func ParseColor(val string) (color.Color, error) {
	if strings.HasPrefix(val, "#") {
		return webColor(val)
	}
	col, ok := ansiColor[strings.ToLower(val)]
	if !ok {
		return nil, fmt.Errorf("invalid color name: %s", val)
	}
	return col, nil
}

// FormatColor returns a web color representation of c, ignoring alpha.
func FormatColor(c color.Color) string {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B)
}

var ansiColor = map[string]color.NRGBA{
	"black":     {R: 0x00, G: 0x00, B: 0x00, A: 0xff},
	"red":       {R: 0x80, G: 0x00, B: 0x00, A: 0xff},
	"green":     {R: 0x00, G: 0x80, B: 0x00, A: 0xff},
	"yellow":    {R: 0x80, G: 0x80, B: 0x00, A: 0xff},
	"blue":      {R: 0x00, G: 0x00, B: 0x80, A: 0xff},
	"magenta":   {R: 0x80, G: 0x00, B: 0x80, A: 0xff},
	"cyan":      {R: 0x00, G: 0x80, B: 0x80, A: 0xff},
	"white":     {R: 0xc0, G: 0xc0, B: 0xc0, A: 0xff},
	"hiblack":   {R: 0x80, G: 0x80, B: 0x80, A: 0xff},
	"hired":     {R: 0xff, G: 0x00, B: 0x00, A: 0xff},
	"higreen":   {R: 0x00, G: 0xff, B: 0x00, A: 0xff},
	"hiyellow":  {R: 0xff, G: 0xff, B: 0x00, A: 0xff},
	"hiblue":    {R: 0x00, G: 0x00, B: 0xff, A: 0xff},
	"himagenta": {R: 0xff, G: 0x00, B: 0xff, A: 0xff},
	"hicyan":    {R: 0x00, G: 0xff, B: 0xff, A: 0xff},
	"hiwhite":   {R: 0xff, G: 0xff, B: 0xff, A: 0xff},
}

func webColor(val string) (color.Color, error) {
	hex, ok := strings.CutPrefix(val, "#")
	if !ok || len(hex) != 6 {
		return nil, fmt.Errorf("invalid web color: %s", val)
	}
	c, err := strconv.ParseUint(hex, 16, 24)
	if err != nil {
		return nil, fmt.Errorf("invalid web color: %s", val)
	}
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(c))
	return color.NRGBA{R: b[1], G: b[2], B: b[3], A: 0xff}, nil
}
