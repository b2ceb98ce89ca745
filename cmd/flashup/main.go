// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Flashup animates text by flashing up scrambled versions of it before
// settling on the original.
//
// The animation is written as an animated GIF or played on an Elgato
// Stream Deck key. Settings are taken from the configuration file in the
// user's XDG config directory, gimp-scripts/config.toml or config.yaml,
// and are overridden by flags.
package main

import (
	"os"

	"github.com/peanutbutterandcrackers/gimp-scripts/internal/cli"
	"github.com/peanutbutterandcrackers/gimp-scripts/internal/effect"
)

func main() {
	os.Exit(cli.Main(effect.Flashup))
}
