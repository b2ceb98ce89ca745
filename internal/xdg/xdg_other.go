// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !linux && !darwin

package xdg

const (
	homeKey = "HOME"

	configHomeKey     = "XDG_CONFIG_HOME"
	configHomeDefault = ".config"

	runtimeDirKey     = "XDG_RUNTIME_DIR"
	runtimeDirDefault = ""
)
