// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package xdg provides functions for locating per-user configuration files
// and runtime directories in a cross-platform way.
package xdg

import (
	"os"
	"path/filepath"
	"syscall"
)

// Config returns the path to the first of the named files that exists
// in the application's directory under ConfigHome. If none of the files
// exist, Config returns ENOENT.
func Config(app string, names ...string) (string, error) {
	base, ok := ConfigHome()
	if !ok {
		return "", syscall.ENOENT
	}
	for _, name := range names {
		path := filepath.Join(base, app, name)
		fi, err := os.Stat(path)
		if err == nil && fi.Mode().IsRegular() {
			return path, nil
		}
	}
	return "", syscall.ENOENT
}

// ConfigHome returns the path corresponding to XDG_CONFIG_HOME.
func ConfigHome() (string, bool) {
	return envOrDefault(configHomeKey, configHomeDefault, homeKey)
}

// RuntimeDir returns the path corresponding to XDG_RUNTIME_DIR.
func RuntimeDir() (string, bool) {
	return envOrDefault(runtimeDirKey, runtimeDirDefault, homeKey)
}

// Runtime returns the path to the application's directory under RuntimeDir,
// creating it if necessary. If there is no runtime directory, Runtime
// falls back to the system temporary directory.
func Runtime(app string) (string, error) {
	base, ok := RuntimeDir()
	if !ok {
		base = os.TempDir()
	}
	dir := filepath.Join(base, app)
	err := os.MkdirAll(dir, 0o700)
	if err != nil {
		return "", err
	}
	return dir, nil
}

// envOrDefault return the path corresponding to the provided key and
// default. If home is empty or the default is absolute, the default is
// returned unaltered, otherwise the default is returned relative to home.
func envOrDefault(key, def, home string) (string, bool) {
	if key != "" {
		val, ok := os.LookupEnv(key)
		if ok {
			return val, true
		}
	}
	if def == "" {
		return "", false
	}
	if home == "" || filepath.IsAbs(def) {
		return def, true
	}
	base, ok := os.LookupEnv(home)
	if !ok {
		return "", false
	}
	return filepath.Join(base, def), true
}
