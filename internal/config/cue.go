// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"fmt"
	"slices"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/encoding/gocode/gocodec"
)

// Schema is the schema for a valid configuration file.
const Schema = `
{
	font?:        !=""
	size?:        int & >=1 & <=3000
	fg?:          _#color
	bg?:          _#color
	transparent?: bool
	frames?:      int & >=1
	wrap?:        int & >=0
	seed?:        int & >=0
	display?:     _#display
}

_#display: {
	kind?:   "gif" | "deck"
	delay?:  int & >=0
	loop?:   int & >=-1
	output?: string
	pid?:    uint16
	serial?: string
	row?:    uint
	col?:    uint
}

_#color: _#named_color | _#web_color
_#named_color: =~"^(?i)(?:hi)?(?:black|red|green|yellow|blue|magenta|cyan|white)$"
_#web_color: =~"^#[0-9a-fA-F]{6}$"
`

// Validate performs a validation of the provided configuration value, returning
// a list of invalid paths and a CUE errors.Error explaining the issues found if
// the configuration is invalid according to the provided schema.
func Validate(schema string, cfg any) (paths [][]string, err error) {
	ctx := cuecontext.New()

	v := ctx.CompileString(schema)
	codec := gocodec.New(ctx, nil)

	w, err := codec.Decode(cfg)
	if err != nil {
		return nil, err
	}

	u := v.Unify(w)
	err = u.Validate(cue.Concrete(true), cue.Final())
	errs := cerrors.Errors(err)
	if len(errs) != 0 {
		paths = make([][]string, 0, len(errs))
		err = cerrors.Append(
			cerrors.Promote(err, ""),
			cerrors.Promote(fmt.Errorf("%s", u), "not concrete"),
		)
	}
	for _, err := range errs {
		p := cerrors.Path(err)
		if p != nil {
			paths = append(paths, p)
		}
	}

	return unique(paths), err
}

// unique returns paths lexically sorted in ascending order and with repeated
// elements omitted.
func unique(paths [][]string) [][]string {
	if len(paths) < 2 {
		return paths
	}
	slices.SortFunc(paths, slices.Compare[[]string])
	return slices.CompactFunc(paths, slices.Equal[[]string])
}
