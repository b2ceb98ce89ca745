// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package slogext provides slog helpers.
package slogext

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/kortschak/goroutine"
)

// GoID is a slog.Handler that adds the calling goroutine's goid.
type GoID struct {
	slog.Handler
}

func (h GoID) Handle(ctx context.Context, r slog.Record) error {
	r.AddAttrs(slog.Int64("goid", goroutine.ID()))
	return h.Handler.Handle(ctx, r)
}

func (h GoID) WithAttrs(attrs []slog.Attr) slog.Handler {
	return GoID{h.Handler.WithAttrs(attrs)}
}

func (h GoID) WithGroup(name string) slog.Handler {
	return GoID{h.Handler.WithGroup(name)}
}

// Stringer implements slog.LogValuer for [fmt.Stringer].
type Stringer struct {
	fmt.Stringer
}

func (v Stringer) LogValue() slog.Value {
	if v.Stringer == nil {
		return slog.StringValue("<nil>")
	}
	return slog.StringValue(v.String())
}

// Format is a log output format.
type Format string

const (
	JSON Format = "json"
	Text Format = "text"
)

// Handler is a slog.Handler that writes Records to an io.Writer in JSON or
// text format. It differs from the standard library handlers by allowing
// alteration of the AddSource behaviour after construction.
type Handler struct {
	addSource     *atomic.Bool
	withSource    slog.Handler
	withoutSource slog.Handler
}

// NewHandler creates a Handler that writes to w in the given format, using
// the given options. An empty format is JSON.
// If opts is nil, the default options are used.
func NewHandler(w io.Writer, format Format, opts *HandlerOptions) (*Handler, error) {
	if opts == nil {
		opts = &HandlerOptions{}
	}
	if opts.AddSource == nil {
		opts.AddSource = &atomic.Bool{}
	}
	with := &slog.HandlerOptions{
		AddSource:   true,
		Level:       opts.Level,
		ReplaceAttr: opts.ReplaceAttr,
	}
	without := &slog.HandlerOptions{
		AddSource:   false,
		Level:       opts.Level,
		ReplaceAttr: opts.ReplaceAttr,
	}
	h := &Handler{addSource: opts.AddSource}
	switch format {
	case JSON, "":
		h.withSource = slog.NewJSONHandler(w, with)
		h.withoutSource = slog.NewJSONHandler(w, without)
	case Text:
		h.withSource = slog.NewTextHandler(w, with)
		h.withoutSource = slog.NewTextHandler(w, without)
	default:
		return nil, fmt.Errorf("invalid log format: %q", format)
	}
	return h, nil
}

// Enabled reports whether the handler handles records at the given level.
// The handler ignores records whose level is lower.
func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.withSource.Enabled(ctx, level)
}

// WithAttrs returns a new Handler whose attributes consists
// of h's attributes followed by attrs.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Handler{
		addSource:     h.addSource,
		withSource:    h.withSource.WithAttrs(attrs),
		withoutSource: h.withoutSource.WithAttrs(attrs),
	}
}

// WithGroup returns a new Handler with the given group appended to
// h's existing groups.
func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{
		addSource:     h.addSource,
		withSource:    h.withSource.WithGroup(name),
		withoutSource: h.withoutSource.WithGroup(name),
	}
}

// Handle formats its argument Record, adding the source position if
// the handler's AddSource is currently true.
func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	if h.addSource.Load() {
		return h.withSource.Handle(ctx, r)
	}
	return h.withoutSource.Handle(ctx, r)
}

// HandlerOptions are options for a Handler. It is derived from the
// [slog.HandlerOptions] with a changed AddSource field type to allow
// dynamically changing AddSource behaviour during run time.
// A zero HandlerOptions consists entirely of default values.
type HandlerOptions struct {
	// AddSource causes the handler to compute the source code position
	// of the log statement and add a SourceKey attribute to the output.
	// A nil AddSource is false.
	AddSource *atomic.Bool

	// Level reports the minimum record level that will be logged.
	Level slog.Leveler

	// ReplaceAttr is called to rewrite each non-group attribute before
	// it is logged.
	ReplaceAttr func(groups []string, a slog.Attr) slog.Attr
}

// NewAtomicBool is a convenience function to returns an atomic.Bool with a
// specified state.
func NewAtomicBool(t bool) *atomic.Bool {
	var x atomic.Bool
	x.Store(t)
	return &x
}

// Discard returns a logger that discards all output.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
