// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package bibkeys resolves the ordered list of bibliography keys for a
// document from raw bibliography sources, a citation style, a locale, and
// the keys the document cites.
//
// Each call is independent: the library, style, and engine state are built
// fresh and discarded on return, so calls may run concurrently.
package bibkeys

import (
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/bibkeys/internal/citeproc"
	"github.com/pdiddy/bibkeys/internal/csl"
	"github.com/pdiddy/bibkeys/internal/library"
	"github.com/pdiddy/bibkeys/pkg/types"
)

// Request holds the typed inputs of one resolution.
type Request struct {
	Sources []library.Source

	// Style is inline CSL text or an archive name, per StyleFormat.
	Style       string
	StyleFormat types.StyleFormat

	// Locale is a language tag such as "en-US"; empty uses the style's
	// default locale.
	Locale string

	// Full includes every library entry when the style sorts its
	// bibliography.
	Full bool

	// Cited lists the cited keys in document order.
	Cited []string
}

// Option configures Resolve.
type Option func(*resolver)

// WithLogger attaches a logger that receives one event per call.
func WithLogger(logger Logger) Option {
	return func(r *resolver) {
		if logger == nil {
			r.logger = noopLogger{}
			return
		}
		r.logger = logger
	}
}

// WithLocales replaces the bundled locale data handed to the engine.
func WithLocales(locales []csl.Locale) Option {
	return func(r *resolver) {
		r.locales = locales
	}
}

type resolver struct {
	logger  Logger
	locales []csl.Locale
}

// Resolve runs the pipeline: merge sources, resolve the style, plan the
// inclusion, submit citation requests, and extract the bibliography keys.
// The first failure aborts the call and is returned as an *Error.
func Resolve(req Request, opts ...Option) ([]string, error) {
	r := &resolver{logger: noopLogger{}}
	for _, opt := range opts {
		opt(r)
	}

	start := time.Now()
	event := ResolveEvent{ID: uuid.NewString(), Sources: len(req.Sources)}
	keys, err := r.resolve(req, &event)
	event.Keys = len(keys)
	event.Duration = time.Since(start)
	event.Err = err
	r.logger.LogResolve(event)
	return keys, err
}

func (r *resolver) resolve(req Request, event *ResolveEvent) ([]string, error) {
	lib, err := library.Merge(req.Sources)
	if err != nil {
		return nil, &Error{Kind: KindSchema, Msg: "parsing bibliography", Err: err}
	}
	event.Entries = lib.Len()

	style, err := ResolveStyle(req.Style, req.StyleFormat)
	if err != nil {
		return nil, err
	}
	event.Style = style.Name()

	plan, err := PlanInclusion(lib, style, req.Full, req.Cited)
	if err != nil {
		return nil, err
	}
	event.Mode = plan.Mode

	locales := r.locales
	if locales == nil {
		if locales, err = csl.Locales(); err != nil {
			return nil, &Error{Kind: KindEngineOutput, Msg: "loading locale data", Err: err}
		}
	}

	driver := citeproc.NewDriver()
	submit(driver, plan, style, req.Locale, locales)
	return extractKeys(driver, style, req.Locale, locales)
}
