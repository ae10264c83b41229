// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package library

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/bibkeys/pkg/types"
)

// ErrUnrecognizedSchema is returned when a source with no explicit format
// parses neither as structured YAML nor as BibTeX.
var ErrUnrecognizedSchema = errors.New("unrecognized bibliography schema")

// Source is one raw bibliography payload with an optional format hint.
type Source struct {
	// Name labels the source in error messages (a file path, or empty).
	Name string

	Text   string
	Format types.SourceFormat
}

// SourceError reports which source failed to parse and why.
type SourceError struct {
	Index  int
	Name   string
	Format types.SourceFormat
	Err    error
}

func (e *SourceError) Error() string {
	label := fmt.Sprintf("source %d", e.Index+1)
	if e.Name != "" {
		label = fmt.Sprintf("source %d (%s)", e.Index+1, e.Name)
	}
	return fmt.Sprintf("%s: %v", label, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// Parse parses a single source. An explicit format is authoritative and
// its failure is returned as is. Without one, structured YAML is tried
// first and BibTeX second; if both fail the error wraps
// ErrUnrecognizedSchema along with both parser messages.
func Parse(src Source) (*Library, error) {
	switch src.Format {
	case types.FormatBibTeX:
		return ParseBibTeX(src.Text)
	case types.FormatStructured:
		return ParseYAML(src.Text)
	}

	lib, yamlErr := ParseYAML(src.Text)
	if yamlErr == nil {
		return lib, nil
	}
	lib, bibErr := ParseBibTeX(src.Text)
	if bibErr == nil {
		return lib, nil
	}
	return nil, fmt.Errorf("%w (structured: %v; bibtex: %v)", ErrUnrecognizedSchema, yamlErr, bibErr)
}

// Merge parses every source and folds the results left to right into one
// Library. The first failing source aborts the merge; no partial library
// is returned. An empty source list yields an empty Library.
func Merge(sources []Source) (*Library, error) {
	acc := New()
	for i, src := range sources {
		lib, err := Parse(src)
		if err != nil {
			return nil, &SourceError{Index: i, Name: src.Name, Format: src.Format, Err: err}
		}
		acc.Extend(lib)
	}
	return acc, nil
}

// SplitSources splits a %%%-separated payload into sources, pairing each
// with the positional hint from formats. A nil or empty formats slice means
// every source is auto-detected; otherwise its length must match.
func SplitSources(payload string, formats []string) ([]Source, error) {
	parts := strings.Split(payload, "%%%")
	if len(formats) > 0 && len(formats) != len(parts) {
		return nil, fmt.Errorf("got %d format hints for %d sources", len(formats), len(parts))
	}

	sources := make([]Source, len(parts))
	for i, text := range parts {
		sources[i] = Source{Text: text}
		if len(formats) == 0 {
			continue
		}
		f, ok := types.ParseSourceFormat(strings.TrimSpace(formats[i]))
		if !ok {
			return nil, fmt.Errorf("unknown format hint %q for source %d", formats[i], i+1)
		}
		sources[i].Format = f
	}
	return sources, nil
}
