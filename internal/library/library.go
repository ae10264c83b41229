// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package library parses raw bibliography sources (BibTeX or structured
// YAML) and merges them into a single Library keyed by entry identifier.
package library

import "github.com/pdiddy/bibkeys/pkg/types"

// Library is an ordered collection of entries with unique keys. Iteration
// follows first-insertion order; pushing an existing key replaces the entry
// in place.
type Library struct {
	keys    []string
	entries map[string]*types.Entry
}

// New returns an empty Library.
func New() *Library {
	return &Library{entries: make(map[string]*types.Entry)}
}

// Push adds a copy of e. A later entry with the same key overwrites the
// earlier one but keeps its position.
func (l *Library) Push(e types.Entry) {
	if _, ok := l.entries[e.Key]; !ok {
		l.keys = append(l.keys, e.Key)
	}
	l.entries[e.Key] = &e
}

// Extend pushes every entry of other into l.
func (l *Library) Extend(other *Library) {
	if other == nil {
		return
	}
	for _, e := range other.Entries() {
		l.Push(*e)
	}
}

// Get looks up an entry by key.
func (l *Library) Get(key string) (*types.Entry, bool) {
	e, ok := l.entries[key]
	return e, ok
}

// Len returns the number of entries.
func (l *Library) Len() int {
	return len(l.keys)
}

// Keys returns entry keys in insertion order.
func (l *Library) Keys() []string {
	out := make([]string, len(l.keys))
	copy(out, l.keys)
	return out
}

// Entries returns the entries in insertion order.
func (l *Library) Entries() []*types.Entry {
	out := make([]*types.Entry, len(l.keys))
	for i, k := range l.keys {
		out[i] = l.entries[k]
	}
	return out
}
