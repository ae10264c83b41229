// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bibkeys

import (
	"github.com/pdiddy/bibkeys/internal/csl"
	"github.com/pdiddy/bibkeys/internal/library"
	"github.com/pdiddy/bibkeys/pkg/types"
)

// Mode is the branch of the inclusion policy taken for a call.
type Mode string

const (
	// ModeCited submits the cited keys in document order (full=false).
	ModeCited Mode = "cited"

	// ModeCitedFull submits the cited keys in document order although
	// full was requested, because the style has no sort of its own.
	ModeCitedFull Mode = "cited-full"

	// ModeLibrary submits the cited keys followed by every other library
	// entry as hidden; the engine orders them with the style's sort.
	ModeLibrary Mode = "library"
)

// Selection is one entry to submit. Hidden entries appear in the
// bibliography without being cited in the text.
type Selection struct {
	Entry  *types.Entry
	Hidden bool
}

// Plan is the outcome of the inclusion policy.
type Plan struct {
	Mode       Mode
	Selections []Selection
}

// Keys returns the selected keys in submission order.
func (p Plan) Keys() []string {
	keys := make([]string, len(p.Selections))
	for i, s := range p.Selections {
		keys[i] = s.Entry.Key
	}
	return keys
}

// ChooseMode picks the policy branch from the full flag and the style.
func ChooseMode(full bool, style *csl.Style) Mode {
	switch {
	case !full:
		return ModeCited
	case style.HasBibliographySort():
		return ModeLibrary
	default:
		return ModeCitedFull
	}
}

// PlanInclusion decides which entries are submitted and in what order.
// Every cited key must exist in the library, whichever branch is taken.
// An empty cited list is only accepted in library mode.
func PlanInclusion(lib *library.Library, style *csl.Style, full bool, cited []string) (Plan, error) {
	mode := ChooseMode(full, style)

	citedSet := make(map[string]bool, len(cited))
	citedEntries := make([]Selection, 0, len(cited))
	for _, key := range cited {
		e, ok := lib.Get(key)
		if !ok {
			return Plan{}, &Error{Kind: KindMissingEntry, Msg: "cited key not found in bibliography", Subject: key}
		}
		citedSet[key] = true
		citedEntries = append(citedEntries, Selection{Entry: e})
	}

	if mode == ModeLibrary {
		// Cited entries go first so that citation numbers follow the
		// document; the rest of the library follows hidden.
		selections := citedEntries
		for _, e := range lib.Entries() {
			if !citedSet[e.Key] {
				selections = append(selections, Selection{Entry: e, Hidden: true})
			}
		}
		return Plan{Mode: mode, Selections: selections}, nil
	}

	if len(cited) == 0 {
		return Plan{}, decodingError("no cited keys", "", nil)
	}
	return Plan{Mode: mode, Selections: citedEntries}, nil
}
