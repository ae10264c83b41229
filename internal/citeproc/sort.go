// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package citeproc

import (
	"fmt"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/pdiddy/bibkeys/internal/csl"
	"github.com/pdiddy/bibkeys/pkg/types"
)

// sortValue is the value of one sort key for one entry.
type sortValue struct {
	text  string
	empty bool
}

// sortEntries orders entries by the section's sort keys. Without keys the
// input order is kept. Entries whose values tie keep their relative order,
// and empty values sort last in either direction.
func sortEntries(entries []*types.Entry, style *csl.Style, section *csl.Section, terms csl.Terms, numbers map[string]int) []*types.Entry {
	if section.Sort == nil || len(section.Sort.Keys) == 0 || len(entries) < 2 {
		return entries
	}
	keys := section.Sort.Keys

	values := make(map[string][]sortValue, len(entries))
	for _, e := range entries {
		r := newRenderer(style, section, terms, e, numbers[e.Key])
		r.sortMode = true
		vs := make([]sortValue, len(keys))
		for i, k := range keys {
			vs[i] = r.sortKey(k)
		}
		values[e.Key] = vs
	}

	col := collator(terms.Lang())
	sorted := make([]*types.Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := values[sorted[i].Key], values[sorted[j].Key]
		for k, key := range keys {
			if c := compareValues(col, a[k], b[k], key.Descending()); c != 0 {
				return c < 0
			}
		}
		return false
	})
	return sorted
}

func (r *renderer) sortKey(k csl.SortKey) sortValue {
	var text string
	switch {
	case k.Macro != "":
		text = r.macro(k.Macro, &csl.Node{}).text
	case k.Variable == "author" || k.Variable == "editor":
		text = r.formatNames(r.entry.Names(k.Variable), nameOptions{
			nameAsSortOrder: "all",
			sortSeparator:   ", ",
		})
	case k.Variable == "issued":
		if r.entry.Issued != nil {
			text = r.entry.Issued.SortKey()
		}
	default:
		text = r.variable(k.Variable, "")
	}
	return sortValue{text: text, empty: text == ""}
}

// compareValues returns the order of a and b for one key. Empty values are
// placed after non-empty ones regardless of direction.
func compareValues(col *collate.Collator, a, b sortValue, descending bool) int {
	switch {
	case a.empty && b.empty:
		return 0
	case a.empty:
		return 1
	case b.empty:
		return -1
	}
	c := col.CompareString(a.text, b.text)
	if descending {
		return -c
	}
	return c
}

func collator(lang string) *collate.Collator {
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.AmericanEnglish
	}
	return collate.New(tag, collate.IgnoreCase, collate.Numeric)
}

// sortableNumber pads n so that lexical order matches numeric order.
func sortableNumber(n int) string {
	return fmt.Sprintf("%010d", n)
}
