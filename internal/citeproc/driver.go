// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package citeproc is a small Citation Style Language processor. A Driver
// accumulates citation requests; Finish orders the cited entries the way
// the style prescribes and renders citations and bibliography as plain
// text.
package citeproc

import (
	"github.com/pdiddy/bibkeys/internal/csl"
	"github.com/pdiddy/bibkeys/pkg/types"
)

// CitationItem cites one entry. Hidden items are listed in the
// bibliography but do not appear in any rendered citation.
type CitationItem struct {
	Entry   *types.Entry
	Locator string
	Hidden  bool
}

// NewCitationItem returns a visible item for entry.
func NewCitationItem(entry *types.Entry) CitationItem {
	return CitationItem{Entry: entry}
}

// CitationRequest is one citation occurrence in a document.
type CitationRequest struct {
	Items   []CitationItem
	Style   *csl.Style
	Locale  string
	Locales []csl.Locale
}

// BibliographyRequest carries the style and locale data used to finish a
// Driver.
type BibliographyRequest struct {
	Style   *csl.Style
	Locale  string
	Locales []csl.Locale
}

// Rendered is the output of Driver.Finish.
type Rendered struct {
	// Citations holds one entry per request that has a visible item, in
	// registration order.
	Citations []RenderedCitation

	// Bibliography is nil when the style has no bibliography element.
	Bibliography *RenderedBibliography
}

// RenderedCitation is the text of one citation.
type RenderedCitation struct {
	Text string
}

// RenderedBibliography lists the bibliography in final order.
type RenderedBibliography struct {
	Items []BibliographyItem
}

// Keys returns the entry keys of the bibliography in order.
func (b *RenderedBibliography) Keys() []string {
	keys := make([]string, len(b.Items))
	for i, item := range b.Items {
		keys[i] = item.Key
	}
	return keys
}

// BibliographyItem is one rendered bibliography entry.
type BibliographyItem struct {
	Key    string
	Number int
	Text   string
}

// Driver accumulates citation requests. It is not safe for concurrent use.
type Driver struct {
	requests []CitationRequest
}

// NewDriver returns an empty Driver.
func NewDriver() *Driver {
	return &Driver{}
}

// Citation registers a citation request. Registration order is the order
// of first appearance used for numbering and for unsorted bibliographies.
func (d *Driver) Citation(req CitationRequest) {
	d.requests = append(d.requests, req)
}

// Len returns the number of registered requests.
func (d *Driver) Len() int {
	return len(d.requests)
}

// Finish computes the bibliography and renders all citations.
func (d *Driver) Finish(req BibliographyRequest) Rendered {
	entries := d.citedEntries()

	numbers := make(map[string]int, len(entries))
	for i, e := range entries {
		numbers[e.Key] = i + 1
	}

	var out Rendered
	if req.Style != nil && req.Style.Bibliography != nil {
		terms := resolveTerms(req.Style, req.Locale, req.Locales)
		section := req.Style.Bibliography
		entries = sortEntries(entries, req.Style, section, terms, numbers)

		bib := &RenderedBibliography{Items: make([]BibliographyItem, 0, len(entries))}
		for i, e := range entries {
			numbers[e.Key] = i + 1
			r := newRenderer(req.Style, section, terms, e, i+1)
			bib.Items = append(bib.Items, BibliographyItem{
				Key:    e.Key,
				Number: i + 1,
				Text:   r.layout(),
			})
		}
		out.Bibliography = bib
	}

	for _, cr := range d.requests {
		if text, ok := renderCitation(cr, numbers); ok {
			out.Citations = append(out.Citations, RenderedCitation{Text: text})
		}
	}
	return out
}

// citedEntries returns every distinct entry in order of first appearance,
// hidden items included.
func (d *Driver) citedEntries() []*types.Entry {
	seen := make(map[string]bool)
	var entries []*types.Entry
	for _, req := range d.requests {
		for _, item := range req.Items {
			if item.Entry == nil || seen[item.Entry.Key] {
				continue
			}
			seen[item.Entry.Key] = true
			entries = append(entries, item.Entry)
		}
	}
	return entries
}

func renderCitation(cr CitationRequest, numbers map[string]int) (string, bool) {
	if cr.Style == nil || cr.Style.Citation == nil {
		return "", false
	}
	section := cr.Style.Citation
	terms := resolveTerms(cr.Style, cr.Locale, cr.Locales)

	var parts []string
	for _, item := range cr.Items {
		if item.Hidden || item.Entry == nil {
			continue
		}
		r := newRenderer(cr.Style, section, terms, item.Entry, numbers[item.Entry.Key])
		r.locator = item.Locator
		if text := r.nodes(section.Layout.Children, "").text; text != "" {
			parts = append(parts, text)
		}
	}
	if len(parts) == 0 {
		return "", false
	}
	layout := &section.Layout
	return affix(layout, joinNonEmpty(parts, layout.Attr("delimiter"))), true
}

// resolveTerms falls back to the bundled locales when the request carries
// none.
func resolveTerms(style *csl.Style, lang string, locales []csl.Locale) csl.Terms {
	if locales == nil {
		locales, _ = csl.Locales()
	}
	return csl.ResolveTerms(style, lang, locales)
}
