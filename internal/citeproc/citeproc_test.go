// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package citeproc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/bibkeys/internal/csl"
	"github.com/pdiddy/bibkeys/pkg/types"
)

func archived(t *testing.T, name string) *csl.Style {
	t.Helper()
	a, ok := csl.ByName(name)
	require.True(t, ok, name)
	s, err := a.Get()
	require.NoError(t, err)
	return s
}

func entry(key, family string, year int, title string) *types.Entry {
	e := &types.Entry{Key: key, Type: "article-journal", Title: title}
	if family != "" {
		e.Authors = []types.Person{{Family: family, Given: "Jane"}}
	}
	if year > 0 {
		e.Issued = &types.Date{Year: year}
	}
	return e
}

func finish(style *csl.Style, items ...CitationItem) Rendered {
	d := NewDriver()
	for _, item := range items {
		d.Citation(CitationRequest{Items: []CitationItem{item}, Style: style, Locale: "en-US"})
	}
	return d.Finish(BibliographyRequest{Style: style, Locale: "en-US"})
}

func TestFinishSortedStyle(t *testing.T) {
	apa := archived(t, "apa")

	smith := entry("smith", "Smith", 2020, "Later work")
	adams := entry("adams", "Adams", 2019, "Earlier work")
	anon := entry("anon", "", 0, "Zeta report")

	out := finish(apa,
		NewCitationItem(smith),
		NewCitationItem(anon),
		NewCitationItem(adams),
	)
	require.NotNil(t, out.Bibliography)
	assert.Equal(t, []string{"adams", "smith", "anon"}, out.Bibliography.Keys())
	assert.Len(t, out.Citations, 3)
}

func TestFinishUnsortedStyleKeepsFirstAppearance(t *testing.T) {
	ieee := archived(t, "ieee")

	z := entry("z", "Zulu", 2001, "Z")
	x := entry("x", "Xray", 2003, "X")

	d := NewDriver()
	d.Citation(CitationRequest{Items: []CitationItem{NewCitationItem(z), NewCitationItem(x)}, Style: ieee})
	d.Citation(CitationRequest{Items: []CitationItem{NewCitationItem(x)}, Style: ieee})
	out := d.Finish(BibliographyRequest{Style: ieee})

	require.NotNil(t, out.Bibliography)
	assert.Equal(t, []string{"z", "x"}, out.Bibliography.Keys())
	assert.Equal(t, 1, out.Bibliography.Items[0].Number)
	require.Len(t, out.Citations, 2)
	assert.Equal(t, "[1, 2]", out.Citations[0].Text)
	assert.Equal(t, "[2]", out.Citations[1].Text)
}

func TestFinishHiddenItems(t *testing.T) {
	apa := archived(t, "apa")

	visible := entry("b", "Brown", 2010, "Visible")
	hidden := entry("a", "Abbot", 2011, "Hidden")

	out := finish(apa,
		NewCitationItem(visible),
		CitationItem{Entry: hidden, Hidden: true},
	)
	require.NotNil(t, out.Bibliography)
	assert.Equal(t, []string{"a", "b"}, out.Bibliography.Keys())
	require.Len(t, out.Citations, 1)
	assert.Contains(t, out.Citations[0].Text, "Brown")
}

func TestFinishNoBibliography(t *testing.T) {
	style, err := csl.Parse(`<style xmlns="http://purl.org/net/xbiblio/csl" class="note" version="1.0">
  <info><title>Notes only</title><id>notes</id></info>
  <citation><layout><text variable="title"/></layout></citation>
</style>`)
	require.NoError(t, err)

	out := finish(style, NewCitationItem(entry("a", "A", 2000, "Alpha")))
	assert.Nil(t, out.Bibliography)
	require.Len(t, out.Citations, 1)
	assert.Equal(t, "Alpha", out.Citations[0].Text)
}

func TestFinishDescendingEmptyLast(t *testing.T) {
	style, err := csl.Parse(`<style xmlns="http://purl.org/net/xbiblio/csl" class="in-text" version="1.0">
  <info><title>Newest first</title><id>newest</id></info>
  <citation><layout><text variable="title"/></layout></citation>
  <bibliography>
    <sort><key variable="issued" sort="descending"/><key variable="title"/></sort>
    <layout><text variable="title"/></layout>
  </bibliography>
</style>`)
	require.NoError(t, err)

	out := finish(style,
		NewCitationItem(entry("old", "O", 1990, "Old")),
		NewCitationItem(entry("undated", "U", 0, "Undated")),
		NewCitationItem(entry("new", "N", 2020, "New")),
		NewCitationItem(entry("also-new", "N", 2020, "Also new")),
	)
	require.NotNil(t, out.Bibliography)
	assert.Equal(t, []string{"also-new", "new", "old", "undated"}, out.Bibliography.Keys())
}

func TestRenderAPA(t *testing.T) {
	apa := archived(t, "apa")
	e := &types.Entry{
		Key:   "vaswani2017",
		Type:  "article-journal",
		Title: "Attention is all you need",
		Authors: []types.Person{
			{Family: "Vaswani", Given: "Ashish"},
			{Family: "Shazeer", Given: "Noam"},
		},
		Issued: &types.Date{Year: 2017},
		Fields: map[string]string{
			"container-title": "NeurIPS",
			"volume":          "30",
			"page":            "5998–6008",
		},
	}

	out := finish(apa, NewCitationItem(e))
	require.NotNil(t, out.Bibliography)
	require.Len(t, out.Bibliography.Items, 1)
	assert.Equal(t,
		"Vaswani, A., & Shazeer, N. (2017). Attention is all you need. NeurIPS, 30, 5998–6008.",
		out.Bibliography.Items[0].Text)
	require.Len(t, out.Citations, 1)
	assert.Equal(t, "(Vaswani & Shazeer, 2017)", out.Citations[0].Text)
}

func TestFormatNames(t *testing.T) {
	people := []types.Person{
		{Family: "Doe", Given: "Jane"},
		{Family: "Roe", Given: "Richard Paul"},
		{Literal: "ACME Corp"},
	}
	r := newRenderer(nil, &csl.Section{}, csl.Terms{}, &types.Entry{}, 0)

	tests := []struct {
		name  string
		count int
		opts  nameOptions
		want  string
	}{
		{
			name:  "display order with and",
			count: 2,
			opts:  nameOptions{and: "text", delimiter: ", "},
			want:  "Jane Doe and Richard Paul Roe",
		},
		{
			name:  "contextual delimiter before and",
			count: 3,
			opts:  nameOptions{and: "text", delimiter: ", ", delimiterPrecedesLast: "contextual"},
			want:  "Jane Doe, Richard Paul Roe, and ACME Corp",
		},
		{
			name:  "inverted initials",
			count: 2,
			opts:  nameOptions{delimiter: "; ", nameAsSortOrder: "all", sortSeparator: ", ", initialize: true, initializeWith: ". "},
			want:  "Doe, J.; Roe, R. P.",
		},
		{
			name:  "et al truncation",
			count: 3,
			opts:  nameOptions{delimiter: ", ", etAlMin: 3, etAlUseFirst: 1, form: "short"},
			want:  "Doe et al.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.formatNames(people[:tt.count], tt.opts))
		})
	}
}

func TestInitials(t *testing.T) {
	assert.Equal(t, "J. R.", initials("John Ronald", ". "))
	assert.Equal(t, "J.-P.", initials("Jean-Paul", ". "))
	assert.Equal(t, "JR", initials("John Ronald", ""))
}

func TestChooseMatch(t *testing.T) {
	e := &types.Entry{Type: "book", Title: "T", Fields: map[string]string{"volume": "12"}}
	r := newRenderer(nil, &csl.Section{}, csl.Terms{}, e, 0)

	tests := []struct {
		attrs map[string]string
		want  bool
	}{
		{map[string]string{"type": "book"}, true},
		{map[string]string{"type": "article-journal chapter"}, false},
		{map[string]string{"type": "article-journal book", "match": "any"}, true},
		{map[string]string{"variable": "title volume"}, true},
		{map[string]string{"variable": "title DOI"}, false},
		{map[string]string{"variable": "DOI issued", "match": "none"}, true},
		{map[string]string{"is-numeric": "volume"}, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, r.test(&csl.Node{Name: "if", Attrs: tt.attrs}), "%v", tt.attrs)
	}
}
