// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package csl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalStyle = `<?xml version="1.0" encoding="utf-8"?>
<style xmlns="http://purl.org/net/xbiblio/csl" class="in-text" version="1.0">
  <info><title>Minimal</title><id>http://example.org/styles/minimal</id></info>
  <macro name="who"><names variable="author"/></macro>
  <citation><layout><text macro="who"/></layout></citation>
  <bibliography>
    <sort><key macro="who"/><key variable="issued" sort="descending"/></sort>
    <layout><text variable="title"/></layout>
  </bibliography>
</style>`

func TestParse(t *testing.T) {
	s, err := Parse(minimalStyle)
	require.NoError(t, err)
	assert.Equal(t, "minimal", s.Name())
	assert.False(t, s.IsDependent())
	assert.True(t, s.HasBibliographySort())

	keys := s.BibliographySort()
	require.Len(t, keys, 2)
	assert.Equal(t, "who", keys[0].Macro)
	assert.False(t, keys[0].Descending())
	assert.Equal(t, "issued", keys[1].Variable)
	assert.True(t, keys[1].Descending())

	m, ok := s.Macro("who")
	require.True(t, ok)
	require.Len(t, m.Children, 1)
	assert.Equal(t, "names", m.Children[0].Name)
	assert.Equal(t, "author", m.Children[0].Attr("variable"))
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"not xml", "apa"},
		{"wrong root", `<locale xml:lang="en-US"/>`},
		{"missing class", `<style><citation><layout/></citation></style>`},
		{"unknown class", `<style class="footnote"><citation><layout/></citation></style>`},
		{"no citation", `<style class="in-text"><info><title>x</title></info></style>`},
		{"undefined macro", `<style class="in-text"><citation><layout><text macro="nope"/></layout></citation></style>`},
		{"undefined sort macro", `<style class="in-text"><citation><layout/></citation>
			<bibliography><sort><key macro="nope"/></sort><layout/></bibliography></style>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.text)
			assert.ErrorIs(t, err, ErrMalformedStyle)
		})
	}
}

func TestArchive(t *testing.T) {
	names := Names()
	assert.Contains(t, names, "american-psychological-association")
	assert.Contains(t, names, "ieee")
	assert.IsIncreasing(t, names)

	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			a, ok := ByName(name)
			require.True(t, ok)
			s, err := a.Get()
			require.NoError(t, err)
			assert.NotEmpty(t, s.Info.Title)
			assert.NotEmpty(t, s.Name())
		})
	}
}

func TestByName(t *testing.T) {
	tests := []struct {
		query string
		want  string
		found bool
	}{
		{"apa", "american-psychological-association", true},
		{"  APA ", "american-psychological-association", true},
		{"ieee", "ieee", true},
		{"chicago", "chicago-author-date", true},
		{"no-such-style", "", false},
		{"../locales/locales-en-US", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			a, ok := ByName(tt.query)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, a.Name)
		})
	}
	assert.Equal(t, []string{"apa"}, Aliases("american-psychological-association"))
}

func TestStyleSortPresence(t *testing.T) {
	tests := map[string]bool{
		"american-psychological-association": true,
		"chicago-author-date":                true,
		"modern-language-association":        true,
		"harvard-cite-them-right":            true,
		"ieee":                               false,
		"vancouver":                          false,
	}
	for name, want := range tests {
		a, ok := ByName(name)
		require.True(t, ok, name)
		s, err := a.Get()
		require.NoError(t, err, name)
		assert.Equal(t, want, s.HasBibliographySort(), name)
	}
}

func TestDependentStyle(t *testing.T) {
	a, ok := ByName("elsevier-vancouver")
	require.True(t, ok)
	s, err := a.Get()
	require.NoError(t, err)
	assert.True(t, s.IsDependent())
	assert.Equal(t, "http://www.zotero.org/styles/vancouver", s.Parent())

	src, err := a.Source()
	require.NoError(t, err)
	parsed, err := Parse(src)
	require.NoError(t, err)
	assert.True(t, parsed.IsDependent())
}

func TestLocales(t *testing.T) {
	locales, err := Locales()
	require.NoError(t, err)
	require.Len(t, locales, 3)
	assert.Equal(t, "de-DE", locales[0].Lang)

	tests := []struct {
		lang, name, form string
		plural           bool
		want             string
	}{
		{"en-US", "and", "", false, "and"},
		{"de-DE", "and", "", false, "und"},
		{"de", "no date", "short", false, "o. J."},
		{"fr-CA", "and", "", false, "et"},
		{"xx-YY", "and", "", false, "and"},
		{"en-US", "and", "symbol", false, "&"},
		{"en-US", "page", "short", true, "pp."},
		{"en-US", "page", "symbol", false, "p."},
		{"en-US", "editor", "verb-short", true, "editors"},
		{"en-US", "no-such-term", "", false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.lang+"/"+tt.name+"/"+tt.form, func(t *testing.T) {
			terms := ResolveTerms(nil, tt.lang, locales)
			assert.Equal(t, tt.want, terms.Term(tt.name, tt.form, tt.plural))
		})
	}
}

func TestResolveTermsPrefersStyleLocale(t *testing.T) {
	s, err := Parse(`<style class="in-text" default-locale="de-DE">
  <locale><terms><term name="and">plus</term></terms></locale>
  <citation><layout/></citation>
</style>`)
	require.NoError(t, err)
	locales, err := Locales()
	require.NoError(t, err)

	terms := ResolveTerms(s, "", locales)
	assert.Equal(t, "plus", terms.Term("and", "", false))
	assert.Equal(t, "o. J.", terms.Term("no date", "short", false))
	assert.Equal(t, "de-DE", terms.Lang())
}
