// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package library

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/bibkeys/pkg/types"
)

const sampleBib = `@article{vaswani2017,
  author = {Vaswani, Ashish and Noam Shazeer},
  title = {Attention Is {All} You Need},
  journal = {Advances in Neural Information Processing Systems},
  year = {2017},
  month = {jun},
  pages = {5998--6008},
  number = {30},
}

@book{knuth1984,
  author = {Donald E. Knuth},
  title = {The {\TeX}book},
  publisher = {Addison-Wesley},
  year = {1984},
}
`

const sampleYAML = `x:
  type: article
  title: First
  author: ["Doe, Jane"]
  date: 2020-05-01
  parent:
    type: periodical
    title: Journal of Things
    volume: 3
y:
  type: book
  title: Second
  author:
    - name: Roe
      given-name: Richard
  publisher:
    name: Example Press
    location: Berlin
  date: 2018
z:
  type: web
  title: Third
  url:
    value: https://example.org
`

const sampleCSL = `- id: smith2020
  type: article-journal
  title: A CSL Item
  author:
    - family: Smith
      given: Alice
  issued:
    date-parts: [[2020, 3, 14]]
  DOI: 10.1234/test
- id: org2019
  type: report
  title: Annual Report
  author:
    - literal: World Health Organization
  issued: 2019
`

func TestParseBibTeX(t *testing.T) {
	lib, err := ParseBibTeX(sampleBib)
	require.NoError(t, err)
	require.Equal(t, []string{"vaswani2017", "knuth1984"}, lib.Keys())

	e, ok := lib.Get("vaswani2017")
	require.True(t, ok)
	assert.Equal(t, "article-journal", e.Type)
	assert.Equal(t, "Attention Is All You Need", e.Title)
	assert.Equal(t, "Advances in Neural Information Processing Systems", e.Field("container-title"))
	assert.Equal(t, "5998–6008", e.Field("page"))
	assert.Equal(t, "30", e.Field("issue"))
	require.Len(t, e.Authors, 2)
	assert.Equal(t, types.Person{Family: "Vaswani", Given: "Ashish"}, e.Authors[0])
	assert.Equal(t, types.Person{Family: "Shazeer", Given: "Noam"}, e.Authors[1])
	require.NotNil(t, e.Issued)
	assert.Equal(t, types.Date{Year: 2017, Month: 6}, *e.Issued)

	book, ok := lib.Get("knuth1984")
	require.True(t, ok)
	assert.Equal(t, "book", book.Type)
	assert.Equal(t, "Addison-Wesley", book.Field("publisher"))
	assert.Equal(t, 1984, book.Year())
}

func TestParseBibTeXMinimalEntry(t *testing.T) {
	lib, err := ParseBibTeX("@article{a, title={T1}}")
	require.NoError(t, err)
	require.Equal(t, 1, lib.Len())
	e, _ := lib.Get("a")
	assert.Equal(t, "T1", e.Title)
}

func TestParseBibTeXRejectsProse(t *testing.T) {
	_, err := ParseBibTeX("this is not a bibliography")
	assert.Error(t, err)
}

func TestParseBibTeXOutsideText(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "leading comment line",
			text: "% Encoding: UTF-8\n@article{a, title={T1}}",
			want: []string{"a"},
		},
		{
			name: "comment line between entries",
			text: "@article{a, title={T1}}\n% trailing note\n@book{b, title={B}}",
			want: []string{"a", "b"},
		},
		{
			name: "comment line between fields",
			text: "@book{b,\n  title = {B},\n  % year = {1999},\n  year = {2001}\n}",
			want: []string{"b"},
		},
		{
			name: "comment and preamble blocks",
			text: "@preamble{\"\\newcommand{\\noop}[1]{}\"}\n@comment{jabref-meta: databaseType:bibtex;}\n@book{b, title={B}}",
			want: []string{"b"},
		},
		{
			name: "leading prose",
			text: "References exported on Monday.\n\n@book{b, title={B}}\n@misc(c, title = {C})",
			want: []string{"b", "c"},
		},
		{
			name: "only comments",
			text: "% nothing here yet\n",
			want: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lib, err := ParseBibTeX(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, lib.Keys())
		})
	}
}

func TestParseBibTeXMacrosAndConcatenation(t *testing.T) {
	lib, err := ParseBibTeX(`@string{pub = "Example"}
@string{full = pub # " Press"}
@book{b,
  title = "A" # {B} # "C",
  publisher = full,
  month = jun,
  year = 2001,
}`)
	require.NoError(t, err)
	e, ok := lib.Get("b")
	require.True(t, ok)
	assert.Equal(t, "ABC", e.Title)
	assert.Equal(t, "Example Press", e.Field("publisher"))
	require.NotNil(t, e.Issued)
	assert.Equal(t, types.Date{Year: 2001, Month: 6}, *e.Issued)
}

func TestParseBibTeXErrors(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		contains string
	}{
		{name: "undefined macro", text: "@book{b, publisher = nobody}", contains: `undefined string macro "nobody"`},
		{name: "unterminated entry", text: "@book{b, title = {B}", contains: "unterminated"},
		{name: "entry without key", text: "@book{, title = {B}}", contains: "without a key"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBibTeX(tt.text)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestParseYAML(t *testing.T) {
	lib, err := ParseYAML(sampleYAML)
	require.NoError(t, err)
	require.Equal(t, []string{"x", "y", "z"}, lib.Keys())

	x, _ := lib.Get("x")
	assert.Equal(t, "article-journal", x.Type)
	assert.Equal(t, "Journal of Things", x.Field("container-title"))
	assert.Equal(t, "3", x.Field("volume"))
	assert.Equal(t, types.Date{Year: 2020, Month: 5, Day: 1}, *x.Issued)

	y, _ := lib.Get("y")
	assert.Equal(t, []types.Person{{Family: "Roe", Given: "Richard"}}, y.Authors)
	assert.Equal(t, "Example Press", y.Field("publisher"))
	assert.Equal(t, "Berlin", y.Field("publisher-place"))

	z, _ := lib.Get("z")
	assert.Equal(t, "webpage", z.Type)
	assert.Equal(t, "https://example.org", z.Field("URL"))
}

func TestParseYAMLCSLItems(t *testing.T) {
	lib, err := ParseYAML(sampleCSL)
	require.NoError(t, err)
	require.Equal(t, []string{"smith2020", "org2019"}, lib.Keys())

	s, _ := lib.Get("smith2020")
	assert.Equal(t, "10.1234/test", s.Field("DOI"))
	assert.Equal(t, types.Date{Year: 2020, Month: 3, Day: 14}, *s.Issued)

	o, _ := lib.Get("org2019")
	assert.Equal(t, "World Health Organization", o.Authors[0].Literal)
	assert.Equal(t, 2019, o.Year())
}

func TestParseYAMLRejectsNonBibliography(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"scalar document", "just some words"},
		{"entry is scalar", "title: foo\n"},
		{"bibtex text", "@article{a, title={T1}}"},
		{"item without id", "- title: orphan\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseYAML(tt.text)
			assert.Error(t, err)
		})
	}
}

func TestParseDetection(t *testing.T) {
	tests := []struct {
		name     string
		src      Source
		wantKeys []string
		wantErr  error
		anyErr   bool
	}{
		{
			name:     "auto detects structured",
			src:      Source{Text: sampleYAML},
			wantKeys: []string{"x", "y", "z"},
		},
		{
			name:     "auto falls back to bibtex",
			src:      Source{Text: sampleBib},
			wantKeys: []string{"vaswani2017", "knuth1984"},
		},
		{
			name:    "auto rejects unknown schema",
			src:     Source{Text: "neither format"},
			wantErr: ErrUnrecognizedSchema,
		},
		{
			name:   "explicit bibtex does not fall back",
			src:    Source{Text: sampleYAML, Format: types.FormatBibTeX},
			anyErr: true,
		},
		{
			name:   "explicit structured does not fall back",
			src:    Source{Text: sampleBib, Format: types.FormatStructured},
			anyErr: true,
		},
		{
			name:     "blank source is empty",
			src:      Source{Text: "  \n"},
			wantKeys: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lib, err := Parse(tt.src)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
				return
			case tt.anyErr:
				require.Error(t, err)
				assert.False(t, errors.Is(err, ErrUnrecognizedSchema))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKeys, lib.Keys())
		})
	}
}

func TestMerge(t *testing.T) {
	t.Run("empty source list", func(t *testing.T) {
		lib, err := Merge(nil)
		require.NoError(t, err)
		assert.Equal(t, 0, lib.Len())
	})

	t.Run("mixed formats", func(t *testing.T) {
		lib, err := Merge([]Source{
			{Text: sampleBib, Format: types.FormatBibTeX},
			{Text: sampleYAML},
		})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"vaswani2017", "knuth1984", "x", "y", "z"}, lib.Keys())
	})

	t.Run("later sources overwrite without duplicating", func(t *testing.T) {
		lib, err := Merge([]Source{
			{Text: "@article{a, title={Old}}\n@book{b, title={B}}"},
			{Text: "a:\n  type: book\n  title: New\n"},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, lib.Keys())
		a, _ := lib.Get("a")
		assert.Equal(t, "New", a.Title)
	})

	t.Run("one bad source fails the merge", func(t *testing.T) {
		lib, err := Merge([]Source{
			{Text: sampleYAML},
			{Name: "broken.txt", Text: "no entries here"},
		})
		assert.Nil(t, lib)
		var srcErr *SourceError
		require.ErrorAs(t, err, &srcErr)
		assert.Equal(t, 1, srcErr.Index)
		assert.ErrorIs(t, err, ErrUnrecognizedSchema)
		assert.Contains(t, err.Error(), "broken.txt")
	})
}

func TestSplitSources(t *testing.T) {
	sources, err := SplitSources("a%%%b%%%c", []string{"bib", "yml", "bytes"})
	require.NoError(t, err)
	require.Len(t, sources, 3)
	assert.Equal(t, types.FormatBibTeX, sources[0].Format)
	assert.Equal(t, types.FormatStructured, sources[1].Format)
	assert.Equal(t, types.FormatAuto, sources[2].Format)
	assert.Equal(t, "b", sources[1].Text)

	sources, err = SplitSources("a%%%b", nil)
	require.NoError(t, err)
	assert.Equal(t, types.FormatAuto, sources[1].Format)

	_, err = SplitSources("a%%%b", []string{"bib"})
	assert.Error(t, err)

	_, err = SplitSources("a", []string{"docx"})
	assert.Error(t, err)
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	lib, err := Merge([]Source{{Text: sampleBib}, {Text: sampleYAML}, {Text: sampleCSL}})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteYAML(&buf, lib))

	again, err := Parse(Source{Text: buf.String()})
	require.NoError(t, err)
	assert.Equal(t, lib.Keys(), again.Keys())
	for _, e := range lib.Entries() {
		got, ok := again.Get(e.Key)
		require.True(t, ok, e.Key)
		assert.Equal(t, e, got, e.Key)
	}
}

func TestWriteBibTeXRoundTrip(t *testing.T) {
	lib, err := ParseYAML(sampleYAML)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteBibTeX(&buf, lib))
	assert.Contains(t, buf.String(), "@article{x,")
	assert.Contains(t, buf.String(), "journal = {Journal of Things}")

	again, err := ParseBibTeX(buf.String())
	require.NoError(t, err)
	assert.Equal(t, lib.Keys(), again.Keys())
}

func TestFilter(t *testing.T) {
	lib, err := Merge([]Source{{Text: sampleBib}, {Text: sampleYAML}})
	require.NoError(t, err)

	tests := []struct {
		expr string
		want []string
	}{
		{`type == "book"`, []string{"knuth1984", "y"}},
		{`year >= 2018 && year < 2020`, []string{"y"}},
		{`"Vaswani" in authors`, []string{"vaswani2017"}},
		{`fields["publisher"] == "Addison-Wesley"`, []string{"knuth1984"}},
		{`key startsWith "v"`, []string{"vaswani2017"}},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			f, err := CompileFilter(tt.expr)
			require.NoError(t, err)
			got, err := f.Select(lib)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Keys())
		})
	}

	_, err = CompileFilter(`year + "x"`)
	assert.Error(t, err)
	_, err = CompileFilter("")
	assert.Error(t, err)
}
