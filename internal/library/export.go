// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package library

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/bibkeys/pkg/types"
)

// WriteYAML writes lib as a structured bibliography: a mapping from entry
// key to entry fields, in library order. The output parses back through
// ParseYAML to an equivalent library.
func WriteYAML(w io.Writer, lib *Library) error {
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, e := range lib.Entries() {
		root.Content = append(root.Content, strNode(e.Key), entryNode(e))
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return fmt.Errorf("encoding structured bibliography: %w", err)
	}
	return nil
}

func entryNode(e *types.Entry) *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode}
	add := func(key string, value *yaml.Node) {
		n.Content = append(n.Content, strNode(key), value)
	}

	add("type", strNode(e.Type))
	if e.Title != "" {
		add("title", strNode(e.Title))
	}
	if len(e.Authors) > 0 {
		add("author", personsNode(e.Authors))
	}
	if len(e.Editors) > 0 {
		add("editor", personsNode(e.Editors))
	}
	if e.Issued != nil {
		add("date", strNode(e.Issued.String()))
	}
	for _, name := range sortedFieldNames(e) {
		add(name, strNode(e.Fields[name]))
	}
	return n
}

func personsNode(people []types.Person) *yaml.Node {
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for _, p := range people {
		if p.Literal != "" {
			seq.Content = append(seq.Content, &yaml.Node{
				Kind:    yaml.MappingNode,
				Content: []*yaml.Node{strNode("literal"), strNode(p.Literal)},
			})
			continue
		}
		seq.Content = append(seq.Content, strNode(p.SortName()))
	}
	return seq
}

func strNode(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

func sortedFieldNames(e *types.Entry) []string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// cslToBibTeX maps CSL item types back to BibTeX entry types.
var cslToBibTeX = map[string]string{
	"article-journal":  "article",
	"article-magazine": "article",
	"article":          "article",
	"book":             "book",
	"chapter":          "incollection",
	"paper-conference": "inproceedings",
	"thesis":           "phdthesis",
	"report":           "techreport",
	"webpage":          "online",
	"manuscript":       "unpublished",
	"patent":           "patent",
	"pamphlet":         "booklet",
}

// cslToBibField maps CSL variables back to BibTeX field names.
var cslToBibField = map[string]string{
	"container-title":  "journal",
	"publisher-place":  "address",
	"page":             "pages",
	"DOI":              "doi",
	"URL":              "url",
	"ISBN":             "isbn",
	"ISSN":             "issn",
	"collection-title": "series",
	"chapter-number":   "chapter",
	"issue":            "number",
}

// WriteBibTeX writes lib as BibTeX entries in library order.
func WriteBibTeX(w io.Writer, lib *Library) error {
	var b strings.Builder
	for _, e := range lib.Entries() {
		kind, ok := cslToBibTeX[e.Type]
		if !ok {
			kind = "misc"
		}
		fmt.Fprintf(&b, "@%s{%s,\n", kind, e.Key)
		if len(e.Authors) > 0 {
			fmt.Fprintf(&b, "  author = {%s},\n", joinPersons(e.Authors))
		}
		if len(e.Editors) > 0 {
			fmt.Fprintf(&b, "  editor = {%s},\n", joinPersons(e.Editors))
		}
		if e.Title != "" {
			fmt.Fprintf(&b, "  title = {%s},\n", e.Title)
		}
		if e.Issued != nil {
			fmt.Fprintf(&b, "  year = {%d},\n", e.Issued.Year)
			if e.Issued.Month > 0 {
				fmt.Fprintf(&b, "  month = {%s},\n", strconv.Itoa(e.Issued.Month))
			}
		}
		for _, name := range sortedFieldNames(e) {
			field := name
			if f, ok := cslToBibField[name]; ok {
				field = f
			}
			if name == "container-title" && (e.Type == "chapter" || e.Type == "paper-conference") {
				field = "booktitle"
			}
			fmt.Fprintf(&b, "  %s = {%s},\n", field, e.Fields[name])
		}
		b.WriteString("}\n\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func joinPersons(people []types.Person) string {
	names := make([]string, len(people))
	for i, p := range people {
		if p.Literal != "" {
			names[i] = "{" + p.Literal + "}"
			continue
		}
		names[i] = p.SortName()
	}
	return strings.Join(names, " and ")
}
