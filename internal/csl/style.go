// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package csl models Citation Style Language styles and locales and ships
// a bundled archive of styles and locale files.
package csl

import (
	"encoding/xml"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMalformedStyle is returned when style XML cannot be used.
	ErrMalformedStyle = errors.New("malformed style definition")
	// ErrStyleNotFound is returned by archive lookups for unknown names.
	ErrStyleNotFound = errors.New("style not found")
	// ErrDependentStyle is returned when an independent style is required
	// but the style delegates to a parent.
	ErrDependentStyle = errors.New("dependent style not supported")
)

// Style is a parsed CSL style document.
type Style struct {
	XMLName       xml.Name `xml:"style"`
	Class         string   `xml:"class,attr"`
	Version       string   `xml:"version,attr"`
	DefaultLocale string   `xml:"default-locale,attr"`

	Info         Info     `xml:"info"`
	Locales      []Locale `xml:"locale"`
	Macros       []Macro  `xml:"macro"`
	Citation     *Section `xml:"citation"`
	Bibliography *Section `xml:"bibliography"`
}

// Info is the style metadata block.
type Info struct {
	Title      string     `xml:"title"`
	ID         string     `xml:"id"`
	Links      []Link     `xml:"link"`
	Categories []Category `xml:"category"`
}

// Link is an info/link element.
type Link struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
}

// Category is an info/category element.
type Category struct {
	CitationFormat string `xml:"citation-format,attr"`
	Field          string `xml:"field,attr"`
}

// Macro is a named, reusable rendering fragment.
type Macro struct {
	Name     string `xml:"name,attr"`
	Children []Node `xml:",any"`
}

// Section is the citation or bibliography element: inheritable name
// options, an optional sort, and the layout.
type Section struct {
	Attrs  []xml.Attr `xml:",any,attr"`
	Sort   *Sort      `xml:"sort"`
	Layout Node       `xml:"layout"`
}

// Attr returns a section attribute such as et-al-min.
func (s *Section) Attr(name string) string {
	for _, a := range s.Attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// Sort lists the sort keys of a section.
type Sort struct {
	Keys []SortKey `xml:"key"`
}

// SortKey sorts by a variable or by the output of a macro.
type SortKey struct {
	Variable string `xml:"variable,attr"`
	Macro    string `xml:"macro,attr"`
	Order    string `xml:"sort,attr"`
}

// Descending reports whether the key sorts in descending order.
func (k SortKey) Descending() bool {
	return k.Order == "descending"
}

// Parse decodes a CSL style. The result may be dependent; callers that
// need a complete rule set check IsDependent.
func Parse(text string) (*Style, error) {
	var s Style
	if err := xml.Unmarshal([]byte(text), &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedStyle, err)
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedStyle, err)
	}
	return &s, nil
}

func (s *Style) validate() error {
	switch s.Class {
	case "in-text", "note":
	case "":
		return errors.New("style has no class attribute")
	default:
		return fmt.Errorf("unknown style class %q", s.Class)
	}
	if s.IsDependent() {
		return nil
	}
	if s.Citation == nil {
		return errors.New("independent style has no citation element")
	}

	macros := make(map[string]bool, len(s.Macros))
	for _, m := range s.Macros {
		if m.Name == "" {
			return errors.New("macro without a name")
		}
		macros[m.Name] = true
	}
	check := func(n *Node) error {
		if name := n.Attr("macro"); name != "" && !macros[name] {
			return fmt.Errorf("undefined macro %q", name)
		}
		return nil
	}
	for _, sec := range []*Section{s.Citation, s.Bibliography} {
		if sec == nil {
			continue
		}
		if sec.Layout.Name == "" {
			return errors.New("section has no layout")
		}
		if err := sec.Layout.walk(check); err != nil {
			return err
		}
		if sec.Sort != nil {
			for _, k := range sec.Sort.Keys {
				if k.Macro != "" && !macros[k.Macro] {
					return fmt.Errorf("sort key references undefined macro %q", k.Macro)
				}
			}
		}
	}
	for i := range s.Macros {
		for j := range s.Macros[i].Children {
			if err := s.Macros[i].Children[j].walk(check); err != nil {
				return err
			}
		}
	}
	return nil
}

// IsDependent reports whether the style delegates to an independent parent.
func (s *Style) IsDependent() bool {
	return s.Parent() != ""
}

// Parent returns the independent-parent link target, if any.
func (s *Style) Parent() string {
	for _, l := range s.Info.Links {
		if l.Rel == "independent-parent" {
			return l.Href
		}
	}
	return ""
}

// Name returns a short identifier for messages: the last path element of
// the style ID, or its title.
func (s *Style) Name() string {
	if id := strings.TrimRight(s.Info.ID, "/"); id != "" {
		return id[strings.LastIndex(id, "/")+1:]
	}
	return s.Info.Title
}

// BibliographySort returns the bibliography sort keys. A nil result means
// the style imposes no bibliography order.
func (s *Style) BibliographySort() []SortKey {
	if s.Bibliography == nil || s.Bibliography.Sort == nil {
		return nil
	}
	return s.Bibliography.Sort.Keys
}

// HasBibliographySort reports whether the style defines its own
// bibliography order.
func (s *Style) HasBibliographySort() bool {
	return len(s.BibliographySort()) > 0
}

// Macro looks up a macro by name.
func (s *Style) Macro(name string) (*Macro, bool) {
	for i := range s.Macros {
		if s.Macros[i].Name == name {
			return &s.Macros[i], true
		}
	}
	return nil, false
}
