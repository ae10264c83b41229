// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package library

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/bibkeys/pkg/types"
)

// structuredTypes maps structured-bibliography type names to CSL item
// types. Names not listed (including CSL names) are kept as written.
var structuredTypes = map[string]string{
	"article":     "article-journal",
	"anthos":      "chapter",
	"entry":       "entry",
	"anthology":   "book",
	"proceedings": "book",
	"conference":  "paper-conference",
	"web":         "webpage",
	"blog":        "post-weblog",
	"video":       "motion_picture",
	"audio":       "song",
	"case":        "legal_case",
	"legislation": "legislation",
	"repository":  "software",
	"misc":        "document",
	"thing":       "document",
}

// structuredFields renames structured-bibliography keys to CSL variables.
var structuredFields = map[string]string{
	"page-range": "page",
	"pages":      "page",
	"location":   "publisher-place",
	"doi":        "DOI",
	"url":        "URL",
	"isbn":       "ISBN",
	"issn":       "ISSN",
}

// ParseYAML parses a structured bibliography. Two shapes are accepted: a
// mapping from entry key to entry fields, and a CSL-YAML sequence of items
// carrying an "id". Blank input yields an empty Library.
func ParseYAML(text string) (*Library, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		return nil, fmt.Errorf("parsing structured bibliography: %w", err)
	}
	lib := New()
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return lib, nil
	}

	root := doc.Content[0]
	switch root.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(root.Content); i += 2 {
			key := root.Content[i].Value
			entry, err := structuredEntry(key, root.Content[i+1])
			if err != nil {
				return nil, fmt.Errorf("parsing structured bibliography: entry %q: %w", key, err)
			}
			lib.Push(entry)
		}
	case yaml.SequenceNode:
		for i, item := range root.Content {
			entry, err := cslItemEntry(item)
			if err != nil {
				return nil, fmt.Errorf("parsing CSL-YAML item %d: %w", i+1, err)
			}
			lib.Push(entry)
		}
	default:
		return nil, errors.New("parsing structured bibliography: document is not a mapping of entries")
	}
	return lib, nil
}

func structuredEntry(key string, node *yaml.Node) (types.Entry, error) {
	if key == "" {
		return types.Entry{}, errors.New("empty entry key")
	}
	if node.Kind != yaml.MappingNode {
		return types.Entry{}, errors.New("entry is not a mapping")
	}
	entry := types.Entry{Key: key, Type: "document"}
	if err := applyStructured(&entry, node, false); err != nil {
		return types.Entry{}, err
	}
	return entry, nil
}

// applyStructured copies the fields of one mapping into entry. For a parent
// mapping the title becomes container-title and existing values win.
func applyStructured(entry *types.Entry, node *yaml.Node, parent bool) error {
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := strings.ToLower(node.Content[i].Value)
		value := node.Content[i+1]

		switch name {
		case "type":
			if parent {
				continue
			}
			t := strings.ToLower(scalar(value))
			if mapped, ok := structuredTypes[t]; ok {
				t = mapped
			}
			if t != "" {
				entry.Type = t
			}
		case "title":
			if parent {
				setIfEmpty(entry, "container-title", scalar(value))
			} else {
				entry.SetField("title", scalar(value))
			}
		case "author":
			if parent && len(entry.Authors) > 0 {
				continue
			}
			people, err := persons(value)
			if err != nil {
				return fmt.Errorf("author: %w", err)
			}
			entry.Authors = people
		case "editor":
			if parent && len(entry.Editors) > 0 {
				continue
			}
			people, err := persons(value)
			if err != nil {
				return fmt.Errorf("editor: %w", err)
			}
			entry.Editors = people
		case "date", "issued":
			if entry.Issued != nil {
				continue
			}
			d, ok := parseISODate(scalar(value))
			if !ok {
				return fmt.Errorf("date: cannot parse %q", scalar(value))
			}
			entry.Issued = d
		case "parent":
			parents := []*yaml.Node{value}
			if value.Kind == yaml.SequenceNode {
				parents = value.Content
			}
			for _, p := range parents {
				if p.Kind != yaml.MappingNode {
					return errors.New("parent: not a mapping")
				}
				if err := applyStructured(entry, p, true); err != nil {
					return fmt.Errorf("parent: %w", err)
				}
			}
		case "publisher":
			if value.Kind == yaml.MappingNode {
				setIfEmpty(entry, "publisher", mappingValue(value, "name"))
				setIfEmpty(entry, "publisher-place", mappingValue(value, "location"))
				continue
			}
			setIfEmpty(entry, "publisher", scalar(value))
		case "serial-number":
			if value.Kind == yaml.MappingNode {
				for j := 0; j+1 < len(value.Content); j += 2 {
					setIfEmpty(entry, variableName(value.Content[j].Value), scalar(value.Content[j+1]))
				}
				continue
			}
			setIfEmpty(entry, "number", scalar(value))
		default:
			if value.Kind != yaml.ScalarNode && value.Kind != yaml.MappingNode {
				continue
			}
			setIfEmpty(entry, variableName(name), scalar(value))
		}
	}
	return nil
}

func variableName(name string) string {
	if v, ok := structuredFields[strings.ToLower(name)]; ok {
		return v
	}
	return name
}

func setIfEmpty(entry *types.Entry, name, value string) {
	if entry.Field(name) == "" {
		entry.SetField(name, value)
	}
}

// scalar returns the text of a scalar node, or the "value" key of a
// mapping node (formattable strings, URLs with access dates).
func scalar(n *yaml.Node) string {
	switch n.Kind {
	case yaml.ScalarNode:
		return n.Value
	case yaml.MappingNode:
		return mappingValue(n, "value")
	}
	return ""
}

func mappingValue(n *yaml.Node, key string) string {
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return scalar(n.Content[i+1])
		}
	}
	return ""
}

// persons reads a single name or a list of names. Each name is either a
// "Family, Given" string or a mapping with name/given-name (or CSL
// family/given/literal) keys.
func persons(n *yaml.Node) ([]types.Person, error) {
	items := []*yaml.Node{n}
	if n.Kind == yaml.SequenceNode {
		items = n.Content
	}
	var people []types.Person
	for _, item := range items {
		var p types.Person
		switch item.Kind {
		case yaml.ScalarNode:
			p = types.ParsePerson(item.Value)
		case yaml.MappingNode:
			p = types.Person{
				Family:  firstNonEmpty(mappingValue(item, "name"), mappingValue(item, "family")),
				Given:   firstNonEmpty(mappingValue(item, "given-name"), mappingValue(item, "given")),
				Literal: mappingValue(item, "literal"),
			}
		default:
			return nil, errors.New("name is neither a string nor a mapping")
		}
		if !p.IsZero() {
			people = append(people, p)
		}
	}
	return people, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// cslDate is the CSL-YAML date representation.
type cslDate struct {
	DateParts [][]int `yaml:"date-parts"`
	Literal   string  `yaml:"literal"`
	Raw       string  `yaml:"raw"`
}

func cslItemEntry(node *yaml.Node) (types.Entry, error) {
	if node.Kind != yaml.MappingNode {
		return types.Entry{}, errors.New("item is not a mapping")
	}
	id := mappingValue(node, "id")
	if id == "" {
		return types.Entry{}, errors.New("item has no id")
	}
	entry := types.Entry{Key: id, Type: "document"}

	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		value := node.Content[i+1]
		switch name {
		case "id":
		case "type":
			if t := scalar(value); t != "" {
				entry.Type = t
			}
		case "author", "editor":
			people, err := persons(value)
			if err != nil {
				return types.Entry{}, fmt.Errorf("%s: %w", name, err)
			}
			if name == "author" {
				entry.Authors = people
			} else {
				entry.Editors = people
			}
		case "issued":
			d, err := cslIssued(value)
			if err != nil {
				return types.Entry{}, err
			}
			entry.Issued = d
		default:
			if value.Kind == yaml.ScalarNode {
				entry.SetField(name, value.Value)
			}
		}
	}
	return entry, nil
}

func cslIssued(n *yaml.Node) (*types.Date, error) {
	if n.Kind == yaml.ScalarNode {
		d, ok := parseISODate(n.Value)
		if !ok {
			return nil, fmt.Errorf("issued: cannot parse %q", n.Value)
		}
		return d, nil
	}
	var cd cslDate
	if err := n.Decode(&cd); err != nil {
		return nil, fmt.Errorf("issued: %w", err)
	}
	if len(cd.DateParts) > 0 && len(cd.DateParts[0]) > 0 {
		parts := cd.DateParts[0]
		d := &types.Date{Year: parts[0]}
		if len(parts) > 1 {
			d.Month = parts[1]
		}
		if len(parts) > 2 {
			d.Day = parts[2]
		}
		return d, nil
	}
	for _, s := range []string{cd.Raw, cd.Literal} {
		if d, ok := parseISODate(s); ok {
			return d, nil
		}
	}
	if y, err := strconv.Atoi(yearRe.FindString(cd.Literal)); err == nil {
		return &types.Date{Year: y}, nil
	}
	return nil, nil
}
