// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for bibkeys: bibliography
// entries, source format hints, and resolution configuration.
package types

import (
	"fmt"
	"strings"
)

// Person is an author or editor of an entry. Either Family (with optional
// Given) or Literal is set.
type Person struct {
	Family  string `json:"family,omitempty" yaml:"family,omitempty"`
	Given   string `json:"given,omitempty" yaml:"given,omitempty"`
	Literal string `json:"literal,omitempty" yaml:"literal,omitempty"`
}

// IsZero reports whether the person carries no name at all.
func (p Person) IsZero() bool {
	return p.Family == "" && p.Given == "" && p.Literal == ""
}

// SortName returns the name in "Family, Given" order.
func (p Person) SortName() string {
	if p.Literal != "" {
		return p.Literal
	}
	if p.Given == "" {
		return p.Family
	}
	return p.Family + ", " + p.Given
}

// DisplayName returns the name in "Given Family" order.
func (p Person) DisplayName() string {
	if p.Literal != "" {
		return p.Literal
	}
	return strings.TrimSpace(p.Given + " " + p.Family)
}

// ParsePerson splits a free-form name. "Family, Given" is taken verbatim;
// otherwise the last space separates given names from the family name.
// Single-token names use the literal field.
func ParsePerson(name string) Person {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return Person{}
	}
	if family, given, ok := strings.Cut(name, ","); ok {
		return Person{
			Family: strings.TrimSpace(family),
			Given:  strings.TrimSpace(given),
		}
	}
	idx := strings.LastIndex(name, " ")
	if idx < 0 {
		return Person{Literal: name}
	}
	return Person{
		Given:  name[:idx],
		Family: name[idx+1:],
	}
}

// Date is a possibly partial calendar date. Month and Day are zero when
// unknown.
type Date struct {
	Year  int `json:"year" yaml:"year"`
	Month int `json:"month,omitempty" yaml:"month,omitempty"`
	Day   int `json:"day,omitempty" yaml:"day,omitempty"`
}

// String formats the date as YYYY, YYYY-MM or YYYY-MM-DD.
func (d Date) String() string {
	switch {
	case d.Month == 0:
		return fmt.Sprintf("%04d", d.Year)
	case d.Day == 0:
		return fmt.Sprintf("%04d-%02d", d.Year, d.Month)
	default:
		return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
	}
}

// SortKey returns a fixed-width representation that orders chronologically.
func (d Date) SortKey() string {
	return fmt.Sprintf("%04d%02d%02d", d.Year, d.Month, d.Day)
}

// Entry is one bibliographic record. Type uses CSL type names
// (article-journal, book, chapter, ...). Fields holds every other variable
// keyed by its CSL variable name (container-title, publisher, DOI, ...).
type Entry struct {
	// Key is the unique identifier the document cites the entry by.
	Key string `json:"key" yaml:"key"`

	Type    string   `json:"type" yaml:"type"`
	Title   string   `json:"title,omitempty" yaml:"title,omitempty"`
	Authors []Person `json:"authors,omitempty" yaml:"authors,omitempty"`
	Editors []Person `json:"editors,omitempty" yaml:"editors,omitempty"`
	Issued  *Date    `json:"issued,omitempty" yaml:"issued,omitempty"`

	Fields map[string]string `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// Field returns the named variable. Title is served from the dedicated
// field; everything else comes from Fields.
func (e *Entry) Field(name string) string {
	if name == "title" {
		return e.Title
	}
	return e.Fields[name]
}

// SetField stores a variable, dropping empty values.
func (e *Entry) SetField(name, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	if name == "title" {
		e.Title = value
		return
	}
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[name] = value
}

// Year returns the issued year, or zero when the entry is undated.
func (e *Entry) Year() int {
	if e.Issued == nil {
		return 0
	}
	return e.Issued.Year
}

// Names returns the person list for a CSL name variable.
func (e *Entry) Names(variable string) []Person {
	switch variable {
	case "author":
		return e.Authors
	case "editor":
		return e.Editors
	}
	return nil
}
