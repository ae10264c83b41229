// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package csl

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed styles/*.csl
var styleFS embed.FS

// aliases maps short names to archive style names.
var aliases = map[string]string{
	"apa":      "american-psychological-association",
	"chicago":  "chicago-author-date",
	"mla":      "modern-language-association",
	"harvard":  "harvard-cite-them-right",
	"elsevier": "elsevier-vancouver",
}

// ArchivedStyle is a style bundled with the binary.
type ArchivedStyle struct {
	// Name is the archive name (the file name without extension).
	Name string

	file string
}

// Source returns the raw CSL text of the style.
func (a ArchivedStyle) Source() (string, error) {
	data, err := styleFS.ReadFile(a.file)
	if err != nil {
		return "", fmt.Errorf("reading archived style %s: %w", a.Name, err)
	}
	return string(data), nil
}

// Get parses the archived style. The result may be dependent.
func (a ArchivedStyle) Get() (*Style, error) {
	src, err := a.Source()
	if err != nil {
		return nil, err
	}
	s, err := Parse(src)
	if err != nil {
		return nil, fmt.Errorf("archived style %s: %w", a.Name, err)
	}
	return s, nil
}

// ByName finds an archived style by name or alias, case-insensitively.
func ByName(name string) (ArchivedStyle, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if full, ok := aliases[name]; ok {
		name = full
	}
	if name == "" || strings.ContainsAny(name, "/\\") {
		return ArchivedStyle{}, false
	}
	file := path.Join("styles", name+".csl")
	if _, err := fs.Stat(styleFS, file); err != nil {
		return ArchivedStyle{}, false
	}
	return ArchivedStyle{Name: name, file: file}, true
}

// Names returns every archived style name in sorted order.
func Names() []string {
	files, err := styleFS.ReadDir("styles")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, strings.TrimSuffix(f.Name(), ".csl"))
	}
	sort.Strings(names)
	return names
}

// Aliases returns the short names that resolve to the archived style name.
func Aliases(name string) []string {
	var out []string
	for alias, full := range aliases {
		if full == name {
			out = append(out, alias)
		}
	}
	sort.Strings(out)
	return out
}
