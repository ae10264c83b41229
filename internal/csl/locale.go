// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package csl

import (
	"embed"
	"encoding/xml"
	"fmt"
	"path"
	"sort"
	"strings"
)

//go:embed locales/*.xml
var localeFS embed.FS

// FallbackLocale is used when neither the request nor the style names a
// locale the archive carries.
const FallbackLocale = "en-US"

// Locale holds localized terms, either from a locale file or from a
// style's inline locale element.
type Locale struct {
	Lang  string `xml:"lang,attr"`
	Terms []Term `xml:"terms>term"`
}

// Term is one localized term. Plural-aware terms use Single and Multiple;
// plain terms use Value.
type Term struct {
	Name     string `xml:"name,attr"`
	Form     string `xml:"form,attr"`
	Value    string `xml:",chardata"`
	Single   string `xml:"single"`
	Multiple string `xml:"multiple"`
}

func (t Term) form() string {
	if t.Form == "" {
		return "long"
	}
	return t.Form
}

func (t Term) text(plural bool) string {
	if t.Single == "" && t.Multiple == "" {
		return strings.TrimSpace(t.Value)
	}
	if plural && t.Multiple != "" {
		return t.Multiple
	}
	return t.Single
}

// term finds a term in this locale with an exact form match.
func (l *Locale) term(name, form string) (Term, bool) {
	for _, t := range l.Terms {
		if t.Name == name && t.form() == form {
			return t, true
		}
	}
	return Term{}, false
}

// Locales loads every bundled locale file, ordered by language tag.
func Locales() ([]Locale, error) {
	files, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("reading bundled locales: %w", err)
	}
	locales := make([]Locale, 0, len(files))
	for _, f := range files {
		data, err := localeFS.ReadFile(path.Join("locales", f.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading locale %s: %w", f.Name(), err)
		}
		var l Locale
		if err := xml.Unmarshal(data, &l); err != nil {
			return nil, fmt.Errorf("parsing locale %s: %w", f.Name(), err)
		}
		locales = append(locales, l)
	}
	sort.Slice(locales, func(i, j int) bool { return locales[i].Lang < locales[j].Lang })
	return locales, nil
}

// Terms is a prioritized chain of locales consulted for term lookups.
type Terms []*Locale

// ResolveTerms builds the lookup chain for lang: the style's inline
// locales for the language, then its language-neutral inline locale, then
// the bundled locale for the language (exact tag, then primary subtag),
// and finally the fallback locale.
func ResolveTerms(style *Style, lang string, locales []Locale) Terms {
	if lang == "" && style != nil {
		lang = style.DefaultLocale
	}
	if lang == "" {
		lang = FallbackLocale
	}

	var chain Terms
	if style != nil {
		if l := matchLocale(style.Locales, lang); l != nil {
			chain = append(chain, l)
		}
		for i := range style.Locales {
			if style.Locales[i].Lang == "" {
				chain = append(chain, &style.Locales[i])
			}
		}
	}
	if l := matchLocale(locales, lang); l != nil {
		chain = append(chain, l)
	}
	if l := matchLocale(locales, FallbackLocale); l != nil {
		chain = append(chain, l)
	}
	return chain
}

// matchLocale returns the locale with tag lang, or failing that one that
// shares its primary language subtag.
func matchLocale(locales []Locale, lang string) *Locale {
	for i := range locales {
		if strings.EqualFold(locales[i].Lang, lang) {
			return &locales[i]
		}
	}
	primary := primaryTag(lang)
	for i := range locales {
		if locales[i].Lang != "" && strings.EqualFold(primaryTag(locales[i].Lang), primary) {
			return &locales[i]
		}
	}
	return nil
}

func primaryTag(lang string) string {
	lang = strings.ReplaceAll(lang, "_", "-")
	if i := strings.Index(lang, "-"); i >= 0 {
		return lang[:i]
	}
	return lang
}

// Lang returns the language tag of the most specific locale in the chain.
func (ts Terms) Lang() string {
	for _, l := range ts {
		if l.Lang != "" {
			return l.Lang
		}
	}
	return FallbackLocale
}

// Term looks up a term. Forms fall back as CSL prescribes: symbol to
// short, verb-short to verb, and everything to long.
func (ts Terms) Term(name, form string, plural bool) string {
	if form == "" {
		form = "long"
	}
	for _, f := range formFallbacks(form) {
		for _, l := range ts {
			if t, ok := l.term(name, f); ok {
				return t.text(plural)
			}
		}
	}
	return ""
}

func formFallbacks(form string) []string {
	switch form {
	case "symbol":
		return []string{"symbol", "short", "long"}
	case "verb-short":
		return []string{"verb-short", "verb", "long"}
	case "short", "verb":
		return []string{form, "long"}
	}
	return []string{"long"}
}
