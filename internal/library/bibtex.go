// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package library

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/nickng/bibtex"

	"github.com/pdiddy/bibkeys/pkg/types"
)

// bibtexTypes maps BibTeX entry types to CSL item types.
var bibtexTypes = map[string]string{
	"article":       "article-journal",
	"book":          "book",
	"mvbook":        "book",
	"booklet":       "pamphlet",
	"inbook":        "chapter",
	"incollection":  "chapter",
	"inproceedings": "paper-conference",
	"conference":    "paper-conference",
	"proceedings":   "book",
	"phdthesis":     "thesis",
	"mastersthesis": "thesis",
	"thesis":        "thesis",
	"techreport":    "report",
	"report":        "report",
	"manual":        "report",
	"online":        "webpage",
	"electronic":    "webpage",
	"www":           "webpage",
	"unpublished":   "manuscript",
	"patent":        "patent",
	"dataset":       "dataset",
	"software":      "software",
	"misc":          "document",
}

// bibtexFields maps BibTeX field names to CSL variable names. Fields not
// listed keep their lowercased BibTeX name.
var bibtexFields = map[string]string{
	"journal":      "container-title",
	"journaltitle": "container-title",
	"booktitle":    "container-title",
	"address":      "publisher-place",
	"location":     "publisher-place",
	"pages":        "page",
	"doi":          "DOI",
	"url":          "URL",
	"isbn":         "ISBN",
	"issn":         "ISSN",
	"series":       "collection-title",
	"chapter":      "chapter-number",
	"institution":  "publisher",
	"school":       "publisher",
	"organization": "publisher",
	"type":         "genre",
}

var monthNames = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

var (
	yearRe     = regexp.MustCompile(`\d{4}`)
	isoDateRe  = regexp.MustCompile(`^(\d{4})(?:-(\d{1,2}))?(?:-(\d{1,2}))?`)
	latexCmdRe = regexp.MustCompile(`\\[a-zA-Z]+\s*`)
)

// bibtex.Parse keeps its parser state in package variables.
var bibtexMu sync.Mutex

// ParseBibTeX parses BibTeX/BibLaTeX text. Text outside @-blocks and %
// comment lines are ignored. Text that is not blank but holds no entries is
// rejected, so free-form prose is not mistaken for an empty bibliography.
func ParseBibTeX(text string) (*Library, error) {
	normalized, n, err := normalizeBibTeX(text)
	if err != nil {
		return nil, fmt.Errorf("parsing bibtex: %w", err)
	}
	if n == 0 {
		if hasContent(text) {
			return nil, errors.New("parsing bibtex: no entries found")
		}
		return New(), nil
	}

	bibtexMu.Lock()
	bib, err := bibtex.Parse(strings.NewReader(normalized))
	bibtexMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("parsing bibtex: %w", err)
	}
	if len(bib.Entries) != n {
		return nil, fmt.Errorf("parsing bibtex: read %d of %d entries", len(bib.Entries), n)
	}

	lib := New()
	for _, be := range bib.Entries {
		if be.CiteName == "" {
			return nil, fmt.Errorf("parsing bibtex: @%s entry without a key", be.Type)
		}
		lib.Push(bibEntryToEntry(be))
	}
	return lib, nil
}

// hasContent reports whether text holds anything besides whitespace and
// %-comment lines.
func hasContent(text string) bool {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "%") {
			return true
		}
	}
	return false
}

func bibEntryToEntry(be *bibtex.BibEntry) types.Entry {
	kind := strings.ToLower(be.Type)
	entry := types.Entry{Key: be.CiteName, Type: "document"}
	if t, ok := bibtexTypes[kind]; ok {
		entry.Type = t
	}

	fields := make(map[string]string, len(be.Fields))
	for name, value := range be.Fields {
		if value == nil {
			continue
		}
		fields[strings.ToLower(name)] = cleanTeX(value.String())
	}

	entry.Authors = splitPersons(fields["author"])
	entry.Editors = splitPersons(fields["editor"])
	entry.Issued = bibDate(fields)
	if kind == "article" {
		if n, ok := fields["number"]; ok {
			entry.SetField("issue", n)
			delete(fields, "number")
		}
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		switch name {
		case "author", "editor", "year", "month", "date", "day":
			continue
		}
		variable := name
		if v, ok := bibtexFields[name]; ok {
			variable = v
		}
		if entry.Field(variable) != "" {
			continue
		}
		entry.SetField(variable, fields[name])
	}
	return entry
}

// splitPersons splits a BibTeX name list on the " and " connector.
func splitPersons(s string) []types.Person {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var people []types.Person
	for _, part := range strings.Split(s, " and ") {
		if p := types.ParsePerson(part); !p.IsZero() {
			people = append(people, p)
		}
	}
	return people
}

// bibDate reads the BibLaTeX date field, falling back to year/month/day.
func bibDate(fields map[string]string) *types.Date {
	if d, ok := parseISODate(fields["date"]); ok {
		return d
	}
	y := yearRe.FindString(fields["year"])
	if y == "" {
		return nil
	}
	year, _ := strconv.Atoi(y)
	d := &types.Date{Year: year, Month: parseMonth(fields["month"])}
	if d.Month > 0 {
		d.Day, _ = strconv.Atoi(strings.TrimSpace(fields["day"]))
	}
	return d
}

// parseISODate reads YYYY, YYYY-MM or YYYY-MM-DD prefixes.
func parseISODate(s string) (*types.Date, bool) {
	m := isoDateRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return nil, false
	}
	d := &types.Date{}
	d.Year, _ = strconv.Atoi(m[1])
	if m[2] != "" {
		d.Month, _ = strconv.Atoi(m[2])
	}
	if m[3] != "" {
		d.Day, _ = strconv.Atoi(m[3])
	}
	return d, true
}

func parseMonth(s string) int {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 1 && n <= 12 {
		return n
	}
	if len(s) >= 3 {
		return monthNames[s[:3]]
	}
	return 0
}

// cleanTeX strips grouping braces and the common LaTeX escapes that show
// up in titles and names.
func cleanTeX(s string) string {
	s = latexCmdRe.ReplaceAllString(s, "")
	r := strings.NewReplacer(
		`\&`, "&",
		`\%`, "%",
		`\$`, "$",
		`\_`, "_",
		`\#`, "#",
		"---", "—",
		"--", "–",
		"~", " ",
		"{", "",
		"}", "",
	)
	s = r.Replace(s)
	return strings.Join(strings.Fields(s), " ")
}
