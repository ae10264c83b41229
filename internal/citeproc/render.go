// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package citeproc

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pdiddy/bibkeys/internal/csl"
	"github.com/pdiddy/bibkeys/pkg/types"
)

// result is the output of one rendering element. called and filled track
// variable access for group suppression: a group that called at least one
// variable and found all of them empty renders nothing.
type result struct {
	text   string
	called bool
	filled bool
}

func (r result) merge(o result) result {
	return result{
		text:   r.text + o.text,
		called: r.called || o.called,
		filled: r.filled || o.filled,
	}
}

// renderer renders one entry against a citation or bibliography section.
type renderer struct {
	style   *csl.Style
	section *csl.Section
	terms   csl.Terms
	entry   *types.Entry
	number  int
	locator string

	// sortMode renders names in sort order without truncation and dates
	// as sortable keys.
	sortMode bool

	depth int
}

// maxMacroDepth bounds macro recursion in malformed styles.
const maxMacroDepth = 32

func newRenderer(style *csl.Style, section *csl.Section, terms csl.Terms, entry *types.Entry, number int) *renderer {
	return &renderer{
		style:   style,
		section: section,
		terms:   terms,
		entry:   entry,
		number:  number,
	}
}

// layout renders the section layout for the entry.
func (r *renderer) layout() string {
	layout := &r.section.Layout
	return affix(layout, r.nodes(layout.Children, "").text)
}

// nodes renders a sequence of elements and joins the non-empty outputs.
func (r *renderer) nodes(children []csl.Node, delimiter string) result {
	var out result
	var parts []string
	for i := range children {
		res := r.node(&children[i])
		out.called = out.called || res.called
		out.filled = out.filled || res.filled
		if res.text != "" {
			parts = append(parts, res.text)
		}
	}
	out.text = joinNonEmpty(parts, delimiter)
	return out
}

func (r *renderer) node(n *csl.Node) result {
	switch n.Name {
	case "text":
		return r.text(n)
	case "number":
		return r.numberVar(n)
	case "label":
		return result{text: affix(n, r.label(n.Attr("variable"), n.Attr("form"), n.Attr("plural")))}
	case "date":
		return r.date(n)
	case "names":
		return r.names(n)
	case "group":
		return r.group(n)
	case "choose":
		return r.choose(n)
	}
	return result{}
}

func (r *renderer) text(n *csl.Node) result {
	switch {
	case n.Attr("variable") != "":
		v := r.variable(n.Attr("variable"), n.Attr("form"))
		return result{text: affix(n, v), called: true, filled: v != ""}
	case n.Attr("macro") != "":
		return r.macro(n.Attr("macro"), n)
	case n.Attr("term") != "":
		plural := n.Attr("plural") == "true"
		return result{text: affix(n, r.terms.Term(n.Attr("term"), n.Attr("form"), plural))}
	case n.Attr("value") != "":
		return result{text: affix(n, n.Attr("value"))}
	}
	return result{}
}

func (r *renderer) macro(name string, n *csl.Node) result {
	m, ok := r.style.Macro(name)
	if !ok || r.depth >= maxMacroDepth {
		return result{}
	}
	r.depth++
	res := r.nodes(m.Children, "")
	r.depth--
	res.text = affix(n, res.text)
	return res
}

func (r *renderer) numberVar(n *csl.Node) result {
	v := r.variable(n.Attr("variable"), "")
	return result{text: affix(n, v), called: true, filled: v != ""}
}

// variable returns the plain text of a standard variable.
func (r *renderer) variable(name, form string) string {
	switch name {
	case "citation-number":
		if r.sortMode {
			return sortableNumber(r.number)
		}
		return strconv.Itoa(r.number)
	case "locator":
		return r.locator
	case "citation-key":
		return r.entry.Key
	}
	if form == "short" {
		if v := r.entry.Field(name + "-short"); v != "" {
			return v
		}
	}
	return r.entry.Field(name)
}

// label renders the term for a variable, pluralized by its content.
func (r *renderer) label(variable, form, pluralAttr string) string {
	if variable == "locator" {
		variable = "page"
	}
	value := r.entry.Field(variable)
	if variable == "page" && r.locator != "" {
		value = r.locator
	}
	if value == "" {
		return ""
	}
	plural := strings.ContainsAny(value, "-–,&")
	switch pluralAttr {
	case "always":
		plural = true
	case "never":
		plural = false
	}
	return r.terms.Term(variable, form, plural)
}

func (r *renderer) date(n *csl.Node) result {
	d := r.entry.Issued
	if n.Attr("variable") != "issued" || d == nil || d.Year == 0 {
		return result{called: true}
	}
	if r.sortMode {
		return result{text: d.SortKey(), called: true, filled: true}
	}

	var parts []string
	for i := range n.Children {
		part := &n.Children[i]
		if part.Name != "date-part" {
			continue
		}
		var v string
		switch part.Attr("name") {
		case "year":
			v = strconv.Itoa(d.Year)
		case "month":
			v = formatMonth(d.Month, part.Attr("form"))
		case "day":
			if d.Day > 0 {
				v = strconv.Itoa(d.Day)
			}
		}
		if v != "" {
			parts = append(parts, affix(part, v))
		}
	}
	if len(parts) == 0 {
		parts = append(parts, strconv.Itoa(d.Year))
	}
	return result{text: affix(n, joinNonEmpty(parts, n.Attr("delimiter"))), called: true, filled: true}
}

var monthNames = [...]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

func formatMonth(month int, form string) string {
	if month < 1 || month > 12 {
		return ""
	}
	switch form {
	case "numeric":
		return strconv.Itoa(month)
	case "numeric-leading-zeros":
		return twoDigits(month)
	case "short":
		return monthNames[month-1][:3]
	}
	return monthNames[month-1]
}

func twoDigits(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

func (r *renderer) group(n *csl.Node) result {
	res := r.nodes(n.Children, n.Attr("delimiter"))
	if res.called && !res.filled {
		return result{called: true}
	}
	res.text = affix(n, res.text)
	return res
}

func (r *renderer) choose(n *csl.Node) result {
	for i := range n.Children {
		branch := &n.Children[i]
		switch branch.Name {
		case "if", "else-if":
			if r.test(branch) {
				return r.nodes(branch.Children, "")
			}
		case "else":
			return r.nodes(branch.Children, "")
		}
	}
	return result{}
}

// test evaluates the conditions of an if or else-if branch.
func (r *renderer) test(n *csl.Node) bool {
	var outcomes []bool
	for _, attr := range []string{"type", "variable", "is-numeric", "locator", "position", "disambiguate"} {
		v := n.Attr(attr)
		if v == "" {
			continue
		}
		if attr == "disambiguate" {
			outcomes = append(outcomes, v != "true")
			continue
		}
		for _, value := range strings.Fields(v) {
			outcomes = append(outcomes, r.condition(attr, value))
		}
	}
	if len(outcomes) == 0 {
		return false
	}

	switch n.Attr("match") {
	case "any":
		for _, ok := range outcomes {
			if ok {
				return true
			}
		}
		return false
	case "none":
		for _, ok := range outcomes {
			if ok {
				return false
			}
		}
		return true
	}
	for _, ok := range outcomes {
		if !ok {
			return false
		}
	}
	return true
}

func (r *renderer) condition(attr, value string) bool {
	switch attr {
	case "type":
		return r.entry.Type == value
	case "variable":
		return r.hasVariable(value)
	case "is-numeric":
		return isNumeric(r.variable(value, ""))
	case "locator":
		return r.locator != "" && value == "page"
	case "position":
		return value == "first"
	}
	return false
}

func (r *renderer) hasVariable(name string) bool {
	switch name {
	case "issued":
		return r.entry.Issued != nil && r.entry.Issued.Year != 0
	case "author", "editor":
		return len(r.entry.Names(name)) > 0
	}
	return r.variable(name, "") != ""
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	hasDigit := false
	for _, c := range s {
		switch {
		case unicode.IsDigit(c):
			hasDigit = true
		case c == '-' || c == '–' || c == ',' || c == '&' || c == ' ':
		default:
			return false
		}
	}
	return hasDigit
}

// affix applies quotes, text-case, prefix, and suffix to non-empty text.
func affix(n *csl.Node, text string) string {
	if text == "" {
		return ""
	}
	text = applyCase(text, n.Attr("text-case"))
	if n.Attr("quotes") == "true" {
		text = "“" + text + "”"
	}
	suffix := n.Attr("suffix")
	if suffix != "" {
		last, _ := utf8.DecodeLastRuneInString(text)
		first, _ := utf8.DecodeRuneInString(suffix)
		if first == last && strings.ContainsRune(".,;:", first) {
			suffix = suffix[1:]
		}
	}
	return n.Attr("prefix") + text + suffix
}

func applyCase(text, textCase string) string {
	switch textCase {
	case "uppercase":
		return strings.ToUpper(text)
	case "lowercase":
		return strings.ToLower(text)
	case "capitalize-first", "sentence":
		return capitalize(text)
	case "capitalize-all", "title":
		words := strings.Fields(text)
		for i, w := range words {
			words[i] = capitalize(w)
		}
		return strings.Join(words, " ")
	}
	return text
}

func capitalize(s string) string {
	c, size := utf8.DecodeRuneInString(s)
	if c == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(c)) + s[size:]
}

func joinNonEmpty(parts []string, delimiter string) string {
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString(delimiter)
		}
		b.WriteString(p)
	}
	return b.String()
}
