// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package citeproc

import (
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/bibkeys/internal/csl"
	"github.com/pdiddy/bibkeys/pkg/types"
)

// nameOptions are the name attributes after inheritance from the section.
type nameOptions struct {
	and                   string
	delimiter             string
	delimiterPrecedesLast string
	initializeWith        string
	initialize            bool
	nameAsSortOrder       string
	sortSeparator         string
	form                  string
	etAlMin               int
	etAlUseFirst          int
}

func (r *renderer) inheritedNameOptions(name *csl.Node) nameOptions {
	get := func(attr string) (string, bool) {
		if name != nil {
			if v, ok := name.Attrs[attr]; ok {
				return v, true
			}
		}
		v := r.section.Attr(attr)
		return v, v != ""
	}
	opts := nameOptions{delimiter: ", ", sortSeparator: ", ", delimiterPrecedesLast: "contextual"}
	if v, ok := get("and"); ok {
		opts.and = v
	}
	if v, ok := get("delimiter"); ok {
		opts.delimiter = v
	}
	if v, ok := get("delimiter-precedes-last"); ok {
		opts.delimiterPrecedesLast = v
	}
	if v, ok := get("initialize-with"); ok {
		opts.initializeWith = v
		opts.initialize = true
	}
	if v, ok := get("name-as-sort-order"); ok {
		opts.nameAsSortOrder = v
	}
	if v, ok := get("sort-separator"); ok {
		opts.sortSeparator = v
	}
	if v, ok := get("form"); ok {
		opts.form = v
	}
	if v, ok := get("et-al-min"); ok {
		opts.etAlMin = atoi(v)
	}
	if v, ok := get("et-al-use-first"); ok {
		opts.etAlUseFirst = atoi(v)
	}
	return opts
}

func (r *renderer) names(n *csl.Node) result {
	opts := r.inheritedNameOptions(n.Child("name"))
	if r.sortMode {
		opts.nameAsSortOrder = "all"
		opts.form = "long"
		opts.etAlMin = 0
		opts.and = ""
	}

	var parts []string
	for _, variable := range strings.Fields(n.Attr("variable")) {
		persons := r.entry.Names(variable)
		if len(persons) == 0 {
			continue
		}
		text := r.formatNames(persons, opts)
		if label := n.Child("label"); label != nil && !r.sortMode {
			plural := len(persons) > 1
			if term := r.terms.Term(variable, label.Attr("form"), plural); term != "" {
				text += affix(label, term)
			}
		}
		parts = append(parts, text)
	}
	if len(parts) > 0 {
		return result{text: affix(n, joinNonEmpty(parts, n.Attr("delimiter"))), called: true, filled: true}
	}

	if sub := n.Child("substitute"); sub != nil {
		for i := range sub.Children {
			child := &sub.Children[i]
			var res result
			if child.Name == "names" && len(child.Children) == 0 {
				// A bare names element inherits the name options of its parent.
				inherited := *n
				inherited.Attrs = copyAttrs(n.Attrs)
				inherited.Attrs["variable"] = child.Attr("variable")
				inherited.Children = withoutSubstitute(n.Children)
				res = r.names(&inherited)
			} else {
				res = r.node(child)
			}
			if res.text != "" {
				return result{text: affix(n, res.text), called: true, filled: true}
			}
		}
	}
	return result{called: true}
}

func (r *renderer) formatNames(persons []types.Person, opts nameOptions) string {
	n := len(persons)
	truncated := opts.etAlMin > 0 && opts.etAlUseFirst > 0 && n >= opts.etAlMin && opts.etAlUseFirst < n
	if truncated {
		persons = persons[:opts.etAlUseFirst]
	}

	names := make([]string, len(persons))
	for i, p := range persons {
		names[i] = formatName(p, i, opts)
	}
	if r.sortMode {
		return strings.Join(names, "; ")
	}

	if truncated {
		etAl := r.terms.Term("et-al", "", false)
		if etAl == "" {
			etAl = "et al."
		}
		sep := " "
		if len(names) > 1 {
			sep = opts.delimiter
		}
		return strings.Join(names, opts.delimiter) + sep + etAl
	}
	if len(names) == 1 || opts.and == "" {
		return strings.Join(names, opts.delimiter)
	}

	and := r.terms.Term("and", "", false)
	if opts.and == "symbol" {
		and = r.terms.Term("and", "symbol", false)
	}
	if and == "" {
		and = "and"
	}
	head := strings.Join(names[:len(names)-1], opts.delimiter)
	last := names[len(names)-1]
	if precedesLast(opts.delimiterPrecedesLast, len(names), opts.nameAsSortOrder != "") {
		return head + opts.delimiter + and + " " + last
	}
	return head + " " + and + " " + last
}

func precedesLast(rule string, count int, inverted bool) bool {
	switch rule {
	case "always":
		return true
	case "never":
		return false
	case "after-inverted-name":
		return inverted
	}
	return count >= 3
}

func formatName(p types.Person, index int, opts nameOptions) string {
	if p.Literal != "" {
		return p.Literal
	}
	if opts.form == "short" || p.Given == "" {
		return p.Family
	}
	given := p.Given
	if opts.initialize {
		given = initials(given, opts.initializeWith)
	}
	inverted := opts.nameAsSortOrder == "all" || (opts.nameAsSortOrder == "first" && index == 0)
	if inverted {
		return p.Family + opts.sortSeparator + given
	}
	return given + " " + p.Family
}

// initials abbreviates given names: "John Ronald" with ". " becomes
// "J. R.", and "Jean-Paul" becomes "J.-P.".
func initials(given, with string) string {
	mark := strings.TrimSpace(with)
	sep := ""
	if strings.HasSuffix(with, " ") {
		sep = " "
	}
	var words []string
	for _, word := range strings.Fields(given) {
		var parts []string
		for _, part := range strings.Split(word, "-") {
			c, _ := utf8.DecodeRuneInString(part)
			if c == utf8.RuneError {
				continue
			}
			parts = append(parts, string(c)+mark)
		}
		if len(parts) > 0 {
			words = append(words, strings.Join(parts, "-"))
		}
	}
	return strings.Join(words, sep)
}

func withoutSubstitute(children []csl.Node) []csl.Node {
	out := make([]csl.Node, 0, len(children))
	for _, c := range children {
		if c.Name != "substitute" {
			out = append(out, c)
		}
	}
	return out
}

func copyAttrs(attrs map[string]string) map[string]string {
	out := make(map[string]string, len(attrs)+1)
	for k, v := range attrs {
		out[k] = v
	}
	return out
}

func atoi(s string) int {
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0
		}
		n = n*10 + int(c-'0')
	}
	return n
}
