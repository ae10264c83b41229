// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package library

import (
	"errors"
	"fmt"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"

	"github.com/pdiddy/bibkeys/pkg/types"
)

// Filter is a compiled boolean expression over entry attributes. The
// expression sees key, type, title, year, authors (family names) and
// fields (every other variable), e.g. `type == "book" && year >= 2000`.
type Filter struct {
	source  string
	program *exprvm.Program
}

// CompileFilter compiles expression into a Filter.
func CompileFilter(expression string) (*Filter, error) {
	if expression == "" {
		return nil, errors.New("filter expression must not be empty")
	}
	program, err := exprlang.Compile(expression,
		exprlang.Env(filterEnv(&types.Entry{})),
		exprlang.AsBool(),
	)
	if err != nil {
		return nil, fmt.Errorf("compiling filter %q: %w", expression, err)
	}
	return &Filter{source: expression, program: program}, nil
}

// Match reports whether e satisfies the filter.
func (f *Filter) Match(e *types.Entry) (bool, error) {
	out, err := exprlang.Run(f.program, filterEnv(e))
	if err != nil {
		return false, fmt.Errorf("evaluating filter %q on %s: %w", f.source, e.Key, err)
	}
	ok, _ := out.(bool)
	return ok, nil
}

// Select returns a new Library holding the entries of lib that match f, in
// library order.
func (f *Filter) Select(lib *Library) (*Library, error) {
	out := New()
	for _, e := range lib.Entries() {
		ok, err := f.Match(e)
		if err != nil {
			return nil, err
		}
		if ok {
			out.Push(*e)
		}
	}
	return out, nil
}

func filterEnv(e *types.Entry) map[string]any {
	authors := make([]string, 0, len(e.Authors))
	for _, p := range e.Authors {
		if p.Literal != "" {
			authors = append(authors, p.Literal)
			continue
		}
		authors = append(authors, p.Family)
	}
	fields := e.Fields
	if fields == nil {
		fields = map[string]string{}
	}
	return map[string]any{
		"key":     e.Key,
		"type":    e.Type,
		"title":   e.Title,
		"year":    e.Year(),
		"authors": authors,
		"fields":  fields,
	}
}
