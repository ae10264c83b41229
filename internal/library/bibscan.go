// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package library

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var errUnterminated = errors.New("unterminated block")

// bibField is one name = value pair with concatenations and macros
// already expanded.
type bibField struct {
	name  string
	value string
}

// bibScanner reads BibTeX text the way BibTeX does: only @type{...} blocks
// count, text between them is ignored, and whole-line % comments are
// skipped both between blocks and between fields.
type bibScanner struct {
	src    string
	pos    int
	macros map[string]string
}

// normalizeBibTeX rewrites text into a plain sequence of entries. @comment
// and @preamble blocks are dropped, @string macros and # concatenations are
// expanded, and every field value is emitted braced. It returns the
// rewritten text and the number of entries it holds.
func normalizeBibTeX(text string) (string, int, error) {
	s := &bibScanner{src: text, macros: make(map[string]string)}
	var out strings.Builder
	entries := 0
	lineStart := true

	for !s.eof() {
		c := s.next()
		switch {
		case c == '\n':
			lineStart = true
			continue
		case c == ' ' || c == '\t' || c == '\r':
			continue
		case c == '%' && lineStart:
			s.skipLine()
			lineStart = true
			continue
		}
		lineStart = false
		if c != '@' {
			continue
		}

		kind := strings.ToLower(s.word())
		s.skipSpace()
		if kind == "" || s.eof() || (s.peek() != '{' && s.peek() != '(') {
			continue
		}
		closer := byte('}')
		if s.next() == '(' {
			closer = ')'
		}

		switch kind {
		case "comment", "preamble":
			if err := s.skipBlock(closer); err != nil {
				return "", 0, fmt.Errorf("@%s: %w", kind, err)
			}
		case "string":
			fields, err := s.fields(closer)
			if err != nil {
				return "", 0, fmt.Errorf("@string: %w", err)
			}
			for _, f := range fields {
				s.macros[strings.ToLower(f.name)] = f.value
			}
		default:
			key := s.key(closer)
			if key == "" {
				return "", 0, fmt.Errorf("@%s entry without a key", kind)
			}
			fields, err := s.fields(closer)
			if err != nil {
				return "", 0, fmt.Errorf("@%s{%s}: %w", kind, key, err)
			}
			writeNormalized(&out, kind, key, fields)
			entries++
		}
	}
	return out.String(), entries, nil
}

func writeNormalized(out *strings.Builder, kind, key string, fields []bibField) {
	fmt.Fprintf(out, "@%s{%s,\n", kind, key)
	for _, f := range fields {
		fmt.Fprintf(out, "  %s = {%s},\n", f.name, f.value)
	}
	out.WriteString("}\n\n")
}

func (s *bibScanner) eof() bool  { return s.pos >= len(s.src) }
func (s *bibScanner) peek() byte { return s.src[s.pos] }

func (s *bibScanner) next() byte {
	c := s.src[s.pos]
	s.pos++
	return c
}

func (s *bibScanner) skipLine() {
	if i := strings.IndexByte(s.src[s.pos:], '\n'); i >= 0 {
		s.pos += i + 1
		return
	}
	s.pos = len(s.src)
}

func (s *bibScanner) skipSpace() {
	for !s.eof() && isSpace(s.peek()) {
		s.pos++
	}
}

// skipFill skips whitespace and % comment lines inside a block.
func (s *bibScanner) skipFill() {
	for {
		s.skipSpace()
		if s.eof() || s.peek() != '%' {
			return
		}
		s.skipLine()
	}
}

// word reads a bare identifier: a field name, macro name or number.
func (s *bibScanner) word() string {
	start := s.pos
	for !s.eof() && !isSpace(s.peek()) && !strings.ContainsRune(`{}(),=#"%@`, rune(s.peek())) {
		s.pos++
	}
	return s.src[start:s.pos]
}

// key reads the citation key up to the first comma and consumes it.
func (s *bibScanner) key(closer byte) string {
	s.skipSpace()
	start := s.pos
	for !s.eof() && s.peek() != ',' && s.peek() != closer && s.peek() != '\n' {
		s.pos++
	}
	key := strings.TrimSpace(s.src[start:s.pos])
	if !s.eof() && s.peek() == ',' {
		s.pos++
	}
	return key
}

// fields reads name = value pairs up to and including closer.
func (s *bibScanner) fields(closer byte) ([]bibField, error) {
	var fields []bibField
	for {
		s.skipFill()
		if s.eof() {
			return nil, errUnterminated
		}
		switch c := s.peek(); {
		case c == closer:
			s.pos++
			return fields, nil
		case c == ',':
			s.pos++
			continue
		}

		name := s.word()
		if name == "" {
			return nil, fmt.Errorf("unexpected %q", s.peek())
		}
		s.skipFill()
		if s.eof() || s.peek() != '=' {
			return nil, fmt.Errorf("field %s: missing '='", name)
		}
		s.pos++
		value, err := s.value()
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}
		fields = append(fields, bibField{name: strings.ToLower(name), value: value})
	}
}

// value reads one or more #-joined parts and returns their concatenation.
func (s *bibScanner) value() (string, error) {
	var b strings.Builder
	for {
		s.skipFill()
		if s.eof() {
			return "", errUnterminated
		}
		switch c := s.peek(); c {
		case '{':
			s.pos++
			part, err := s.braced()
			if err != nil {
				return "", err
			}
			b.WriteString(part)
		case '"':
			s.pos++
			part, err := s.quoted()
			if err != nil {
				return "", err
			}
			b.WriteString(part)
		default:
			w := s.word()
			if w == "" {
				return "", fmt.Errorf("unexpected %q", c)
			}
			if _, err := strconv.Atoi(w); err == nil {
				b.WriteString(w)
				break
			}
			v, ok := s.macro(w)
			if !ok {
				return "", fmt.Errorf("undefined string macro %q", w)
			}
			b.WriteString(v)
		}

		s.skipFill()
		if s.eof() || s.peek() != '#' {
			return b.String(), nil
		}
		s.pos++
	}
}

// macro resolves an @string name, falling back to the predefined
// three-letter month abbreviations.
func (s *bibScanner) macro(name string) (string, bool) {
	name = strings.ToLower(name)
	if v, ok := s.macros[name]; ok {
		return v, true
	}
	if n, ok := monthNames[name]; ok && len(name) == 3 {
		return time.Month(n).String(), true
	}
	return "", false
}

// braced returns the text up to the brace matching one already consumed.
// Inner braces are kept.
func (s *bibScanner) braced() (string, error) {
	start := s.pos
	depth := 1
	for !s.eof() {
		switch s.next() {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s.src[start : s.pos-1], nil
			}
		}
	}
	return "", errUnterminated
}

// quoted returns the text up to the closing quote. Quotes inside braces do
// not terminate the value.
func (s *bibScanner) quoted() (string, error) {
	start := s.pos
	depth := 0
	for !s.eof() {
		switch s.next() {
		case '{':
			depth++
		case '}':
			depth--
		case '"':
			if depth == 0 {
				return s.src[start : s.pos-1], nil
			}
		}
	}
	return "", errUnterminated
}

// skipBlock consumes a balanced block whose opener was already read.
func (s *bibScanner) skipBlock(closer byte) error {
	depth := 1
	for !s.eof() {
		c := s.next()
		switch {
		case c == '{' || (closer == ')' && c == '('):
			depth++
		case c == closer:
			depth--
			if depth == 0 {
				return nil
			}
		case c == '}' && closer != '}':
			depth--
		}
	}
	return errUnterminated
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
