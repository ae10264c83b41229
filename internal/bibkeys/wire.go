// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bibkeys

import (
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/bibkeys/internal/library"
	"github.com/pdiddy/bibkeys/pkg/types"
)

// SortedKeys is the byte-string boundary over Resolve. bib holds sources
// separated by "%%%"; formats is an optional comma-separated list of
// per-source hints; full is "true" or "false"; styleFormat is "csl" or
// "text"; cited is a comma-separated key list. The result is the
// space-joined key list.
func SortedKeys(bib, formats, full, style, styleFormat, lang, cited []byte, opts ...Option) ([]byte, error) {
	req, err := DecodeRequest(bib, formats, full, style, styleFormat, lang, cited)
	if err != nil {
		return nil, err
	}
	keys, err := Resolve(req, opts...)
	if err != nil {
		return nil, err
	}
	return []byte(strings.Join(keys, " ")), nil
}

// DecodeRequest validates and decodes the byte-string inputs of
// SortedKeys.
func DecodeRequest(bib, formats, full, style, styleFormat, lang, cited []byte) (Request, error) {
	fields := []struct {
		name  string
		value []byte
	}{
		{"bib", bib},
		{"formats", formats},
		{"full", full},
		{"style", style},
		{"style_format", styleFormat},
		{"lang", lang},
		{"cited", cited},
	}
	for _, f := range fields {
		if !utf8.Valid(f.value) {
			return Request{}, decodingError("invalid UTF-8 in field", f.name, nil)
		}
	}

	fullFlag, err := parseFull(string(full))
	if err != nil {
		return Request{}, err
	}

	sf, ok := types.ParseStyleFormat(strings.TrimSpace(string(styleFormat)))
	if !ok {
		return Request{}, decodingError("unknown style format", string(styleFormat), nil)
	}

	sources, err := library.SplitSources(string(bib), splitHints(string(formats)))
	if err != nil {
		return Request{}, decodingError("invalid format hints", "", err)
	}

	return Request{
		Sources:     sources,
		Style:       string(style),
		StyleFormat: sf,
		Locale:      strings.TrimSpace(string(lang)),
		Full:        fullFlag,
		Cited:       splitList(string(cited)),
	}, nil
}

func parseFull(s string) (bool, error) {
	switch strings.TrimSpace(s) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, decodingError("invalid boolean for full", s, nil)
}

// splitList splits a comma-separated list, trimming items and dropping
// empty ones.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// splitHints splits the format hint list positionally. Empty items stay in
// place and select detection for their source.
func splitHints(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(s, ",")
}
