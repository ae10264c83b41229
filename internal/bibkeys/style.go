// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bibkeys

import (
	"github.com/pdiddy/bibkeys/internal/csl"
	"github.com/pdiddy/bibkeys/pkg/types"
)

// Style resolution messages.
const (
	msgMalformedStyle = "malformed style definition"
	msgStyleNotFound  = "style not found"
	msgDependentStyle = "dependent style not supported"
)

// ResolveStyle produces an independent style from inline CSL text or an
// archive name. Dependent styles are rejected in both cases and never
// resolved through their parent.
func ResolveStyle(content string, format types.StyleFormat) (*csl.Style, error) {
	switch format {
	case types.StyleInline:
		s, err := csl.Parse(content)
		if err != nil {
			return nil, styleError(msgMalformedStyle, "", err)
		}
		if s.IsDependent() {
			return nil, styleError(msgDependentStyle, styleLabel(s), csl.ErrDependentStyle)
		}
		return s, nil

	case types.StyleArchive:
		archived, ok := csl.ByName(content)
		if !ok {
			return nil, styleError(msgStyleNotFound, content, csl.ErrStyleNotFound)
		}
		s, err := archived.Get()
		if err != nil {
			return nil, styleError(msgMalformedStyle, archived.Name, err)
		}
		if s.IsDependent() {
			return nil, styleError(msgDependentStyle, archived.Name, csl.ErrDependentStyle)
		}
		return s, nil
	}
	return nil, decodingError("unknown style format", string(format), nil)
}

func styleLabel(s *csl.Style) string {
	if name := s.Name(); name != "" {
		return name
	}
	return "inline style"
}
