// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// SourceFormat is the declared format of one raw bibliography source.
type SourceFormat string

const (
	// FormatAuto defers to detection: structured first, then BibTeX.
	FormatAuto SourceFormat = ""
	// FormatBibTeX selects the BibTeX/BibLaTeX parser.
	FormatBibTeX SourceFormat = "bibtex"
	// FormatStructured selects the YAML bibliography parser.
	FormatStructured SourceFormat = "structured"
)

// ParseSourceFormat maps a format hint to a SourceFormat. The permissive
// hints "bytes" and "unknown" (and the empty string) select detection.
func ParseSourceFormat(hint string) (SourceFormat, bool) {
	switch hint {
	case "", "bytes", "unknown", "auto":
		return FormatAuto, true
	case "bib", "bibtex", "biblatex":
		return FormatBibTeX, true
	case "yml", "yaml", "structured", "hayagriva":
		return FormatStructured, true
	}
	return FormatAuto, false
}

// StyleFormat tells the style resolver how to interpret style content.
type StyleFormat string

const (
	// StyleInline means the content is a complete CSL style document.
	StyleInline StyleFormat = "csl"
	// StyleArchive means the content names a style in the bundled archive.
	StyleArchive StyleFormat = "text"
)

// ParseStyleFormat validates a style format discriminator.
func ParseStyleFormat(s string) (StyleFormat, bool) {
	switch StyleFormat(s) {
	case StyleInline, StyleArchive:
		return StyleFormat(s), true
	}
	return "", false
}

// ResolveConfig holds defaults for the resolve command. Values come from
// bibkeys.yaml or BIBKEYS_* environment variables; flags override them.
type ResolveConfig struct {
	// Style is the archive style name or path to a CSL file (default "apa").
	Style string `json:"style" yaml:"style" mapstructure:"style"`

	// StyleFormat is "text" for archive names or "csl" for style files.
	StyleFormat StyleFormat `json:"style_format" yaml:"style_format" mapstructure:"style_format"`

	// Locale is the language tag handed to the citation engine (default "en-US").
	Locale string `json:"locale" yaml:"locale" mapstructure:"locale"`

	// Full includes every library entry instead of only the cited ones.
	Full bool `json:"full" yaml:"full" mapstructure:"full"`

	// Catalog is an optional SQLite catalog merged ahead of file sources.
	Catalog string `json:"catalog,omitempty" yaml:"catalog,omitempty" mapstructure:"catalog"`
}

// CatalogConfig holds settings for the catalog commands.
type CatalogConfig struct {
	// Path is the SQLite database file (default "bibkeys.db").
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}
