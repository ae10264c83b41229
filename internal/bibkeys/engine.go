// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bibkeys

import (
	"github.com/pdiddy/bibkeys/internal/citeproc"
	"github.com/pdiddy/bibkeys/internal/csl"
)

// submit registers one citation request per selection, in plan order.
func submit(driver *citeproc.Driver, plan Plan, style *csl.Style, locale string, locales []csl.Locale) {
	for _, sel := range plan.Selections {
		driver.Citation(citeproc.CitationRequest{
			Items: []citeproc.CitationItem{{
				Entry:  sel.Entry,
				Hidden: sel.Hidden,
			}},
			Style:   style,
			Locale:  locale,
			Locales: locales,
		})
	}
}

// extractKeys finishes the driver and returns the bibliography keys in the
// engine's final order.
func extractKeys(driver *citeproc.Driver, style *csl.Style, locale string, locales []csl.Locale) ([]string, error) {
	rendered := driver.Finish(citeproc.BibliographyRequest{
		Style:   style,
		Locale:  locale,
		Locales: locales,
	})
	if rendered.Bibliography == nil {
		return nil, &Error{
			Kind:    KindEngineOutput,
			Msg:     "invalid bibliography: style produces no bibliography output",
			Subject: style.Name(),
		}
	}
	return rendered.Bibliography.Keys(), nil
}
