// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bibkeys

import (
	"fmt"
	"strings"
)

// Kind classifies resolution failures.
type Kind string

const (
	// KindDecoding covers invalid UTF-8 and malformed boolean or list
	// fields at the byte boundary.
	KindDecoding Kind = "decoding"

	// KindSchema covers bibliography sources that parse as neither
	// structured YAML nor BibTeX, or fail their explicit format.
	KindSchema Kind = "schema"

	// KindStyleResolution covers malformed inline styles, unknown archive
	// names, and dependent styles.
	KindStyleResolution Kind = "style-resolution"

	// KindMissingEntry covers cited keys absent from the merged library.
	KindMissingEntry Kind = "missing-entry"

	// KindEngineOutput covers styles whose output has no bibliography.
	KindEngineOutput Kind = "engine-output"
)

// Sentinels for errors.Is. Any *Error matches the sentinel of its Kind.
var (
	ErrDecoding        = &Error{Kind: KindDecoding}
	ErrSchema          = &Error{Kind: KindSchema}
	ErrStyleResolution = &Error{Kind: KindStyleResolution}
	ErrMissingEntry    = &Error{Kind: KindMissingEntry}
	ErrEngineOutput    = &Error{Kind: KindEngineOutput}
)

// Error is a resolution failure. Subject names the offending input: a
// field, a source, a style name, or a cited key.
type Error struct {
	Kind    Kind
	Msg     string
	Subject string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.Msg
	if msg == "" {
		msg = string(e.Kind) + " error"
	}
	if e.Subject != "" {
		msg = fmt.Sprintf("%s: %q", msg, e.Subject)
	}
	if e.Err == nil {
		return msg
	}
	// Lower layers often prefix their errors with the same message.
	cause := strings.TrimPrefix(e.Err.Error(), e.Msg)
	cause = strings.TrimPrefix(cause, ": ")
	if cause == "" {
		return msg
	}
	return msg + ": " + cause
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches any *Error of the same Kind, so errors.Is(err, ErrSchema)
// holds for every schema failure.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return t.Kind == e.Kind
}

func decodingError(msg, subject string, err error) *Error {
	return &Error{Kind: KindDecoding, Msg: msg, Subject: subject, Err: err}
}

func styleError(msg, subject string, err error) *Error {
	return &Error{Kind: KindStyleResolution, Msg: msg, Subject: subject, Err: err}
}
