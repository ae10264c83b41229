// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bibkeys

import (
	"fmt"
	"io"
	"time"
)

// ResolveEvent describes one resolution call for logging.
type ResolveEvent struct {
	// ID is a random identifier for correlating log lines of one call.
	ID       string
	Sources  int
	Entries  int
	Style    string
	Mode     Mode
	Keys     int
	Duration time.Duration
	Err      error
}

// Logger records resolution events.
type Logger interface {
	LogResolve(ResolveEvent)
}

// LoggerFunc adapts a function to Logger.
type LoggerFunc func(ResolveEvent)

// LogResolve implements Logger.
func (f LoggerFunc) LogResolve(event ResolveEvent) {
	if f != nil {
		f(event)
	}
}

type noopLogger struct{}

func (noopLogger) LogResolve(ResolveEvent) {}

// NewWriterLogger returns a Logger that prints one status line per call.
func NewWriterLogger(w io.Writer) Logger {
	return LoggerFunc(func(e ResolveEvent) {
		if e.Err != nil {
			fmt.Fprintf(w, "resolve %s: failed after %s: %v\n", e.ID, e.Duration.Round(time.Microsecond), e.Err)
			return
		}
		fmt.Fprintf(w, "resolve %s: %d sources, %d entries, style %s, mode %s, %d keys (%s)\n",
			e.ID, e.Sources, e.Entries, e.Style, e.Mode, e.Keys, e.Duration.Round(time.Microsecond))
	})
}
