// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/bibkeys/internal/library"
	"github.com/pdiddy/bibkeys/pkg/types"
)

// readSources loads bibliography files. hints align with paths; a missing
// hint falls back to the file extension, and unknown extensions are
// detected from content. With no paths the source is read from stdin.
func readSources(paths, hints []string, stdin io.Reader) ([]library.Source, error) {
	if len(hints) > 0 && len(hints) != len(paths) {
		return nil, fmt.Errorf("got %d format hints for %d files", len(hints), len(paths))
	}

	if len(paths) == 0 {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		format := types.FormatAuto
		if len(hints) == 1 {
			format, _ = types.ParseSourceFormat(hints[0])
		}
		return []library.Source{{Name: "stdin", Text: string(data), Format: format}}, nil
	}

	sources := make([]library.Source, 0, len(paths))
	for i, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}

		hint := strings.TrimPrefix(filepath.Ext(path), ".")
		if len(hints) > 0 && strings.TrimSpace(hints[i]) != "" {
			hint = strings.TrimSpace(hints[i])
			if _, ok := types.ParseSourceFormat(hint); !ok {
				return nil, fmt.Errorf("unknown format hint %q for %s", hint, path)
			}
		}
		format, _ := types.ParseSourceFormat(strings.ToLower(hint))

		sources = append(sources, library.Source{Name: path, Text: string(data), Format: format})
	}
	return sources, nil
}

// sourceFlags registers the shared --formats flag.
func sourceFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("formats", nil, "per-file format hints aligned with the file arguments: bib, yml, or bytes")
}

// loadLibrary reads and merges the files named by args, then applies the
// --where filter when the command defines one.
func loadLibrary(cmd *cobra.Command, args []string) (*library.Library, error) {
	hints, _ := cmd.Flags().GetStringSlice("formats")
	sources, err := readSources(args, hints, cmd.InOrStdin())
	if err != nil {
		return nil, err
	}
	lib, err := library.Merge(sources)
	if err != nil {
		return nil, err
	}

	where, _ := cmd.Flags().GetString("where")
	if where == "" {
		return lib, nil
	}
	filter, err := library.CompileFilter(where)
	if err != nil {
		return nil, err
	}
	return filter.Select(lib)
}
