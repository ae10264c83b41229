// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/bibkeys/internal/library"
)

var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "Inspect and convert merged bibliography files",
	Long: `Library merges bibliography files the same way resolve does and lets
you list the resulting keys or export the merged library as YAML or BibTeX.
Use --where to keep only entries matching an expression, for example
--where 'year >= 2015 && type == "article-journal"'.`,
}

// --- keys subcommand ---

var libraryKeysCmd = &cobra.Command{
	Use:   "keys [files...]",
	Short: "List the keys of the merged library in merge order",
	RunE:  runLibraryKeys,
}

func runLibraryKeys(cmd *cobra.Command, args []string) error {
	lib, err := loadLibrary(cmd, args)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, key := range lib.Keys() {
		fmt.Fprintln(out, key)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%d entries\n", lib.Len())
	return nil
}

// --- export subcommand ---

var libraryExportCmd = &cobra.Command{
	Use:   "export [files...]",
	Short: "Export the merged library as YAML or BibTeX",
	Long: `Export writes the merged library to stdout or to --output. The YAML
form can be fed back to resolve as a structured source.`,
	RunE: runLibraryExport,
}

func runLibraryExport(cmd *cobra.Command, args []string) error {
	lib, err := loadLibrary(cmd, args)
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("to")
	output, _ := cmd.Flags().GetString("output")

	var w io.Writer = cmd.OutOrStdout()
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("creating %s: %w", output, err)
		}
		defer f.Close()
		w = f
	}

	switch format {
	case "yaml", "":
		err = library.WriteYAML(w, lib)
	case "bibtex", "bib":
		err = library.WriteBibTeX(w, lib)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or bibtex", format)
	}
	if err != nil {
		return err
	}
	if output != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d entries to %s\n", lib.Len(), output)
	}
	return nil
}

func init() {
	for _, c := range []*cobra.Command{libraryKeysCmd, libraryExportCmd} {
		sourceFlags(c)
		c.Flags().String("where", "", "expression selecting entries (key, type, title, year, authors, fields)")
	}

	libraryExportCmd.Flags().String("to", "yaml", "export format: yaml or bibtex")
	libraryExportCmd.Flags().StringP("output", "o", "", "write to a file instead of stdout")

	libraryCmd.AddCommand(libraryKeysCmd)
	libraryCmd.AddCommand(libraryExportCmd)

	rootCmd.AddCommand(libraryCmd)
}
