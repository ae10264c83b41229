// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/bibkeys/internal/bibkeys"
	"github.com/pdiddy/bibkeys/internal/catalog"
	"github.com/pdiddy/bibkeys/internal/library"
	"github.com/pdiddy/bibkeys/pkg/types"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [files...]",
	Short: "Print the ordered bibliography keys for a document",
	Long: `Resolve merges the bibliography files, resolves the style, and prints
the keys of the final bibliography in order, separated by spaces.

Without --full the bibliography holds exactly the --cited keys. With --full
and a style that sorts its bibliography, every entry of the merged library
is listed in the style's order; with a style that does not sort, the cited
order is kept. A cited key missing from the library is an error.

--style names a bundled style (see "bibkeys styles") or, with
--style-format csl, a CSL file. Defaults come from bibkeys.yaml (resolve.*)
or BIBKEYS_RESOLVE_* environment variables.`,
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().String("style", "apa", "archive style name, or CSL file path with --style-format csl")
	resolveCmd.Flags().String("style-format", string(types.StyleArchive), "style format: text (archive name) or csl (style file)")
	resolveCmd.Flags().String("locale", "en-US", "locale passed to the citation engine")
	resolveCmd.Flags().Bool("full", false, "include every library entry when the style sorts its bibliography")
	resolveCmd.Flags().String("catalog", "", "SQLite catalog merged ahead of the files")
	resolveCmd.Flags().StringSlice("cited", nil, "cited keys in document order (comma-separated)")
	resolveCmd.Flags().Bool("lines", false, "print one key per line")
	resolveCmd.Flags().BoolP("verbose", "v", false, "log a status line for the resolution to stderr")
	sourceFlags(resolveCmd)

	for key, flag := range map[string]string{
		"resolve.style":        "style",
		"resolve.style_format": "style-format",
		"resolve.locale":       "locale",
		"resolve.full":         "full",
		"resolve.catalog":      "catalog",
	} {
		_ = viper.BindPFlag(key, resolveCmd.Flags().Lookup(flag))
	}

	rootCmd.AddCommand(resolveCmd)
}

// resolveConfig merges flags, environment, and config file values.
func resolveConfig() (types.ResolveConfig, error) {
	cfg := types.ResolveConfig{
		Style:       viper.GetString("resolve.style"),
		StyleFormat: types.StyleFormat(viper.GetString("resolve.style_format")),
		Locale:      viper.GetString("resolve.locale"),
		Full:        viper.GetBool("resolve.full"),
		Catalog:     viper.GetString("resolve.catalog"),
	}
	if _, ok := types.ParseStyleFormat(string(cfg.StyleFormat)); !ok {
		return cfg, fmt.Errorf("unsupported style format %q: use text or csl", cfg.StyleFormat)
	}
	return cfg, nil
}

func runResolve(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig()
	if err != nil {
		return err
	}

	hints, _ := cmd.Flags().GetStringSlice("formats")
	sources, err := readSources(args, hints, cmd.InOrStdin())
	if err != nil {
		return err
	}

	if cfg.Catalog != "" {
		store, err := catalog.Open(cfg.Catalog)
		if err != nil {
			return err
		}
		defer store.Close()
		src, err := store.Source(context.Background())
		if err != nil {
			return err
		}
		sources = append([]library.Source{src}, sources...)
	}

	style := cfg.Style
	if cfg.StyleFormat == types.StyleInline {
		data, err := os.ReadFile(style)
		if err != nil {
			return fmt.Errorf("reading style file: %w", err)
		}
		style = string(data)
	}

	cited, _ := cmd.Flags().GetStringSlice("cited")
	req := bibkeys.Request{
		Sources:     sources,
		Style:       style,
		StyleFormat: cfg.StyleFormat,
		Locale:      cfg.Locale,
		Full:        cfg.Full,
		Cited:       trimKeys(cited),
	}

	var opts []bibkeys.Option
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		opts = append(opts, bibkeys.WithLogger(bibkeys.NewWriterLogger(cmd.ErrOrStderr())))
	}

	keys, err := bibkeys.Resolve(req, opts...)
	if err != nil {
		return err
	}

	sep := " "
	if lines, _ := cmd.Flags().GetBool("lines"); lines {
		sep = "\n"
	}
	fmt.Fprintln(cmd.OutOrStdout(), strings.Join(keys, sep))
	return nil
}

func trimKeys(keys []string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}
