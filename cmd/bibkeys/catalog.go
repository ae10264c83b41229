// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/bibkeys/internal/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage a SQLite catalog of bibliography entries",
	Long: `Catalog keeps a merged library in a SQLite database. Import files into
it once, then pass --catalog to resolve to use it as a source.`,
}

// --- import subcommand ---

var catalogImportCmd = &cobra.Command{
	Use:   "import [files...]",
	Short: "Import bibliography files into the catalog",
	Long: `Import merges the files and writes every entry to the catalog. Entries
whose key is already present are updated in place.`,
	RunE: runCatalogImport,
}

func runCatalogImport(cmd *cobra.Command, args []string) error {
	lib, err := loadLibrary(cmd, args)
	if err != nil {
		return err
	}

	store, err := catalog.Open(catalogPath())
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.Import(context.Background(), lib, strings.Join(args, ","), cmd.OutOrStdout())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\nadded: %d, updated: %d\n", summary.Added, summary.Updated)
	return nil
}

// --- list subcommand ---

var catalogListCmd = &cobra.Command{
	Use:   "list [query]",
	Short: "List catalog entries",
	RunE:  runCatalogList,
}

func runCatalogList(cmd *cobra.Command, args []string) error {
	store, err := catalog.Open(catalogPath())
	if err != nil {
		return err
	}
	defer store.Close()

	entryType, _ := cmd.Flags().GetString("type")
	limit, _ := cmd.Flags().GetInt("limit")
	records, err := store.List(context.Background(), catalog.ListOptions{
		Query: strings.Join(args, " "),
		Type:  entryType,
		Limit: limit,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	if len(records) == 0 {
		fmt.Fprintln(out, "No entries found.")
		return nil
	}

	fmt.Fprintf(out, "%-24s  %-18s  %-4s  %s\n", "Key", "Type", "Year", "Title")
	fmt.Fprintln(out, strings.Repeat("-", 90))
	for _, r := range records {
		title := r.Title
		if len(title) > 40 {
			title = title[:37] + "..."
		}
		year := ""
		if y := r.Year(); y > 0 {
			year = fmt.Sprint(y)
		}
		fmt.Fprintf(out, "%-24s  %-18s  %-4s  %s\n", r.Key, r.Type, year, title)
	}
	fmt.Fprintf(out, "\n%d entries\n", len(records))
	return nil
}

// catalogPath returns the --db flag, the catalog.path config value, or the
// default file.
func catalogPath() string {
	if p := viper.GetString("catalog.path"); p != "" {
		return p
	}
	return catalog.DefaultPath
}

func init() {
	catalogCmd.PersistentFlags().String("db", catalog.DefaultPath, "catalog database file")
	_ = viper.BindPFlag("catalog.path", catalogCmd.PersistentFlags().Lookup("db"))

	sourceFlags(catalogImportCmd)
	catalogImportCmd.Flags().String("where", "", "expression selecting entries to import")

	catalogListCmd.Flags().String("type", "", "filter by CSL type")
	catalogListCmd.Flags().Int("limit", 0, "maximum entries (0 = all)")
	catalogListCmd.Flags().Bool("json", false, "output entries as JSON")

	catalogCmd.AddCommand(catalogImportCmd)
	catalogCmd.AddCommand(catalogListCmd)

	rootCmd.AddCommand(catalogCmd)
}
