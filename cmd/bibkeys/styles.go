// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/bibkeys/internal/csl"
)

var stylesCmd = &cobra.Command{
	Use:   "styles",
	Short: "List the bundled citation styles",
	Long: `Styles lists the CSL styles bundled with bibkeys: archive name, aliases,
whether the bibliography is sorted by the style, and the parent of
dependent styles. Dependent styles cannot be used with resolve.`,
	RunE: runStyles,
}

func init() {
	stylesCmd.Flags().Bool("json", false, "output styles as JSON")

	rootCmd.AddCommand(stylesCmd)
}

// styleInfo summarizes one archived style.
type styleInfo struct {
	Name      string   `json:"name"`
	Aliases   []string `json:"aliases,omitempty"`
	Title     string   `json:"title"`
	Sorted    bool     `json:"sorted"`
	Dependent bool     `json:"dependent"`
	Parent    string   `json:"parent,omitempty"`
}

func archiveInfo() ([]styleInfo, error) {
	var infos []styleInfo
	for _, name := range csl.Names() {
		archived, ok := csl.ByName(name)
		if !ok {
			continue
		}
		s, err := archived.Get()
		if err != nil {
			return nil, err
		}
		infos = append(infos, styleInfo{
			Name:      name,
			Aliases:   csl.Aliases(name),
			Title:     s.Info.Title,
			Sorted:    s.HasBibliographySort(),
			Dependent: s.IsDependent(),
			Parent:    s.Parent(),
		})
	}
	return infos, nil
}

func runStyles(cmd *cobra.Command, args []string) error {
	infos, err := archiveInfo()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(infos)
	}

	fmt.Fprintf(out, "%-36s  %-10s  %-6s  %s\n", "Name", "Aliases", "Sorted", "Title")
	fmt.Fprintln(out, strings.Repeat("-", 90))
	for _, info := range infos {
		sorted := "no"
		if info.Sorted {
			sorted = "yes"
		}
		title := info.Title
		if info.Dependent {
			title += " (dependent on " + info.Parent + ")"
		}
		fmt.Fprintf(out, "%-36s  %-10s  %-6s  %s\n",
			info.Name, strings.Join(info.Aliases, ","), sorted, title)
	}
	fmt.Fprintf(out, "\n%d styles\n", len(infos))
	return nil
}
