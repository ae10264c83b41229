// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the bibkeys CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the bibkeys CLI.
var rootCmd = &cobra.Command{
	Use:   "bibkeys",
	Short: "Resolve the ordered bibliography keys of a document",
	Long: `bibkeys decides which bibliography entries a document lists and in what
order. It merges BibTeX and YAML bibliography files, resolves a CSL style
(from the bundled archive or a style file), and applies the style's sort or
the document's citation order.

Use resolve for the key list, styles to browse the archive, library to
inspect or convert merged sources, and catalog to keep a SQLite copy of a
library for later runs.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./bibkeys.yaml or ~/.config/bibkeys/bibkeys.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("bibkeys")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "bibkeys"))
		}
	}

	viper.SetEnvPrefix("BIBKEYS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
