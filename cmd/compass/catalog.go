package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"compass-backend/internal/compass"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Validate and print the catalog",
	Long:  "Loads the catalog (bundled or --catalog), validates it and prints either the dimensions or the module summaries.",
	RunE:  runCatalog,
}

var (
	catalogModules  bool
	catalogCategory string
	catalogJSON     bool
)

func init() {
	catalogCmd.Flags().BoolVar(&catalogModules, "modules", false, "Print module summaries instead of dimensions")
	catalogCmd.Flags().StringVar(&catalogCategory, "category", compass.CategoryAll, "Module category filter")
	catalogCmd.Flags().BoolVar(&catalogJSON, "json", false, "Print the full catalog as JSON")
	rootCmd.AddCommand(catalogCmd)
}

func runCatalog(cmd *cobra.Command, _ []string) error {
	catalog, err := loadCatalog()
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()

	if catalogJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(catalog)
	}
	if catalogModules {
		for _, m := range catalog.ModuleSummaries(catalogCategory) {
			fmt.Fprintf(w, "[%s] %s: %s\n", m.Category, m.Title, m.Desc)
		}
		return nil
	}
	for _, d := range catalog.Compass.Dimensions {
		fmt.Fprintf(w, "%s (%s)\n", d.Title, d.Canonical())
		for _, opt := range d.Options {
			fmt.Fprintf(w, "  - %s\n", opt.DisplayLabel())
		}
	}
	return nil
}
