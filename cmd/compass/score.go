package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"compass-backend/internal/recommend"
	"compass-backend/internal/scoring"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a complete selection offline",
	Long:  "Computes the strategy, efficiency and innovation scores for all five dimensions and prints them with the static recommendation.",
	RunE:  runScore,
}

var (
	scoreFlags *selectionFlags
	scoreJSON  bool
)

func init() {
	scoreFlags = addSelectionFlags(scoreCmd)
	scoreCmd.Flags().BoolVar(&scoreJSON, "json", false, "Print JSON instead of a table")
	rootCmd.AddCommand(scoreCmd)
}

type scoreOutput struct {
	Scores         scoring.ScoreVector `json:"scores"`
	Chart          recommend.ChartData `json:"chart"`
	Recommendation recommend.Result    `json:"recommendation"`
}

func runScore(cmd *cobra.Command, _ []string) error {
	catalog, err := loadCatalog()
	if err != nil {
		return err
	}
	engine, err := scoreFlags.engine()
	if err != nil {
		return err
	}
	sel, err := scoreFlags.selections(catalog)
	if err != nil {
		return err
	}
	if missing := sel.Missing(); len(missing) > 0 {
		return fmt.Errorf("missing selections: %s", joinDimensions(missing))
	}

	scores := engine.Score(sel)
	out := scoreOutput{
		Scores:         scores,
		Chart:          recommend.NewChartData(scores),
		Recommendation: recommend.StaticRecommendation(sel),
	}

	w := cmd.OutOrStdout()
	if scoreJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(out)
	}
	writeChart(w, out.Chart)
	writeResult(w, out.Recommendation)
	return nil
}

func joinDimensions(dims []scoring.Dimension) string {
	parts := make([]string, len(dims))
	for i, d := range dims {
		parts[i] = string(d)
	}
	return strings.Join(parts, ", ")
}
