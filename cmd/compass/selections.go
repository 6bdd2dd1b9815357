package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"compass-backend/internal/compass"
	"compass-backend/internal/scoring"
)

// selectionFlags are the per-dimension flags shared by score and recommend.
type selectionFlags struct {
	values map[scoring.Dimension]*string
	scheme string
}

func addSelectionFlags(cmd *cobra.Command) *selectionFlags {
	f := &selectionFlags{values: make(map[scoring.Dimension]*string, len(scoring.Dimensions))}
	for _, dim := range scoring.Dimensions {
		f.values[dim] = cmd.Flags().String(string(dim), "", fmt.Sprintf("Option chosen for the %s dimension", dim))
	}
	cmd.Flags().StringVar(&f.scheme, "scheme", envOr("SCORING_SCHEME", string(scoring.SchemeAdditive)), "Scoring scheme (additive or averaged)")
	return f
}

// selections returns the non-empty flag values, rejecting options the
// catalog does not offer.
func (f *selectionFlags) selections(catalog *compass.Catalog) (scoring.Selections, error) {
	out := scoring.Selections{}
	for _, dim := range scoring.Dimensions {
		v := strings.TrimSpace(*f.values[dim])
		if v == "" {
			continue
		}
		if catalog != nil && !catalog.HasOption(dim, v) {
			return nil, fmt.Errorf("%s: %q is not an option of %s", dim, v, catalog.DimensionTitle(dim))
		}
		out[dim] = v
	}
	return out, nil
}

func (f *selectionFlags) engine() (*scoring.Engine, error) {
	name, err := scoring.ParseScheme(f.scheme)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", err, f.scheme)
	}
	return scoring.NewEngine(name)
}

func loadCatalog() (*compass.Catalog, error) {
	if strings.TrimSpace(catalogPath) == "" {
		return compass.Default()
	}
	return compass.Load(catalogPath)
}
