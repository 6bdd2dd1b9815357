package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"compass-backend/internal/proxyclient"
	"compass-backend/internal/recommend"
	"compass-backend/internal/scoring"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Get a tailored recommendation for a selection",
	Long:  "Feeds the selections into the recommendation orchestrator one dimension at a time. With --static the built-in tables are used instead of the proxy.",
	RunE:  runRecommend,
}

var (
	recommendFlags   *selectionFlags
	recommendStatic  bool
	recommendTimeout time.Duration
	recommendVerbose bool
)

func init() {
	recommendFlags = addSelectionFlags(recommendCmd)
	recommendCmd.Flags().BoolVar(&recommendStatic, "static", false, "Use the built-in recommendation tables")
	recommendCmd.Flags().DurationVar(&recommendTimeout, "timeout", proxyclient.DefaultTimeout, "Proxy request timeout")
	recommendCmd.Flags().BoolVarP(&recommendVerbose, "verbose", "v", false, "Print every state transition")
	rootCmd.AddCommand(recommendCmd)
}

func runRecommend(cmd *cobra.Command, _ []string) error {
	catalog, err := loadCatalog()
	if err != nil {
		return err
	}
	engine, err := recommendFlags.engine()
	if err != nil {
		return err
	}
	sel, err := recommendFlags.selections(catalog)
	if err != nil {
		return err
	}

	opts := recommend.Options{
		Engine:   engine,
		Catalog:  catalog,
		Renderer: &terminalRenderer{w: cmd.OutOrStdout(), verbose: recommendVerbose},
		Nonce:    uuid.NewString,
	}
	if !recommendStatic {
		opts.Completer = proxyclient.New(proxyURL, proxyclient.WithTimeout(recommendTimeout))
	}
	o, err := recommend.New(opts)
	if err != nil {
		return err
	}
	defer o.Close()

	ctx := cmd.Context()
	for _, dim := range scoring.Dimensions {
		if v, ok := sel[dim]; ok {
			o.Dispatch(recommend.SelectionChanged{Dimension: dim, Value: v})
		}
	}

	done := make(chan struct{})
	go func() {
		o.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		o.Close()
		return ctx.Err()
	}

	view := o.View()
	switch view.State {
	case recommend.StateAwaitingInput:
		return fmt.Errorf("missing selections: %s", joinDimensions(view.Missing))
	case recommend.StateFailed:
		return errors.New(view.Message)
	}
	return nil
}
