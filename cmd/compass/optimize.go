package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"compass-backend/internal/proxyclient"
	"compass-backend/internal/recommend"
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize [needs...]",
	Short: "Rewrite a training needs description",
	Long:  "Sends the needs text through the proxy in free-text mode and prints the rewritten description.",
	RunE:  runOptimize,
}

var optimizeTimeout time.Duration

func init() {
	optimizeCmd.Flags().DurationVar(&optimizeTimeout, "timeout", proxyclient.DefaultTimeout, "Proxy request timeout")
	rootCmd.AddCommand(optimizeCmd)
}

func runOptimize(cmd *cobra.Command, args []string) error {
	needs := strings.Join(args, " ")
	client := proxyclient.New(proxyURL, proxyclient.WithTimeout(optimizeTimeout))
	out, err := recommend.OptimizeNeeds(cmd.Context(), client, needs)
	if err != nil {
		return errors.New(recommend.UserMessage(err, recommend.OptimizeFailureMessage))
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}
