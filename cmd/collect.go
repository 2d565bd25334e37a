package cmd

import (
	"github.com/huangsam/repometrics/core"
	"github.com/huangsam/repometrics/internal/contract"
	"github.com/spf13/cobra"
)

// collectCmd harvests and summarizes repositories without analyzing them.
var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collect the most popular repositories matching a search query.",
	Long: `Page through the forge search API and summarize each repository.

The search is paced between pages, waits out rate limiting, and retries
transport failures. Records that cannot be parsed are skipped with a warning.
Successful pages are cached so repeated runs avoid the network.

Examples:
  # Collect the top 1000 Java repositories
  repometrics collect

  # Collect 200 Go repositories as CSV
  repometrics collect --query "language:go" --population 200 --output csv --output-file repos.csv

  # Use a token from the environment to raise the rate limit
  REPOMETRICS_TOKEN=... repometrics collect`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteCollect(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot collect repositories", err)
		}
	},
}
