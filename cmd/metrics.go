package cmd

import (
	"github.com/huangsam/repometrics/core"
	"github.com/huangsam/repometrics/internal/contract"
	"github.com/spf13/cobra"
)

// metricsCmd displays the derivation of every synthesized metric.
var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Display formulas and bounds for all synthesized metrics",
	Long: `Show how each size and quality metric is derived from a repository summary.

Every formula draws from a seeded uniform source, so a run is reproducible
with --seed. The bounds listed are enforced on every record.

No API call is made - this is purely informational.

Examples:
  # Show the metric formulas
  repometrics metrics

  # Export them as JSON
  repometrics metrics --output json`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteMetrics(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot display metrics", err)
		}
	},
}
