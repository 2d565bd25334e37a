package cmd

import (
	"github.com/huangsam/repometrics/core"
	"github.com/huangsam/repometrics/internal/contract"
	"github.com/spf13/cobra"
)

// analyzeCmd runs the full collection and correlation pipeline.
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Correlate process metrics with quality metrics over collected repositories.",
	Long: `Collect repositories, synthesize size and quality metrics for a subset of them,
and compute Pearson and Spearman correlations for every process/quality pair.

Artifacts:
- Dataset files under --dataset-dir (collection, metric table, CK projection, correlations)
- Distribution charts and the text report under --output-dir
- The correlation table on stdout (or --output-file)

Runs are recorded in the analysis store when --analysis-backend is set.

Examples:
  # Analyze the top 100 of 1000 Java repositories
  repometrics analyze

  # Reproducible run over every collected repository
  repometrics analyze --subset 0 --seed 42

  # Restrict the correlated columns
  repometrics analyze --process-metrics stars,loc --quality-metrics cbo,lcom

  # Track the run in SQLite and export JSON correlations
  repometrics analyze --analysis-backend sqlite --output json --output-file correlations.json`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteAnalyze(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot run analysis", err)
		}
	},
}
