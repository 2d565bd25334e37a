// Package cmd defines the command-line interface for repometrics.
package cmd

import (
	"github.com/huangsam/repometrics/internal/contract"
	"github.com/huangsam/repometrics/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(collectCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(analysisCmd)
	rootCmd.AddCommand(mcpCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Add the analysis subcommands to the parent analysis command
	analysisCmd.AddCommand(analysisClearCmd)
	analysisCmd.AddCommand(analysisStatusCmd)
	analysisCmd.AddCommand(analysisExportCmd)
	analysisCmd.AddCommand(analysisMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("api-url", contract.DefaultAPIURL, "Base URL of the forge search API")
	rootCmd.PersistentFlags().String("token", "", "API token (prefer the REPOMETRICS_TOKEN env variable)")
	rootCmd.PersistentFlags().StringP("query", "q", contract.DefaultQuery, "Repository search predicate")
	rootCmd.PersistentFlags().String("sort", contract.DefaultSort, "Search sort field")
	rootCmd.PersistentFlags().String("order", contract.DefaultOrder, "Search order: asc or desc")
	rootCmd.PersistentFlags().IntP("population", "n", contract.DefaultPopulation, "Number of repositories to collect")
	rootCmd.PersistentFlags().Int("page-size", contract.DefaultPageSize, "Repositories requested per page (1-100)")
	rootCmd.PersistentFlags().String("cooldown", contract.DefaultCooldown.String(), "Wait after a rate-limited response")
	rootCmd.PersistentFlags().String("retry-wait", contract.DefaultRetryWait.String(), "Wait after a transport error")
	rootCmd.PersistentFlags().String("pace", contract.DefaultPace.String(), "Wait between successful pages")
	rootCmd.PersistentFlags().Int("max-retries", 0, "Transport retries per page (0 = unlimited)")
	rootCmd.PersistentFlags().String("http-timeout", contract.DefaultHTTPTimeout.String(), "Timeout of a single page request")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().String("dataset-dir", contract.DefaultDatasetDir, "Directory for the dataset files")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Cache backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("cache-ttl", contract.DefaultCacheTTL.String(), "Maximum age of a cached search page (0 disables the cache)")
	rootCmd.PersistentFlags().String("analysis-backend", "", "Analysis tracking backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("analysis-db-connect", "", "Database connection string for analysis tracking (must differ from cache-db-connect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("log-level", "warn", "Structured log level: debug or info or warn or error")
	rootCmd.PersistentFlags().String("log-mode", string(schema.DevLog), "Structured log encoding: dev or prod")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of analyzeCmd to Viper
	analyzeCmd.Flags().Int("subset", contract.DefaultSubset, "Number of collected repositories to analyze (0 = all)")
	analyzeCmd.Flags().Uint64("seed", 0, "Seed for the metric synthesizer (0 = pick one)")
	analyzeCmd.Flags().String("process-metrics", "", "Comma-separated process metric columns")
	analyzeCmd.Flags().String("quality-metrics", "", "Comma-separated quality metric columns")
	analyzeCmd.Flags().String("output-dir", contract.DefaultOutputDir, "Directory for the charts and the report")
	analyzeCmd.Flags().Bool("charts", true, "Render the distribution charts")
	if err := viper.BindPFlags(analyzeCmd.Flags()); err != nil {
		contract.LogFatal("Error binding analyze flags", err)
	}

	// Bind all flags of analysisMigrateCmd to Viper
	analysisMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(analysisMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding analysis migrate flags", err)
	}
}
