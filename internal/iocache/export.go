package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/repometrics/internal/contract"
	"github.com/huangsam/repometrics/internal/parquet"
)

// ExecuteAnalysisExport exports every tracked run, metric row and correlation
// of store to three Parquet files that share the outputFile prefix.
func ExecuteAnalysisExport(w io.Writer, store contract.AnalysisStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("analysis tracking is not configured. Set --analysis-backend")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get analysis status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no analysis data found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total analysis runs: %d\n", status.TotalRuns)
	_, _ = fmt.Fprintf(w, "Total repository records: %d\n", status.TotalRepositoriesStored)

	runs, err := store.GetAllAnalysisRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve analysis runs: %w", err)
	}
	metrics, err := store.GetAllMetricRecords()
	if err != nil {
		return fmt.Errorf("failed to retrieve repository metrics: %w", err)
	}
	correlations, err := store.GetAllCorrelations()
	if err != nil {
		return fmt.Errorf("failed to retrieve correlations: %w", err)
	}

	runsFile := outputFile + ".analysis_runs.parquet"
	if err := parquet.WriteFile(parquet.ConvertAnalysisRunRecords(runs), runsFile); err != nil {
		return fmt.Errorf("failed to write analysis runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d analysis runs to: %s\n", len(runs), runsFile)

	metricsFile := outputFile + ".repository_metrics.parquet"
	if err := parquet.WriteFile(parquet.ConvertMetricRecordRows(metrics), metricsFile); err != nil {
		return fmt.Errorf("failed to write repository metrics: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d repository records to: %s\n", len(metrics), metricsFile)

	correlationsFile := outputFile + ".correlations.parquet"
	if err := parquet.WriteFile(parquet.ConvertCorrelationRows(correlations), correlationsFile); err != nil {
		return fmt.Errorf("failed to write correlations: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d correlations to: %s\n", len(correlations), correlationsFile)

	_, _ = fmt.Fprintln(w, "\nExport complete! The Parquet files can be used with:")
	_, _ = fmt.Fprintln(w, "  - Pandas (via pyarrow)")
	_, _ = fmt.Fprintln(w, "  - DuckDB")
	_, _ = fmt.Fprintln(w, "  - Apache Spark")
	_, _ = fmt.Fprintln(w, "  - Any other Parquet-compatible tool")
	return nil
}
