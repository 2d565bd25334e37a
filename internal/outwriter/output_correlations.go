package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/huangsam/repometrics/internal/contract"
	"github.com/huangsam/repometrics/internal/parquet"
	"github.com/huangsam/repometrics/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintCorrelations outputs the correlation matrix of ds, dispatching based on the output format configured.
func PrintCorrelations(ds *schema.Dataset, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, fmtInt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSONCorrelations(w, ds)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVCorrelations(w, ds.Correlations, fmtFloat, fmtInt)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := writeParquetOutput(cfg.OutputFile, parquet.ConvertCorrelations(ds.Correlations)); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCorrelationTable(w, ds, cfg, fmtFloat, fmtInt, duration)
		}, "Wrote table")
	}
	return nil
}

// writeCorrelationTable generates and writes the human-readable correlation table.
func writeCorrelationTable(w io.Writer, ds *schema.Dataset, cfg *contract.Config, fmtFloat func(float64) string, fmtInt func(int) string, duration time.Duration) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Process", "Quality", "N", "Pearson r", "p", "Spearman ρ", "p", "Strength", "Significance"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	significant := 0
	for _, r := range ds.Correlations {
		data = append(data, []string{
			r.Process,
			r.Quality,
			fmtInt(r.Samples),
			fmtFloat(r.Pearson.Coefficient),
			fmtFloat(r.Pearson.PValue),
			fmtFloat(r.Spearman.Coefficient),
			fmtFloat(r.Spearman.PValue),
			contract.GetColorStrengthLabel(r.Spearman.Coefficient),
			contract.GetColorSignificanceLabel(r.Spearman.PValue),
		})
		if r.Spearman.Significant() {
			significant++
		}
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	analyzed := 0
	if ds.Table != nil {
		analyzed = ds.Table.Len()
	}
	if _, err := fmt.Fprintf(w, "Correlated %d pairs over %d repositories (%d significant, %d omitted, %d records skipped)\n",
		len(ds.Correlations), analyzed, significant, ds.Omitted, ds.Skipped); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Analysis completed in %v with seed %d. Cache backend: %s\n", duration, ds.Seed, cfg.CacheBackend); err != nil {
		return err
	}
	return nil
}

// writeCSVCorrelations writes the correlation matrix in CSV format with labels.
func writeCSVCorrelations(w io.Writer, matrix schema.CorrelationMatrix, fmtFloat func(float64) string, fmtInt func(int) string) error {
	header := []string{
		"process_metric",
		"quality_metric",
		"samples",
		"pearson_r",
		"pearson_p",
		"spearman_r",
		"spearman_p",
		"strength",
		"significance",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, r := range matrix {
			rec := []string{
				r.Process,
				r.Quality,
				fmtInt(r.Samples),
				fmtFloat(r.Pearson.Coefficient),
				fmtFloat(r.Pearson.PValue),
				fmtFloat(r.Spearman.Coefficient),
				fmtFloat(r.Spearman.PValue),
				contract.GetStrengthLabel(r.Spearman.Coefficient),
				contract.GetSignificanceLabel(r.Spearman.PValue),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeJSONCorrelations writes the run summary and the labelled correlations in JSON format.
func writeJSONCorrelations(w io.Writer, ds *schema.Dataset) error {
	type jsonCorrelation struct {
		schema.CorrelationResult
		Strength    string `json:"strength"`
		Significant bool   `json:"significant"`
	}
	type jsonOutput struct {
		RunUUID      string            `json:"run_uuid,omitempty"`
		Seed         uint64            `json:"seed"`
		Collected    int               `json:"collected"`
		Analyzed     int               `json:"analyzed"`
		Skipped      int               `json:"skipped"`
		Omitted      int               `json:"omitted"`
		Correlations []jsonCorrelation `json:"correlations"`
	}

	out := jsonOutput{
		RunUUID:      ds.RunUUID,
		Seed:         ds.Seed,
		Collected:    len(ds.Repositories),
		Skipped:      ds.Skipped,
		Omitted:      ds.Omitted,
		Correlations: make([]jsonCorrelation, len(ds.Correlations)),
	}
	if ds.Table != nil {
		out.Analyzed = ds.Table.Len()
	}
	for i, r := range ds.Correlations {
		out.Correlations[i] = jsonCorrelation{
			CorrelationResult: r,
			Strength:          contract.GetStrengthLabel(r.Spearman.Coefficient),
			Significant:       r.Spearman.Significant(),
		}
	}
	return writeJSON(w, out)
}
