package outwriter

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/huangsam/repometrics/internal/contract"
	"github.com/huangsam/repometrics/internal/parquet"
	"github.com/huangsam/repometrics/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintRepositories outputs the collected repositories, dispatching based on the output format configured.
func PrintRepositories(repos []schema.Repository, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, repos)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCollectionCSV(w, repos)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := writeParquetOutput(cfg.OutputFile, parquet.ConvertRepositories(repos)); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRepositoryTable(w, repos, cfg, duration)
		}, "Wrote table")
	}
	return nil
}

// writeParquetOutput writes rows to outputFile, which Parquet mode requires.
func writeParquetOutput[T any](outputFile string, rows []T) error {
	if outputFile == "" {
		return errors.New("--output-file is required for parquet output")
	}
	if err := parquet.WriteFile(rows, outputFile); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(os.Stderr, "💾 Wrote Parquet to %s\n", outputFile)
	return nil
}

// writeRepositoryTable generates and writes the human-readable repository table.
func writeRepositoryTable(w io.Writer, repos []schema.Repository, cfg *contract.Config, duration time.Duration) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Rank", "Repository", "Stars", "Forks", "Language", "Age (y)", "Size (KB)"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	nameWidth := getMaxTableNameWidth(70)
	var data [][]string
	totalStars := 0
	for i, r := range repos {
		data = append(data, []string{
			strconv.Itoa(i + 1),
			contract.TruncateName(r.FullName, nameWidth),
			strconv.Itoa(r.Stars),
			strconv.Itoa(r.Forks),
			r.Language,
			strconv.FormatFloat(r.AgeYears, 'f', 2, 64),
			strconv.Itoa(r.SizeKB),
		})
		totalStars += r.Stars
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Collected %d repositories (total stars: %d) for %s\n", len(repos), totalStars, cfg.Query.String()); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Collection completed in %v. Cache backend: %s\n", duration, cfg.CacheBackend); err != nil {
		return err
	}
	return nil
}
