// Package parquet provides the row types and writers used to export repository
// datasets and analysis runs to Parquet files with github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/repometrics/schema"
	"github.com/parquet-go/parquet-go"
)

// AnalysisRun represents a single tracked analyze run.
// This struct maps to the repometrics_analysis_runs database table.
type AnalysisRun struct {
	AnalysisID int64  `parquet:"analysis_id,snappy"`
	RunUUID    string `parquet:"run_uuid,snappy"`

	// StartTime is when the run began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time  `parquet:"start_time,snappy"`
	EndTime   *time.Time `parquet:"end_time,optional,snappy"`

	RunDurationMs     *int64 `parquet:"run_duration_ms,optional,snappy"`
	PopulationSize    *int64 `parquet:"population_size,optional,snappy"`
	SubsetSize        *int64 `parquet:"subset_size,optional,snappy"`
	CorrelationsCount *int64 `parquet:"correlations_count,optional,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// Repository is one collected repository descriptor.
type Repository struct {
	Name          string    `parquet:"name,snappy"`
	FullName      string    `parquet:"full_name,snappy"`
	Description   *string   `parquet:"description,optional,snappy"`
	Stars         int64     `parquet:"stars,snappy"`
	Forks         int64     `parquet:"forks,snappy"`
	Watchers      int64     `parquet:"watchers,snappy"`
	Language      string    `parquet:"language,snappy"`
	SizeKB        int64     `parquet:"size,snappy"`
	CreatedAt     time.Time `parquet:"created_at,snappy"`
	UpdatedAt     time.Time `parquet:"updated_at,snappy"`
	AgeYears      float64   `parquet:"age_years,snappy"`
	DefaultBranch string    `parquet:"default_branch,snappy"`
	CloneURL      string    `parquet:"clone_url,snappy"`
	HTMLURL       string    `parquet:"html_url,snappy"`
}

// RepositoryMetrics is one row of the metric table.
// This struct maps to the repometrics_repository_metrics database table;
// AnalysisID is zero for rows written outside a tracked run.
type RepositoryMetrics struct {
	AnalysisID    int64   `parquet:"analysis_id,snappy"`
	FullName      string  `parquet:"full_name,snappy"`
	RepoName      string  `parquet:"repo_name,snappy"`
	Stars         int64   `parquet:"stars,snappy"`
	Forks         int64   `parquet:"forks,snappy"`
	AgeYears      float64 `parquet:"age_years,snappy"`
	SizeKB        int64   `parquet:"size_kb,snappy"`
	LOC           int64   `parquet:"loc,snappy"`
	Comments      int64   `parquet:"comments,snappy"`
	ReleasesCount int64   `parquet:"releases_count,snappy"`
	CBO           float64 `parquet:"cbo,snappy"`
	DIT           float64 `parquet:"dit,snappy"`
	LCOM          float64 `parquet:"lcom,snappy"`
	WMC           int64   `parquet:"wmc,snappy"`
	RFC           int64   `parquet:"rfc,snappy"`
	LCOM3         float64 `parquet:"lcom3,snappy"`
	CA            int64   `parquet:"ca,snappy"`
	CE            int64   `parquet:"ce,snappy"`
	NPM           int64   `parquet:"npm,snappy"`
}

// Correlation is one correlation result.
// This struct maps to the repometrics_correlations database table.
type Correlation struct {
	AnalysisID    int64   `parquet:"analysis_id,snappy"`
	ProcessMetric string  `parquet:"process_metric,snappy"`
	QualityMetric string  `parquet:"quality_metric,snappy"`
	Samples       int64   `parquet:"samples,snappy"`
	PearsonR      float64 `parquet:"pearson_r,snappy"`
	PearsonP      float64 `parquet:"pearson_p,snappy"`
	SpearmanR     float64 `parquet:"spearman_r,snappy"`
	SpearmanP     float64 `parquet:"spearman_p,snappy"`
}

// Write encodes rows to w. The schema is derived from the struct tags of T.
func Write[T any](w io.Writer, rows []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteFile creates outputPath and writes rows to it.
func WriteFile[T any](rows []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()
	return Write(file, rows)
}

// ReadFile reads every row of a Parquet file.
func ReadFile[T any](path string) ([]T, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	reader := parquet.NewGenericReader[T](file)
	defer func() { _ = reader.Close() }()

	rows := make([]T, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return rows[:n], nil
}

// ConvertAnalysisRunRecords converts stored run rows for export.
func ConvertAnalysisRunRecords(records []schema.AnalysisRunRecord) []AnalysisRun {
	result := make([]AnalysisRun, len(records))
	for i, record := range records {
		result[i] = AnalysisRun{
			AnalysisID:        record.AnalysisID,
			RunUUID:           record.RunUUID,
			StartTime:         record.StartTime,
			EndTime:           record.EndTime,
			RunDurationMs:     record.RunDurationMs,
			PopulationSize:    record.PopulationSize,
			SubsetSize:        record.SubsetSize,
			CorrelationsCount: record.CorrelationsCount,
			ConfigParams:      record.ConfigParams,
		}
	}
	return result
}

// ConvertMetricRecordRows converts stored metric rows for export.
func ConvertMetricRecordRows(rows []schema.MetricRecordRow) []RepositoryMetrics {
	result := make([]RepositoryMetrics, len(rows))
	for i, r := range rows {
		result[i] = RepositoryMetrics(r)
	}
	return result
}

// ConvertMetricRecords converts the in-memory metric table for export.
func ConvertMetricRecords(records []schema.MetricRecord) []RepositoryMetrics {
	rows := make([]schema.MetricRecordRow, len(records))
	for i, r := range records {
		rows[i] = schema.NewMetricRecordRow(0, r)
	}
	return ConvertMetricRecordRows(rows)
}

// ConvertCorrelationRows converts stored correlation rows for export.
func ConvertCorrelationRows(rows []schema.CorrelationRow) []Correlation {
	result := make([]Correlation, len(rows))
	for i, r := range rows {
		result[i] = Correlation(r)
	}
	return result
}

// ConvertCorrelations converts an in-memory correlation matrix for export.
func ConvertCorrelations(matrix schema.CorrelationMatrix) []Correlation {
	rows := make([]schema.CorrelationRow, len(matrix))
	for i, r := range matrix {
		rows[i] = schema.NewCorrelationRow(0, r)
	}
	return ConvertCorrelationRows(rows)
}

// ConvertRepositories converts repository descriptors for export.
func ConvertRepositories(repos []schema.Repository) []Repository {
	result := make([]Repository, len(repos))
	for i, r := range repos {
		result[i] = Repository{
			Name:          r.Name,
			FullName:      r.FullName,
			Description:   r.Description,
			Stars:         int64(r.Stars),
			Forks:         int64(r.Forks),
			Watchers:      int64(r.Watchers),
			Language:      r.Language,
			SizeKB:        int64(r.SizeKB),
			CreatedAt:     r.CreatedAt,
			UpdatedAt:     r.UpdatedAt,
			AgeYears:      r.AgeYears,
			DefaultBranch: r.DefaultBranch,
			CloneURL:      r.CloneURL,
			HTMLURL:       r.HTMLURL,
		}
	}
	return result
}
