// Package outwriter has output and writer logic.
package outwriter

import (
	"time"

	"github.com/huangsam/repometrics/internal/contract"
	"github.com/huangsam/repometrics/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteRepositories prints collected repositories using the configured output format.
func (ow *OutWriter) WriteRepositories(repos []schema.Repository, cfg *contract.Config, duration time.Duration) error {
	return PrintRepositories(repos, cfg, duration)
}

// WriteCorrelations prints the correlation matrix using the configured output format.
func (ow *OutWriter) WriteCorrelations(ds *schema.Dataset, cfg *contract.Config, duration time.Duration) error {
	return PrintCorrelations(ds, cfg, duration)
}

// WriteDataset persists the dataset tables under the configured dataset directory.
func (ow *OutWriter) WriteDataset(ds *schema.Dataset, cfg *contract.Config) ([]string, error) {
	return WriteDatasetFiles(cfg.DatasetDir, cfg.Output, ds)
}

// WriteReport writes the text report under the configured output directory.
func (ow *OutWriter) WriteReport(ds *schema.Dataset, cfg *contract.Config) (string, error) {
	return WriteReportFile(cfg.OutputDir, ds)
}

// WriteMetrics prints metric definitions using the configured output format.
func (ow *OutWriter) WriteMetrics(defs []schema.MetricDefinition, cfg *contract.Config) error {
	return PrintMetricsDefinitions(defs, cfg)
}
