package outwriter

import (
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/repometrics/internal/contract"
	"github.com/huangsam/repometrics/schema"
)

// getDisplayNameForKind returns the display name with emoji for a metric kind.
func getDisplayNameForKind(kind schema.MetricKind) string {
	switch kind {
	case schema.ProcessKind:
		return "⚙️  PROCESS"
	case schema.QualityKind:
		return "🧩 QUALITY"
	default:
		return string(kind)
	}
}

// PrintMetricsDefinitions displays how every synthesized metric is derived.
// This is a static display that does not require any API call.
func PrintMetricsDefinitions(defs []schema.MetricDefinition, cfg *contract.Config) error {
	renderModel := buildMetricsRenderModel(defs)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSONMetrics(w, renderModel)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVMetrics(w, renderModel)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return errors.New("parquet output is not supported for metric definitions")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return printMetricsText(w, renderModel)
		}, "Wrote text")
	}
}

// printMetricsText displays metrics in human-readable text format.
func printMetricsText(w io.Writer, renderModel *schema.MetricsRenderModel) error {
	if _, err := fmt.Fprintf(w, "📐 %s\n", renderModel.Title); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "==========================\n\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%s\n\n", renderModel.Description); err != nil {
		return err
	}

	var lastKind schema.MetricKind
	for _, m := range renderModel.Metrics {
		if m.Kind != lastKind {
			if _, err := fmt.Fprintf(w, "%s\n", getDisplayNameForKind(m.Kind)); err != nil {
				return err
			}
			lastKind = m.Kind
		}
		if _, err := fmt.Fprintf(w, "   %s: %s\n", m.Name, m.Description); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "      Formula: %s = %s\n", m.Name, m.Formula); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "      Bounds: %s\n", m.Bounds); err != nil {
			return err
		}
	}
	return nil
}

// buildMetricsRenderModel constructs the render model for the given definitions.
func buildMetricsRenderModel(defs []schema.MetricDefinition) *schema.MetricsRenderModel {
	return &schema.MetricsRenderModel{
		Title:       "Synthesized Metrics",
		Description: "Metrics are derived from repository attributes. " + schema.MetricFactorNotes,
		Metrics:     defs,
	}
}
