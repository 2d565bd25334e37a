package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/huangsam/repometrics/schema"
)

// writeJSONMetrics writes the metrics definitions in JSON format.
func writeJSONMetrics(w io.Writer, renderModel *schema.MetricsRenderModel) error {
	return writeJSON(w, renderModel)
}

// writeCSVMetrics writes the metrics definitions in CSV format.
func writeCSVMetrics(w io.Writer, renderModel *schema.MetricsRenderModel) error {
	header := []string{"name", "kind", "description", "formula", "bounds"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, m := range renderModel.Metrics {
			record := []string{m.Name, string(m.Kind), m.Description, m.Formula, m.Bounds}
			if err := cw.Write(record); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
		return nil
	})
}
