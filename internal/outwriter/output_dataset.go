package outwriter

import (
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/repometrics/internal/parquet"
	"github.com/huangsam/repometrics/schema"
)

// Dataset file names, without extension.
const (
	CollectionFileName   = "dataset_repositorios_completo"
	AnalysisFileName     = "dataset_repositorios_analise"
	CKFileName           = "dataset_metricas_ck"
	CorrelationsFileName = "correlacoes"
)

// repoColumn renders one descriptor column.
type repoColumn struct {
	name  string
	value func(r *schema.Repository) string
}

// recordColumn renders one metric table column.
type recordColumn struct {
	name  string
	value func(r *schema.MetricRecord) string
}

func formatRaw(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(schema.TimestampLayout)
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// collectionColumns lists the descriptor columns in file order.
var collectionColumns = []repoColumn{
	{schema.ColName, func(r *schema.Repository) string { return r.Name }},
	{schema.ColFullName, func(r *schema.Repository) string { return r.FullName }},
	{schema.ColDescription, func(r *schema.Repository) string { return derefString(r.Description) }},
	{schema.ColStars, func(r *schema.Repository) string { return strconv.Itoa(r.Stars) }},
	{schema.ColForks, func(r *schema.Repository) string { return strconv.Itoa(r.Forks) }},
	{schema.ColWatchers, func(r *schema.Repository) string { return strconv.Itoa(r.Watchers) }},
	{schema.ColLanguage, func(r *schema.Repository) string { return r.Language }},
	{schema.ColSize, func(r *schema.Repository) string { return strconv.Itoa(r.SizeKB) }},
	{schema.ColCreatedAt, func(r *schema.Repository) string { return formatTimestamp(r.CreatedAt) }},
	{schema.ColUpdatedAt, func(r *schema.Repository) string { return formatTimestamp(r.UpdatedAt) }},
	{schema.ColAgeYears, func(r *schema.Repository) string { return formatRaw(r.AgeYears) }},
	{schema.ColDefaultBranch, func(r *schema.Repository) string { return r.DefaultBranch }},
	{schema.ColCloneURL, func(r *schema.Repository) string { return r.CloneURL }},
	{schema.ColHTMLURL, func(r *schema.Repository) string { return r.HTMLURL }},
}

// analysisColumns lists the metric table columns in file order.
var analysisColumns = []recordColumn{
	{schema.ColRepoName, func(r *schema.MetricRecord) string { return r.Name }},
	{schema.ColFullName, func(r *schema.MetricRecord) string { return r.FullName }},
	{schema.ColDescription, func(r *schema.MetricRecord) string { return derefString(r.Description) }},
	{schema.ColStars, func(r *schema.MetricRecord) string { return strconv.Itoa(r.Stars) }},
	{schema.ColForks, func(r *schema.MetricRecord) string { return strconv.Itoa(r.Forks) }},
	{schema.ColWatchers, func(r *schema.MetricRecord) string { return strconv.Itoa(r.Watchers) }},
	{schema.ColAgeYears, func(r *schema.MetricRecord) string { return formatRaw(r.AgeYears) }},
	{schema.ColSizeKB, func(r *schema.MetricRecord) string { return strconv.Itoa(r.SizeKB) }},
	{schema.ColLOC, func(r *schema.MetricRecord) string { return strconv.Itoa(r.LOC) }},
	{schema.ColComments, func(r *schema.MetricRecord) string { return strconv.Itoa(r.Comments) }},
	{schema.ColReleasesCount, func(r *schema.MetricRecord) string { return strconv.Itoa(r.ReleasesCount) }},
	{schema.ColCBO, func(r *schema.MetricRecord) string { return formatRaw(r.CBO) }},
	{schema.ColDIT, func(r *schema.MetricRecord) string { return formatRaw(r.DIT) }},
	{schema.ColLCOM, func(r *schema.MetricRecord) string { return formatRaw(r.LCOM) }},
	{schema.ColWMC, func(r *schema.MetricRecord) string { return strconv.Itoa(r.WMC) }},
	{schema.ColRFC, func(r *schema.MetricRecord) string { return strconv.Itoa(r.RFC) }},
	{schema.ColLCOM3, func(r *schema.MetricRecord) string { return formatRaw(r.LCOM3) }},
	{schema.ColCA, func(r *schema.MetricRecord) string { return strconv.Itoa(r.CA) }},
	{schema.ColCE, func(r *schema.MetricRecord) string { return strconv.Itoa(r.CE) }},
	{schema.ColNPM, func(r *schema.MetricRecord) string { return strconv.Itoa(r.NPM) }},
	{schema.ColLanguage, func(r *schema.MetricRecord) string { return r.Language }},
	{schema.ColCreatedAt, func(r *schema.MetricRecord) string { return formatTimestamp(r.CreatedAt) }},
	{schema.ColUpdatedAt, func(r *schema.MetricRecord) string { return formatTimestamp(r.UpdatedAt) }},
	{schema.ColCloneURL, func(r *schema.MetricRecord) string { return r.CloneURL }},
	{schema.ColHTMLURL, func(r *schema.MetricRecord) string { return r.HTMLURL }},
}

// ckColumnNames is the projection written to the CK metrics file.
var ckColumnNames = []string{
	schema.ColRepoName, schema.ColFullName, schema.ColStars, schema.ColAgeYears,
	schema.ColLOC, schema.ColComments, schema.ColReleasesCount,
	schema.ColCBO, schema.ColDIT, schema.ColLCOM, schema.ColWMC, schema.ColRFC,
}

// projectColumns picks the named columns out of analysisColumns, in the given order.
func projectColumns(names []string) []recordColumn {
	byName := make(map[string]recordColumn, len(analysisColumns))
	for _, c := range analysisColumns {
		byName[c.name] = c
	}
	out := make([]recordColumn, 0, len(names))
	for _, name := range names {
		if c, ok := byName[name]; ok {
			out = append(out, c)
		}
	}
	return out
}

// writeCollectionCSV writes every collected descriptor.
func writeCollectionCSV(w io.Writer, repos []schema.Repository) error {
	header := make([]string, len(collectionColumns))
	for i, c := range collectionColumns {
		header[i] = c.name
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		row := make([]string, len(collectionColumns))
		for i := range repos {
			for j, c := range collectionColumns {
				row[j] = c.value(&repos[i])
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeRecordsCSV writes the metric table restricted to columns.
func writeRecordsCSV(w io.Writer, records []schema.MetricRecord, columns []recordColumn) error {
	header := make([]string, len(columns))
	for i, c := range columns {
		header[i] = c.name
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		row := make([]string, len(columns))
		for i := range records {
			for j, c := range columns {
				row[j] = c.value(&records[i])
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeCorrelationsCSV writes one row per computed pair.
func writeCorrelationsCSV(w io.Writer, matrix schema.CorrelationMatrix) error {
	header := []string{"process_metric", "quality_metric", "pearson_r", "pearson_p", "spearman_r", "spearman_p"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, r := range matrix {
			rec := []string{
				r.Process,
				r.Quality,
				formatRaw(r.Pearson.Coefficient),
				formatRaw(r.Pearson.PValue),
				formatRaw(r.Spearman.Coefficient),
				formatRaw(r.Spearman.PValue),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// records returns the rows of the dataset table, or nil without a table.
func records(ds *schema.Dataset) []schema.MetricRecord {
	if ds.Table == nil {
		return nil
	}
	return ds.Table.Records
}

// WriteDatasetFiles persists the collection, the metric table and the correlation
// matrix under dir. Text and CSV modes write the four CSV files; JSON and Parquet
// modes write the collection, the metric table and the correlations in that format.
// The paths of the written files are returned in write order.
func WriteDatasetFiles(dir string, mode schema.OutputMode, ds *schema.Dataset) ([]string, error) {
	if ds == nil {
		return nil, errors.New("no dataset to write")
	}
	var steps []func() (string, error)
	switch mode {
	case schema.JSONOut:
		steps = []func() (string, error){
			func() (string, error) {
				return writeFileIn(dir, CollectionFileName+".json", func(w io.Writer) error { return writeJSON(w, ds.Repositories) })
			},
			func() (string, error) {
				return writeFileIn(dir, AnalysisFileName+".json", func(w io.Writer) error { return writeJSON(w, records(ds)) })
			},
			func() (string, error) {
				return writeFileIn(dir, CorrelationsFileName+".json", func(w io.Writer) error { return writeJSON(w, ds.Correlations) })
			},
		}
	case schema.ParquetOut:
		steps = []func() (string, error){
			func() (string, error) {
				return writeParquetIn(dir, CollectionFileName+".parquet", parquet.ConvertRepositories(ds.Repositories))
			},
			func() (string, error) {
				return writeParquetIn(dir, AnalysisFileName+".parquet", parquet.ConvertMetricRecords(records(ds)))
			},
			func() (string, error) {
				return writeParquetIn(dir, CorrelationsFileName+".parquet", parquet.ConvertCorrelations(ds.Correlations))
			},
		}
	default:
		steps = []func() (string, error){
			func() (string, error) {
				return writeFileIn(dir, CollectionFileName+".csv", func(w io.Writer) error { return writeCollectionCSV(w, ds.Repositories) })
			},
			func() (string, error) {
				return writeFileIn(dir, AnalysisFileName+".csv", func(w io.Writer) error { return writeRecordsCSV(w, records(ds), analysisColumns) })
			},
			func() (string, error) {
				return writeFileIn(dir, CKFileName+".csv", func(w io.Writer) error {
					return writeRecordsCSV(w, records(ds), projectColumns(ckColumnNames))
				})
			},
			func() (string, error) {
				return writeFileIn(dir, CorrelationsFileName+".csv", func(w io.Writer) error { return writeCorrelationsCSV(w, ds.Correlations) })
			},
		}
	}

	paths := make([]string, 0, len(steps))
	for _, step := range steps {
		path, err := step()
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
