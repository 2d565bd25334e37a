package outwriter

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/huangsam/repometrics/schema"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ReportFileName is the name of the text report written under the output directory.
const ReportFileName = "relatorio_analise.txt"

// notAvailable is printed wherever a statistic could not be computed.
const notAvailable = "n/a"

// researchQuestion groups one process metric against the reported quality metrics.
type researchQuestion struct {
	ID      string
	Title   string
	Label   string
	Process string
}

// researchQuestions are the report sections in print order.
var researchQuestions = []researchQuestion{
	{ID: "RQ01", Title: "Popularity vs Quality", Label: "Popularity", Process: schema.ColStars},
	{ID: "RQ02", Title: "Maturity vs Quality", Label: "Maturity", Process: schema.ColAgeYears},
	{ID: "RQ03", Title: "Activity vs Quality", Label: "Activity", Process: schema.ColReleasesCount},
	{ID: "RQ04", Title: "Size vs Quality", Label: "Size", Process: schema.ColLOC},
}

// reportQualityMetrics are the quality columns each research question reports.
var reportQualityMetrics = []string{schema.ColCBO, schema.ColDIT, schema.ColLCOM}

// Stats are the descriptive statistics of the metric table.
type Stats struct {
	Count      int
	MinStars   float64
	MaxStars   float64
	MinAge     float64
	MaxAge     float64
	MinLOC     float64
	MaxLOC     float64
	MeanCBO    float64
	StdDevCBO  float64
	MeanDIT    float64
	StdDevDIT  float64
	MeanLCOM   float64
	StdDevLCOM float64
}

// ComputeStats summarizes the table. Statistics of an empty table, and standard
// deviations of a single row, are NaN.
func ComputeStats(table *schema.Table) Stats {
	s := Stats{}
	if table != nil {
		s.Count = table.Len()
	}
	s.MinStars, s.MaxStars = columnRange(table, schema.ColStars)
	s.MinAge, s.MaxAge = columnRange(table, schema.ColAgeYears)
	s.MinLOC, s.MaxLOC = columnRange(table, schema.ColLOC)
	s.MeanCBO, s.StdDevCBO = columnMeanStdDev(table, schema.ColCBO)
	s.MeanDIT, s.StdDevDIT = columnMeanStdDev(table, schema.ColDIT)
	s.MeanLCOM, s.StdDevLCOM = columnMeanStdDev(table, schema.ColLCOM)
	return s
}

func column(table *schema.Table, name string) []float64 {
	if table == nil || table.Len() == 0 {
		return nil
	}
	col, err := table.Column(name)
	if err != nil {
		return nil
	}
	return col
}

func columnRange(table *schema.Table, name string) (float64, float64) {
	col := column(table, name)
	if len(col) == 0 {
		return math.NaN(), math.NaN()
	}
	return floats.Min(col), floats.Max(col)
}

func columnMeanStdDev(table *schema.Table, name string) (float64, float64) {
	col := column(table, name)
	switch len(col) {
	case 0:
		return math.NaN(), math.NaN()
	case 1:
		return col[0], math.NaN()
	}
	// Sample standard deviation (n-1 denominator)
	return stat.MeanStdDev(col, nil)
}

func formatStat(v float64, digits int) string {
	if math.IsNaN(v) {
		return notAvailable
	}
	return fmt.Sprintf("%.*f", digits, v)
}

func formatCount(v float64) string {
	if math.IsNaN(v) {
		return notAvailable
	}
	return humanize.Comma(int64(math.Round(v)))
}

// formatPearson renders "r = x, p = y" for one pair, or n/a when the pair was omitted.
func formatPearson(matrix schema.CorrelationMatrix, process, quality string) string {
	r, ok := matrix.Lookup(process, quality)
	if !ok {
		return "r = " + notAvailable + ", p = " + notAvailable
	}
	return fmt.Sprintf("r = %.3f, p = %.3f", r.Pearson.Coefficient, r.Pearson.PValue)
}

// RenderReport writes the analysis report of ds to w.
func RenderReport(w io.Writer, ds *schema.Dataset) error {
	s := ComputeStats(ds.Table)
	var b strings.Builder

	b.WriteString("# REPOSITORY QUALITY ANALYSIS REPORT\n\n")
	b.WriteString("## EXECUTIVE SUMMARY\n")
	b.WriteString("This report relates development process characteristics to internal code quality\n")
	fmt.Fprintf(&b, "for %d repositories selected by popularity out of %d collected, using CK metrics.\n", s.Count, len(ds.Repositories))
	if ds.RunUUID != "" {
		fmt.Fprintf(&b, "Run: %s (seed %d)\n", ds.RunUUID, ds.Seed)
	} else {
		fmt.Fprintf(&b, "Seed: %d\n", ds.Seed)
	}

	b.WriteString("\n## DESCRIPTIVE STATISTICS\n")
	fmt.Fprintf(&b, "- Total repositories analyzed: %d\n", s.Count)
	fmt.Fprintf(&b, "- Popularity range: %s - %s stars\n", formatCount(s.MinStars), formatCount(s.MaxStars))
	fmt.Fprintf(&b, "- Age range: %s - %s years\n", formatStat(s.MinAge, 1), formatStat(s.MaxAge, 1))
	fmt.Fprintf(&b, "- Size range: %s - %s LOC\n", formatCount(s.MinLOC), formatCount(s.MaxLOC))

	b.WriteString("\n### Quality Metrics:\n")
	fmt.Fprintf(&b, "- Mean CBO: %s (std dev: %s)\n", formatStat(s.MeanCBO, 2), formatStat(s.StdDevCBO, 2))
	fmt.Fprintf(&b, "- Mean DIT: %s (std dev: %s)\n", formatStat(s.MeanDIT, 2), formatStat(s.StdDevDIT, 2))
	fmt.Fprintf(&b, "- Mean LCOM: %s (std dev: %s)\n", formatStat(s.MeanLCOM, 3), formatStat(s.StdDevLCOM, 3))

	b.WriteString("\n## RESEARCH QUESTION RESULTS\n")
	for _, rq := range researchQuestions {
		fmt.Fprintf(&b, "\n### %s: %s\n", rq.ID, rq.Title)
		for _, q := range reportQualityMetrics {
			fmt.Fprintf(&b, "- %s vs %s: %s\n", rq.Label, strings.ToUpper(q), formatPearson(ds.Correlations, rq.Process, q))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteReportFile writes the report of ds to ReportFileName under dir.
func WriteReportFile(dir string, ds *schema.Dataset) (string, error) {
	return writeFileIn(dir, ReportFileName, func(w io.Writer) error {
		return RenderReport(w, ds)
	})
}

// PrintSummary writes the short results summary shown after an analysis.
func PrintSummary(w io.Writer, ds *schema.Dataset) error {
	s := ComputeStats(ds.Table)
	lines := []string{
		"📈 Results summary:",
		fmt.Sprintf("📊 Repositories analyzed: %d (of %d collected)", s.Count, len(ds.Repositories)),
		"🔧 CK metrics:",
		fmt.Sprintf("   - Mean CBO: %s", formatStat(s.MeanCBO, 2)),
		fmt.Sprintf("   - Mean DIT: %s", formatStat(s.MeanDIT, 2)),
		fmt.Sprintf("   - Mean LCOM: %s", formatStat(s.MeanLCOM, 3)),
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
