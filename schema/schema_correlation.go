package schema

// SignificanceLevel is the p-value threshold under which a correlation is reported as significant.
const SignificanceLevel = 0.05

// MetricPair names one (process, quality) column pair.
type MetricPair struct {
	Process string `json:"process_metric"`
	Quality string `json:"quality_metric"`
}

// Coefficient holds one correlation coefficient and its two-tailed p-value.
type Coefficient struct {
	Coefficient float64 `json:"coefficient"`
	PValue      float64 `json:"p_value"`
}

// Significant reports whether the p-value is under SignificanceLevel.
func (c Coefficient) Significant() bool {
	return c.PValue < SignificanceLevel
}

// CorrelationResult is the Pearson and Spearman outcome for one metric pair.
type CorrelationResult struct {
	MetricPair
	Samples  int         `json:"samples"`
	Pearson  Coefficient `json:"pearson"`
	Spearman Coefficient `json:"spearman"`
}

// CorrelationMatrix holds results in process-major order. Pairs that could not
// be computed are absent.
type CorrelationMatrix []CorrelationResult

// Lookup finds the result for the given pair.
func (m CorrelationMatrix) Lookup(process, quality string) (CorrelationResult, bool) {
	for _, r := range m {
		if r.Process == process && r.Quality == quality {
			return r, true
		}
	}
	return CorrelationResult{}, false
}

// Dataset is everything one pipeline run produced.
type Dataset struct {
	RunUUID      string            `json:"run_uuid,omitempty"`
	Seed         uint64            `json:"seed"`
	Repositories []Repository      `json:"repositories"`
	Table        *Table            `json:"-"`
	Correlations CorrelationMatrix `json:"correlations"`
	Skipped      int               `json:"skipped"`
	Omitted      int               `json:"omitted"`
}
