// Package algo has the statistics behind the correlation engine.
package algo

import (
	"fmt"
	"math"

	"github.com/huangsam/repometrics/internal/contract"
	"github.com/huangsam/repometrics/schema"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// ColumnSource exposes numeric columns by name. schema.Table implements it.
type ColumnSource interface {
	Column(name string) ([]float64, error)
}

var _ ColumnSource = &schema.Table{} // Compile-time check

// Correlate computes Pearson and Spearman statistics for every (process, quality)
// pair in process-major order. A pair that cannot be computed is left out of the
// matrix and reported in the returned errors; the other pairs are unaffected.
func Correlate(src ColumnSource, process, quality []string) (schema.CorrelationMatrix, []error) {
	columns := map[string][]float64{}
	columnErrs := map[string]error{}
	load := func(name string) {
		if _, seen := columns[name]; seen {
			return
		}
		if _, seen := columnErrs[name]; seen {
			return
		}
		col, err := src.Column(name)
		if err != nil {
			columnErrs[name] = err
			return
		}
		columns[name] = col
	}
	for _, name := range process {
		load(name)
	}
	for _, name := range quality {
		load(name)
	}

	matrix := make(schema.CorrelationMatrix, 0, len(process)*len(quality))
	var errs []error
	for _, p := range process {
		for _, q := range quality {
			pair := schema.MetricPair{Process: p, Quality: q}
			if err := firstErr(columnErrs[p], columnErrs[q]); err != nil {
				errs = append(errs, fmt.Errorf("%s vs %s: %w", p, q, err))
				continue
			}
			res, err := CorrelatePair(pair, columns[p], columns[q])
			if err != nil {
				errs = append(errs, err)
				continue
			}
			matrix = append(matrix, res)
		}
	}
	return matrix, errs
}

// CorrelatePair computes both statistics over the rows where x and y are both
// present. NaN marks a missing value.
func CorrelatePair(pair schema.MetricPair, x, y []float64) (schema.CorrelationResult, error) {
	px, py := pairwise(x, y)
	n := len(px)
	if n < 2 {
		return schema.CorrelationResult{}, &contract.InsufficientDataError{Pair: pair, Samples: n, Reason: "fewer than 2 paired rows"}
	}
	if isConstant(px) || isConstant(py) {
		return schema.CorrelationResult{}, &contract.InsufficientDataError{Pair: pair, Samples: n, Reason: "constant input"}
	}

	r := clampUnit(stat.Correlation(px, py, nil))
	rho := clampUnit(stat.Correlation(Ranks(px), Ranks(py), nil))
	return schema.CorrelationResult{
		MetricPair: pair,
		Samples:    n,
		Pearson:    schema.Coefficient{Coefficient: r, PValue: PValue(r, n)},
		Spearman:   schema.Coefficient{Coefficient: rho, PValue: PValue(rho, n)},
	}, nil
}

// PValue is the two-tailed significance of coefficient r over n samples, using
// the Student-t distribution with n-2 degrees of freedom.
func PValue(r float64, n int) float64 {
	if n <= 2 {
		return 1
	}
	if math.Abs(r) >= 1 {
		return 0
	}
	df := float64(n - 2)
	t := r * math.Sqrt(df/(1-r*r))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p := 2 * dist.CDF(-math.Abs(t))
	return math.Max(0, math.Min(p, 1))
}

// pairwise drops every row where either value is NaN.
func pairwise(x, y []float64) ([]float64, []float64) {
	n := min(len(x), len(y))
	px := make([]float64, 0, n)
	py := make([]float64, 0, n)
	for i := range n {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		px = append(px, x[i])
		py = append(py, y[i])
	}
	return px, py
}

func isConstant(values []float64) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}

func clampUnit(v float64) float64 {
	return math.Max(-1, math.Min(v, 1))
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
