// Package synth derives proxy process and CK quality metrics from repository attributes.
package synth

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/huangsam/repometrics/schema"
	"gonum.org/v1/gonum/stat/distuv"
)

// Normalization caps shared by every quality formula.
const (
	complexityDivisor = 50000.0
	complexityCap     = 3.0
	popularityDivisor = 10000.0
	popularityCap     = 5.0
)

// RandomSource draws uniform values in [lo, hi].
type RandomSource interface {
	Uniform(lo, hi float64) float64
}

// seededSource draws from a PCG stream through gonum's uniform distribution.
type seededSource struct {
	src rand.Source
}

// NewSeededSource returns a reproducible source. Two sources with the same seed
// produce the same sequence.
func NewSeededSource(seed uint64) RandomSource {
	return &seededSource{src: rand.NewPCG(seed, seed)}
}

// NewSourceFromSeed returns a seeded source, picking a time-based seed when seed is 0.
// The seed actually used is returned so a run can be reproduced.
func NewSourceFromSeed(seed uint64) (RandomSource, uint64) {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return NewSeededSource(seed), seed
}

func (s *seededSource) Uniform(lo, hi float64) float64 {
	return distuv.Uniform{Min: lo, Max: hi, Src: s.src}.Rand()
}

// Synthesizer builds metric records. It is not safe for concurrent use
// because the random source is shared.
type Synthesizer struct {
	src RandomSource
}

// New returns a synthesizer drawing from src.
func New(src RandomSource) *Synthesizer {
	return &Synthesizer{src: src}
}

// Synthesize derives every metric for one repository. Draws happen in a fixed
// order (loc, comments, releases, cbo, dit, lcom, wmc, rfc, lcom3, ca, ce, npm)
// so a scripted source maps one value to each metric.
func (s *Synthesizer) Synthesize(repo schema.Repository) schema.MetricRecord {
	u := s.src.Uniform
	rec := schema.MetricRecord{Repository: repo}

	rec.LOC = max(0, roundInt(float64(repo.SizeKB)*u(8, 15)))
	rec.Comments = max(0, roundInt(float64(rec.LOC)*u(0.05, 0.20)))
	rec.ReleasesCount = max(0, roundInt(repo.AgeYears*u(2, 8)))

	complexity := math.Min(float64(rec.LOC)/complexityDivisor, complexityCap)
	popularity := math.Min(float64(repo.Stars)/popularityDivisor, popularityCap)

	rec.CBO = round(clamp(2+4*complexity+0.5*popularity+u(-2, 2), 1, 25), 2)
	rec.DIT = round(clamp(1+2*complexity+0.3*repo.AgeYears+u(-0.5, 0.5), 0, 8), 2)
	lcom := clamp(0.2+0.3*complexity+u(-0.1, 0.1), 0, 1)
	rec.LCOM = round(lcom, 3)
	rec.WMC = max(1, roundInt(10+30*complexity+5*popularity+u(-5, 10)))
	rec.RFC = max(1, roundInt(5+25*complexity+u(-3, 8)))
	// lcom3 perturbs the unrounded lcom
	rec.LCOM3 = round(clamp(lcom+u(-0.05, 0.05), 0, 1), 3)
	rec.CA = max(0, roundInt(1+8*complexity+2*popularity+u(-2, 3)))
	rec.CE = max(0, roundInt(1+12*complexity+u(-3, 4)))
	rec.NPM = max(0, roundInt(3+15*complexity+u(-2, 5)))
	return rec
}

// SynthesizeAll builds the metric table for repos, keeping their order.
func (s *Synthesizer) SynthesizeAll(repos []schema.Repository) *schema.Table {
	records := make([]schema.MetricRecord, len(repos))
	for i, repo := range repos {
		records[i] = s.Synthesize(repo)
	}
	return schema.NewTable(records)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}

func round(v float64, digits int) float64 {
	p := math.Pow(10, float64(digits))
	return math.Round(v*p) / p
}

func roundInt(v float64) int {
	return int(math.Round(v))
}
