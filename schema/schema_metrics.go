package schema

import "math"

// MetricKind tells process metrics apart from quality metrics.
type MetricKind string

// Metric kinds.
const (
	ProcessKind MetricKind = "process"
	QualityKind MetricKind = "quality"
)

// MetricFactorNotes explains the shared drivers used in the metric formulas.
const MetricFactorNotes = "cf = min(loc / 50000, 3.0); pf = min(stars / 10000, 5.0)"

// MetricDefinition describes how a single metric column is derived.
type MetricDefinition struct {
	Name        string     `json:"name"`
	Kind        MetricKind `json:"kind"`
	Description string     `json:"description"`
	Formula     string     `json:"formula"`
	Bounds      string     `json:"bounds"`
}

// MetricsRenderModel contains all data needed for displaying metric definitions.
type MetricsRenderModel struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Metrics     []MetricDefinition `json:"metrics"`
}

// Bucket is a right-closed interval (Lower, Upper] with a display label.
// An Upper of +Inf means unbounded.
type Bucket struct {
	Label string  `json:"label"`
	Lower float64 `json:"-"`
	Upper float64 `json:"-"`
}

// BucketCount is the number of values that fell inside one bucket.
type BucketCount struct {
	Bucket
	Count int `json:"count"`
}

// PopularityBuckets groups repositories by star count.
var PopularityBuckets = []Bucket{
	{Label: "Low (<=100)", Lower: 0, Upper: 100},
	{Label: "Medium (101-1K)", Lower: 100, Upper: 1000},
	{Label: "High (1K-10K)", Lower: 1000, Upper: 10000},
	{Label: "Very High (>10K)", Lower: 10000, Upper: math.Inf(1)},
}

// CBOBuckets groups repositories by coupling level.
var CBOBuckets = []Bucket{
	{Label: "Excellent (<=5)", Lower: 0, Upper: 5},
	{Label: "Good (6-10)", Lower: 5, Upper: 10},
	{Label: "Fair (11-15)", Lower: 10, Upper: 15},
	{Label: "Poor (>15)", Lower: 15, Upper: math.Inf(1)},
}

// Contains reports whether v lies in (Lower, Upper].
func (b Bucket) Contains(v float64) bool {
	return v > b.Lower && v <= b.Upper
}

// FindBucket returns the index of the bucket containing v, or -1.
func FindBucket(buckets []Bucket, v float64) int {
	for i, b := range buckets {
		if b.Contains(v) {
			return i
		}
	}
	return -1
}
