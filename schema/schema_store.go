package schema

import "time"

// AnalysisRunRecord represents a row from the analysis runs table.
type AnalysisRunRecord struct {
	AnalysisID        int64
	RunUUID           string
	StartTime         time.Time
	EndTime           *time.Time
	RunDurationMs     *int64
	PopulationSize    *int64
	SubsetSize        *int64
	CorrelationsCount *int64
	ConfigParams      *string
}

// MetricRecordRow represents a row from the repository metrics table.
type MetricRecordRow struct {
	AnalysisID    int64
	FullName      string
	RepoName      string
	Stars         int64
	Forks         int64
	AgeYears      float64
	SizeKB        int64
	LOC           int64
	Comments      int64
	ReleasesCount int64
	CBO           float64
	DIT           float64
	LCOM          float64
	WMC           int64
	RFC           int64
	LCOM3         float64
	CA            int64
	CE            int64
	NPM           int64
}

// CorrelationRow represents a row from the correlations table.
type CorrelationRow struct {
	AnalysisID    int64
	ProcessMetric string
	QualityMetric string
	Samples       int64
	PearsonR      float64
	PearsonP      float64
	SpearmanR     float64
	SpearmanP     float64
}

// NewMetricRecordRow flattens a metric record for storage.
func NewMetricRecordRow(analysisID int64, r MetricRecord) MetricRecordRow {
	return MetricRecordRow{
		AnalysisID:    analysisID,
		FullName:      r.FullName,
		RepoName:      r.Name,
		Stars:         int64(r.Stars),
		Forks:         int64(r.Forks),
		AgeYears:      r.AgeYears,
		SizeKB:        int64(r.SizeKB),
		LOC:           int64(r.LOC),
		Comments:      int64(r.Comments),
		ReleasesCount: int64(r.ReleasesCount),
		CBO:           r.CBO,
		DIT:           r.DIT,
		LCOM:          r.LCOM,
		WMC:           int64(r.WMC),
		RFC:           int64(r.RFC),
		LCOM3:         r.LCOM3,
		CA:            int64(r.CA),
		CE:            int64(r.CE),
		NPM:           int64(r.NPM),
	}
}

// NewCorrelationRow flattens a correlation result for storage.
func NewCorrelationRow(analysisID int64, r CorrelationResult) CorrelationRow {
	return CorrelationRow{
		AnalysisID:    analysisID,
		ProcessMetric: r.Process,
		QualityMetric: r.Quality,
		Samples:       int64(r.Samples),
		PearsonR:      r.Pearson.Coefficient,
		PearsonP:      r.Pearson.PValue,
		SpearmanR:     r.Spearman.Coefficient,
		SpearmanP:     r.Spearman.PValue,
	}
}
