package iocache

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/repometrics/internal/parquet"
	"github.com/huangsam/repometrics/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord(fullName string, stars int) schema.MetricRecord {
	return schema.MetricRecord{
		Repository:    schema.Repository{Name: filepath.Base(fullName), FullName: fullName, Stars: stars, Forks: 3, AgeYears: 4.25, SizeKB: 2048},
		LOC:           20480,
		Comments:      3000,
		ReleasesCount: 12,
		CBO:           6.5,
		DIT:           2.1,
		LCOM:          0.42,
		WMC:           31,
		RFC:           20,
		LCOM3:         0.4,
		CA:            4,
		CE:            5,
		NPM:           9,
	}
}

func sampleCorrelation(process, quality string) schema.CorrelationResult {
	return schema.CorrelationResult{
		MetricPair: schema.MetricPair{Process: process, Quality: quality},
		Samples:    30,
		Pearson:    schema.Coefficient{Coefficient: 0.31, PValue: 0.09},
		Spearman:   schema.Coefficient{Coefficient: 0.44, PValue: 0.01},
	}
}

func TestAnalysisStore_NoneBackend(t *testing.T) {
	store, err := NewAnalysisStore(schema.NoneBackend, "")
	require.NoError(t, err)
	require.NotNil(t, store)

	analysisID, err := store.BeginAnalysis("uuid", time.Now(), map[string]any{"test": "value"})
	assert.NoError(t, err)
	assert.Equal(t, int64(0), analysisID)

	assert.NoError(t, store.EndAnalysis(1, time.Now(), 10, 5, 2))
	assert.NoError(t, store.RecordMetricRecord(1, sampleRecord("a/b", 1)))
	assert.NoError(t, store.RecordCorrelation(1, sampleCorrelation("stars", "cbo")))

	runs, err := store.GetAllAnalysisRuns()
	assert.NoError(t, err)
	assert.Nil(t, runs)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.False(t, status.Connected)

	assert.NoError(t, store.Close())
}

func TestAnalysisStore_SQLiteLifecycle(t *testing.T) {
	store, err := NewAnalysisStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	startTime := time.Now().Add(-2 * time.Second)
	configParams := map[string]any{"query": "language:java", "population": 1000}
	analysisID, err := store.BeginAnalysis("run-1", startTime, configParams)
	require.NoError(t, err)
	assert.Greater(t, analysisID, int64(0))

	require.NoError(t, store.RecordMetricRecord(analysisID, sampleRecord("acme/zeta", 50)))
	require.NoError(t, store.RecordMetricRecord(analysisID, sampleRecord("acme/alpha", 900)))
	require.NoError(t, store.RecordCorrelation(analysisID, sampleCorrelation("stars", "cbo")))

	// The same repository cannot be stored twice in one run
	assert.Error(t, store.RecordMetricRecord(analysisID, sampleRecord("acme/alpha", 900)))

	require.NoError(t, store.EndAnalysis(analysisID, startTime.Add(1500*time.Millisecond), 1000, 2, 1))

	runs, err := store.GetAllAnalysisRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	run := runs[0]
	assert.Equal(t, analysisID, run.AnalysisID)
	assert.Equal(t, "run-1", run.RunUUID)
	assert.True(t, startTime.Equal(run.StartTime))
	require.NotNil(t, run.EndTime)
	require.NotNil(t, run.RunDurationMs)
	assert.Equal(t, int64(1500), *run.RunDurationMs)
	require.NotNil(t, run.PopulationSize)
	assert.Equal(t, int64(1000), *run.PopulationSize)
	require.NotNil(t, run.SubsetSize)
	assert.Equal(t, int64(2), *run.SubsetSize)
	require.NotNil(t, run.CorrelationsCount)
	assert.Equal(t, int64(1), *run.CorrelationsCount)
	require.NotNil(t, run.ConfigParams)
	assert.JSONEq(t, `{"query":"language:java","population":1000}`, *run.ConfigParams)

	metrics, err := store.GetAllMetricRecords()
	require.NoError(t, err)
	require.Len(t, metrics, 2)
	assert.Equal(t, "acme/alpha", metrics[0].FullName, "ordered by full name")
	assert.Equal(t, "alpha", metrics[0].RepoName)
	assert.Equal(t, int64(900), metrics[0].Stars)
	assert.InDelta(t, 6.5, metrics[0].CBO, 1e-12)
	assert.Equal(t, int64(9), metrics[0].NPM)

	correlations, err := store.GetAllCorrelations()
	require.NoError(t, err)
	require.Len(t, correlations, 1)
	assert.Equal(t, "stars", correlations[0].ProcessMetric)
	assert.InDelta(t, 0.44, correlations[0].SpearmanR, 1e-12)
}

func TestAnalysisStore_UnfinishedRun(t *testing.T) {
	store, err := NewAnalysisStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	_, err = store.BeginAnalysis("open", time.Now(), nil)
	require.NoError(t, err)

	runs, err := store.GetAllAnalysisRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Nil(t, runs[0].EndTime)
	assert.Nil(t, runs[0].RunDurationMs)
	assert.Nil(t, runs[0].PopulationSize)

	assert.Error(t, store.EndAnalysis(999, time.Now(), 1, 1, 1), "unknown run id")
}

func TestAnalysisStore_Status(t *testing.T) {
	store, err := NewAnalysisStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 0, status.TotalRuns)
	assert.Len(t, status.TableSizes, 3)

	first := time.Now().Add(-time.Hour)
	for i, id := range []string{"first", "second", "third"} {
		analysisID, err := store.BeginAnalysis(id, first.Add(time.Duration(i)*time.Minute), map[string]any{"run": i})
		require.NoError(t, err)
		require.NoError(t, store.RecordMetricRecord(analysisID, sampleRecord("acme/repo", 10)))
	}

	status, err = store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 3, status.TotalRuns)
	assert.Equal(t, "third", status.LastRunUUID)
	assert.True(t, first.Equal(status.OldestRunTime))
	assert.True(t, first.Add(2*time.Minute).Equal(status.LastRunTime))
	assert.Equal(t, 3, status.TotalRepositoriesStored)
	assert.Equal(t, int64(3), status.TableSizes[analysisRunsTable])
	assert.Equal(t, int64(0), status.TableSizes[correlationsTable])

	var buf bytes.Buffer
	PrintAnalysisStatus(&buf, status)
	assert.Contains(t, buf.String(), "Total Runs: 3")
	assert.Contains(t, buf.String(), "(third)")
	assert.Contains(t, buf.String(), "repometrics_repository_metrics: 3 rows")
}

func TestExecuteAnalysisExport(t *testing.T) {
	store, err := NewAnalysisStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	var buf bytes.Buffer
	prefix := filepath.Join(t.TempDir(), "export")

	assert.ErrorContains(t, ExecuteAnalysisExport(&buf, store, ""), "--output-file is required")
	assert.ErrorContains(t, ExecuteAnalysisExport(&buf, nil, prefix), "not configured")
	assert.ErrorContains(t, ExecuteAnalysisExport(&buf, store, prefix), "no analysis data")

	analysisID, err := store.BeginAnalysis("export-run", time.Now(), map[string]any{})
	require.NoError(t, err)
	require.NoError(t, store.RecordMetricRecord(analysisID, sampleRecord("acme/one", 1)))
	require.NoError(t, store.RecordMetricRecord(analysisID, sampleRecord("acme/two", 2)))
	require.NoError(t, store.RecordCorrelation(analysisID, sampleCorrelation("loc", "wmc")))
	require.NoError(t, store.EndAnalysis(analysisID, time.Now(), 2, 2, 1))

	require.NoError(t, ExecuteAnalysisExport(&buf, store, prefix))
	assert.Contains(t, buf.String(), "Exported 2 repository records")

	runs, err := parquet.ReadFile[parquet.AnalysisRun](prefix + ".analysis_runs.parquet")
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "export-run", runs[0].RunUUID)

	metrics, err := parquet.ReadFile[parquet.RepositoryMetrics](prefix + ".repository_metrics.parquet")
	require.NoError(t, err)
	assert.Len(t, metrics, 2)

	correlations, err := parquet.ReadFile[parquet.Correlation](prefix + ".correlations.parquet")
	require.NoError(t, err)
	require.Len(t, correlations, 1)
	assert.Equal(t, "wmc", correlations[0].QualityMetric)
}
