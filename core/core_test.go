package core

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/huangsam/repometrics/internal/chart"
	"github.com/huangsam/repometrics/internal/iocache"
	"github.com/huangsam/repometrics/internal/outwriter"
	"github.com/huangsam/repometrics/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// untrackedManager has neither a search store nor an analysis store.
func untrackedManager() *iocache.MockCacheManager {
	mgr := &iocache.MockCacheManager{}
	mgr.On("GetSearchStore").Return(nil).Maybe()
	mgr.On("GetAnalysisStore").Return(nil).Maybe()
	return mgr
}

func TestExecuteCollect(t *testing.T) {
	server := newSearchServer(t, fixtureItems(8))
	cfg := testConfig(t, server.URL)
	cfg.Output = schema.JSONOut
	cfg.OutputFile = filepath.Join(t.TempDir(), "repos.json")

	ctx := WithSuppressHeader(context.Background())
	require.NoError(t, ExecuteCollect(ctx, cfg, untrackedManager()))

	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	var repos []schema.Repository
	require.NoError(t, json.Unmarshal(data, &repos))
	require.Len(t, repos, 6)
	assert.Equal(t, "org/repo-00", repos[0].FullName)
	assert.Equal(t, "Java", repos[0].Language)
}

func TestExecuteCollect_APIFailure(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:1")
	err := ExecuteCollect(WithSuppressHeader(context.Background()), cfg, untrackedManager())
	assert.Error(t, err)
}

func TestExecuteAnalyze_WritesArtifacts(t *testing.T) {
	server := newSearchServer(t, fixtureItems(6))
	cfg := testConfig(t, server.URL)
	cfg.OutputFile = filepath.Join(t.TempDir(), "correlations.txt")

	require.NoError(t, ExecuteAnalyze(WithSuppressHeader(context.Background()), cfg, untrackedManager()))

	for _, name := range []string{
		outwriter.CollectionFileName + ".csv",
		outwriter.AnalysisFileName + ".csv",
		outwriter.CKFileName + ".csv",
		outwriter.CorrelationsFileName + ".csv",
	} {
		assert.FileExists(t, filepath.Join(cfg.DatasetDir, name))
	}
	assert.FileExists(t, filepath.Join(cfg.OutputDir, chart.PopularityFileName))
	assert.FileExists(t, filepath.Join(cfg.OutputDir, chart.CBOQualityFileName))
	assert.FileExists(t, filepath.Join(cfg.OutputDir, outwriter.ReportFileName))

	out, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	assert.Contains(t, string(out), "over 4 repositories")
	assert.Contains(t, string(out), "seed 42")
}

func TestExecuteAnalyze_WithoutCharts(t *testing.T) {
	server := newSearchServer(t, fixtureItems(6))
	cfg := testConfig(t, server.URL)
	cfg.Charts = false
	cfg.Output = schema.JSONOut
	cfg.OutputFile = filepath.Join(t.TempDir(), "correlations.json")

	require.NoError(t, ExecuteAnalyze(WithSuppressHeader(context.Background()), cfg, untrackedManager()))
	assert.NoFileExists(t, filepath.Join(cfg.OutputDir, chart.PopularityFileName))
	assert.FileExists(t, filepath.Join(cfg.OutputDir, outwriter.ReportFileName))
	assert.FileExists(t, filepath.Join(cfg.DatasetDir, outwriter.AnalysisFileName+".json"))

	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	var payload map[string]any
	require.NoError(t, json.Unmarshal(data, &payload))
	assert.EqualValues(t, 42, payload["seed"])
	assert.EqualValues(t, 6, payload["collected"])
	assert.EqualValues(t, 4, payload["analyzed"])
}

func TestExecuteMetrics(t *testing.T) {
	out := filepath.Join(t.TempDir(), "metrics.csv")
	c := testConfig(t, "")
	c.Output = schema.CSVOut
	c.OutputFile = out
	require.NoError(t, ExecuteMetrics(context.Background(), c, nil))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "cbo")
	assert.Contains(t, string(data), "npm")
}

func TestGetAnalyzeResults_TracksRun(t *testing.T) {
	server := newSearchServer(t, fixtureItems(6))
	cfg := testConfig(t, server.URL)

	store := &iocache.MockAnalysisStore{}
	store.On("BeginAnalysis", mock.AnythingOfType("string"), mock.AnythingOfType("time.Time"), mock.MatchedBy(func(p map[string]any) bool {
		return p["query"] == "language:java" && p["seed"] == uint64(42) && p["subset"] == 4
	})).Return(int64(7), nil).Once()
	store.On("RecordMetricRecord", int64(7), mock.AnythingOfType("schema.MetricRecord")).Return(nil).Times(4)
	store.On("RecordCorrelation", int64(7), mock.AnythingOfType("schema.CorrelationResult")).Return(nil)
	store.On("EndAnalysis", int64(7), mock.AnythingOfType("time.Time"), 6, 4, mock.AnythingOfType("int")).Return(nil).Once()

	mgr := &iocache.MockCacheManager{}
	mgr.On("GetSearchStore").Return(nil).Maybe()
	mgr.On("GetAnalysisStore").Return(store)

	ds, _, err := GetAnalyzeResults(WithSuppressHeader(context.Background()), cfg, mgr)
	require.NoError(t, err)

	_, err = uuid.Parse(ds.RunUUID)
	assert.NoError(t, err)
	assert.Equal(t, uint64(42), ds.Seed)
	assert.Equal(t, 4, ds.Table.Len())
	store.AssertExpectations(t)
	store.AssertNumberOfCalls(t, "RecordCorrelation", len(ds.Correlations))
	store.AssertCalled(t, "BeginAnalysis", ds.RunUUID, mock.Anything, mock.Anything)
}

func TestGetAnalyzeResults_TrackingFailureIsNotFatal(t *testing.T) {
	server := newSearchServer(t, fixtureItems(6))
	cfg := testConfig(t, server.URL)

	store := &iocache.MockAnalysisStore{}
	store.On("BeginAnalysis", mock.Anything, mock.Anything, mock.Anything).Return(int64(0), errors.New("database is locked"))
	mgr := &iocache.MockCacheManager{}
	mgr.On("GetSearchStore").Return(nil).Maybe()
	mgr.On("GetAnalysisStore").Return(store)

	ds, _, err := GetAnalyzeResults(WithSuppressHeader(context.Background()), cfg, mgr)
	require.NoError(t, err)
	assert.NotEmpty(t, ds.RunUUID)
	store.AssertNotCalled(t, "RecordMetricRecord", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "EndAnalysis", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGetAnalyzeResults_FailedRunIsClosed(t *testing.T) {
	server := newSearchServer(t, fixtureItems(6))
	cfg := testConfig(t, server.URL)

	store := &iocache.MockAnalysisStore{}
	store.On("BeginAnalysis", mock.Anything, mock.Anything, mock.Anything).Return(int64(11), nil).Once()
	store.On("EndAnalysis", int64(11), mock.AnythingOfType("time.Time"), 0, 0, 0).Return(nil).Once()
	mgr := &iocache.MockCacheManager{}
	mgr.On("GetSearchStore").Return(nil).Maybe()
	mgr.On("GetAnalysisStore").Return(store)

	ctx, cancel := context.WithCancel(WithSuppressHeader(context.Background()))
	cancel()
	ds, _, err := GetAnalyzeResults(ctx, cfg, mgr)
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, ds)
	store.AssertExpectations(t)
	store.AssertNotCalled(t, "RecordMetricRecord", mock.Anything, mock.Anything)
}

func TestGetAnalyzeResults_SameSeedSameMetrics(t *testing.T) {
	server := newSearchServer(t, fixtureItems(6))
	ctx := WithSuppressHeader(context.Background())

	first, _, err := GetAnalyzeResults(ctx, testConfig(t, server.URL), untrackedManager())
	require.NoError(t, err)
	second, _, err := GetAnalyzeResults(ctx, testConfig(t, server.URL), untrackedManager())
	require.NoError(t, err)

	assert.NotEqual(t, first.RunUUID, second.RunUUID)
	assert.Equal(t, first.Correlations, second.Correlations)
}
