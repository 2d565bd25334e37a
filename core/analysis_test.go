package core

import (
	"errors"
	"testing"
	"time"

	"github.com/huangsam/repometrics/internal/iocache"
	"github.com/huangsam/repometrics/internal/logger"
	"github.com/huangsam/repometrics/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func trackedDataset() *schema.Dataset {
	return &schema.Dataset{
		Repositories: []schema.Repository{{FullName: "a/a"}, {FullName: "b/b"}, {FullName: "c/c"}},
		Table: schema.NewTable([]schema.MetricRecord{
			{Repository: schema.Repository{FullName: "a/a"}},
			{Repository: schema.Repository{FullName: "b/b"}},
		}),
		Correlations: schema.CorrelationMatrix{
			{MetricPair: schema.MetricPair{Process: schema.ColStars, Quality: schema.ColCBO}, Samples: 2},
		},
	}
}

func TestConfigParams(t *testing.T) {
	cfg := testConfig(t, "https://api.github.com")
	params := configParams(cfg, 99)
	assert.Equal(t, "language:java", params["query"])
	assert.Equal(t, "stars", params["sort"])
	assert.Equal(t, "desc", params["order"])
	assert.Equal(t, 6, params["population"])
	assert.Equal(t, 4, params["subset"])
	assert.Equal(t, uint64(99), params["seed"])
	assert.Equal(t, schema.DefaultQualityMetrics, params["quality_metrics"])
	assert.Equal(t, "https://api.github.com", params["api_url"])
}

func TestBeginTracking_NoStore(t *testing.T) {
	tracker := beginTracking(nil, testConfig(t, ""), 1, logger.NewNop())
	assert.NotEmpty(t, tracker.uuid)
	assert.Nil(t, tracker.store)
	tracker.finish(trackedDataset()) // inert
}

func TestTracker_RecordsEverything(t *testing.T) {
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	store := &iocache.MockAnalysisStore{}
	store.On("BeginAnalysis", mock.AnythingOfType("string"), mock.AnythingOfType("time.Time"), mock.Anything).Return(int64(3), nil).Once()
	store.On("RecordMetricRecord", int64(3), mock.Anything).Return(nil).Twice()
	store.On("RecordCorrelation", int64(3), mock.Anything).Return(nil).Once()
	store.On("EndAnalysis", int64(3), at, 3, 2, 1).Return(nil).Once()

	mgr := &iocache.MockCacheManager{}
	mgr.On("GetAnalysisStore").Return(store)

	tracker := beginTracking(mgr, testConfig(t, ""), 1, logger.NewNop())
	assert.Equal(t, int64(3), tracker.id)
	tracker.now = func() time.Time { return at }
	tracker.finish(trackedDataset())
	store.AssertExpectations(t)
}

func TestTracker_StopsAtFirstRecordFailure(t *testing.T) {
	store := &iocache.MockAnalysisStore{}
	store.On("RecordMetricRecord", int64(5), mock.Anything).Return(errors.New("constraint failed")).Once()
	store.On("RecordCorrelation", int64(5), mock.Anything).Return(nil).Once()
	store.On("EndAnalysis", int64(5), mock.Anything, 3, 2, 1).Return(errors.New("gone")).Once()

	tracker := &analysisTracker{store: store, id: 5, uuid: "x", now: time.Now, log: logger.NewNop()}
	tracker.finish(trackedDataset())
	store.AssertExpectations(t)
	store.AssertNumberOfCalls(t, "RecordMetricRecord", 1)
}

func TestTracker_AbortClosesRun(t *testing.T) {
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	store := &iocache.MockAnalysisStore{}
	store.On("EndAnalysis", int64(9), at, 0, 0, 0).Return(nil).Once()

	tracker := &analysisTracker{store: store, id: 9, uuid: "x", now: func() time.Time { return at }, log: logger.NewNop()}
	tracker.abort(errors.New("retries exhausted"))
	store.AssertExpectations(t)
	store.AssertNotCalled(t, "RecordMetricRecord", mock.Anything, mock.Anything)

	// inert without a store
	(&analysisTracker{uuid: "y", now: time.Now, log: logger.NewNop()}).abort(errors.New("boom"))
}
