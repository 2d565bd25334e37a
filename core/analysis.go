package core

import (
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/repometrics/internal/contract"
	"github.com/huangsam/repometrics/internal/logger"
	"github.com/huangsam/repometrics/schema"
)

// analysisTracker records one analysis run in the analysis store. A tracker
// without a store only carries the run UUID.
type analysisTracker struct {
	store contract.AnalysisStore
	id    int64
	uuid  string
	now   func() time.Time
	log   *logger.Logger
}

// beginTracking opens a run record when the manager has an analysis store.
// A failing store is logged and leaves the tracker inert.
func beginTracking(mgr contract.CacheManager, cfg *contract.Config, seed uint64, log *logger.Logger) *analysisTracker {
	t := &analysisTracker{uuid: uuid.NewString(), now: time.Now, log: log}
	if mgr == nil {
		return t
	}
	store := mgr.GetAnalysisStore()
	if store == nil {
		return t
	}
	id, err := store.BeginAnalysis(t.uuid, t.now(), configParams(cfg, seed))
	if err != nil {
		log.Warn("analysis tracking initialization failed", "run_uuid", t.uuid, "error", err)
		return t
	}
	t.store, t.id = store, id
	return t
}

// configParams is the run configuration stored alongside each run.
func configParams(cfg *contract.Config, seed uint64) map[string]any {
	return map[string]any{
		"query":           cfg.Query.Predicate,
		"sort":            cfg.Query.Sort,
		"order":           cfg.Query.Order,
		"population":      cfg.Population,
		"subset":          cfg.Subset,
		"seed":            seed,
		"page_size":       cfg.PageSize,
		"process_metrics": cfg.ProcessMetrics,
		"quality_metrics": cfg.QualityMetrics,
		"api_url":         cfg.APIURL,
	}
}

// finish stores the metric table and the correlations of ds and closes the
// run record. Recording stops at the first failure of each kind.
func (t *analysisTracker) finish(ds *schema.Dataset) {
	if t.store == nil {
		return
	}
	subset := 0
	if ds.Table != nil {
		subset = ds.Table.Len()
		for _, rec := range ds.Table.Records {
			if err := t.store.RecordMetricRecord(t.id, rec); err != nil {
				t.log.Warn("failed to record metric row", "full_name", rec.FullName, "error", err)
				break
			}
		}
	}
	for _, res := range ds.Correlations {
		if err := t.store.RecordCorrelation(t.id, res); err != nil {
			t.log.Warn("failed to record correlation", "process", res.Process, "quality", res.Quality, "error", err)
			break
		}
	}
	if err := t.store.EndAnalysis(t.id, t.now(), len(ds.Repositories), subset, len(ds.Correlations)); err != nil {
		t.log.Warn("failed to finalize analysis tracking", "analysis_id", t.id, "error", err)
	}
}

// abort closes the run record of a failed run with zero counts.
func (t *analysisTracker) abort(cause error) {
	if t.store == nil {
		return
	}
	t.log.Warn("analysis run failed", "run_uuid", t.uuid, "error", cause)
	if err := t.store.EndAnalysis(t.id, t.now(), 0, 0, 0); err != nil {
		t.log.Warn("failed to finalize analysis tracking", "analysis_id", t.id, "error", err)
	}
}
