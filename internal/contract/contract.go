// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"encoding/json"
	"time"

	"github.com/huangsam/repometrics/schema"
)

// SearchClient fetches one page of repository search results.
// This allows the pager to be tested without a real forge API.
type SearchClient interface {
	// SearchPage returns the raw items of the requested page, in API order.
	// Errors are classified as *TransportError, *RateLimitError or *APIError.
	SearchPage(ctx context.Context, query schema.SearchQuery, page, perPage int) ([]json.RawMessage, error)
}

// CacheReporter is implemented by search clients that can serve pages
// without a network request. The pager skips pacing after such pages.
type CacheReporter interface {
	// ServedFromCache reports whether the last successful SearchPage call
	// was answered from the cache.
	ServedFromCache() bool
}

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetSearchStore() CacheStore
	GetAnalysisStore() AnalysisStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// AnalysisStore defines the interface for tracking analysis runs and storing their outputs.
type AnalysisStore interface {
	// BeginAnalysis creates a new analysis run and returns its unique ID
	BeginAnalysis(runUUID string, startTime time.Time, configParams map[string]any) (int64, error)

	// EndAnalysis updates the analysis run with completion data
	EndAnalysis(analysisID int64, endTime time.Time, populationSize, subsetSize, correlations int) error

	// RecordMetricRecord stores one row of the metric table
	RecordMetricRecord(analysisID int64, record schema.MetricRecord) error

	// RecordCorrelation stores one correlation result
	RecordCorrelation(analysisID int64, result schema.CorrelationResult) error

	// GetStatus returns status information about the analysis store
	GetStatus() (schema.AnalysisStatus, error)

	// GetAllAnalysisRuns returns every stored run
	GetAllAnalysisRuns() ([]schema.AnalysisRunRecord, error)

	// GetAllMetricRecords returns every stored metric row
	GetAllMetricRecords() ([]schema.MetricRecordRow, error)

	// GetAllCorrelations returns every stored correlation row
	GetAllCorrelations() ([]schema.CorrelationRow, error)

	// Close closes the underlying connection
	Close() error
}
