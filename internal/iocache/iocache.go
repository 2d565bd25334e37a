// Package iocache persists search pages and analysis runs to SQL backends.
package iocache

import (
	"sync"

	"github.com/huangsam/repometrics/internal/contract"
)

// CacheStoreManager manages the search cache and the analysis store.
type CacheStoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	search       contract.CacheStore
	analysis     contract.AnalysisStore
}

var _ contract.CacheManager = &CacheStoreManager{} // Compile-time check

// NewCacheStoreManager returns a manager over already opened stores.
// Either store may be nil.
func NewCacheStoreManager(search contract.CacheStore, analysis contract.AnalysisStore) *CacheStoreManager {
	return &CacheStoreManager{search: search, analysis: analysis}
}

// GetSearchStore returns the search page CacheStore.
func (mgr *CacheStoreManager) GetSearchStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.search
}

// GetAnalysisStore returns the AnalysisStore.
func (mgr *CacheStoreManager) GetAnalysisStore() contract.AnalysisStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.analysis
}
