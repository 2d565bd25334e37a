package core

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/repometrics/internal/contract"
	"github.com/huangsam/repometrics/internal/logger"
	"github.com/huangsam/repometrics/schema"
)

// currentCacheVersion defines the version of the cached page layout
const currentCacheVersion = 1

// cachedSearchClient serves search pages from the cache store when a fresh entry exists.
type cachedSearchClient struct {
	next    contract.SearchClient
	store   contract.CacheStore
	baseURL string
	ttl     time.Duration
	now     func() time.Time
	log     *logger.Logger
	lastHit bool
}

var (
	_ contract.SearchClient  = &cachedSearchClient{} // Compile-time check
	_ contract.CacheReporter = &cachedSearchClient{} // Compile-time check
)

// withSearchCache wraps next with the cache store of mgr. Without a store or
// with a zero TTL the client is returned unchanged.
func withSearchCache(next contract.SearchClient, mgr contract.CacheManager, cfg *contract.Config, log *logger.Logger) contract.SearchClient {
	if mgr == nil || cfg.CacheTTL <= 0 {
		return next
	}
	store := mgr.GetSearchStore()
	if store == nil {
		return next
	}
	return &cachedSearchClient{
		next:    next,
		store:   store,
		baseURL: cfg.APIURL,
		ttl:     cfg.CacheTTL,
		now:     time.Now,
		log:     log,
	}
}

// SearchPage implements contract.SearchClient.
func (c *cachedSearchClient) SearchPage(ctx context.Context, query schema.SearchQuery, page, perPage int) ([]json.RawMessage, error) {
	key := c.cacheKey(query, page, perPage)
	c.lastHit = false

	// Check for cache hit
	if items, ok := c.checkCacheHit(key); ok {
		c.log.Debug("search page served from cache", "page", page)
		c.lastHit = true
		return items, nil
	}

	// Cache miss: fetch and store
	items, err := c.next.SearchPage(ctx, query, page, perPage)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(items); err == nil {
		if err := c.store.Set(key, data, currentCacheVersion, c.now().Unix()); err != nil {
			c.log.Warn("failed to cache search page", "page", page, "error", err)
		}
	}
	return items, nil
}

// ServedFromCache implements contract.CacheReporter.
func (c *cachedSearchClient) ServedFromCache() bool {
	return c.lastHit
}

// checkCacheHit attempts to retrieve and validate a cached page
func (c *cachedSearchClient) checkCacheHit(key string) ([]json.RawMessage, bool) {
	data, version, ts, err := c.store.Get(key)
	if err != nil || data == nil {
		return nil, false // Cache miss
	}

	// Validate version and staleness
	if version != currentCacheVersion || c.now().Sub(time.Unix(ts, 0)) > c.ttl {
		return nil, false
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, false
	}
	if items == nil {
		items = []json.RawMessage{}
	}
	return items, true
}

// cacheKey creates a unique key for one page of one query against one API
func (c *cachedSearchClient) cacheKey(query schema.SearchQuery, page, perPage int) string {
	key := fmt.Sprintf("%s:%s:%s:%s:%d:%d",
		c.baseURL,
		query.Predicate,
		query.Sort,
		query.Order,
		page,
		perPage,
	)
	return fmt.Sprintf("%x", sha256.Sum256([]byte(key)))
}
