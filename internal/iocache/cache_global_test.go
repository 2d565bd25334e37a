package iocache

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/huangsam/repometrics/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetGlobals restores the package-level manager between tests.
func resetGlobals(t *testing.T) {
	t.Helper()
	CloseStores()
	Manager = &CacheStoreManager{}
	initOnce = sync.Once{}
	closeOnce = sync.Once{}
}

func TestInitStores(t *testing.T) {
	resetGlobals(t)
	t.Cleanup(func() { resetGlobals(t) })

	dir := t.TempDir()
	cachePath := filepath.Join(dir, "cache.db")
	analysisPath := filepath.Join(dir, "analysis.db")

	require.NoError(t, InitStores(schema.SQLiteBackend, cachePath, schema.SQLiteBackend, analysisPath))
	require.NotNil(t, Manager.GetSearchStore())
	require.NotNil(t, Manager.GetAnalysisStore())

	require.NoError(t, Manager.GetSearchStore().Set("k", []byte("v"), 1, 10))
	assert.FileExists(t, cachePath)
	assert.FileExists(t, analysisPath)

	// Only the first initialization takes effect
	require.NoError(t, InitStores(schema.NoneBackend, "", "", ""))
	data, _, _, err := Manager.GetSearchStore().Get("k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), data)
}

func TestInitStores_DisabledAnalysis(t *testing.T) {
	resetGlobals(t)
	t.Cleanup(func() { resetGlobals(t) })

	require.NoError(t, InitStores(schema.NoneBackend, "", "", ""))
	assert.NotNil(t, Manager.GetSearchStore())
	assert.Nil(t, Manager.GetAnalysisStore())
}

func TestInitStores_InvalidBackend(t *testing.T) {
	resetGlobals(t)
	t.Cleanup(func() { resetGlobals(t) })

	err := InitStores("redis", "", "", "")
	assert.ErrorContains(t, err, "failed to initialize search caching")
	assert.Nil(t, Manager.GetSearchStore())
}

func TestClearCache(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cache.db")
	store, err := NewCacheStore(searchTable, schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Set("k", []byte("v"), 1, 1))
	require.NoError(t, store.Close())

	require.NoError(t, ClearCache(schema.SQLiteBackend, dbPath, ""))
	_, err = os.Stat(dbPath)
	assert.True(t, os.IsNotExist(err))

	// Clearing a missing file is not an error
	assert.NoError(t, ClearCache(schema.SQLiteBackend, dbPath, ""))
	assert.NoError(t, ClearCache(schema.NoneBackend, "", ""))
	assert.ErrorContains(t, ClearCache(schema.SQLiteBackend, "", ""), "cannot be empty")
	assert.ErrorContains(t, ClearCache("redis", "", ""), "unsupported backend")
}

func TestClearAnalysis(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "analysis.db")
	store, err := NewAnalysisStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Close())
	require.FileExists(t, dbPath)

	require.NoError(t, ClearAnalysis(schema.SQLiteBackend, dbPath, ""))
	assert.NoFileExists(t, dbPath)
}

func TestClearAnalysis_ConnectionStringNamesFile(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "custom.db")
	store, err := NewAnalysisStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	require.NoError(t, ClearAnalysis(schema.SQLiteBackend, filepath.Join(dir, "default.db"), dbPath))
	assert.NoFileExists(t, dbPath)
}

func TestPrintCacheStatus(t *testing.T) {
	var buf bytes.Buffer
	PrintCacheStatus(&buf, schema.CacheStatus{Backend: "none"})
	assert.Equal(t, "Cache Backend: none\nConnected: false\n", buf.String())
}
