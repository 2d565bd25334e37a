//go:build basic

// Package integration contains integration tests for repometrics.
// These tests are excluded from normal test runs due to build tags.
// To run these tests: go test -tags basic ./integration
package integration

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolatedEnv points HOME at a temp dir so the default SQLite files never
// touch the real home directory.
func isolatedEnv(t *testing.T) []string {
	t.Helper()
	return []string{"HOME=" + t.TempDir(), "REPOMETRICS_LOG_LEVEL=error"}
}

func TestCollectVerification(t *testing.T) {
	server, _ := newSearchServer(t, 12)
	workDir := t.TempDir()

	stdout, err := runCommand(t, workDir, isolatedEnv(t),
		"collect",
		"--api-url", server.URL,
		"--population", "9",
		"--page-size", "4",
		"--pace", "0s",
		"--cache-backend", "none",
		"--output", "json",
	)
	require.NoError(t, err)

	var repos []map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &repos))
	require.Len(t, repos, 9)
	for i, repo := range repos {
		assert.Equal(t, searchItemName(i), repo["full_name"])
	}
}

func TestAnalyzeVerification(t *testing.T) {
	server, _ := newSearchServer(t, 10)
	workDir := t.TempDir()
	outputFile := filepath.Join(workDir, "correlations.json")

	args := []string{
		"analyze",
		"--api-url", server.URL,
		"--population", "10",
		"--subset", "8",
		"--seed", "2024",
		"--pace", "0s",
		"--cache-backend", "none",
		"--output", "json",
		"--output-file", outputFile,
		"--output-dir", filepath.Join(workDir, "resultados"),
		"--dataset-dir", filepath.Join(workDir, "dataset"),
	}
	_, err := runCommand(t, workDir, isolatedEnv(t), args...)
	require.NoError(t, err)

	for _, name := range []string{
		"resultados/distribuicao_popularidade.png",
		"resultados/niveis_qualidade_cbo.png",
		"resultados/relatorio_analise.txt",
		"dataset/dataset_repositorios_completo.json",
		"dataset/dataset_repositorios_analise.json",
	} {
		assert.FileExists(t, filepath.Join(workDir, name))
	}

	first := readCorrelations(t, outputFile)
	assert.EqualValues(t, 2024, first["seed"])
	assert.EqualValues(t, 10, first["collected"])
	assert.EqualValues(t, 8, first["analyzed"])
	total := len(first["correlations"].([]any)) + int(first["omitted"].(float64))
	assert.Equal(t, 25, total)

	// The same seed reproduces the same correlations
	_, err = runCommand(t, workDir, isolatedEnv(t), args...)
	require.NoError(t, err)
	second := readCorrelations(t, outputFile)
	assert.Equal(t, first["correlations"], second["correlations"])
	assert.NotEqual(t, first["run_uuid"], second["run_uuid"])

	report, err := os.ReadFile(filepath.Join(workDir, "resultados/relatorio_analise.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(report), "seed 2024")
}

func TestAnalyzeWithSQLiteTracking(t *testing.T) {
	server, _ := newSearchServer(t, 6)
	workDir := t.TempDir()
	dbPath := filepath.Join(workDir, "analysis.db")
	env := append(isolatedEnv(t),
		"REPOMETRICS_ANALYSIS_BACKEND=sqlite",
		"REPOMETRICS_ANALYSIS_DB_CONNECT="+dbPath,
	)

	_, err := runCommand(t, workDir, env,
		"analyze",
		"--api-url", server.URL,
		"--population", "6",
		"--subset", "0",
		"--pace", "0s",
		"--cache-backend", "none",
		"--charts=false",
		"--output-dir", filepath.Join(workDir, "out"),
		"--dataset-dir", filepath.Join(workDir, "dataset"),
	)
	require.NoError(t, err)

	status, err := runCommand(t, workDir, env, "analysis", "status")
	require.NoError(t, err)
	assert.Contains(t, status, "Connected: true")
	assert.Contains(t, status, "Total Runs: 1")

	prefix := filepath.Join(workDir, "export")
	_, err = runCommand(t, workDir, env, "analysis", "export", "--output-file", prefix)
	require.NoError(t, err)
	for _, suffix := range []string{".analysis_runs.parquet", ".repository_metrics.parquet", ".correlations.parquet"} {
		assert.FileExists(t, prefix+suffix)
	}

	_, err = runCommand(t, workDir, env, "analysis", "clear")
	require.NoError(t, err)
	assert.NoFileExists(t, dbPath)
}

func TestSearchCacheServesRepeatedCollections(t *testing.T) {
	server, requests := newSearchServer(t, 5)
	workDir := t.TempDir()
	env := append(isolatedEnv(t),
		"REPOMETRICS_CACHE_BACKEND=sqlite",
		"REPOMETRICS_CACHE_DB_CONNECT="+filepath.Join(workDir, "cache.db"),
	)
	args := []string{"collect", "--api-url", server.URL, "--population", "5", "--pace", "0s", "--output", "csv"}

	_, err := runCommand(t, workDir, env, args...)
	require.NoError(t, err)
	afterFirst := *requests
	require.Positive(t, afterFirst)

	_, err = runCommand(t, workDir, env, args...)
	require.NoError(t, err)
	assert.Equal(t, afterFirst, *requests, "second collection is served from the cache")

	status, err := runCommand(t, workDir, env, "cache", "status")
	require.NoError(t, err)
	assert.Contains(t, status, "Connected: true")
	assert.NotContains(t, status, "Total Entries: 0")
}

func TestMetricsAndVersion(t *testing.T) {
	workDir := t.TempDir()

	stdout, err := runCommand(t, workDir, isolatedEnv(t), "metrics", "--output", "json", "--cache-backend", "none")
	require.NoError(t, err)
	assert.Contains(t, stdout, "cbo")
	assert.Contains(t, stdout, "lcom3")

	_, err = runCommand(t, workDir, isolatedEnv(t), "version")
	require.NoError(t, err)
}

func TestInvalidInputsFail(t *testing.T) {
	workDir := t.TempDir()
	tests := [][]string{
		{"collect", "--population", "0", "--cache-backend", "none"},
		{"collect", "--population", "1001", "--cache-backend", "none"},
		{"analyze", "--subset=-1", "--cache-backend", "none"},
		{"collect", "--output", "xml", "--cache-backend", "none"},
		{"analyze", "--process-metrics", "stars,unknown", "--cache-backend", "none"},
	}
	for _, args := range tests {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			_, err := runCommand(t, workDir, isolatedEnv(t), args...)
			assert.Error(t, err)
		})
	}
}

func readCorrelations(t *testing.T, path string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var payload map[string]any
	require.NoError(t, json.Unmarshal(data, &payload))
	return payload
}
