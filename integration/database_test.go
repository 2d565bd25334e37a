//go:build database

package integration

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestRepometricsWithMySQL tests the repometrics CLI with a MySQL backend.
func TestRepometricsWithMySQL(t *testing.T) {
	ctx := context.Background()

	// Start MySQL container
	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "repometrics",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(60 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = mysqlC.Terminate(ctx) }()

	// Get connection details
	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/repometrics?parseTime=true&multiStatements=true", host, port.Port())
	runBackendScenario(t, "mysql", connStr)
}

// TestRepometricsWithPostgres tests the repometrics CLI with a PostgreSQL backend.
func TestRepometricsWithPostgres(t *testing.T) {
	ctx := context.Background()

	// Start Postgres container
	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = pgC.Terminate(ctx) }()

	// Get connection details
	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres sslmode=disable", host, port.Port())
	runBackendScenario(t, "postgresql", connStr)
}

// runBackendScenario exercises the cache and analysis commands against one SQL backend.
func runBackendScenario(t *testing.T, backend, connStr string) {
	t.Helper()
	server, requests := newSearchServer(t, 8)
	workDir := t.TempDir()
	env := []string{
		"HOME=" + workDir,
		"REPOMETRICS_LOG_LEVEL=error",
		"REPOMETRICS_CACHE_BACKEND=" + backend,
		"REPOMETRICS_CACHE_DB_CONNECT=" + connStr,
		"REPOMETRICS_ANALYSIS_BACKEND=" + backend,
		"REPOMETRICS_ANALYSIS_DB_CONNECT=" + connStr,
	}

	// Start from empty tables
	_, err := runCommand(t, workDir, env, "cache", "clear")
	require.NoError(t, err)
	_, err = runCommand(t, workDir, env, "analysis", "clear")
	require.NoError(t, err)

	// Migrations run on a fresh database and can be rolled back
	out, err := runCommand(t, workDir, env, "analysis", "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "version")
	_, err = runCommand(t, workDir, env, "analysis", "migrate", "--target-version", "0")
	require.NoError(t, err)
	_, err = runCommand(t, workDir, env, "analysis", "migrate")
	require.NoError(t, err)

	analyze := []string{
		"analyze",
		"--api-url", server.URL,
		"--population", "8",
		"--subset", "6",
		"--seed", "5",
		"--pace", "0s",
		"--charts=false",
		"--output", "csv",
		"--output-dir", filepath.Join(workDir, "out"),
		"--dataset-dir", filepath.Join(workDir, "dataset"),
	}
	_, err = runCommand(t, workDir, env, analyze...)
	require.NoError(t, err)
	afterFirst := *requests

	// A second run is served from the cache but tracked as a new run
	_, err = runCommand(t, workDir, env, analyze...)
	require.NoError(t, err)
	assert.Equal(t, afterFirst, *requests)

	out, err = runCommand(t, workDir, env, "cache", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Connected: true")

	out, err = runCommand(t, workDir, env, "analysis", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Connected: true")
	assert.Contains(t, out, "Total Runs: 2")

	prefix := filepath.Join(workDir, "export")
	_, err = runCommand(t, workDir, env, "analysis", "export", "--output-file", prefix)
	require.NoError(t, err)
	assert.FileExists(t, prefix+".analysis_runs.parquet")
	assert.FileExists(t, prefix+".repository_metrics.parquet")
	assert.FileExists(t, prefix+".correlations.parquet")

	// Clean up after the scenario
	_, err = runCommand(t, workDir, env, "cache", "clear")
	require.NoError(t, err)
	_, err = runCommand(t, workDir, env, "analysis", "clear")
	require.NoError(t, err)
}
