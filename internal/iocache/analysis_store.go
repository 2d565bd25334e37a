package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/repometrics/internal/contract"
	"github.com/huangsam/repometrics/schema"
)

// Table names for analysis tracking.
const (
	analysisRunsTable      = "repometrics_analysis_runs"
	repositoryMetricsTable = "repometrics_repository_metrics"
	correlationsTable      = "repometrics_correlations"
)

// analysisTables lists the tracking tables in creation order.
var analysisTables = []string{analysisRunsTable, repositoryMetricsTable, correlationsTable}

// column is one column of a tracking table.
type column struct {
	name string
	kind string // pk, time, int, real, key, text
	null bool
}

var analysisRunsColumns = []column{
	{"analysis_id", "pk", false},
	{"run_uuid", "key", false},
	{"start_time", "time", false},
	{"end_time", "time", true},
	{"run_duration_ms", "int", true},
	{"population_size", "int", true},
	{"subset_size", "int", true},
	{"correlations_count", "int", true},
	{"config_params", "text", true},
}

var repositoryMetricsColumns = []column{
	{"analysis_id", "int", false},
	{"full_name", "key", false},
	{"repo_name", "key", false},
	{"stars", "int", false},
	{"forks", "int", false},
	{"age_years", "real", false},
	{"size_kb", "int", false},
	{"loc", "int", false},
	{"comments", "int", false},
	{"releases_count", "int", false},
	{"cbo", "real", false},
	{"dit", "real", false},
	{"lcom", "real", false},
	{"wmc", "int", false},
	{"rfc", "int", false},
	{"lcom3", "real", false},
	{"ca", "int", false},
	{"ce", "int", false},
	{"npm", "int", false},
}

var correlationsColumns = []column{
	{"analysis_id", "int", false},
	{"process_metric", "key", false},
	{"quality_metric", "key", false},
	{"samples", "int", false},
	{"pearson_r", "real", false},
	{"pearson_p", "real", false},
	{"spearman_r", "real", false},
	{"spearman_p", "real", false},
}

// AnalysisStoreImpl implements the AnalysisStore interface.
type AnalysisStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.AnalysisStore = &AnalysisStoreImpl{} // Compile-time check

// NewAnalysisStore creates a new AnalysisStore with the specified backend.
func NewAnalysisStore(backend schema.DatabaseBackend, connStr string) (contract.AnalysisStore, error) {
	if backend == schema.NoneBackend {
		// Return a no-op store for disabled tracking
		return &AnalysisStoreImpl{backend: backend}, nil
	}

	db, err := openDB(backend, connStr, GetAnalysisDBFilePath())
	if err != nil {
		return nil, err
	}

	if err := createAnalysisTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create analysis tables: %w", err)
	}

	return &AnalysisStoreImpl{db: db, backend: backend}, nil
}

// createAnalysisTables creates the analysis tracking tables.
func createAnalysisTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{analysisRunsTable, createTableQuery(analysisRunsTable, analysisRunsColumns, nil, backend)},
		{repositoryMetricsTable, createTableQuery(repositoryMetricsTable, repositoryMetricsColumns, []string{"analysis_id", "full_name"}, backend)},
		{correlationsTable, createTableQuery(correlationsTable, correlationsColumns, []string{"analysis_id", "process_metric", "quality_metric"}, backend)},
	}

	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}
	return nil
}

// createTableQuery renders CREATE TABLE IF NOT EXISTS for the backend dialect.
func createTableQuery(table string, columns []column, primaryKey []string, backend schema.DatabaseBackend) string {
	defs := make([]string, 0, len(columns)+1)
	for _, c := range columns {
		def := c.name + " " + columnType(c.kind, backend)
		if !c.null && c.kind != "pk" {
			def += " NOT NULL"
		}
		defs = append(defs, def)
	}
	if len(primaryKey) > 0 {
		defs = append(defs, "PRIMARY KEY ("+strings.Join(primaryKey, ", ")+")")
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n);", quoteTableName(table, backend), strings.Join(defs, ",\n\t"))
}

// columnType maps a column kind to the SQL type of the backend.
func columnType(kind string, backend schema.DatabaseBackend) string {
	types := map[string][3]string{ // sqlite, mysql, postgresql
		"pk":   {"INTEGER PRIMARY KEY AUTOINCREMENT", "BIGINT AUTO_INCREMENT PRIMARY KEY", "BIGSERIAL PRIMARY KEY"},
		"time": {"TEXT", "DATETIME(6)", "TIMESTAMPTZ"},
		"int":  {"INTEGER", "BIGINT", "BIGINT"},
		"real": {"REAL", "DOUBLE", "DOUBLE PRECISION"},
		"key":  {"TEXT", "VARCHAR(255)", "TEXT"},
		"text": {"TEXT", "TEXT", "TEXT"},
	}
	t := types[kind]
	switch backend {
	case schema.MySQLBackend:
		return t[1]
	case schema.PostgreSQLBackend:
		return t[2]
	default:
		return t[0]
	}
}

// columnNames joins the names of columns, skipping the auto-increment key.
func columnNames(columns []column, withPK bool) string {
	names := make([]string, 0, len(columns))
	for _, c := range columns {
		if c.kind == "pk" && !withPK {
			continue
		}
		names = append(names, c.name)
	}
	return strings.Join(names, ", ")
}

// insertQuery renders an INSERT of every non auto-increment column.
func insertQuery(table string, columns []column, backend schema.DatabaseBackend) string {
	n := 0
	for _, c := range columns {
		if c.kind != "pk" {
			n++
		}
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteTableName(table, backend), columnNames(columns, false), placeholders(backend, n))
}

func (as *AnalysisStoreImpl) disabled() bool {
	return as.backend == schema.NoneBackend || as.db == nil
}

// BeginAnalysis creates a new analysis run and returns its unique ID.
func (as *AnalysisStoreImpl) BeginAnalysis(runUUID string, startTime time.Time, configParams map[string]any) (int64, error) {
	if as.disabled() {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	quotedTableName := quoteTableName(analysisRunsTable, as.backend)

	var analysisID int64
	switch as.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (run_uuid, start_time, config_params) VALUES ($1, $2, $3) RETURNING analysis_id`, quotedTableName)
		err = as.db.QueryRow(query, runUUID, startTime, string(configJSON)).Scan(&analysisID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (run_uuid, start_time, config_params) VALUES (?, ?, ?)`, quotedTableName)
		var result sql.Result
		result, err = as.db.Exec(query, runUUID, formatTime(startTime, as.backend), string(configJSON))
		if err == nil {
			analysisID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert analysis run: %w", err)
	}
	return analysisID, nil
}

// EndAnalysis updates the analysis run with completion data.
func (as *AnalysisStoreImpl) EndAnalysis(analysisID int64, endTime time.Time, populationSize, subsetSize, correlations int) error {
	if as.disabled() {
		return nil
	}

	quotedTableName := quoteTableName(analysisRunsTable, as.backend)

	// First, get the start_time to calculate duration
	query := fmt.Sprintf(`SELECT start_time FROM %s WHERE analysis_id = %s`, quotedTableName, placeholders(as.backend, 1))
	start := timeScanner{backend: as.backend}
	if err := as.db.QueryRow(query, analysisID).Scan(start.dest()); err != nil {
		return fmt.Errorf("failed to get start_time for analysis %d: %w", analysisID, err)
	}
	startTime, _, err := start.value()
	if err != nil {
		return err
	}
	durationMs := endTime.Sub(startTime).Milliseconds()

	var updateQuery string
	switch as.backend {
	case schema.PostgreSQLBackend:
		updateQuery = fmt.Sprintf(`UPDATE %s SET end_time = $1, run_duration_ms = $2, population_size = $3, subset_size = $4, correlations_count = $5 WHERE analysis_id = $6`, quotedTableName)
	default: // SQLite and MySQL
		updateQuery = fmt.Sprintf(`UPDATE %s SET end_time = ?, run_duration_ms = ?, population_size = ?, subset_size = ?, correlations_count = ? WHERE analysis_id = ?`, quotedTableName)
	}
	if _, err := as.db.Exec(updateQuery, formatTime(endTime, as.backend), durationMs, populationSize, subsetSize, correlations, analysisID); err != nil {
		return fmt.Errorf("failed to update analysis run: %w", err)
	}
	return nil
}

// RecordMetricRecord stores one row of the metric table.
func (as *AnalysisStoreImpl) RecordMetricRecord(analysisID int64, record schema.MetricRecord) error {
	if as.disabled() {
		return nil
	}
	r := schema.NewMetricRecordRow(analysisID, record)
	_, err := as.db.Exec(insertQuery(repositoryMetricsTable, repositoryMetricsColumns, as.backend),
		r.AnalysisID, r.FullName, r.RepoName, r.Stars, r.Forks, r.AgeYears, r.SizeKB,
		r.LOC, r.Comments, r.ReleasesCount,
		r.CBO, r.DIT, r.LCOM, r.WMC, r.RFC, r.LCOM3, r.CA, r.CE, r.NPM)
	if err != nil {
		return fmt.Errorf("failed to insert metrics for %s: %w", record.FullName, err)
	}
	return nil
}

// RecordCorrelation stores one correlation result.
func (as *AnalysisStoreImpl) RecordCorrelation(analysisID int64, result schema.CorrelationResult) error {
	if as.disabled() {
		return nil
	}
	r := schema.NewCorrelationRow(analysisID, result)
	_, err := as.db.Exec(insertQuery(correlationsTable, correlationsColumns, as.backend),
		r.AnalysisID, r.ProcessMetric, r.QualityMetric, r.Samples,
		r.PearsonR, r.PearsonP, r.SpearmanR, r.SpearmanP)
	if err != nil {
		return fmt.Errorf("failed to insert correlation %s vs %s: %w", result.Process, result.Quality, err)
	}
	return nil
}

// Close closes the underlying connection.
func (as *AnalysisStoreImpl) Close() error {
	if as.db != nil {
		return as.db.Close()
	}
	return nil
}

// GetStatus returns status information about the analysis store.
func (as *AnalysisStoreImpl) GetStatus() (schema.AnalysisStatus, error) {
	status := schema.AnalysisStatus{
		Backend:    string(as.backend),
		Connected:  as.db != nil,
		TableSizes: make(map[string]int64),
	}
	if as.disabled() {
		return status, nil
	}

	runs := quoteTableName(analysisRunsTable, as.backend)
	if err := as.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", runs)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		last := timeScanner{backend: as.backend}
		lastQuery := fmt.Sprintf("SELECT analysis_id, run_uuid, start_time FROM %s ORDER BY analysis_id DESC LIMIT 1", runs)
		if err := as.db.QueryRow(lastQuery).Scan(&status.LastRunID, &status.LastRunUUID, last.dest()); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		lastTime, _, err := last.value()
		if err != nil {
			return status, err
		}
		status.LastRunTime = lastTime

		oldest := timeScanner{backend: as.backend}
		oldestQuery := fmt.Sprintf("SELECT start_time FROM %s ORDER BY analysis_id ASC LIMIT 1", runs)
		if err := as.db.QueryRow(oldestQuery).Scan(oldest.dest()); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		oldestTime, _, err := oldest.value()
		if err != nil {
			return status, err
		}
		status.OldestRunTime = oldestTime
	}

	for _, table := range analysisTables {
		var count int64
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, as.backend))
		if err := as.db.QueryRow(countQuery).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	status.TotalRepositoriesStored = int(status.TableSizes[repositoryMetricsTable])

	return status, nil
}

// GetAllAnalysisRuns retrieves all analysis runs from the store.
func (as *AnalysisStoreImpl) GetAllAnalysisRuns() ([]schema.AnalysisRunRecord, error) {
	if as.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY analysis_id",
		columnNames(analysisRunsColumns, true), quoteTableName(analysisRunsTable, as.backend))
	rows, err := as.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.AnalysisRunRecord
	for rows.Next() {
		var record schema.AnalysisRunRecord
		start := timeScanner{backend: as.backend}
		end := timeScanner{backend: as.backend}
		if err := rows.Scan(&record.AnalysisID, &record.RunUUID, start.dest(), end.dest(),
			&record.RunDurationMs, &record.PopulationSize, &record.SubsetSize,
			&record.CorrelationsCount, &record.ConfigParams); err != nil {
			return nil, fmt.Errorf("failed to scan analysis run: %w", err)
		}
		if record.StartTime, _, err = start.value(); err != nil {
			return nil, err
		}
		endTime, ok, err := end.value()
		if err != nil {
			return nil, err
		}
		if ok {
			record.EndTime = &endTime
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating analysis runs: %w", err)
	}
	return results, nil
}

// GetAllMetricRecords retrieves every stored metric row.
func (as *AnalysisStoreImpl) GetAllMetricRecords() ([]schema.MetricRecordRow, error) {
	if as.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY analysis_id, full_name",
		columnNames(repositoryMetricsColumns, true), quoteTableName(repositoryMetricsTable, as.backend))
	rows, err := as.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query repository metrics: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.MetricRecordRow
	for rows.Next() {
		var r schema.MetricRecordRow
		if err := rows.Scan(&r.AnalysisID, &r.FullName, &r.RepoName, &r.Stars, &r.Forks,
			&r.AgeYears, &r.SizeKB, &r.LOC, &r.Comments, &r.ReleasesCount,
			&r.CBO, &r.DIT, &r.LCOM, &r.WMC, &r.RFC, &r.LCOM3, &r.CA, &r.CE, &r.NPM); err != nil {
			return nil, fmt.Errorf("failed to scan repository metrics: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating repository metrics: %w", err)
	}
	return results, nil
}

// GetAllCorrelations retrieves every stored correlation row.
func (as *AnalysisStoreImpl) GetAllCorrelations() ([]schema.CorrelationRow, error) {
	if as.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY analysis_id, process_metric, quality_metric",
		columnNames(correlationsColumns, true), quoteTableName(correlationsTable, as.backend))
	rows, err := as.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query correlations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.CorrelationRow
	for rows.Next() {
		var r schema.CorrelationRow
		if err := rows.Scan(&r.AnalysisID, &r.ProcessMetric, &r.QualityMetric, &r.Samples,
			&r.PearsonR, &r.PearsonP, &r.SpearmanR, &r.SpearmanP); err != nil {
			return nil, fmt.Errorf("failed to scan correlations: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating correlations: %w", err)
	}
	return results, nil
}
