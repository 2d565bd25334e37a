package contract

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/huangsam/repometrics/schema"
)

// Default values for configuration.
const (
	DefaultAPIURL      = "https://api.github.com"
	DefaultQuery       = "language:java"
	DefaultSort        = "stars"
	DefaultOrder       = "desc"
	DefaultPopulation  = 1000
	DefaultSubset      = 100
	DefaultPageSize    = 100
	MaxPageSize        = 100
	MaxPopulation      = 1000
	DefaultPrecision   = 3
	DefaultCooldown    = 60 * time.Second
	DefaultRetryWait   = 5 * time.Second
	DefaultPace        = 1 * time.Second
	DefaultHTTPTimeout = 30 * time.Second
	DefaultCacheTTL    = 24 * time.Hour
	DefaultOutputDir   = "resultados"
	DefaultDatasetDir  = "dataset"
	DefaultUserAgent   = "repometrics"
)

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration for collection and analysis.
// This struct is the "final, validated" config.
type Config struct {
	APIURL      string
	Token       string // Please use env var as this is plaintext
	UserAgent   string
	Query       schema.SearchQuery
	Population  int
	Subset      int
	PageSize    int
	Cooldown    time.Duration
	RetryWait   time.Duration
	Pace        time.Duration
	MaxRetries  uint64 // 0 means unlimited
	HTTPTimeout time.Duration

	// Seed drives the metric synthesizer; zero picks a time-based seed
	Seed uint64

	ProcessMetrics []string
	QualityMetrics []string

	Output     schema.OutputMode
	OutputFile string
	OutputDir  string
	DatasetDir string
	Precision  int
	Charts     bool
	UseColors  bool

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext
	CacheTTL       time.Duration

	AnalysisBackend   schema.DatabaseBackend
	AnalysisDBConnect string // Please use env var as this is plaintext

	LogLevel string
	LogMode  schema.LogMode
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	APIURL            string `mapstructure:"api-url"`
	Token             string `mapstructure:"token"`
	Query             string `mapstructure:"query"`
	Sort              string `mapstructure:"sort"`
	Order             string `mapstructure:"order"`
	PageSize          int    `mapstructure:"page-size"`
	Cooldown          string `mapstructure:"cooldown"`
	RetryWait         string `mapstructure:"retry-wait"`
	Pace              string `mapstructure:"pace"`
	MaxRetries        int    `mapstructure:"max-retries"`
	HTTPTimeout       string `mapstructure:"http-timeout"`
	Output            string `mapstructure:"output"`
	OutputFile        string `mapstructure:"output-file"`
	Precision         int    `mapstructure:"precision"`
	Color             string `mapstructure:"color"`
	CacheBackend      string `mapstructure:"cache-backend"`
	CacheDBConnect    string `mapstructure:"cache-db-connect"`
	CacheTTL          string `mapstructure:"cache-ttl"`
	AnalysisBackend   string `mapstructure:"analysis-backend"`
	AnalysisDBConnect string `mapstructure:"analysis-db-connect"`
	LogLevel          string `mapstructure:"log-level"`
	LogMode           string `mapstructure:"log-mode"`

	// --- Fields from collectCmd and analyzeCmd flags ---
	Population int    `mapstructure:"population"`
	DatasetDir string `mapstructure:"dataset-dir"`

	// --- Fields from analyzeCmd.Flags() ---
	Subset         int    `mapstructure:"subset"`
	Seed           uint64 `mapstructure:"seed"`
	ProcessMetrics string `mapstructure:"process-metrics"`
	QualityMetrics string `mapstructure:"quality-metrics"`
	OutputDir      string `mapstructure:"output-dir"`
	Charts         bool   `mapstructure:"charts"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	clone.ProcessMetrics = slices.Clone(c.ProcessMetrics)
	clone.QualityMetrics = slices.Clone(c.QualityMetrics)
	return &clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateForgeInputs(cfg, input); err != nil {
		return err
	}
	if err := validateRetryInputs(cfg, input); err != nil {
		return err
	}
	if err := validateSizeInputs(cfg, input); err != nil {
		return err
	}
	if err := validateMetricInputs(cfg, input); err != nil {
		return err
	}
	if err := validateOutputInputs(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	return nil
}

// validateForgeInputs handles the API endpoint and search query.
func validateForgeInputs(cfg *Config, input *ConfigRawInput) error {
	apiURL := strings.TrimRight(strings.TrimSpace(input.APIURL), "/")
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	u, err := url.Parse(apiURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api-url must be an absolute http(s) URL (received %q)", input.APIURL)
	}
	cfg.APIURL = apiURL
	cfg.Token = strings.TrimSpace(input.Token)
	cfg.UserAgent = DefaultUserAgent

	cfg.Query = schema.SearchQuery{
		Predicate: strings.TrimSpace(input.Query),
		Sort:      strings.ToLower(strings.TrimSpace(input.Sort)),
		Order:     strings.ToLower(strings.TrimSpace(input.Order)),
	}
	if cfg.Query.Predicate == "" {
		cfg.Query.Predicate = DefaultQuery
	}
	if cfg.Query.Sort == "" {
		cfg.Query.Sort = DefaultSort
	}
	switch cfg.Query.Order {
	case "":
		cfg.Query.Order = DefaultOrder
	case "asc", "desc":
	default:
		return fmt.Errorf("order must be asc or desc (received %q)", input.Order)
	}
	return nil
}

// validateRetryInputs handles the waits and the retry ceiling.
func validateRetryInputs(cfg *Config, input *ConfigRawInput) error {
	durations := []struct {
		key    string
		raw    string
		def    time.Duration
		target *time.Duration
	}{
		{"cooldown", input.Cooldown, DefaultCooldown, &cfg.Cooldown},
		{"retry-wait", input.RetryWait, DefaultRetryWait, &cfg.RetryWait},
		{"pace", input.Pace, DefaultPace, &cfg.Pace},
		{"http-timeout", input.HTTPTimeout, DefaultHTTPTimeout, &cfg.HTTPTimeout},
		{"cache-ttl", input.CacheTTL, DefaultCacheTTL, &cfg.CacheTTL},
	}
	for _, d := range durations {
		v, err := ParseDurationOrDefault(d.raw, d.def)
		if err != nil {
			return fmt.Errorf("invalid %s value %q: %w", d.key, d.raw, err)
		}
		*d.target = v
	}

	if input.MaxRetries < 0 {
		return fmt.Errorf("max-retries must be 0 (unlimited) or greater (received %d)", input.MaxRetries)
	}
	cfg.MaxRetries = uint64(input.MaxRetries)
	return nil
}

// validateSizeInputs handles population, subset and page size.
func validateSizeInputs(cfg *Config, input *ConfigRawInput) error {
	if input.Population <= 0 || input.Population > MaxPopulation {
		return fmt.Errorf("population must be greater than 0 and cannot exceed %d (received %d)", MaxPopulation, input.Population)
	}
	cfg.Population = input.Population

	if input.Subset < 0 {
		return fmt.Errorf("subset must be 0 or greater (received %d)", input.Subset)
	}
	cfg.Subset = input.Subset

	if input.PageSize <= 0 || input.PageSize > MaxPageSize {
		return fmt.Errorf("page-size must be between 1 and %d (received %d)", MaxPageSize, input.PageSize)
	}
	cfg.PageSize = input.PageSize
	cfg.Seed = input.Seed
	return nil
}

// RevalidateRun re-checks the query and sizes of a config whose fields were
// overridden after ProcessAndValidate, as the MCP tools do.
func RevalidateRun(cfg *Config) error {
	if strings.TrimSpace(cfg.Query.Predicate) == "" {
		return errors.New("query must not be empty")
	}
	if cfg.Population <= 0 || cfg.Population > MaxPopulation {
		return fmt.Errorf("population must be greater than 0 and cannot exceed %d (received %d)", MaxPopulation, cfg.Population)
	}
	if cfg.Subset < 0 {
		return fmt.Errorf("subset must be 0 or greater (received %d)", cfg.Subset)
	}
	return nil
}

// validateMetricInputs resolves the process and quality column lists.
func validateMetricInputs(cfg *Config, input *ConfigRawInput) error {
	process, err := ParseMetricList(input.ProcessMetrics, schema.DefaultProcessMetrics)
	if err != nil {
		return fmt.Errorf("invalid process-metrics: %w", err)
	}
	quality, err := ParseMetricList(input.QualityMetrics, schema.DefaultQualityMetrics)
	if err != nil {
		return fmt.Errorf("invalid quality-metrics: %w", err)
	}
	cfg.ProcessMetrics = process
	cfg.QualityMetrics = quality
	return nil
}

// validateOutputInputs handles output format, directories and display flags.
func validateOutputInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Charts = input.Charts

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Precision < 1 || input.Precision > 3 {
		return fmt.Errorf("precision must be 1, 2 or 3 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}

	cfg.OutputDir = strings.TrimSpace(input.OutputDir)
	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultOutputDir
	}
	cfg.DatasetDir = strings.TrimSpace(input.DatasetDir)
	if cfg.DatasetDir == "" {
		cfg.DatasetDir = DefaultDatasetDir
	}

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(input.LogLevel))
	switch cfg.LogLevel {
	case "":
		cfg.LogLevel = "info"
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log-level '%s'. must be debug, info, warn, error", input.LogLevel)
	}

	cfg.LogMode = schema.LogMode(strings.ToLower(strings.TrimSpace(input.LogMode)))
	if cfg.LogMode == "" {
		cfg.LogMode = schema.DevLog
	}
	if _, ok := schema.ValidLogModes[cfg.LogMode]; !ok {
		return fmt.Errorf("invalid log-mode '%s'. must be dev, prod", input.LogMode)
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates cache and analysis backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = schema.SQLiteBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	// --- Analysis Backend Validation ---
	cfg.AnalysisBackend = schema.DatabaseBackend(strings.ToLower(input.AnalysisBackend))
	if cfg.AnalysisBackend == "" {
		return nil
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.AnalysisBackend]; !ok {
		return fmt.Errorf("invalid analysis backend '%s'. must be sqlite, mysql, postgresql, none", input.AnalysisBackend)
	}
	cfg.AnalysisDBConnect = input.AnalysisDBConnect
	if err := ValidateDatabaseConnectionString(cfg.AnalysisBackend, cfg.AnalysisDBConnect); err != nil {
		return err
	}

	// For SQLite, resolve to actual file paths to catch default path conflicts
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.AnalysisBackend == schema.SQLiteBackend {
		cacheDBPath := cfg.CacheDBConnect
		if cacheDBPath == "" {
			cacheDBPath = GetCacheDBFilePath()
		}
		analysisDBPath := cfg.AnalysisDBConnect
		if analysisDBPath == "" {
			analysisDBPath = GetAnalysisDBFilePath()
		}
		if cacheDBPath == analysisDBPath {
			return fmt.Errorf("cache and analysis storage must use different SQLite database files. Both resolve to %q", cacheDBPath)
		}
	}
	return nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

// ParseMetricList splits a comma-separated list of column names.
// An empty string yields a copy of defaults.
func ParseMetricList(s string, defaults []string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return slices.Clone(defaults), nil
	}
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		if name == "" {
			continue
		}
		if !schema.IsNumericColumn(name) {
			return nil, fmt.Errorf("%q is not a numeric metric column", name)
		}
		if !slices.Contains(out, name) {
			out = append(out, name)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no metric columns in %q", s)
	}
	return out, nil
}

// ParseDurationOrDefault parses a Go duration string, returning def for an empty input.
func ParseDurationOrDefault(s string, def time.Duration) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration cannot be negative")
	}
	return d, nil
}
