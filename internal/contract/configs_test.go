package contract

import (
	"testing"
	"time"

	"github.com/huangsam/repometrics/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validInput returns a raw input that passes validation, mirroring the CLI defaults.
func validInput() *ConfigRawInput {
	return &ConfigRawInput{
		APIURL:       DefaultAPIURL,
		Query:        DefaultQuery,
		Sort:         DefaultSort,
		Order:        DefaultOrder,
		PageSize:     DefaultPageSize,
		Population:   DefaultPopulation,
		Subset:       DefaultSubset,
		Precision:    DefaultPrecision,
		Output:       string(schema.TextOut),
		Color:        "yes",
		CacheBackend: string(schema.SQLiteBackend),
	}
}

func TestProcessAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*ConfigRawInput)
		expectError string
	}{
		{name: "valid defaults", mutate: func(*ConfigRawInput) {}},
		{
			name:        "invalid population (zero)",
			mutate:      func(in *ConfigRawInput) { in.Population = 0 },
			expectError: "population must be greater than 0",
		},
		{
			name:        "invalid population (too large)",
			mutate:      func(in *ConfigRawInput) { in.Population = MaxPopulation + 1 },
			expectError: "cannot exceed",
		},
		{
			name:        "negative subset",
			mutate:      func(in *ConfigRawInput) { in.Subset = -1 },
			expectError: "subset must be 0 or greater",
		},
		{
			name:        "page size above forge maximum",
			mutate:      func(in *ConfigRawInput) { in.PageSize = 101 },
			expectError: "page-size must be between 1 and 100",
		},
		{
			name:        "invalid order",
			mutate:      func(in *ConfigRawInput) { in.Order = "sideways" },
			expectError: "order must be asc or desc",
		},
		{
			name:        "relative api url",
			mutate:      func(in *ConfigRawInput) { in.APIURL = "api.github.com" },
			expectError: "api-url must be an absolute",
		},
		{
			name:        "bad cooldown",
			mutate:      func(in *ConfigRawInput) { in.Cooldown = "soon" },
			expectError: "invalid cooldown value",
		},
		{
			name:        "negative max retries",
			mutate:      func(in *ConfigRawInput) { in.MaxRetries = -2 },
			expectError: "max-retries",
		},
		{
			name:        "unknown metric column",
			mutate:      func(in *ConfigRawInput) { in.QualityMetrics = "cbo,coolness" },
			expectError: "invalid quality-metrics",
		},
		{
			name:        "invalid precision",
			mutate:      func(in *ConfigRawInput) { in.Precision = 4 },
			expectError: "precision must be 1, 2 or 3",
		},
		{
			name:        "invalid output",
			mutate:      func(in *ConfigRawInput) { in.Output = "xml" },
			expectError: "invalid output format",
		},
		{
			name:        "invalid color",
			mutate:      func(in *ConfigRawInput) { in.Color = "rainbow" },
			expectError: "invalid --color value",
		},
		{
			name:        "invalid log level",
			mutate:      func(in *ConfigRawInput) { in.LogLevel = "loud" },
			expectError: "invalid log-level",
		},
		{
			name:        "invalid cache backend",
			mutate:      func(in *ConfigRawInput) { in.CacheBackend = "redis" },
			expectError: "invalid cache backend",
		},
		{
			name: "mysql cache without connection string",
			mutate: func(in *ConfigRawInput) {
				in.CacheBackend = string(schema.MySQLBackend)
			},
			expectError: "connection string is required",
		},
		{
			name: "same sqlite file for cache and analysis",
			mutate: func(in *ConfigRawInput) {
				in.AnalysisBackend = string(schema.SQLiteBackend)
				in.CacheDBConnect = "/tmp/shared.db"
				in.AnalysisDBConnect = "/tmp/shared.db"
			},
			expectError: "must use different SQLite database files",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.mutate(input)
			cfg := &Config{}
			err := ProcessAndValidate(cfg, input)
			if tt.expectError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectError)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestProcessAndValidate_Defaults(t *testing.T) {
	input := validInput()
	input.APIURL = "https://ghe.example.com/api/v3/"
	input.Sort = ""
	input.Order = ""

	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))

	assert.Equal(t, "https://ghe.example.com/api/v3", cfg.APIURL)
	assert.Equal(t, schema.SearchQuery{Predicate: DefaultQuery, Sort: DefaultSort, Order: DefaultOrder}, cfg.Query)
	assert.Equal(t, DefaultCooldown, cfg.Cooldown)
	assert.Equal(t, DefaultRetryWait, cfg.RetryWait)
	assert.Equal(t, DefaultPace, cfg.Pace)
	assert.Equal(t, DefaultCacheTTL, cfg.CacheTTL)
	assert.Equal(t, uint64(0), cfg.MaxRetries)
	assert.Equal(t, schema.DefaultProcessMetrics, cfg.ProcessMetrics)
	assert.Equal(t, schema.DefaultQualityMetrics, cfg.QualityMetrics)
	assert.Equal(t, DefaultOutputDir, cfg.OutputDir)
	assert.Equal(t, DefaultDatasetDir, cfg.DatasetDir)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, schema.DevLog, cfg.LogMode)
	assert.True(t, cfg.UseColors)
	assert.Equal(t, schema.DatabaseBackend(""), cfg.AnalysisBackend)
}

func TestProcessAndValidate_Overrides(t *testing.T) {
	input := validInput()
	input.Cooldown = "2s"
	input.RetryWait = "250ms"
	input.Pace = "0s"
	input.MaxRetries = 3
	input.ProcessMetrics = "stars, loc"
	input.QualityMetrics = "lcom3"
	input.Seed = 42

	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))

	assert.Equal(t, 2*time.Second, cfg.Cooldown)
	assert.Equal(t, 250*time.Millisecond, cfg.RetryWait)
	assert.Equal(t, time.Duration(0), cfg.Pace)
	assert.Equal(t, uint64(3), cfg.MaxRetries)
	assert.Equal(t, []string{schema.ColStars, schema.ColLOC}, cfg.ProcessMetrics)
	assert.Equal(t, []string{schema.ColLCOM3}, cfg.QualityMetrics)
	assert.Equal(t, uint64(42), cfg.Seed)
}

func TestConfigClone(t *testing.T) {
	cfg := &Config{ProcessMetrics: []string{"stars"}, QualityMetrics: []string{"cbo"}, Population: 10}
	clone := cfg.Clone()
	clone.ProcessMetrics[0] = "loc"
	clone.Population = 20

	assert.Equal(t, "stars", cfg.ProcessMetrics[0])
	assert.Equal(t, 10, cfg.Population)
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	tests := []struct {
		name    string
		backend schema.DatabaseBackend
		connStr string
		wantErr bool
	}{
		{"sqlite empty", schema.SQLiteBackend, "", false},
		{"none", schema.NoneBackend, "", false},
		{"mysql valid", schema.MySQLBackend, "root:pw@tcp(localhost:3306)/repometrics", false},
		{"mysql missing tcp", schema.MySQLBackend, "root:pw@localhost/repometrics", true},
		{"postgres valid", schema.PostgreSQLBackend, "host=localhost dbname=postgres", false},
		{"postgres missing dbname", schema.PostgreSQLBackend, "host=localhost", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDatabaseConnectionString(tt.backend, tt.connStr)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseMetricList(t *testing.T) {
	out, err := ParseMetricList("", schema.DefaultQualityMetrics)
	require.NoError(t, err)
	assert.Equal(t, schema.DefaultQualityMetrics, out)
	out[0] = "mutated"
	assert.Equal(t, schema.ColCBO, schema.DefaultQualityMetrics[0], "defaults must be copied")

	out, err = ParseMetricList("CBO, cbo ,wmc", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"cbo", "wmc"}, out)

	_, err = ParseMetricList(",,", nil)
	assert.Error(t, err)
}

func TestProcessProfilingConfig(t *testing.T) {
	profile := &ProfileConfig{}
	require.NoError(t, ProcessProfilingConfig(profile, ""))
	assert.False(t, profile.Enabled)

	require.NoError(t, ProcessProfilingConfig(profile, "run1"))
	assert.True(t, profile.Enabled)
	assert.Equal(t, "run1", profile.Prefix)
}

func TestRevalidateRun(t *testing.T) {
	valid := func() *Config {
		return &Config{Query: schema.SearchQuery{Predicate: "language:go"}, Population: 50, Subset: 10}
	}
	require.NoError(t, RevalidateRun(valid()))

	tests := []struct {
		name   string
		mutate func(c *Config)
		errMsg string
	}{
		{"blank query", func(c *Config) { c.Query.Predicate = "  " }, "query must not be empty"},
		{"zero population", func(c *Config) { c.Population = 0 }, "population must be greater than 0"},
		{"population too large", func(c *Config) { c.Population = MaxPopulation + 1 }, "cannot exceed 1000 (received 1001)"},
		{"negative subset", func(c *Config) { c.Subset = -2 }, "subset must be 0 or greater (received -2)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.ErrorContains(t, RevalidateRun(cfg), tt.errMsg)
		})
	}
}
