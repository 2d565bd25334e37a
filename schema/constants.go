package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for caching and analysis tracking.
	DatabaseBackend string

	// LogMode selects the structured logger encoding.
	LogMode string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All log modes supported.
const (
	DevLog  LogMode = "dev" // default
	ProdLog LogMode = "prod"
)

// Descriptor and metric column names. These are the stable names used by
// the correlation engine, the CSV files and the analysis store.
const (
	ColRepoName      = "repo_name"
	ColName          = "name"
	ColFullName      = "full_name"
	ColDescription   = "description"
	ColStars         = "stars"
	ColForks         = "forks"
	ColWatchers      = "watchers"
	ColLanguage      = "language"
	ColSize          = "size"
	ColSizeKB        = "size_kb"
	ColCreatedAt     = "created_at"
	ColUpdatedAt     = "updated_at"
	ColAgeYears      = "age_years"
	ColDefaultBranch = "default_branch"
	ColCloneURL      = "clone_url"
	ColHTMLURL       = "html_url"

	ColLOC           = "loc"
	ColComments      = "comments"
	ColReleasesCount = "releases_count"

	ColCBO   = "cbo"
	ColDIT   = "dit"
	ColLCOM  = "lcom"
	ColWMC   = "wmc"
	ColRFC   = "rfc"
	ColLCOM3 = "lcom3"
	ColCA    = "ca"
	ColCE    = "ce"
	ColNPM   = "npm"
)

// DefaultProcessMetrics are the process-side columns correlated by default.
var DefaultProcessMetrics = []string{ColStars, ColAgeYears, ColReleasesCount, ColLOC, ColComments}

// DefaultQualityMetrics are the quality-side columns correlated by default.
var DefaultQualityMetrics = []string{ColCBO, ColDIT, ColLCOM, ColWMC, ColRFC}

// numericColumns lists every column that Table.Column can produce.
var numericColumns = map[string]struct{}{
	ColStars:         {},
	ColForks:         {},
	ColWatchers:      {},
	ColAgeYears:      {},
	ColSize:          {},
	ColSizeKB:        {},
	ColLOC:           {},
	ColComments:      {},
	ColReleasesCount: {},
	ColCBO:           {},
	ColDIT:           {},
	ColLCOM:          {},
	ColWMC:           {},
	ColRFC:           {},
	ColLCOM3:         {},
	ColCA:            {},
	ColCE:            {},
	ColNPM:           {},
}

// IsNumericColumn reports whether name is a column the correlation engine accepts.
func IsNumericColumn(name string) bool {
	_, ok := numericColumns[name]
	return ok
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidLogModes lists all valid log modes.
var ValidLogModes = map[LogMode]struct{}{
	DevLog:  {},
	ProdLog: {},
}
