// Package schema has the data types shared across the collection, synthesis and correlation stages.
package schema

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// TimestampLayout is the wire format of the forge timestamps.
const TimestampLayout = "2006-01-02T15:04:05Z"

// ErrUnknownColumn is returned when a metric column name is not recognized.
var ErrUnknownColumn = errors.New("unknown column")

// SearchQuery is the predicate and ordering sent to the repository search endpoint.
type SearchQuery struct {
	Predicate string `json:"q"`
	Sort      string `json:"sort"`
	Order     string `json:"order"`
}

// String renders the query the way it is logged and cached.
func (q SearchQuery) String() string {
	return fmt.Sprintf("q=%s sort=%s order=%s", q.Predicate, q.Sort, q.Order)
}

// Repository is the normalized summary of one search result.
type Repository struct {
	Name          string    `json:"name"`
	FullName      string    `json:"full_name"`
	Description   *string   `json:"description"`
	Stars         int       `json:"stars"`
	Forks         int       `json:"forks"`
	Watchers      int       `json:"watchers"`
	Language      string    `json:"language"`
	SizeKB        int       `json:"size"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	AgeYears      float64   `json:"age_years"`
	DefaultBranch string    `json:"default_branch"`
	CloneURL      string    `json:"clone_url"`
	HTMLURL       string    `json:"html_url"`
}

// MetricRecord is a repository enriched with process and quality metrics.
type MetricRecord struct {
	Repository

	// Process metrics
	LOC           int `json:"loc"`
	Comments      int `json:"comments"`
	ReleasesCount int `json:"releases_count"`

	// Quality metrics
	CBO   float64 `json:"cbo"`
	DIT   float64 `json:"dit"`
	LCOM  float64 `json:"lcom"`
	WMC   int     `json:"wmc"`
	RFC   int     `json:"rfc"`
	LCOM3 float64 `json:"lcom3"`
	CA    int     `json:"ca"`
	CE    int     `json:"ce"`
	NPM   int     `json:"npm"`
}

// Value returns the named numeric column of the record.
func (r *MetricRecord) Value(column string) (float64, error) {
	switch column {
	case ColStars:
		return float64(r.Stars), nil
	case ColForks:
		return float64(r.Forks), nil
	case ColWatchers:
		return float64(r.Watchers), nil
	case ColAgeYears:
		return r.AgeYears, nil
	case ColSizeKB, ColSize:
		return float64(r.SizeKB), nil
	case ColLOC:
		return float64(r.LOC), nil
	case ColComments:
		return float64(r.Comments), nil
	case ColReleasesCount:
		return float64(r.ReleasesCount), nil
	case ColCBO:
		return r.CBO, nil
	case ColDIT:
		return r.DIT, nil
	case ColLCOM:
		return r.LCOM, nil
	case ColWMC:
		return float64(r.WMC), nil
	case ColRFC:
		return float64(r.RFC), nil
	case ColLCOM3:
		return r.LCOM3, nil
	case ColCA:
		return float64(r.CA), nil
	case ColCE:
		return float64(r.CE), nil
	case ColNPM:
		return float64(r.NPM), nil
	default:
		return math.NaN(), fmt.Errorf("%w: %q", ErrUnknownColumn, column)
	}
}

// Table is the metric table handed from synthesis to correlation and persistence.
// Rows keep the order in which repositories were collected.
type Table struct {
	Records []MetricRecord
}

// NewTable returns a table over the given records.
func NewTable(records []MetricRecord) *Table {
	return &Table{Records: records}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Records)
}

// Column returns one numeric column of the table by its stable name.
func (t *Table) Column(name string) ([]float64, error) {
	if !IsNumericColumn(name) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	out := make([]float64, len(t.Records))
	for i := range t.Records {
		v, err := t.Records[i].Value(name)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
