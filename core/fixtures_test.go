package core

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/huangsam/repometrics/internal/contract"
	"github.com/huangsam/repometrics/schema"
)

var (
	fixedNow  = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	javaQuery = schema.SearchQuery{Predicate: "language:java", Sort: "stars", Order: "desc"}
)

// rawRepo renders one search item the way the forge API returns it.
func rawRepo(fullName string, stars, sizeKB int, created string) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(
		`{"name":%q,"full_name":%q,"stargazers_count":%d,"forks_count":%d,"watchers_count":%d,"size":%d,"language":"Java","created_at":%q,"updated_at":"2025-05-01T00:00:00Z","default_branch":"main"}`,
		fullName[len("org/"):], fullName, stars, stars/10, stars, sizeKB, created))
}

// fixtureItems returns n distinct, well-formed search items.
func fixtureItems(n int) []json.RawMessage {
	items := make([]json.RawMessage, n)
	for i := range n {
		items[i] = rawRepo(
			fmt.Sprintf("org/repo-%02d", i),
			50+i*i*700,
			100+i*3000,
			fmt.Sprintf("%d-03-15T10:00:00Z", 2010+i),
		)
	}
	return items
}

// newSearchServer serves items through the repository search endpoint,
// honoring the page and per_page parameters.
func newSearchServer(t *testing.T, items []json.RawMessage) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
		start := min((page-1)*perPage, len(items))
		end := min(start+perPage, len(items))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"total_count": len(items),
			"items":       items[start:end],
		})
	}))
	t.Cleanup(server.Close)
	return server
}

// testConfig returns a validated-looking config pointed at apiURL.
func testConfig(t *testing.T, apiURL string) *contract.Config {
	t.Helper()
	dir := t.TempDir()
	return &contract.Config{
		APIURL:         apiURL,
		UserAgent:      "repometrics-test",
		Query:          javaQuery,
		Population:     6,
		Subset:         4,
		PageSize:       contract.DefaultPageSize,
		MaxRetries:     1,
		HTTPTimeout:    5 * time.Second,
		Seed:           42,
		ProcessMetrics: schema.DefaultProcessMetrics,
		QualityMetrics: schema.DefaultQualityMetrics,
		Output:         schema.TextOut,
		OutputDir:      filepath.Join(dir, "resultados"),
		DatasetDir:     filepath.Join(dir, "dataset"),
		Precision:      3,
		Charts:         true,
		CacheBackend:   schema.NoneBackend,
	}
}
