package forgeclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/huangsam/repometrics/internal/contract"
	"github.com/huangsam/repometrics/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var javaQuery = schema.SearchQuery{Predicate: "language:java", Sort: "stars", Order: "desc"}

func TestSearchPage_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/repositories", r.URL.Path)
		assert.Equal(t, "language:java", r.URL.Query().Get("q"))
		assert.Equal(t, "stars", r.URL.Query().Get("sort"))
		assert.Equal(t, "desc", r.URL.Query().Get("order"))
		assert.Equal(t, "50", r.URL.Query().Get("per_page"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, acceptHeader, r.Header.Get("Accept"))
		assert.Equal(t, "repometrics-test", r.Header.Get("User-Agent"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"total_count":2,"items":[{"full_name":"a/b"},{"full_name":"c/d","created_at":"bogus"}]}`))
	}))
	defer server.Close()

	client := NewHTTPSearchClient(server.URL+"/", "secret", "repometrics-test", time.Second)
	items, err := client.SearchPage(context.Background(), javaQuery, 2, 50)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.JSONEq(t, `{"full_name":"c/d","created_at":"bogus"}`, string(items[1]))
}

func TestSearchPage_NoTokenNoAuthorization(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		assert.Equal(t, contract.DefaultUserAgent, r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`{"items":[]}`))
	}))
	defer server.Close()

	client := NewHTTPSearchClient(server.URL, "", "", time.Second)
	items, err := client.SearchPage(context.Background(), javaQuery, 1, 100)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestSearchPage_ErrorClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "forbidden is rate limit",
			status: http.StatusForbidden,
			body:   `{"message":"API rate limit exceeded"}`,
			check: func(t *testing.T, err error) {
				var rl *contract.RateLimitError
				require.ErrorAs(t, err, &rl)
				assert.Equal(t, 3, rl.Page)
				assert.Equal(t, http.StatusForbidden, rl.StatusCode)
			},
		},
		{
			name:   "too many requests is rate limit",
			status: http.StatusTooManyRequests,
			check: func(t *testing.T, err error) {
				var rl *contract.RateLimitError
				require.ErrorAs(t, err, &rl)
			},
		},
		{
			name:   "bad gateway is transport",
			status: http.StatusBadGateway,
			body:   "upstream failed",
			check: func(t *testing.T, err error) {
				var te *contract.TransportError
				require.ErrorAs(t, err, &te)
				assert.Equal(t, http.StatusBadGateway, te.StatusCode)
				assert.Contains(t, te.Error(), "upstream failed")
			},
		},
		{
			name:   "unprocessable is api error",
			status: http.StatusUnprocessableEntity,
			body:   `{"message":"Only the first 1000 search results are available"}`,
			check: func(t *testing.T, err error) {
				var api *contract.APIError
				require.ErrorAs(t, err, &api)
				assert.Equal(t, "Only the first 1000 search results are available", api.Message)
				assert.False(t, contract.IsRetryable(err))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewHTTPSearchClient(server.URL, "", "", time.Second)
			_, err := client.SearchPage(context.Background(), javaQuery, 3, 100)
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestSearchPage_MalformedBodyIsTransport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"items":[`))
	}))
	defer server.Close()

	client := NewHTTPSearchClient(server.URL, "", "", time.Second)
	_, err := client.SearchPage(context.Background(), javaQuery, 1, 100)
	var te *contract.TransportError
	require.ErrorAs(t, err, &te)
	assert.True(t, contract.IsRetryable(err))
}

func TestSearchPage_NetworkErrorIsTransport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewHTTPSearchClient(url, "", "", time.Second)
	_, err := client.SearchPage(context.Background(), javaQuery, 7, 100)
	var te *contract.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, 7, te.Page)
	assert.Zero(t, te.StatusCode)
}

func TestSearchPage_CanceledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"items":[]}`))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	client := NewHTTPSearchClient(server.URL, "", "", time.Second)
	_, err := client.SearchPage(ctx, javaQuery, 1, 100)
	assert.ErrorIs(t, err, context.Canceled)
}
