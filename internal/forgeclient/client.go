// Package forgeclient talks to a GitHub-style repository search API.
package forgeclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/repometrics/internal/contract"
	"github.com/huangsam/repometrics/schema"
)

// searchPath is appended to the API base URL.
const searchPath = "/search/repositories"

// acceptHeader pins the REST API version.
const acceptHeader = "application/vnd.github.v3+json"

// maxErrorBody caps how much of an error response is kept for the message.
const maxErrorBody = 4096

// HTTPSearchClient implements contract.SearchClient over HTTP.
type HTTPSearchClient struct {
	baseURL   string
	token     string
	userAgent string
	http      *http.Client
}

var _ contract.SearchClient = &HTTPSearchClient{} // Compile-time check

// NewHTTPSearchClient builds a client for the given API base URL.
// An empty token sends unauthenticated requests.
func NewHTTPSearchClient(baseURL, token, userAgent string, timeout time.Duration) *HTTPSearchClient {
	if userAgent == "" {
		userAgent = contract.DefaultUserAgent
	}
	return &HTTPSearchClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		token:     token,
		userAgent: userAgent,
		http:      &http.Client{Timeout: timeout},
	}
}

// NewFromConfig builds a client from the validated configuration.
func NewFromConfig(cfg *contract.Config) *HTTPSearchClient {
	return NewHTTPSearchClient(cfg.APIURL, cfg.Token, cfg.UserAgent, cfg.HTTPTimeout)
}

// searchResponse is the envelope of the search endpoint. Items stay raw so
// that one malformed record does not fail the whole page.
type searchResponse struct {
	TotalCount int               `json:"total_count"`
	Items      []json.RawMessage `json:"items"`
}

// errorResponse is the error body shape of the API.
type errorResponse struct {
	Message string `json:"message"`
}

// SearchPage requests one page of search results.
func (c *HTTPSearchClient) SearchPage(ctx context.Context, query schema.SearchQuery, page, perPage int) ([]json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.pageURL(query, page, perPage), nil)
	if err != nil {
		return nil, &contract.APIError{Page: page, Message: err.Error()}
	}
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("User-Agent", c.userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &contract.TransportError{Page: page, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if err := classifyStatus(page, resp); err != nil {
		return nil, err
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		// A truncated body is a transport problem, not a bad query
		return nil, &contract.TransportError{Page: page, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode search response: %w", err)}
	}
	return body.Items, nil
}

// pageURL renders the request URL for one page.
func (c *HTTPSearchClient) pageURL(query schema.SearchQuery, page, perPage int) string {
	params := url.Values{}
	params.Set("q", query.Predicate)
	if query.Sort != "" {
		params.Set("sort", query.Sort)
	}
	if query.Order != "" {
		params.Set("order", query.Order)
	}
	params.Set("per_page", strconv.Itoa(perPage))
	params.Set("page", strconv.Itoa(page))
	return c.baseURL + searchPath + "?" + params.Encode()
}

// classifyStatus maps a non-2xx response onto the error taxonomy.
func classifyStatus(page int, resp *http.Response) error {
	code := resp.StatusCode
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusForbidden || code == http.StatusTooManyRequests:
		return &contract.RateLimitError{Page: page, StatusCode: code}
	case code >= 500:
		return &contract.TransportError{Page: page, StatusCode: code, Err: errors.New(readMessage(resp))}
	default:
		return &contract.APIError{Page: page, StatusCode: code, Message: readMessage(resp)}
	}
}

// readMessage extracts the API message from an error response, falling back to the status text.
func readMessage(resp *http.Response) string {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err == nil && len(raw) > 0 {
		var body errorResponse
		if json.Unmarshal(raw, &body) == nil && body.Message != "" {
			return body.Message
		}
		return strings.TrimSpace(string(raw))
	}
	return http.StatusText(resp.StatusCode)
}
