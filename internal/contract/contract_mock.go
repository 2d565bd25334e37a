package contract

import (
	"context"
	"encoding/json"

	"github.com/huangsam/repometrics/schema"
	"github.com/stretchr/testify/mock"
)

// MockSearchClient is a mock implementation of SearchClient for testing.
type MockSearchClient struct {
	mock.Mock
}

var _ SearchClient = &MockSearchClient{} // Compile-time check

// SearchPage implements the SearchClient interface.
func (m *MockSearchClient) SearchPage(ctx context.Context, query schema.SearchQuery, page, perPage int) ([]json.RawMessage, error) {
	args := m.Called(ctx, query, page, perPage)
	items, _ := args.Get(0).([]json.RawMessage)
	return items, args.Error(1)
}
