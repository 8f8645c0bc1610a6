package plaid

import (
	"context"
	"sync"
	"time"

	"github.com/Veraticus/finsight/internal/service"
)

// MockClient is a mock implementation of service.TransactionFetcher for testing.
type MockClient struct {
	// FetchBatchFn controls the result of FetchBatch when set.
	FetchBatchFn func(ctx context.Context, start, end time.Time) (service.Batch, error)

	FetchBatchCalls []FetchBatchCall
	mu              sync.Mutex
}

// FetchBatchCall records the parameters of a FetchBatch call.
type FetchBatchCall struct {
	Start time.Time
	End   time.Time
}

// NewMockClient creates a new mock Plaid client.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// FetchBatch implements service.TransactionFetcher.
func (m *MockClient) FetchBatch(ctx context.Context, start, end time.Time) (service.Batch, error) {
	m.mu.Lock()
	m.FetchBatchCalls = append(m.FetchBatchCalls, FetchBatchCall{Start: start, End: end})
	m.mu.Unlock()

	if m.FetchBatchFn != nil {
		return m.FetchBatchFn(ctx, start, end)
	}
	return service.Batch{}, nil
}

// Reset clears all call tracking.
func (m *MockClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FetchBatchCalls = nil
}

var _ service.TransactionFetcher = (*MockClient)(nil)
