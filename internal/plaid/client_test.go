package plaid

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/finsight/internal/classification"
	"github.com/Veraticus/finsight/internal/common"
	"github.com/Veraticus/finsight/internal/model"
	"github.com/Veraticus/finsight/internal/service"
)

func TestConfig_Validate(t *testing.T) {
	valid := Config{
		ClientID:    "test-client-id",
		Secret:      "test-secret",
		Environment: "sandbox",
		AccessToken: "test-token",
	}

	tests := []struct {
		wantErr error
		mutate  func(*Config)
		name    string
		errMsg  string
	}{
		{
			name:   "valid config",
			mutate: func(*Config) {},
		},
		{
			name:    "missing client ID",
			mutate:  func(c *Config) { c.ClientID = "" },
			wantErr: common.ErrMissingConfig,
			errMsg:  "plaid client ID is required",
		},
		{
			name:    "missing secret",
			mutate:  func(c *Config) { c.Secret = "" },
			wantErr: common.ErrMissingConfig,
			errMsg:  "plaid secret is required",
		},
		{
			name:    "missing access token",
			mutate:  func(c *Config) { c.AccessToken = "" },
			wantErr: common.ErrMissingConfig,
			errMsg:  "plaid access token is required",
		},
		{
			name:    "invalid environment",
			mutate:  func(c *Config) { c.Environment = "development" },
			wantErr: common.ErrInvalidConfig,
			errMsg:  "sandbox or production",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestNewClient(t *testing.T) {
	client, err := NewClient(Config{
		ClientID:    "id",
		Secret:      "secret",
		Environment: "production",
		AccessToken: "token",
	})
	require.NoError(t, err)
	assert.NotNil(t, client.client)
	assert.NotNil(t, client.fetchPage)
	assert.Equal(t, "token", client.accessToken)

	_, err = NewClient(Config{})
	assert.ErrorIs(t, err, common.ErrMissingConfig)
}

func testClient(fetch pageFunc) *Client {
	return &Client{
		logger:    slog.Default().With("component", "plaid-test"),
		flows:     classification.NewDefaultFlowDetector(),
		fetchPage: fetch,
		retryOpts: service.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: time.Millisecond,
			MaxDelay:     5 * time.Millisecond,
			Multiplier:   2,
		},
	}
}

func recordsPage(n int, offset int32) []record {
	page := make([]record, n)
	for i := range page {
		page[i] = record{
			ID:        fmt.Sprintf("tx-%d", int(offset)+i),
			AccountID: "acc",
			Name:      "PINGO DOCE",
			Date:      "2024-03-05",
			Amount:    10,
		}
	}
	return page
}

func TestClient_FetchBatch_Paginates(t *testing.T) {
	var offsets []int32
	client := testClient(func(_ context.Context, _, _ time.Time, offset int32) ([]record, int32, error) {
		offsets = append(offsets, offset)
		const total = 1200
		remaining := total - int(offset)
		n := int(pageSize)
		if remaining < n {
			n = remaining
		}
		return recordsPage(n, offset), total, nil
	})

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	batch, err := client.FetchBatch(context.Background(), start, start.AddDate(0, 1, 0))
	require.NoError(t, err)

	assert.Equal(t, []int32{0, 500, 1000}, offsets)
	assert.Len(t, batch.Expenses, 1200)
	assert.Equal(t, model.March, batch.Expenses[0].Month)
}

func TestClient_FetchBatch_RetriesRateLimit(t *testing.T) {
	calls := 0
	client := testClient(func(_ context.Context, _, _ time.Time, offset int32) ([]record, int32, error) {
		calls++
		if calls == 1 {
			return nil, 0, common.Transient(common.ErrPlaidRateLimit)
		}
		return recordsPage(2, offset), 2, nil
	})

	now := time.Now()
	batch, err := client.FetchBatch(context.Background(), now.AddDate(0, -1, 0), now)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Len(t, batch.Expenses, 2)
}

func TestClient_FetchBatch_TerminalError(t *testing.T) {
	calls := 0
	client := testClient(func(context.Context, time.Time, time.Time, int32) ([]record, int32, error) {
		calls++
		return nil, 0, common.Terminal(common.ErrPlaidConnection)
	})

	now := time.Now()
	_, err := client.FetchBatch(context.Background(), now.AddDate(0, -1, 0), now)
	require.ErrorIs(t, err, common.ErrPlaidConnection)
	assert.Equal(t, 1, calls)
}

func TestClient_FetchBatch_Validation(t *testing.T) {
	client := testClient(func(context.Context, time.Time, time.Time, int32) ([]record, int32, error) {
		return nil, 0, errors.New("should not be called")
	})

	tests := []struct {
		start  time.Time
		end    time.Time
		ctx    context.Context
		name   string
		errMsg string
	}{
		{
			name:   "nil context",
			ctx:    nil,
			start:  time.Now().AddDate(0, -1, 0),
			end:    time.Now(),
			errMsg: "context cannot be nil",
		},
		{
			name:   "start date after end date",
			ctx:    context.Background(),
			start:  time.Now(),
			end:    time.Now().AddDate(0, -1, 0),
			errMsg: "start date must be before end date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.FetchBatch(tt.ctx, tt.start, tt.end)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestSplitRecords(t *testing.T) {
	records := []record{
		{ID: "1", AccountID: "a", Name: "CONTINENTE 123456789", Date: "2024-01-10", Amount: 42.5},
		{ID: "2", AccountID: "a", Name: "SALARIO ACME LDA", Date: "2024-01-25", Amount: -1500},
		{ID: "3", AccountID: "a", Name: "TRANSFERENCIA POUPANCA", Date: "2024-01-26", Amount: 200},
		{ID: "4", AccountID: "a", Name: "Zero", Date: "2024-01-27", Amount: 0},
		{ID: "5", AccountID: "a", Name: "Bad date", Date: "27/01/2024", Amount: 5},
		{ID: "6", AccountID: "b", Name: "UBER TRIP", MerchantName: "uber", Date: "2024-02-01", Amount: 8},
	}

	batch := splitRecords(records, classification.NewDefaultFlowDetector(), slog.Default())

	require.Len(t, batch.Expenses, 2)
	require.Len(t, batch.Income, 1)
	assert.Equal(t, 1, batch.Transfers)

	assert.Equal(t, "Continente", batch.Expenses[0].Description)
	assert.Equal(t, model.January, batch.Expenses[0].Month)
	assert.Equal(t, 2024, batch.Expenses[0].Year)
	assert.Equal(t, "plaid:a", batch.Expenses[0].Source)

	assert.Equal(t, "Uber", batch.Expenses[1].Description)
	assert.Equal(t, model.February, batch.Expenses[1].Month)

	assert.Equal(t, "Salario Acme", batch.Income[0].Source)
	assert.InDelta(t, 1500, batch.Income[0].Amount, 1e-9)
}

func TestCleanMerchantName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "basic name", input: "Lidl", expected: "Lidl"},
		{name: "lowercase to title case", input: "pingo doce", expected: "Pingo Doce"},
		{name: "accented letters", input: "FARMÁCIA ÉVORA", expected: "Farmácia Évora"},
		{name: "remove Lda suffix", input: "Worten Lda", expected: "Worten"},
		{name: "remove transaction ID", input: "PAYPAL 123456789", expected: "Paypal"},
		{name: "preserve short numbers", input: "7-ELEVEN 2345", expected: "7-Eleven 2345"},
		{name: "multiple cleanups", input: "acme unipessoal lda 987654321", expected: "Acme"},
		{name: "extra spaces", input: "  Google   Cloud   ", expected: "Google Cloud"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, cleanMerchantName(tt.input))
		})
	}
}

func TestIsAllDigits(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"123456", true},
		{"12a456", false},
		{"", true},
		{"12.34", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, isAllDigits(tt.input))
		})
	}
}

func TestMockClient(t *testing.T) {
	mock := NewMockClient()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	batch, err := mock.FetchBatch(context.Background(), start, end)
	require.NoError(t, err)
	assert.True(t, batch.Empty())

	mock.FetchBatchFn = func(context.Context, time.Time, time.Time) (service.Batch, error) {
		return service.Batch{Transfers: 2}, nil
	}
	batch, err = mock.FetchBatch(context.Background(), start, end)
	require.NoError(t, err)
	assert.Equal(t, 2, batch.Transfers)

	require.Len(t, mock.FetchBatchCalls, 2)
	assert.Equal(t, start, mock.FetchBatchCalls[0].Start)
	assert.Equal(t, end, mock.FetchBatchCalls[1].End)

	mock.Reset()
	assert.Empty(t, mock.FetchBatchCalls)
}
