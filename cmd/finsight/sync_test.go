package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/finsight/internal/model"
	"github.com/Veraticus/finsight/internal/plaid"
	"github.com/Veraticus/finsight/internal/service"
	"github.com/Veraticus/finsight/internal/simplefin"
)

func TestSyncBatch(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)
	dates := service.DateRange{
		Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
	}

	mock := plaid.NewMockClient()
	mock.FetchBatchFn = func(_ context.Context, _, _ time.Time) (service.Batch, error) {
		return service.Batch{
			Expenses: []model.Transaction{
				{ID: "tx1", Description: "Continente", Amount: 25.5, Date: "2024-01-10", Month: model.January, Year: 2024, Source: "plaid:acc"},
				{ID: "tx2", Description: "Galp", Amount: 60, Date: "2024-01-12", Month: model.January, Year: 2024, Source: "plaid:acc"},
			},
			Income: []model.IncomeRecord{
				{ID: "tx3", Source: "Salario", Amount: 1500, Date: "2024-01-25", Month: model.January, Year: 2024},
			},
			Transfers: 1,
		}, nil
	}

	batch, expenses, income, err := syncBatch(ctx, mock, store, dates)
	require.NoError(t, err)
	assert.Equal(t, 1, batch.Transfers)
	assert.Equal(t, 2, expenses)
	assert.Equal(t, 1, income)

	require.Len(t, mock.FetchBatchCalls, 1)
	assert.Equal(t, dates.Start, mock.FetchBatchCalls[0].Start)
	assert.Equal(t, dates.End, mock.FetchBatchCalls[0].End)

	// Overlapping syncs do not duplicate records.
	_, expenses, income, err = syncBatch(ctx, mock, store, dates)
	require.NoError(t, err)
	assert.Zero(t, expenses)
	assert.Zero(t, income)
}

func TestSyncBatchErrors(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)
	dates := service.DateRange{Start: time.Now().AddDate(0, 0, -7), End: time.Now()}

	t.Run("fetch failure", func(t *testing.T) {
		mock := plaid.NewMockClient()
		mock.FetchBatchFn = func(_ context.Context, _, _ time.Time) (service.Batch, error) {
			return service.Batch{}, errors.New("connection refused")
		}

		_, _, _, err := syncBatch(ctx, mock, store, dates)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to fetch transactions")
	})

	t.Run("empty batch", func(t *testing.T) {
		batch, expenses, income, err := syncBatch(ctx, plaid.NewMockClient(), store, dates)
		require.NoError(t, err)
		assert.True(t, batch.Empty())
		assert.Zero(t, expenses)
		assert.Zero(t, income)
	})
}

func TestParseDateRange(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		start     string
		end       string
		days      int
		wantStart time.Time
		wantEnd   time.Time
		wantErr   bool
	}{
		{
			name:      "days from now",
			days:      10,
			wantStart: now.AddDate(0, 0, -10),
			wantEnd:   now,
		},
		{
			name:      "non-positive days uses default",
			days:      0,
			wantStart: now.AddDate(0, 0, -defaultSyncDays),
			wantEnd:   now,
		},
		{
			name:      "explicit range",
			start:     "2024-01-01",
			end:       "2024-01-31",
			wantStart: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "start only",
			start:     "2024-03-01",
			days:      30,
			wantStart: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   now,
		},
		{
			name:      "end only",
			end:       "2024-02-29",
			days:      5,
			wantStart: time.Date(2024, 2, 24, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
		},
		{name: "invalid start", start: "01/01/2024", wantErr: true},
		{name: "invalid end", end: "yesterday", wantErr: true},
		{name: "start after end", start: "2024-02-01", end: "2024-01-01", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dates, err := parseDateRange(tt.start, tt.end, tt.days, now)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.wantStart.Equal(dates.Start), "start: got %v", dates.Start)
			assert.True(t, tt.wantEnd.Equal(dates.End), "end: got %v", dates.End)
		})
	}
}

func TestSyncBatchSimpleFIN(t *testing.T) {
	posted := time.Date(2024, 2, 10, 12, 0, 0, 0, time.UTC).Unix()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprintf(w, `{"accounts":[{"id":"A1","transactions":[
			{"id":"1","posted":%d,"amount":"-42.10","description":"PINGO DOCE","payee":"Pingo Doce"},
			{"id":"2","posted":%d,"amount":"900.00","description":"SALARIO","payee":""}
		]}]}`, posted, posted)
	}))
	t.Cleanup(server.Close)

	client, err := simplefin.NewClientWithAccessURL(server.URL, server.Client())
	require.NoError(t, err)

	ctx := context.Background()
	store := createTestStorage(t)
	dates := service.DateRange{
		Start: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
	}

	_, expenses, income, err := syncBatch(ctx, client, store, dates)
	require.NoError(t, err)
	assert.Equal(t, 1, expenses)
	assert.Equal(t, 1, income)

	stored, err := store.GetMonthlyTransactions(ctx, 2024)
	require.NoError(t, err)
	require.Len(t, stored[model.February], 1)
	assert.Equal(t, "Pingo Doce", stored[model.February][0].Description)
	assert.InDelta(t, 42.10, stored[model.February][0].Amount, 1e-9)
}
