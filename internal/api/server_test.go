package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/finsight/internal/analysis"
	"github.com/Veraticus/finsight/internal/cache"
	"github.com/Veraticus/finsight/internal/classification"
	"github.com/Veraticus/finsight/internal/model"
	"github.com/Veraticus/finsight/internal/service"
)

var fixedNow = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

type testServer struct {
	*Server
	metrics  *Metrics
	registry *prometheus.Registry
}

func newTestServer(t *testing.T, storage service.Storage, opts Options) *testServer {
	t.Helper()

	categorizer := classification.NewDefaultCategorizer()
	engine, err := analysis.NewEngine(analysis.Deps{
		Categorizer: categorizer,
		Clock:       func() time.Time { return fixedNow },
	})
	require.NoError(t, err)

	reportCache := cache.New(time.Minute)
	t.Cleanup(reportCache.Close)

	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)

	if opts.RateLimit == 0 {
		opts.RateLimit = 1000
		opts.Burst = 1000
	}

	srv, err := NewServer(Deps{
		Engine:      engine,
		Categorizer: categorizer,
		Cache:       reportCache,
		Metrics:     metrics,
		Gatherer:    registry,
		Storage:     storage,
		Clock:       func() time.Time { return fixedNow },
	}, opts)
	require.NoError(t, err)

	return &testServer{Server: srv, metrics: metrics, registry: registry}
}

func (s *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.RemoteAddr = "192.0.2.10:4321"

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

const januaryBody = `{
	"transactions": {
		"jan": [
			{"desc": "Supermercado Continente", "valor": 100},
			{"desc": "Gasolina BP", "valor": 50},
			{"desc": "Farmácia", "valor": "abc"}
		]
	},
	"income": {"jan": [{"source": "Salário", "amount": 1500}]},
	"referenceDate": "2024-01-20"
}`

func TestNewServer_Validation(t *testing.T) {
	_, err := NewServer(Deps{}, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "engine dependency is required")
}

func TestHealth(t *testing.T) {
	t.Run("without storage", func(t *testing.T) {
		srv := newTestServer(t, nil, Options{})
		rec := srv.do(http.MethodGet, "/health", "")

		require.Equal(t, http.StatusOK, rec.Code)
		var body map[string]string
		decode(t, rec, &body)
		assert.Equal(t, "healthy", body["status"])
		assert.Equal(t, "disabled", body["storage"])
		assert.Equal(t, "2024-06-15T10:00:00Z", body["time"])
	})

	t.Run("storage ok", func(t *testing.T) {
		store := &mockStorage{}
		store.On("GetYears", mock.Anything).Return([]int{2024}, nil)

		rec := newTestServer(t, store, Options{}).do(http.MethodGet, "/health", "")
		require.Equal(t, http.StatusOK, rec.Code)
		store.AssertExpectations(t)
	})

	t.Run("storage failing", func(t *testing.T) {
		store := &mockStorage{}
		store.On("GetYears", mock.Anything).Return(nil, errors.New("database is locked"))

		rec := newTestServer(t, store, Options{}).do(http.MethodGet, "/health", "")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestAnalyze(t *testing.T) {
	srv := newTestServer(t, nil, Options{})

	rec := srv.do(http.MethodPost, "/api/v1/analyze", januaryBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var report analysis.Report
	decode(t, rec, &report)

	assert.Equal(t, 2, report.ProcessedData.TotalTransactions)
	assert.InDelta(t, 150, report.ProcessedData.TotalExpenses, 1e-9)
	assert.InDelta(t, 1500, report.HealthScore.IncomeTotal, 1e-9)
	assert.Equal(t, analysis.QualityFewData, report.Metadata.DataQuality)

	food, ok := report.ProcessedData.Category(model.CategoryFood)
	require.True(t, ok)
	assert.InDelta(t, 100, food.Total, 1e-9)

	assert.InDelta(t, 1, testutil.ToFloat64(srv.metrics.analysesTotal.WithLabelValues(analysis.QualityFewData)), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(srv.metrics.cacheRequests.WithLabelValues("miss")), 1e-9)
}

func TestAnalyze_CachesIdenticalRequests(t *testing.T) {
	srv := newTestServer(t, nil, Options{})

	first := srv.do(http.MethodPost, "/api/v1/analyze", januaryBody)
	second := srv.do(http.MethodPost, "/api/v1/analyze", januaryBody)

	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, http.StatusOK, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())

	assert.InDelta(t, 1, testutil.ToFloat64(srv.metrics.cacheRequests.WithLabelValues("hit")), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(srv.metrics.analysesTotal.WithLabelValues(analysis.QualityFewData)), 1e-9)
}

func TestAnalyze_CacheKeepsReferenceDay(t *testing.T) {
	srv := newTestServer(t, nil, Options{})
	laterInMonth := strings.Replace(januaryBody, "2024-01-20", "2024-01-27", 1)

	first := srv.do(http.MethodPost, "/api/v1/analyze", januaryBody)
	second := srv.do(http.MethodPost, "/api/v1/analyze", laterInMonth)
	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, http.StatusOK, second.Code)

	var firstReport, secondReport analysis.Report
	decode(t, first, &firstReport)
	decode(t, second, &secondReport)
	assert.Equal(t, 20, firstReport.Metadata.ReferenceDate.Day())
	assert.Equal(t, 27, secondReport.Metadata.ReferenceDate.Day())
	assert.InDelta(t, 2, testutil.ToFloat64(srv.metrics.cacheRequests.WithLabelValues("miss")), 1e-9)

	// Without a reference date the clock's day is used, whatever the hour.
	noReference := `{"transactions": {"jan": [{"desc": "Lidl", "valor": 12}]}}`
	srv.do(http.MethodPost, "/api/v1/analyze", noReference)
	rec := srv.do(http.MethodPost, "/api/v1/analyze", noReference)
	var report analysis.Report
	decode(t, rec, &report)
	assert.True(t, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC).Equal(report.Metadata.ReferenceDate))
	assert.InDelta(t, 1, testutil.ToFloat64(srv.metrics.cacheRequests.WithLabelValues("hit")), 1e-9)
}

func TestAnalyze_NoData(t *testing.T) {
	srv := newTestServer(t, nil, Options{})

	rec := srv.do(http.MethodPost, "/api/v1/analyze", `{}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var report analysis.Report
	decode(t, rec, &report)
	assert.Equal(t, 0, report.HealthScore.Score)
	assert.Equal(t, analysis.HealthUnknown, report.HealthScore.Status)
	assert.Equal(t, analysis.QualityNoData, report.Metadata.DataQuality)
	require.Len(t, report.Insights, 1)
}

func TestAnalyze_BadRequests(t *testing.T) {
	srv := newTestServer(t, nil, Options{})

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "malformed json", body: `{"transactions": [`, wantErr: "invalid request body"},
		{name: "bad reference date", body: `{"referenceDate": "20/01/2024"}`, wantErr: "validation failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := srv.do(http.MethodPost, "/api/v1/analyze", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			var body ErrorResponse
			decode(t, rec, &body)
			assert.Equal(t, tt.wantErr, body.Error)
			assert.NotEmpty(t, body.RequestID)
		})
	}
}

func TestAnalysisForYear(t *testing.T) {
	stored := model.MonthlyTransactions{
		model.January: {
			{Description: "Supermercado Continente", Amount: 80, Month: model.January, Year: 2023},
		},
	}

	t.Run("from storage", func(t *testing.T) {
		store := &mockStorage{}
		store.On("GetMonthlyTransactions", mock.Anything, 2023).Return(stored, nil)
		store.On("GetMonthlyIncome", mock.Anything, 2023).Return(model.MonthlyIncome{}, nil)

		srv := newTestServer(t, store, Options{})
		rec := srv.do(http.MethodGet, "/api/v1/analysis/2023", "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var report analysis.Report
		decode(t, rec, &report)
		assert.Equal(t, 1, report.ProcessedData.TotalTransactions)
		assert.Equal(t, 2023, report.Metadata.ReferenceDate.Year())
		assert.Equal(t, time.December, report.Metadata.ReferenceDate.Month())
		store.AssertExpectations(t)
	})

	t.Run("explicit reference", func(t *testing.T) {
		store := &mockStorage{}
		store.On("GetMonthlyTransactions", mock.Anything, 2023).Return(stored, nil)
		store.On("GetMonthlyIncome", mock.Anything, 2023).Return(model.MonthlyIncome{}, nil)

		rec := newTestServer(t, store, Options{}).do(http.MethodGet, "/api/v1/analysis/2023?reference=2023-03-01", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var report analysis.Report
		decode(t, rec, &report)
		assert.Equal(t, time.March, report.Metadata.ReferenceDate.Month())
	})

	t.Run("invalid year", func(t *testing.T) {
		rec := newTestServer(t, &mockStorage{}, Options{}).do(http.MethodGet, "/api/v1/analysis/abc", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid reference", func(t *testing.T) {
		rec := newTestServer(t, &mockStorage{}, Options{}).do(http.MethodGet, "/api/v1/analysis/2023?reference=yesterday", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("no storage", func(t *testing.T) {
		rec := newTestServer(t, nil, Options{}).do(http.MethodGet, "/api/v1/analysis/2023", "")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("storage error", func(t *testing.T) {
		store := &mockStorage{}
		store.On("GetMonthlyTransactions", mock.Anything, 2023).Return(nil, errors.New("disk I/O error"))

		rec := newTestServer(t, store, Options{}).do(http.MethodGet, "/api/v1/analysis/2023", "")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestCategorize(t *testing.T) {
	srv := newTestServer(t, nil, Options{})

	rec := srv.do(http.MethodPost, "/api/v1/categorize", `{"description": "Uber aeroporto"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body CategorizeResponse
	decode(t, rec, &body)
	assert.Equal(t, model.CategoryTransport, body.Category)
	assert.NotEmpty(t, body.Icon)
	assert.Greater(t, body.Confidence, 0.3)

	rec = srv.do(http.MethodPost, "/api/v1/categorize", `{"description": ""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRateLimiting(t *testing.T) {
	srv := newTestServer(t, nil, Options{RateLimit: 1, Burst: 2})

	codes := make([]int, 0, 3)
	for range 3 {
		codes = append(codes, srv.do(http.MethodPost, "/api/v1/categorize", `{"description": "Farmácia"}`).Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	assert.InDelta(t, 1, testutil.ToFloat64(srv.metrics.rateLimited), 1e-9)

	// Health checks are not limited.
	assert.Equal(t, http.StatusOK, srv.do(http.MethodGet, "/health", "").Code)
}

func TestRequestIDAndNotFound(t *testing.T) {
	srv := newTestServer(t, nil, Options{})

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "req-123", rec.Header().Get(RequestIDHeader))

	var body ErrorResponse
	decode(t, rec, &body)
	assert.Equal(t, "req-123", body.RequestID)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, nil, Options{})
	require.Equal(t, http.StatusOK, srv.do(http.MethodPost, "/api/v1/analyze", januaryBody).Code)

	rec := srv.do(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "finsight_analyses_total")
	assert.Contains(t, rec.Body.String(), "finsight_health_score")
}

func TestRateLimiter_Cleanup(t *testing.T) {
	now := fixedNow
	rl := NewRateLimiter(1, 1)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.allow("a"))
	now = now.Add(time.Minute)
	assert.True(t, rl.allow("b"))

	now = now.Add(2*time.Minute + time.Second)
	rl.Cleanup(visitorIdleTimeout)
	assert.Equal(t, 1, rl.size())
}
