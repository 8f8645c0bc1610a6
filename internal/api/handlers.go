package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Veraticus/finsight/internal/analysis"
	"github.com/Veraticus/finsight/internal/cache"
	"github.com/Veraticus/finsight/internal/model"
)

const (
	minYear = 1900
	maxYear = 9999
)

func (s *Server) health(c echo.Context) error {
	storage := "disabled"
	if s.deps.Storage != nil {
		if _, err := s.deps.Storage.GetYears(c.Request().Context()); err != nil {
			s.deps.Logger.Error("Storage health check failed", "error", err)
			return sendError(c, http.StatusServiceUnavailable, "storage unavailable", "")
		}
		storage = "ok"
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"storage": storage,
		"time":    s.deps.Clock().UTC().Format(time.RFC3339),
	})
}

func (s *Server) analyze(c echo.Context) error {
	var req AnalyzeRequest
	if err := c.Bind(&req); err != nil {
		return sendError(c, http.StatusBadRequest, "invalid request body", "")
	}
	if err := c.Validate(&req); err != nil {
		return sendError(c, http.StatusBadRequest, "validation failed", err.Error())
	}

	reference := s.deps.Clock()
	if req.ReferenceDate != "" {
		// Already checked by the validator.
		reference, _ = time.Parse(DateLayout, req.ReferenceDate)
	}

	return c.JSON(http.StatusOK, s.analyzeCached(req.Transactions, req.Income, reference))
}

func (s *Server) analysisForYear(c echo.Context) error {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil || year < minYear || year > maxYear {
		return sendError(c, http.StatusBadRequest, "invalid year", c.Param("year"))
	}
	if s.deps.Storage == nil {
		return sendError(c, http.StatusServiceUnavailable, "storage not configured", "")
	}

	reference := analysis.ReferenceForYear(year, s.deps.Clock())
	if raw := c.QueryParam("reference"); raw != "" {
		parsed, parseErr := time.Parse(DateLayout, raw)
		if parseErr != nil {
			return sendError(c, http.StatusBadRequest, "invalid reference date", raw)
		}
		reference = parsed
	}

	ctx := c.Request().Context()
	transactions, err := s.deps.Storage.GetMonthlyTransactions(ctx, year)
	if err != nil {
		s.deps.Logger.Error("Failed to load transactions", "year", year, "error", err)
		return sendError(c, http.StatusInternalServerError, "failed to load transactions", "")
	}
	income, err := s.deps.Storage.GetMonthlyIncome(ctx, year)
	if err != nil {
		s.deps.Logger.Error("Failed to load income", "year", year, "error", err)
		return sendError(c, http.StatusInternalServerError, "failed to load income", "")
	}

	return c.JSON(http.StatusOK, s.analyzeCached(transactions, income, reference))
}

func (s *Server) categorize(c echo.Context) error {
	var req CategorizeRequest
	if err := c.Bind(&req); err != nil {
		return sendError(c, http.StatusBadRequest, "invalid request body", "")
	}
	if err := c.Validate(&req); err != nil {
		return sendError(c, http.StatusBadRequest, "validation failed", err.Error())
	}

	category, confidence := s.deps.Categorizer.Categorize(req.Description)
	return c.JSON(http.StatusOK, CategorizeResponse{
		Category:   category,
		Icon:       s.deps.Categorizer.Profile(category).Icon,
		Confidence: confidence,
	})
}

// analyzeCached runs the engine at most once per distinct input. The
// reference is cut to its calendar day so a cached report carries the same
// reference date as a fresh one would.
func (s *Server) analyzeCached(
	transactions model.MonthlyTransactions,
	income model.MonthlyIncome,
	reference time.Time,
) *analysis.Report {
	y, m, d := reference.Date()
	reference = time.Date(y, m, d, 0, 0, 0, 0, reference.Location())
	key := cache.Key(transactions, income, reference)

	report, hit := s.deps.Cache.GetOrCompute(key, func() *analysis.Report {
		start := time.Now()
		r := s.deps.Engine.Analyze(transactions, income, analysis.Options{ReferenceDate: reference})
		s.deps.Metrics.RecordAnalysis(r, time.Since(start))
		return r
	})
	s.deps.Metrics.RecordCache(hit)

	return report
}
