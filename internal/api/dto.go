package api

import (
	"github.com/Veraticus/finsight/internal/model"
)

// DateLayout is the layout of reference dates in requests.
const DateLayout = "2006-01-02"

// AnalyzeRequest is the body of POST /api/v1/analyze. Missing or empty
// transactions produce a "no data" report rather than an error.
type AnalyzeRequest struct {
	Transactions  model.MonthlyTransactions `json:"transactions"`
	Income        model.MonthlyIncome       `json:"income"`
	ReferenceDate string                    `json:"referenceDate" validate:"omitempty,datetime=2006-01-02"`
}

// CategorizeRequest is the body of POST /api/v1/categorize.
type CategorizeRequest struct {
	Description string `json:"description" validate:"required,max=500"`
}

// CategorizeResponse reports the category chosen for a description.
type CategorizeResponse struct {
	Category   model.Category `json:"category"`
	Icon       string         `json:"icon"`
	Confidence float64        `json:"confidence"`
}

// ErrorResponse is returned for every failed request.
type ErrorResponse struct {
	Error     string `json:"error"`
	Details   string `json:"details,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}
