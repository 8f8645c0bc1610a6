package storage

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/finsight/internal/model"
)

func nan() float64 { return math.NaN() }

func TestValidateContext(t *testing.T) {
	tests := []struct {
		ctx     context.Context
		name    string
		wantErr bool
	}{
		{name: "valid context", ctx: context.Background()},
		{name: "nil context", ctx: nil, wantErr: true},
		{
			name: "canceled context still valid",
			ctx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			}(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateContext(tt.ctx)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNilContext)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePeriod(t *testing.T) {
	tests := []struct {
		wantErr error
		month   model.MonthKey
		name    string
		year    int
	}{
		{name: "valid", year: 2024, month: model.March},
		{name: "lower bound", year: minYear, month: model.January},
		{name: "upper bound", year: maxYear, month: model.December},
		{name: "year too small", year: minYear - 1, month: model.January, wantErr: ErrInvalidYear},
		{name: "year too large", year: maxYear + 1, month: model.January, wantErr: ErrInvalidYear},
		{name: "empty month", year: 2024, month: "", wantErr: ErrInvalidMonth},
		{name: "english month", year: 2024, month: "feb", wantErr: ErrInvalidMonth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validatePeriod(tt.year, tt.month)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateTransactions(t *testing.T) {
	tests := []struct {
		wantErr error
		name    string
		batch   []model.Transaction
	}{
		{
			name:  "negative amounts are stored",
			batch: []model.Transaction{{Month: model.May, Year: 2024, Amount: -5}},
		},
		{
			name:  "empty description is stored",
			batch: []model.Transaction{{Month: model.May, Year: 2024, Amount: 5}},
		},
		{
			name:    "infinite amount",
			batch:   []model.Transaction{{Month: model.May, Year: 2024, Amount: math.Inf(1)}},
			wantErr: ErrInvalidTransaction,
		},
		{
			name:    "empty",
			batch:   []model.Transaction{},
			wantErr: ErrEmptySlice,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTransactions(tt.batch)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateIncome(t *testing.T) {
	assert.NoError(t, validateIncome([]model.IncomeRecord{{Month: model.June, Year: 2024, Amount: 100}}))
	assert.ErrorIs(t, validateIncome(nil), ErrEmptySlice)
	assert.ErrorIs(t,
		validateIncome([]model.IncomeRecord{{Month: model.June, Year: 2024, Amount: nan()}}),
		ErrInvalidIncome)
}

func TestHashSequence(t *testing.T) {
	seq := newHashSequence()
	assert.Equal(t, "abc", seq.next("abc"))
	assert.Equal(t, "abc-1", seq.next("abc"))
	assert.Equal(t, "def", seq.next("def"))
	assert.Equal(t, "abc-2", seq.next("abc"))
}
