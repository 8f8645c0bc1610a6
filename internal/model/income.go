package model

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"strings"
)

// IncomeRecord represents money received in a given month.
type IncomeRecord struct {
	ID     string   `json:"id,omitempty"`
	Source string   `json:"source"`
	Date   string   `json:"date,omitempty"`
	Month  MonthKey `json:"month,omitempty"`
	Hash   string   `json:"-"`
	Amount float64  `json:"amount"`
	Year   int      `json:"year,omitempty"`
}

// MonthlyIncome groups income records by month.
type MonthlyIncome map[MonthKey][]IncomeRecord

// Valid reports whether the amount is positive, finite and at most MaxAmount.
func (r IncomeRecord) Valid() bool {
	return validAmount(r.Amount)
}

// Total sums every valid income record.
func (mi MonthlyIncome) Total() float64 {
	var total float64
	for _, records := range mi {
		for _, r := range records {
			if r.Valid() {
				total += r.Amount
			}
		}
	}
	return total
}

// GenerateHash creates a unique hash for duplicate detection.
func (r *IncomeRecord) GenerateHash() string {
	data := fmt.Sprintf("income:%d:%s:%s:%.2f:%s",
		r.Year,
		r.Month,
		r.Date,
		r.Amount,
		strings.ToLower(strings.TrimSpace(r.Source)))
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

func (raw rawRecord) toIncome(month MonthKey) IncomeRecord {
	r := IncomeRecord{
		ID:     raw.ID,
		Source: firstNonEmpty(raw.Source, raw.Fonte),
		Date:   firstNonEmpty(raw.Date, raw.Data),
		Month:  month,
		Year:   raw.Year,
		Amount: decodeAmount(raw.Amount, raw.Valor),
	}
	if r.Source == "" {
		switch {
		case raw.Description != nil:
			r.Source = *raw.Description
		case raw.Desc != nil:
			r.Source = *raw.Desc
		}
	}
	return r
}

// UnmarshalJSON accepts the same legacy field names as MonthlyTransactions.
func (mi *MonthlyIncome) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := make(MonthlyIncome, len(raw))
	for _, key := range sortedKeys(raw) {
		value := raw[key]
		var records []json.RawMessage
		if err := json.Unmarshal(value, &records); err != nil {
			continue
		}
		month := normalizeMonthKey(key)
		incomes := make([]IncomeRecord, 0, len(records))
		for _, rec := range records {
			var r rawRecord
			if err := json.Unmarshal(rec, &r); err != nil {
				continue
			}
			incomes = append(incomes, r.toIncome(month))
		}
		out[month] = append(out[month], incomes...)
	}
	*mi = out
	return nil
}
