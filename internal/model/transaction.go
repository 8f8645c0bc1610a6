package model

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"
)

// Transaction represents a single expense record for a given month.
type Transaction struct {
	ID          string   `json:"id,omitempty"`
	Description string   `json:"description"`
	Date        string   `json:"date,omitempty"`
	Month       MonthKey `json:"month,omitempty"`
	Source      string   `json:"source,omitempty"`
	Hash        string   `json:"-"`
	Amount      float64  `json:"amount"`
	Year        int      `json:"year,omitempty"`
}

// MonthlyTransactions groups expense records by month.
type MonthlyTransactions map[MonthKey][]Transaction

// MaxAmount is the largest amount a single record may carry. Larger values
// are treated as corrupt input so report totals always stay finite.
const MaxAmount = 1e12

// Valid reports whether the amount is positive, finite and at most MaxAmount.
func (t Transaction) Valid() bool {
	return validAmount(t.Amount)
}

func validAmount(v float64) bool {
	return !math.IsNaN(v) && v > 0 && v <= MaxAmount
}

// GenerateHash creates a unique hash for duplicate detection.
func (t *Transaction) GenerateHash() string {
	data := fmt.Sprintf("%d:%s:%s:%.2f:%s",
		t.Year,
		t.Month,
		t.Date,
		t.Amount,
		strings.ToLower(strings.TrimSpace(t.Description)))
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// rawRecord mirrors the loosely typed records produced by the storage layer and
// older exports, which use Portuguese field names.
type rawRecord struct {
	ID          string          `json:"id"`
	Description *string         `json:"description"`
	Desc        *string         `json:"desc"`
	Source      string          `json:"source"`
	Fonte       string          `json:"fonte"`
	Date        string          `json:"date"`
	Data        string          `json:"data"`
	Amount      json.RawMessage `json:"amount"`
	Valor       json.RawMessage `json:"valor"`
	Year        int             `json:"year"`
}

// toTransaction converts a loosely typed record. A missing or non-numeric
// amount becomes NaN so aggregation drops it.
func (raw rawRecord) toTransaction(month MonthKey) Transaction {
	t := Transaction{
		ID:     raw.ID,
		Date:   firstNonEmpty(raw.Date, raw.Data),
		Month:  month,
		Source: raw.Source,
		Year:   raw.Year,
		Amount: decodeAmount(raw.Amount, raw.Valor),
	}
	switch {
	case raw.Description != nil:
		t.Description = *raw.Description
	case raw.Desc != nil:
		t.Description = *raw.Desc
	}
	return t
}

// UnmarshalJSON decodes a month-keyed object of records, accepting both the
// canonical and the legacy field names. Records that are not objects are skipped.
func (mt *MonthlyTransactions) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := make(MonthlyTransactions, len(raw))
	for _, key := range sortedKeys(raw) {
		value := raw[key]
		var records []json.RawMessage
		if err := json.Unmarshal(value, &records); err != nil {
			continue
		}
		month := normalizeMonthKey(key)
		txns := make([]Transaction, 0, len(records))
		for _, rec := range records {
			var r rawRecord
			if err := json.Unmarshal(rec, &r); err != nil {
				continue
			}
			txns = append(txns, r.toTransaction(month))
		}
		out[month] = append(out[month], txns...)
	}
	*mt = out
	return nil
}

// sortedKeys orders the input keys so aliases of one month ("jan", "JAN",
// "1") merge in the same order on every decode.
func sortedKeys(raw map[string]json.RawMessage) []string {
	return slices.Sorted(maps.Keys(raw))
}

// normalizeMonthKey maps a key onto a month token, keeping unknown keys as-is
// so aggregation can discard them.
func normalizeMonthKey(key string) MonthKey {
	if m, err := ParseMonthKey(key); err == nil {
		return m
	}
	return MonthKey(key)
}

func decodeAmount(candidates ...json.RawMessage) float64 {
	for _, c := range candidates {
		if len(c) == 0 || bytes.Equal(c, []byte("null")) {
			continue
		}
		var v float64
		if err := json.Unmarshal(c, &v); err != nil {
			return math.NaN()
		}
		return v
	}
	return math.NaN()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
