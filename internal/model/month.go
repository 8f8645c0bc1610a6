// Package model defines the core domain models used throughout the application.
package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MonthKey identifies a calendar month independent of the year.
type MonthKey string

// Month keys in calendar order.
const (
	January   MonthKey = "jan"
	February  MonthKey = "fev"
	March     MonthKey = "mar"
	April     MonthKey = "abr"
	May       MonthKey = "mai"
	June      MonthKey = "jun"
	July      MonthKey = "jul"
	August    MonthKey = "ago"
	September MonthKey = "set"
	October   MonthKey = "out"
	November  MonthKey = "nov"
	December  MonthKey = "dez"
)

// Months lists every month key in calendar order.
var Months = []MonthKey{
	January, February, March, April, May, June,
	July, August, September, October, November, December,
}

// ErrUnknownMonth is returned when a month token cannot be parsed.
var ErrUnknownMonth = errors.New("unknown month")

// Index returns the zero-based calendar position of the month, or -1 if the key is not valid.
func (m MonthKey) Index() int {
	for i, k := range Months {
		if k == m {
			return i
		}
	}
	return -1
}

// Valid reports whether m is one of the twelve month keys.
func (m MonthKey) Valid() bool {
	return m.Index() >= 0
}

// Next returns the following calendar month, wrapping December to January.
func (m MonthKey) Next() MonthKey {
	idx := m.Index()
	if idx < 0 {
		return ""
	}
	return Months[(idx+1)%12]
}

// ParseMonthKey accepts a month token case-insensitively, or a month number 1-12.
func ParseMonthKey(s string) (MonthKey, error) {
	token := strings.ToLower(strings.TrimSpace(s))
	if MonthKey(token).Valid() {
		return MonthKey(token), nil
	}

	if n, err := strconv.Atoi(token); err == nil && n >= 1 && n <= 12 {
		return Months[n-1], nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownMonth, s)
}

// MonthFromTime returns the month key for t.
func MonthFromTime(t time.Time) MonthKey {
	return Months[int(t.Month())-1]
}
