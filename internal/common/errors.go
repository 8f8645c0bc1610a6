// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Storage errors.
	ErrNotFound = errors.New("not found")

	// Import errors.
	ErrInvalidInput = errors.New("invalid input")
	ErrEmptyImport  = errors.New("nothing to import")

	// Remote sync errors.
	ErrRateLimit           = errors.New("rate limit exceeded")
	ErrMaxRetries          = errors.New("max retries exceeded")
	ErrPlaidConnection     = errors.New("plaid connection failed")
	ErrPlaidRateLimit      = errors.New("plaid rate limit exceeded")
	ErrSimpleFINConnection = errors.New("simplefin connection failed")
	ErrSimpleFINAuth       = errors.New("simplefin authentication failed")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError carries a message meant for the person running the command
// alongside the underlying cause.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// RetryableError records whether a failed remote call may succeed on a later
// attempt.
type RetryableError struct {
	Err       error
	Retryable bool
}

func (e *RetryableError) Error() string {
	return e.Err.Error()
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// Terminal marks err as not worth another attempt.
func Terminal(err error) error {
	return &RetryableError{Err: err}
}

// Transient marks err as worth another attempt.
func Transient(err error) error {
	return &RetryableError{Err: err, Retryable: true}
}

// IsRetryable reports whether a failed call should be attempted again.
// Errors marked with Terminal or Transient decide for themselves, a canceled
// context never retries, and anything else is treated as transient.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}

	return !errors.Is(err, context.Canceled)
}

// IsRateLimited reports whether the remote side throttled the call.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimit) || errors.Is(err, ErrPlaidRateLimit)
}
