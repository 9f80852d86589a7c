package utils

import (
	"errors"
	"fmt"
)

// Sentinel errors for every distinct recoverable/fatal condition the
// core can hit. Call sites check these with errors.Is.
var (
	ErrInsufficientData = errors.New("insufficient data")
	ErrCacheMiss        = errors.New("cache miss")
	ErrCacheStale       = errors.New("cache stale")
	ErrFeedUnavailable  = errors.New("feed unavailable")
	ErrSchemaInvalid    = errors.New("schema invalid")
	ErrAsOfMiss         = errors.New("as-of record miss")
	ErrConfigConflict   = errors.New("config conflict")
	ErrIntegrityViolation = errors.New("integrity violation")
	ErrNumericFailure   = errors.New("numeric failure")

	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")
)

// AppError carries a stable code alongside a human message, the way
// the HTTP layer reports errors to API clients.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func NewAppError(code, message string, details ...string) *AppError {
	err := &AppError{Code: code, Message: message}
	if len(details) > 0 {
		err.Details = details[0]
	}
	return err
}

func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s - %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

const (
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeInternal     = "INTERNAL_ERROR"
	ErrCodeConflict     = "CONFLICT"
	ErrCodeInsufficientData = "INSUFFICIENT_DATA"
	ErrCodeFeedUnavailable  = "FEED_UNAVAILABLE"
	ErrCodeAsOfMiss     = "AS_OF_MISS"
)
