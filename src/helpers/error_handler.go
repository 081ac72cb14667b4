package helpers

import (
	"errors"
	"fmt"
	"stockstreamer/src/models"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type StockStreamerError struct {
	Message string
	Cause   error
}

func (e *StockStreamerError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *StockStreamerError) Unwrap() error {
	return e.Cause
}

type ConfigurationError struct{ StockStreamerError }

// -----------------------------------------------------------------------------
// Fetch errors
// -----------------------------------------------------------------------------

// TransientFetchError is a single failed attempt: transport failure, bad
// status or an unparseable body. Always retried.
type TransientFetchError struct {
	StockStreamerError
	Symbol     string
	Kind       models.DataKind
	StatusCode int
}

func NewTransientFetchError(symbol string, kind models.DataKind, statusCode int, cause error) *TransientFetchError {
	return &TransientFetchError{
		StockStreamerError: StockStreamerError{
			Message: fmt.Sprintf("fetch %s for %s", kind, symbol),
			Cause:   cause,
		},
		Symbol:     symbol,
		Kind:       kind,
		StatusCode: statusCode,
	}
}

// -----------------------------------------------------------------------------

// RetryExhaustedError is returned once every attempt of an operation failed.
type RetryExhaustedError struct {
	StockStreamerError
	Operation string
	Attempts  int
}

func NewRetryExhaustedError(operation string, attempts int, last error) *RetryExhaustedError {
	return &RetryExhaustedError{
		StockStreamerError: StockStreamerError{
			Message: fmt.Sprintf("%s failed after %d attempts", operation, attempts),
			Cause:   last,
		},
		Operation: operation,
		Attempts:  attempts,
	}
}

// -----------------------------------------------------------------------------

// FetchFailedError marks a symbol dropped from a round.
type FetchFailedError struct {
	StockStreamerError
	Symbol string
	Kind   models.DataKind
}

func NewFetchFailedError(symbol string, kind models.DataKind, cause error) *FetchFailedError {
	return &FetchFailedError{
		StockStreamerError: StockStreamerError{
			Message: fmt.Sprintf("fetch %s failed for %s", kind, symbol),
			Cause:   cause,
		},
		Symbol: symbol,
		Kind:   kind,
	}
}

// -----------------------------------------------------------------------------
// Store errors
// -----------------------------------------------------------------------------

type StoreWriteError struct {
	StockStreamerError
	Table  string
	Symbol string
}

func NewStoreWriteError(table, symbol string, cause error) *StoreWriteError {
	return &StoreWriteError{
		StockStreamerError: StockStreamerError{
			Message: fmt.Sprintf("write %s row for %s", table, symbol),
			Cause:   cause,
		},
		Table:  table,
		Symbol: symbol,
	}
}

// -----------------------------------------------------------------------------

// IsRetryExhausted reports whether err, or anything it wraps, is a RetryExhaustedError.
func IsRetryExhausted(err error) bool {
	var target *RetryExhaustedError
	return errors.As(err, &target)
}
