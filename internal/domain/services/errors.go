package services

import (
	"errors"
	"fmt"
	"math"
)

// MaxCount bounds every score input count so the weighted sums cannot overflow
const MaxCount = math.MaxInt32

// ErrReportNotFound is returned when no payloads exist for a content hash
var ErrReportNotFound = errors.New("report not found")

// ErrStorageUnavailable is returned when an operation needs the payload store
// and none is configured
var ErrStorageUnavailable = errors.New("payload storage is not configured")

// InvalidInputError is returned when a caller passes values outside the
// documented domain, such as negative counts
type InvalidInputError struct {
	Field  string
	Value  any
	Reason string
}

func (e *InvalidInputError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s (%v): %s", e.Field, e.Value, e.Reason)
}

// IsInvalidInput reports whether err wraps an *InvalidInputError
func IsInvalidInput(err error) bool {
	var target *InvalidInputError
	return errors.As(err, &target)
}

func requireCount(field string, v int) error {
	if v < 0 {
		return &InvalidInputError{Field: field, Value: v, Reason: "must not be negative"}
	}
	if v > MaxCount {
		return &InvalidInputError{Field: field, Value: v, Reason: fmt.Sprintf("must not exceed %d", MaxCount)}
	}
	return nil
}
