package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies engine rejections so callers can branch without
// inspecting message text.
type ErrorKind string

const (
	// KindValidation - malformed input, rejected before any state mutation
	KindValidation ErrorKind = "VALIDATION_ERROR"
	// KindDailyLimit - an interaction was already recorded today
	KindDailyLimit ErrorKind = "DAILY_LIMIT_EXCEEDED"
	// KindTaskNotEligible - task outside the horse's eligible age band
	KindTaskNotEligible ErrorKind = "TASK_NOT_ELIGIBLE"
	// KindSequence - milestone evaluated out of order (caller bug)
	KindSequence ErrorKind = "SEQUENCE_ERROR"
)

// Error is a classified engine error returned as a plain value.
// Business-rule rejections (daily limit, eligibility) are expected outcomes,
// not faults; only KindSequence indicates a programming error.
type Error struct {
	Kind    ErrorKind
	Message string
}

// Error implements the error interface
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NewValidationError creates a validation rejection
func NewValidationError(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NewDailyLimitError creates a daily-cap rejection
func NewDailyLimitError(format string, args ...interface{}) *Error {
	return &Error{Kind: KindDailyLimit, Message: fmt.Sprintf(format, args...)}
}

// NewTaskNotEligibleError creates an age-band rejection
func NewTaskNotEligibleError(format string, args ...interface{}) *Error {
	return &Error{Kind: KindTaskNotEligible, Message: fmt.Sprintf(format, args...)}
}

// NewSequenceError creates an out-of-order evaluation fault
func NewSequenceError(format string, args ...interface{}) *Error {
	return &Error{Kind: KindSequence, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the classified kind of err, or "" for unclassified errors
// (storage failures and other unexpected faults).
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
