package models

import "errors"

var (
	// ErrIncomplete means the inputs are not yet sufficient to derive a result.
	// Callers keep whatever they displayed before.
	ErrIncomplete = errors.New("inputs incomplete")

	// ErrInvalidArgument marks a contract violation by the caller.
	ErrInvalidArgument = errors.New("invalid argument")

	ErrNotFound        = errors.New("not found")
	ErrUnbalancedEntry = errors.New("journal entry debits do not equal credits")
	ErrLoanSettled     = errors.New("loan is already settled")
)
