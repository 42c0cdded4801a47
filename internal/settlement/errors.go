package settlement

import "errors"

var (
	// ErrNotFound - no ledger entry matches the reference or id.
	ErrNotFound = errors.New("ledger entry not found")
	// ErrAlreadySettled - the entry already reached a terminal state.
	ErrAlreadySettled = errors.New("ledger entry already settled")
	// ErrAmountMismatch - provider callback amount differs from the ledger entry.
	ErrAmountMismatch = errors.New("callback amount does not match ledger entry")
	// ErrInsufficientBalance - debit would take the balance below zero.
	ErrInsufficientBalance = errors.New("insufficient balance")
)
