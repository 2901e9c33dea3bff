// Package alloc implements the allocation core: amount/percentage
// conversion, the line-item ledger, portfolio summaries, the persisted
// record codec and the session that ties them together.
package alloc

import "errors"

var (
	// ErrInvalidTotalFunds is returned when an operation needs positive total funds.
	ErrInvalidTotalFunds = errors.New("total funds must be a positive number")
	// ErrNotFound is returned when an item id is not in the ledger.
	ErrNotFound = errors.New("item not found")
	// ErrInvalidState is returned when the session cannot accept edits.
	ErrInvalidState = errors.New("invalid state")
	// ErrNegativeAmount is returned for amounts below zero; amounts are never clamped.
	ErrNegativeAmount = errors.New("amount cannot be negative")
	// ErrInvalidAmount is returned for amounts that are not finite numbers.
	ErrInvalidAmount = errors.New("amount must be a finite number")
	// ErrConflictingUpdate is returned when a patch sets amount and percentage together.
	ErrConflictingUpdate = errors.New("set either amount or percentage, not both")
	// ErrInvalidCategory is returned for a category outside the known set.
	ErrInvalidCategory = errors.New("unknown category")
	// ErrInvalidColor is returned for a color that is not a hex value.
	ErrInvalidColor = errors.New("color must be a hex value like #165DFF")
	// ErrCorruptRecord is returned when a persisted record is not valid JSON.
	ErrCorruptRecord = errors.New("corrupt portfolio record")
)
