package ledger

import "errors"

var (
	// ErrInsufficientBalance is returned when a debit exceeds the source balance
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrNotOwnerOrNotApproved is returned when the caller neither owns the
	// source account nor holds an operator approval for it
	ErrNotOwnerOrNotApproved = errors.New("caller is not owner nor an approved operator")

	// ErrApprovalForSelf is returned when an account tries to grant itself operator approval
	ErrApprovalForSelf = errors.New("cannot set approval for self")

	// ErrInvalidArrayLength is returned when paired batch inputs differ in length
	ErrInvalidArrayLength = errors.New("array lengths do not match")

	// ErrInvalidZeroAccount is returned when the zero account appears as a
	// transfer/mint target or a transfer/burn source
	ErrInvalidZeroAccount = errors.New("zero account is not a valid party")

	// ErrCannotFetchValue is returned when a stored value is missing for a key
	// that must exist
	ErrCannotFetchValue = errors.New("cannot fetch stored value")

	// ErrCannotInsert is returned when a credit cannot be recorded, i.e. the
	// destination balance would overflow
	ErrCannotInsert = errors.New("cannot insert balance")
)
