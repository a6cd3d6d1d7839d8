package models

import "errors"

var (
	// ErrInsufficientDepositAmount is returned when a deposit is below the
	// vault's configured minimum
	ErrInsufficientDepositAmount = errors.New("deposit amount below vault minimum")

	// ErrInsufficientBalance is returned when a withdrawal exceeds principal
	// plus all interest accrued to date
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrArithmeticOverflow is returned when a balance computation cannot be
	// represented; the operation is aborted rather than wrapped or truncated
	ErrArithmeticOverflow = errors.New("arithmetic overflow")

	// ErrInvalidConfiguration is returned for malformed vault parameters or
	// a vault that already exists for the asset
	ErrInvalidConfiguration = errors.New("invalid vault configuration")

	// ErrVaultNotFound is returned when no vault exists for the asset
	ErrVaultNotFound = errors.New("vault not found")

	// ErrPositionNotFound is returned when the depositor has no position in
	// the vault
	ErrPositionNotFound = errors.New("position not found")
)
