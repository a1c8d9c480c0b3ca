package auction

import "errors"

// Request failures. A bid that finds no volume at its price is not an error.
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNotYetOpen        = errors.New("trading not yet open")
	ErrAlreadyTraded     = errors.New("already traded")
)
