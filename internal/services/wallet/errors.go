package wallet

import "errors"

// Service errors
var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidCurrency   = errors.New("invalid currency")
	ErrWalletNotFound    = errors.New("wallet not found")
	ErrWalletLocked      = errors.New("wallet is locked")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrPaymentDeclined   = errors.New("payment was declined")
)
