package deposit

import "errors"

// Service errors
var (
	ErrAmountRequired       = errors.New("deposit amount is required")
	ErrInvalidAmount        = errors.New("invalid deposit amount")
	ErrCurrencyRequired     = errors.New("source currency is required")
	ErrCurrencyMismatch     = errors.New("currency does not match card currency")
	ErrCardNotOwned         = errors.New("card does not belong to user")
	ErrCardNotActive        = errors.New("card is not active")
	ErrWalletNotActive      = errors.New("wallet is not active")
	ErrInsufficientFunds    = errors.New("insufficient wallet balance")
	ErrBelowMinimum         = errors.New("amount is below the minimum limit")
	ErrAboveMaximum         = errors.New("amount is above the maximum limit")
	ErrDailyLimitExceeded   = errors.New("daily funding limit exceeded")
	ErrMonthlyLimitExceeded = errors.New("monthly funding limit exceeded")
	ErrSessionClosed        = errors.New("deposit session is closed")
	ErrSessionNotFound      = errors.New("deposit session not found")
)
