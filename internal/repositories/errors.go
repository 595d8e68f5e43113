package repositories

import "errors"

var (
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrCardNotFound        = errors.New("card not found")
	ErrChargeNotFound      = errors.New("card charge not found")
	ErrCurrencyNotFound    = errors.New("currency not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrTransactionNotFound = errors.New("transaction not found")
)
