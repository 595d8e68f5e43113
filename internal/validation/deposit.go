// Package validation holds request-level input checks shared by handlers.
package validation

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

var (
	ErrAmountRequired = errors.New("amount is required")
	ErrAmountInvalid  = errors.New("amount must be a positive number")
	ErrCurrencyFormat = errors.New("currency must be a 3 letter code")
)

// ParseAmount parses a form amount field. An empty string is reported
// as ErrAmountRequired so handlers can surface it inline next to the
// field; anything non-positive or non-numeric is ErrAmountInvalid.
func ParseAmount(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, ErrAmountRequired
	}
	amount, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, ErrAmountInvalid
	}
	// ParseFloat accepts "NaN" and "Inf"; neither is a usable amount.
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, ErrAmountInvalid
	}
	if amount <= 0 {
		return 0, ErrAmountInvalid
	}
	return amount, nil
}

// ValidateCurrencyCode checks the shape of an ISO currency code.
func ValidateCurrencyCode(code string) error {
	if len(code) != 3 {
		return ErrCurrencyFormat
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return ErrCurrencyFormat
		}
	}
	return nil
}
