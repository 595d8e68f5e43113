package wallet

import "context"

// Config holds configuration for wallet operations.
type Config struct {
	DefaultCurrency      string
	MinTransactionAmount float64
	MaxTransactionAmount float64
}

// TopUpInput funds a wallet from an external card via the payment
// processor. Token is a processor card token (e.g. tok_visa).
type TopUpInput struct {
	CurrencyCode string  `json:"currency_code"`
	Amount       float64 `json:"amount"`
	Token        string  `json:"token"`
}

// Processor charges an external payment method during wallet top-up.
type Processor interface {
	Charge(ctx context.Context, token, currencyCode string, amount float64) (string, error)
}
