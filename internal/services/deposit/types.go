package deposit

import (
	"cardvault/internal/models"
	"cardvault/internal/services/conversion"
	"cardvault/internal/services/limits"
)

// formState is the deposit form. It is only mutated through session
// actions so every change point recomputes the derived view.
type formState struct {
	amount       float64
	amountSet    bool
	fromCurrency string
}

// Snapshot is the consistent view of a session at one point in time.
// Monetary strings are formatted at 4 decimal places; placeholder
// strings stand in while data is loading or absent.
type Snapshot struct {
	WalletsLoading bool                   `json:"wallets_loading"`
	FeeLoading     bool                   `json:"fee_loading"`
	LimitsLoading  bool                   `json:"limits_loading"`
	Wallets        []models.Wallet        `json:"wallets"`
	FromCurrency   string                 `json:"from_currency"`
	AmountSet      bool                   `json:"amount_set"`
	Amount         float64                `json:"amount"`
	Calculation    conversion.Calculation `json:"calculation"`
	Deposit        string                 `json:"deposit"`
	Fee            string                 `json:"fee"`
	Payable        string                 `json:"payable"`
	Limits         limits.StaticLimits    `json:"limits"`
	Remaining      limits.RemainingLimits `json:"remaining"`
}

// QuoteRequest asks for a one-shot conversion quote over HTTP, outside
// of any session.
type QuoteRequest struct {
	CardID       uint    `json:"card_id"`
	Amount       float64 `json:"amount"`
	FromCurrency string  `json:"from_currency"`
}

// QuoteResponse mirrors the figures a deposit dialog renders.
type QuoteResponse struct {
	Calculation conversion.Calculation `json:"calculation"`
	Deposit     string                 `json:"deposit"`
	Fee         string                 `json:"fee"`
	Payable     string                 `json:"payable"`
	Limits      limits.StaticLimits    `json:"limits"`
	Remaining   limits.RemainingLimits `json:"remaining"`
}

// Attribute reported to the limit ledger for card funding lookups.
const LimitAttribute = "virtual_card"
