package deposit

import (
	"context"

	"cardvault/internal/models"
)

// RateSource supplies the caller's wallets with nested currency rates.
type RateSource interface {
	FetchWallets(ctx context.Context, userID uint) ([]models.Wallet, error)
}

// FeeScheduleSource supplies the active card reload fee schedule.
type FeeScheduleSource interface {
	FetchCardReloadCharge(ctx context.Context) (*models.CardCharge, error)
}

// LimitQuery scopes a remaining-limit lookup. Amount is included because
// some limit policies are amount-aware on the server side.
type LimitQuery struct {
	TransactionType string
	Attribute       string
	Amount          float64
	CurrencyCode    string
	ChargeID        uint
	CardID          uint
}

// LimitLedger reports how much of the daily/monthly funding allowance
// remains for a card.
type LimitLedger interface {
	FetchRemainingLimits(ctx context.Context, q LimitQuery) (*models.LimitUsage, error)
}

// Payload is the deposit submission form.
type Payload struct {
	FundAmount   float64 `json:"fund_amount"`
	CardID       uint    `json:"card_id"`
	Currency     string  `json:"currency"`
	FromCurrency string  `json:"from_currency"`
}

// Gateway executes a deposit submission.
type Gateway interface {
	SubmitDeposit(ctx context.Context, userID uint, p Payload) (*models.Transaction, error)
}
