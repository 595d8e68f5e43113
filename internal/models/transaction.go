package models

import "time"

// Transaction types
const (
	TransactionTypeCardFund = "card_fund"
	TransactionTypeTopup    = "wallet_topup"
)

// Transaction statuses
const (
	TransactionStatusPending   = "pending"
	TransactionStatusCompleted = "completed"
	TransactionStatusFailed    = "failed"
)

// Transaction is a ledger row for wallet and card money movements.
// Card funding rows carry the converted amount in card currency;
// daily/monthly limit consumption is aggregated from them.
type Transaction struct {
	ID           uint    `gorm:"primarykey" json:"id"`
	Reference    string  `gorm:"uniqueIndex;not null" json:"reference"`
	Type         string  `gorm:"not null;index" json:"type"`
	UserID       uint    `gorm:"not null;index" json:"user_id"`
	CardID       *uint   `gorm:"index" json:"card_id,omitempty"`
	Amount       float64 `gorm:"not null" json:"amount"`
	Charge       float64 `gorm:"default:0" json:"charge"`
	CurrencyCode string  `gorm:"not null" json:"currency_code"`
	FromCurrency string  `gorm:"default:''" json:"from_currency,omitempty"`
	ExchangeRate float64 `gorm:"default:0" json:"exchange_rate,omitempty"`
	Description  string  `json:"description"`
	Status       string  `gorm:"not null;default:'pending';index" json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"-"`
}
