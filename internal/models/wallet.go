package models

import "time"

// Wallet is a user balance held in a specific currency.
// A user can hold many wallets, one per currency code.
type Wallet struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	UserID       uint      `gorm:"not null;index;uniqueIndex:idx_user_currency" json:"user_id"`
	CurrencyCode string    `gorm:"not null;uniqueIndex:idx_user_currency" json:"currency_code"`
	Balance      float64   `gorm:"default:0" json:"balance"`
	Status       string    `gorm:"default:'active'" json:"status"`
	StatusReason string    `gorm:"default:''" json:"-"`
	Currency     Currency  `gorm:"foreignKey:CurrencyCode;references:Code" json:"currency"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}
