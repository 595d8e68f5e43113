package models

import "time"

// Virtual card statuses
const (
	CardStatusActive   = "active"
	CardStatusInactive = "inactive"
	CardStatusBlocked  = "blocked"
)

// VirtualCard represents a prepaid card denominated in a single currency.
type VirtualCard struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	UserID       uint      `gorm:"not null;index" json:"user_id"`
	CardNumber   string    `gorm:"uniqueIndex;not null" json:"-"`
	LastFour     string    `gorm:"not null" json:"last_four"`
	CardHolder   string    `gorm:"not null" json:"card_holder"`
	ExpiryMonth  string    `gorm:"not null" json:"expiry_month"`
	ExpiryYear   string    `gorm:"not null" json:"expiry_year"`
	CurrencyCode string    `gorm:"not null" json:"currency_code"`
	Balance      float64   `gorm:"default:0" json:"balance"`
	Status       string    `gorm:"default:'active'" json:"status"`
	Currency     Currency  `gorm:"foreignKey:CurrencyCode;references:Code" json:"currency"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"-"`
}

// IssueCardInput represents the input for issuing a new virtual card.
type IssueCardInput struct {
	CardHolder   string `json:"card_holder"`
	CurrencyCode string `json:"currency_code"`
}
