package models

import "time"

// Currency is a supported currency and its exchange rate.
// Rate is expressed as units of the platform base currency per
// 1 unit of this currency, so converting a wallet amount into
// card-currency terms divides the wallet rate by the card rate.
type Currency struct {
	ID        uint      `gorm:"primarykey" json:"-"`
	Code      string    `gorm:"uniqueIndex;not null" json:"code"`
	Name      string    `gorm:"not null" json:"name"`
	Symbol    string    `gorm:"default:''" json:"symbol"`
	Rate      float64   `gorm:"not null" json:"rate"`
	Status    string    `gorm:"default:'active'" json:"status"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
