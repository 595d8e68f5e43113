package models

import "time"

// CardCharge is the fee schedule applied to virtual card reloads:
// a fixed charge plus a percentage of the converted amount, and the
// min/max/daily/monthly funding limits, all in card-currency terms.
// One schedule is active at a time for the reload context.
type CardCharge struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	Slug          string    `gorm:"uniqueIndex;not null" json:"slug"`
	FixedCharge   float64   `gorm:"default:0" json:"fixed_charge"`
	PercentCharge float64   `gorm:"default:0" json:"percent_charge"`
	MinLimit      float64   `gorm:"default:0" json:"min_limit"`
	MaxLimit      float64   `gorm:"default:0" json:"max_limit"`
	DailyLimit    float64   `gorm:"default:0" json:"daily_limit"`
	MonthlyLimit  float64   `gorm:"default:0" json:"monthly_limit"`
	Active        bool      `gorm:"default:true" json:"-"`
	CreatedAt     time.Time `json:"-"`
	UpdatedAt     time.Time `json:"-"`
}

// Slug of the fee schedule consulted by the deposit flow.
const CardReloadChargeSlug = "card_reload"

// LimitUsage is the remaining share of the daily/monthly funding
// allowance for a card, in card-currency terms. Derived from the
// transaction ledger, never persisted.
type LimitUsage struct {
	RemainingDaily   float64 `json:"remaining_daily"`
	RemainingMonthly float64 `json:"remaining_monthly"`
}
