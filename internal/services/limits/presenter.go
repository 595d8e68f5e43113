// Package limits formats fee-schedule limits and remaining-allowance
// figures for display. This is the display boundary: values keep full
// float precision until they are stringified here.
package limits

import (
	"cardvault/internal/models"

	"github.com/shopspring/decimal"
)

// Placeholder is rendered while remaining-limit data is loading or
// unavailable. Stale values must never show through it.
const Placeholder = "--"

// AmountPlaceholder is rendered for deposit/fee/payable figures when no
// amount has been entered yet.
const AmountPlaceholder = "00.0000"

// StaticLimits are the fee-schedule limits formatted for display.
type StaticLimits struct {
	MinLimit     string `json:"min_limit"`
	MaxLimit     string `json:"max_limit"`
	DailyLimit   string `json:"daily_limit"`
	MonthlyLimit string `json:"monthly_limit"`
}

// RemainingLimits are the ledger-derived remaining allowances formatted
// for display.
type RemainingLimits struct {
	DailyLimit   string `json:"daily_limit"`
	MonthlyLimit string `json:"monthly_limit"`
}

// FormatAmount renders a card-currency amount with 4 decimal places.
func FormatAmount(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(4)
}

// FormatWithCode renders "<value> <CODE>".
func FormatWithCode(v float64, code string) string {
	return FormatAmount(v) + " " + code
}

// Static formats the min/max/daily/monthly limits of a fee schedule in
// card-currency terms. A nil schedule renders placeholders.
func Static(charge *models.CardCharge, cardCurrencyCode string) StaticLimits {
	if charge == nil {
		return StaticLimits{
			MinLimit:     Placeholder,
			MaxLimit:     Placeholder,
			DailyLimit:   Placeholder,
			MonthlyLimit: Placeholder,
		}
	}
	return StaticLimits{
		MinLimit:     FormatWithCode(charge.MinLimit, cardCurrencyCode),
		MaxLimit:     FormatWithCode(charge.MaxLimit, cardCurrencyCode),
		DailyLimit:   FormatWithCode(charge.DailyLimit, cardCurrencyCode),
		MonthlyLimit: FormatWithCode(charge.MonthlyLimit, cardCurrencyCode),
	}
}

// Remaining formats the remaining daily/monthly allowances. A nil usage
// means the ledger fetch is still in flight or failed and renders
// placeholders.
func Remaining(usage *models.LimitUsage, cardCurrencyCode string) RemainingLimits {
	if usage == nil {
		return RemainingLimits{
			DailyLimit:   Placeholder,
			MonthlyLimit: Placeholder,
		}
	}
	return RemainingLimits{
		DailyLimit:   FormatWithCode(usage.RemainingDaily, cardCurrencyCode),
		MonthlyLimit: FormatWithCode(usage.RemainingMonthly, cardCurrencyCode),
	}
}
