// Package conversion computes the currency conversion and fee breakdown
// for funding a virtual card from a wallet held in another currency.
package conversion

import "math"

// Fee is the charge portion of a card reload fee schedule.
// PercentCharge is expressed in percent (0-100) of the converted amount;
// FixedCharge is in base-currency units and is scaled by the card rate.
type Fee struct {
	FixedCharge   float64
	PercentCharge float64
}

// Calculation is the derived view of a prospective deposit. All values
// are in card-currency terms. It is recomputed from scratch on every
// input change and never persisted.
type Calculation struct {
	ExchangeRate float64 `json:"exchange_rate"`
	TotalCharge  float64 `json:"total_charge"`
	TotalAmount  float64 `json:"total_amount"`
}

// Zero reports whether the calculation is the degraded empty result.
func (c Calculation) Zero() bool {
	return c.ExchangeRate == 0 && c.TotalCharge == 0 && c.TotalAmount == 0
}

// Compute converts amount (wallet currency) into card-currency terms and
// applies the fee schedule. Both rates are units of base currency per unit
// of their currency, so the effective rate is walletRate/cardRate.
//
// When amount is not positive or either rate is unusable the zero
// Calculation is returned; callers render placeholders instead of numbers.
// No rounding happens here. Presentation rounds at the display boundary.
func Compute(amount, walletRate, cardRate float64, fee Fee) Calculation {
	if !usable(amount) || !usable(walletRate) || !usable(cardRate) {
		return Calculation{}
	}

	rate := walletRate / cardRate
	converted := amount * rate
	percentCharge := converted / 100 * fee.PercentCharge
	totalCharge := fee.FixedCharge*cardRate + percentCharge

	return Calculation{
		ExchangeRate: rate,
		TotalCharge:  totalCharge,
		TotalAmount:  converted + totalCharge,
	}
}

func usable(v float64) bool {
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}
