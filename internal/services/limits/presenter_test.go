package limits

import (
	"testing"

	"cardvault/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestStatic(t *testing.T) {
	charge := &models.CardCharge{
		MinLimit:     10,
		MaxLimit:     5000,
		DailyLimit:   1000,
		MonthlyLimit: 10000,
	}

	got := Static(charge, "EUR")

	assert.Equal(t, "10.0000 EUR", got.MinLimit)
	assert.Equal(t, "5000.0000 EUR", got.MaxLimit)
	assert.Equal(t, "1000.0000 EUR", got.DailyLimit)
	assert.Equal(t, "10000.0000 EUR", got.MonthlyLimit)
}

func TestStaticNilScheduleRendersPlaceholders(t *testing.T) {
	got := Static(nil, "EUR")

	assert.Equal(t, Placeholder, got.MinLimit)
	assert.Equal(t, Placeholder, got.MaxLimit)
	assert.Equal(t, Placeholder, got.DailyLimit)
	assert.Equal(t, Placeholder, got.MonthlyLimit)
}

func TestRemaining(t *testing.T) {
	usage := &models.LimitUsage{
		RemainingDaily:   887.7778,
		RemainingMonthly: 9885.77,
	}

	got := Remaining(usage, "EUR")

	assert.Equal(t, "887.7778 EUR", got.DailyLimit)
	assert.Equal(t, "9885.7700 EUR", got.MonthlyLimit)
}

func TestRemainingNilUsageRendersPlaceholders(t *testing.T) {
	got := Remaining(nil, "EUR")

	assert.Equal(t, Placeholder, got.DailyLimit)
	assert.Equal(t, Placeholder, got.MonthlyLimit)
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "111.1111 EUR", FormatWithCode(111.11111111, "EUR"))
	assert.Equal(t, "0.0000", FormatAmount(0))
	assert.Equal(t, "00.0000", AmountPlaceholder)
}
