package wallet

import (
	"context"
	"fmt"
	"strings"

	"cardvault/internal/config"

	stripe "github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/charge"
)

// StripeProcessor charges external cards through Stripe using card
// tokens produced by Stripe Elements or the mobile SDKs.
type StripeProcessor struct{}

func NewStripeProcessor() *StripeProcessor {
	stripe.Key = config.GetEnv("STRIPE_SECRET_KEY", "")
	return &StripeProcessor{}
}

func (p *StripeProcessor) Charge(ctx context.Context, token, currencyCode string, amount float64) (string, error) {
	if !strings.HasPrefix(token, "tok_") {
		return "", fmt.Errorf("invalid card token")
	}

	params := &stripe.ChargeParams{
		Amount:      stripe.Int64(int64(amount * 100)),
		Currency:    stripe.String(strings.ToLower(currencyCode)),
		Description: stripe.String("wallet top-up"),
	}
	params.Context = ctx
	if err := params.SetSource(token); err != nil {
		return "", fmt.Errorf("failed to set charge source: %w", err)
	}

	ch, err := charge.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe charge failed: %w", err)
	}
	return ch.ID, nil
}
