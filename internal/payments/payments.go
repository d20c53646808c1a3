// Package payments wraps the Stripe payment-intent API. The processor is
// optional: with no secret key configured the storefront still runs, and the
// payment endpoint reports 503 instead.
package payments

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/paymentintent"
)

type Conf struct {
	configured bool
}

func NewConf(secretKey string) Conf {
	if secretKey == "" {
		return Conf{}
	}
	stripe.Key = secretKey
	return Conf{configured: true}
}

func (c Conf) Configured() bool {
	return c.configured
}

// CreatePaymentIntent authorizes a charge for the given amount (major
// currency units) and returns the client secret the browser needs to confirm
// the payment.
func (c Conf) CreatePaymentIntent(amount decimal.Decimal, userID string) (*stripe.PaymentIntent, error) {
	if !c.configured {
		return nil, fmt.Errorf("stripe is not configured")
	}

	cents := amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(cents),
		Currency: stripe.String(string(stripe.CurrencyUSD)),
	}
	params.AddMetadata("user_id", userID)
	intent, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("creating payment intent: %w", err)
	}
	return intent, nil
}
