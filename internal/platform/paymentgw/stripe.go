package paymentgw

import (
	"context"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
)

// StripeGateway creates payment intents against the Stripe API.
type StripeGateway struct {
	apiKey string
}

func NewStripeGateway(apiKey string) *StripeGateway {
	return &StripeGateway{apiKey: apiKey}
}

func (s *StripeGateway) CreateIntent(ctx context.Context, amountMinor int64, currency, invoiceNumber string) (*Intent, error) {
	stripe.Key = s.apiKey

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountMinor),
		Currency: stripe.String(strings.ToLower(currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.AddMetadata("invoice_number", invoiceNumber)

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("creating payment intent: %w", err)
	}

	return intentFromStripe(pi), nil
}

func (s *StripeGateway) GetIntent(ctx context.Context, id string) (*Intent, error) {
	stripe.Key = s.apiKey

	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := paymentintent.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("retrieving payment intent %s: %w", id, err)
	}

	return intentFromStripe(pi), nil
}

func intentFromStripe(pi *stripe.PaymentIntent) *Intent {
	return &Intent{
		ID:            pi.ID,
		ClientSecret:  pi.ClientSecret,
		AmountMinor:   pi.Amount,
		Currency:      strings.ToUpper(string(pi.Currency)),
		Status:        string(pi.Status),
		InvoiceNumber: pi.Metadata["invoice_number"],
	}
}
