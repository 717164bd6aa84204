// Package paymentgw abstracts the card payment provider used for online
// invoice payments.
package paymentgw

import "context"

// Intent is a provider-side payment authorization awaiting confirmation.
type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	// AmountMinor is the charge amount in the currency's minor unit (pence).
	AmountMinor int64  `json:"amount_minor"`
	Currency    string `json:"currency"`
	Status      string `json:"status"`
	// InvoiceNumber is the invoice the intent was created for, carried in
	// provider metadata so confirmation can be reconciled against it.
	InvoiceNumber string `json:"invoice_number"`
}

// Gateway creates and inspects payment intents with the card provider.
type Gateway interface {
	CreateIntent(ctx context.Context, amountMinor int64, currency, invoiceNumber string) (*Intent, error)
	GetIntent(ctx context.Context, id string) (*Intent, error)
}
