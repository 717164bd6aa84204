package paymentgw

import (
	"context"
	"fmt"
	"sync"
)

// FakeGateway is an in-memory Gateway used in tests and in environments
// without a Stripe key.
type FakeGateway struct {
	mu      sync.Mutex
	seq     int
	intents map[string]*Intent
}

func NewFakeGateway() *FakeGateway {
	return &FakeGateway{intents: make(map[string]*Intent)}
}

func (f *FakeGateway) CreateIntent(_ context.Context, amountMinor int64, currency, invoiceNumber string) (*Intent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.seq++
	intent := &Intent{
		ID:            fmt.Sprintf("pi_fake_%d", f.seq),
		ClientSecret:  fmt.Sprintf("pi_fake_%d_secret_%s", f.seq, invoiceNumber),
		AmountMinor:   amountMinor,
		Currency:      currency,
		Status:        "requires_payment_method",
		InvoiceNumber: invoiceNumber,
	}
	f.intents[intent.ID] = intent
	return intent, nil
}

func (f *FakeGateway) GetIntent(_ context.Context, id string) (*Intent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	intent, ok := f.intents[id]
	if !ok {
		return nil, fmt.Errorf("payment intent %s not found", id)
	}
	return intent, nil
}

// MarkSucceeded flips a fake intent to succeeded, simulating a confirmed
// card payment.
func (f *FakeGateway) MarkSucceeded(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if intent, ok := f.intents[id]; ok {
		intent.Status = "succeeded"
	}
}
