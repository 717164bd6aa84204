package billing

import (
	"context"

	"github.com/google/uuid"
)

// InvoiceRepository is the persistence contract for invoices and their line
// items.
type InvoiceRepository interface {
	Create(ctx context.Context, inv *Invoice) error
	GetByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	Update(ctx context.Context, inv *Invoice) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, paidAmount float64) error
	UpdateInsurance(ctx context.Context, id uuid.UUID, ins *InsuranceDetails, paidAmount float64) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter InvoiceFilter, limit, offset int) ([]*Invoice, int, error)
	ListByProvider(ctx context.Context, providerID uuid.UUID) ([]*Invoice, error)
	GetLineItems(ctx context.Context, invoiceID uuid.UUID) ([]*LineItem, error)
}

// InvoiceFilter narrows invoice listings.
type InvoiceFilter struct {
	PatientID *uuid.UUID
	Status    string
}

// PaymentRepository is the persistence contract for the payment ledger.
type PaymentRepository interface {
	Create(ctx context.Context, p *Payment) error
	ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]*Payment, error)
	List(ctx context.Context, limit, offset int) ([]*Payment, int, error)
}
