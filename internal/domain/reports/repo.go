package reports

import (
	"context"
	"time"

	"github.com/cura/cura/internal/domain/billing"
)

// Repository reads the invoice ledger for reporting and runs the overdue
// sweep.
type Repository interface {
	// ListInvoicesByServiceDate returns invoices whose service date falls
	// in [from, to).
	ListInvoicesByServiceDate(ctx context.Context, from, to time.Time) ([]*billing.Invoice, error)
	// MarkOverdue flips sent invoices past their due date to overdue and
	// returns the number affected.
	MarkOverdue(ctx context.Context, asOf time.Time) (int, error)
}
