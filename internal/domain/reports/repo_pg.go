package reports

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cura/cura/internal/domain/billing"
	"github.com/cura/cura/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

func (r *repoPG) ListInvoicesByServiceDate(ctx context.Context, from, to time.Time) ([]*billing.Invoice, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, patient_id, provider_id, service_type, date_of_service,
			status, total_amount, paid_amount, insurance_provider
		FROM invoice
		WHERE date_of_service >= $1 AND date_of_service < $2
		  AND status <> 'cancelled'
		ORDER BY date_of_service`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*billing.Invoice
	for rows.Next() {
		var inv billing.Invoice
		var insProvider *string
		if err := rows.Scan(&inv.ID, &inv.PatientID, &inv.ProviderID, &inv.ServiceType,
			&inv.DateOfService, &inv.Status, &inv.TotalAmount, &inv.PaidAmount, &insProvider); err != nil {
			return nil, err
		}
		if insProvider != nil {
			inv.Insurance = &billing.InsuranceDetails{Provider: *insProvider}
		}
		items = append(items, &inv)
	}
	return items, rows.Err()
}

func (r *repoPG) MarkOverdue(ctx context.Context, asOf time.Time) (int, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE invoice SET status = 'overdue', updated_at = NOW()
		WHERE status = 'sent' AND due_date < $1`, asOf)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
