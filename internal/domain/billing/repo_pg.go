package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cura/cura/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// =========== Invoice Repository ===========

type invoiceRepoPG struct{ pool *pgxpool.Pool }

func NewInvoiceRepoPG(pool *pgxpool.Pool) InvoiceRepository { return &invoiceRepoPG{pool: pool} }

func (r *invoiceRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const invoiceCols = `id, invoice_number, patient_id, patient_name, nhs_number,
	provider_id, service_type, date_of_service, invoice_date, due_date,
	status, total_amount, paid_amount, payment_method, currency, notes,
	insurance_provider, insurance_plan, insurance_policy_number,
	insurance_member_id, insurance_claim_number, insurance_claim_status,
	insurance_paid, created_at, updated_at`

func scanInvoice(row pgx.Row) (*Invoice, error) {
	var inv Invoice
	var insProvider, insPlan, insPolicy, insMember, insClaim, insStatus *string
	var insPaid *float64
	err := row.Scan(&inv.ID, &inv.InvoiceNumber, &inv.PatientID, &inv.PatientName, &inv.NHSNumber,
		&inv.ProviderID, &inv.ServiceType, &inv.DateOfService, &inv.InvoiceDate, &inv.DueDate,
		&inv.Status, &inv.TotalAmount, &inv.PaidAmount, &inv.PaymentMethod, &inv.Currency, &inv.Notes,
		&insProvider, &insPlan, &insPolicy,
		&insMember, &insClaim, &insStatus,
		&insPaid, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if insProvider != nil {
		ins := &InsuranceDetails{
			Provider:     *insProvider,
			PlanName:     insPlan,
			PolicyNumber: insPolicy,
			MemberID:     insMember,
			ClaimNumber:  insClaim,
			ClaimStatus:  ClaimPending,
		}
		if insStatus != nil {
			ins.ClaimStatus = *insStatus
		}
		if insPaid != nil {
			ins.PaidAmount = *insPaid
		}
		inv.Insurance = ins
	}
	return &inv, nil
}

func (r *invoiceRepoPG) Create(ctx context.Context, inv *Invoice) error {
	conn := r.conn(ctx)

	inv.ID = uuid.New()
	if inv.InvoiceNumber == "" {
		var seq int64
		if err := conn.QueryRow(ctx, `SELECT nextval('invoice_number_seq')`).Scan(&seq); err != nil {
			return fmt.Errorf("allocating invoice number: %w", err)
		}
		inv.InvoiceNumber = fmt.Sprintf("INV-%d-%04d", time.Now().UTC().Year(), seq)
	}

	var insProvider, insPlan, insPolicy, insMember, insClaim, insStatus *string
	var insPaid *float64
	if inv.Insurance != nil {
		insProvider = &inv.Insurance.Provider
		insPlan = inv.Insurance.PlanName
		insPolicy = inv.Insurance.PolicyNumber
		insMember = inv.Insurance.MemberID
		insClaim = inv.Insurance.ClaimNumber
		insStatus = &inv.Insurance.ClaimStatus
		insPaid = &inv.Insurance.PaidAmount
	}

	_, err := conn.Exec(ctx, `
		INSERT INTO invoice (id, invoice_number, patient_id, patient_name, nhs_number,
			provider_id, service_type, date_of_service, invoice_date, due_date,
			status, total_amount, paid_amount, payment_method, currency, notes,
			insurance_provider, insurance_plan, insurance_policy_number,
			insurance_member_id, insurance_claim_number, insurance_claim_status, insurance_paid)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23)`,
		inv.ID, inv.InvoiceNumber, inv.PatientID, inv.PatientName, inv.NHSNumber,
		inv.ProviderID, inv.ServiceType, inv.DateOfService, inv.InvoiceDate, inv.DueDate,
		inv.Status, inv.TotalAmount, inv.PaidAmount, inv.PaymentMethod, inv.Currency, inv.Notes,
		insProvider, insPlan, insPolicy,
		insMember, insClaim, insStatus, insPaid)
	if err != nil {
		return fmt.Errorf("inserting invoice: %w", err)
	}

	for i, item := range inv.Items {
		item.ID = uuid.New()
		item.InvoiceID = inv.ID
		item.Sequence = i + 1
		_, err := conn.Exec(ctx, `
			INSERT INTO invoice_line_item (id, invoice_id, sequence, code, description, quantity, unit_price, total)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			item.ID, item.InvoiceID, item.Sequence, item.Code, item.Description,
			item.Quantity, item.UnitPrice, item.Total)
		if err != nil {
			return fmt.Errorf("inserting line item %d: %w", i+1, err)
		}
	}
	return nil
}

func (r *invoiceRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	inv, err := scanInvoice(r.conn(ctx).QueryRow(ctx, `SELECT `+invoiceCols+` FROM invoice WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvoiceNotFound
		}
		return nil, err
	}
	items, err := r.GetLineItems(ctx, id)
	if err != nil {
		return nil, err
	}
	inv.Items = items
	return inv, nil
}

func (r *invoiceRepoPG) Update(ctx context.Context, inv *Invoice) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE invoice SET patient_name=$2, nhs_number=$3, provider_id=$4, service_type=$5,
			date_of_service=$6, due_date=$7, notes=$8, updated_at=NOW()
		WHERE id = $1`,
		inv.ID, inv.PatientName, inv.NHSNumber, inv.ProviderID, inv.ServiceType,
		inv.DateOfService, inv.DueDate, inv.Notes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInvoiceNotFound
	}
	return nil
}

func (r *invoiceRepoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status string, paidAmount float64) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE invoice SET status=$2, paid_amount=$3, updated_at=NOW() WHERE id = $1`,
		id, status, paidAmount)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInvoiceNotFound
	}
	return nil
}

func (r *invoiceRepoPG) UpdateInsurance(ctx context.Context, id uuid.UUID, ins *InsuranceDetails, paidAmount float64) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE invoice SET insurance_provider=$2, insurance_plan=$3, insurance_policy_number=$4,
			insurance_member_id=$5, insurance_claim_number=$6, insurance_claim_status=$7,
			insurance_paid=$8, paid_amount=$9, updated_at=NOW()
		WHERE id = $1`,
		id, ins.Provider, ins.PlanName, ins.PolicyNumber,
		ins.MemberID, ins.ClaimNumber, ins.ClaimStatus,
		ins.PaidAmount, paidAmount)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInvoiceNotFound
	}
	return nil
}

func (r *invoiceRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	// Line items and payments cascade via FK.
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM invoice WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInvoiceNotFound
	}
	return nil
}

func (r *invoiceRepoPG) List(ctx context.Context, filter InvoiceFilter, limit, offset int) ([]*Invoice, int, error) {
	where := `WHERE 1=1`
	args := []interface{}{}
	if filter.PatientID != nil {
		args = append(args, *filter.PatientID)
		where += fmt.Sprintf(` AND patient_id = $%d`, len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += fmt.Sprintf(` AND status = $%d`, len(args))
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM invoice `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := r.conn(ctx).Query(ctx,
		fmt.Sprintf(`SELECT %s FROM invoice %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
			invoiceCols, where, len(args)-1, len(args)),
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, inv)
	}
	return items, total, rows.Err()
}

func (r *invoiceRepoPG) ListByProvider(ctx context.Context, providerID uuid.UUID) ([]*Invoice, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+invoiceCols+` FROM invoice WHERE provider_id = $1 ORDER BY created_at DESC`, providerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, inv)
	}
	return items, rows.Err()
}

func (r *invoiceRepoPG) GetLineItems(ctx context.Context, invoiceID uuid.UUID) ([]*LineItem, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, invoice_id, sequence, code, description, quantity, unit_price, total
		FROM invoice_line_item WHERE invoice_id = $1 ORDER BY sequence`, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*LineItem
	for rows.Next() {
		var li LineItem
		if err := rows.Scan(&li.ID, &li.InvoiceID, &li.Sequence, &li.Code, &li.Description,
			&li.Quantity, &li.UnitPrice, &li.Total); err != nil {
			return nil, err
		}
		items = append(items, &li)
	}
	return items, rows.Err()
}

// =========== Payment Repository ===========

type paymentRepoPG struct{ pool *pgxpool.Pool }

func NewPaymentRepoPG(pool *pgxpool.Pool) PaymentRepository { return &paymentRepoPG{pool: pool} }

func (r *paymentRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const paymentCols = `id, invoice_id, amount, method, status, transaction_id,
	payment_intent_id, reference, notes, paid_at, created_at`

func scanPayment(row pgx.Row) (*Payment, error) {
	var p Payment
	err := row.Scan(&p.ID, &p.InvoiceID, &p.Amount, &p.Method, &p.Status, &p.TransactionID,
		&p.PaymentIntentID, &p.Reference, &p.Notes, &p.PaidAt, &p.CreatedAt)
	return &p, err
}

func (r *paymentRepoPG) Create(ctx context.Context, p *Payment) error {
	p.ID = uuid.New()
	if p.PaidAt.IsZero() {
		p.PaidAt = time.Now().UTC()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO payment (id, invoice_id, amount, method, status, transaction_id,
			payment_intent_id, reference, notes, paid_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		p.ID, p.InvoiceID, p.Amount, p.Method, p.Status, p.TransactionID,
		p.PaymentIntentID, p.Reference, p.Notes, p.PaidAt)
	return err
}

func (r *paymentRepoPG) ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]*Payment, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+paymentCols+` FROM payment WHERE invoice_id = $1 ORDER BY paid_at DESC`, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func (r *paymentRepoPG) List(ctx context.Context, limit, offset int) ([]*Payment, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM payment`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+paymentCols+` FROM payment ORDER BY paid_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}
