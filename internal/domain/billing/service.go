package billing

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cura/cura/internal/domain/directory"
	"github.com/cura/cura/internal/platform/blobstore"
	"github.com/cura/cura/internal/platform/notification"
	"github.com/cura/cura/internal/platform/paymentgw"
	"github.com/cura/cura/internal/platform/pdf"
)

// TxRunner executes fn inside a database transaction. Repositories called
// from fn pick the transaction up from the context.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

// Config carries clinic-level settings the billing service needs.
type Config struct {
	Currency     string
	DueDays      int
	ClinicName   string
	ClinicHeader string
	ClinicFooter string
}

type Service struct {
	invoices InvoiceRepository
	payments PaymentRepository
	gateway  paymentgw.Gateway
	docs     blobstore.Store
	notify   *notification.Dispatcher
	runTx    TxRunner
	cfg      Config
	branding directory.BrandingReader
}

func NewService(invoices InvoiceRepository, payments PaymentRepository, gateway paymentgw.Gateway,
	docs blobstore.Store, notify *notification.Dispatcher, runTx TxRunner, cfg Config) *Service {
	if runTx == nil {
		runTx = func(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }
	}
	if cfg.Currency == "" {
		cfg.Currency = "GBP"
	}
	if cfg.DueDays <= 0 {
		cfg.DueDays = 30
	}
	return &Service{
		invoices: invoices, payments: payments, gateway: gateway,
		docs: docs, notify: notify, runTx: runTx, cfg: cfg,
	}
}

// WithBranding sources the document letterhead from the tenant's stored
// clinic header and footer instead of the static config values.
func (s *Service) WithBranding(b directory.BrandingReader) *Service {
	s.branding = b
	return s
}

// CreateInvoice validates and persists a new invoice. All validation
// failures are collected and returned together. The payment method drives
// the initial state: Cash invoices are created paid with a cash payment row
// written in the same transaction, Online Payment invoices start pending,
// and Insurance invoices start sent with a pending claim sub-record.
func (s *Service) CreateInvoice(ctx context.Context, inv *Invoice) error {
	var verrs ValidationErrors
	if inv.PatientID == uuid.Nil {
		verrs.add("patient_id", "patient is required")
	}
	if len(inv.Items) == 0 {
		verrs.add("items", "at least one line item is required")
	}
	for i, item := range inv.Items {
		field := fmt.Sprintf("items[%d]", i)
		if strings.TrimSpace(item.Code) == "" {
			verrs.add(field+".code", "service code is required")
		}
		if strings.TrimSpace(item.Description) == "" {
			verrs.add(field+".description", "description is required")
		}
		if item.Quantity <= 0 {
			verrs.add(field+".quantity", "quantity must be greater than zero")
		}
		if item.UnitPrice <= 0 {
			verrs.add(field+".unit_price", "unit price must be greater than zero")
		}
	}
	switch inv.PaymentMethod {
	case MethodCash, MethodOnline:
	case MethodInsurance:
		if inv.Insurance == nil || strings.TrimSpace(inv.Insurance.Provider) == "" {
			verrs.add("insurance", "insurance details required")
		}
	default:
		verrs.add("payment_method", "payment method must be Cash, Online Payment or Insurance")
	}

	total := 0.0
	for _, item := range inv.Items {
		item.Total = float64(item.Quantity) * item.UnitPrice
		total += item.Total
	}
	if total <= 0 {
		verrs.add("total_amount", "total amount must be greater than zero")
	}
	if len(verrs) > 0 {
		return verrs
	}

	now := time.Now().UTC()
	inv.TotalAmount = total
	if inv.Currency == "" {
		inv.Currency = s.cfg.Currency
	}
	if inv.InvoiceDate.IsZero() {
		inv.InvoiceDate = now
	}
	if inv.DateOfService.IsZero() {
		inv.DateOfService = now
	}
	if inv.DueDate.IsZero() {
		inv.DueDate = inv.InvoiceDate.AddDate(0, 0, s.cfg.DueDays)
	}

	switch inv.PaymentMethod {
	case MethodCash:
		inv.Status = StatusPaid
		inv.PaidAmount = total
	case MethodOnline:
		inv.Status = StatusPending
		inv.PaidAmount = 0
	case MethodInsurance:
		inv.Status = StatusSent
		inv.PaidAmount = 0
		inv.Insurance.ClaimStatus = ClaimPending
		inv.Insurance.PaidAmount = 0
	}

	return s.runTx(ctx, func(ctx context.Context) error {
		if err := s.invoices.Create(ctx, inv); err != nil {
			return err
		}
		if inv.PaymentMethod == MethodCash {
			return s.payments.Create(ctx, &Payment{
				InvoiceID:     inv.ID,
				Amount:        total,
				Method:        PaymentMethodCash,
				Status:        PaymentCompleted,
				TransactionID: newTransactionID(),
			})
		}
		return nil
	})
}

func (s *Service) GetInvoice(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	return s.invoices.GetByID(ctx, id)
}

func (s *Service) ListInvoices(ctx context.Context, filter InvoiceFilter, limit, offset int) ([]*Invoice, int, error) {
	return s.invoices.List(ctx, filter, limit, offset)
}

func (s *Service) UpdateInvoice(ctx context.Context, inv *Invoice) error {
	return s.invoices.Update(ctx, inv)
}

// UpdateStatus moves an invoice through its lifecycle. The transition table
// is the single guard shared by every status-editing surface. A transition
// into paid atomically records a manual payment for the outstanding balance
// so the ledger and the status can never disagree.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, newStatus string) (*Invoice, error) {
	if !ValidStatus(newStatus) {
		return nil, fmt.Errorf("invalid invoice status: %s", newStatus)
	}
	inv, err := s.invoices.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.Status == newStatus {
		return inv, nil
	}
	if !CanTransition(inv.Status, newStatus) {
		return nil, &TransitionError{From: inv.Status, To: newStatus}
	}

	if newStatus == StatusPaid {
		if err := s.markPaid(ctx, inv, PaymentMethodManual, nil); err != nil {
			return nil, err
		}
	} else {
		if err := s.invoices.UpdateStatus(ctx, id, newStatus, inv.PaidAmount); err != nil {
			return nil, err
		}
		inv.Status = newStatus
	}
	return inv, nil
}

// markPaid writes the balancing payment row and flips the invoice to paid in
// one transaction.
func (s *Service) markPaid(ctx context.Context, inv *Invoice, method string, intentID *string) error {
	balance := inv.Balance()
	err := s.runTx(ctx, func(ctx context.Context) error {
		if balance > 0 {
			p := &Payment{
				InvoiceID:       inv.ID,
				Amount:          balance,
				Method:          method,
				Status:          PaymentCompleted,
				TransactionID:   newTransactionID(),
				PaymentIntentID: intentID,
			}
			if err := s.payments.Create(ctx, p); err != nil {
				return err
			}
		}
		return s.invoices.UpdateStatus(ctx, inv.ID, StatusPaid, inv.TotalAmount)
	})
	if err != nil {
		return err
	}
	inv.Status = StatusPaid
	inv.PaidAmount = inv.TotalAmount
	return nil
}

// RecordPayment appends a manual payment to the ledger. The invoice's paid
// amount is clamped to its total; covering the full balance flips the
// invoice to paid.
func (s *Service) RecordPayment(ctx context.Context, invoiceID uuid.UUID, amount float64, method string, reference, notes *string) (*Payment, error) {
	if amount <= 0 {
		return nil, ValidationErrors{{Field: "amount", Message: "amount must be greater than zero"}}
	}
	if method == "" {
		method = PaymentMethodManual
	}
	inv, err := s.invoices.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	p := &Payment{
		InvoiceID:     invoiceID,
		Amount:        amount,
		Method:        method,
		Status:        PaymentCompleted,
		TransactionID: newTransactionID(),
		Reference:     reference,
		Notes:         notes,
	}

	newPaid := inv.PaidAmount + amount
	if newPaid > inv.TotalAmount {
		newPaid = inv.TotalAmount
	}
	newStatus := inv.Status
	if newPaid >= inv.TotalAmount && CanTransition(inv.Status, StatusPaid) {
		newStatus = StatusPaid
	}

	err = s.runTx(ctx, func(ctx context.Context) error {
		if err := s.payments.Create(ctx, p); err != nil {
			return err
		}
		return s.invoices.UpdateStatus(ctx, invoiceID, newStatus, newPaid)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) ListPayments(ctx context.Context, invoiceID uuid.UUID) ([]*Payment, error) {
	return s.payments.ListByInvoice(ctx, invoiceID)
}

func (s *Service) ListAllPayments(ctx context.Context, limit, offset int) ([]*Payment, int, error) {
	return s.payments.List(ctx, limit, offset)
}

// CreatePaymentIntent asks the gateway for an intent covering the invoice's
// outstanding balance.
func (s *Service) CreatePaymentIntent(ctx context.Context, invoiceID uuid.UUID) (*paymentgw.Intent, error) {
	if s.gateway == nil {
		return nil, ErrPaymentsDisabled
	}
	inv, err := s.invoices.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	balance := inv.Balance()
	if balance <= 0 {
		return nil, fmt.Errorf("invoice %s has no outstanding balance", inv.InvoiceNumber)
	}
	amountMinor := int64(balance*100 + 0.5)
	intent, err := s.gateway.CreateIntent(ctx, amountMinor, inv.Currency, inv.InvoiceNumber)
	if err != nil {
		return nil, fmt.Errorf("payment gateway: %w", err)
	}
	return intent, nil
}

// ProcessPayment reconciles a confirmed payment intent with the invoice. The
// intent must have succeeded at the gateway, belong to this invoice, and
// cover the outstanding balance exactly; otherwise nothing is written.
func (s *Service) ProcessPayment(ctx context.Context, invoiceID uuid.UUID, paymentIntentID string) (*Invoice, error) {
	if s.gateway == nil {
		return nil, ErrPaymentsDisabled
	}
	intent, err := s.gateway.GetIntent(ctx, paymentIntentID)
	if err != nil {
		return nil, fmt.Errorf("payment gateway: %w", err)
	}
	if intent.Status != "succeeded" {
		return nil, fmt.Errorf("%w (status: %s)", ErrIntentNotComplete, intent.Status)
	}
	inv, err := s.invoices.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv.Status == StatusPaid {
		return inv, nil
	}
	if intent.InvoiceNumber != inv.InvoiceNumber {
		return nil, fmt.Errorf("%w: intent was created for a different invoice", ErrIntentMismatch)
	}
	balanceMinor := int64(inv.Balance()*100 + 0.5)
	if intent.AmountMinor != balanceMinor {
		return nil, fmt.Errorf("%w: intent amount %d does not cover the outstanding balance %d",
			ErrIntentMismatch, intent.AmountMinor, balanceMinor)
	}
	if err := s.markPaid(ctx, inv, PaymentMethodCard, &intent.ID); err != nil {
		return nil, err
	}
	return inv, nil
}

// SendInvoiceRequest is the input to SendInvoice.
type SendInvoiceRequest struct {
	InvoiceID     uuid.UUID `json:"invoice_id"`
	SendMethod    string    `json:"send_method"` // email or sms
	Recipient     string    `json:"recipient"`
	CustomMessage string    `json:"custom_message"`
}

// SendInvoice renders and stores the invoice PDF first, so the attachment
// exists before the notification goes out, then dispatches the message.
// Draft invoices move to sent.
func (s *Service) SendInvoice(ctx context.Context, req SendInvoiceRequest) (*blobstore.DocumentMetadata, error) {
	if req.Recipient == "" {
		return nil, ValidationErrors{{Field: "recipient", Message: "recipient is required"}}
	}
	inv, err := s.invoices.GetByID(ctx, req.InvoiceID)
	if err != nil {
		return nil, err
	}

	doc, err := s.SaveInvoicePDF(ctx, req.InvoiceID)
	if err != nil {
		return nil, fmt.Errorf("rendering invoice: %w", err)
	}

	templateID := "invoice-sent"
	if req.SendMethod == "sms" {
		templateID = "payment-reminder-sms"
	}
	clinicName, _, _ := s.letterhead(ctx)
	data := map[string]string{
		"invoice_number": inv.InvoiceNumber,
		"clinic_name":    clinicName,
		"patient_name":   inv.PatientName,
		"amount":         fmt.Sprintf("%s %.2f", inv.Currency, inv.TotalAmount),
		"due_date":       inv.DueDate.Format("2 January 2006"),
	}
	if _, err := s.notify.SendFromTemplateNote(ctx, templateID, req.Recipient, data, req.CustomMessage); err != nil {
		return doc, fmt.Errorf("dispatching invoice: %w", err)
	}

	if inv.Status == StatusDraft {
		if err := s.invoices.UpdateStatus(ctx, inv.ID, StatusSent, inv.PaidAmount); err != nil {
			return doc, err
		}
	}
	return doc, nil
}

// SaveInvoicePDF renders the invoice and stores it in the document archive.
func (s *Service) SaveInvoicePDF(ctx context.Context, invoiceID uuid.UUID) (*blobstore.DocumentMetadata, error) {
	inv, err := s.invoices.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	rendered, err := pdf.RenderInvoice(s.invoiceDocument(ctx, inv))
	if err != nil {
		return nil, err
	}

	return s.docs.Put(ctx, blobstore.DocumentMetadata{
		FileName:    fmt.Sprintf("invoice-%s.pdf", inv.InvoiceNumber),
		ContentType: "application/pdf",
		InvoiceID:   inv.ID.String(),
		Category:    "invoice",
	}, bytes.NewReader(rendered))
}

// letterhead resolves the clinic name, header band, and footer band for
// rendered documents. Stored branding wins over config; a failed lookup
// falls back to config so rendering never blocks on the settings table.
func (s *Service) letterhead(ctx context.Context) (name, header, footer string) {
	name, header, footer = s.cfg.ClinicName, s.cfg.ClinicHeader, s.cfg.ClinicFooter
	if s.branding == nil {
		return name, header, footer
	}
	if h, err := s.branding.GetHeader(ctx); err == nil && h.ClinicName != "" {
		name = h.ClinicName
		var parts []string
		for _, p := range []string{h.Address, h.Phone, h.Email} {
			if p != "" {
				parts = append(parts, p)
			}
		}
		header = strings.Join(parts, "\n")
	}
	if f, err := s.branding.GetFooter(ctx); err == nil && f.Text != "" {
		footer = f.Text
	}
	return name, header, footer
}

func (s *Service) invoiceDocument(ctx context.Context, inv *Invoice) *pdf.InvoiceDocument {
	name, header, footer := s.letterhead(ctx)
	doc := &pdf.InvoiceDocument{
		InvoiceNumber: inv.InvoiceNumber,
		IssuedAt:      inv.InvoiceDate,
		DueDate:       inv.DueDate,
		Status:        inv.Status,
		Currency:      inv.Currency,
		ClinicName:    name,
		ClinicHeader:  header,
		ClinicFooter:  footer,
		PatientName:   inv.PatientName,
		PaymentMethod: inv.PaymentMethod,
		Total:         inv.TotalAmount,
		AmountPaid:    inv.PaidAmount,
	}
	for _, item := range inv.Items {
		doc.Lines = append(doc.Lines, pdf.InvoiceLine{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}
	return doc
}

// DeleteInvoice removes the invoice together with its line items and
// payments.
func (s *Service) DeleteInvoice(ctx context.Context, id uuid.UUID) error {
	return s.runTx(ctx, func(ctx context.Context) error {
		return s.invoices.Delete(ctx, id)
	})
}

// DoctorInvoices returns the provider-scoped view split by service type.
func (s *Service) DoctorInvoices(ctx context.Context, providerID uuid.UUID) (*DoctorInvoices, error) {
	invoices, err := s.invoices.ListByProvider(ctx, providerID)
	if err != nil {
		return nil, err
	}

	view := &DoctorInvoices{
		Overall:      []*Invoice{},
		Appointments: []*Invoice{},
		LabResults:   []*Invoice{},
		Imaging:      []*Invoice{},
	}
	for _, inv := range invoices {
		view.Overall = append(view.Overall, inv)
		st := ""
		if inv.ServiceType != nil {
			st = strings.ToLower(*inv.ServiceType)
		}
		switch {
		case strings.Contains(st, "lab"):
			view.LabResults = append(view.LabResults, inv)
		case strings.Contains(st, "imaging"), strings.Contains(st, "radiology"):
			view.Imaging = append(view.Imaging, inv)
		default:
			view.Appointments = append(view.Appointments, inv)
		}
	}
	return view, nil
}

func newTransactionID() string {
	return "txn_" + uuid.NewString()
}
