// Package insurance implements the insurer claim workflow on top of the
// billing ledger: submitting a claim for an insurance-billed invoice and
// reconciling insurer payments against it.
package insurance

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cura/cura/internal/domain/billing"
)

type Service struct {
	invoices billing.InvoiceRepository
	payments billing.PaymentRepository
	runTx    billing.TxRunner
	log      zerolog.Logger
}

func NewService(invoices billing.InvoiceRepository, payments billing.PaymentRepository,
	runTx billing.TxRunner, log zerolog.Logger) *Service {
	if runTx == nil {
		runTx = func(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }
	}
	return &Service{invoices: invoices, payments: payments, runTx: runTx, log: log}
}

// SubmitClaimRequest identifies the invoice and the claim being opened
// with the insurer.
type SubmitClaimRequest struct {
	InvoiceID   uuid.UUID `json:"invoice_id"`
	Provider    string    `json:"provider"`
	ClaimNumber string    `json:"claim_number"`
}

// SubmitClaim records the insurer's claim number against an
// insurance-billed invoice and resets the claim to pending. Invoices
// without an insurance sub-record are rejected.
func (s *Service) SubmitClaim(ctx context.Context, req SubmitClaimRequest) (*billing.Invoice, error) {
	var verrs billing.ValidationErrors
	if strings.TrimSpace(req.Provider) == "" {
		verrs = append(verrs, billing.FieldError{Field: "provider", Message: "provider is required"})
	}
	if strings.TrimSpace(req.ClaimNumber) == "" {
		verrs = append(verrs, billing.FieldError{Field: "claim_number", Message: "claim number is required"})
	}
	if len(verrs) > 0 {
		return nil, verrs
	}

	inv, err := s.invoices.GetByID(ctx, req.InvoiceID)
	if err != nil {
		return nil, err
	}
	if inv.Insurance == nil {
		return nil, billing.ErrNotInsuranceBill
	}

	inv.Insurance.Provider = req.Provider
	inv.Insurance.ClaimNumber = &req.ClaimNumber
	inv.Insurance.ClaimStatus = billing.ClaimPending

	if err := s.invoices.UpdateInsurance(ctx, inv.ID, inv.Insurance, inv.PaidAmount); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("invoice_number", inv.InvoiceNumber).
		Str("claim_number", req.ClaimNumber).
		Str("provider", req.Provider).
		Msg("insurance claim submitted")
	return inv, nil
}

// RecordPaymentRequest describes an insurer remittance against a claim.
type RecordPaymentRequest struct {
	InvoiceID        uuid.UUID `json:"invoice_id"`
	ClaimNumber      string    `json:"claim_number"`
	AmountPaid       float64   `json:"amount_paid"`
	PaymentDate      time.Time `json:"payment_date"`
	Provider         string    `json:"insurance_provider"`
	PaymentReference *string   `json:"payment_reference"`
	Notes            *string   `json:"notes"`
}

// RecordPayment applies an insurer remittance to the invoice: an insurance
// payment row is appended, the claim's paid amount and the invoice's paid
// amount move together, and the claim settles to approved or partially_paid
// depending on the remaining balance. Everything happens in one
// transaction.
func (s *Service) RecordPayment(ctx context.Context, req RecordPaymentRequest) (*billing.Payment, error) {
	if req.AmountPaid <= 0 {
		return nil, billing.ValidationErrors{{Field: "amount_paid", Message: "amount paid must be greater than zero"}}
	}

	inv, err := s.invoices.GetByID(ctx, req.InvoiceID)
	if err != nil {
		return nil, err
	}
	if inv.Insurance == nil {
		return nil, billing.ErrNotInsuranceBill
	}

	paidAt := req.PaymentDate
	if paidAt.IsZero() {
		paidAt = time.Now().UTC()
	}
	p := &billing.Payment{
		InvoiceID:     inv.ID,
		Amount:        req.AmountPaid,
		Method:        billing.PaymentMethodInsurance,
		Status:        billing.PaymentCompleted,
		TransactionID: "txn_" + uuid.NewString(),
		Reference:     req.PaymentReference,
		Notes:         req.Notes,
		PaidAt:        paidAt,
	}

	ins := *inv.Insurance
	ins.PaidAmount += req.AmountPaid
	if req.ClaimNumber != "" {
		ins.ClaimNumber = &req.ClaimNumber
	}
	if req.Provider != "" {
		ins.Provider = req.Provider
	}

	newPaid := inv.PaidAmount + req.AmountPaid
	if newPaid > inv.TotalAmount {
		newPaid = inv.TotalAmount
	}

	newStatus := inv.Status
	if newPaid >= inv.TotalAmount {
		ins.ClaimStatus = billing.ClaimApproved
		if billing.CanTransition(inv.Status, billing.StatusPaid) {
			newStatus = billing.StatusPaid
		}
	} else {
		ins.ClaimStatus = billing.ClaimPartiallyPaid
	}

	err = s.runTx(ctx, func(ctx context.Context) error {
		if err := s.payments.Create(ctx, p); err != nil {
			return err
		}
		if err := s.invoices.UpdateInsurance(ctx, inv.ID, &ins, newPaid); err != nil {
			return err
		}
		if newStatus != inv.Status {
			return s.invoices.UpdateStatus(ctx, inv.ID, newStatus, newPaid)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("invoice_number", inv.InvoiceNumber).
		Float64("amount", req.AmountPaid).
		Str("claim_status", ins.ClaimStatus).
		Msg("insurance payment recorded")
	return p, nil
}

// DenyClaim marks a pending claim denied. The invoice keeps its current
// status; the practice follows up with the patient directly.
func (s *Service) DenyClaim(ctx context.Context, invoiceID uuid.UUID, reason *string) (*billing.Invoice, error) {
	inv, err := s.invoices.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv.Insurance == nil {
		return nil, billing.ErrNotInsuranceBill
	}

	inv.Insurance.ClaimStatus = billing.ClaimDenied
	if err := s.invoices.UpdateInsurance(ctx, inv.ID, inv.Insurance, inv.PaidAmount); err != nil {
		return nil, err
	}
	if reason != nil {
		s.log.Warn().
			Str("invoice_number", inv.InvoiceNumber).
			Str("reason", *reason).
			Msg("insurance claim denied")
	}
	return inv, nil
}
