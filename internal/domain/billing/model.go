package billing

import (
	"time"

	"github.com/google/uuid"
)

// Invoice statuses.
const (
	StatusDraft     = "draft"
	StatusPending   = "pending"
	StatusSent      = "sent"
	StatusPaid      = "paid"
	StatusOverdue   = "overdue"
	StatusCancelled = "cancelled"
)

// Invoice payment methods.
const (
	MethodCash      = "Cash"
	MethodOnline    = "Online Payment"
	MethodInsurance = "Insurance"
)

// allowedTransitions is the invoice lifecycle graph. Terminal states map to
// an empty set.
var allowedTransitions = map[string]map[string]bool{
	StatusDraft:     {StatusPending: true, StatusSent: true, StatusCancelled: true},
	StatusPending:   {StatusPaid: true, StatusSent: true, StatusCancelled: true},
	StatusSent:      {StatusPaid: true, StatusOverdue: true, StatusCancelled: true},
	StatusOverdue:   {StatusPaid: true, StatusCancelled: true},
	StatusPaid:      {},
	StatusCancelled: {},
}

// ValidStatus reports whether s is a recognised invoice status.
func ValidStatus(s string) bool {
	_, ok := allowedTransitions[s]
	return ok
}

// CanTransition reports whether an invoice may move from one status to
// another. A same-status update is always permitted (treated as a no-op by
// the service).
func CanTransition(from, to string) bool {
	if from == to {
		return true
	}
	next, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	return next[to]
}

// Invoice maps to the invoice table.
type Invoice struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	InvoiceNumber string     `db:"invoice_number" json:"invoice_number"`
	PatientID     uuid.UUID  `db:"patient_id" json:"patient_id"`
	PatientName   string     `db:"patient_name" json:"patient_name"`
	NHSNumber     *string    `db:"nhs_number" json:"nhs_number,omitempty"`
	ProviderID    *uuid.UUID `db:"provider_id" json:"provider_id,omitempty"`
	ServiceType   *string    `db:"service_type" json:"service_type,omitempty"`
	DateOfService time.Time  `db:"date_of_service" json:"date_of_service"`
	InvoiceDate   time.Time  `db:"invoice_date" json:"invoice_date"`
	DueDate       time.Time  `db:"due_date" json:"due_date"`
	Status        string     `db:"status" json:"status"`
	TotalAmount   float64    `db:"total_amount" json:"total_amount"`
	PaidAmount    float64    `db:"paid_amount" json:"paid_amount"`
	PaymentMethod string     `db:"payment_method" json:"payment_method"`
	Currency      string     `db:"currency" json:"currency"`
	Notes         *string    `db:"notes" json:"notes,omitempty"`

	Insurance *InsuranceDetails `json:"insurance,omitempty"`
	Items     []*LineItem       `json:"items,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Balance is the amount still owed on the invoice.
func (inv *Invoice) Balance() float64 {
	b := inv.TotalAmount - inv.PaidAmount
	if b < 0 {
		return 0
	}
	return b
}

// InsuranceDetails is the structured claim sub-record carried on an
// insurance-billed invoice. Absent implies self-pay.
type InsuranceDetails struct {
	Provider     string  `json:"provider"`
	PlanName     *string `json:"plan_name,omitempty"`
	PolicyNumber *string `json:"policy_number,omitempty"`
	MemberID     *string `json:"member_id,omitempty"`
	ClaimNumber  *string `json:"claim_number,omitempty"`
	ClaimStatus  string  `json:"claim_status"`
	PaidAmount   float64 `json:"paid_amount"`
}

// Insurance claim statuses.
const (
	ClaimPending       = "pending"
	ClaimApproved      = "approved"
	ClaimDenied        = "denied"
	ClaimPartiallyPaid = "partially_paid"
)

// LineItem maps to the invoice_line_item table. Line items are owned by
// their invoice and are never persisted independently.
type LineItem struct {
	ID          uuid.UUID `db:"id" json:"id"`
	InvoiceID   uuid.UUID `db:"invoice_id" json:"invoice_id"`
	Sequence    int       `db:"sequence" json:"sequence"`
	Code        string    `db:"code" json:"code"`
	Description string    `db:"description" json:"description"`
	Quantity    int       `db:"quantity" json:"quantity"`
	UnitPrice   float64   `db:"unit_price" json:"unit_price"`
	Total       float64   `db:"total" json:"total"`
}

// Payment maps to the payment table.
type Payment struct {
	ID              uuid.UUID `db:"id" json:"id"`
	InvoiceID       uuid.UUID `db:"invoice_id" json:"invoice_id"`
	Amount          float64   `db:"amount" json:"amount"`
	Method          string    `db:"method" json:"method"`
	Status          string    `db:"status" json:"status"`
	TransactionID   string    `db:"transaction_id" json:"transaction_id"`
	PaymentIntentID *string   `db:"payment_intent_id" json:"payment_intent_id,omitempty"`
	Reference       *string   `db:"reference" json:"reference,omitempty"`
	Notes           *string   `db:"notes" json:"notes,omitempty"`
	PaidAt          time.Time `db:"paid_at" json:"paid_at"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// Payment ledger methods and statuses.
const (
	PaymentMethodCash      = "cash"
	PaymentMethodCard      = "card"
	PaymentMethodManual    = "manual"
	PaymentMethodInsurance = "insurance"

	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
	PaymentPending   = "pending"
)

// DoctorInvoices is the provider-scoped view returned by the doctor-invoices
// endpoint, pre-split by service type.
type DoctorInvoices struct {
	Overall      []*Invoice `json:"overall"`
	Appointments []*Invoice `json:"appointments"`
	LabResults   []*Invoice `json:"lab_results"`
	Imaging      []*Invoice `json:"imaging"`
}
