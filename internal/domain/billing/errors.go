package billing

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvoiceNotFound   = errors.New("invoice not found")
	ErrPaymentNotFound   = errors.New("payment not found")
	ErrNotInsuranceBill  = errors.New("invoice is not billed to insurance")
	ErrPaymentsDisabled  = errors.New("online payments are not configured")
	ErrIntentNotComplete = errors.New("payment intent has not succeeded")
	ErrIntentMismatch    = errors.New("payment intent does not match the invoice")
)

// FieldError is a single validation failure tied to one input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every validation failure for a submission so the
// caller sees all problems at once.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

func (v *ValidationErrors) add(field, message string) {
	*v = append(*v, FieldError{Field: field, Message: message})
}

// TransitionError reports a rejected status change.
type TransitionError struct {
	From string
	To   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot transition invoice from %s to %s", e.From, e.To)
}
