package notification

import (
	"context"
	"strings"
	"testing"
)

func TestTemplateEngine_RenderInvoiceSent(t *testing.T) {
	e := NewTemplateEngine()

	subject, body, err := e.Render("invoice-sent", map[string]string{
		"invoice_number": "INV-2026-0007",
		"clinic_name":    "Harley Street Clinic",
		"patient_name":   "Jane Roe",
		"amount":         "£175.00",
		"due_date":       "9 April 2026",
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if subject != "Invoice INV-2026-0007 from Harley Street Clinic" {
		t.Errorf("unexpected subject: %s", subject)
	}
	if !strings.Contains(body, "£175.00") || !strings.Contains(body, "9 April 2026") {
		t.Errorf("unexpected body: %s", body)
	}
}

func TestTemplateEngine_UnknownTemplate(t *testing.T) {
	e := NewTemplateEngine()
	if _, _, err := e.Render("no-such-template", nil); err == nil {
		t.Error("expected error for unknown template")
	}
}

func TestTemplateEngine_MissingKeysLeftAsIs(t *testing.T) {
	e := NewTemplateEngine()
	_, body, err := e.Render("payment-received", map[string]string{"patient_name": "Jo"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(body, "{{amount}}") {
		t.Errorf("unreplaced placeholder should remain: %s", body)
	}
}

func TestDispatcher_SendEmail(t *testing.T) {
	email := &MockEmailSender{}
	sms := &MockSMSSender{}
	d := NewDispatcher(email, sms, NewTemplateEngine())

	msg, err := d.SendFromTemplate(context.Background(), "invoice-sent", "jane@example.com", map[string]string{
		"invoice_number": "INV-2026-0001",
	})
	if err != nil {
		t.Fatalf("SendFromTemplate: %v", err)
	}
	if msg.Status != "sent" {
		t.Errorf("expected sent status, got %s", msg.Status)
	}
	if msg.SentAt == nil {
		t.Error("expected SentAt to be set")
	}

	calls := email.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 email, got %d", len(calls))
	}
	if calls[0].To != "jane@example.com" {
		t.Errorf("unexpected recipient %s", calls[0].To)
	}
}

func TestDispatcher_NoteAppendedBeforeDispatch(t *testing.T) {
	email := &MockEmailSender{}
	d := NewDispatcher(email, &MockSMSSender{}, NewTemplateEngine())

	note := "Reception closes at 5pm on Fridays."
	msg, err := d.SendFromTemplateNote(context.Background(), "invoice-sent", "jane@example.com", nil, note)
	if err != nil {
		t.Fatalf("SendFromTemplateNote: %v", err)
	}

	calls := email.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 email, got %d", len(calls))
	}
	if !strings.Contains(calls[0].Body, note) {
		t.Errorf("delivered body missing note: %q", calls[0].Body)
	}
	// The stored log must match what actually went out.
	if calls[0].Body != msg.Body {
		t.Errorf("stored body diverges from delivered body:\nstored: %q\nsent:   %q", msg.Body, calls[0].Body)
	}
}

func TestDispatcher_SMSChannel(t *testing.T) {
	email := &MockEmailSender{}
	sms := &MockSMSSender{}
	d := NewDispatcher(email, sms, NewTemplateEngine())

	_, err := d.SendFromTemplate(context.Background(), "payment-reminder-sms", "+447700900000", map[string]string{
		"clinic_name": "Harley Street Clinic",
	})
	if err != nil {
		t.Fatalf("SendFromTemplate: %v", err)
	}
	if len(sms.Calls()) != 1 {
		t.Fatalf("expected 1 SMS, got %d", len(sms.Calls()))
	}
	if len(email.Calls()) != 0 {
		t.Error("expected no emails for SMS template")
	}
}

func TestDispatcher_FailureAndRetry(t *testing.T) {
	email := &MockEmailSender{ShouldFail: true, FailError: "smtp down"}
	d := NewDispatcher(email, &MockSMSSender{}, NewTemplateEngine())

	msg, err := d.SendFromTemplate(context.Background(), "invoice-overdue", "jane@example.com", nil)
	if err == nil {
		t.Fatal("expected send failure")
	}
	if msg.Status != "failed" {
		t.Errorf("expected failed status, got %s", msg.Status)
	}

	email.ShouldFail = false
	if err := d.Retry(context.Background(), msg.ID); err != nil {
		t.Fatalf("Retry: %v", err)
	}

	got, err := d.Get(msg.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != "sent" {
		t.Errorf("expected sent after retry, got %s", got.Status)
	}
	if got.Error != "" {
		t.Errorf("expected cleared error, got %q", got.Error)
	}
}

func TestDispatcher_RetryNonFailed(t *testing.T) {
	d := NewDispatcher(&MockEmailSender{}, &MockSMSSender{}, NewTemplateEngine())

	msg, err := d.SendFromTemplate(context.Background(), "invoice-sent", "jane@example.com", nil)
	if err != nil {
		t.Fatalf("SendFromTemplate: %v", err)
	}
	if err := d.Retry(context.Background(), msg.ID); err == nil {
		t.Error("expected error retrying a sent message")
	}
}

func TestDispatcher_Stats(t *testing.T) {
	email := &MockEmailSender{}
	d := NewDispatcher(email, &MockSMSSender{}, NewTemplateEngine())

	_, _ = d.SendFromTemplate(context.Background(), "invoice-sent", "a@example.com", nil)
	email.ShouldFail = true
	email.FailError = "smtp down"
	_, _ = d.SendFromTemplate(context.Background(), "invoice-sent", "b@example.com", nil)

	stats := d.Stats()
	if stats["sent"] != 1 || stats["failed"] != 1 {
		t.Errorf("unexpected stats %v", stats)
	}
}
