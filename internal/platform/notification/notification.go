// Package notification delivers billing emails and SMS messages: invoice
// delivery, payment receipts, and overdue reminders. Templates use {{key}}
// placeholder substitution.
package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// Message is a single outbound notification.
type Message struct {
	ID         string            `json:"id"`
	Channel    Channel           `json:"channel"`
	Recipient  string            `json:"recipient"`
	Subject    string            `json:"subject,omitempty"`
	Body       string            `json:"body"`
	TemplateID string            `json:"template_id,omitempty"`
	Data       map[string]string `json:"data,omitempty"`
	Status     string            `json:"status"`
	CreatedAt  time.Time         `json:"created_at"`
	SentAt     *time.Time        `json:"sent_at,omitempty"`
	Error      string            `json:"error,omitempty"`
}

// EmailSender sends email messages.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// SMSSender sends SMS messages.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

// LogEmailSender records outbound email in the application log instead of
// delivering it. Used when no SMTP provider is configured.
type LogEmailSender struct {
	Logger zerolog.Logger
}

func (s *LogEmailSender) SendEmail(_ context.Context, to, subject, _ string) error {
	s.Logger.Info().Str("to", to).Str("subject", subject).Msg("email (log-only delivery)")
	return nil
}

// LogSMSSender records outbound SMS in the application log instead of
// delivering it.
type LogSMSSender struct {
	Logger zerolog.Logger
}

func (s *LogSMSSender) SendSMS(_ context.Context, to, body string) error {
	s.Logger.Info().Str("to", to).Int("length", len(body)).Msg("sms (log-only delivery)")
	return nil
}

// Template defines a reusable notification template.
type Template struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Subject string  `json:"subject"`
	Body    string  `json:"body"`
	Channel Channel `json:"channel"`
}

// TemplateEngine manages notification templates and renders them with data.
type TemplateEngine struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

// NewTemplateEngine creates a TemplateEngine with the billing templates
// pre-registered.
func NewTemplateEngine() *TemplateEngine {
	e := &TemplateEngine{templates: make(map[string]*Template)}
	e.registerBuiltIn()
	return e
}

func (e *TemplateEngine) registerBuiltIn() {
	builtIn := []Template{
		{
			ID:      "invoice-sent",
			Name:    "Invoice Sent",
			Subject: "Invoice {{invoice_number}} from {{clinic_name}}",
			Body:    "Dear {{patient_name}}, your invoice {{invoice_number}} for {{amount}} is attached. Payment is due by {{due_date}}.",
			Channel: ChannelEmail,
		},
		{
			ID:      "payment-received",
			Name:    "Payment Received",
			Subject: "Payment received for invoice {{invoice_number}}",
			Body:    "Dear {{patient_name}}, we have received your payment of {{amount}} for invoice {{invoice_number}}. Thank you.",
			Channel: ChannelEmail,
		},
		{
			ID:      "invoice-overdue",
			Name:    "Invoice Overdue",
			Subject: "Invoice {{invoice_number}} is overdue",
			Body:    "Dear {{patient_name}}, invoice {{invoice_number}} for {{amount}} was due on {{due_date}} and is now overdue. Please arrange payment.",
			Channel: ChannelEmail,
		},
		{
			ID:      "payment-reminder-sms",
			Name:    "Payment Reminder SMS",
			Subject: "",
			Body:    "{{clinic_name}}: invoice {{invoice_number}} for {{amount}} is due on {{due_date}}.",
			Channel: ChannelSMS,
		},
	}
	for i := range builtIn {
		t := builtIn[i]
		e.templates[t.ID] = &t
	}
}

// RegisterTemplate adds or replaces a template in the engine.
func (e *TemplateEngine) RegisterTemplate(t Template) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.templates[t.ID] = &t
}

// Render looks up a template by ID and performs {{key}} replacement using the
// supplied data map. Keys present in the template but absent from data are
// left as-is.
func (e *TemplateEngine) Render(templateID string, data map[string]string) (subject, body string, err error) {
	e.mu.RLock()
	t, ok := e.templates[templateID]
	e.mu.RUnlock()
	if !ok {
		return "", "", fmt.Errorf("template %q not found", templateID)
	}

	subject = t.Subject
	body = t.Body
	for k, v := range data {
		placeholder := "{{" + k + "}}"
		subject = strings.ReplaceAll(subject, placeholder, v)
		body = strings.ReplaceAll(body, placeholder, v)
	}
	return subject, body, nil
}

func (e *TemplateEngine) channel(templateID string) Channel {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if t, ok := e.templates[templateID]; ok {
		return t.Channel
	}
	return ChannelEmail
}

// Dispatcher sends messages through the configured channels and keeps an
// in-memory record of every attempt.
type Dispatcher struct {
	emailSender EmailSender
	smsSender   SMSSender
	templates   *TemplateEngine
	mu          sync.RWMutex
	messages    map[string]*Message
}

func NewDispatcher(email EmailSender, sms SMSSender, tpl *TemplateEngine) *Dispatcher {
	return &Dispatcher{
		emailSender: email,
		smsSender:   sms,
		templates:   tpl,
		messages:    make(map[string]*Message),
	}
}

// Send dispatches a message through its channel and records the outcome.
func (d *Dispatcher) Send(ctx context.Context, msg *Message) error {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	msg.CreatedAt = time.Now().UTC()

	var sendErr error
	switch msg.Channel {
	case ChannelEmail:
		sendErr = d.emailSender.SendEmail(ctx, msg.Recipient, msg.Subject, msg.Body)
	case ChannelSMS:
		sendErr = d.smsSender.SendSMS(ctx, msg.Recipient, msg.Body)
	default:
		sendErr = fmt.Errorf("unsupported channel: %s", msg.Channel)
	}

	if sendErr != nil {
		msg.Status = "failed"
		msg.Error = sendErr.Error()
	} else {
		msg.Status = "sent"
		sentAt := time.Now().UTC()
		msg.SentAt = &sentAt
	}

	d.mu.Lock()
	d.messages[msg.ID] = msg
	d.mu.Unlock()

	return sendErr
}

// SendFromTemplate renders a template and sends the resulting message.
func (d *Dispatcher) SendFromTemplate(ctx context.Context, templateID, recipient string, data map[string]string) (*Message, error) {
	return d.SendFromTemplateNote(ctx, templateID, recipient, data, "")
}

// SendFromTemplateNote renders a template, appends a free-text note beneath
// the body, and sends the combined message. The note is part of the body
// before dispatch, so the stored message matches what went out.
func (d *Dispatcher) SendFromTemplateNote(ctx context.Context, templateID, recipient string, data map[string]string, note string) (*Message, error) {
	subject, body, err := d.templates.Render(templateID, data)
	if err != nil {
		return nil, fmt.Errorf("render template: %w", err)
	}
	if note != "" {
		body += "\n\n" + note
	}

	msg := &Message{
		Channel:    d.templates.channel(templateID),
		Recipient:  recipient,
		Subject:    subject,
		Body:       body,
		TemplateID: templateID,
		Data:       data,
	}

	if err := d.Send(ctx, msg); err != nil {
		return msg, err
	}
	return msg, nil
}

// Get retrieves a recorded message by ID.
func (d *Dispatcher) Get(id string) (*Message, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	msg, ok := d.messages[id]
	if !ok {
		return nil, fmt.Errorf("message %q not found", id)
	}
	return msg, nil
}

// Retry re-sends a failed message. It is an error to retry a message that is
// not in failed status.
func (d *Dispatcher) Retry(ctx context.Context, id string) error {
	d.mu.RLock()
	msg, ok := d.messages[id]
	d.mu.RUnlock()
	if !ok {
		return fmt.Errorf("message %q not found", id)
	}
	if msg.Status != "failed" {
		return fmt.Errorf("message %q is not in failed status (current: %s)", id, msg.Status)
	}

	var sendErr error
	switch msg.Channel {
	case ChannelEmail:
		sendErr = d.emailSender.SendEmail(ctx, msg.Recipient, msg.Subject, msg.Body)
	case ChannelSMS:
		sendErr = d.smsSender.SendSMS(ctx, msg.Recipient, msg.Body)
	default:
		sendErr = fmt.Errorf("unsupported channel: %s", msg.Channel)
	}

	d.mu.Lock()
	if sendErr != nil {
		msg.Status = "failed"
		msg.Error = sendErr.Error()
	} else {
		msg.Status = "sent"
		sentAt := time.Now().UTC()
		msg.SentAt = &sentAt
		msg.Error = ""
	}
	d.mu.Unlock()

	return sendErr
}

// Stats returns counts of messages grouped by status.
func (d *Dispatcher) Stats() map[string]int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	stats := make(map[string]int)
	for _, m := range d.messages {
		stats[m.Status]++
	}
	return stats
}

// MockEmailSender is a test double for EmailSender.
type MockEmailSender struct {
	mu         sync.Mutex
	calls      []EmailCall
	ShouldFail bool
	FailError  string
}

type EmailCall struct {
	To      string
	Subject string
	Body    string
}

func (m *MockEmailSender) SendEmail(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, EmailCall{To: to, Subject: subject, Body: body})
	if m.ShouldFail {
		return errors.New(m.FailError)
	}
	return nil
}

func (m *MockEmailSender) Calls() []EmailCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]EmailCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// MockSMSSender is a test double for SMSSender.
type MockSMSSender struct {
	mu         sync.Mutex
	calls      []SMSCall
	ShouldFail bool
	FailError  string
}

type SMSCall struct {
	To   string
	Body string
}

func (m *MockSMSSender) SendSMS(_ context.Context, to, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, SMSCall{To: to, Body: body})
	if m.ShouldFail {
		return errors.New(m.FailError)
	}
	return nil
}

func (m *MockSMSSender) Calls() []SMSCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SMSCall, len(m.calls))
	copy(out, m.calls)
	return out
}
