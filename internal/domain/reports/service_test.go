package reports

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cura/cura/internal/domain/billing"
	"github.com/cura/cura/internal/domain/directory"
	"github.com/cura/cura/internal/domain/pricing"
)

type mockRepo struct {
	invoices    []*billing.Invoice
	markedAsOf  time.Time
	overdueHits int
}

func (m *mockRepo) ListInvoicesByServiceDate(_ context.Context, from, to time.Time) ([]*billing.Invoice, error) {
	var out []*billing.Invoice
	for _, inv := range m.invoices {
		if !inv.DateOfService.Before(from) && inv.DateOfService.Before(to) {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (m *mockRepo) MarkOverdue(_ context.Context, asOf time.Time) (int, error) {
	m.markedAsOf = asOf
	return m.overdueHits, nil
}

type mockFeeRepo struct{ fees []*pricing.DoctorFee }

func (m *mockFeeRepo) Create(context.Context, *pricing.DoctorFee) error { return nil }
func (m *mockFeeRepo) GetByID(context.Context, uuid.UUID) (*pricing.DoctorFee, error) {
	return nil, pricing.ErrNotFound
}
func (m *mockFeeRepo) Update(context.Context, *pricing.DoctorFee) error { return nil }
func (m *mockFeeRepo) Delete(context.Context, uuid.UUID) error          { return nil }
func (m *mockFeeRepo) List(context.Context, bool) ([]*pricing.DoctorFee, error) {
	return m.fees, nil
}
func (m *mockFeeRepo) ExistsForDoctor(context.Context, string, uuid.UUID) (bool, error) {
	return false, nil
}
func (m *mockFeeRepo) ExistingCodes(context.Context) (map[string]bool, error) {
	return map[string]bool{}, nil
}

type mockUserRepo struct{ users []*directory.User }

func (m *mockUserRepo) Create(context.Context, *directory.User) error { return nil }
func (m *mockUserRepo) GetByID(context.Context, uuid.UUID) (*directory.User, error) {
	return nil, directory.ErrUserNotFound
}
func (m *mockUserRepo) List(context.Context) ([]*directory.User, error) { return m.users, nil }

func newReportService(repo *mockRepo) *Service {
	svc := NewService(repo, &mockFeeRepo{}, &mockUserRepo{},
		Config{ClinicName: "Harley Street Clinic"}, zerolog.Nop())
	svc.now = func() time.Time { return time.Date(2026, 3, 18, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestRevenueBreakdown_DefaultsToThisMonth(t *testing.T) {
	repo := &mockRepo{invoices: []*billing.Invoice{
		{ServiceType: strPtr("General Consultation"), DateOfService: inMarch(5), TotalAmount: 100, PaidAmount: 100},
		{ServiceType: strPtr("General Consultation"), DateOfService: time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC), TotalAmount: 500},
	}}
	svc := newReportService(repo)

	rows, f, err := svc.RevenueBreakdown(context.Background(), Request{})
	if err != nil {
		t.Fatalf("breakdown: %v", err)
	}
	if f.From != time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) {
		t.Errorf("default window start = %s, want 1 March", f.From)
	}
	total := rows[len(rows)-1]
	if total.Procedures != 1 || total.TotalAmount != 100 {
		t.Errorf("February invoice leaked into this-month window: %+v", total)
	}
}

func TestRevenueCSV(t *testing.T) {
	repo := &mockRepo{invoices: []*billing.Invoice{
		{ServiceType: strPtr("General Consultation"), DateOfService: inMarch(5), TotalAmount: 100, PaidAmount: 100},
	}}
	svc := newReportService(repo)

	data, name, err := svc.RevenueCSV(context.Background(), Request{Range: RangeThisMonth})
	if err != nil {
		t.Fatalf("csv: %v", err)
	}
	if name != "revenue-breakdown-2026-03-18.csv" {
		t.Errorf("file name = %s", name)
	}
	body := string(data)
	if !strings.Contains(body, "General Consultation") || !strings.Contains(body, "Total") {
		t.Errorf("csv missing rows: %s", body)
	}
	if !strings.HasPrefix(body, "service,") {
		t.Errorf("csv missing header: %s", body)
	}
}

func TestRevenuePDF(t *testing.T) {
	repo := &mockRepo{invoices: []*billing.Invoice{
		{ServiceType: strPtr("General Consultation"), DateOfService: inMarch(5), TotalAmount: 100, PaidAmount: 50},
	}}
	svc := newReportService(repo)

	data, name, err := svc.RevenuePDF(context.Background(), Request{Range: RangeThisMonth, Role: "doctor"})
	if err != nil {
		t.Fatalf("pdf: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Error("output is not a PDF document")
	}
	if name != "revenue-breakdown-2026-03-18.pdf" {
		t.Errorf("file name = %s", name)
	}
}

func TestRevenueBreakdown_UnknownRange(t *testing.T) {
	svc := newReportService(&mockRepo{})
	if _, _, err := svc.RevenueBreakdown(context.Background(), Request{Range: "fortnight"}); err == nil {
		t.Error("expected error for unknown range")
	}
}

type stubBranding struct{ name string }

func (s *stubBranding) GetHeader(context.Context) (*directory.ClinicHeader, error) {
	return &directory.ClinicHeader{ClinicName: s.name}, nil
}

func (s *stubBranding) GetFooter(context.Context) (*directory.ClinicFooter, error) {
	return &directory.ClinicFooter{}, nil
}

func TestReport_UsesStoredClinicName(t *testing.T) {
	svc := newReportService(&mockRepo{}).WithBranding(&stubBranding{name: "Kings Cross Medical Centre"})

	rep := svc.report(context.Background(), nil, Filter{}, Request{})
	if rep.ClinicName != "Kings Cross Medical Centre" {
		t.Errorf("clinic name = %q, want the stored header over the configured one", rep.ClinicName)
	}
}

func TestReport_FallsBackToConfiguredName(t *testing.T) {
	svc := newReportService(&mockRepo{})

	rep := svc.report(context.Background(), nil, Filter{}, Request{})
	if rep.ClinicName != "Harley Street Clinic" {
		t.Errorf("clinic name = %q, want the configured fallback", rep.ClinicName)
	}
}

func TestMarkOverdueInvoices(t *testing.T) {
	repo := &mockRepo{overdueHits: 3}
	svc := newReportService(repo)

	n, err := svc.MarkOverdueInvoices(context.Background())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if n != 3 {
		t.Errorf("marked %d, want 3", n)
	}
	if repo.markedAsOf.IsZero() {
		t.Error("sweep cutoff not passed to repository")
	}
}
