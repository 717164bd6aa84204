package reports

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cura/cura/internal/domain/directory"
	"github.com/cura/cura/internal/domain/pricing"
	"github.com/cura/cura/internal/platform/pdf"
)

// Config carries clinic-level settings stamped onto rendered reports.
type Config struct {
	ClinicName string
	Currency   string
}

// ErrInvalidRequest marks failures caused by the caller's parameters, as
// opposed to repository errors.
var ErrInvalidRequest = errors.New("invalid report request")

type Service struct {
	repo     Repository
	fees     pricing.DoctorFeeRepository
	users    directory.UserRepository
	cfg      Config
	log      zerolog.Logger
	now      func() time.Time
	branding directory.BrandingReader
}

func NewService(repo Repository, fees pricing.DoctorFeeRepository, users directory.UserRepository,
	cfg Config, log zerolog.Logger) *Service {
	if cfg.Currency == "" {
		cfg.Currency = "GBP"
	}
	return &Service{repo: repo, fees: fees, users: users, cfg: cfg, log: log, now: time.Now}
}

// WithBranding stamps rendered reports with the tenant's stored clinic
// header instead of the configured clinic name.
func (s *Service) WithBranding(b directory.BrandingReader) *Service {
	s.branding = b
	return s
}

// Request selects the window and filters for a breakdown. Either Range or
// both From and To must be set; explicit bounds win.
type Request struct {
	Range         string
	From          time.Time
	To            time.Time
	InsuranceType string
	Role          string
	UserID        string
}

func (s *Service) resolveFilter(req Request) (Filter, error) {
	f := Filter{InsuranceType: req.InsuranceType, Role: req.Role}
	if !req.From.IsZero() && !req.To.IsZero() {
		f.From, f.To = req.From, req.To
	} else {
		name := req.Range
		if name == "" {
			name = RangeThisMonth
		}
		from, to, err := ResolveRange(name, s.now())
		if err != nil {
			return Filter{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		f.From, f.To = from, to
	}
	if req.UserID != "" {
		id, err := parseUserID(req.UserID)
		if err != nil {
			return Filter{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		f.UserID = id
	}
	return f, nil
}

// RevenueBreakdown aggregates the ledger into per-service rows plus the
// Total row.
func (s *Service) RevenueBreakdown(ctx context.Context, req Request) ([]BreakdownRow, Filter, error) {
	f, err := s.resolveFilter(req)
	if err != nil {
		return nil, Filter{}, err
	}

	invoices, err := s.repo.ListInvoicesByServiceDate(ctx, f.From, f.To)
	if err != nil {
		return nil, Filter{}, err
	}
	fees, err := s.fees.List(ctx, false)
	if err != nil {
		return nil, Filter{}, err
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, Filter{}, err
	}

	return Breakdown(invoices, fees, users, f), f, nil
}

// RevenueCSV renders the breakdown as CSV and names the download file.
func (s *Service) RevenueCSV(ctx context.Context, req Request) ([]byte, string, error) {
	rows, f, err := s.RevenueBreakdown(ctx, req)
	if err != nil {
		return nil, "", err
	}

	var buf bytes.Buffer
	if err := pdf.WriteRevenueCSV(&buf, s.report(ctx, rows, f, req)); err != nil {
		return nil, "", err
	}
	name := fmt.Sprintf("revenue-breakdown-%s.csv", s.now().Format("2006-01-02"))
	return buf.Bytes(), name, nil
}

// RevenuePDF renders the breakdown as a PDF and names the download file.
func (s *Service) RevenuePDF(ctx context.Context, req Request) ([]byte, string, error) {
	rows, f, err := s.RevenueBreakdown(ctx, req)
	if err != nil {
		return nil, "", err
	}

	out, err := pdf.RenderRevenueReport(s.report(ctx, rows, f, req))
	if err != nil {
		return nil, "", err
	}
	name := fmt.Sprintf("revenue-breakdown-%s.pdf", s.now().Format("2006-01-02"))
	return out, name, nil
}

func (s *Service) report(ctx context.Context, rows []BreakdownRow, f Filter, req Request) *pdf.RevenueReport {
	clinicName := s.cfg.ClinicName
	if s.branding != nil {
		if h, err := s.branding.GetHeader(ctx); err == nil && h.ClinicName != "" {
			clinicName = h.ClinicName
		}
	}
	rep := &pdf.RevenueReport{
		ClinicName:    clinicName,
		From:          f.From,
		To:            f.To,
		Currency:      s.cfg.Currency,
		FilterSummary: filterSummary(req),
	}
	for _, r := range rows {
		rep.Rows = append(rep.Rows, pdf.RevenueRow{
			Service:        r.Service,
			InvoiceCount:   r.Procedures,
			Insurance:      r.Insurance,
			SelfPay:        r.SelfPay,
			TotalAmount:    r.TotalAmount,
			PaidAmount:     r.PaidAmount,
			OutstandingAmt: r.TotalAmount - r.PaidAmount,
			CollectionRate: r.CollectionRate,
		})
	}
	return rep
}

func parseUserID(raw string) (*uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %s", raw)
	}
	return &id, nil
}

func filterSummary(req Request) string {
	var parts []string
	if req.Range != "" {
		parts = append(parts, req.Range)
	}
	if req.InsuranceType != "" {
		parts = append(parts, "type: "+req.InsuranceType)
	}
	if req.Role != "" {
		parts = append(parts, "role: "+req.Role)
	}
	if req.UserID != "" {
		parts = append(parts, "user: "+req.UserID)
	}
	return strings.Join(parts, ", ")
}

// MarkOverdueInvoices runs the overdue sweep as of now.
func (s *Service) MarkOverdueInvoices(ctx context.Context) (int, error) {
	n, err := s.repo.MarkOverdue(ctx, s.now().UTC())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Info().Int("count", n).Msg("invoices marked overdue")
	}
	return n, nil
}
