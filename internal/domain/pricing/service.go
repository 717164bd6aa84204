package pricing

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Service exposes catalog management for the three pricing catalogs.
type Service struct {
	fees     DoctorFeeRepository
	labs     LabTestRepository
	imaging  ImagingRepository
	currency string
	log      zerolog.Logger
}

func NewService(fees DoctorFeeRepository, labs LabTestRepository, imaging ImagingRepository, log zerolog.Logger) *Service {
	return &Service{fees: fees, labs: labs, imaging: imaging, currency: "GBP", log: log}
}

// =========== Doctor fees ===========

func (s *Service) CreateDoctorFee(ctx context.Context, fee *DoctorFee) error {
	if strings.TrimSpace(fee.ServiceName) == "" {
		return &FieldError{Field: "service_name", Message: "service name is required"}
	}
	if fee.BasePrice <= 0 {
		return &FieldError{Field: "base_price", Message: "base price must be positive"}
	}
	if strings.TrimSpace(fee.DoctorRole) == "" {
		return &FieldError{Field: "doctor_role", Message: "doctor role is required"}
	}

	if fee.DoctorID != uuid.Nil {
		exists, err := s.fees.ExistsForDoctor(ctx, fee.DoctorRole, fee.DoctorID)
		if err != nil {
			return err
		}
		if exists {
			return ErrDuplicateFee
		}
	}

	s.applyFeeDefaults(fee)
	return s.fees.Create(ctx, fee)
}

// CheckDuplicateFee reports whether a fee already exists for the given
// doctor and role, so the client can warn before submitting.
func (s *Service) CheckDuplicateFee(ctx context.Context, role string, doctorID uuid.UUID) (bool, error) {
	return s.fees.ExistsForDoctor(ctx, role, doctorID)
}

func (s *Service) GetDoctorFee(ctx context.Context, id uuid.UUID) (*DoctorFee, error) {
	return s.fees.GetByID(ctx, id)
}

func (s *Service) UpdateDoctorFee(ctx context.Context, fee *DoctorFee) error {
	if strings.TrimSpace(fee.ServiceName) == "" {
		return &FieldError{Field: "service_name", Message: "service name is required"}
	}
	if fee.BasePrice <= 0 {
		return &FieldError{Field: "base_price", Message: "base price must be positive"}
	}
	return s.fees.Update(ctx, fee)
}

func (s *Service) DeleteDoctorFee(ctx context.Context, id uuid.UUID) error {
	return s.fees.Delete(ctx, id)
}

func (s *Service) ListDoctorFees(ctx context.Context, activeOnly bool) ([]*DoctorFee, error) {
	return s.fees.List(ctx, activeOnly)
}

// BulkCreateDoctorFees creates a batch of fees, skipping rows that are
// missing a service name or have a non-positive price. If every row is
// invalid the batch fails with ErrNoValidRows and nothing is written.
func (s *Service) BulkCreateDoctorFees(ctx context.Context, rows []*DoctorFee) (*BulkResult, error) {
	var valid []*DoctorFee
	for _, f := range rows {
		if strings.TrimSpace(f.ServiceName) == "" || f.BasePrice <= 0 {
			continue
		}
		valid = append(valid, f)
	}
	if len(valid) == 0 {
		return nil, ErrNoValidRows
	}

	for _, f := range valid {
		s.applyFeeDefaults(f)
		if err := s.fees.Create(ctx, f); err != nil {
			return nil, err
		}
	}
	return &BulkResult{Created: len(valid), Skipped: len(rows) - len(valid)}, nil
}

func (s *Service) applyFeeDefaults(fee *DoctorFee) {
	if fee.Currency == "" {
		fee.Currency = s.currency
	}
	fee.IsActive = true
}

// =========== Lab tests ===========

func (s *Service) CreateLabTest(ctx context.Context, test *LabTest) error {
	if strings.TrimSpace(test.TestName) == "" {
		return &FieldError{Field: "test_name", Message: "test name is required"}
	}
	if test.BasePrice <= 0 {
		return &FieldError{Field: "base_price", Message: "base price must be positive"}
	}
	if test.Code != "" {
		codes, err := s.labs.ExistingCodes(ctx)
		if err != nil {
			return err
		}
		if codes[test.Code] {
			return ErrDuplicateCode
		}
	}
	s.applyLabDefaults(test)
	return s.labs.Create(ctx, test)
}

func (s *Service) GetLabTest(ctx context.Context, id uuid.UUID) (*LabTest, error) {
	return s.labs.GetByID(ctx, id)
}

func (s *Service) UpdateLabTest(ctx context.Context, test *LabTest) error {
	if strings.TrimSpace(test.TestName) == "" {
		return &FieldError{Field: "test_name", Message: "test name is required"}
	}
	if test.BasePrice <= 0 {
		return &FieldError{Field: "base_price", Message: "base price must be positive"}
	}
	return s.labs.Update(ctx, test)
}

func (s *Service) DeleteLabTest(ctx context.Context, id uuid.UUID) error {
	return s.labs.Delete(ctx, id)
}

func (s *Service) ListLabTests(ctx context.Context, activeOnly bool) ([]*LabTest, error) {
	return s.labs.List(ctx, activeOnly)
}

// BulkCreateLabTests creates a batch of tests, skipping rows that are
// missing a test name, have a non-positive price, or reuse a taken code.
// If every row is invalid the batch fails with ErrNoValidRows.
func (s *Service) BulkCreateLabTests(ctx context.Context, rows []*LabTest) (*BulkResult, error) {
	codes, err := s.labs.ExistingCodes(ctx)
	if err != nil {
		return nil, err
	}
	var valid []*LabTest
	for _, t := range rows {
		if strings.TrimSpace(t.TestName) == "" || t.BasePrice <= 0 {
			continue
		}
		if t.Code != "" {
			if codes[t.Code] {
				continue
			}
			codes[t.Code] = true
		}
		valid = append(valid, t)
	}
	if len(valid) == 0 {
		return nil, ErrNoValidRows
	}

	for _, t := range valid {
		s.applyLabDefaults(t)
		if err := s.labs.Create(ctx, t); err != nil {
			return nil, err
		}
	}
	return &BulkResult{Created: len(valid), Skipped: len(rows) - len(valid)}, nil
}

func (s *Service) applyLabDefaults(test *LabTest) {
	if test.Currency == "" {
		test.Currency = s.currency
	}
	test.IsActive = true
}

// =========== Imaging ===========

func (s *Service) CreateImagingService(ctx context.Context, svc *ImagingService) error {
	if strings.TrimSpace(svc.ImagingType) == "" {
		return &FieldError{Field: "imaging_type", Message: "imaging type is required"}
	}
	if svc.BasePrice <= 0 {
		return &FieldError{Field: "base_price", Message: "base price must be positive"}
	}
	if svc.Code != "" {
		codes, err := s.imaging.ExistingCodes(ctx)
		if err != nil {
			return err
		}
		if codes[svc.Code] {
			return ErrDuplicateCode
		}
	}
	s.applyImagingDefaults(svc)
	return s.imaging.Create(ctx, svc)
}

func (s *Service) GetImagingService(ctx context.Context, id uuid.UUID) (*ImagingService, error) {
	return s.imaging.GetByID(ctx, id)
}

func (s *Service) UpdateImagingService(ctx context.Context, svc *ImagingService) error {
	if strings.TrimSpace(svc.ImagingType) == "" {
		return &FieldError{Field: "imaging_type", Message: "imaging type is required"}
	}
	if svc.BasePrice <= 0 {
		return &FieldError{Field: "base_price", Message: "base price must be positive"}
	}
	return s.imaging.Update(ctx, svc)
}

func (s *Service) DeleteImagingService(ctx context.Context, id uuid.UUID) error {
	return s.imaging.Delete(ctx, id)
}

func (s *Service) ListImagingServices(ctx context.Context, activeOnly bool) ([]*ImagingService, error) {
	return s.imaging.List(ctx, activeOnly)
}

// BulkCreateImagingServices creates a batch of imaging services with the
// same skip rules as the other bulk operations.
func (s *Service) BulkCreateImagingServices(ctx context.Context, rows []*ImagingService) (*BulkResult, error) {
	codes, err := s.imaging.ExistingCodes(ctx)
	if err != nil {
		return nil, err
	}
	var valid []*ImagingService
	for _, img := range rows {
		if strings.TrimSpace(img.ImagingType) == "" || img.BasePrice <= 0 {
			continue
		}
		if img.Code != "" {
			if codes[img.Code] {
				continue
			}
			codes[img.Code] = true
		}
		valid = append(valid, img)
	}
	if len(valid) == 0 {
		return nil, ErrNoValidRows
	}

	for _, img := range valid {
		s.applyImagingDefaults(img)
		if err := s.imaging.Create(ctx, img); err != nil {
			return nil, err
		}
	}
	return &BulkResult{Created: len(valid), Skipped: len(rows) - len(valid)}, nil
}

func (s *Service) applyImagingDefaults(svc *ImagingService) {
	if svc.Currency == "" {
		svc.Currency = s.currency
	}
	svc.IsActive = true
}

// =========== Seeding ===========

// SeedDefaults inserts every canonical catalog entry whose code is not
// already present. Existing rows are never modified, so running the seed
// again is a no-op for anything already in place.
func (s *Service) SeedDefaults(ctx context.Context) (*SeedResult, error) {
	result := &SeedResult{}

	if err := s.seedLabTests(ctx, result); err != nil {
		return nil, err
	}
	if err := s.seedDoctorFees(ctx, result); err != nil {
		return nil, err
	}
	if err := s.seedImaging(ctx, result); err != nil {
		return nil, err
	}

	s.log.Info().
		Int("inserted", result.Inserted).
		Int("already_existed", result.AlreadyExisted).
		Msg("pricing catalog seeded")
	return result, nil
}

func (s *Service) seedLabTests(ctx context.Context, result *SeedResult) error {
	codes, err := s.labs.ExistingCodes(ctx)
	if err != nil {
		return err
	}
	for _, def := range DefaultLabTests {
		if codes[def.Code] {
			result.AlreadyExisted++
			continue
		}
		test := def
		s.applyLabDefaults(&test)
		if err := s.labs.Create(ctx, &test); err != nil {
			return err
		}
		result.Inserted++
	}
	return nil
}

func (s *Service) seedDoctorFees(ctx context.Context, result *SeedResult) error {
	codes, err := s.fees.ExistingCodes(ctx)
	if err != nil {
		return err
	}
	for _, def := range DefaultDoctorFees {
		if codes[def.Code] {
			result.AlreadyExisted++
			continue
		}
		fee := def
		s.applyFeeDefaults(&fee)
		if err := s.fees.Create(ctx, &fee); err != nil {
			return err
		}
		result.Inserted++
	}
	return nil
}

func (s *Service) seedImaging(ctx context.Context, result *SeedResult) error {
	codes, err := s.imaging.ExistingCodes(ctx)
	if err != nil {
		return err
	}
	for _, def := range DefaultImagingServices {
		if codes[def.Code] {
			result.AlreadyExisted++
			continue
		}
		svc := def
		s.applyImagingDefaults(&svc)
		if err := s.imaging.Create(ctx, &svc); err != nil {
			return err
		}
		result.Inserted++
	}
	return nil
}
