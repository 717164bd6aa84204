package pricing

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type mockFeeRepo struct {
	items map[uuid.UUID]*DoctorFee
}

func newMockFeeRepo() *mockFeeRepo { return &mockFeeRepo{items: map[uuid.UUID]*DoctorFee{}} }

func (m *mockFeeRepo) Create(_ context.Context, fee *DoctorFee) error {
	fee.ID = uuid.New()
	cp := *fee
	m.items[fee.ID] = &cp
	return nil
}

func (m *mockFeeRepo) GetByID(_ context.Context, id uuid.UUID) (*DoctorFee, error) {
	f, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *f
	return &cp, nil
}

func (m *mockFeeRepo) Update(_ context.Context, fee *DoctorFee) error {
	if _, ok := m.items[fee.ID]; !ok {
		return ErrNotFound
	}
	cp := *fee
	m.items[fee.ID] = &cp
	return nil
}

func (m *mockFeeRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.items[id]; !ok {
		return ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *mockFeeRepo) List(_ context.Context, activeOnly bool) ([]*DoctorFee, error) {
	var out []*DoctorFee
	for _, f := range m.items {
		if activeOnly && !f.IsActive {
			continue
		}
		cp := *f
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockFeeRepo) ExistsForDoctor(_ context.Context, role string, doctorID uuid.UUID) (bool, error) {
	for _, f := range m.items {
		if f.DoctorRole == role && f.DoctorID == doctorID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockFeeRepo) ExistingCodes(_ context.Context) (map[string]bool, error) {
	codes := map[string]bool{}
	for _, f := range m.items {
		codes[f.Code] = true
	}
	return codes, nil
}

type mockLabRepo struct {
	items map[uuid.UUID]*LabTest
}

func newMockLabRepo() *mockLabRepo { return &mockLabRepo{items: map[uuid.UUID]*LabTest{}} }

func (m *mockLabRepo) Create(_ context.Context, test *LabTest) error {
	test.ID = uuid.New()
	cp := *test
	m.items[test.ID] = &cp
	return nil
}

func (m *mockLabRepo) GetByID(_ context.Context, id uuid.UUID) (*LabTest, error) {
	t, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *mockLabRepo) Update(_ context.Context, test *LabTest) error {
	if _, ok := m.items[test.ID]; !ok {
		return ErrNotFound
	}
	cp := *test
	m.items[test.ID] = &cp
	return nil
}

func (m *mockLabRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.items[id]; !ok {
		return ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *mockLabRepo) List(_ context.Context, activeOnly bool) ([]*LabTest, error) {
	var out []*LabTest
	for _, t := range m.items {
		if activeOnly && !t.IsActive {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockLabRepo) ExistingCodes(_ context.Context) (map[string]bool, error) {
	codes := map[string]bool{}
	for _, t := range m.items {
		codes[t.Code] = true
	}
	return codes, nil
}

type mockImagingRepo struct {
	items map[uuid.UUID]*ImagingService
}

func newMockImagingRepo() *mockImagingRepo {
	return &mockImagingRepo{items: map[uuid.UUID]*ImagingService{}}
}

func (m *mockImagingRepo) Create(_ context.Context, svc *ImagingService) error {
	svc.ID = uuid.New()
	cp := *svc
	m.items[svc.ID] = &cp
	return nil
}

func (m *mockImagingRepo) GetByID(_ context.Context, id uuid.UUID) (*ImagingService, error) {
	s, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *mockImagingRepo) Update(_ context.Context, svc *ImagingService) error {
	if _, ok := m.items[svc.ID]; !ok {
		return ErrNotFound
	}
	cp := *svc
	m.items[svc.ID] = &cp
	return nil
}

func (m *mockImagingRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.items[id]; !ok {
		return ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *mockImagingRepo) List(_ context.Context, activeOnly bool) ([]*ImagingService, error) {
	var out []*ImagingService
	for _, s := range m.items {
		if activeOnly && !s.IsActive {
			continue
		}
		cp := *s
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockImagingRepo) ExistingCodes(_ context.Context) (map[string]bool, error) {
	codes := map[string]bool{}
	for _, s := range m.items {
		codes[s.Code] = true
	}
	return codes, nil
}

func newTestService() (*Service, *mockFeeRepo, *mockLabRepo, *mockImagingRepo) {
	fees := newMockFeeRepo()
	labs := newMockLabRepo()
	imaging := newMockImagingRepo()
	return NewService(fees, labs, imaging, zerolog.Nop()), fees, labs, imaging
}

func TestCreateDoctorFee_MissingNameRejected(t *testing.T) {
	svc, fees, _, _ := newTestService()

	err := svc.CreateDoctorFee(context.Background(), &DoctorFee{
		DoctorID:   uuid.New(),
		DoctorRole: "General Practitioner",
		BasePrice:  50,
	})

	var ferr *FieldError
	if !errors.As(err, &ferr) {
		t.Fatalf("expected FieldError, got %v", err)
	}
	if ferr.Field != "service_name" {
		t.Errorf("expected service_name field error, got %s", ferr.Field)
	}
	if len(fees.items) != 0 {
		t.Error("invalid fee should not be persisted")
	}
}

func TestCreateDoctorFee_NonPositivePriceRejected(t *testing.T) {
	svc, _, _, _ := newTestService()

	err := svc.CreateDoctorFee(context.Background(), &DoctorFee{
		DoctorRole:  "Nurse",
		ServiceName: "Nurse Appointment",
		BasePrice:   0,
	})

	var ferr *FieldError
	if !errors.As(err, &ferr) || ferr.Field != "base_price" {
		t.Fatalf("expected base_price field error, got %v", err)
	}
}

func TestCreateDoctorFee_DuplicateDoctorRolePair(t *testing.T) {
	svc, _, _, _ := newTestService()
	doctorID := uuid.New()

	first := &DoctorFee{
		DoctorID:    doctorID,
		DoctorName:  "Dr Adaeze Okafor",
		DoctorRole:  "Consultant",
		ServiceName: "Specialist Consultation",
		BasePrice:   150,
	}
	if err := svc.CreateDoctorFee(context.Background(), first); err != nil {
		t.Fatalf("first create: %v", err)
	}

	second := &DoctorFee{
		DoctorID:    doctorID,
		DoctorRole:  "Consultant",
		ServiceName: "Specialist Follow-up",
		BasePrice:   100,
	}
	if err := svc.CreateDoctorFee(context.Background(), second); !errors.Is(err, ErrDuplicateFee) {
		t.Errorf("expected ErrDuplicateFee, got %v", err)
	}

	dup, err := svc.CheckDuplicateFee(context.Background(), "Consultant", doctorID)
	if err != nil || !dup {
		t.Errorf("CheckDuplicateFee = %v, %v; want true, nil", dup, err)
	}
}

func TestCreateDoctorFee_DefaultsApplied(t *testing.T) {
	svc, fees, _, _ := newTestService()

	fee := &DoctorFee{
		DoctorID:    uuid.New(),
		DoctorRole:  "General Practitioner",
		ServiceName: "General Consultation",
		BasePrice:   50,
	}
	if err := svc.CreateDoctorFee(context.Background(), fee); err != nil {
		t.Fatalf("create: %v", err)
	}

	stored := fees.items[fee.ID]
	if stored.Currency != "GBP" {
		t.Errorf("expected GBP default, got %s", stored.Currency)
	}
	if !stored.IsActive {
		t.Error("new fee should be active")
	}
}

func TestBulkCreateDoctorFees_SkipsInvalidRows(t *testing.T) {
	svc, fees, _, _ := newTestService()

	rows := []*DoctorFee{
		{DoctorRole: "Nurse", ServiceName: "Nurse Appointment", BasePrice: 25},
		{DoctorRole: "Nurse", ServiceName: "", BasePrice: 30},                 // no name
		{DoctorRole: "Nurse", ServiceName: "Vaccination Visit", BasePrice: 0}, // no price
		{DoctorRole: "Physiotherapist", ServiceName: "Physiotherapy Session", BasePrice: 60},
	}
	result, err := svc.BulkCreateDoctorFees(context.Background(), rows)
	if err != nil {
		t.Fatalf("bulk create: %v", err)
	}
	if result.Created != 2 || result.Skipped != 2 {
		t.Errorf("result = %+v, want Created:2 Skipped:2", result)
	}
	if len(fees.items) != 2 {
		t.Errorf("expected 2 persisted fees, got %d", len(fees.items))
	}
}

func TestBulkCreateDoctorFees_AllInvalid(t *testing.T) {
	svc, fees, _, _ := newTestService()

	rows := []*DoctorFee{
		{DoctorRole: "Nurse", BasePrice: 25},
		{DoctorRole: "Nurse", ServiceName: "Vaccination Visit", BasePrice: -1},
	}
	if _, err := svc.BulkCreateDoctorFees(context.Background(), rows); !errors.Is(err, ErrNoValidRows) {
		t.Fatalf("expected ErrNoValidRows, got %v", err)
	}
	if len(fees.items) != 0 {
		t.Error("nothing should be persisted when every row is invalid")
	}
}

func TestCreateLabTest_DuplicateCode(t *testing.T) {
	svc, _, _, _ := newTestService()

	first := &LabTest{TestName: "Complete Blood Count (CBC)", Code: "CBC001", Category: "Hematology", BasePrice: 25}
	if err := svc.CreateLabTest(context.Background(), first); err != nil {
		t.Fatalf("first create: %v", err)
	}

	second := &LabTest{TestName: "CBC repeat", Code: "CBC001", Category: "Hematology", BasePrice: 20}
	if err := svc.CreateLabTest(context.Background(), second); !errors.Is(err, ErrDuplicateCode) {
		t.Errorf("expected ErrDuplicateCode, got %v", err)
	}
}

func TestBulkCreateLabTests_SkipsTakenCodes(t *testing.T) {
	svc, _, labs, _ := newTestService()

	existing := &LabTest{TestName: "Complete Blood Count (CBC)", Code: "CBC001", Category: "Hematology", BasePrice: 25}
	if err := svc.CreateLabTest(context.Background(), existing); err != nil {
		t.Fatalf("pre-existing test: %v", err)
	}

	rows := []*LabTest{
		{TestName: "Lipid Profile", Code: "LIP001", Category: "Biochemistry", BasePrice: 30},
		{TestName: "CBC repeat", Code: "CBC001", Category: "Hematology", BasePrice: 20}, // code taken
		{TestName: "", Code: "TFT001", BasePrice: 28},                                   // no name
		{TestName: "Thyroid Function Test", Code: "TFT001", Category: "Endocrinology", BasePrice: 28},
	}
	result, err := svc.BulkCreateLabTests(context.Background(), rows)
	if err != nil {
		t.Fatalf("bulk create: %v", err)
	}
	if result.Created != 2 || result.Skipped != 2 {
		t.Errorf("result = %+v, want Created:2 Skipped:2", result)
	}
	if len(labs.items) != 3 {
		t.Errorf("lab catalog has %d rows, want 3", len(labs.items))
	}
}

func TestBulkCreateLabTests_AllInvalid(t *testing.T) {
	svc, _, labs, _ := newTestService()

	rows := []*LabTest{
		{TestName: "", BasePrice: 10},
		{TestName: "Urinalysis", BasePrice: 0},
	}
	if _, err := svc.BulkCreateLabTests(context.Background(), rows); !errors.Is(err, ErrNoValidRows) {
		t.Fatalf("expected ErrNoValidRows, got %v", err)
	}
	if len(labs.items) != 0 {
		t.Error("nothing should be persisted when every row is invalid")
	}
}

func TestBulkCreateImagingServices_DeduplicatesWithinBatch(t *testing.T) {
	svc, _, _, imaging := newTestService()

	rows := []*ImagingService{
		{ImagingType: "Chest X-Ray", Code: "XR001", BasePrice: 80},
		{ImagingType: "Chest X-Ray (repeat)", Code: "XR001", BasePrice: 75}, // same code twice in one batch
		{ImagingType: "Abdominal Ultrasound", Code: "US001", BasePrice: 120},
	}
	result, err := svc.BulkCreateImagingServices(context.Background(), rows)
	if err != nil {
		t.Fatalf("bulk create: %v", err)
	}
	if result.Created != 2 || result.Skipped != 1 {
		t.Errorf("result = %+v, want Created:2 Skipped:1", result)
	}
	if len(imaging.items) != 2 {
		t.Errorf("expected 2 persisted services, got %d", len(imaging.items))
	}
	for _, s := range imaging.items {
		if s.Currency != "GBP" || !s.IsActive {
			t.Errorf("defaults not applied: %+v", s)
		}
	}
}

func TestSeedDefaults_SkipsExistingCodes(t *testing.T) {
	svc, _, labs, _ := newTestService()

	// CBC001 is already in the catalog; the seed must leave it alone.
	existing := &LabTest{TestName: "Complete Blood Count (CBC)", Code: "CBC001", Category: "Hematology", BasePrice: 25}
	if err := svc.CreateLabTest(context.Background(), existing); err != nil {
		t.Fatalf("pre-seed create: %v", err)
	}

	result, err := svc.SeedDefaults(context.Background())
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	total := len(DefaultLabTests) + len(DefaultDoctorFees) + len(DefaultImagingServices)
	if result.AlreadyExisted != 1 {
		t.Errorf("AlreadyExisted = %d, want 1", result.AlreadyExisted)
	}
	if result.Inserted != total-1 {
		t.Errorf("Inserted = %d, want %d", result.Inserted, total-1)
	}
	if len(labs.items) != len(DefaultLabTests) {
		t.Errorf("lab catalog has %d rows, want %d", len(labs.items), len(DefaultLabTests))
	}
}

func TestSeedDefaults_Idempotent(t *testing.T) {
	svc, _, _, _ := newTestService()

	first, err := svc.SeedDefaults(context.Background())
	if err != nil {
		t.Fatalf("first seed: %v", err)
	}
	total := len(DefaultLabTests) + len(DefaultDoctorFees) + len(DefaultImagingServices)
	if first.Inserted != total || first.AlreadyExisted != 0 {
		t.Fatalf("first seed = %+v, want Inserted:%d AlreadyExisted:0", first, total)
	}

	second, err := svc.SeedDefaults(context.Background())
	if err != nil {
		t.Fatalf("second seed: %v", err)
	}
	if second.Inserted != 0 || second.AlreadyExisted != total {
		t.Errorf("second seed = %+v, want Inserted:0 AlreadyExisted:%d", second, total)
	}
}

func TestSeedDefaults_LabTestCount(t *testing.T) {
	if len(DefaultLabTests) != 35 {
		t.Fatalf("canonical lab test list has %d entries, want 35", len(DefaultLabTests))
	}
}

func TestListDoctorFees_ActiveFilter(t *testing.T) {
	svc, fees, _, _ := newTestService()

	active := &DoctorFee{DoctorRole: "Nurse", ServiceName: "Nurse Appointment", BasePrice: 25}
	if err := svc.CreateDoctorFee(context.Background(), active); err != nil {
		t.Fatalf("create: %v", err)
	}
	retired := &DoctorFee{DoctorRole: "Nurse", ServiceName: "Old Service", BasePrice: 10, IsActive: false}
	retired.ID = uuid.New()
	fees.items[retired.ID] = retired

	activeList, err := svc.ListDoctorFees(context.Background(), true)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(activeList) != 1 {
		t.Errorf("active list has %d entries, want 1", len(activeList))
	}

	all, err := svc.ListDoctorFees(context.Background(), false)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("full list has %d entries, want 2", len(all))
	}
}

func TestUpdateDoctorFee_NotFound(t *testing.T) {
	svc, _, _, _ := newTestService()

	fee := &DoctorFee{ID: uuid.New(), DoctorRole: "Nurse", ServiceName: "Nurse Appointment", BasePrice: 25}
	if err := svc.UpdateDoctorFee(context.Background(), fee); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
