package pricing

import (
	"context"

	"github.com/google/uuid"
)

// DoctorFeeRepository persists the consultation fee catalog.
type DoctorFeeRepository interface {
	Create(ctx context.Context, fee *DoctorFee) error
	GetByID(ctx context.Context, id uuid.UUID) (*DoctorFee, error)
	Update(ctx context.Context, fee *DoctorFee) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, activeOnly bool) ([]*DoctorFee, error)
	// ExistsForDoctor reports whether a fee already exists for the
	// (doctor_role, doctor_id) pair.
	ExistsForDoctor(ctx context.Context, role string, doctorID uuid.UUID) (bool, error)
	ExistingCodes(ctx context.Context) (map[string]bool, error)
}

// LabTestRepository persists the lab test catalog.
type LabTestRepository interface {
	Create(ctx context.Context, test *LabTest) error
	GetByID(ctx context.Context, id uuid.UUID) (*LabTest, error)
	Update(ctx context.Context, test *LabTest) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, activeOnly bool) ([]*LabTest, error)
	ExistingCodes(ctx context.Context) (map[string]bool, error)
}

// ImagingRepository persists the imaging service catalog.
type ImagingRepository interface {
	Create(ctx context.Context, svc *ImagingService) error
	GetByID(ctx context.Context, id uuid.UUID) (*ImagingService, error)
	Update(ctx context.Context, svc *ImagingService) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, activeOnly bool) ([]*ImagingService, error)
	ExistingCodes(ctx context.Context) (map[string]bool, error)
}
