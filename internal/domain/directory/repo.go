package directory

import (
	"context"

	"github.com/google/uuid"
)

type PatientRepository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	List(ctx context.Context, search string, limit, offset int) ([]*Patient, int, error)
}

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	List(ctx context.Context) ([]*User, error)
}

// BrandingReader is the read-only view of the clinic letterhead that
// document rendering consumes.
type BrandingReader interface {
	GetHeader(ctx context.Context) (*ClinicHeader, error)
	GetFooter(ctx context.Context) (*ClinicFooter, error)
}

// SettingsRepository stores the clinic's singleton branding rows.
type SettingsRepository interface {
	BrandingReader
	PutHeader(ctx context.Context, h *ClinicHeader) error
	PutFooter(ctx context.Context, f *ClinicFooter) error
}
