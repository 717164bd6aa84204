// Package pricing manages the three parallel service catalogs: doctor fees,
// lab tests and imaging services.
package pricing

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound      = errors.New("pricing entry not found")
	ErrDuplicateFee  = errors.New("a fee for this doctor and role already exists")
	ErrDuplicateCode = errors.New("an entry with this code already exists")
	ErrNoValidRows   = errors.New("no valid rows to create")
)

// FieldError is a validation failure on a single request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *FieldError) Error() string { return e.Field + ": " + e.Message }

// DoctorFee is a consultation fee for one doctor in one role. The
// (doctor_role, doctor_id) pair is unique.
type DoctorFee struct {
	ID          uuid.UUID `db:"id" json:"id"`
	DoctorID    uuid.UUID `db:"doctor_id" json:"doctor_id"`
	DoctorName  string    `db:"doctor_name" json:"doctor_name"`
	DoctorRole  string    `db:"doctor_role" json:"doctor_role"`
	ServiceName string    `db:"service_name" json:"service_name"`
	Code        string    `db:"code" json:"code"`
	BasePrice   float64   `db:"base_price" json:"base_price"`
	Currency    string    `db:"currency" json:"currency"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	Version     int       `db:"version" json:"version"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// LabTest is a laboratory test catalog row. Codes are unique within the
// catalog.
type LabTest struct {
	ID        uuid.UUID `db:"id" json:"id"`
	TestName  string    `db:"test_name" json:"test_name"`
	Code      string    `db:"code" json:"code"`
	Category  string    `db:"category" json:"category"`
	BasePrice float64   `db:"base_price" json:"base_price"`
	Currency  string    `db:"currency" json:"currency"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	Version   int       `db:"version" json:"version"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ImagingService is an imaging catalog row. Codes are unique within the
// catalog.
type ImagingService struct {
	ID          uuid.UUID `db:"id" json:"id"`
	ImagingType string    `db:"imaging_type" json:"imaging_type"`
	Code        string    `db:"code" json:"code"`
	Modality    string    `db:"modality" json:"modality"`
	BodyPart    string    `db:"body_part" json:"body_part"`
	BasePrice   float64   `db:"base_price" json:"base_price"`
	Currency    string    `db:"currency" json:"currency"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	Version     int       `db:"version" json:"version"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// SeedResult reports the outcome of an idempotent catalog seed.
type SeedResult struct {
	Inserted       int `json:"inserted"`
	AlreadyExisted int `json:"already_existed"`
}

// BulkResult reports the outcome of a bulk create, where invalid rows are
// skipped rather than failing the batch.
type BulkResult struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}
