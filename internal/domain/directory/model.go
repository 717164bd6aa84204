// Package directory holds the practice's reference data: patients, staff
// users and the clinic branding used on rendered documents.
package directory

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrPatientNotFound = errors.New("patient not found")
	ErrUserNotFound    = errors.New("user not found")
)

// Roles is the fixed set of staff roles the API recognises.
var Roles = []string{"admin", "doctor", "nurse", "accountant", "receptionist"}

func ValidRole(role string) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

type Patient struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	FirstName   string     `db:"first_name" json:"first_name"`
	LastName    string     `db:"last_name" json:"last_name"`
	Email       *string    `db:"email" json:"email,omitempty"`
	Phone       *string    `db:"phone" json:"phone,omitempty"`
	NHSNumber   *string    `db:"nhs_number" json:"nhs_number,omitempty"`
	DateOfBirth *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

func (p *Patient) FullName() string {
	return p.FirstName + " " + p.LastName
}

type User struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Role      string    `db:"role" json:"role"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ClinicHeader is the branding band printed at the top of invoices and
// reports.
type ClinicHeader struct {
	ClinicName string `db:"clinic_name" json:"clinic_name"`
	Address    string `db:"address" json:"address"`
	Phone      string `db:"phone" json:"phone"`
	Email      string `db:"email" json:"email"`
}

// ClinicFooter is the free-text band printed at the bottom of rendered
// documents.
type ClinicFooter struct {
	Text string `db:"text" json:"text"`
}
