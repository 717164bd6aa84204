package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cura/cura/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

func resolveConn(ctx context.Context, pool *pgxpool.Pool) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return pool
}

// =========== Patients ===========

type patientRepoPG struct{ pool *pgxpool.Pool }

func NewPatientRepoPG(pool *pgxpool.Pool) PatientRepository { return &patientRepoPG{pool: pool} }

const patientCols = `id, first_name, last_name, email, phone, nhs_number, date_of_birth, created_at, updated_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.FirstName, &p.LastName, &p.Email, &p.Phone, &p.NHSNumber,
		&p.DateOfBirth, &p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *patientRepoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	_, err := resolveConn(ctx, r.pool).Exec(ctx, `
		INSERT INTO patient (id, first_name, last_name, email, phone, nhs_number, date_of_birth)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		p.ID, p.FirstName, p.LastName, p.Email, p.Phone, p.NHSNumber, p.DateOfBirth)
	return err
}

func (r *patientRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	p, err := scanPatient(resolveConn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patient WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPatientNotFound
	}
	return p, err
}

func (r *patientRepoPG) List(ctx context.Context, search string, limit, offset int) ([]*Patient, int, error) {
	where := `WHERE 1=1`
	args := []interface{}{}
	if search != "" {
		args = append(args, "%"+search+"%")
		where += fmt.Sprintf(` AND (first_name ILIKE $%d OR last_name ILIKE $%d OR nhs_number ILIKE $%d)`,
			len(args), len(args), len(args))
	}

	var total int
	if err := resolveConn(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM patient `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := resolveConn(ctx, r.pool).Query(ctx,
		fmt.Sprintf(`SELECT %s FROM patient %s ORDER BY last_name, first_name LIMIT $%d OFFSET $%d`,
			patientCols, where, len(args)-1, len(args)),
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}

// =========== Users ===========

type userRepoPG struct{ pool *pgxpool.Pool }

func NewUserRepoPG(pool *pgxpool.Pool) UserRepository { return &userRepoPG{pool: pool} }

const userCols = `id, name, email, role, is_active, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return &u, err
}

func (r *userRepoPG) Create(ctx context.Context, u *User) error {
	u.ID = uuid.New()
	_, err := resolveConn(ctx, r.pool).Exec(ctx, `
		INSERT INTO app_user (id, name, email, role, is_active)
		VALUES ($1,$2,$3,$4,$5)`,
		u.ID, u.Name, u.Email, u.Role, u.IsActive)
	return err
}

func (r *userRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := scanUser(resolveConn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+userCols+` FROM app_user WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return u, err
}

func (r *userRepoPG) List(ctx context.Context) ([]*User, error) {
	rows, err := resolveConn(ctx, r.pool).Query(ctx,
		`SELECT `+userCols+` FROM app_user ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, u)
	}
	return items, rows.Err()
}

// =========== Settings ===========

type settingsRepoPG struct{ pool *pgxpool.Pool }

func NewSettingsRepoPG(pool *pgxpool.Pool) SettingsRepository { return &settingsRepoPG{pool: pool} }

// Header and footer live in a two-row key/value style table; PutHeader and
// PutFooter upsert their row.

func (r *settingsRepoPG) GetHeader(ctx context.Context) (*ClinicHeader, error) {
	var h ClinicHeader
	err := resolveConn(ctx, r.pool).QueryRow(ctx,
		`SELECT clinic_name, address, phone, email FROM clinic_header WHERE id = 1`).
		Scan(&h.ClinicName, &h.Address, &h.Phone, &h.Email)
	if errors.Is(err, pgx.ErrNoRows) {
		return &ClinicHeader{}, nil
	}
	return &h, err
}

func (r *settingsRepoPG) PutHeader(ctx context.Context, h *ClinicHeader) error {
	_, err := resolveConn(ctx, r.pool).Exec(ctx, `
		INSERT INTO clinic_header (id, clinic_name, address, phone, email)
		VALUES (1, $1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			clinic_name = EXCLUDED.clinic_name,
			address = EXCLUDED.address,
			phone = EXCLUDED.phone,
			email = EXCLUDED.email,
			updated_at = NOW()`,
		h.ClinicName, h.Address, h.Phone, h.Email)
	return err
}

func (r *settingsRepoPG) GetFooter(ctx context.Context) (*ClinicFooter, error) {
	var f ClinicFooter
	err := resolveConn(ctx, r.pool).QueryRow(ctx,
		`SELECT text FROM clinic_footer WHERE id = 1`).Scan(&f.Text)
	if errors.Is(err, pgx.ErrNoRows) {
		return &ClinicFooter{}, nil
	}
	return &f, err
}

func (r *settingsRepoPG) PutFooter(ctx context.Context, f *ClinicFooter) error {
	_, err := resolveConn(ctx, r.pool).Exec(ctx, `
		INSERT INTO clinic_footer (id, text)
		VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET text = EXCLUDED.text, updated_at = NOW()`,
		f.Text)
	return err
}
