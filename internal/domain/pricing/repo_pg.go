package pricing

import (
	"context"
	"errors"

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

func existingCodes(ctx context.Context, conn queryable, table string) (map[string]bool, error) {
	rows, err := conn.Query(ctx, `SELECT code FROM `+table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	codes := make(map[string]bool)
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		codes[code] = true
	}
	return codes, rows.Err()
}

// =========== Doctor Fees ===========

type doctorFeeRepoPG struct{ pool *pgxpool.Pool }

func NewDoctorFeeRepoPG(pool *pgxpool.Pool) DoctorFeeRepository { return &doctorFeeRepoPG{pool: pool} }

const doctorFeeCols = `id, doctor_id, doctor_name, doctor_role, service_name, code,
	base_price, currency, is_active, version, created_at, updated_at`

func scanDoctorFee(row pgx.Row) (*DoctorFee, error) {
	var f DoctorFee
	err := row.Scan(&f.ID, &f.DoctorID, &f.DoctorName, &f.DoctorRole, &f.ServiceName, &f.Code,
		&f.BasePrice, &f.Currency, &f.IsActive, &f.Version, &f.CreatedAt, &f.UpdatedAt)
	return &f, err
}

func (r *doctorFeeRepoPG) Create(ctx context.Context, fee *DoctorFee) error {
	fee.ID = uuid.New()
	_, err := resolveConn(ctx, r.pool).Exec(ctx, `
		INSERT INTO doctor_fee (id, doctor_id, doctor_name, doctor_role, service_name, code,
			base_price, currency, is_active, version)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,1)`,
		fee.ID, fee.DoctorID, fee.DoctorName, fee.DoctorRole, fee.ServiceName, fee.Code,
		fee.BasePrice, fee.Currency, fee.IsActive)
	return err
}

func (r *doctorFeeRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*DoctorFee, error) {
	fee, err := scanDoctorFee(resolveConn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+doctorFeeCols+` FROM doctor_fee WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return fee, err
}

func (r *doctorFeeRepoPG) Update(ctx context.Context, fee *DoctorFee) error {
	tag, err := resolveConn(ctx, r.pool).Exec(ctx, `
		UPDATE doctor_fee SET doctor_name=$2, doctor_role=$3, service_name=$4, code=$5,
			base_price=$6, is_active=$7, version=version+1, updated_at=NOW()
		WHERE id = $1`,
		fee.ID, fee.DoctorName, fee.DoctorRole, fee.ServiceName, fee.Code,
		fee.BasePrice, fee.IsActive)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *doctorFeeRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := resolveConn(ctx, r.pool).Exec(ctx, `DELETE FROM doctor_fee WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *doctorFeeRepoPG) List(ctx context.Context, activeOnly bool) ([]*DoctorFee, error) {
	q := `SELECT ` + doctorFeeCols + ` FROM doctor_fee`
	if activeOnly {
		q += ` WHERE is_active`
	}
	rows, err := resolveConn(ctx, r.pool).Query(ctx, q+` ORDER BY doctor_role, service_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*DoctorFee
	for rows.Next() {
		f, err := scanDoctorFee(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, f)
	}
	return items, rows.Err()
}

func (r *doctorFeeRepoPG) ExistsForDoctor(ctx context.Context, role string, doctorID uuid.UUID) (bool, error) {
	var exists bool
	err := resolveConn(ctx, r.pool).QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM doctor_fee WHERE doctor_role = $1 AND doctor_id = $2)`,
		role, doctorID).Scan(&exists)
	return exists, err
}

func (r *doctorFeeRepoPG) ExistingCodes(ctx context.Context) (map[string]bool, error) {
	return existingCodes(ctx, resolveConn(ctx, r.pool), "doctor_fee")
}

// =========== Lab Tests ===========

type labTestRepoPG struct{ pool *pgxpool.Pool }

func NewLabTestRepoPG(pool *pgxpool.Pool) LabTestRepository { return &labTestRepoPG{pool: pool} }

const labTestCols = `id, test_name, code, category, base_price, currency,
	is_active, version, created_at, updated_at`

func scanLabTest(row pgx.Row) (*LabTest, error) {
	var t LabTest
	err := row.Scan(&t.ID, &t.TestName, &t.Code, &t.Category, &t.BasePrice, &t.Currency,
		&t.IsActive, &t.Version, &t.CreatedAt, &t.UpdatedAt)
	return &t, err
}

func (r *labTestRepoPG) Create(ctx context.Context, test *LabTest) error {
	test.ID = uuid.New()
	_, err := resolveConn(ctx, r.pool).Exec(ctx, `
		INSERT INTO lab_test (id, test_name, code, category, base_price, currency, is_active, version)
		VALUES ($1,$2,$3,$4,$5,$6,$7,1)`,
		test.ID, test.TestName, test.Code, test.Category, test.BasePrice, test.Currency, test.IsActive)
	return err
}

func (r *labTestRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*LabTest, error) {
	test, err := scanLabTest(resolveConn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+labTestCols+` FROM lab_test WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return test, err
}

func (r *labTestRepoPG) Update(ctx context.Context, test *LabTest) error {
	tag, err := resolveConn(ctx, r.pool).Exec(ctx, `
		UPDATE lab_test SET test_name=$2, code=$3, category=$4, base_price=$5,
			is_active=$6, version=version+1, updated_at=NOW()
		WHERE id = $1`,
		test.ID, test.TestName, test.Code, test.Category, test.BasePrice, test.IsActive)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *labTestRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := resolveConn(ctx, r.pool).Exec(ctx, `DELETE FROM lab_test WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *labTestRepoPG) List(ctx context.Context, activeOnly bool) ([]*LabTest, error) {
	q := `SELECT ` + labTestCols + ` FROM lab_test`
	if activeOnly {
		q += ` WHERE is_active`
	}
	rows, err := resolveConn(ctx, r.pool).Query(ctx, q+` ORDER BY category, test_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*LabTest
	for rows.Next() {
		t, err := scanLabTest(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

func (r *labTestRepoPG) ExistingCodes(ctx context.Context) (map[string]bool, error) {
	return existingCodes(ctx, resolveConn(ctx, r.pool), "lab_test")
}

// =========== Imaging ===========

type imagingRepoPG struct{ pool *pgxpool.Pool }

func NewImagingRepoPG(pool *pgxpool.Pool) ImagingRepository { return &imagingRepoPG{pool: pool} }

const imagingCols = `id, imaging_type, code, modality, body_part, base_price, currency,
	is_active, version, created_at, updated_at`

func scanImaging(row pgx.Row) (*ImagingService, error) {
	var s ImagingService
	err := row.Scan(&s.ID, &s.ImagingType, &s.Code, &s.Modality, &s.BodyPart, &s.BasePrice, &s.Currency,
		&s.IsActive, &s.Version, &s.CreatedAt, &s.UpdatedAt)
	return &s, err
}

func (r *imagingRepoPG) Create(ctx context.Context, svc *ImagingService) error {
	svc.ID = uuid.New()
	_, err := resolveConn(ctx, r.pool).Exec(ctx, `
		INSERT INTO imaging_service (id, imaging_type, code, modality, body_part, base_price, currency, is_active, version)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,1)`,
		svc.ID, svc.ImagingType, svc.Code, svc.Modality, svc.BodyPart, svc.BasePrice, svc.Currency, svc.IsActive)
	return err
}

func (r *imagingRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*ImagingService, error) {
	svc, err := scanImaging(resolveConn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+imagingCols+` FROM imaging_service WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return svc, err
}

func (r *imagingRepoPG) Update(ctx context.Context, svc *ImagingService) error {
	tag, err := resolveConn(ctx, r.pool).Exec(ctx, `
		UPDATE imaging_service SET imaging_type=$2, code=$3, modality=$4, body_part=$5,
			base_price=$6, is_active=$7, version=version+1, updated_at=NOW()
		WHERE id = $1`,
		svc.ID, svc.ImagingType, svc.Code, svc.Modality, svc.BodyPart, svc.BasePrice, svc.IsActive)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *imagingRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := resolveConn(ctx, r.pool).Exec(ctx, `DELETE FROM imaging_service WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *imagingRepoPG) List(ctx context.Context, activeOnly bool) ([]*ImagingService, error) {
	q := `SELECT ` + imagingCols + ` FROM imaging_service`
	if activeOnly {
		q += ` WHERE is_active`
	}
	rows, err := resolveConn(ctx, r.pool).Query(ctx, q+` ORDER BY modality, imaging_type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*ImagingService
	for rows.Next() {
		s, err := scanImaging(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

func (r *imagingRepoPG) ExistingCodes(ctx context.Context) (map[string]bool, error) {
	return existingCodes(ctx, resolveConn(ctx, r.pool), "imaging_service")
}
