package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dentalops/dentalops/internal/platform/apperr"
	"github.com/dentalops/dentalops/internal/platform/db"
)

// =========== Patient Repository ===========

type patientRepoPG struct{ pool *pgxpool.Pool }

func NewPatientRepoPG(pool *pgxpool.Pool) PatientRepository { return &patientRepoPG{pool: pool} }

func (r *patientRepoPG) conn(ctx context.Context) db.Queryable { return db.Conn(ctx, r.pool) }

const patientCols = `id, owner_id, first_name, last_name, phone, email, date_of_birth,
	address, emergency_contact, medical_history, allergies, insurance_note, created_at, updated_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.OwnerID, &p.FirstName, &p.LastName, &p.Phone, &p.Email, &p.DateOfBirth,
		&p.Address, &p.EmergencyContact, &p.MedicalHistory, &p.Allergies, &p.InsuranceNote,
		&p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *patientRepoPG) List(ctx context.Context, ownerID string, _ db.ListOptions) ([]*Patient, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+patientCols+` FROM patient WHERE owner_id = $1 ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, apperr.Store("list", "patient", err)
	}
	defer rows.Close()

	var out []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, apperr.Store("list", "patient", err)
		}
		out = append(out, p)
	}
	return out, apperr.Store("list", "patient", rows.Err())
}

func (r *patientRepoPG) GetByID(ctx context.Context, ownerID string, id uuid.UUID) (*Patient, error) {
	p, err := scanPatient(r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patient WHERE owner_id = $1 AND id = $2`, ownerID, id))
	if err != nil {
		return nil, apperr.Store("get", "patient", err)
	}
	return p, nil
}

func (r *patientRepoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO patient (id, owner_id, first_name, last_name, phone, email, date_of_birth,
			address, emergency_contact, medical_history, allergies, insurance_note)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING created_at, updated_at`,
		p.ID, p.OwnerID, p.FirstName, p.LastName, p.Phone, p.Email, p.DateOfBirth,
		p.Address, p.EmergencyContact, p.MedicalHistory, p.Allergies, p.InsuranceNote,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	return apperr.Store("insert", "patient", err)
}

func (r *patientRepoPG) Update(ctx context.Context, p *Patient) error {
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE patient SET first_name=$3, last_name=$4, phone=$5, email=$6, date_of_birth=$7,
			address=$8, emergency_contact=$9, medical_history=$10, allergies=$11, insurance_note=$12,
			updated_at=NOW()
		WHERE owner_id = $1 AND id = $2
		RETURNING created_at, updated_at`,
		p.OwnerID, p.ID, p.FirstName, p.LastName, p.Phone, p.Email, p.DateOfBirth,
		p.Address, p.EmergencyContact, p.MedicalHistory, p.Allergies, p.InsuranceNote,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	return apperr.Store("update", "patient", err)
}

func (r *patientRepoPG) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM patient WHERE owner_id = $1 AND id = $2`, ownerID, id)
	if err != nil {
		return apperr.Store("delete", "patient", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("delete", "patient")
	}
	return nil
}

// =========== Staff Repository ===========

type staffRepoPG struct{ pool *pgxpool.Pool }

func NewStaffRepoPG(pool *pgxpool.Pool) StaffRepository { return &staffRepoPG{pool: pool} }

func (r *staffRepoPG) conn(ctx context.Context) db.Queryable { return db.Conn(ctx, r.pool) }

const staffCols = `id, owner_id, first_name, last_name, phone, email, role,
	specialization, license_number, created_at, updated_at`

func scanStaff(row pgx.Row) (*Staff, error) {
	var s Staff
	err := row.Scan(&s.ID, &s.OwnerID, &s.FirstName, &s.LastName, &s.Phone, &s.Email, &s.Role,
		&s.Specialization, &s.LicenseNumber, &s.CreatedAt, &s.UpdatedAt)
	return &s, err
}

func (r *staffRepoPG) List(ctx context.Context, ownerID string, _ db.ListOptions) ([]*Staff, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+staffCols+` FROM staff WHERE owner_id = $1 ORDER BY last_name, first_name`, ownerID)
	if err != nil {
		return nil, apperr.Store("list", "staff", err)
	}
	defer rows.Close()

	var out []*Staff
	for rows.Next() {
		s, err := scanStaff(rows)
		if err != nil {
			return nil, apperr.Store("list", "staff", err)
		}
		out = append(out, s)
	}
	return out, apperr.Store("list", "staff", rows.Err())
}

func (r *staffRepoPG) GetByID(ctx context.Context, ownerID string, id uuid.UUID) (*Staff, error) {
	s, err := scanStaff(r.conn(ctx).QueryRow(ctx,
		`SELECT `+staffCols+` FROM staff WHERE owner_id = $1 AND id = $2`, ownerID, id))
	if err != nil {
		return nil, apperr.Store("get", "staff", err)
	}
	return s, nil
}

func (r *staffRepoPG) Create(ctx context.Context, s *Staff) error {
	s.ID = uuid.New()
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO staff (id, owner_id, first_name, last_name, phone, email, role,
			specialization, license_number)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING created_at, updated_at`,
		s.ID, s.OwnerID, s.FirstName, s.LastName, s.Phone, s.Email, s.Role,
		s.Specialization, s.LicenseNumber,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
	return apperr.Store("insert", "staff", err)
}

func (r *staffRepoPG) Update(ctx context.Context, s *Staff) error {
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE staff SET first_name=$3, last_name=$4, phone=$5, email=$6, role=$7,
			specialization=$8, license_number=$9, updated_at=NOW()
		WHERE owner_id = $1 AND id = $2
		RETURNING created_at, updated_at`,
		s.OwnerID, s.ID, s.FirstName, s.LastName, s.Phone, s.Email, s.Role,
		s.Specialization, s.LicenseNumber,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
	return apperr.Store("update", "staff", err)
}

func (r *staffRepoPG) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM staff WHERE owner_id = $1 AND id = $2`, ownerID, id)
	if err != nil {
		return apperr.Store("delete", "staff", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("delete", "staff")
	}
	return nil
}
