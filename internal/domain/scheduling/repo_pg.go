package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/dentalops/dentalops/internal/domain/catalog"
	"github.com/dentalops/dentalops/internal/domain/identity"
	"github.com/dentalops/dentalops/internal/platform/apperr"
	"github.com/dentalops/dentalops/internal/platform/db"
)

type appointmentRepoPG struct{ pool *pgxpool.Pool }

func NewAppointmentRepoPG(pool *pgxpool.Pool) AppointmentRepository {
	return &appointmentRepoPG{pool: pool}
}

func (r *appointmentRepoPG) conn(ctx context.Context) db.Queryable { return db.Conn(ctx, r.pool) }

const appointmentViewQuery = `
	SELECT a.id, a.owner_id, a.patient_id, a.staff_id, a.treatment_id, a.start_time,
		a.duration_minutes, a.status, a.notes, a.closed_at, a.created_at, a.updated_at,
		p.id, p.first_name, p.last_name, p.phone, p.email,
		s.id, s.first_name, s.last_name, s.role, s.email,
		t.id, t.name, t.description, t.category, t.price
	FROM appointment a
	LEFT JOIN patient p ON p.id = a.patient_id AND p.owner_id = a.owner_id
	LEFT JOIN staff s ON s.id = a.staff_id AND s.owner_id = a.owner_id
	LEFT JOIN treatment t ON t.id = a.treatment_id AND t.owner_id = a.owner_id`

func scanAppointmentView(row pgx.Row) (*AppointmentView, error) {
	var v AppointmentView
	var (
		pID, sID, tID           *uuid.UUID
		pFirst, pLast, pPhone   *string
		sFirst, sLast, sRole    *string
		pEmail, sEmail, tName   *string
		tDescription, tCategory *string
		tPrice                  decimal.NullDecimal
	)
	a := &v.Appointment
	err := row.Scan(&a.ID, &a.OwnerID, &a.PatientID, &a.StaffID, &a.TreatmentID, &a.StartTime,
		&a.DurationMinutes, &a.Status, &a.Notes, &a.ClosedAt, &a.CreatedAt, &a.UpdatedAt,
		&pID, &pFirst, &pLast, &pPhone, &pEmail,
		&sID, &sFirst, &sLast, &sRole, &sEmail,
		&tID, &tName, &tDescription, &tCategory, &tPrice)
	if err != nil {
		return nil, err
	}
	if pID != nil {
		v.Patient = &identity.PatientSummary{ID: *pID, FirstName: deref(pFirst), LastName: deref(pLast),
			Phone: deref(pPhone), Email: pEmail}
	}
	if sID != nil {
		v.Staff = &identity.StaffSummary{ID: *sID, FirstName: deref(sFirst), LastName: deref(sLast),
			Role: deref(sRole), Email: sEmail}
	}
	if tID != nil {
		v.Treatment = &catalog.TreatmentSummary{ID: *tID, Name: deref(tName), Description: tDescription,
			Category: tCategory, Price: tPrice.Decimal}
	}
	return &v, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (r *appointmentRepoPG) List(ctx context.Context, ownerID string, opts db.ListOptions) ([]*AppointmentView, error) {
	query := appointmentViewQuery + ` WHERE a.owner_id = $1`
	if !opts.IncludeClosed {
		query += ` AND a.closed_at IS NULL`
	}
	query += ` ORDER BY a.start_time DESC`

	rows, err := r.conn(ctx).Query(ctx, query, ownerID)
	if err != nil {
		return nil, apperr.Store("list", "appointment", err)
	}
	defer rows.Close()

	var out []*AppointmentView
	for rows.Next() {
		v, err := scanAppointmentView(rows)
		if err != nil {
			return nil, apperr.Store("list", "appointment", err)
		}
		out = append(out, v)
	}
	return out, apperr.Store("list", "appointment", rows.Err())
}

func (r *appointmentRepoPG) GetByID(ctx context.Context, ownerID string, id uuid.UUID) (*AppointmentView, error) {
	v, err := scanAppointmentView(r.conn(ctx).QueryRow(ctx,
		appointmentViewQuery+` WHERE a.owner_id = $1 AND a.id = $2`, ownerID, id))
	if err != nil {
		return nil, apperr.Store("get", "appointment", err)
	}
	return v, nil
}

func (r *appointmentRepoPG) Create(ctx context.Context, a *Appointment) error {
	a.ID = uuid.New()
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO appointment (id, owner_id, patient_id, staff_id, treatment_id, start_time,
			duration_minutes, status, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING created_at, updated_at`,
		a.ID, a.OwnerID, a.PatientID, a.StaffID, a.TreatmentID, a.StartTime,
		a.DurationMinutes, a.Status, a.Notes,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	return apperr.Store("insert", "appointment", err)
}

func (r *appointmentRepoPG) Update(ctx context.Context, a *Appointment) error {
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE appointment SET patient_id=$3, staff_id=$4, treatment_id=$5, start_time=$6,
			duration_minutes=$7, status=$8, notes=$9, updated_at=NOW()
		WHERE owner_id = $1 AND id = $2
		RETURNING created_at, updated_at`,
		a.OwnerID, a.ID, a.PatientID, a.StaffID, a.TreatmentID, a.StartTime,
		a.DurationMinutes, a.Status, a.Notes,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	return apperr.Store("update", "appointment", err)
}

// Archive sets closed_at once; archiving an archived row keeps the first
// timestamp.
func (r *appointmentRepoPG) Archive(ctx context.Context, ownerID string, id uuid.UUID, at time.Time) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE appointment SET closed_at = COALESCE(closed_at, $3), updated_at = NOW()
		WHERE owner_id = $1 AND id = $2`, ownerID, id, at)
	if err != nil {
		return apperr.Store("archive", "appointment", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("archive", "appointment")
	}
	return nil
}
