package prescription

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dentalops/dentalops/internal/domain/identity"
	"github.com/dentalops/dentalops/internal/platform/apperr"
	"github.com/dentalops/dentalops/internal/platform/db"
)

type prescriptionRepoPG struct{ pool *pgxpool.Pool }

func NewPrescriptionRepoPG(pool *pgxpool.Pool) PrescriptionRepository {
	return &prescriptionRepoPG{pool: pool}
}

func (r *prescriptionRepoPG) conn(ctx context.Context) db.Queryable { return db.Conn(ctx, r.pool) }

const prescriptionViewQuery = `
	SELECT rx.id, rx.owner_id, rx.patient_id, rx.staff_id, rx.instructions, rx.prescribed_date,
		rx.created_at, rx.updated_at,
		p.id, p.first_name, p.last_name, p.phone, p.email,
		s.id, s.first_name, s.last_name, s.role, s.email
	FROM prescription rx
	LEFT JOIN patient p ON p.id = rx.patient_id AND p.owner_id = rx.owner_id
	LEFT JOIN staff s ON s.id = rx.staff_id AND s.owner_id = rx.owner_id`

const lineCols = `l.id, l.prescription_id, l.position, l.name, l.dosage, l.frequency, l.duration`

func scanPrescriptionView(row pgx.Row) (*PrescriptionView, error) {
	var v PrescriptionView
	var (
		pID, sID              *uuid.UUID
		pFirst, pLast, pPhone *string
		sFirst, sLast, sRole  *string
		pEmail, sEmail        *string
	)
	rx := &v.Prescription
	err := row.Scan(&rx.ID, &rx.OwnerID, &rx.PatientID, &rx.StaffID, &rx.Instructions, &rx.PrescribedDate,
		&rx.CreatedAt, &rx.UpdatedAt,
		&pID, &pFirst, &pLast, &pPhone, &pEmail,
		&sID, &sFirst, &sLast, &sRole, &sEmail)
	if err != nil {
		return nil, err
	}
	if pID != nil {
		v.Patient = &identity.PatientSummary{ID: *pID, FirstName: str(pFirst), LastName: str(pLast),
			Phone: str(pPhone), Email: pEmail}
	}
	if sID != nil {
		v.Staff = &identity.StaffSummary{ID: *sID, FirstName: str(sFirst), LastName: str(sLast),
			Role: str(sRole), Email: sEmail}
	}
	v.Lines = []MedicineLine{}
	return &v, nil
}

func scanLine(row pgx.Row) (MedicineLine, error) {
	var l MedicineLine
	err := row.Scan(&l.ID, &l.PrescriptionID, &l.Position, &l.Name, &l.Dosage, &l.Frequency, &l.Duration)
	return l, err
}

func str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (r *prescriptionRepoPG) List(ctx context.Context, ownerID string, _ db.ListOptions) ([]*PrescriptionView, error) {
	rows, err := r.conn(ctx).Query(ctx,
		prescriptionViewQuery+` WHERE rx.owner_id = $1 ORDER BY rx.prescribed_date DESC, rx.created_at DESC`, ownerID)
	if err != nil {
		return nil, apperr.Store("list", "prescription", err)
	}
	var out []*PrescriptionView
	byID := make(map[uuid.UUID]*PrescriptionView)
	for rows.Next() {
		v, err := scanPrescriptionView(rows)
		if err != nil {
			rows.Close()
			return nil, apperr.Store("list", "prescription", err)
		}
		out = append(out, v)
		byID[v.ID] = v
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, apperr.Store("list", "prescription", err)
	}
	if len(out) == 0 {
		return out, nil
	}

	lines, err := r.conn(ctx).Query(ctx, `
		SELECT `+lineCols+`
		FROM medicine_line l
		JOIN prescription rx ON rx.id = l.prescription_id
		WHERE rx.owner_id = $1
		ORDER BY l.prescription_id, l.position`, ownerID)
	if err != nil {
		return nil, apperr.Store("list", "medicine_line", err)
	}
	defer lines.Close()
	for lines.Next() {
		l, err := scanLine(lines)
		if err != nil {
			return nil, apperr.Store("list", "medicine_line", err)
		}
		if v, ok := byID[l.PrescriptionID]; ok {
			v.Lines = append(v.Lines, l)
		}
	}
	return out, apperr.Store("list", "medicine_line", lines.Err())
}

func (r *prescriptionRepoPG) GetByID(ctx context.Context, ownerID string, id uuid.UUID) (*PrescriptionView, error) {
	v, err := scanPrescriptionView(r.conn(ctx).QueryRow(ctx,
		prescriptionViewQuery+` WHERE rx.owner_id = $1 AND rx.id = $2`, ownerID, id))
	if err != nil {
		return nil, apperr.Store("get", "prescription", err)
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+lineCols+` FROM medicine_line l WHERE l.prescription_id = $1 ORDER BY l.position`, id)
	if err != nil {
		return nil, apperr.Store("get", "medicine_line", err)
	}
	defer rows.Close()
	for rows.Next() {
		l, err := scanLine(rows)
		if err != nil {
			return nil, apperr.Store("get", "medicine_line", err)
		}
		v.Lines = append(v.Lines, l)
	}
	return v, apperr.Store("get", "medicine_line", rows.Err())
}

func (r *prescriptionRepoPG) Create(ctx context.Context, p *Prescription) error {
	p.ID = uuid.New()
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO prescription (id, owner_id, patient_id, staff_id, instructions, prescribed_date)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at, updated_at`,
		p.ID, p.OwnerID, p.PatientID, p.StaffID, p.Instructions, p.PrescribedDate,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	return apperr.Store("insert", "prescription", err)
}

func (r *prescriptionRepoPG) Update(ctx context.Context, p *Prescription) error {
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE prescription SET patient_id=$3, staff_id=$4, instructions=$5, prescribed_date=$6,
			updated_at=NOW()
		WHERE owner_id = $1 AND id = $2
		RETURNING created_at, updated_at`,
		p.OwnerID, p.ID, p.PatientID, p.StaffID, p.Instructions, p.PrescribedDate,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	return apperr.Store("update", "prescription", err)
}

func (r *prescriptionRepoPG) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM prescription WHERE owner_id = $1 AND id = $2`, ownerID, id)
	if err != nil {
		return apperr.Store("delete", "prescription", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("delete", "prescription")
	}
	return nil
}

// InsertLines writes lines with fresh ids. Positions are taken from the
// lines as given.
func (r *prescriptionRepoPG) InsertLines(ctx context.Context, prescriptionID uuid.UUID, lines []MedicineLine) error {
	batch := &pgx.Batch{}
	for i := range lines {
		l := &lines[i]
		l.ID = uuid.New()
		l.PrescriptionID = prescriptionID
		batch.Queue(`
			INSERT INTO medicine_line (id, prescription_id, position, name, dosage, frequency, duration)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			l.ID, l.PrescriptionID, l.Position, l.Name, l.Dosage, l.Frequency, l.Duration)
	}
	br := r.sendBatch(ctx, batch)
	defer br.Close()
	for range lines {
		if _, err := br.Exec(); err != nil {
			return apperr.Store("insert", "medicine_line", err)
		}
	}
	return nil
}

func (r *prescriptionRepoPG) sendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx.SendBatch(ctx, b)
	}
	return r.pool.SendBatch(ctx, b)
}

// DeleteLines removes every line of the prescription. It succeeds when
// there are none.
func (r *prescriptionRepoPG) DeleteLines(ctx context.Context, ownerID string, prescriptionID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `
		DELETE FROM medicine_line l
		USING prescription rx
		WHERE rx.id = l.prescription_id AND rx.owner_id = $1 AND l.prescription_id = $2`,
		ownerID, prescriptionID)
	return apperr.Store("delete", "medicine_line", err)
}
