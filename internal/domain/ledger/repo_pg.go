package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dentalops/dentalops/internal/domain/identity"
	"github.com/dentalops/dentalops/internal/platform/apperr"
	"github.com/dentalops/dentalops/internal/platform/db"
)

type entryRepoPG struct{ pool *pgxpool.Pool }

func NewEntryRepoPG(pool *pgxpool.Pool) EntryRepository {
	return &entryRepoPG{pool: pool}
}

func (r *entryRepoPG) conn(ctx context.Context) db.Queryable { return db.Conn(ctx, r.pool) }

// NUMERIC can hold NaN, which no decimal type represents; such amounts are
// read as NULL and skipped by the aggregator.
const entryViewQuery = `
	SELECT e.id, e.owner_id, e.direction, e.patient_id, e.category,
		CASE WHEN e.amount = 'NaN' THEN NULL ELSE e.amount END,
		e.entry_date, e.payment_method, e.vendor, e.receipt_number, e.transaction_id, e.notes,
		e.closed_at, e.created_at, e.updated_at,
		p.id, p.first_name, p.last_name, p.phone, p.email
	FROM ledger_entry e
	LEFT JOIN patient p ON p.id = e.patient_id AND p.owner_id = e.owner_id`

func scanEntryView(row pgx.Row) (*EntryView, error) {
	var v EntryView
	var (
		pID                   *uuid.UUID
		pFirst, pLast, pPhone *string
		pEmail                *string
	)
	e := &v.Entry
	err := row.Scan(&e.ID, &e.OwnerID, &e.Direction, &e.PatientID, &e.Category,
		&e.Amount,
		&e.Date, &e.PaymentMethod, &e.Vendor, &e.ReceiptNumber, &e.TransactionID, &e.Notes,
		&e.ClosedAt, &e.CreatedAt, &e.UpdatedAt,
		&pID, &pFirst, &pLast, &pPhone, &pEmail)
	if err != nil {
		return nil, err
	}
	if pID != nil {
		v.Patient = &identity.PatientSummary{ID: *pID, Email: pEmail}
		if pFirst != nil {
			v.Patient.FirstName = *pFirst
		}
		if pLast != nil {
			v.Patient.LastName = *pLast
		}
		if pPhone != nil {
			v.Patient.Phone = *pPhone
		}
	}
	return &v, nil
}

func (r *entryRepoPG) List(ctx context.Context, ownerID string, opts db.ListOptions) ([]*EntryView, error) {
	query := entryViewQuery + ` WHERE e.owner_id = $1`
	if !opts.IncludeClosed {
		query += ` AND e.closed_at IS NULL`
	}
	query += ` ORDER BY e.entry_date DESC NULLS LAST, e.created_at DESC`

	rows, err := r.conn(ctx).Query(ctx, query, ownerID)
	if err != nil {
		return nil, apperr.Store("list", "ledger_entry", err)
	}
	defer rows.Close()

	var out []*EntryView
	for rows.Next() {
		v, err := scanEntryView(rows)
		if err != nil {
			return nil, apperr.Store("list", "ledger_entry", err)
		}
		out = append(out, v)
	}
	return out, apperr.Store("list", "ledger_entry", rows.Err())
}

func (r *entryRepoPG) GetByID(ctx context.Context, ownerID string, id uuid.UUID) (*EntryView, error) {
	v, err := scanEntryView(r.conn(ctx).QueryRow(ctx,
		entryViewQuery+` WHERE e.owner_id = $1 AND e.id = $2`, ownerID, id))
	if err != nil {
		return nil, apperr.Store("get", "ledger_entry", err)
	}
	return v, nil
}

func (r *entryRepoPG) Create(ctx context.Context, e *Entry) error {
	e.ID = uuid.New()
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO ledger_entry (id, owner_id, direction, patient_id, category, amount, entry_date,
			payment_method, vendor, receipt_number, transaction_id, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING created_at, updated_at`,
		e.ID, e.OwnerID, e.Direction, e.PatientID, e.Category, e.Amount, e.Date,
		e.PaymentMethod, e.Vendor, e.ReceiptNumber, e.TransactionID, e.Notes,
	).Scan(&e.CreatedAt, &e.UpdatedAt)
	return apperr.Store("insert", "ledger_entry", err)
}

func (r *entryRepoPG) Update(ctx context.Context, e *Entry) error {
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE ledger_entry SET direction=$3, patient_id=$4, category=$5, amount=$6, entry_date=$7,
			payment_method=$8, vendor=$9, receipt_number=$10, transaction_id=$11, notes=$12,
			updated_at=NOW()
		WHERE owner_id = $1 AND id = $2
		RETURNING created_at, updated_at`,
		e.OwnerID, e.ID, e.Direction, e.PatientID, e.Category, e.Amount, e.Date,
		e.PaymentMethod, e.Vendor, e.ReceiptNumber, e.TransactionID, e.Notes,
	).Scan(&e.CreatedAt, &e.UpdatedAt)
	return apperr.Store("update", "ledger_entry", err)
}

func (r *entryRepoPG) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM ledger_entry WHERE owner_id = $1 AND id = $2`, ownerID, id)
	if err != nil {
		return apperr.Store("delete", "ledger_entry", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("delete", "ledger_entry")
	}
	return nil
}

func (r *entryRepoPG) Archive(ctx context.Context, ownerID string, id uuid.UUID, at time.Time) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE ledger_entry SET closed_at = COALESCE(closed_at, $3), updated_at = NOW()
		WHERE owner_id = $1 AND id = $2`, ownerID, id, at)
	if err != nil {
		return apperr.Store("archive", "ledger_entry", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("archive", "ledger_entry")
	}
	return nil
}
