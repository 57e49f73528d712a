package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dentalops/dentalops/internal/platform/apperr"
	"github.com/dentalops/dentalops/internal/platform/db"
)

type treatmentRepoPG struct{ pool *pgxpool.Pool }

func NewTreatmentRepoPG(pool *pgxpool.Pool) TreatmentRepository {
	return &treatmentRepoPG{pool: pool}
}

func (r *treatmentRepoPG) conn(ctx context.Context) db.Queryable { return db.Conn(ctx, r.pool) }

const treatmentCols = `id, owner_id, name, description, category, duration_minutes, price,
	created_at, updated_at`

func scanTreatment(row pgx.Row) (*Treatment, error) {
	var t Treatment
	err := row.Scan(&t.ID, &t.OwnerID, &t.Name, &t.Description, &t.Category, &t.DurationMinutes, &t.Price,
		&t.CreatedAt, &t.UpdatedAt)
	return &t, err
}

func (r *treatmentRepoPG) List(ctx context.Context, ownerID string, _ db.ListOptions) ([]*Treatment, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+treatmentCols+` FROM treatment WHERE owner_id = $1 ORDER BY name`, ownerID)
	if err != nil {
		return nil, apperr.Store("list", "treatment", err)
	}
	defer rows.Close()

	var out []*Treatment
	for rows.Next() {
		t, err := scanTreatment(rows)
		if err != nil {
			return nil, apperr.Store("list", "treatment", err)
		}
		out = append(out, t)
	}
	return out, apperr.Store("list", "treatment", rows.Err())
}

func (r *treatmentRepoPG) GetByID(ctx context.Context, ownerID string, id uuid.UUID) (*Treatment, error) {
	t, err := scanTreatment(r.conn(ctx).QueryRow(ctx,
		`SELECT `+treatmentCols+` FROM treatment WHERE owner_id = $1 AND id = $2`, ownerID, id))
	if err != nil {
		return nil, apperr.Store("get", "treatment", err)
	}
	return t, nil
}

func (r *treatmentRepoPG) Create(ctx context.Context, t *Treatment) error {
	t.ID = uuid.New()
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO treatment (id, owner_id, name, description, category, duration_minutes, price)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING created_at, updated_at`,
		t.ID, t.OwnerID, t.Name, t.Description, t.Category, t.DurationMinutes, t.Price,
	).Scan(&t.CreatedAt, &t.UpdatedAt)
	return apperr.Store("insert", "treatment", err)
}

func (r *treatmentRepoPG) Update(ctx context.Context, t *Treatment) error {
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE treatment SET name=$3, description=$4, category=$5, duration_minutes=$6, price=$7,
			updated_at=NOW()
		WHERE owner_id = $1 AND id = $2
		RETURNING created_at, updated_at`,
		t.OwnerID, t.ID, t.Name, t.Description, t.Category, t.DurationMinutes, t.Price,
	).Scan(&t.CreatedAt, &t.UpdatedAt)
	return apperr.Store("update", "treatment", err)
}

func (r *treatmentRepoPG) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM treatment WHERE owner_id = $1 AND id = $2`, ownerID, id)
	if err != nil {
		return apperr.Store("delete", "treatment", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("delete", "treatment")
	}
	return nil
}
