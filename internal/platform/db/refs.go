package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dentalops/dentalops/internal/platform/apperr"
)

// Collections a record may reference.
const (
	RefPatient   = "patient"
	RefStaff     = "staff"
	RefTreatment = "treatment"
)

// RefChecker reports whether id names a row of collection owned by ownerID.
type RefChecker interface {
	Owned(ctx context.Context, collection, ownerID string, id uuid.UUID) (bool, error)
}

// NoRefCheck accepts every reference. The store's composite foreign keys
// still reject foreign-owner ids.
type NoRefCheck struct{}

func (NoRefCheck) Owned(context.Context, string, string, uuid.UUID) (bool, error) { return true, nil }

// PoolRefChecker looks references up in the record store.
type PoolRefChecker struct {
	Pool *pgxpool.Pool
}

var refQueries = map[string]string{
	RefPatient:   `SELECT EXISTS (SELECT 1 FROM patient WHERE owner_id = $1 AND id = $2)`,
	RefStaff:     `SELECT EXISTS (SELECT 1 FROM staff WHERE owner_id = $1 AND id = $2)`,
	RefTreatment: `SELECT EXISTS (SELECT 1 FROM treatment WHERE owner_id = $1 AND id = $2)`,
}

func (r PoolRefChecker) Owned(ctx context.Context, collection, ownerID string, id uuid.UUID) (bool, error) {
	query, ok := refQueries[collection]
	if !ok {
		return false, fmt.Errorf("unknown reference collection %q", collection)
	}
	var exists bool
	if err := Conn(ctx, r.Pool).QueryRow(ctx, query, ownerID, id).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// Ref is one reference carried by a record about to be written. A nil ID
// is an unset optional reference.
type Ref struct {
	Field      string
	Collection string
	ID         *uuid.UUID
}

// CheckRefs resolves each set reference against ownerID. A reference to a
// missing row, or to another owner's row, is a validation error.
func CheckRefs(ctx context.Context, c RefChecker, ownerID string, refs ...Ref) error {
	for _, ref := range refs {
		if ref.ID == nil || *ref.ID == uuid.Nil {
			continue
		}
		ok, err := c.Owned(ctx, ref.Collection, ownerID, *ref.ID)
		if err != nil {
			return apperr.Store("check", ref.Collection, err)
		}
		if !ok {
			return apperr.Validation(ref.Field, "no %s with id %s", ref.Collection, *ref.ID)
		}
	}
	return nil
}
