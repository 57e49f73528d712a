package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/dentalops/dentalops/internal/platform/db"
)

type TreatmentRepository interface {
	List(ctx context.Context, ownerID string, opts db.ListOptions) ([]*Treatment, error)
	GetByID(ctx context.Context, ownerID string, id uuid.UUID) (*Treatment, error)
	Create(ctx context.Context, t *Treatment) error
	Update(ctx context.Context, t *Treatment) error
	Delete(ctx context.Context, ownerID string, id uuid.UUID) error
}
