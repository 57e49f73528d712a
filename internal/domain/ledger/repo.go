package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dentalops/dentalops/internal/platform/db"
)

type EntryRepository interface {
	List(ctx context.Context, ownerID string, opts db.ListOptions) ([]*EntryView, error)
	GetByID(ctx context.Context, ownerID string, id uuid.UUID) (*EntryView, error)
	Create(ctx context.Context, e *Entry) error
	Update(ctx context.Context, e *Entry) error
	Delete(ctx context.Context, ownerID string, id uuid.UUID) error
	Archive(ctx context.Context, ownerID string, id uuid.UUID, at time.Time) error
}
