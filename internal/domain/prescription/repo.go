package prescription

import (
	"context"

	"github.com/google/uuid"

	"github.com/dentalops/dentalops/internal/platform/db"
)

// PrescriptionRepository writes prescriptions and their lines separately;
// the service composes them inside one transaction.
type PrescriptionRepository interface {
	List(ctx context.Context, ownerID string, opts db.ListOptions) ([]*PrescriptionView, error)
	GetByID(ctx context.Context, ownerID string, id uuid.UUID) (*PrescriptionView, error)
	Create(ctx context.Context, p *Prescription) error
	Update(ctx context.Context, p *Prescription) error
	Delete(ctx context.Context, ownerID string, id uuid.UUID) error

	InsertLines(ctx context.Context, prescriptionID uuid.UUID, lines []MedicineLine) error
	DeleteLines(ctx context.Context, ownerID string, prescriptionID uuid.UUID) error
}
