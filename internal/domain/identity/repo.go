package identity

import (
	"context"

	"github.com/google/uuid"

	"github.com/dentalops/dentalops/internal/platform/db"
)

type PatientRepository interface {
	List(ctx context.Context, ownerID string, opts db.ListOptions) ([]*Patient, error)
	GetByID(ctx context.Context, ownerID string, id uuid.UUID) (*Patient, error)
	Create(ctx context.Context, p *Patient) error
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, ownerID string, id uuid.UUID) error
}

type StaffRepository interface {
	List(ctx context.Context, ownerID string, opts db.ListOptions) ([]*Staff, error)
	GetByID(ctx context.Context, ownerID string, id uuid.UUID) (*Staff, error)
	Create(ctx context.Context, s *Staff) error
	Update(ctx context.Context, s *Staff) error
	Delete(ctx context.Context, ownerID string, id uuid.UUID) error
}
