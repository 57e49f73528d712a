package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/dentalops/dentalops/internal/platform/apperr"
	"github.com/dentalops/dentalops/internal/platform/db"
)

type Service struct {
	treatments TreatmentRepository
}

func NewService(treatments TreatmentRepository) *Service {
	return &Service{treatments: treatments}
}

func validateTreatment(t *Treatment) error {
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		return apperr.Validation("name", "is required")
	}
	if t.DurationMinutes < 0 {
		return apperr.Validation("duration_minutes", "must not be negative")
	}
	if t.Price.IsNegative() {
		return apperr.Validation("price", "must not be negative")
	}
	return nil
}

func (s *Service) CreateTreatment(ctx context.Context, ownerID string, t *Treatment) error {
	if err := validateTreatment(t); err != nil {
		return err
	}
	t.OwnerID = ownerID
	return s.treatments.Create(ctx, t)
}

func (s *Service) GetTreatment(ctx context.Context, ownerID string, id uuid.UUID) (*Treatment, error) {
	return s.treatments.GetByID(ctx, ownerID, id)
}

func (s *Service) ListTreatments(ctx context.Context, ownerID string) ([]*Treatment, error) {
	return s.treatments.List(ctx, ownerID, db.ListOptions{})
}

func (s *Service) UpdateTreatment(ctx context.Context, ownerID string, t *Treatment) error {
	if err := validateTreatment(t); err != nil {
		return err
	}
	t.OwnerID = ownerID
	return s.treatments.Update(ctx, t)
}

func (s *Service) DeleteTreatment(ctx context.Context, ownerID string, id uuid.UUID) error {
	return s.treatments.Delete(ctx, ownerID, id)
}
