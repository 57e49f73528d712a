package identity

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/dentalops/dentalops/internal/platform/apperr"
	"github.com/dentalops/dentalops/internal/platform/db"
)

type Service struct {
	patients PatientRepository
	staff    StaffRepository
}

func NewService(patients PatientRepository, staff StaffRepository) *Service {
	return &Service{patients: patients, staff: staff}
}

// -- Patient --

func validatePatient(p *Patient) error {
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	p.Phone = strings.TrimSpace(p.Phone)
	if p.FirstName == "" {
		return apperr.Validation("first_name", "is required")
	}
	if p.LastName == "" {
		return apperr.Validation("last_name", "is required")
	}
	if p.Phone == "" {
		return apperr.Validation("phone", "is required")
	}
	return validateEmail(p.Email)
}

func validateEmail(email *string) error {
	if email == nil {
		return nil
	}
	v := strings.TrimSpace(*email)
	*email = v
	if v != "" && !strings.Contains(v, "@") {
		return apperr.Validation("email", "is not a valid address")
	}
	return nil
}

func (s *Service) CreatePatient(ctx context.Context, ownerID string, p *Patient) error {
	if err := validatePatient(p); err != nil {
		return err
	}
	p.OwnerID = ownerID
	return s.patients.Create(ctx, p)
}

func (s *Service) GetPatient(ctx context.Context, ownerID string, id uuid.UUID) (*Patient, error) {
	return s.patients.GetByID(ctx, ownerID, id)
}

func (s *Service) ListPatients(ctx context.Context, ownerID string) ([]*Patient, error) {
	return s.patients.List(ctx, ownerID, db.ListOptions{})
}

func (s *Service) UpdatePatient(ctx context.Context, ownerID string, p *Patient) error {
	if err := validatePatient(p); err != nil {
		return err
	}
	p.OwnerID = ownerID
	return s.patients.Update(ctx, p)
}

// DeletePatient removes the row outright; there is no soft delete.
func (s *Service) DeletePatient(ctx context.Context, ownerID string, id uuid.UUID) error {
	return s.patients.Delete(ctx, ownerID, id)
}

// -- Staff --

func validateStaff(m *Staff) error {
	m.FirstName = strings.TrimSpace(m.FirstName)
	m.LastName = strings.TrimSpace(m.LastName)
	m.Role = strings.TrimSpace(m.Role)
	if m.FirstName == "" {
		return apperr.Validation("first_name", "is required")
	}
	if m.LastName == "" {
		return apperr.Validation("last_name", "is required")
	}
	if m.Role == "" {
		return apperr.Validation("role", "is required")
	}
	return validateEmail(m.Email)
}

func (s *Service) CreateStaff(ctx context.Context, ownerID string, m *Staff) error {
	if err := validateStaff(m); err != nil {
		return err
	}
	m.OwnerID = ownerID
	return s.staff.Create(ctx, m)
}

func (s *Service) GetStaff(ctx context.Context, ownerID string, id uuid.UUID) (*Staff, error) {
	return s.staff.GetByID(ctx, ownerID, id)
}

func (s *Service) ListStaff(ctx context.Context, ownerID string) ([]*Staff, error) {
	return s.staff.List(ctx, ownerID, db.ListOptions{})
}

func (s *Service) UpdateStaff(ctx context.Context, ownerID string, m *Staff) error {
	if err := validateStaff(m); err != nil {
		return err
	}
	m.OwnerID = ownerID
	return s.staff.Update(ctx, m)
}

func (s *Service) DeleteStaff(ctx context.Context, ownerID string, id uuid.UUID) error {
	return s.staff.Delete(ctx, ownerID, id)
}
