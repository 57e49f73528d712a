package prescription

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dentalops/dentalops/internal/platform/apperr"
	"github.com/dentalops/dentalops/internal/platform/db"
	"github.com/dentalops/dentalops/internal/platform/events"
)

type Service struct {
	repo      PrescriptionRepository
	refs      db.RefChecker
	tx        db.Transactor
	publisher events.Publisher
	logger    zerolog.Logger
}

func NewService(repo PrescriptionRepository, refs db.RefChecker, tx db.Transactor, publisher events.Publisher, logger zerolog.Logger) *Service {
	if refs == nil {
		refs = db.NoRefCheck{}
	}
	if tx == nil {
		tx = db.NoTx{}
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Service{
		repo:      repo,
		refs:      refs,
		tx:        tx,
		publisher: publisher,
		logger:    logger.With().Str("component", "prescription").Logger(),
	}
}

// Validate checks the prescription and renumbers its lines in the order
// given.
func Validate(p *Prescription) error {
	if p.PatientID == uuid.Nil {
		return apperr.Validation("patient_id", "is required")
	}
	if p.StaffID == uuid.Nil {
		return apperr.Validation("staff_id", "is required")
	}
	if p.PrescribedDate.IsZero() {
		return apperr.Validation("prescribed_date", "is required")
	}
	if len(p.Lines) == 0 {
		return apperr.Validation("lines", "at least one medicine is required")
	}
	for i := range p.Lines {
		l := &p.Lines[i]
		l.Name = strings.TrimSpace(l.Name)
		l.Dosage = strings.TrimSpace(l.Dosage)
		if l.Name == "" {
			return apperr.Validation("lines", "line %d: name is required", i+1)
		}
		if l.Dosage == "" {
			return apperr.Validation("lines", "line %d: dosage is required", i+1)
		}
		if !l.Frequency.Valid() {
			return apperr.Validation("lines", "line %d: unknown frequency %q", i+1, l.Frequency)
		}
		l.Position = i
	}
	return nil
}

// Issue stores the prescription and its lines in one transaction.
func (s *Service) Issue(ctx context.Context, ownerID string, p *Prescription) (*PrescriptionView, error) {
	if err := Validate(p); err != nil {
		return nil, err
	}
	if err := s.checkRefs(ctx, ownerID, p); err != nil {
		return nil, err
	}
	p.OwnerID = ownerID
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, p); err != nil {
			return err
		}
		return s.repo.InsertLines(ctx, p.ID, p.Lines)
	})
	if err != nil {
		return nil, err
	}
	s.emit(ctx, events.PrescriptionIssued, ownerID, p.ID, p)
	return s.repo.GetByID(ctx, ownerID, p.ID)
}

func (s *Service) Get(ctx context.Context, ownerID string, id uuid.UUID) (*PrescriptionView, error) {
	return s.repo.GetByID(ctx, ownerID, id)
}

func (s *Service) List(ctx context.Context, ownerID string) ([]*PrescriptionView, error) {
	return s.repo.List(ctx, ownerID, db.ListOptions{})
}

// Update replaces the prescription and all of its lines.
func (s *Service) Update(ctx context.Context, ownerID string, id uuid.UUID, p *Prescription) (*PrescriptionView, error) {
	if err := Validate(p); err != nil {
		return nil, err
	}
	if err := s.checkRefs(ctx, ownerID, p); err != nil {
		return nil, err
	}
	p.ID = id
	p.OwnerID = ownerID
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, p); err != nil {
			return err
		}
		if err := s.repo.DeleteLines(ctx, ownerID, id); err != nil {
			return err
		}
		return s.repo.InsertLines(ctx, id, p.Lines)
	})
	if err != nil {
		return nil, err
	}
	s.emit(ctx, events.PrescriptionUpdated, ownerID, id, p)
	return s.repo.GetByID(ctx, ownerID, id)
}

// Delete removes the lines before the prescription itself; the store does
// not cascade.
func (s *Service) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.repo.DeleteLines(ctx, ownerID, id); err != nil {
			return err
		}
		return s.repo.Delete(ctx, ownerID, id)
	})
	if err != nil {
		return err
	}
	s.emit(ctx, events.PrescriptionDeleted, ownerID, id, nil)
	return nil
}

// checkRefs rejects a patient or prescriber that belongs to another owner.
func (s *Service) checkRefs(ctx context.Context, ownerID string, p *Prescription) error {
	return db.CheckRefs(ctx, s.refs, ownerID,
		db.Ref{Field: "patient_id", Collection: db.RefPatient, ID: &p.PatientID},
		db.Ref{Field: "staff_id", Collection: db.RefStaff, ID: &p.StaffID},
	)
}

func (s *Service) emit(ctx context.Context, eventType, ownerID string, id uuid.UUID, payload interface{}) {
	events.Emit(ctx, s.publisher, s.logger, events.New(eventType, ownerID, id, payload))
}
