package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dentalops/dentalops/internal/platform/db"
	"github.com/dentalops/dentalops/internal/platform/events"
)

// Service applies the lifecycle engine against the appointment store. Every
// mutation re-reads the joined view so callers never patch stale copies.
type Service struct {
	engine    *Engine
	repo      AppointmentRepository
	refs      db.RefChecker
	publisher events.Publisher
	logger    zerolog.Logger
	now       func() time.Time
}

// NewService builds the service. refs resolves patient, staff and treatment
// ids against the caller's owner; nil skips the lookup.
func NewService(engine *Engine, repo AppointmentRepository, refs db.RefChecker, publisher events.Publisher, logger zerolog.Logger) *Service {
	if refs == nil {
		refs = db.NoRefCheck{}
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Service{
		engine:    engine,
		repo:      repo,
		refs:      refs,
		publisher: publisher,
		logger:    logger.With().Str("component", "scheduling").Logger(),
		now:       time.Now,
	}
}

func (s *Service) Engine() *Engine { return s.engine }

// Book validates req and stores a new scheduled appointment.
func (s *Service) Book(ctx context.Context, ownerID string, req CreateRequest) (*AppointmentView, error) {
	a, err := s.engine.New(req)
	if err != nil {
		return nil, err
	}
	if err := s.checkRefs(ctx, ownerID, &a.PatientID, a.StaffID, a.TreatmentID); err != nil {
		return nil, err
	}
	a.OwnerID = ownerID
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	s.emit(ctx, events.AppointmentBooked, a)
	return s.repo.GetByID(ctx, ownerID, a.ID)
}

func (s *Service) Get(ctx context.Context, ownerID string, id uuid.UUID) (*AppointmentView, error) {
	return s.repo.GetByID(ctx, ownerID, id)
}

// List returns appointments newest first. Archived rows are included only
// when includeClosed is set.
func (s *Service) List(ctx context.Context, ownerID string, includeClosed bool) ([]*AppointmentView, error) {
	return s.repo.List(ctx, ownerID, db.ListOptions{IncludeClosed: includeClosed})
}

// Edit applies p to the stored appointment. The patch shape is checked
// before the store is read.
func (s *Service) Edit(ctx context.Context, ownerID string, id uuid.UUID, p Patch) (*AppointmentView, error) {
	if err := s.engine.CheckPatch(p); err != nil {
		return nil, err
	}
	staff, treatment := p.StaffID, p.TreatmentID
	if p.ClearStaff {
		staff = nil
	}
	if p.ClearTreatment {
		treatment = nil
	}
	if err := s.checkRefs(ctx, ownerID, p.PatientID, staff, treatment); err != nil {
		return nil, err
	}
	v, err := s.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	a := v.Appointment
	if err := s.engine.Apply(&a, p); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, &a); err != nil {
		return nil, err
	}
	evtType := events.AppointmentUpdated
	if a.Status == StatusCancelled && v.Status != StatusCancelled {
		evtType = events.AppointmentCancelled
	}
	s.emit(ctx, evtType, &a)
	return s.repo.GetByID(ctx, ownerID, id)
}

// Cancel is idempotent: cancelling a cancelled appointment returns it
// unchanged without a write.
func (s *Service) Cancel(ctx context.Context, ownerID string, id uuid.UUID) (*AppointmentView, error) {
	v, err := s.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	a := v.Appointment
	changed, err := s.engine.Cancel(&a)
	if err != nil {
		return nil, err
	}
	if !changed {
		return v, nil
	}
	if err := s.repo.Update(ctx, &a); err != nil {
		return nil, err
	}
	s.emit(ctx, events.AppointmentCancelled, &a)
	return s.repo.GetByID(ctx, ownerID, id)
}

// Archive marks the appointment closed. It stays readable with
// includeClosed.
func (s *Service) Archive(ctx context.Context, ownerID string, id uuid.UUID) error {
	if err := s.repo.Archive(ctx, ownerID, id, s.now().UTC()); err != nil {
		return err
	}
	s.publish(ctx, events.New(events.AppointmentArchived, ownerID, id, nil))
	return nil
}

// Today returns the open appointments that are active on the current
// calendar day in the practice time zone.
func (s *Service) Today(ctx context.Context, ownerID string) ([]*AppointmentView, error) {
	all, err := s.repo.List(ctx, ownerID, db.ListOptions{})
	if err != nil {
		return nil, err
	}
	ref := s.now().In(s.engine.Location())
	out := make([]*AppointmentView, 0)
	for _, v := range all {
		if IsActiveToday(&v.Appointment, ref) {
			out = append(out, v)
		}
	}
	return out, nil
}

// Conflicts lists the open appointments that double-book the staff member
// of the given appointment.
func (s *Service) Conflicts(ctx context.Context, ownerID string, id uuid.UUID) ([]*AppointmentView, error) {
	target, err := s.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	all, err := s.repo.List(ctx, ownerID, db.ListOptions{})
	if err != nil {
		return nil, err
	}
	out := Overlapping(&target.Appointment, all)
	if len(out) > 0 {
		s.logger.Debug().Str("appointment_id", id.String()).Int("conflicts", len(out)).Msg("double booking detected")
	}
	return out, nil
}

// checkRefs rejects patient, staff or treatment ids that do not belong to
// ownerID. Nil ids are unset references.
func (s *Service) checkRefs(ctx context.Context, ownerID string, patient, staff, treatment *uuid.UUID) error {
	return db.CheckRefs(ctx, s.refs, ownerID,
		db.Ref{Field: "patient_id", Collection: db.RefPatient, ID: patient},
		db.Ref{Field: "staff_id", Collection: db.RefStaff, ID: staff},
		db.Ref{Field: "treatment_id", Collection: db.RefTreatment, ID: treatment},
	)
}

func (s *Service) emit(ctx context.Context, eventType string, a *Appointment) {
	s.publish(ctx, events.New(eventType, a.OwnerID, a.ID, a))
}

func (s *Service) publish(ctx context.Context, evt events.Event) {
	events.Emit(ctx, s.publisher, s.logger, evt)
}
