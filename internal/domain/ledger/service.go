package ledger

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dentalops/dentalops/internal/platform/apperr"
	"github.com/dentalops/dentalops/internal/platform/db"
	"github.com/dentalops/dentalops/internal/platform/events"
)

type Service struct {
	repo      EntryRepository
	refs      db.RefChecker
	publisher events.Publisher
	logger    zerolog.Logger
	now       func() time.Time
}

func NewService(repo EntryRepository, refs db.RefChecker, publisher events.Publisher, logger zerolog.Logger) *Service {
	if refs == nil {
		refs = db.NoRefCheck{}
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Service{
		repo:      repo,
		refs:      refs,
		publisher: publisher,
		logger:    logger.With().Str("component", "ledger").Logger(),
		now:       time.Now,
	}
}

// Validate checks an entry before it is written. Rows already in the store
// are not re-validated on read; the aggregator tolerates them instead.
func Validate(e *Entry) error {
	e.Direction = Direction(strings.ToLower(strings.TrimSpace(string(e.Direction))))
	if !e.Direction.Valid() {
		return apperr.Validation("direction", "must be credit or debit")
	}
	if !e.Category.Valid() {
		return apperr.Validation("category", "unknown category %q", e.Category)
	}
	if !e.PaymentMethod.Valid() {
		return apperr.Validation("payment_method", "unknown payment method %q", e.PaymentMethod)
	}
	if !e.Amount.Valid || !e.Amount.Decimal.IsPositive() {
		return apperr.Validation("amount", "must be greater than zero")
	}
	if !e.Amount.Decimal.Equal(e.Amount.Decimal.Round(MoneyPlaces)) {
		return apperr.Validation("amount", "must have at most %d decimal places", MoneyPlaces)
	}
	if e.Date == nil || e.Date.IsZero() {
		return apperr.Validation("date", "is required")
	}
	if e.Direction == Credit && (e.PatientID == nil || *e.PatientID == uuid.Nil) {
		return apperr.Validation("patient_id", "is required for a credit entry")
	}
	return nil
}

// Record validates and stores a new entry.
func (s *Service) Record(ctx context.Context, ownerID string, e *Entry) (*EntryView, error) {
	if err := Validate(e); err != nil {
		return nil, err
	}
	if err := s.checkPatient(ctx, ownerID, e); err != nil {
		return nil, err
	}
	e.OwnerID = ownerID
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	s.emit(ctx, events.LedgerRecorded, ownerID, e.ID, e)
	return s.repo.GetByID(ctx, ownerID, e.ID)
}

func (s *Service) Get(ctx context.Context, ownerID string, id uuid.UUID) (*EntryView, error) {
	return s.repo.GetByID(ctx, ownerID, id)
}

// List returns the owner's entries. Archived entries are included only
// when includeClosed is set.
func (s *Service) List(ctx context.Context, ownerID string, includeClosed bool) ([]*EntryView, error) {
	return s.repo.List(ctx, ownerID, db.ListOptions{IncludeClosed: includeClosed})
}

// Update replaces the entry with id. Last write wins.
func (s *Service) Update(ctx context.Context, ownerID string, id uuid.UUID, e *Entry) (*EntryView, error) {
	if err := Validate(e); err != nil {
		return nil, err
	}
	if err := s.checkPatient(ctx, ownerID, e); err != nil {
		return nil, err
	}
	e.ID = id
	e.OwnerID = ownerID
	if err := s.repo.Update(ctx, e); err != nil {
		return nil, err
	}
	s.emit(ctx, events.LedgerUpdated, ownerID, id, e)
	return s.repo.GetByID(ctx, ownerID, id)
}

func (s *Service) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		return err
	}
	s.emit(ctx, events.LedgerDeleted, ownerID, id, nil)
	return nil
}

func (s *Service) Archive(ctx context.Context, ownerID string, id uuid.UUID) error {
	if err := s.repo.Archive(ctx, ownerID, id, s.now().UTC()); err != nil {
		return err
	}
	s.emit(ctx, events.LedgerArchived, ownerID, id, nil)
	return nil
}

// checkPatient rejects a patient reference that belongs to another owner.
func (s *Service) checkPatient(ctx context.Context, ownerID string, e *Entry) error {
	return db.CheckRefs(ctx, s.refs, ownerID, db.Ref{Field: "patient_id", Collection: db.RefPatient, ID: e.PatientID})
}

func (s *Service) emit(ctx context.Context, eventType, ownerID string, id uuid.UUID, payload interface{}) {
	events.Emit(ctx, s.publisher, s.logger, events.New(eventType, ownerID, id, payload))
}
