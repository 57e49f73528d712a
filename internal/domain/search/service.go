package search

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/dentalops/dentalops/internal/domain/catalog"
	"github.com/dentalops/dentalops/internal/domain/identity"
	"github.com/dentalops/dentalops/internal/domain/scheduling"
	"github.com/dentalops/dentalops/internal/platform/telemetry"
)

type PatientLister interface {
	ListPatients(ctx context.Context, ownerID string) ([]*identity.Patient, error)
}

type StaffLister interface {
	ListStaff(ctx context.Context, ownerID string) ([]*identity.Staff, error)
}

type TreatmentLister interface {
	ListTreatments(ctx context.Context, ownerID string) ([]*catalog.Treatment, error)
}

type AppointmentLister interface {
	List(ctx context.Context, ownerID string, includeClosed bool) ([]*scheduling.AppointmentView, error)
}

// Service loads an owner's records and runs a query against them.
type Service struct {
	patients     PatientLister
	appointments AppointmentLister
	treatments   TreatmentLister
	staff        StaffLister
	searcher     Searcher
}

func NewService(patients PatientLister, appointments AppointmentLister, treatments TreatmentLister, staff StaffLister, searcher Searcher) *Service {
	if searcher == nil {
		searcher = Index{}
	}
	return &Service{
		patients:     patients,
		appointments: appointments,
		treatments:   treatments,
		staff:        staff,
		searcher:     searcher,
	}
}

// Snapshot fetches the four collections one after the other. Archived
// appointments are left out.
func (s *Service) Snapshot(ctx context.Context, ownerID string) (Snapshot, error) {
	var snap Snapshot
	var err error
	if snap.Patients, err = s.patients.ListPatients(ctx, ownerID); err != nil {
		return Snapshot{}, fmt.Errorf("load patients: %w", err)
	}
	if snap.Appointments, err = s.appointments.List(ctx, ownerID, false); err != nil {
		return Snapshot{}, fmt.Errorf("load appointments: %w", err)
	}
	if snap.Treatments, err = s.treatments.ListTreatments(ctx, ownerID); err != nil {
		return Snapshot{}, fmt.Errorf("load treatments: %w", err)
	}
	if snap.Staff, err = s.staff.ListStaff(ctx, ownerID); err != nil {
		return Snapshot{}, fmt.Errorf("load staff: %w", err)
	}
	return snap, nil
}

// Search runs query over the owner's current records. A blank query
// returns without touching the store.
func (s *Service) Search(ctx context.Context, ownerID, query string) (Results, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "search.Search")
	defer span.End()

	empty := s.searcher.Search(query, Snapshot{})
	if !empty.Searched {
		return empty, nil
	}

	snap, err := s.Snapshot(ctx, ownerID)
	if err != nil {
		span.RecordError(err)
		return Results{}, err
	}
	res := s.searcher.Search(query, snap)
	span.SetAttributes(attribute.Int("search.results", len(res.Items)))
	return res, nil
}
