// Package search finds patients, appointments, treatments and staff
// matching a free-text query. The index is rebuilt from the snapshot on
// every call; nothing is cached between queries.
package search

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dentalops/dentalops/internal/domain/catalog"
	"github.com/dentalops/dentalops/internal/domain/identity"
	"github.com/dentalops/dentalops/internal/domain/scheduling"
)

// MaxResults caps the number of items returned for one query.
const MaxResults = 8

type EntityType string

const (
	EntityPatient     EntityType = "patient"
	EntityAppointment EntityType = "appointment"
	EntityTreatment   EntityType = "treatment"
	EntityStaff       EntityType = "staff"
)

var destinations = map[EntityType]string{
	EntityPatient:     "/patients/",
	EntityAppointment: "/appointments/",
	EntityTreatment:   "/treatments/",
	EntityStaff:       "/staff/",
}

// Destination is the path of the screen that owns a record of type t.
func (t EntityType) Destination(id uuid.UUID) string {
	return destinations[t] + id.String()
}

// Result is one match, with enough to navigate to it without a lookup.
type Result struct {
	ID          uuid.UUID  `json:"id"`
	EntityType  EntityType `json:"entity_type"`
	Title       string     `json:"title"`
	Subtitle    string     `json:"subtitle,omitempty"`
	Destination string     `json:"destination"`
}

// Results separates "not searched" (blank query) from "searched, no match".
type Results struct {
	Query    string   `json:"query"`
	Searched bool     `json:"searched"`
	Items    []Result `json:"items"`
}

// Snapshot is the set of records a query runs against.
type Snapshot struct {
	Patients     []*identity.Patient
	Appointments []*scheduling.AppointmentView
	Treatments   []*catalog.Treatment
	Staff        []*identity.Staff
}

// Searcher is the query contract. Index implements it with a linear scan;
// a real text index can replace it without changing callers.
type Searcher interface {
	Search(query string, snap Snapshot) Results
}

// Index matches by case-insensitive substring over one composite string
// per record. Results keep collection priority (patients, appointments,
// treatments, staff) then input order, truncated to MaxResults.
type Index struct {
	// Location renders appointment times in subtitles. Nil means UTC.
	Location *time.Location
}

var _ Searcher = Index{}

func composite(parts ...string) string {
	return strings.ToLower(strings.Join(parts, " "))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (ix Index) Search(query string, snap Snapshot) Results {
	q := strings.ToLower(strings.TrimSpace(query))
	res := Results{Query: query, Items: []Result{}}
	if q == "" {
		return res
	}
	res.Searched = true

	add := func(r Result) bool {
		r.Destination = r.EntityType.Destination(r.ID)
		res.Items = append(res.Items, r)
		return len(res.Items) < MaxResults
	}

	for _, p := range snap.Patients {
		if !strings.Contains(composite(p.FullName(), p.Phone, deref(p.Email)), q) {
			continue
		}
		if !add(Result{ID: p.ID, EntityType: EntityPatient, Title: p.FullName(), Subtitle: p.Phone}) {
			return res
		}
	}

	loc := ix.Location
	if loc == nil {
		loc = time.UTC
	}
	for _, a := range snap.Appointments {
		if !strings.Contains(composite(a.PatientName(), a.TreatmentName(), a.StaffName()), q) {
			continue
		}
		title := a.PatientName()
		if title == "" {
			title = "Appointment"
		}
		subtitle := a.StartTime.In(loc).Format("2006-01-02 15:04")
		if name := a.TreatmentName(); name != "" {
			subtitle += " · " + name
		}
		if !add(Result{ID: a.ID, EntityType: EntityAppointment, Title: title, Subtitle: subtitle}) {
			return res
		}
	}

	for _, t := range snap.Treatments {
		if !strings.Contains(composite(t.Name, deref(t.Description)), q) {
			continue
		}
		if !add(Result{ID: t.ID, EntityType: EntityTreatment, Title: t.Name, Subtitle: deref(t.Category)}) {
			return res
		}
	}

	for _, s := range snap.Staff {
		if !strings.Contains(composite(s.FullName(), s.Role, deref(s.Email)), q) {
			continue
		}
		if !add(Result{ID: s.ID, EntityType: EntityStaff, Title: s.FullName(), Subtitle: s.Role}) {
			return res
		}
	}
	return res
}
