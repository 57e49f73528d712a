package scheduling

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dentalops/dentalops/internal/platform/apperr"
)

// SlotMinutes is the booking granularity. Durations are positive multiples.
const SlotMinutes = 15

var startLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseStart parses an appointment start. RFC 3339 values keep their
// offset; local layouts without an offset are read in loc.
func ParseStart(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, apperr.Validation("start_time", "is required")
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range startLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, apperr.Validation("start_time", "cannot parse %q", s)
}

func validateDuration(minutes int) error {
	if minutes < SlotMinutes {
		return apperr.Validation("duration_minutes", "must be at least %d", SlotMinutes)
	}
	if minutes%SlotMinutes != 0 {
		return apperr.Validation("duration_minutes", "must be a multiple of %d", SlotMinutes)
	}
	return nil
}

// CreateRequest carries the fields of a new booking.
type CreateRequest struct {
	PatientID       uuid.UUID  `json:"patient_id"`
	StaffID         *uuid.UUID `json:"staff_id,omitempty"`
	TreatmentID     *uuid.UUID `json:"treatment_id,omitempty"`
	Start           string     `json:"start_time"`
	DurationMinutes int        `json:"duration_minutes"`
	Notes           *string    `json:"notes,omitempty"`
}

// Patch is a partial edit. Nil fields are left unchanged; ClearStaff and
// ClearTreatment unset the optional references.
type Patch struct {
	PatientID       *uuid.UUID `json:"patient_id,omitempty"`
	StaffID         *uuid.UUID `json:"staff_id,omitempty"`
	ClearStaff      bool       `json:"clear_staff,omitempty"`
	TreatmentID     *uuid.UUID `json:"treatment_id,omitempty"`
	ClearTreatment  bool       `json:"clear_treatment,omitempty"`
	Start           *string    `json:"start_time,omitempty"`
	DurationMinutes *int       `json:"duration_minutes,omitempty"`
	Status          *string    `json:"status,omitempty"`
	Notes           *string    `json:"notes,omitempty"`
}

// Engine owns appointment validity and status transitions. It holds no
// state beyond its configuration and is safe for concurrent use.
type Engine struct {
	policy StatusPolicy
	loc    *time.Location
}

// NewEngine returns an Engine. Offset-less start times are read in loc.
func NewEngine(policy StatusPolicy, loc *time.Location) *Engine {
	if policy == "" {
		policy = PolicyTerminal
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Engine{policy: policy, loc: loc}
}

func (e *Engine) Policy() StatusPolicy     { return e.policy }
func (e *Engine) Location() *time.Location { return e.loc }

// New builds a scheduled appointment from req.
func (e *Engine) New(req CreateRequest) (*Appointment, error) {
	if req.PatientID == uuid.Nil {
		return nil, apperr.Validation("patient_id", "is required")
	}
	start, err := ParseStart(req.Start, e.loc)
	if err != nil {
		return nil, err
	}
	if err := validateDuration(req.DurationMinutes); err != nil {
		return nil, err
	}
	return &Appointment{
		PatientID:       req.PatientID,
		StaffID:         req.StaffID,
		TreatmentID:     req.TreatmentID,
		StartTime:       start,
		DurationMinutes: req.DurationMinutes,
		Status:          StatusScheduled,
		Notes:           req.Notes,
	}, nil
}

// resolved holds a patch after parsing, ready to be applied.
type resolved struct {
	start  *time.Time
	status *Status
}

// CheckPatch validates the shape of p without reference to a stored record.
func (e *Engine) CheckPatch(p Patch) error {
	_, err := e.resolve(p)
	return err
}

func (e *Engine) resolve(p Patch) (resolved, error) {
	var r resolved
	if p.PatientID != nil && *p.PatientID == uuid.Nil {
		return r, apperr.Validation("patient_id", "is required")
	}
	if p.Start != nil {
		t, err := ParseStart(*p.Start, e.loc)
		if err != nil {
			return r, err
		}
		r.start = &t
	}
	if p.DurationMinutes != nil {
		if err := validateDuration(*p.DurationMinutes); err != nil {
			return r, err
		}
	}
	if p.Status != nil {
		st, err := ParseStatus(*p.Status)
		if err != nil {
			return r, err
		}
		r.status = &st
	}
	return r, nil
}

// Apply edits a in place. Either every field of p is applied or, on error,
// none is.
func (e *Engine) Apply(a *Appointment, p Patch) error {
	r, err := e.resolve(p)
	if err != nil {
		return err
	}
	if r.status != nil {
		if err := e.policy.CanTransition(a.Status, *r.status); err != nil {
			return err
		}
	}

	if p.PatientID != nil {
		a.PatientID = *p.PatientID
	}
	switch {
	case p.ClearStaff:
		a.StaffID = nil
	case p.StaffID != nil:
		a.StaffID = p.StaffID
	}
	switch {
	case p.ClearTreatment:
		a.TreatmentID = nil
	case p.TreatmentID != nil:
		a.TreatmentID = p.TreatmentID
	}
	if r.start != nil {
		a.StartTime = *r.start
	}
	if p.DurationMinutes != nil {
		a.DurationMinutes = *p.DurationMinutes
	}
	if r.status != nil {
		a.Status = *r.status
	}
	if p.Notes != nil {
		a.Notes = p.Notes
	}
	return nil
}

// Cancel moves a to cancelled and reports whether anything changed.
// Cancelling a cancelled appointment is a no-op. Outside PolicyPermissive a
// completed appointment cannot be cancelled.
func (e *Engine) Cancel(a *Appointment) (bool, error) {
	if a.Status == StatusCancelled {
		return false, nil
	}
	if a.Status == StatusCompleted && e.policy != PolicyPermissive {
		return false, apperr.Validation("status", "appointment is completed and cannot be cancelled")
	}
	a.Status = StatusCancelled
	return true, nil
}

// Window is the half-open interval [Start, End).
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Overlaps reports whether w and o share any instant. Touching windows do
// not overlap.
func (w Window) Overlaps(o Window) bool {
	return w.Start.Before(o.End) && o.Start.Before(w.End)
}

func (w Window) Duration() time.Duration { return w.End.Sub(w.Start) }

// EffectiveWindow returns [start, start+duration).
func EffectiveWindow(a *Appointment) Window {
	return Window{
		Start: a.StartTime,
		End:   a.StartTime.Add(time.Duration(a.DurationMinutes) * time.Minute),
	}
}

// IsActiveToday reports whether a starts on ref's calendar day, read in
// ref's location, and is not cancelled.
func IsActiveToday(a *Appointment, ref time.Time) bool {
	if a.Status == StatusCancelled {
		return false
	}
	y1, m1, d1 := a.StartTime.In(ref.Location()).Date()
	y2, m2, d2 := ref.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// Overlapping returns the appointments in others that double-book
// candidate's staff member. Cancelled appointments and appointments without
// staff never conflict. Double bookings are reported, not rejected.
func Overlapping(candidate *Appointment, others []*AppointmentView) []*AppointmentView {
	if candidate.StaffID == nil || candidate.Status == StatusCancelled {
		return nil
	}
	w := EffectiveWindow(candidate)
	var out []*AppointmentView
	for _, o := range others {
		if o.ID == candidate.ID || o.Status == StatusCancelled || o.StaffID == nil {
			continue
		}
		if *o.StaffID != *candidate.StaffID {
			continue
		}
		if w.Overlaps(EffectiveWindow(&o.Appointment)) {
			out = append(out, o)
		}
	}
	return out
}
