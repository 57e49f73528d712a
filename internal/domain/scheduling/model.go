package scheduling

import (
	"time"

	"github.com/google/uuid"

	"github.com/dentalops/dentalops/internal/domain/catalog"
	"github.com/dentalops/dentalops/internal/domain/identity"
)

// Appointment is the write-side row of the appointment table.
type Appointment struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	OwnerID         string     `db:"owner_id" json:"-"`
	PatientID       uuid.UUID  `db:"patient_id" json:"patient_id"`
	StaffID         *uuid.UUID `db:"staff_id" json:"staff_id,omitempty"`
	TreatmentID     *uuid.UUID `db:"treatment_id" json:"treatment_id,omitempty"`
	StartTime       time.Time  `db:"start_time" json:"start_time"`
	DurationMinutes int        `db:"duration_minutes" json:"duration_minutes"`
	Status          Status     `db:"status" json:"status"`
	Notes           *string    `db:"notes" json:"notes,omitempty"`
	ClosedAt        *time.Time `db:"closed_at" json:"closed_at,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// AppointmentView is the read side: an appointment joined to the summaries
// of its patient, staff member and treatment. A summary is nil when the
// reference is unset or no longer resolves.
type AppointmentView struct {
	Appointment
	Patient   *identity.PatientSummary  `json:"patient,omitempty"`
	Staff     *identity.StaffSummary    `json:"staff,omitempty"`
	Treatment *catalog.TreatmentSummary `json:"treatment,omitempty"`
}

// PatientName returns the joined patient's full name, or "".
func (v *AppointmentView) PatientName() string {
	if v.Patient == nil {
		return ""
	}
	return v.Patient.FullName()
}

func (v *AppointmentView) StaffName() string {
	if v.Staff == nil {
		return ""
	}
	return v.Staff.FullName()
}

func (v *AppointmentView) TreatmentName() string {
	if v.Treatment == nil {
		return ""
	}
	return v.Treatment.Name
}
