package identity

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dentalops/dentalops/pkg/caldate"
)

// Patient maps to the patient table.
type Patient struct {
	ID               uuid.UUID     `db:"id" json:"id"`
	OwnerID          string        `db:"owner_id" json:"-"`
	FirstName        string        `db:"first_name" json:"first_name"`
	LastName         string        `db:"last_name" json:"last_name"`
	Phone            string        `db:"phone" json:"phone"`
	Email            *string       `db:"email" json:"email,omitempty"`
	DateOfBirth      *caldate.Date `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Address          *string       `db:"address" json:"address,omitempty"`
	EmergencyContact *string       `db:"emergency_contact" json:"emergency_contact,omitempty"`
	MedicalHistory   *string       `db:"medical_history" json:"medical_history,omitempty"`
	Allergies        *string       `db:"allergies" json:"allergies,omitempty"`
	InsuranceNote    *string       `db:"insurance_note" json:"insurance_note,omitempty"`
	CreatedAt        time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time     `db:"updated_at" json:"updated_at"`
}

func (p *Patient) FullName() string {
	return joinName(p.FirstName, p.LastName)
}

func (p *Patient) Summary() PatientSummary {
	return PatientSummary{ID: p.ID, FirstName: p.FirstName, LastName: p.LastName, Phone: p.Phone, Email: p.Email}
}

// Staff maps to the staff table. Role is free-form.
type Staff struct {
	ID             uuid.UUID `db:"id" json:"id"`
	OwnerID        string    `db:"owner_id" json:"-"`
	FirstName      string    `db:"first_name" json:"first_name"`
	LastName       string    `db:"last_name" json:"last_name"`
	Phone          *string   `db:"phone" json:"phone,omitempty"`
	Email          *string   `db:"email" json:"email,omitempty"`
	Role           string    `db:"role" json:"role"`
	Specialization *string   `db:"specialization" json:"specialization,omitempty"`
	LicenseNumber  *string   `db:"license_number" json:"license_number,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

func (s *Staff) FullName() string {
	return joinName(s.FirstName, s.LastName)
}

func (s *Staff) Summary() StaffSummary {
	return StaffSummary{ID: s.ID, FirstName: s.FirstName, LastName: s.LastName, Role: s.Role, Email: s.Email}
}

// PatientSummary is the patient projection joined onto appointment, ledger
// and prescription rows.
type PatientSummary struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Phone     string    `json:"phone"`
	Email     *string   `json:"email,omitempty"`
}

func (p PatientSummary) FullName() string {
	return joinName(p.FirstName, p.LastName)
}

// StaffSummary is the staff projection joined onto appointment and
// prescription rows.
type StaffSummary struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      string    `json:"role"`
	Email     *string   `json:"email,omitempty"`
}

func (s StaffSummary) FullName() string {
	return joinName(s.FirstName, s.LastName)
}

func joinName(first, last string) string {
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}
