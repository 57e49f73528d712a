package prescription

import (
	"time"

	"github.com/google/uuid"

	"github.com/dentalops/dentalops/internal/domain/identity"
	"github.com/dentalops/dentalops/pkg/caldate"
)

type Frequency string

const (
	OnceDaily       Frequency = "once_daily"
	TwiceDaily      Frequency = "twice_daily"
	ThreeTimesDaily Frequency = "three_times_daily"
	FourTimesDaily  Frequency = "four_times_daily"
	EveryOtherDay   Frequency = "every_other_day"
	Weekly          Frequency = "weekly"
	AsNeeded        Frequency = "as_needed"
)

var validFrequencies = map[Frequency]bool{
	OnceDaily: true, TwiceDaily: true, ThreeTimesDaily: true, FourTimesDaily: true,
	EveryOtherDay: true, Weekly: true, AsNeeded: true,
}

func (f Frequency) Valid() bool { return validFrequencies[f] }

// MedicineLine is one drug on a prescription. Position preserves the
// order lines were entered in.
type MedicineLine struct {
	ID             uuid.UUID `db:"id" json:"id"`
	PrescriptionID uuid.UUID `db:"prescription_id" json:"-"`
	Position       int       `db:"position" json:"position"`
	Name           string    `db:"name" json:"name"`
	Dosage         string    `db:"dosage" json:"dosage"`
	Frequency      Frequency `db:"frequency" json:"frequency"`
	Duration       *string   `db:"duration" json:"duration,omitempty"`
}

type Prescription struct {
	ID             uuid.UUID      `db:"id" json:"id"`
	OwnerID        string         `db:"owner_id" json:"-"`
	PatientID      uuid.UUID      `db:"patient_id" json:"patient_id"`
	StaffID        uuid.UUID      `db:"staff_id" json:"staff_id"`
	Instructions   *string        `db:"instructions" json:"instructions,omitempty"`
	PrescribedDate caldate.Date   `db:"prescribed_date" json:"prescribed_date"`
	Lines          []MedicineLine `json:"lines"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

// PrescriptionView joins the patient and prescriber summaries.
type PrescriptionView struct {
	Prescription
	Patient *identity.PatientSummary `json:"patient,omitempty"`
	Staff   *identity.StaffSummary   `json:"staff,omitempty"`
}
