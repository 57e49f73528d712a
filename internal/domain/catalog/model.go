package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Treatment is a catalog entry referenced by appointments. Deleting one
// never cascades.
type Treatment struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	OwnerID         string          `db:"owner_id" json:"-"`
	Name            string          `db:"name" json:"name"`
	Description     *string         `db:"description" json:"description,omitempty"`
	Category        *string         `db:"category" json:"category,omitempty"`
	DurationMinutes int             `db:"duration_minutes" json:"duration_minutes"`
	Price           decimal.Decimal `db:"price" json:"price"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

func (t *Treatment) Summary() TreatmentSummary {
	return TreatmentSummary{ID: t.ID, Name: t.Name, Description: t.Description, Category: t.Category, Price: t.Price}
}

// TreatmentSummary is the slice of a treatment joined onto appointment rows.
type TreatmentSummary struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	Category    *string         `json:"category,omitempty"`
	Price       decimal.Decimal `json:"price"`
}
