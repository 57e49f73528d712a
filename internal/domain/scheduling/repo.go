package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dentalops/dentalops/internal/platform/db"
)

// AppointmentRepository reads joined views and writes narrow rows.
// Appointments are archived, never deleted.
type AppointmentRepository interface {
	List(ctx context.Context, ownerID string, opts db.ListOptions) ([]*AppointmentView, error)
	GetByID(ctx context.Context, ownerID string, id uuid.UUID) (*AppointmentView, error)
	Create(ctx context.Context, a *Appointment) error
	Update(ctx context.Context, a *Appointment) error
	Archive(ctx context.Context, ownerID string, id uuid.UUID, at time.Time) error
}
