package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
	// PairHasStatus reports whether any appointment between the pair is in
	// one of the given states.
	PairHasStatus(ctx context.Context, patientID, doctorID uuid.UUID, statuses []Status) (bool, error)
	// PairHasUpcoming reports whether any non-cancelled appointment between
	// the pair is dated now or later.
	PairHasUpcoming(ctx context.Context, patientID, doctorID uuid.UUID, now time.Time) (bool, error)
	// AssignedDoctor resolves the doctor most recently booked by the
	// patient, excluding cancelled appointments.
	AssignedDoctor(ctx context.Context, patientID uuid.UUID) (*uuid.UUID, error)
}
