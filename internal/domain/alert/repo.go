package alert

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, a *Alert) error
	GetByID(ctx context.Context, id uuid.UUID) (*Alert, error)
	Update(ctx context.Context, a *Alert) error
	// FindActiveByPatientAndType returns the newest ACTIVE, unexpired
	// alert of the given type for the patient, or nil when none exists.
	FindActiveByPatientAndType(ctx context.Context, patientID uuid.UUID, typ Type, now time.Time) (*Alert, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Alert, int, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Alert, int, error)
	// ActiveCriticalExists reports whether an ACTIVE CRITICAL alert
	// links the patient to the doctor and has not expired by now.
	ActiveCriticalExists(ctx context.Context, patientID, doctorID uuid.UUID, now time.Time) (bool, error)
	// MarkExpired flips ACTIVE rows past their TTL to EXPIRED and
	// returns how many rows changed.
	MarkExpired(ctx context.Context, now time.Time) (int64, error)
}
