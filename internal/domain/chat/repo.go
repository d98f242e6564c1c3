package chat

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, m *Message) error
	ListByPair(ctx context.Context, patientID, doctorID uuid.UUID, limit, offset int) ([]*Message, int, error)
}

// AppointmentReader is the slice of the appointment service the
// authorization rules need.
type AppointmentReader interface {
	PairHasQualifying(ctx context.Context, patientID, doctorID uuid.UUID) (bool, error)
	PairHasUpcoming(ctx context.Context, patientID, doctorID uuid.UUID, now time.Time) (bool, error)
}

// AlertReader answers whether an active critical alert currently links
// a patient to a doctor.
type AlertReader interface {
	ActiveCriticalLink(ctx context.Context, patientID, doctorID uuid.UUID, now time.Time) (bool, error)
}
