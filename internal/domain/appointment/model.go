package appointment

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/carelink/carelink/internal/platform/apperr"
)

// Status is the closed set of appointment lifecycle states.
type Status string

const (
	StatusRequested Status = "REQUESTED"
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// ParseStatus validates a raw status against the enumerated set.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusRequested, StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return Status(s), nil
	default:
		return "", fmt.Errorf("unknown appointment status %q: %w", s, apperr.ErrValidation)
	}
}

// Payment states for an appointment's fee.
const (
	PaymentUnpaid   = "UNPAID"
	PaymentPaid     = "PAID"
	PaymentRefunded = "REFUNDED"
)

// QualifyingStatuses are the states that establish a clinical relationship
// for chat purposes regardless of date.
var QualifyingStatuses = []Status{StatusPending, StatusConfirmed, StatusCompleted}

// Appointment maps to the appointment table.
type Appointment struct {
	ID              uuid.UUID `db:"id" json:"id"`
	PatientID       uuid.UUID `db:"patient_id" json:"patient_id"`
	DoctorID        uuid.UUID `db:"doctor_id" json:"doctor_id"`
	Status          Status    `db:"status" json:"status"`
	AppointmentDate time.Time `db:"appointment_date" json:"appointment_date"`
	PaymentStatus   string    `db:"payment_status" json:"payment_status"`
	Fee             float64   `db:"fee" json:"fee"`
	Reason          *string   `db:"reason" json:"reason,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}
