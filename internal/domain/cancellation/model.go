package cancellation

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/carelink/carelink/internal/platform/apperr"
)

// Status is one-way: PENDING moves to APPROVED or REJECTED exactly
// once and never back.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// Decision is the reviewer's verdict on a pending request.
type Decision string

const (
	DecisionApprove Decision = "APPROVE"
	DecisionReject  Decision = "REJECT"
)

func ParseDecision(s string) (Decision, error) {
	switch Decision(s) {
	case DecisionApprove, DecisionReject:
		return Decision(s), nil
	}
	return "", fmt.Errorf("%w: unknown decision %q", apperr.ErrValidation, s)
}

type Request struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	AppointmentID uuid.UUID  `db:"appointment_id" json:"appointment_id"`
	RequestedBy   uuid.UUID  `db:"requested_by" json:"requested_by"`
	Reason        string     `db:"reason" json:"reason"`
	Status        Status     `db:"status" json:"status"`
	RefundAmount  float64    `db:"refund_amount" json:"refund_amount"`
	ReviewedBy    *uuid.UUID `db:"reviewed_by" json:"reviewed_by,omitempty"`
	ReviewedAt    *time.Time `db:"reviewed_at" json:"reviewed_at,omitempty"`
	ReviewNote    *string    `db:"review_note" json:"review_note,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}
