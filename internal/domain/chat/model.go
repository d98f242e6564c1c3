package chat

import (
	"time"

	"github.com/google/uuid"
)

type Message struct {
	ID         uuid.UUID `db:"id" json:"id"`
	PatientID  uuid.UUID `db:"patient_id" json:"patient_id"`
	DoctorID   uuid.UUID `db:"doctor_id" json:"doctor_id"`
	SenderRole string    `db:"sender_role" json:"sender_role"`
	Body       string    `db:"body" json:"body"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
