package appointment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/carelink/carelink/internal/platform/apperr"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, a *Appointment) error {
	if a.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required: %w", apperr.ErrValidation)
	}
	if a.DoctorID == uuid.Nil {
		return fmt.Errorf("doctor_id is required: %w", apperr.ErrValidation)
	}
	if a.AppointmentDate.IsZero() {
		return fmt.Errorf("appointment_date is required: %w", apperr.ErrValidation)
	}
	if a.Status == "" {
		a.Status = StatusRequested
	} else if _, err := ParseStatus(string(a.Status)); err != nil {
		return err
	}
	if a.PaymentStatus == "" {
		a.PaymentStatus = PaymentUnpaid
	}
	return s.repo.Create(ctx, a)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, raw string) error {
	status, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	return s.repo.UpdateStatus(ctx, id, status)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.repo.ListByDoctor(ctx, doctorID, limit, offset)
}

// PairHasQualifying reports a clinical relationship in any non-terminal or
// completed state, regardless of date.
func (s *Service) PairHasQualifying(ctx context.Context, patientID, doctorID uuid.UUID) (bool, error) {
	return s.repo.PairHasStatus(ctx, patientID, doctorID, QualifyingStatuses)
}

// PairHasUpcoming reports a still-upcoming, non-cancelled booking.
func (s *Service) PairHasUpcoming(ctx context.Context, patientID, doctorID uuid.UUID, now time.Time) (bool, error) {
	return s.repo.PairHasUpcoming(ctx, patientID, doctorID, now)
}

// AssignedDoctor resolves the patient's current doctor, if any.
func (s *Service) AssignedDoctor(ctx context.Context, patientID uuid.UUID) (*uuid.UUID, error) {
	return s.repo.AssignedDoctor(ctx, patientID)
}
