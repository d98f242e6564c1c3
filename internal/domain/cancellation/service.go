package cancellation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carelink/carelink/internal/domain/appointment"
	"github.com/carelink/carelink/internal/platform/apperr"
)

// AppointmentUpdater is the slice of the appointment service the
// workflow needs. appointment.Service satisfies it.
type AppointmentUpdater interface {
	Get(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

// Auditor records who decided what. Recording failures must not fail
// the review, so the contract has no error return.
type Auditor interface {
	Record(ctx context.Context, actorID uuid.UUID, action, entityType string, entityID uuid.UUID, description string)
}

type Service struct {
	repo         Repository
	appointments AppointmentUpdater
	policy       RefundPolicy
	audit        Auditor
	log          zerolog.Logger
	now          func() time.Time
}

func NewService(repo Repository, appointments AppointmentUpdater, policy RefundPolicy, audit Auditor, log zerolog.Logger) *Service {
	return &Service{
		repo:         repo,
		appointments: appointments,
		policy:       policy,
		audit:        audit,
		log:          log,
		now:          time.Now,
	}
}

type RequestInput struct {
	AppointmentID uuid.UUID
	RequestedBy   uuid.UUID
	Reason        string
}

// Request opens a PENDING cancellation for an appointment. At most one
// PENDING request may exist per appointment; a duplicate fails with
// Conflict.
func (s *Service) Request(ctx context.Context, in RequestInput) (*Request, error) {
	if in.Reason == "" {
		return nil, fmt.Errorf("%w: reason is required", apperr.ErrValidation)
	}
	appt, err := s.appointments.Get(ctx, in.AppointmentID)
	if err != nil {
		return nil, err
	}
	if appt.PatientID != in.RequestedBy {
		return nil, fmt.Errorf("appointment %s does not belong to requester: %w", appt.ID, apperr.ErrForbidden)
	}
	if appt.Status == appointment.StatusCancelled {
		return nil, fmt.Errorf("appointment %s is already cancelled: %w", appt.ID, apperr.ErrConflict)
	}
	req := &Request{
		AppointmentID: in.AppointmentID,
		RequestedBy:   in.RequestedBy,
		Reason:        in.Reason,
		Status:        StatusPending,
	}
	if err := s.repo.Create(ctx, req); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, in.RequestedBy, "cancellation.requested", "cancellation_request", req.ID,
		fmt.Sprintf("cancellation requested for appointment %s", in.AppointmentID))
	return req, nil
}

type ReviewInput struct {
	RequestID  uuid.UUID
	ReviewerID uuid.UUID
	Decision   string
	Note       *string
}

// Review settles a PENDING request exactly once. Approval computes the
// refund from the policy and cancels the appointment; rejection leaves
// the appointment untouched and refunds nothing. A second review of
// the same request fails with AlreadyResolved no matter the decision.
func (s *Service) Review(ctx context.Context, in ReviewInput) (*Request, error) {
	decision, err := ParseDecision(in.Decision)
	if err != nil {
		return nil, err
	}
	req, err := s.repo.GetByID(ctx, in.RequestID)
	if err != nil {
		return nil, err
	}
	if req.Status != StatusPending {
		return nil, fmt.Errorf("cancellation request %s: %w", req.ID, apperr.ErrAlreadyResolved)
	}
	appt, err := s.appointments.Get(ctx, req.AppointmentID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	req.ReviewedBy = &in.ReviewerID
	req.ReviewedAt = &now
	req.ReviewNote = in.Note
	req.RefundAmount = 0
	if decision == DecisionApprove {
		req.Status = StatusApproved
		if amount := s.policy(appt, now); amount > 0 {
			req.RefundAmount = amount
		}
	} else {
		req.Status = StatusRejected
	}

	// The repo refuses the update if another reviewer got there first.
	if err := s.repo.Resolve(ctx, req); err != nil {
		return nil, err
	}

	if decision == DecisionApprove {
		if err := s.appointments.UpdateStatus(ctx, req.AppointmentID, string(appointment.StatusCancelled)); err != nil {
			return nil, fmt.Errorf("cancellation approved but appointment %s not updated: %w", req.AppointmentID, err)
		}
	}

	s.audit.Record(ctx, in.ReviewerID, "cancellation."+string(decision), "cancellation_request", req.ID,
		fmt.Sprintf("request %s %s, refund %.2f", req.ID, req.Status, req.RefundAmount))
	return req, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Request, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListPending(ctx context.Context, limit, offset int) ([]*Request, int, error) {
	return s.repo.ListByStatus(ctx, StatusPending, limit, offset)
}

func (s *Service) ListByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]*Request, error) {
	return s.repo.ListByAppointment(ctx, appointmentID)
}
