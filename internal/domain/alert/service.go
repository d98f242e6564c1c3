package alert

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carelink/carelink/internal/platform/apperr"
	"github.com/carelink/carelink/internal/platform/ws"
)

// Publisher pushes an event to every live session in a room.
// ws.Registry satisfies it.
type Publisher interface {
	Fanout(room string, payload interface{}) int
}

// DoctorResolver finds the doctor currently responsible for a patient,
// nil when the patient has none.
type DoctorResolver interface {
	AssignedDoctor(ctx context.Context, patientID uuid.UUID) (*uuid.UUID, error)
}

type Event struct {
	Event string `json:"event"`
	Alert *Alert `json:"alert"`
}

type Service struct {
	repo    Repository
	pub     Publisher
	doctors DoctorResolver
	log     zerolog.Logger
	window  time.Duration
	ttl     time.Duration
	locks   *keyedMutex
	now     func() time.Time
}

func NewService(repo Repository, pub Publisher, doctors DoctorResolver, log zerolog.Logger, window, ttl time.Duration) *Service {
	return &Service{
		repo:    repo,
		pub:     pub,
		doctors: doctors,
		log:     log,
		window:  window,
		ttl:     ttl,
		locks:   newKeyedMutex(),
		now:     time.Now,
	}
}

type RaiseInput struct {
	PatientID uuid.UUID
	DoctorID  *uuid.UUID
	Type      string
	Severity  string
	Title     string
	Message   string
}

// Raise validates, persists and fans out a new alert. Repeated
// VITALS_CRITICAL raises for the same patient inside the suppression
// window collapse into the existing alert: its TTL is extended and it
// is re-broadcast only when the new severity outranks the stored one.
func (s *Service) Raise(ctx context.Context, in RaiseInput) (*Alert, error) {
	typ, err := ParseType(in.Type)
	if err != nil {
		return nil, err
	}
	sev, err := ParseSeverity(in.Severity)
	if err != nil {
		return nil, err
	}
	if in.PatientID == uuid.Nil {
		return nil, fmt.Errorf("%w: patient_id is required", apperr.ErrValidation)
	}
	if in.Title == "" {
		return nil, fmt.Errorf("%w: title is required", apperr.ErrValidation)
	}
	if in.Message == "" {
		return nil, fmt.Errorf("%w: message is required", apperr.ErrValidation)
	}

	key := in.PatientID.String() + "|" + string(typ)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	now := s.now()

	if typ == TypeVitalsCritical {
		existing, err := s.repo.FindActiveByPatientAndType(ctx, in.PatientID, typ, now)
		if err != nil {
			return nil, err
		}
		if existing != nil && now.Sub(existing.CreatedAt) < s.window {
			return s.extend(ctx, existing, sev, now)
		}
	}

	expires := now.Add(s.ttl)
	a := &Alert{
		PatientID: in.PatientID,
		DoctorID:  in.DoctorID,
		Type:      typ,
		Severity:  sev,
		Status:    StatusActive,
		Title:     in.Title,
		Message:   in.Message,
		ExpiresAt: &expires,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	s.publish("alert.raised", a)
	return a, nil
}

// RaiseEmergency is the patient-facing panic path: an EMERGENCY_REQUEST
// alert raised by the patient for themselves, addressed to whichever
// doctor currently holds their care.
func (s *Service) RaiseEmergency(ctx context.Context, patientID uuid.UUID, message string) (*Alert, error) {
	if patientID == uuid.Nil {
		return nil, fmt.Errorf("%w: patient_id is required", apperr.ErrValidation)
	}
	if message == "" {
		message = "patient requested emergency assistance"
	}
	doctorID, err := s.doctors.AssignedDoctor(ctx, patientID)
	if err != nil {
		return nil, err
	}
	return s.Raise(ctx, RaiseInput{
		PatientID: patientID,
		DoctorID:  doctorID,
		Type:      string(TypeEmergencyRequest),
		Severity:  string(SeverityCritical),
		Title:     "Emergency assistance requested",
		Message:   message,
	})
}

// extend refreshes the TTL of a suppressed duplicate and escalates in
// place when the new raise is more severe.
func (s *Service) extend(ctx context.Context, existing *Alert, sev Severity, now time.Time) (*Alert, error) {
	escalated := sev.Rank() > existing.Severity.Rank()
	if escalated {
		existing.Severity = sev
	}
	expires := now.Add(s.ttl)
	existing.ExpiresAt = &expires
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}
	if escalated {
		s.publish("alert.escalated", existing)
	} else {
		s.log.Debug().Str("alert_id", existing.ID.String()).Msg("duplicate alert suppressed")
	}
	return existing, nil
}

// Acknowledge moves an ACTIVE alert to ACKNOWLEDGED. Only the doctor
// the alert is addressed to may acknowledge it; an alert whose TTL has
// lapsed is treated as gone even if a sweep has not caught it yet.
func (s *Service) Acknowledge(ctx context.Context, id, doctorID uuid.UUID) (*Alert, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.DoctorID == nil || *a.DoctorID != doctorID {
		return nil, fmt.Errorf("alert %s: %w", id, apperr.ErrForbidden)
	}
	now := s.now()
	if a.EffectiveStatus(now) != StatusActive {
		return nil, fmt.Errorf("alert %s is not active: %w", id, apperr.ErrNotFound)
	}
	a.Status = StatusAcknowledged
	a.AcknowledgedAt = &now
	a.AcknowledgedBy = &doctorID
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	s.publish("alert.acknowledged", a)
	return a, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Alert, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	a.Status = a.EffectiveStatus(s.now())
	return a, nil
}

func (s *Service) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Alert, int, error) {
	items, total, err := s.repo.ListByDoctor(ctx, doctorID, limit, offset)
	s.foldExpiry(items)
	return items, total, err
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Alert, int, error) {
	items, total, err := s.repo.ListByPatient(ctx, patientID, limit, offset)
	s.foldExpiry(items)
	return items, total, err
}

func (s *Service) foldExpiry(items []*Alert) {
	now := s.now()
	for _, a := range items {
		a.Status = a.EffectiveStatus(now)
	}
}

// ActiveCriticalLink reports whether an unexpired ACTIVE CRITICAL
// alert ties the patient to the doctor at the given instant.
func (s *Service) ActiveCriticalLink(ctx context.Context, patientID, doctorID uuid.UUID, now time.Time) (bool, error) {
	return s.repo.ActiveCriticalExists(ctx, patientID, doctorID, now)
}

// Sweep hardens lazy expiry into stored state. It is an optimization
// only; reads never trust stored ACTIVE without checking the TTL.
func (s *Service) Sweep(ctx context.Context) (int64, error) {
	n, err := s.repo.MarkExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Info().Int64("expired", n).Msg("alert sweep")
	}
	return n, nil
}

func (s *Service) publish(event string, a *Alert) {
	msg := Event{Event: event, Alert: a}
	if a.DoctorID != nil {
		s.pub.Fanout(ws.RoomKey(ws.RoleDoctor, *a.DoctorID), msg)
	}
	s.pub.Fanout(ws.RoomKey(ws.RolePatient, a.PatientID), msg)
}
