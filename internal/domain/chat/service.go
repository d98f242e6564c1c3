package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carelink/carelink/internal/platform/apperr"
	"github.com/carelink/carelink/internal/platform/auth"
	"github.com/carelink/carelink/internal/platform/ws"
)

type Service struct {
	repo         Repository
	appointments AppointmentReader
	alerts       AlertReader
	pub          Publisher
	log          zerolog.Logger
	now          func() time.Time
}

// Publisher pushes a delivered message to the recipient's live
// sessions.
type Publisher interface {
	Fanout(room string, payload interface{}) int
}

func NewService(repo Repository, appointments AppointmentReader, alerts AlertReader, pub Publisher, log zerolog.Logger) *Service {
	return &Service{
		repo:         repo,
		appointments: appointments,
		alerts:       alerts,
		pub:          pub,
		log:          log,
		now:          time.Now,
	}
}

// Allowed decides whether the patient and doctor may chat at the given
// instant. Any one rule suffices: a qualifying appointment between
// them, an upcoming non-cancelled one, or an active critical alert
// linking them. The decision is never cached; every message re-asks.
func (s *Service) Allowed(ctx context.Context, patientID, doctorID uuid.UUID, now time.Time) (bool, error) {
	ok, err := s.appointments.PairHasQualifying(ctx, patientID, doctorID)
	if err != nil || ok {
		return ok, err
	}
	ok, err = s.appointments.PairHasUpcoming(ctx, patientID, doctorID, now)
	if err != nil || ok {
		return ok, err
	}
	return s.alerts.ActiveCriticalLink(ctx, patientID, doctorID, now)
}

func (s *Service) authorize(ctx context.Context, patientID, doctorID uuid.UUID) error {
	ok, err := s.Allowed(ctx, patientID, doctorID, s.now())
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no care relationship between patient and doctor: %w", apperr.ErrForbidden)
	}
	return nil
}

type SendInput struct {
	PatientID  uuid.UUID
	DoctorID   uuid.UUID
	SenderRole string
	Body       string
}

func (s *Service) Send(ctx context.Context, in SendInput) (*Message, error) {
	if in.Body == "" {
		return nil, fmt.Errorf("%w: body is required", apperr.ErrValidation)
	}
	if in.PatientID == uuid.Nil || in.DoctorID == uuid.Nil {
		return nil, fmt.Errorf("%w: patient_id and doctor_id are required", apperr.ErrValidation)
	}
	if err := s.authorize(ctx, in.PatientID, in.DoctorID); err != nil {
		return nil, err
	}
	m := &Message{
		PatientID:  in.PatientID,
		DoctorID:   in.DoctorID,
		SenderRole: in.SenderRole,
		Body:       in.Body,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}
	s.deliver(m)
	return m, nil
}

func (s *Service) History(ctx context.Context, patientID, doctorID uuid.UUID, limit, offset int) ([]*Message, int, error) {
	if err := s.authorize(ctx, patientID, doctorID); err != nil {
		return nil, 0, err
	}
	return s.repo.ListByPair(ctx, patientID, doctorID, limit, offset)
}

func (s *Service) deliver(m *Message) {
	msg := map[string]interface{}{"event": "chat.message", "message": m}
	if m.SenderRole == auth.RoleDoctor {
		s.pub.Fanout(ws.RoomKey(ws.RolePatient, m.PatientID), msg)
	} else {
		s.pub.Fanout(ws.RoomKey(ws.RoleDoctor, m.DoctorID), msg)
	}
}
