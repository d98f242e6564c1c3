package vitals

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carelink/carelink/internal/domain/alert"
	"github.com/carelink/carelink/internal/platform/apperr"
)

type mockRaiser struct {
	raised []alert.RaiseInput
	err    error
}

func (m *mockRaiser) Raise(_ context.Context, in alert.RaiseInput) (*alert.Alert, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.raised = append(m.raised, in)
	return &alert.Alert{ID: uuid.New(), PatientID: in.PatientID, DoctorID: in.DoctorID}, nil
}

type mockResolver struct {
	doctorID *uuid.UUID
}

func (m *mockResolver) AssignedDoctor(_ context.Context, _ uuid.UUID) (*uuid.UUID, error) {
	return m.doctorID, nil
}

func intp(v int) *int           { return &v }
func floatp(v float64) *float64 { return &v }

func normalReading() Reading {
	return Reading{
		HeartRate:        intp(72),
		SystolicBP:       intp(120),
		DiastolicBP:      intp(80),
		OxygenSaturation: intp(98),
		Temperature:      floatp(36.6),
		RespiratoryRate:  intp(16),
	}
}

func TestIngestBatch_NormalRowsRaiseNothing(t *testing.T) {
	raiser := &mockRaiser{}
	svc := NewService(raiser, &mockResolver{}, zerolog.Nop())

	res, err := svc.IngestBatch(context.Background(), uuid.New(), []Reading{normalReading(), normalReading()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 2 || res.Processed != 2 || res.Failed != 0 {
		t.Errorf("unexpected counts: %+v", res)
	}
	if len(raiser.raised) != 0 {
		t.Errorf("expected no alerts, got %d", len(raiser.raised))
	}
}

func TestIngestBatch_CriticalRowRaisesAlert(t *testing.T) {
	raiser := &mockRaiser{}
	doctorID := uuid.New()
	svc := NewService(raiser, &mockResolver{doctorID: &doctorID}, zerolog.Nop())

	r := normalReading()
	r.HeartRate = intp(150)
	r.OxygenSaturation = intp(88)

	res, err := svc.IngestBatch(context.Background(), uuid.New(), []Reading{r})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Processed != 1 || len(res.AlertIDs) != 1 {
		t.Fatalf("expected one processed row with one alert, got %+v", res)
	}
	if len(raiser.raised) != 1 {
		t.Fatalf("expected one raise, got %d", len(raiser.raised))
	}
	in := raiser.raised[0]
	if in.Type != string(alert.TypeVitalsCritical) || in.Severity != string(alert.SeverityCritical) {
		t.Errorf("unexpected raise input: %+v", in)
	}
	if in.Title == "" {
		t.Error("raised alert must carry a title")
	}
	if in.DoctorID == nil || *in.DoctorID != doctorID {
		t.Error("alert must be addressed to the assigned doctor")
	}
}

func TestIngestBatch_RowsFailIndependently(t *testing.T) {
	raiser := &mockRaiser{}
	svc := NewService(raiser, &mockResolver{}, zerolog.Nop())

	bad := Reading{HeartRate: intp(-5)}
	empty := Reading{}
	critical := normalReading()
	critical.Temperature = floatp(39.4)

	res, err := svc.IngestBatch(context.Background(), uuid.New(),
		[]Reading{normalReading(), bad, critical, empty})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 4 || res.Processed != 2 || res.Failed != 2 {
		t.Errorf("unexpected counts: %+v", res)
	}
	if len(res.Errors) != 2 {
		t.Fatalf("expected 2 row errors, got %d", len(res.Errors))
	}
	if res.Errors[0].Row != 1 || res.Errors[1].Row != 3 {
		t.Errorf("row errors must carry the failing index: %+v", res.Errors)
	}
	if len(res.AlertIDs) != 1 {
		t.Errorf("the critical row must still raise its alert, got %d", len(res.AlertIDs))
	}
}

func TestIngestBatch_EmptyBatchRejected(t *testing.T) {
	svc := NewService(&mockRaiser{}, &mockResolver{}, zerolog.Nop())
	_, err := svc.IngestBatch(context.Background(), uuid.New(), nil)
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestBreaches_BoundaryValues(t *testing.T) {
	r := normalReading()
	r.HeartRate = intp(40)
	r.SystolicBP = intp(180)
	r.OxygenSaturation = intp(92)
	if got := r.Breaches(); len(got) != 0 {
		t.Errorf("boundary values are in range, got %v", got)
	}

	r.HeartRate = intp(39)
	r.OxygenSaturation = intp(91)
	if got := r.Breaches(); len(got) != 2 {
		t.Errorf("expected 2 breaches just outside bounds, got %v", got)
	}
}

func TestValidate_InvertedBloodPressure(t *testing.T) {
	r := Reading{SystolicBP: intp(90), DiastolicBP: intp(110)}
	if err := r.validate(); err == nil {
		t.Error("diastolic above systolic must be rejected")
	}
}
