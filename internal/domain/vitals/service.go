package vitals

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carelink/carelink/internal/domain/alert"
	"github.com/carelink/carelink/internal/platform/apperr"
)

// AlertRaiser raises an alert for a critical reading. alert.Service
// satisfies it.
type AlertRaiser interface {
	Raise(ctx context.Context, in alert.RaiseInput) (*alert.Alert, error)
}

// DoctorResolver finds the doctor currently responsible for a patient,
// nil when the patient has none.
type DoctorResolver interface {
	AssignedDoctor(ctx context.Context, patientID uuid.UUID) (*uuid.UUID, error)
}

type Service struct {
	alerts  AlertRaiser
	doctors DoctorResolver
	log     zerolog.Logger
}

func NewService(alerts AlertRaiser, doctors DoctorResolver, log zerolog.Logger) *Service {
	return &Service{alerts: alerts, doctors: doctors, log: log}
}

// IngestBatch evaluates each reading against the clinical bounds and
// raises a VITALS_CRITICAL alert per breaching row. Rows are isolated:
// a malformed row is recorded in the result and the rest of the batch
// continues.
func (s *Service) IngestBatch(ctx context.Context, patientID uuid.UUID, rows []Reading) (*BatchResult, error) {
	if patientID == uuid.Nil {
		return nil, fmt.Errorf("%w: patient_id is required", apperr.ErrValidation)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: batch is empty", apperr.ErrValidation)
	}

	// One lookup per batch; every critical row is addressed to the
	// same doctor.
	doctorID, err := s.doctors.AssignedDoctor(ctx, patientID)
	if err != nil {
		return nil, err
	}

	res := &BatchResult{Total: len(rows)}
	for i := range rows {
		row := &rows[i]
		if err := row.validate(); err != nil {
			res.Failed++
			res.Errors = append(res.Errors, RowError{Row: i, Reason: err.Error()})
			continue
		}
		breaches := row.Breaches()
		if len(breaches) > 0 {
			a, err := s.alerts.Raise(ctx, alert.RaiseInput{
				PatientID: patientID,
				DoctorID:  doctorID,
				Type:      string(alert.TypeVitalsCritical),
				Severity:  string(alert.SeverityCritical),
				Title:     "Critical vitals reading",
				Message:   criticalMessage(breaches),
			})
			if err != nil {
				res.Failed++
				res.Errors = append(res.Errors, RowError{Row: i, Reason: err.Error()})
				continue
			}
			res.AlertIDs = append(res.AlertIDs, a.ID)
		}
		res.Processed++
	}

	if res.Failed > 0 {
		s.log.Warn().
			Str("patient_id", patientID.String()).
			Int("failed", res.Failed).
			Int("total", res.Total).
			Msg("vitals batch had failed rows")
	}
	return res, nil
}
