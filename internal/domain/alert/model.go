package alert

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/carelink/carelink/internal/platform/apperr"
)

// Type classifies what triggered an alert.
type Type string

const (
	TypeVitalsCritical   Type = "VITALS_CRITICAL"
	TypeEmergencyRequest Type = "EMERGENCY_REQUEST"
	TypeSystem           Type = "SYSTEM"
)

func ParseType(s string) (Type, error) {
	switch Type(s) {
	case TypeVitalsCritical, TypeEmergencyRequest, TypeSystem:
		return Type(s), nil
	}
	return "", fmt.Errorf("%w: unknown alert type %q", apperr.ErrValidation, s)
}

// ChatUnlockTypes are the alert types whose active critical alerts
// grant a chat channel between the patient and the alerted doctor.
// A SYSTEM alert never unlocks chat regardless of severity.
var ChatUnlockTypes = []Type{TypeVitalsCritical, TypeEmergencyRequest}

// Severity orders alerts by urgency. Rank gaps are deliberate so a
// severity can be inserted later without remapping stored values.
type Severity string

const (
	SeverityInfo     Severity = "INFO"
	SeverityWarning  Severity = "WARNING"
	SeverityCritical Severity = "CRITICAL"
)

var severityRank = map[Severity]int{
	SeverityInfo:     10,
	SeverityWarning:  20,
	SeverityCritical: 30,
}

func ParseSeverity(s string) (Severity, error) {
	if _, ok := severityRank[Severity(s)]; ok {
		return Severity(s), nil
	}
	return "", fmt.Errorf("%w: unknown severity %q", apperr.ErrValidation, s)
}

// Rank returns the numeric urgency of the severity, 0 if unknown.
func (s Severity) Rank() int { return severityRank[s] }

type Status string

const (
	StatusActive       Status = "ACTIVE"
	StatusAcknowledged Status = "ACKNOWLEDGED"
	StatusExpired      Status = "EXPIRED"
)

type Alert struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	PatientID      uuid.UUID  `db:"patient_id" json:"patient_id"`
	DoctorID       *uuid.UUID `db:"doctor_id" json:"doctor_id,omitempty"`
	Type           Type       `db:"type" json:"type"`
	Severity       Severity   `db:"severity" json:"severity"`
	Status         Status     `db:"status" json:"status"`
	Title          string     `db:"title" json:"title"`
	Message        string     `db:"message" json:"message"`
	ExpiresAt      *time.Time `db:"expires_at" json:"expires_at,omitempty"`
	AcknowledgedAt *time.Time `db:"acknowledged_at" json:"acknowledged_at,omitempty"`
	AcknowledgedBy *uuid.UUID `db:"acknowledged_by" json:"acknowledged_by,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// ExpiredAt reports whether the alert's TTL has elapsed at the given
// instant. Stored status is not consulted; expiry is decided at read
// time so a stale row never authorizes anything.
func (a *Alert) ExpiredAt(now time.Time) bool {
	return a.ExpiresAt != nil && !a.ExpiresAt.After(now)
}

// EffectiveStatus folds lazy expiry into the stored status.
func (a *Alert) EffectiveStatus(now time.Time) Status {
	if a.Status == StatusActive && a.ExpiredAt(now) {
		return StatusExpired
	}
	return a.Status
}
