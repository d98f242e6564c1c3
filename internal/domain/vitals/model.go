package vitals

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Reading is one row of a vitals batch. Fields are pointers because
// devices report sparse measurements; an absent field is skipped, not
// treated as zero.
type Reading struct {
	HeartRate        *int       `json:"heart_rate,omitempty"`
	SystolicBP       *int       `json:"systolic_bp,omitempty"`
	DiastolicBP      *int       `json:"diastolic_bp,omitempty"`
	OxygenSaturation *int       `json:"oxygen_saturation,omitempty"`
	Temperature      *float64   `json:"temperature,omitempty"`
	RespiratoryRate  *int       `json:"respiratory_rate,omitempty"`
	RecordedAt       *time.Time `json:"recorded_at,omitempty"`
}

// Clinical bounds. A measurement outside its range is critical.
const (
	HeartRateMin   = 40
	HeartRateMax   = 130
	SystolicMin    = 90
	SystolicMax    = 180
	DiastolicMin   = 60
	DiastolicMax   = 110
	OxygenSatMin   = 92
	TemperatureMin = 35.0
	TemperatureMax = 38.5
	RespRateMin    = 10
	RespRateMax    = 24
)

// Breaches lists each measurement outside its clinical bound, empty
// when the reading is normal.
func (r *Reading) Breaches() []string {
	var out []string
	if r.HeartRate != nil && (*r.HeartRate < HeartRateMin || *r.HeartRate > HeartRateMax) {
		out = append(out, fmt.Sprintf("heart rate %d outside %d-%d", *r.HeartRate, HeartRateMin, HeartRateMax))
	}
	if r.SystolicBP != nil && (*r.SystolicBP < SystolicMin || *r.SystolicBP > SystolicMax) {
		out = append(out, fmt.Sprintf("systolic %d outside %d-%d", *r.SystolicBP, SystolicMin, SystolicMax))
	}
	if r.DiastolicBP != nil && (*r.DiastolicBP < DiastolicMin || *r.DiastolicBP > DiastolicMax) {
		out = append(out, fmt.Sprintf("diastolic %d outside %d-%d", *r.DiastolicBP, DiastolicMin, DiastolicMax))
	}
	if r.OxygenSaturation != nil && *r.OxygenSaturation < OxygenSatMin {
		out = append(out, fmt.Sprintf("oxygen saturation %d below %d", *r.OxygenSaturation, OxygenSatMin))
	}
	if r.Temperature != nil && (*r.Temperature < TemperatureMin || *r.Temperature > TemperatureMax) {
		out = append(out, fmt.Sprintf("temperature %.1f outside %.1f-%.1f", *r.Temperature, TemperatureMin, TemperatureMax))
	}
	if r.RespiratoryRate != nil && (*r.RespiratoryRate < RespRateMin || *r.RespiratoryRate > RespRateMax) {
		out = append(out, fmt.Sprintf("respiratory rate %d outside %d-%d", *r.RespiratoryRate, RespRateMin, RespRateMax))
	}
	return out
}

// validate rejects rows that are malformed rather than merely abnormal:
// no measurement at all, or values that cannot be physiological.
func (r *Reading) validate() error {
	if r.HeartRate == nil && r.SystolicBP == nil && r.DiastolicBP == nil &&
		r.OxygenSaturation == nil && r.Temperature == nil && r.RespiratoryRate == nil {
		return fmt.Errorf("no measurements present")
	}
	if r.HeartRate != nil && (*r.HeartRate <= 0 || *r.HeartRate > 400) {
		return fmt.Errorf("heart rate %d is not physiological", *r.HeartRate)
	}
	if r.SystolicBP != nil && (*r.SystolicBP <= 0 || *r.SystolicBP > 400) {
		return fmt.Errorf("systolic %d is not physiological", *r.SystolicBP)
	}
	if r.DiastolicBP != nil && (*r.DiastolicBP <= 0 || *r.DiastolicBP > 300) {
		return fmt.Errorf("diastolic %d is not physiological", *r.DiastolicBP)
	}
	if r.SystolicBP != nil && r.DiastolicBP != nil && *r.DiastolicBP >= *r.SystolicBP {
		return fmt.Errorf("diastolic %d not below systolic %d", *r.DiastolicBP, *r.SystolicBP)
	}
	if r.OxygenSaturation != nil && (*r.OxygenSaturation <= 0 || *r.OxygenSaturation > 100) {
		return fmt.Errorf("oxygen saturation %d outside 1-100", *r.OxygenSaturation)
	}
	if r.Temperature != nil && (*r.Temperature < 20 || *r.Temperature > 45) {
		return fmt.Errorf("temperature %.1f is not physiological", *r.Temperature)
	}
	if r.RespiratoryRate != nil && (*r.RespiratoryRate <= 0 || *r.RespiratoryRate > 120) {
		return fmt.Errorf("respiratory rate %d is not physiological", *r.RespiratoryRate)
	}
	return nil
}

// RowError ties a failure to the batch row that caused it.
type RowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
}

// BatchResult summarizes one ingested batch. Rows fail independently;
// Processed+Failed always equals Total.
type BatchResult struct {
	Total     int         `json:"total"`
	Processed int         `json:"processed"`
	Failed    int         `json:"failed"`
	AlertIDs  []uuid.UUID `json:"alert_ids,omitempty"`
	Errors    []RowError  `json:"errors,omitempty"`
}

func criticalMessage(breaches []string) string {
	return "critical vitals: " + strings.Join(breaches, "; ")
}
