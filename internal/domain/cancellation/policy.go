package cancellation

import (
	"time"

	"github.com/carelink/carelink/internal/domain/appointment"
)

// RefundPolicy computes the refund owed when a cancellation is
// approved at the given instant. Implementations must never return a
// negative amount.
type RefundPolicy func(appt *appointment.Appointment, now time.Time) float64

// TieredRefundPolicy refunds the full fee when the appointment is at
// least fullWindow away, partialPct percent when at least
// partialWindow away, and nothing after that. Unpaid appointments
// refund nothing regardless of timing.
func TieredRefundPolicy(fullWindow, partialWindow time.Duration, partialPct float64) RefundPolicy {
	return func(appt *appointment.Appointment, now time.Time) float64 {
		if appt.PaymentStatus != appointment.PaymentPaid {
			return 0
		}
		until := appt.AppointmentDate.Sub(now)
		switch {
		case until >= fullWindow:
			return appt.Fee
		case until >= partialWindow:
			return appt.Fee * partialPct / 100
		default:
			return 0
		}
	}
}
