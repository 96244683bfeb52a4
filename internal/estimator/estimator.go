// Package estimator computes estimated delivery dates from an order's
// placement time, the set of busy days, and the organization's delivery
// settings. It is pure calendar arithmetic: no I/O, no shared state, safe to
// call concurrently.
package estimator

import (
	"errors"
	"time"
)

var ErrInvalidSettings = errors.New("delivery settings must not be negative")

// Settings is the organization-wide delivery policy.
type Settings struct {
	// StandardDeliveryDays is the lead time applied to every order.
	StandardDeliveryDays int
	// BusyDayPenaltyDays is added once per busy day inside the standard window.
	BusyDayPenaltyDays int
}

// DefaultSettings applies when the organization has not configured a policy.
var DefaultSettings = Settings{StandardDeliveryDays: 3, BusyDayPenaltyDays: 1}

// Estimate returns the estimated delivery date for an order placed at placedAt.
//
// The provisional date is placedAt's calendar date plus StandardDeliveryDays.
// Every busy day strictly after the placement date up to and including the
// provisional date adds BusyDayPenaltyDays to the result. The scan covers the
// original standard window only: busy days that land inside the penalty
// extension do not extend it further.
//
// Negative settings are rejected with ErrInvalidSettings. Zero values are
// degenerate but well defined: zero standard days leaves an empty window and
// returns the placement date, zero penalty days disables the penalty.
func Estimate(placedAt time.Time, busy BusyDaySet, s Settings) (CivilDate, error) {
	if s.StandardDeliveryDays < 0 || s.BusyDayPenaltyDays < 0 {
		return CivilDate{}, ErrInvalidSettings
	}

	placed := CivilDateOf(placedAt)
	provisional := placed.AddDays(s.StandardDeliveryDays)

	busyHits := 0
	for i := 1; i <= s.StandardDeliveryDays; i++ {
		if busy.Contains(placed.AddDays(i)) {
			busyHits++
		}
	}

	return provisional.AddDays(busyHits * s.BusyDayPenaltyDays), nil
}
