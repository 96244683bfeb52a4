package model

import (
	"time"

	"shipdate/internal/estimator"
)

// BusyDay is an administrator-flagged calendar date with reduced fulfillment
// capacity. CreatedBy records the acting administrator for audit.
type BusyDay struct {
	ID        string              `json:"id"`
	Date      estimator.CivilDate `json:"date"`
	CreatedBy string              `json:"created_by"`
	CreatedAt time.Time           `json:"created_at"`
}

type DeliverySettings struct {
	StandardDeliveryDays int       `json:"standard_delivery_days"`
	BusyDayPenaltyDays   int       `json:"busy_day_penalty_days"`
	UpdatedBy            string    `json:"updated_by,omitempty"`
	UpdatedAt            time.Time `json:"updated_at,omitempty"`
}

func (s DeliverySettings) Estimator() estimator.Settings {
	return estimator.Settings{
		StandardDeliveryDays: s.StandardDeliveryDays,
		BusyDayPenaltyDays:   s.BusyDayPenaltyDays,
	}
}
