package model

import (
	"time"

	"shipdate/internal/estimator"
)

type Order struct {
	ID       string    `json:"id"`
	UserID   string    `json:"user_id"`
	Number   string    `json:"number"`
	PlacedAt time.Time `json:"placed_at"`
	// ConfirmedDeliveryDate, once set by an administrator, always wins over
	// the estimator.
	ConfirmedDeliveryDate *estimator.CivilDate `json:"confirmed_delivery_date,omitempty"`
	// EstimatedDeliveryDate is the stored snapshot; it is refreshed when busy
	// days or settings change.
	EstimatedDeliveryDate *estimator.CivilDate `json:"estimated_delivery_date,omitempty"`
}
