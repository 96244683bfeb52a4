package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"shipdate/internal/estimator"
	"shipdate/internal/model"
	"shipdate/internal/mw"
	"shipdate/internal/service"
)

func ListBusyDaysHandler(scheduleSvc *service.ScheduleService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		days, err := scheduleSvc.BusyDays(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		if days == nil {
			days = []model.BusyDay{}
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(days); err != nil {
			http.Error(w, "encode error", http.StatusInternalServerError)
		}
	}
}

type toggleBusyDayRequest struct {
	Date estimator.CivilDate `json:"date"`
}

type toggleBusyDayResponse struct {
	Date estimator.CivilDate `json:"date"`
	Busy bool                `json:"busy"`
}

// ToggleBusyDayHandler idempotently flips a calendar date's busy flag.
// Admin only; the acting administrator is recorded for audit.
func ToggleBusyDayHandler(scheduleSvc *service.ScheduleService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		actorID := r.Context().Value(mw.UserCtxKey).(string)

		var req toggleBusyDayRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Date.IsZero() {
			http.Error(w, "date required", http.StatusBadRequest)
			return
		}

		busy, err := scheduleSvc.ToggleBusyDay(r.Context(), req.Date, actorID)
		if err != nil {
			slog.Error("toggle busy day failed", "date", req.Date, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		resp := toggleBusyDayResponse{Date: req.Date, Busy: busy}
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			http.Error(w, "encode error", http.StatusInternalServerError)
		}
	}
}

func GetSettingsHandler(scheduleSvc *service.ScheduleService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		settings, err := scheduleSvc.Settings(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(settings); err != nil {
			http.Error(w, "encode error", http.StatusInternalServerError)
		}
	}
}

type updateSettingsRequest struct {
	StandardDeliveryDays int `json:"standard_delivery_days"`
	BusyDayPenaltyDays   int `json:"busy_day_penalty_days"`
}

// UpdateSettingsHandler replaces the delivery policy. Admin only.
func UpdateSettingsHandler(scheduleSvc *service.ScheduleService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		actorID := r.Context().Value(mw.UserCtxKey).(string)

		var req updateSettingsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		settings, err := scheduleSvc.UpdateSettings(r.Context(), req.StandardDeliveryDays, req.BusyDayPenaltyDays, actorID)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrSettingsOutOfRange):
				http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			default:
				slog.Error("update settings failed", "error", err)
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(settings); err != nil {
			http.Error(w, "encode error", http.StatusInternalServerError)
		}
	}
}
