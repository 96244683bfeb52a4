package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"shipdate/internal/estimator"
	"shipdate/internal/model"
	"shipdate/internal/mw"
	"shipdate/internal/service"
)

func PlaceOrderHandler(orderSvc *service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		userID, ok := r.Context().Value(mw.UserCtxKey).(string)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		number, err := readOrderNumber(r)
		if err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		if !validateLuhn(number) {
			http.Error(w, "invalid order number (failed Luhn check)", http.StatusUnprocessableEntity)
			return
		}

		order, err := orderSvc.Create(r.Context(), userID, number)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrOrderAlreadyExistsByUser):
				w.WriteHeader(http.StatusOK)
				return
			case errors.Is(err, service.ErrOrderAlreadyExistsByOther):
				http.Error(w, "order already placed by another user", http.StatusConflict)
				return
			default:
				slog.Error("order create failed", "error", err)
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		if err := json.NewEncoder(w).Encode(order); err != nil {
			slog.Error("encode order failed", "error", err)
		}
	}
}

func readOrderNumber(r *http.Request) (string, error) {
	maxBody := http.MaxBytesReader(nil, r.Body, 1024)
	body, err := io.ReadAll(maxBody)
	if err != nil {
		if strings.Contains(err.Error(), "request body too large") {
			return "", errors.New("request body too large")
		}
		return "", fmt.Errorf("failed to read body: %w", err)
	}

	number := strings.TrimSpace(string(body))
	if number == "" {
		return "", errors.New("empty order number")
	}

	if _, err := strconv.ParseUint(number, 10, 64); err != nil {
		return "", errors.New("order number must contain only digits")
	}

	return number, nil
}

func validateLuhn(s string) bool {
	if len(s) < 2 {
		return false
	}
	var sum int
	double := false
	for i := len(s) - 1; i >= 0; i-- {
		digit := int(s[i] - '0')
		if double {
			digit *= 2
			if digit > 9 {
				digit -= 9
			}
		}
		sum += digit
		double = !double
	}
	return sum%10 == 0
}

func ListOrdersHandler(orderSvc *service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		userID := r.Context().Value(mw.UserCtxKey).(string)

		orders, err := orderSvc.ListByUser(r.Context(), userID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		if len(orders) == 0 {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(orders); err != nil {
			http.Error(w, "encode error", http.StatusInternalServerError)
		}
	}
}

type deliveryDateResponse struct {
	Number       string              `json:"number"`
	DeliveryDate estimator.CivilDate `json:"delivery_date"`
	Confirmed    bool                `json:"confirmed"`
}

// DeliveryDateHandler resolves an order's delivery date: the confirmed date
// when an administrator has set one, otherwise a live estimate.
func DeliveryDateHandler(orderSvc *service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		userID := r.Context().Value(mw.UserCtxKey).(string)
		role, _ := r.Context().Value(mw.RoleCtxKey).(string)
		number := chi.URLParam(r, "number")

		order, err := orderSvc.GetByNumber(r.Context(), number)
		if err != nil {
			if errors.Is(err, service.ErrOrderNotFound) {
				http.Error(w, "order not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		if order.UserID != userID && role != model.RoleAdmin {
			http.Error(w, "order belongs to another user", http.StatusForbidden)
			return
		}

		date, confirmed, err := orderSvc.DeliveryDate(r.Context(), order)
		if err != nil {
			slog.Error("delivery date resolution failed", "number", number, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		resp := deliveryDateResponse{Number: number, DeliveryDate: date, Confirmed: confirmed}
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			http.Error(w, "encode error", http.StatusInternalServerError)
		}
	}
}

type confirmDeliveryRequest struct {
	DeliveryDate estimator.CivilDate `json:"delivery_date"`
}

// ConfirmDeliveryHandler pins an order's delivery date. Admin only.
func ConfirmDeliveryHandler(orderSvc *service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		number := chi.URLParam(r, "number")

		var req confirmDeliveryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.DeliveryDate.IsZero() {
			http.Error(w, "delivery_date required", http.StatusBadRequest)
			return
		}

		if err := orderSvc.ConfirmDelivery(r.Context(), number, req.DeliveryDate); err != nil {
			if errors.Is(err, service.ErrOrderNotFound) {
				http.Error(w, "order not found", http.StatusNotFound)
				return
			}
			slog.Error("confirm delivery failed", "number", number, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}
