package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"shipdate/internal/estimator"
	"shipdate/internal/service"
)

// EstimateWorker keeps stored delivery estimates in sync with the schedule.
// Busy-day toggles and settings edits change what the estimator would return
// for existing orders; the worker periodically re-runs it over unconfirmed
// orders and persists any drift.
type EstimateWorker struct {
	orderSvc    *service.OrderService
	scheduleSvc *service.ScheduleService
	interval    time.Duration
	batchSize   int
}

func NewEstimateWorker(orderSvc *service.OrderService, scheduleSvc *service.ScheduleService) *EstimateWorker {
	return &EstimateWorker{
		orderSvc:    orderSvc,
		scheduleSvc: scheduleSvc,
		interval:    time.Minute,
		batchSize:   50,
	}
}

func (w *EstimateWorker) Start(ctx context.Context) {
	slog.Info("starting estimate worker", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("estimate worker stopped")
			return
		case <-ticker.C:
			if err := w.processBatch(ctx); err != nil {
				slog.Error("batch processing failed", "error", err)
			}
		}
	}
}

func (w *EstimateWorker) processBatch(ctx context.Context) error {
	settings, err := w.scheduleSvc.Settings(ctx)
	if err != nil {
		return fmt.Errorf("get settings: %w", err)
	}
	busy, err := w.scheduleSvc.BusyDaySet(ctx)
	if err != nil {
		return fmt.Errorf("get busy days: %w", err)
	}

	orders, err := w.orderSvc.ListUnconfirmed(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get unconfirmed orders: %w", err)
	}

	for _, order := range orders {
		estimate, err := estimator.Estimate(order.PlacedAt, busy, settings.Estimator())
		if err != nil {
			slog.Error("estimate failed", "number", order.Number, "error", err)
			continue
		}

		if order.EstimatedDeliveryDate != nil && *order.EstimatedDeliveryDate == estimate {
			continue
		}

		if err := w.orderSvc.UpdateEstimate(ctx, order.Number, estimate); err != nil {
			slog.Error("failed to update estimate", "number", order.Number, "error", err)
		} else {
			slog.Info("estimate refreshed", "number", order.Number, "delivery_date", estimate)
		}
	}

	return nil
}
