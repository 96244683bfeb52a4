package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"shipdate/internal/estimator"
	"shipdate/internal/model"
)

var ErrSettingsOutOfRange = errors.New("delivery settings out of allowed range")

const (
	maxStandardDeliveryDays = 30
	maxBusyDayPenaltyDays   = 10
)

// ScheduleService is the repository for busy days and delivery settings.
// Reads go through a best-effort Redis cache; every mutation invalidates it.
type ScheduleService struct {
	db    *sql.DB
	cache *scheduleCache
}

func NewScheduleService(db *sql.DB, rdb *redis.Client) *ScheduleService {
	s := &ScheduleService{db: db}
	if rdb != nil {
		s.cache = newScheduleCache(rdb, 5*time.Minute)
	}
	return s
}

func (s *ScheduleService) BusyDays(ctx context.Context) ([]model.BusyDay, error) {
	if s.cache != nil {
		if days, ok := s.cache.getBusyDays(ctx); ok {
			return days, nil
		}
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, day, created_by, created_at FROM busy_days ORDER BY day`,
	)
	if err != nil {
		return nil, fmt.Errorf("query busy days: %w", err)
	}
	defer rows.Close()

	var days []model.BusyDay
	for rows.Next() {
		var d model.BusyDay
		var day time.Time
		if err := rows.Scan(&d.ID, &day, &d.CreatedBy, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan busy day: %w", err)
		}
		d.Date = estimator.CivilDateOf(day)
		days = append(days, d)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.setBusyDays(ctx, days); err != nil {
			slog.Warn("busy day cache write failed", "error", err)
		}
	}

	return days, nil
}

// BusyDaySet loads the busy days as a membership set for the estimator.
func (s *ScheduleService) BusyDaySet(ctx context.Context) (estimator.BusyDaySet, error) {
	days, err := s.BusyDays(ctx)
	if err != nil {
		return nil, err
	}
	set := make(estimator.BusyDaySet, len(days))
	for _, d := range days {
		set[d.Date] = struct{}{}
	}
	return set, nil
}

// ToggleBusyDay idempotently flips membership of date and reports the
// resulting state. The acting administrator is recorded on insert.
func (s *ScheduleService) ToggleBusyDay(ctx context.Context, date estimator.CivilDate, actorID string) (busy bool, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM busy_days WHERE day = $1`, date.Time(time.UTC))
	if err != nil {
		return false, fmt.Errorf("delete busy day: %w", err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}

	if deleted == 0 {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO busy_days (id, day, created_by, created_at) VALUES ($1, $2, $3, $4)`,
			uuid.NewString(), date.Time(time.UTC), actorID, time.Now(),
		)
		if err != nil {
			return false, fmt.Errorf("insert busy day: %w", err)
		}
		busy = true
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit tx: %w", err)
	}

	s.invalidateCache(ctx)
	return busy, nil
}

// Settings returns the organization policy, falling back to the defaults
// when nothing has been configured yet.
func (s *ScheduleService) Settings(ctx context.Context) (*model.DeliverySettings, error) {
	if s.cache != nil {
		if cached, ok := s.cache.getSettings(ctx); ok {
			return cached, nil
		}
	}

	var (
		settings  model.DeliverySettings
		updatedBy sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT standard_delivery_days, busy_day_penalty_days, updated_by, updated_at FROM delivery_settings WHERE id = 1`,
	).Scan(&settings.StandardDeliveryDays, &settings.BusyDayPenaltyDays, &updatedBy, &settings.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			settings = model.DeliverySettings{
				StandardDeliveryDays: estimator.DefaultSettings.StandardDeliveryDays,
				BusyDayPenaltyDays:   estimator.DefaultSettings.BusyDayPenaltyDays,
			}
			return &settings, nil
		}
		return nil, fmt.Errorf("get delivery settings: %w", err)
	}
	if updatedBy.Valid {
		settings.UpdatedBy = updatedBy.String
	}

	if s.cache != nil {
		if err := s.cache.setSettings(ctx, &settings); err != nil {
			slog.Warn("settings cache write failed", "error", err)
		}
	}

	return &settings, nil
}

// UpdateSettings replaces the policy. Bounds are a boundary rule for
// administrator input, not an estimator invariant.
func (s *ScheduleService) UpdateSettings(ctx context.Context, standardDays, penaltyDays int, actorID string) (*model.DeliverySettings, error) {
	if err := validateSettingsBounds(standardDays, penaltyDays); err != nil {
		return nil, err
	}

	var settings model.DeliverySettings
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO delivery_settings (id, standard_delivery_days, busy_day_penalty_days, updated_by, updated_at)
		VALUES (1, $1, $2, $3, NOW())
		ON CONFLICT (id) DO UPDATE SET
			standard_delivery_days = EXCLUDED.standard_delivery_days,
			busy_day_penalty_days = EXCLUDED.busy_day_penalty_days,
			updated_by = EXCLUDED.updated_by,
			updated_at = EXCLUDED.updated_at
		RETURNING standard_delivery_days, busy_day_penalty_days, updated_by, updated_at
	`, standardDays, penaltyDays, actorID).Scan(
		&settings.StandardDeliveryDays, &settings.BusyDayPenaltyDays, &settings.UpdatedBy, &settings.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("update delivery settings: %w", err)
	}

	s.invalidateCache(ctx)
	return &settings, nil
}

func (s *ScheduleService) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.invalidate(ctx); err != nil {
		slog.Warn("schedule cache invalidation failed", "error", err)
	}
}

func validateSettingsBounds(standardDays, penaltyDays int) error {
	if standardDays < 1 || standardDays > maxStandardDeliveryDays {
		return fmt.Errorf("%w: standard delivery days must be in [1, %d]", ErrSettingsOutOfRange, maxStandardDeliveryDays)
	}
	if penaltyDays < 1 || penaltyDays > maxBusyDayPenaltyDays {
		return fmt.Errorf("%w: busy day penalty days must be in [1, %d]", ErrSettingsOutOfRange, maxBusyDayPenaltyDays)
	}
	return nil
}
