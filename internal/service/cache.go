package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"shipdate/internal/model"
)

const (
	settingsCacheKey = "delivery:settings"
	busyDaysCacheKey = "delivery:busy_days"
)

// scheduleCache is a best-effort read-through cache over the schedule store.
// Both keys are invalidated on every busy-day or settings mutation; a missing
// or unavailable cache always falls through to Postgres.
type scheduleCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func newScheduleCache(rdb *redis.Client, ttl time.Duration) *scheduleCache {
	return &scheduleCache{rdb: rdb, ttl: ttl}
}

func (c *scheduleCache) getSettings(ctx context.Context) (*model.DeliverySettings, bool) {
	raw, err := c.rdb.Get(ctx, settingsCacheKey).Bytes()
	if err != nil {
		return nil, false
	}
	var s model.DeliverySettings
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, false
	}
	return &s, true
}

func (c *scheduleCache) setSettings(ctx context.Context, s *model.DeliverySettings) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	if err := c.rdb.Set(ctx, settingsCacheKey, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache settings: %w", err)
	}
	return nil
}

func (c *scheduleCache) getBusyDays(ctx context.Context) ([]model.BusyDay, bool) {
	raw, err := c.rdb.Get(ctx, busyDaysCacheKey).Bytes()
	if err != nil {
		return nil, false
	}
	var days []model.BusyDay
	if err := json.Unmarshal(raw, &days); err != nil {
		return nil, false
	}
	return days, true
}

func (c *scheduleCache) setBusyDays(ctx context.Context, days []model.BusyDay) error {
	raw, err := json.Marshal(days)
	if err != nil {
		return fmt.Errorf("marshal busy days: %w", err)
	}
	if err := c.rdb.Set(ctx, busyDaysCacheKey, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache busy days: %w", err)
	}
	return nil
}

func (c *scheduleCache) invalidate(ctx context.Context) error {
	if err := c.rdb.Del(ctx, settingsCacheKey, busyDaysCacheKey).Err(); err != nil {
		return fmt.Errorf("invalidate schedule cache: %w", err)
	}
	return nil
}
