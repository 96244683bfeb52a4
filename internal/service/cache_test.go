package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shipdate/internal/estimator"
	"shipdate/internal/model"
)

func newTestCache(t *testing.T) (*scheduleCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return newScheduleCache(rdb, 5*time.Minute), mr
}

func TestScheduleCacheSettingsRoundTrip(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	_, ok := cache.getSettings(ctx)
	assert.False(t, ok, "empty cache should miss")

	settings := &model.DeliverySettings{
		StandardDeliveryDays: 5,
		BusyDayPenaltyDays:   2,
		UpdatedBy:            "admin-1",
	}
	require.NoError(t, cache.setSettings(ctx, settings))

	got, ok := cache.getSettings(ctx)
	require.True(t, ok)
	assert.Equal(t, 5, got.StandardDeliveryDays)
	assert.Equal(t, 2, got.BusyDayPenaltyDays)
	assert.Equal(t, "admin-1", got.UpdatedBy)
}

func TestScheduleCacheBusyDaysRoundTrip(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	_, ok := cache.getBusyDays(ctx)
	assert.False(t, ok, "empty cache should miss")

	days := []model.BusyDay{
		{ID: "b1", Date: estimator.CivilDate{Year: 2024, Month: time.January, Day: 3}, CreatedBy: "admin-1"},
		{ID: "b2", Date: estimator.CivilDate{Year: 2024, Month: time.February, Day: 14}, CreatedBy: "admin-1"},
	}
	require.NoError(t, cache.setBusyDays(ctx, days))

	got, ok := cache.getBusyDays(ctx)
	require.True(t, ok)
	require.Len(t, got, 2)
	assert.Equal(t, days[0].Date, got[0].Date)
	assert.Equal(t, days[1].Date, got[1].Date)
}

func TestScheduleCacheInvalidate(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.setSettings(ctx, &model.DeliverySettings{StandardDeliveryDays: 3, BusyDayPenaltyDays: 1}))
	require.NoError(t, cache.setBusyDays(ctx, []model.BusyDay{{ID: "b1"}}))

	require.NoError(t, cache.invalidate(ctx))

	_, ok := cache.getSettings(ctx)
	assert.False(t, ok)
	_, ok = cache.getBusyDays(ctx)
	assert.False(t, ok)
}

func TestScheduleCacheExpiry(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.setSettings(ctx, &model.DeliverySettings{StandardDeliveryDays: 3, BusyDayPenaltyDays: 1}))

	mr.FastForward(10 * time.Minute)

	_, ok := cache.getSettings(ctx)
	assert.False(t, ok, "entry should expire after TTL")
}

func TestScheduleCacheCorruptEntryMisses(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, mr.Set(settingsCacheKey, "not json"))

	_, ok := cache.getSettings(ctx)
	assert.False(t, ok)
}

func TestValidateSettingsBounds(t *testing.T) {
	tests := []struct {
		name         string
		standardDays int
		penaltyDays  int
		wantErr      bool
	}{
		{"both in range", 3, 1, false},
		{"lower bounds", 1, 1, false},
		{"upper bounds", 30, 10, false},
		{"standard too small", 0, 1, true},
		{"standard too large", 31, 1, true},
		{"penalty too small", 3, 0, true},
		{"penalty too large", 3, 11, true},
		{"negative standard", -1, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateSettingsBounds(tt.standardDays, tt.penaltyDays)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrSettingsOutOfRange)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
