package estimator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) CivilDate {
	return CivilDate{Year: y, Month: m, Day: d}
}

func TestEstimate(t *testing.T) {
	placed := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		placedAt time.Time
		busy     BusyDaySet
		settings Settings
		want     CivilDate
	}{
		{
			name:     "no busy days",
			placedAt: placed,
			busy:     NewBusyDaySet(),
			settings: Settings{StandardDeliveryDays: 3, BusyDayPenaltyDays: 1},
			want:     date(2024, 1, 4),
		},
		{
			name:     "busy day inside standard window",
			placedAt: placed,
			busy:     NewBusyDaySet(date(2024, 1, 3)),
			settings: Settings{StandardDeliveryDays: 3, BusyDayPenaltyDays: 1},
			want:     date(2024, 1, 5),
		},
		{
			name:     "busy day inside penalty extension only",
			placedAt: placed,
			busy:     NewBusyDaySet(date(2024, 1, 5)),
			settings: Settings{StandardDeliveryDays: 3, BusyDayPenaltyDays: 1},
			want:     date(2024, 1, 4),
		},
		{
			name:     "zero standard days yields placement date",
			placedAt: placed,
			busy:     NewBusyDaySet(date(2024, 1, 1), date(2024, 1, 2)),
			settings: Settings{StandardDeliveryDays: 0, BusyDayPenaltyDays: 1},
			want:     date(2024, 1, 1),
		},
		{
			name:     "every day in window busy",
			placedAt: placed,
			busy:     NewBusyDaySet(date(2024, 1, 2), date(2024, 1, 3), date(2024, 1, 4)),
			settings: Settings{StandardDeliveryDays: 3, BusyDayPenaltyDays: 2},
			want:     date(2024, 1, 10),
		},
		{
			name:     "window crosses a month boundary",
			placedAt: time.Date(2024, 1, 30, 9, 0, 0, 0, time.UTC),
			busy:     NewBusyDaySet(date(2024, 2, 1)),
			settings: Settings{StandardDeliveryDays: 3, BusyDayPenaltyDays: 1},
			want:     date(2024, 2, 3),
		},
		{
			name:     "zero penalty disables busy days",
			placedAt: placed,
			busy:     NewBusyDaySet(date(2024, 1, 2), date(2024, 1, 3)),
			settings: Settings{StandardDeliveryDays: 3, BusyDayPenaltyDays: 0},
			want:     date(2024, 1, 4),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Estimate(tt.placedAt, tt.busy, tt.settings)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEstimateWindowBounds(t *testing.T) {
	placed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	settings := Settings{StandardDeliveryDays: 3, BusyDayPenaltyDays: 1}

	// The placement date itself never counts.
	got, err := Estimate(placed, NewBusyDaySet(date(2024, 1, 1)), settings)
	require.NoError(t, err)
	assert.Equal(t, date(2024, 1, 4), got)

	// The provisional delivery date does.
	got, err = Estimate(placed, NewBusyDaySet(date(2024, 1, 4)), settings)
	require.NoError(t, err)
	assert.Equal(t, date(2024, 1, 5), got)
}

func TestEstimateIgnoresTimeOfDayAndOffset(t *testing.T) {
	busy := NewBusyDaySet(date(2024, 1, 3))
	settings := Settings{StandardDeliveryDays: 3, BusyDayPenaltyDays: 1}

	// Same civil date in three representations, including one whose UTC
	// instant falls on a different calendar day.
	placements := []time.Time{
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 1, 23, 59, 59, 0, time.UTC),
		time.Date(2024, 1, 1, 1, 30, 0, 0, time.FixedZone("UTC+5", 5*3600)),
	}

	for _, placedAt := range placements {
		got, err := Estimate(placedAt, busy, settings)
		require.NoError(t, err)
		assert.Equal(t, date(2024, 1, 5), got, "placedAt=%v", placedAt)
	}
}

func TestEstimateMonotonicity(t *testing.T) {
	placed := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	busy := NewBusyDaySet(date(2024, 3, 11), date(2024, 3, 13))

	prev := CivilDate{}
	for penalty := 0; penalty <= 5; penalty++ {
		got, err := Estimate(placed, busy, Settings{StandardDeliveryDays: 5, BusyDayPenaltyDays: penalty})
		require.NoError(t, err)
		if penalty > 0 && got.Before(prev) {
			t.Fatalf("estimate went backwards at penalty=%d: %v < %v", penalty, got, prev)
		}
		prev = got
	}

	// Adding one more busy day inside the window never moves the date earlier.
	base, err := Estimate(placed, busy, Settings{StandardDeliveryDays: 5, BusyDayPenaltyDays: 2})
	require.NoError(t, err)
	more, err := Estimate(placed, NewBusyDaySet(date(2024, 3, 11), date(2024, 3, 13), date(2024, 3, 15)),
		Settings{StandardDeliveryDays: 5, BusyDayPenaltyDays: 2})
	require.NoError(t, err)
	assert.False(t, more.Before(base))
}

func TestEstimateRejectsNegativeSettings(t *testing.T) {
	placed := time.Now()

	_, err := Estimate(placed, nil, Settings{StandardDeliveryDays: -1, BusyDayPenaltyDays: 1})
	assert.ErrorIs(t, err, ErrInvalidSettings)

	_, err = Estimate(placed, nil, Settings{StandardDeliveryDays: 3, BusyDayPenaltyDays: -1})
	assert.ErrorIs(t, err, ErrInvalidSettings)
}

func TestEstimateIsDeterministic(t *testing.T) {
	placed := time.Date(2024, 6, 1, 15, 4, 5, 0, time.UTC)
	busy := NewBusyDaySet(date(2024, 6, 2), date(2024, 6, 4))
	settings := Settings{StandardDeliveryDays: 4, BusyDayPenaltyDays: 2}

	first, err := Estimate(placed, busy, settings)
	require.NoError(t, err)
	second, err := Estimate(placed, busy, settings)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
