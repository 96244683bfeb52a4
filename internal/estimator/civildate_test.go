package estimator

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddDaysNormalizes(t *testing.T) {
	tests := []struct {
		name string
		d    CivilDate
		n    int
		want CivilDate
	}{
		{"within month", date(2024, 1, 10), 5, date(2024, 1, 15)},
		{"month rollover", date(2024, 1, 30), 3, date(2024, 2, 2)},
		{"leap february", date(2024, 2, 28), 1, date(2024, 2, 29)},
		{"non-leap february", date(2023, 2, 28), 1, date(2023, 3, 1)},
		{"year rollover", date(2024, 12, 31), 1, date(2025, 1, 1)},
		{"negative", date(2024, 3, 1), -1, date(2024, 2, 29)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.d.AddDays(tt.n))
		})
	}
}

func TestCivilDateOfUsesOwnLocation(t *testing.T) {
	// 01:30 on Jan 1 at UTC+5 is still Dec 31 in UTC; the civil date must
	// come from the value's own wall clock.
	instant := time.Date(2024, 1, 1, 1, 30, 0, 0, time.FixedZone("UTC+5", 5*3600))
	assert.Equal(t, date(2024, 1, 1), CivilDateOf(instant))
	assert.Equal(t, date(2023, 12, 31), CivilDateOf(instant.UTC()))
}

func TestCivilDateOrdering(t *testing.T) {
	assert.True(t, date(2024, 1, 31).Before(date(2024, 2, 1)))
	assert.True(t, date(2024, 2, 1).After(date(2024, 1, 31)))
	assert.False(t, date(2024, 2, 1).Before(date(2024, 2, 1)))
}

func TestCivilDateJSON(t *testing.T) {
	raw, err := json.Marshal(date(2024, 1, 4))
	require.NoError(t, err)
	assert.Equal(t, `"2024-01-04"`, string(raw))

	var d CivilDate
	require.NoError(t, json.Unmarshal([]byte(`"2024-07-09"`), &d))
	assert.Equal(t, date(2024, 7, 9), d)

	assert.Error(t, json.Unmarshal([]byte(`"not-a-date"`), &d))
	assert.Error(t, json.Unmarshal([]byte(`20240709`), &d))
}

func TestBusyDaySetDeduplicates(t *testing.T) {
	s := NewBusyDaySet(date(2024, 1, 3), date(2024, 1, 3), date(2024, 1, 4))
	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Contains(date(2024, 1, 3)))
	assert.False(t, s.Contains(date(2024, 1, 5)))
}
