package window

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	d, err := Parse("2025-06-15")
	require.NoError(t, err)
	assert.Equal(t, "2025-06-15", d.String())

	for _, bad := range []string{"", "15-06-2025", "2025-6-5", "2025-06-31", "2025-06-15T00:00:00Z", "not a date"} {
		_, err := Parse(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestFromTimeNormalizesToUTCDay(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)

	// 23:30 on the 15th in UTC-5 is already the 16th in UTC
	d := FromTime(time.Date(2025, 6, 15, 23, 30, 0, 0, loc))
	assert.Equal(t, "2025-06-16", d.String())

	// midday UTC stays on its own day
	d = FromTime(time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC))
	assert.Equal(t, "2025-06-15", d.String())
	assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), d.Time())
}

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		name      string
		target    string
		reference string
		want      int
	}{
		{"same day", "2025-06-15", "2025-06-15", 0},
		{"next day", "2025-06-16", "2025-06-15", 1},
		{"past is negative", "2025-06-10", "2025-06-15", -5},
		{"across year boundary", "2026-01-01", "2025-12-31", 1},
		{"across leap February", "2024-03-15", "2024-02-15", 29},
		{"across non-leap February", "2023-03-15", "2023-02-15", 28},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DaysBetween(MustParse(tt.target), MustParse(tt.reference)))
		})
	}
}

func TestWithinWindow(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		reference  string
		windowDays int
		want       bool
	}{
		{"same day zero window", "2025-06-15", "2025-06-15", 0, true},
		{"tomorrow zero window", "2025-06-16", "2025-06-15", 0, false},
		{"same day wide window", "2025-06-15", "2025-06-15", 30, true},
		{"exactly at boundary", "2025-07-15", "2025-06-15", 30, true},
		{"one past boundary", "2025-07-16", "2025-06-15", 30, false},
		{"past never within", "2025-06-14", "2025-06-15", 365, false},
		{"leap year span stays within", "2024-03-15", "2024-02-15", 30, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WithinWindow(MustParse(tt.target), MustParse(tt.reference), tt.windowDays)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAddDays(t *testing.T) {
	assert.Equal(t, "2024-02-29", MustParse("2024-02-28").AddDays(1).String())
	assert.Equal(t, "2023-03-01", MustParse("2023-02-28").AddDays(1).String())
	assert.Equal(t, "2024-02-29", MustParse("2024-03-01").AddDays(-1).String())
	assert.Equal(t, "2026-01-04", MustParse("2025-12-28").AddDays(7).String())
}

func TestEqual(t *testing.T) {
	a := MustParse("2025-06-15")
	b := FromTime(time.Date(2025, 6, 15, 18, 45, 0, 0, time.UTC))
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(a.AddDays(1)))
}

func TestJSONRoundTrip(t *testing.T) {
	d := MustParse("2025-06-15")

	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2025-06-15"`, string(b))

	var back Date
	require.NoError(t, json.Unmarshal(b, &back))
	assert.True(t, d.Equal(back))

	assert.Error(t, json.Unmarshal([]byte(`20250615`), &back))
	assert.Error(t, json.Unmarshal([]byte(`"June 15"`), &back))
}

func TestScan(t *testing.T) {
	// driver hands DATE columns over as time.Time; the day must survive
	// whatever location the connection was configured with
	tehran := time.FixedZone("UTC+3:30", 3*3600+30*60)

	var d Date
	require.NoError(t, d.Scan(time.Date(2025, 6, 15, 0, 0, 0, 0, tehran)))
	assert.Equal(t, "2025-06-15", d.String())

	require.NoError(t, d.Scan([]byte("2025-06-16")))
	assert.Equal(t, "2025-06-16", d.String())

	require.NoError(t, d.Scan("2025-06-17"))
	assert.Equal(t, "2025-06-17", d.String())

	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())

	assert.Error(t, d.Scan(42))
}

func TestValue(t *testing.T) {
	v, err := MustParse("2025-06-15").Value()
	require.NoError(t, err)
	assert.Equal(t, "2025-06-15", v)
}
