package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWindowOpen(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	cases := []struct {
		name   string
		last   time.Time
		window time.Duration
		open   bool
	}{
		{"never used", time.Time{}, 24 * time.Hour, true},
		{"inside window", now.Add(-time.Hour), 24 * time.Hour, false},
		{"exactly at boundary", now.Add(-24 * time.Hour), 24 * time.Hour, true},
		{"past window", now.Add(-25 * time.Hour), 24 * time.Hour, true},
		{"training window shorter", now.Add(-23*time.Hour - time.Second), DailyTrainingWindow, true},
		{"training window closed", now.Add(-22 * time.Hour), DailyTrainingWindow, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.open, WindowOpen(now, tc.last, tc.window))
		})
	}
}

func TestRemaining(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	assert.Zero(t, Remaining(now, time.Time{}, 24*time.Hour))
	assert.Zero(t, Remaining(now, now.Add(-25*time.Hour), 24*time.Hour))
	assert.Equal(t, 23*time.Hour, Remaining(now, now.Add(-time.Hour), 24*time.Hour))
}

func TestFixedClock(t *testing.T) {
	at := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	clock := FixedClock{At: at}

	assert.Equal(t, at, clock.Now())
	assert.Equal(t, at, clock.Now(), "fixed clock never advances")
}
