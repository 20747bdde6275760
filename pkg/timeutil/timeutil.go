// Package timeutil provides rolling-window helpers for cooldown gating.
// Power cooldowns and the daily-training credit are rolling windows anchored
// to the last use, not calendar days, so all comparisons happen in UTC.
// No external dependencies - uses only standard library.
package timeutil

import (
	"time"
)

// PowerCooldownWindow gates repeated casts of the same cooldown power.
const PowerCooldownWindow = 24 * time.Hour

// DailyTrainingWindow gates the daily-training reward. Deliberately one hour
// shorter than the power cooldown so a student training at 08:00 today is not
// locked out until 08:01 tomorrow.
const DailyTrainingWindow = 23 * time.Hour

// Clock supplies the current time. Production code uses SystemClock;
// tests substitute a fixed clock.
type Clock interface {
	Now() time.Time
}

// SystemClock is the real wall clock, in UTC.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// FixedClock always reports the same instant. Test helper.
type FixedClock struct {
	At time.Time
}

// Now returns the fixed instant.
func (c FixedClock) Now() time.Time {
	return c.At
}

// WindowOpen reports whether the rolling window that started at last has
// elapsed by now. A zero last means the action has never happened and the
// window is open.
func WindowOpen(now, last time.Time, window time.Duration) bool {
	if last.IsZero() {
		return true
	}
	return now.Sub(last) >= window
}

// Remaining returns how long until the rolling window reopens, clamped to
// zero when it is already open.
func Remaining(now, last time.Time, window time.Duration) time.Duration {
	if WindowOpen(now, last, window) {
		return 0
	}
	return window - now.Sub(last)
}
