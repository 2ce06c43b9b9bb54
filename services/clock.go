package services

import "time"

// Clock supplies "now" to the engine so refund tiers and check-in
// gates are testable against fixed instants.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// NewSystemClock returns a clock backed by time.Now in UTC.
func NewSystemClock() Clock { return systemClock{} }

type fixedClock struct{ at time.Time }

func (f fixedClock) Now() time.Time { return f.at }

// NewFixedClock returns a clock pinned to the given instant.
func NewFixedClock(t time.Time) Clock { return fixedClock{at: t.UTC()} }

// dateOnly truncates an instant to its UTC calendar date. All range
// math in the engine runs on calendar dates; partial days are not
// supported.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// daysBetween returns the whole-day count from a to b (both already
// truncated to calendar dates).
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}
