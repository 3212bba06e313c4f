// Package clock abstracts wall-clock time so renewal and reset math can be
// driven deterministically in tests.
package clock

import "time"

// Clock supplies the current time to everything that does billing-period
// arithmetic. Production code uses New; tests inject a fixed clock.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

// New returns a Clock backed by the system clock, normalized to UTC.
func New() Clock {
	return realClock{}
}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}
