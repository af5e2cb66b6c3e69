// Package clock abstracts the wall clock so batch timing can be tested.
package clock

import "time"

// Clock is an interface for time operations.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// RealClock implements Clock using the system time.
type RealClock struct{}

// Now returns the current time from the system clock.
func (RealClock) Now() time.Time {
	return time.Now()
}

// Stepping is a Clock that starts at Start and advances by Step on every call.
type Stepping struct {
	Start time.Time
	Step  time.Duration

	calls int
}

// Now returns Start plus Step for each previous call.
// It is not safe for concurrent use.
func (s *Stepping) Now() time.Time {
	t := s.Start.Add(time.Duration(s.calls) * s.Step)
	s.calls++
	return t
}

var (
	_ Clock = RealClock{}
	_ Clock = (*Stepping)(nil)
)
