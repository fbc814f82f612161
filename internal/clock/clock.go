// Package clock provides the single source of "now" for booking decisions.
// Every component that compares against the current instant takes a Clock
// so tests can pin time to an exact boundary.
package clock

import "time"

// Clock returns the current instant in UTC.
type Clock interface {
	Now() time.Time
}

// System reads the wall clock.
type System struct{}

func (System) Now() time.Time { return time.Now().UTC() }

// Fixed always returns the same instant.
type Fixed struct{ T time.Time }

func (f Fixed) Now() time.Time { return f.T.UTC() }

// NewFixed is a shorthand for tests.
func NewFixed(t time.Time) Fixed { return Fixed{T: t} }
