// Package clock abstracts wall time so date-dependent logic stays deterministic under test.
package clock

import "time"

type Clock interface {
	Now() time.Time
}

// Real reads the system clock.
type Real struct{}

func (Real) Now() time.Time { return time.Now() }

// Fixed always returns the same instant.
type Fixed struct {
	At time.Time
}

func (f Fixed) Now() time.Time { return f.At }

// Func adapts a function to Clock.
type Func func() time.Time

func (f Func) Now() time.Time { return f() }

// OrReal returns c, or a Real clock when c is nil.
func OrReal(c Clock) Clock {
	if c == nil {
		return Real{}
	}
	return c
}
