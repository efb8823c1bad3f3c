package clock

import "time"

// Clock provides the current time. Time-driven logic (SLA deadlines, contract
// expiry windows, overdue detection) must go through a Clock so it can be
// driven deterministically in tests.
type Clock interface {
	// Now returns the current instant in UTC.
	Now() time.Time
	// Today returns the current calendar day at midnight UTC.
	Today() time.Time
}

// Real is the wall-clock implementation.
type Real struct{}

func (Real) Now() time.Time {
	return time.Now().UTC()
}

func (Real) Today() time.Time {
	return time.Now().UTC().Truncate(24 * time.Hour)
}

// Fixed is a clock pinned to a single instant.
type Fixed struct {
	Instant time.Time
}

func NewFixed(t time.Time) *Fixed {
	return &Fixed{Instant: t.UTC()}
}

func (f *Fixed) Now() time.Time {
	return f.Instant
}

func (f *Fixed) Today() time.Time {
	return f.Instant.Truncate(24 * time.Hour)
}

// Advance moves the fixed clock forward.
func (f *Fixed) Advance(d time.Duration) {
	f.Instant = f.Instant.Add(d)
}
