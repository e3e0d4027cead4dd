// Package timex holds small time helpers: an injectable clock and a
// JSON-friendly duration type for configuration files.
package timex

import "time"

// Clock supplies the current time. Services take a Clock instead of calling
// time.Now directly so tests can pin the moment of issuance and rotation.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// FixedClock always reports T. Advance moves it forward.
type FixedClock struct {
	T time.Time
}

func (c *FixedClock) Now() time.Time { return c.T }

// Advance moves the clock forward by d.
func (c *FixedClock) Advance(d time.Duration) { c.T = c.T.Add(d) }
