// Package clock abstracts time so that timers can be controlled in tests.
package clock

import (
	"time"

	"go.uber.org/fx"
)

// Module provides the real Clock.
var Module = fx.Provide(New)

// Clock is an interface that abstracts the functionality for measuring time and scheduling work.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
	// Since returns the time elapsed since t.
	Since(t time.Time) time.Duration
	// AfterFunc calls f in its own goroutine after d has elapsed.
	AfterFunc(d time.Duration, f func()) Timer
	// NewTicker returns a ticker that fires every d.
	NewTicker(d time.Duration) Ticker
}

// Timer is a scheduled call created by AfterFunc.
type Timer interface {
	// Stop prevents the call from firing. It reports whether the call was stopped before it fired.
	Stop() bool
	// Reset changes the timer to fire after d.
	Reset(d time.Duration) bool
}

// Ticker delivers ticks at intervals.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type clock struct{}

// New creates a new instance of Clock.
func New() Clock {
	return clock{}
}

func (clock) Now() time.Time {
	return time.Now()
}

func (clock) Since(t time.Time) time.Duration {
	return time.Since(t)
}

func (clock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

func (clock) NewTicker(d time.Duration) Ticker {
	return ticker{time.NewTicker(d)}
}

type ticker struct {
	t *time.Ticker
}

func (t ticker) C() <-chan time.Time {
	return t.t.C
}

func (t ticker) Stop() {
	t.t.Stop()
}
