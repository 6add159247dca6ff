// Package scheduler runs all display work as callbacks on one logical timeline.
//
// Callbacks scheduled through a Scheduler never run concurrently with each
// other, so the state they touch needs no locks. Blocking I/O goes through
// Go, which runs the work elsewhere and delivers its completion back onto
// the timeline.
package scheduler

import (
	"context"
	"time"
)

// Task is a pending scheduled callback
type Task interface {
	// Stop prevents the callback from running again. It reports whether
	// the call stopped a live task; stopping twice is harmless.
	Stop() bool
}

// Scheduler is a single-threaded timeline of callbacks
type Scheduler interface {
	// Now returns the scheduler's current time
	Now() time.Time
	// AfterFunc runs fn once after d
	AfterFunc(d time.Duration, fn func()) Task
	// Every runs fn each time d elapses, first after d
	Every(d time.Duration, fn func()) Task
	// Go runs work off the timeline and then runs done on it
	Go(work func(ctx context.Context), done func())
}
