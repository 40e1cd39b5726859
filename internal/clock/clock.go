// Package clock provides the time source used by polling loops.
// Production code uses [Real], tests use [Fake] so that timeouts
// can be exercised without sleeping.
package clock

import (
	"sync"
	"time"
)

type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type realClock struct{}

// Real returns a clock backed by the time package
func Real() Clock {
	return realClock{}
}

func (realClock) Now() time.Time        { return time.Now() }
func (realClock) Sleep(d time.Duration) { time.Sleep(d) }

// Fake is a manual clock, Sleep advances time instantly
type Fake struct {
	mu     sync.Mutex
	now    time.Time
	sleeps int
	slept  time.Duration
}

func NewFake() *Fake {
	return &Fake{now: time.Unix(0, 0)}
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fake) Sleep(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
	f.sleeps++
	f.slept += d
}

// Advance moves the clock forward without counting a sleep
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

// Number of calls to Sleep
func (f *Fake) Sleeps() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sleeps
}

// Total duration passed to Sleep
func (f *Fake) Slept() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.slept
}
