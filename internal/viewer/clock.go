package viewer

import "time"

// Timer is the subset of *time.Timer the controller uses.
type Timer interface {
	Stop() bool
}

// Clock arms timers. Tests substitute a manual clock.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// SystemClock is backed by the time package.
var SystemClock Clock = realClock{}
