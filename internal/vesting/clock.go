package vesting

import "time"

// Clock abstracts time so schedules are testable at fixed instants.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the wall-clock used outside tests.
var SystemClock Clock = systemClock{}
