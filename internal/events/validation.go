package events

import "time"

// ValidationStart is emitted before an input value is walked. Target is an
// input type name or an "Object.field" argument coordinate.
type ValidationStart struct {
	Target string
}

// ValidationFinish is emitted after the walk. Err is a *validation.Failure
// when ErrorCount > 0, or an unexpected hook error.
type ValidationFinish struct {
	Target     string
	ErrorCount int
	Err        error
	Duration   time.Duration
}
