package inflight

import "errors"

// Sentinel kinds returned by Tracker.Begin.
var (
	ErrInFlight = errors.New("submission already in flight")
	ErrFull     = errors.New("too many submissions in flight")
)
