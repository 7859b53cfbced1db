package moon

import "errors"

// Sentinel kinds for animator errors.
var (
	ErrSink           = errors.New("fragment sink failed")
	ErrAlreadyRunning = errors.New("animator already running")
)
