package api

import "errors"

// Sentinel kinds for the HTTP server.
var (
	ErrServe    = errors.New("http serve failed")
	ErrShutdown = errors.New("http shutdown failed")
)
