package site

import "errors"

// Sentinel kinds for page rendering and streaming.
var (
	ErrTemplate = errors.New("site template failed")
	ErrRender   = errors.New("site render failed")
	ErrStream   = errors.New("fragment stream failed")
)
