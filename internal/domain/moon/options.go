package moon

import (
	"time"

	"github.com/okian/handin/pkg/logger"
)

// Option applies a configuration option to the Animator.
type Option func(*Animator)

// WithInterval sets how often the fragment is replaced.
func WithInterval(d time.Duration) Option {
	return func(a *Animator) {
		if d > 0 {
			a.interval = d
		}
	}
}

// WithClock sets the wall clock used to pick frames.
func WithClock(now func() time.Time) Option {
	return func(a *Animator) {
		if now != nil {
			a.now = now
		}
	}
}

// WithLogger sets a custom logger for the animator.
func WithLogger(l logger.Logger) Option {
	return func(a *Animator) {
		if l != nil {
			a.logger = l
		}
	}
}
