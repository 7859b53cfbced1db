package moon

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/handin/pkg/logger"
	"github.com/okian/handin/pkg/metrics"
)

// Sink receives each frame and replaces the current fragment with it.
// Implementations must not create history entries.
type Sink interface {
	ReplaceFragment(ctx context.Context, frame string) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, frame string) error

// ReplaceFragment calls f.
func (f SinkFunc) ReplaceFragment(ctx context.Context, frame string) error {
	return f(ctx, frame)
}

// Animator pushes FrameAt(now) to its sink once per interval until stopped.
// An Animator runs at most once.
type Animator struct {
	sink     Sink
	interval time.Duration
	now      func() time.Time

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}
	running      atomic.Bool

	logger logger.Logger
}

// NewAnimator creates an animator writing to sink.
func NewAnimator(sink Sink, opts ...Option) *Animator {
	a := &Animator{
		sink:     sink,
		interval: DefaultInterval,
		now:      time.Now,
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = logger.Get().Named("moon")
	}
	return a
}

// Run blocks, replacing the fragment every interval, until ctx is canceled,
// Shutdown is called, or the sink fails. The ticker is stopped on return.
// A sink error is returned; cancellation and shutdown return nil.
func (a *Animator) Run(ctx context.Context) error {
	if !a.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	return a.run(ctx)
}

func (a *Animator) run(ctx context.Context) error {
	defer close(a.done)

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-a.shutdown:
			return nil
		case <-ticker.C:
			frame := FrameAt(a.now())
			if err := a.sink.ReplaceFragment(ctx, frame); err != nil {
				a.logger.Debug(ctx, "fragment sink failed; stopping", logger.Error(err))
				return fmt.Errorf("%w: %w", ErrSink, err)
			}
			metrics.RecordFragmentFrame()
		}
	}
}

// Shutdown stops the animator and waits for Run to return or ctx to end.
// Calling Shutdown before Run makes Run return immediately.
func (a *Animator) Shutdown(ctx context.Context) error {
	a.shutdownOnce.Do(func() { close(a.shutdown) })
	if !a.running.Load() {
		return nil
	}

	select {
	case <-a.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Done is closed once Run has returned.
func (a *Animator) Done() <-chan struct{} {
	return a.done
}
