package site

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/okian/handin/internal/domain/moon"
	"github.com/okian/handin/internal/domain/submission"
	"github.com/okian/handin/pkg/logger"
	"github.com/okian/handin/pkg/metrics"
)

type thankYouView struct {
	FragmentURL string
	submission.Confirmation
}

// HandleThankYou handles GET /thank-you. It only echoes the query; missing
// values render empty.
func (h *Handler) HandleThankYou(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, pageThankYou, thankYouView{
		FragmentURL:  FragmentPath,
		Confirmation: submission.ParseConfirmation(r.URL.Query()),
	})
}

// HandleFragment handles GET /thank-you/fragment. It streams one frame per
// interval as server-sent events until the client goes away or the handler
// is closed.
func (h *Handler) HandleFragment(w http.ResponseWriter, r *http.Request) {
	select {
	case <-h.closing:
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	default:
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go func() {
		select {
		case <-h.closing:
			cancel()
		case <-ctx.Done():
		}
	}()

	rc := http.NewResponseController(w)

	// The stream outlives the server's write timeout.
	if err := rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		h.logger.Warn(ctx, "could not clear write deadline", logger.Error(err))
	}

	header := w.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		h.logger.Error(ctx, "fragment stream not flushable", logger.Error(fmt.Errorf("%w: %w", ErrStream, err)))
		return
	}

	metrics.IncFragmentStreams()
	defer metrics.DecFragmentStreams()

	sink := moon.SinkFunc(func(_ context.Context, frame string) error {
		if _, err := fmt.Fprintf(w, "event: frame\ndata: %s\n\n", frame); err != nil {
			return err
		}
		return rc.Flush()
	})

	animator := moon.NewAnimator(sink, moon.WithInterval(h.interval), moon.WithLogger(h.logger))
	if err := animator.Run(ctx); err != nil {
		h.logger.Debug(ctx, "fragment stream closed", logger.Error(err))
	}
}
