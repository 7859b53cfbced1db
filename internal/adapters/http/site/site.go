// Package site serves the assignment form, the confirmation page and its
// fragment animation stream.
package site

import (
	"context"
	"html/template"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	service "github.com/okian/handin/internal/app"
	"github.com/okian/handin/internal/domain/moon"
	"github.com/okian/handin/internal/domain/submission"
	"github.com/okian/handin/pkg/logger"
)

// Route names double as the endpoint label in HTTP metrics.
const (
	RouteForm     = "form"
	RouteSubmit   = "submit"
	RouteThankYou = "thank_you"
	RouteFragment = "fragment"
	RouteStatic   = "static"
)

// FragmentPath is the stream the confirmation page subscribes to.
const FragmentPath = service.ConfirmationPath + "/fragment"

// FormService is the workflow behind the form pages.
type FormService interface {
	LoadLevels(ctx context.Context) service.FormState
	Submit(ctx context.Context, token string, s submission.Submission) service.Outcome
}

// Handler serves the site pages.
type Handler struct {
	svc      FormService
	interval time.Duration
	logger   logger.Logger
	pages    map[string]*template.Template

	closing   chan struct{}
	closeOnce sync.Once
}

// Option configures a Handler.
type Option func(*Handler)

// WithFragmentInterval sets how often the confirmation fragment changes.
func WithFragmentInterval(d time.Duration) Option {
	return func(h *Handler) {
		if d > 0 {
			h.interval = d
		}
	}
}

// WithLogger sets a custom logger for the handler.
func WithLogger(l logger.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// NewHandler parses the embedded pages and returns a handler backed by svc.
func NewHandler(svc FormService, opts ...Option) (*Handler, error) {
	parsed, err := pages()
	if err != nil {
		return nil, err
	}
	h := &Handler{
		svc:      svc,
		interval: moon.DefaultInterval,
		pages:    parsed,
		closing:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = logger.Get().Named("site")
	}
	return h, nil
}

// Register attaches the site routes to router.
func (h *Handler) Register(_ context.Context, router *mux.Router) {
	if router == nil {
		panic("router is nil")
	}

	router.HandleFunc("/", h.HandleForm).Methods(http.MethodGet).Name(RouteForm)
	router.HandleFunc("/", h.HandleSubmit).Methods(http.MethodPost).Name(RouteSubmit)
	router.HandleFunc(service.ConfirmationPath, h.HandleThankYou).Methods(http.MethodGet).Name(RouteThankYou)
	router.HandleFunc(FragmentPath, h.HandleFragment).Methods(http.MethodGet).Name(RouteFragment)
	router.PathPrefix("/static/").
		Handler(http.StripPrefix("/static/", http.FileServer(StaticFS()))).
		Methods(http.MethodGet).
		Name(RouteStatic)
}

// Close ends every open fragment stream and refuses new ones. Other
// requests are unaffected. It is safe to call more than once and suits
// http.Server.RegisterOnShutdown.
func (h *Handler) Close() {
	h.closeOnce.Do(func() { close(h.closing) })
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error(r.Context(), "page failed", logger.Error(err), logger.String("path", r.URL.Path))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
