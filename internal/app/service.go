// Package service implements the assignment form workflow: loading the
// candidate levels for a form mount and submitting a validated assignment.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/okian/handin/internal/adapters/provider"
	"github.com/okian/handin/internal/domain/inflight"
	"github.com/okian/handin/internal/domain/submission"
	"github.com/okian/handin/pkg/logger"
	"github.com/okian/handin/pkg/metrics"
)

// ConfirmationPath is where a successful submission is redirected.
const ConfirmationPath = "/thank-you"

// User-facing messages.
const (
	LevelsFailedMessage = "Failed to load candidate levels. Please refresh the page."
	DuplicateMessage    = "This form is already being submitted."
)

// Provider is the remote candidate service.
type Provider interface {
	Levels(ctx context.Context) ([]string, error)
	CreateAssignment(ctx context.Context, s submission.Submission) error
}

// FormState is what a form mount needs: the level options, or the standing
// error when they could not be loaded.
type FormState struct {
	Levels     []string
	FetchError string
}

// Outcome is the result of a submit attempt. Exactly one of Errors, Alert or
// Redirect is set.
type Outcome struct {
	// Errors holds per-field validation messages; nothing was sent.
	Errors submission.Errors
	// Alert is the blocking message for a refused or failed submission.
	Alert string
	// Duplicate is set when the form token was already in flight.
	Duplicate bool
	// Redirect is the confirmation URL after a successful submission.
	Redirect string
}

// OK reports whether the submission was accepted.
func (o Outcome) OK() bool { return o.Redirect != "" }

// Service runs the form workflow against a Provider.
type Service struct {
	provider Provider
	tracker  inflight.Tracker
	logger   logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTracker sets the in-flight guard used for form tokens.
func WithTracker(t inflight.Tracker) Option {
	return func(s *Service) {
		if t != nil {
			s.tracker = t
		}
	}
}

// New constructs a Service backed by p.
func New(p Provider, opts ...Option) *Service {
	s := &Service{provider: p}
	for _, opt := range opts {
		opt(s)
	}
	if s.tracker == nil {
		s.tracker = inflight.NewInMemoryTracker()
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	return s
}

// NewFormToken returns a fresh token identifying one rendered form.
func NewFormToken() string {
	return uuid.NewString()
}

// LoadLevels fetches the level options once for a form mount. On failure the
// options are empty and FetchError carries the standing page message.
func (s *Service) LoadLevels(ctx context.Context) FormState {
	start := time.Now()
	levels, err := s.provider.Levels(ctx)
	metrics.RecordLevelFetchLatency(float64(time.Since(start).Milliseconds()))

	if err != nil {
		metrics.RecordLevelFetch(metrics.OutcomeFailure)
		s.logger.Error(ctx, "failed to load candidate levels", logger.Error(err))
		return FormState{FetchError: LevelsFailedMessage}
	}

	metrics.RecordLevelFetch(metrics.OutcomeSuccess)
	return FormState{Levels: levels}
}

// Validate checks every field and counts each failure.
func (s *Service) Validate(sub submission.Submission) submission.Errors {
	errs := submission.Validate(sub)
	for _, field := range errs.Fields() {
		metrics.RecordValidationFailure(field)
	}
	return errs
}

// Submit validates sub and, if valid, creates the assignment. The token
// guards against a second concurrent submit of the same rendered form; an
// empty token skips the guard.
func (s *Service) Submit(ctx context.Context, token string, sub submission.Submission) Outcome {
	if errs := s.Validate(sub); !errs.Valid() {
		metrics.RecordSubmission(metrics.OutcomeInvalid)
		return Outcome{Errors: errs}
	}

	if token != "" {
		if err := s.tracker.Begin(ctx, token); err != nil {
			return s.refuse(ctx, token, err)
		}
		metrics.UpdateSubmissionsInFlight(s.tracker.Size())
		defer func() {
			s.tracker.End(ctx, token)
			metrics.UpdateSubmissionsInFlight(s.tracker.Size())
		}()
	}

	start := time.Now()
	err := s.provider.CreateAssignment(ctx, sub)
	metrics.RecordSubmissionLatency(float64(time.Since(start).Milliseconds()))

	if err != nil {
		metrics.RecordSubmission(metrics.OutcomeFailure)
		alert := provider.GenericSubmitMessage
		var serr *provider.SubmitError
		if errors.As(err, &serr) {
			alert = serr.Alert()
		}
		s.logger.Warn(ctx, "assignment submission failed", logger.Error(err))
		return Outcome{Alert: alert}
	}

	metrics.RecordSubmission(metrics.OutcomeSuccess)
	s.logger.Info(ctx, "assignment submitted", logger.String("level", sub.CandidateLevel))
	return Outcome{Redirect: sub.Confirm().URL(ConfirmationPath)}
}

func (s *Service) refuse(ctx context.Context, token string, err error) Outcome {
	if errors.Is(err, inflight.ErrInFlight) {
		metrics.RecordSubmission(metrics.OutcomeDuplicate)
		s.logger.Warn(ctx, "duplicate submission refused", logger.String("token", token))
		return Outcome{Alert: DuplicateMessage, Duplicate: true}
	}
	metrics.RecordSubmission(metrics.OutcomeFailure)
	s.logger.Error(ctx, "submission refused", logger.Error(err))
	return Outcome{Alert: provider.GenericSubmitMessage}
}
