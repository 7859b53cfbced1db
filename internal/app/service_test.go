package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/okian/handin/internal/adapters/provider"
	service "github.com/okian/handin/internal/app"
	"github.com/okian/handin/internal/domain/inflight"
	"github.com/okian/handin/internal/domain/submission"
	"github.com/okian/handin/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

// fakeProvider records calls and returns canned results.
type fakeProvider struct {
	mu          sync.Mutex
	levels      []string
	levelsErr   error
	createErr   error
	levelCalls  int
	createCalls int
	created     []submission.Submission
	block       chan struct{}
	entered     chan struct{}
}

func (f *fakeProvider) Levels(context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.levelCalls++
	return f.levels, f.levelsErr
}

func (f *fakeProvider) CreateAssignment(_ context.Context, s submission.Submission) error {
	f.mu.Lock()
	f.createCalls++
	f.created = append(f.created, s)
	block, entered := f.block, f.entered
	f.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if block != nil {
		<-block
	}
	return f.createErr
}

func (f *fakeProvider) calls() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.levelCalls, f.createCalls
}

func validSubmission() submission.Submission {
	return submission.Submission{
		Name:                  "Ann",
		Email:                 "ann@x.com",
		AssignmentDescription: "Implemented the checkout flow",
		GithubRepoURL:         "https://github.com/ann/repo",
		CandidateLevel:        "Mid",
	}
}

func TestService_LoadLevels(t *testing.T) {
	Convey("Given a provider returning levels", t, func() {
		p := &fakeProvider{levels: []string{"Junior", "Mid", "Senior"}}
		svc := service.New(p, service.WithLogger(logger.Nop()))

		Convey("When the form mounts", func() {
			state := svc.LoadLevels(context.Background())

			Convey("Then the options should keep the service order", func() {
				So(state.Levels, ShouldResemble, []string{"Junior", "Mid", "Senior"})
				So(state.FetchError, ShouldBeEmpty)
			})

			Convey("And exactly one fetch should be issued", func() {
				levelCalls, _ := p.calls()
				So(levelCalls, ShouldEqual, 1)
			})
		})
	})

	Convey("Given a failing provider", t, func() {
		p := &fakeProvider{levelsErr: provider.ErrLevelsUnavailable}
		svc := service.New(p, service.WithLogger(logger.Nop()))

		Convey("When the form mounts", func() {
			state := svc.LoadLevels(context.Background())

			Convey("Then the standing error should be set and there should be no options", func() {
				So(state.FetchError, ShouldEqual, service.LevelsFailedMessage)
				So(state.Levels, ShouldBeEmpty)
			})
		})
	})
}

func TestService_Submit(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service with an accepting provider", t, func() {
		p := &fakeProvider{}
		svc := service.New(p, service.WithLogger(logger.Nop()))

		Convey("When a valid submission is sent", func() {
			out := svc.Submit(ctx, service.NewFormToken(), validSubmission())

			Convey("Then it should redirect to the confirmation page", func() {
				So(out.OK(), ShouldBeTrue)
				So(out.Redirect, ShouldEqual, "/thank-you?name=Ann&email=ann%40x.com&level=Mid")
				So(out.Alert, ShouldBeEmpty)
				So(out.Errors, ShouldBeEmpty)
			})

			Convey("And the five fields should be forwarded as typed", func() {
				So(p.created, ShouldHaveLength, 1)
				So(p.created[0], ShouldResemble, validSubmission())
			})
		})

		invalid := []struct {
			field   string
			breakIt func(*submission.Submission)
		}{
			{submission.FieldName, func(s *submission.Submission) { s.Name = "" }},
			{submission.FieldEmail, func(s *submission.Submission) { s.Email = "not-an-email" }},
			{submission.FieldDescription, func(s *submission.Submission) { s.AssignmentDescription = "too short" }},
			{submission.FieldRepoURL, func(s *submission.Submission) { s.GithubRepoURL = "github.com/ann/repo" }},
			{submission.FieldCandidateLevel, func(s *submission.Submission) { s.CandidateLevel = "" }},
		}
		for _, tc := range invalid {
			field, breakIt := tc.field, tc.breakIt
			Convey("When "+field+" is invalid", func() {
				s := validSubmission()
				breakIt(&s)
				out := svc.Submit(ctx, service.NewFormToken(), s)

				Convey("Then only that field should be reported", func() {
					So(out.OK(), ShouldBeFalse)
					So(out.Errors.Fields(), ShouldResemble, []string{field})
				})

				Convey("And no outbound call should be made", func() {
					_, createCalls := p.calls()
					So(createCalls, ShouldEqual, 0)
				})
			})
		}
	})

	Convey("Given a provider that rejects the submission", t, func() {
		p := &fakeProvider{createErr: &provider.SubmitError{StatusCode: 400, Errors: []string{"Email already used"}}}
		svc := service.New(p, service.WithLogger(logger.Nop()))

		Convey("When a valid submission is sent", func() {
			out := svc.Submit(ctx, service.NewFormToken(), validSubmission())

			Convey("Then the upstream message should be the alert", func() {
				So(out.OK(), ShouldBeFalse)
				So(out.Alert, ShouldEqual, "Email already used")
				So(out.Duplicate, ShouldBeFalse)
			})
		})
	})

	Convey("Given a provider failing without detail", t, func() {
		p := &fakeProvider{createErr: errors.New("connection reset")}
		svc := service.New(p, service.WithLogger(logger.Nop()))

		Convey("When a valid submission is sent", func() {
			out := svc.Submit(ctx, "", validSubmission())

			Convey("Then the generic message should be the alert", func() {
				So(out.Alert, ShouldEqual, provider.GenericSubmitMessage)
			})
		})
	})

	Convey("Given a submission already in flight", t, func() {
		p := &fakeProvider{block: make(chan struct{}), entered: make(chan struct{}, 1)}
		tracker := inflight.NewInMemoryTracker()
		svc := service.New(p, service.WithLogger(logger.Nop()), service.WithTracker(tracker))
		token := service.NewFormToken()

		first := make(chan service.Outcome, 1)
		go func() { first <- svc.Submit(ctx, token, validSubmission()) }()
		<-p.entered

		Convey("When the same form is submitted again", func() {
			out := svc.Submit(ctx, token, validSubmission())
			close(p.block)
			firstOut := <-first

			Convey("Then the second submit should be refused", func() {
				So(out.Duplicate, ShouldBeTrue)
				So(out.Alert, ShouldEqual, service.DuplicateMessage)
			})

			Convey("And only one outbound call should be made", func() {
				_, createCalls := p.calls()
				So(createCalls, ShouldEqual, 1)
				So(firstOut.OK(), ShouldBeTrue)
			})

			Convey("And the token should be released afterwards", func() {
				So(tracker.Size(), ShouldEqual, 0)
			})
		})
	})

	Convey("Given a full in-flight guard", t, func() {
		p := &fakeProvider{}
		tracker := inflight.NewInMemoryTracker(inflight.WithMaxSize(1))
		So(tracker.Begin(ctx, "other-form"), ShouldBeNil)
		svc := service.New(p, service.WithLogger(logger.Nop()), service.WithTracker(tracker))

		Convey("When a new form is submitted", func() {
			out := svc.Submit(ctx, service.NewFormToken(), validSubmission())

			Convey("Then it should fail with the generic message and not call out", func() {
				So(out.Duplicate, ShouldBeFalse)
				So(out.Alert, ShouldEqual, provider.GenericSubmitMessage)
				_, createCalls := p.calls()
				So(createCalls, ShouldEqual, 0)
			})
		})
	})
}
