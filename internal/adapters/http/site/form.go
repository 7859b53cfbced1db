package site

import (
	"net/http"

	service "github.com/okian/handin/internal/app"
	"github.com/okian/handin/internal/domain/submission"
)

// Form field names that carry page state between renders.
const (
	fieldToken        = "form_token"
	fieldLevelOption  = "level_option"
	fieldLevelsFailed = "levels_failed"
)

const pageTitle = "Assignment Submission"

const headerHXRedirect = "HX-Redirect"

type formView struct {
	Token        string
	Levels       []string
	LevelsFailed bool
	FetchError   string
	Values       submission.Submission
	Errors       submission.Errors
	Alert        string
}

func newFormView(token string, state service.FormState) formView {
	return formView{
		Token:        token,
		Levels:       state.Levels,
		LevelsFailed: state.FetchError != "",
		FetchError:   state.FetchError,
	}
}

// HandleForm handles GET /. Each call is one form mount and fetches the
// levels once.
func (h *Handler) HandleForm(w http.ResponseWriter, r *http.Request) {
	state := h.svc.LoadLevels(r.Context())
	h.render(w, r, http.StatusOK, pageForm, newFormView(service.NewFormToken(), state))
}

// HandleSubmit handles POST /. Invalid input is re-rendered with field
// messages and nothing is sent; a failed submission is re-rendered with a
// blocking alert and the entered values; success redirects to the
// confirmation page.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	token := r.PostForm.Get(fieldToken)
	if token == "" {
		token = service.NewFormToken()
	}
	sub := submission.FromForm(r.PostForm)

	out := h.svc.Submit(r.Context(), token, sub)
	if out.OK() {
		if isHTMX(r) {
			w.Header().Set(headerHXRedirect, out.Redirect)
			w.WriteHeader(http.StatusOK)
			return
		}
		http.Redirect(w, r, out.Redirect, http.StatusSeeOther)
		return
	}

	view := newFormView(token, stateFromForm(r))
	view.Values = sub
	view.Errors = out.Errors
	view.Alert = out.Alert

	status := http.StatusBadGateway
	switch {
	case !out.Errors.Valid():
		status = http.StatusUnprocessableEntity
	case out.Duplicate:
		status = http.StatusConflict
	}
	h.render(w, r, status, pageForm, view)
}

// stateFromForm restores the mount's level options from the hidden inputs,
// so a re-render does not fetch them again.
func stateFromForm(r *http.Request) service.FormState {
	if r.PostForm.Get(fieldLevelsFailed) != "" {
		return service.FormState{FetchError: service.LevelsFailedMessage}
	}
	return service.FormState{Levels: r.PostForm[fieldLevelOption]}
}
