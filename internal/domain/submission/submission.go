// Package submission defines the assignment submission record, its field
// validation, and the query contract of the confirmation page.
package submission

import (
	"net/url"
	"strings"
)

// Field names. They double as JSON keys and HTML form field names.
const (
	FieldName           = "name"
	FieldEmail          = "email"
	FieldDescription    = "assignment_description"
	FieldRepoURL        = "github_repo_url"
	FieldCandidateLevel = "candidate_level"
)

// Fields lists the submission fields in display order.
var Fields = []string{FieldName, FieldEmail, FieldDescription, FieldRepoURL, FieldCandidateLevel}

// Submission is the five-field record a candidate submits.
type Submission struct {
	Name                  string `json:"name"`
	Email                 string `json:"email"`
	AssignmentDescription string `json:"assignment_description"`
	GithubRepoURL         string `json:"github_repo_url"`
	CandidateLevel        string `json:"candidate_level"`
}

// FromForm builds a Submission from posted form values. Values are taken
// as typed; nothing is trimmed.
func FromForm(form url.Values) Submission {
	return Submission{
		Name:                  form.Get(FieldName),
		Email:                 form.Get(FieldEmail),
		AssignmentDescription: form.Get(FieldDescription),
		GithubRepoURL:         form.Get(FieldRepoURL),
		CandidateLevel:        form.Get(FieldCandidateLevel),
	}
}

// Confirmation is the subset of a submission shown on the confirmation page.
type Confirmation struct {
	Name  string
	Email string
	Level string
}

// Confirmation query parameter names.
const (
	ParamName  = "name"
	ParamEmail = "email"
	ParamLevel = "level"
)

// Confirm returns the confirmation subset of s. The description and
// repository URL are not carried forward.
func (s Submission) Confirm() Confirmation {
	return Confirmation{Name: s.Name, Email: s.Email, Level: s.CandidateLevel}
}

// Query encodes c as name=..&email=..&level=.. in that order.
// Spaces become %20 rather than +.
func (c Confirmation) Query() string {
	var b strings.Builder
	b.WriteString(ParamName + "=" + escape(c.Name))
	b.WriteString("&" + ParamEmail + "=" + escape(c.Email))
	b.WriteString("&" + ParamLevel + "=" + escape(c.Level))
	return b.String()
}

// URL returns path with the encoded query appended.
func (c Confirmation) URL(path string) string {
	return path + "?" + c.Query()
}

// ParseConfirmation reads a Confirmation from query values. Absent
// parameters stay empty.
func ParseConfirmation(q url.Values) Confirmation {
	return Confirmation{
		Name:  q.Get(ParamName),
		Email: q.Get(ParamEmail),
		Level: q.Get(ParamLevel),
	}
}

// componentUnescaper undoes url.QueryEscape for the characters a URI
// component leaves literal, and writes spaces as %20.
var componentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

func escape(s string) string {
	return componentUnescaper.Replace(url.QueryEscape(s))
}
