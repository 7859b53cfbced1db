package submission

import (
	"fmt"
	"net/mail"
	"net/url"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Validation messages, one per field.
const (
	MsgNameRequired     = "Name is required."
	MsgEmailInvalid     = "Valid email is required."
	MsgDescriptionShort = "Assignment description must be at least 10 characters."
	MsgRepoURLInvalid   = "Valid GitHub repository URL is required."
	MsgLevelRequired    = "Candidate level is required."
)

// MinDescriptionLength is the minimum assignment description length in runes.
const MinDescriptionLength = 10

const (
	emailFormat = "candidate-email"
	urlFormat   = "repo-url"
)

var messages = map[string]string{
	FieldName:           MsgNameRequired,
	FieldEmail:          MsgEmailInvalid,
	FieldDescription:    MsgDescriptionShort,
	FieldRepoURL:        MsgRepoURLInvalid,
	FieldCandidateLevel: MsgLevelRequired,
}

var schemaJSON = fmt.Sprintf(`{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["name", "email", "assignment_description", "github_repo_url", "candidate_level"],
  "properties": {
    "name":                   {"type": "string", "minLength": 1},
    "email":                  {"type": "string", "format": %q},
    "assignment_description": {"type": "string", "minLength": %d},
    "github_repo_url":        {"type": "string", "format": %q},
    "candidate_level":        {"type": "string", "minLength": 1}
  }
}`, emailFormat, MinDescriptionLength, urlFormat)

var schema *gojsonschema.Schema

func init() {
	// Custom formats must be registered before the schema is compiled;
	// unknown formats are silently ignored by the compiler.
	gojsonschema.FormatCheckers.Add(emailFormat, emailChecker{})
	gojsonschema.FormatCheckers.Add(urlFormat, urlChecker{})

	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	if err != nil {
		panic(fmt.Sprintf("submission: compile schema: %v", err))
	}
	schema = s
}

// Errors maps a field name to its first failing message. A field absent
// from the map is valid.
type Errors map[string]string

// Valid reports whether no field failed.
func (e Errors) Valid() bool { return len(e) == 0 }

// Has reports whether field failed.
func (e Errors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

// Fields returns the failing field names in display order.
func (e Errors) Fields() []string {
	out := make([]string, 0, len(e))
	for _, f := range Fields {
		if e.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

// Validate checks s against the submission schema. It is pure and does no I/O.
func Validate(s Submission) Errors {
	errs := Errors{}

	res, err := schema.Validate(gojsonschema.NewGoLoader(s))
	if err != nil {
		// The document is a plain struct, so this only happens if the
		// schema itself is broken. Block every field.
		for f, msg := range messages {
			errs[f] = msg
		}
		return errs
	}

	for _, re := range res.Errors() {
		field := re.Field()
		if re.Type() == "required" {
			if p, ok := re.Details()["property"].(string); ok {
				field = p
			}
		}
		msg, known := messages[field]
		if !known || errs.Has(field) {
			continue
		}
		errs[field] = msg
	}
	return errs
}

// emailChecker accepts a bare addr-spec whose domain has a dot, e.g.
// ann@x.com. Display-name forms such as "Ann <ann@x.com>" are rejected.
type emailChecker struct{}

func (emailChecker) IsFormat(input interface{}) bool {
	s, ok := input.(string)
	if !ok {
		return true
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Name != "" || addr.Address != s {
		return false
	}
	domain := s[strings.LastIndex(s, "@")+1:]
	return strings.Contains(domain, ".") &&
		!strings.HasPrefix(domain, ".") &&
		!strings.HasSuffix(domain, ".")
}

// urlChecker accepts an absolute URL. Hierarchical URLs, meaning http, https
// or anything written with "//", must also name a host, so "https://" and
// "http:" are rejected.
type urlChecker struct{}

func (urlChecker) IsFormat(input interface{}) bool {
	s, ok := input.(string)
	if !ok {
		return true
	}
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" {
		return false
	}
	switch {
	case strings.EqualFold(u.Scheme, "http"), strings.EqualFold(u.Scheme, "https"), strings.Contains(s, "//"):
		return u.Host != "" && u.Hostname() != ""
	default:
		return u.Opaque != "" || u.Path != ""
	}
}
