package site

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"

	"github.com/a-h/templ"
)

const headerHXRequest = "HX-Request"

func isHTMX(r *http.Request) bool {
	return r.Header.Get(headerHXRequest) == "true"
}

// component returns the page as a templ component: the partial for htmx
// requests, the full layout otherwise.
func component(r *http.Request, t *template.Template, data any) templ.Component {
	content := templ.FromGoHTML(t.Lookup("content"), data)
	scripts := templ.FromGoHTML(t.Lookup("scripts"), data)
	if isHTMX(r) {
		return Partial(content, scripts)
	}
	return Layout(pageTitle, content, scripts)
}

// render writes page with status. The page is rendered to a buffer first so
// a template error never leaves a half-written response.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, page string, data any) {
	t, ok := h.pages[page]
	if !ok {
		h.fail(w, r, fmt.Errorf("%w: unknown page %q", ErrRender, page))
		return
	}

	var buf bytes.Buffer
	if err := component(r, t, data).Render(r.Context(), &buf); err != nil {
		h.fail(w, r, fmt.Errorf("%w: %s: %w", ErrRender, page, err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Add("Vary", headerHXRequest)
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
