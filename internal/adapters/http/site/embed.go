package site

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

// Page names.
const (
	pageForm     = "form"
	pageThankYou = "thankyou"
)

// pages parses one template set per page; each page defines the "content"
// and "scripts" blocks that Layout and Partial render.
func pages() (map[string]*template.Template, error) {
	out := make(map[string]*template.Template, 2)
	for _, name := range []string{pageForm, pageThankYou} {
		t, err := template.ParseFS(templateFS, "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("%w: parse %s: %w", ErrTemplate, name, err)
		}
		if t.Lookup("content") == nil || t.Lookup("scripts") == nil {
			return nil, fmt.Errorf("%w: %s must define content and scripts", ErrTemplate, name)
		}
		out[name] = t
	}
	return out, nil
}

// StaticFS returns an http.FileSystem for the embedded css and js.
func StaticFS() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return http.FS(staticFS)
	}
	return http.FS(sub)
}
