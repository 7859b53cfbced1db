package site

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// HTMXSrc is where pages load htmx from.
const HTMXSrc = "https://unpkg.com/htmx.org@2.0.4/dist/htmx.min.js"

// HTMXConfig makes htmx swap the form's own error responses (409, 422 and
// 502 all carry a re-rendered form) and leave any other error alone.
const HTMXConfig = `{"responseHandling":[` +
	`{"code":"204","swap":false},` +
	`{"code":"[23]..","swap":true},` +
	`{"code":"(409|422|502)","swap":true,"error":false},` +
	`{"code":"[45]..","swap":false,"error":true}]}`

// Layout wraps a page body in the document shell. scripts is rendered last
// in the body.
func Layout(title string, content, scripts templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <meta name="htmx-config" content="%s">
  <title>%s</title>
  <link rel="stylesheet" href="/static/site.css">
  <script src="%s" defer></script>
</head>
<body>
  <main id="page" class="page">
`, templ.EscapeString(HTMXConfig), templ.EscapeString(title), templ.EscapeString(HTMXSrc))
		if err != nil {
			return err
		}
		if err := content.Render(ctx, w); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "\n  </main>\n"); err != nil {
			return err
		}
		if err := scripts.Render(ctx, w); err != nil {
			return err
		}
		_, err = io.WriteString(w, "\n</body>\n</html>\n")
		return err
	})
}

// Partial is what an htmx request swaps in: the page body followed by its
// scripts, so they run again on the new nodes.
func Partial(content, scripts templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := content.Render(ctx, w); err != nil {
			return err
		}
		return scripts.Render(ctx, w)
	})
}
