package vial

import (
	"html/template"
	"net/http"
)

// DocsUI selects the documentation front-end served by ServeDocs.
type DocsUI string

// Supported documentation UIs, all loaded from their public CDNs.
const (
	UIRapiDoc   DocsUI = "rapidoc"
	UIElements  DocsUI = "elements"
	UIReDoc     DocsUI = "redoc"
	UISwaggerUI DocsUI = "swagger"
)

// DocsOption configures the docs UI.
type DocsOption func(*docsConfig)

type docsConfig struct {
	title   string
	specURL string
	ui      DocsUI
}

// WithDocsTitle sets the page title for the docs UI.
func WithDocsTitle(title string) DocsOption {
	return func(c *docsConfig) {
		c.title = title
	}
}

// WithDocsSpecURL points the docs UI at a spec path other than the
// default /openapi.json.
func WithDocsSpecURL(url string) DocsOption {
	return func(c *docsConfig) {
		c.specURL = url
	}
}

// WithDocsUI selects the documentation front-end. Unknown values fall
// back to RapiDoc.
func WithDocsUI(ui DocsUI) DocsOption {
	return func(c *docsConfig) {
		c.ui = ui
	}
}

// ServeDocs serves an interactive API documentation UI at the given
// path, rendered against the router's OpenAPI document. The docs page
// itself is kept out of the document.
func (r *Router) ServeDocs(path string, opts ...DocsOption) {
	cfg := &docsConfig{
		title:   r.title,
		specURL: "/openapi.json",
		ui:      UIRapiDoc,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	page, ok := docsPages[cfg.ui]
	if !ok {
		page = docsPages[UIRapiDoc]
	}
	tmpl := template.Must(template.New("docs").Parse(page))

	r.mux.HandleFunc("GET "+path, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		//nolint:errcheck,gosec // best-effort template render
		tmpl.Execute(w, cfg)
	})
}

// Title returns the docs config title (used in the templates).
func (c *docsConfig) Title() string { return c.title }

// SpecURL returns the docs config spec URL (used in the templates).
func (c *docsConfig) SpecURL() string { return c.specURL }

var docsPages = map[DocsUI]string{
	UIRapiDoc:   rapidocHTML,
	UIElements:  elementsHTML,
	UIReDoc:     redocHTML,
	UISwaggerUI: swaggerHTML,
}

const rapidocHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{.Title}}</title>
  <script type="module" src="https://unpkg.com/rapidoc/dist/rapidoc-min.js"></script>
</head>
<body>
  <rapi-doc
    spec-url="{{.SpecURL}}"
    render-style="focused"
    show-header="false"
    allow-spec-url-load="false"
    allow-spec-file-load="false"
  ></rapi-doc>
</body>
</html>`

const elementsHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{.Title}}</title>
  <link rel="stylesheet" href="https://unpkg.com/@stoplight/elements/styles.min.css">
  <script src="https://unpkg.com/@stoplight/elements/web-components.min.js"></script>
</head>
<body>
  <elements-api
    apiDescriptionUrl="{{.SpecURL}}"
    router="hash"
    layout="sidebar"
  />
</body>
</html>`

const redocHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{.Title}}</title>
</head>
<body>
  <redoc spec-url="{{.SpecURL}}"></redoc>
  <script src="https://cdn.redoc.ly/redoc/latest/bundles/redoc.standalone.js"></script>
</body>
</html>`

const swaggerHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{.Title}}</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist/swagger-ui.css">
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist/swagger-ui-bundle.js"></script>
  <script>
    window.onload = () => {
      SwaggerUIBundle({url: "{{.SpecURL}}", dom_id: "#swagger-ui"});
    };
  </script>
</body>
</html>`
