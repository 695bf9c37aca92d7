/*
Package web holds the browser UI: the login and dashboard pages (html/template)
and the static script and stylesheet, all embedded in the binary.
*/
package web

import (
	"embed"
	"html/template"
	"io"
	"io/fs"

	"github.com/labstack/echo/v4"
	"github.com/tuumbleweed/xerr"

	"erp-dashboard/src/pkg/report"
)

//go:embed templates/*.html
var templateFiles embed.FS

//go:embed static
var staticFiles embed.FS

const (
	PageLogin     = "login.html"
	PageDashboard = "dashboard.html"
)

// NavItem is one sidebar entry.
type NavItem struct {
	ID          report.ID
	Title       string
	Description string
}

// PageData is what both templates receive.
type PageData struct {
	Title          string
	User           string
	RefreshMinutes int
	DefaultStart   string
	DefaultEnd     string
	Nav            []NavItem
	ConfigProblems []string
}

// Navigation lists every dashboard view in sidebar order.
func Navigation() []NavItem {
	items := make([]NavItem, 0, len(report.IDs))
	for _, id := range report.IDs {
		items = append(items, NavItem{ID: id, Title: id.Title(), Description: id.Description()})
	}
	return items
}

// Renderer is an echo.Renderer over the embedded templates.
type Renderer struct {
	templates *template.Template
}

func NewRenderer() (renderer *Renderer, e *xerr.Error) {
	templates, err := template.ParseFS(templateFiles, "templates/*.html")
	if err != nil {
		return nil, xerr.NewError(err, "parse embedded templates", "templates/*.html")
	}
	return &Renderer{templates: templates}, nil
}

func (r *Renderer) Render(w io.Writer, name string, data any, c echo.Context) error {
	return r.templates.ExecuteTemplate(w, name, data)
}

// Static is the static directory rooted at its contents (app.js, style.css).
func Static() fs.FS {
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err) // the directory is embedded at build time
	}
	return sub
}
