package web

import (
	"embed"
	"fmt"
	"html"
	"html/template"
	"io"
	"io/fs"

	"github.com/Zachkp/portfolio/internal/page"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// renderData is what every page template receives.
type renderData struct {
	page.View
	Live         bool
	StaticPrefix string
}

var contactIcons = map[string]string{
	"email":    "mail",
	"linkedin": "linkedin",
	"github":   "github",
	"twitter":  "twitter",
	"website":  "globe",
}

func funcs() template.FuncMap {
	return template.FuncMap{
		"revealAttrs": revealAttrs,
		"contactIcon": func(kind string) string {
			if name, ok := contactIcons[kind]; ok {
				return name
			}
			return "link"
		},
	}
}

// revealAttrs renders the attributes of a revealed block: its id for the
// live bridge, the hidden or resting classes and the transition delay.
func revealAttrs(r page.RegionView) template.HTMLAttr {
	return template.HTMLAttr(fmt.Sprintf(`data-reveal="%s" class="%s" style="transition-delay: %dms"`,
		html.EscapeString(r.ID), html.EscapeString(r.Classes()), r.DelayMillis()))
}

// ParseTemplates parses the embedded page templates.
func ParseTemplates() (*template.Template, error) {
	t, err := template.New("").Funcs(funcs()).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return t, nil
}

// StaticFS is the embedded asset tree rooted at the static directory.
func StaticFS() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// RenderStatic writes the full page for v without the live bridge.
func RenderStatic(w io.Writer, t *template.Template, v page.View) error {
	return t.ExecuteTemplate(w, "index.html", renderData{View: v, StaticPrefix: "static/"})
}
