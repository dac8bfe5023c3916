package http

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/Strob0t/ganttboard/internal/domain/timeline"
)

//go:embed web
var webFS embed.FS

var pageTmpl = template.Must(template.ParseFS(webFS, "web/index.html"))

type pageData struct {
	Title     string
	Theme     string
	Interval  int
	Intervals []int
}

// Dashboard handles GET /
func (h *Handlers) Dashboard(w http.ResponseWriter, _ *http.Request) {
	theme, ok := timeline.ParseTheme(h.UI.Theme)
	if !ok {
		theme = timeline.ThemeLight
	}
	data := pageData{
		Title:     h.UI.Title,
		Theme:     string(theme),
		Interval:  h.Refresher.Interval().Seconds(),
		Intervals: intervalOptions(),
	}

	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, data); err != nil {
		writeInternalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(buf.Bytes())
}

// Static serves the dashboard script and stylesheet.
func Static() http.Handler {
	sub, err := fs.Sub(webFS, "web/static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServerFS(sub))
}
