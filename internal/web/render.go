package web

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"go.uber.org/zap"

	"github.com/hpungsan/tratativa/internal/checklist"
	"github.com/hpungsan/tratativa/internal/errors"
	"github.com/hpungsan/tratativa/internal/logging"
	"github.com/hpungsan/tratativa/internal/ops"
)

// PageData contains common fields used across all page templates.
type PageData struct {
	Title   string
	Version string
	Nav     string // active nav item: "checklist", "templates"
	Flash   string
}

// ChecklistPageData is the template data for the checklist page.
type ChecklistPageData struct {
	PageData
	State       *ops.SnapshotOutput
	CommentHTML template.HTML
	SavedAt     string
}

// TemplateRow is one stored template with its display position.
type TemplateRow struct {
	checklist.Template
	Position int
	Keys     []string
}

// TemplatesPageData is the template data for the templates page.
type TemplatesPageData struct {
	PageData
	Templates []TemplateRow
	Questions []checklist.Question
	Edit      *checklist.Template
}

// ErrorPageData is the template data for the error page.
type ErrorPageData struct {
	PageData
	StatusCode int
	Message    string
}

// Renderer manages template parsing and rendering.
type Renderer struct {
	templates map[string]*template.Template
	version   string
	loc       *time.Location
	logger    *zap.Logger
}

// NewRenderer parses the layout and every page from templateFS.
func NewRenderer(templateFS fs.FS, version string, loc *time.Location, logger *zap.Logger) *Renderer {
	if loc == nil {
		loc = time.Local
	}
	r := &Renderer{version: version, loc: loc, logger: logging.OrNop(logger)}

	funcMap := template.FuncMap{
		"add":         func(a, b int) int { return a + b },
		"sub":         func(a, b int) int { return a - b },
		"statusClass": statusClass,
		"condition": func(t *checklist.Template, id string) string {
			if t == nil {
				return ""
			}
			return t.Conditions[id]
		},
		"questionText": func(id string) string {
			if q, ok := checklist.QuestionByID(id); ok {
				return q.Text
			}
			return id
		},
	}

	layoutTmpl := template.Must(template.New("layout").Funcs(funcMap).ParseFS(templateFS, "layout.html"))

	pages := map[string]string{
		"checklist": "checklist.html",
		"templates": "templates.html",
		"error":     "error.html",
	}

	r.templates = make(map[string]*template.Template, len(pages))
	for name, file := range pages {
		t := template.Must(layoutTmpl.Clone())
		template.Must(t.ParseFS(templateFS, file))
		r.templates[name] = t
	}
	return r
}

func (r *Renderer) page(title, nav string) PageData {
	return PageData{Title: title, Version: r.version, Nav: nav}
}

// renderPage renders a named page template with the given data and HTTP 200 status.
func (r *Renderer) renderPage(w http.ResponseWriter, name string, data any) {
	r.renderPageStatus(w, http.StatusOK, name, data)
}

// renderPageStatus renders into a buffer first so a template failure
// still produces a clean 500.
func (r *Renderer) renderPageStatus(w http.ResponseWriter, status int, name string, data any) {
	t, ok := r.templates[name]
	if !ok {
		r.logger.Error("template not found", zap.String("template", name))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		r.logger.Error("template execution failed", zap.String("template", name), zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// renderError renders an error as JSON for API callers and as the error
// page otherwise. Internal details are logged, never shown.
func (r *Renderer) renderError(w http.ResponseWriter, req *http.Request, err error) {
	var tErr *errors.TratativaError
	if !stderrors.As(err, &tErr) {
		tErr = errors.NewInternal(err)
	}
	if tErr.Code == errors.ErrInternal {
		r.logger.Error("request failed",
			zap.String("path", req.URL.Path), zap.Any("details", tErr.Details))
	}

	if wantsJSON(req) {
		renderJSON(w, tErr.Status, map[string]any{
			"error": map[string]any{
				"code":    string(tErr.Code),
				"message": tErr.Message,
				"status":  tErr.Status,
			},
		})
		return
	}

	r.renderPageStatus(w, tErr.Status, "error", ErrorPageData{
		PageData:   r.page(fmt.Sprintf("Erro %d", tErr.Status), ""),
		StatusCode: tErr.Status,
		Message:    tErr.Message,
	})
}

// wantsJSON reports whether the caller is the JSON API or asked for JSON.
func wantsJSON(req *http.Request) bool {
	return strings.HasPrefix(req.URL.Path, "/api/") ||
		strings.Contains(req.Header.Get("Accept"), "application/json")
}

// renderJSON writes a JSON response.
func renderJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(data)
}

// renderMarkdown converts the generated comment to HTML. goldmark escapes
// raw HTML unless told otherwise, so template comments cannot inject markup.
func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

// formatTime formats a unix timestamp as dd/mm/yyyy hh:mm in the renderer's zone.
func (r *Renderer) formatTime(unix int64) string {
	if unix == 0 {
		return ""
	}
	return time.Unix(unix, 0).In(r.loc).Format("02/01/2006 15:04")
}

func statusClass(s checklist.Status) string {
	return "status-" + string(s)
}
