package ui

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"motoshop.store/moto-web/internal/web/format"
	"motoshop.store/moto-web/templates"
)

// Renderer holds the parsed template sets. Every page set is the base layout
// plus the shared partials plus that page; fragments render partials alone.
type Renderer struct {
	pages    map[string]*template.Template
	partials *template.Template
	log      *zap.Logger
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"price":    format.Price,
		"quantity": format.Quantity,
		"date":     format.Date,
		"datetime": format.DateTime,
		"now":      time.Now,
	}
}

// NewRenderer parses the embedded templates.
func NewRenderer(log *zap.Logger) (*Renderer, error) {
	if log == nil {
		log = zap.NewNop()
	}
	funcs := templateFuncs()

	partialFiles, err := fs.Glob(templates.FS, "partials/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("glob partials: %w", err)
	}
	partials, err := template.New("partials").Funcs(funcs).ParseFS(templates.FS, partialFiles...)
	if err != nil {
		return nil, fmt.Errorf("parse partials: %w", err)
	}

	pageFiles, err := fs.Glob(templates.FS, "pages/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("glob pages: %w", err)
	}

	pages := make(map[string]*template.Template, len(pageFiles))
	for _, file := range pageFiles {
		name := strings.TrimSuffix(path.Base(file), ".tmpl")
		set, err := template.New("base.tmpl").Funcs(funcs).ParseFS(templates.FS, append([]string{"base.tmpl"}, partialFiles...)...)
		if err != nil {
			return nil, fmt.Errorf("parse base for %s: %w", name, err)
		}
		if _, err := set.ParseFS(templates.FS, file); err != nil {
			return nil, fmt.Errorf("parse page %s: %w", name, err)
		}
		pages[name] = set
	}

	return &Renderer{pages: pages, partials: partials, log: log}, nil
}

// Page renders a full page through the base layout.
func (r *Renderer) Page(w http.ResponseWriter, name string, data any) {
	set, ok := r.pages[name]
	if !ok {
		r.log.Error("unknown page template", zap.String("page", name))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := set.ExecuteTemplate(&buf, "base.tmpl", data); err != nil {
		r.log.Error("render page failed", zap.String("page", name), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// Fragment renders a named partial without the layout, for htmx swaps.
func (r *Renderer) Fragment(w http.ResponseWriter, name string, data any) {
	var buf bytes.Buffer
	if err := r.partials.ExecuteTemplate(&buf, name, data); err != nil {
		r.log.Error("render fragment failed", zap.String("fragment", name), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
