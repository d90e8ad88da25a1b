// Package templates renders the HTML fragments behind Datastar SSE patches.
package templates

import (
	"bytes"
	"encoding/base64"
	"html/template"
	"image"
	"path/filepath"
	"sync"

	"github.com/disintegration/imaging"
)

// funcMap provides common template functions.
var funcMap = template.FuncMap{
	// dict creates a map from key-value pairs, useful for passing multiple
	// values to nested templates
	"dict": func(values ...any) map[string]any {
		if len(values)%2 != 0 {
			return nil
		}
		m := make(map[string]any, len(values)/2)
		for i := 0; i < len(values); i += 2 {
			key, ok := values[i].(string)
			if !ok {
				continue
			}
			m[key] = values[i+1]
		}
		return m
	},
	// pngURI inlines a rendered preview raster as a data URI, so legend
	// entries need no extra image round-trips
	"pngURI": func(img image.Image) (template.URL, error) {
		if img == nil {
			return "", nil
		}
		var buf bytes.Buffer
		if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
			return "", err
		}
		return template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())), nil
	},
}

// Renderer manages HTML fragment templates.
type Renderer struct {
	pattern   string
	templates *template.Template
	mu        sync.RWMutex
}

// New creates a renderer from every *.html file in fragmentsDir.
// Fragments declare their names with {{define}} blocks.
func New(fragmentsDir string) (*Renderer, error) {
	pattern := filepath.Join(fragmentsDir, "*.html")
	tmpl, err := template.New("").Funcs(funcMap).ParseGlob(pattern)
	if err != nil {
		return nil, err
	}
	return &Renderer{pattern: pattern, templates: tmpl}, nil
}

// Render renders a named template to a string.
func (r *Renderer) Render(name string, data any) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderToBuffer renders a named template to a buffer.
func (r *Renderer) RenderToBuffer(buf *bytes.Buffer, name string, data any) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.templates.ExecuteTemplate(buf, name, data)
}

// Reload re-parses the fragment files (useful for dev hot-reload).
func (r *Renderer) Reload() error {
	tmpl, err := template.New("").Funcs(funcMap).ParseGlob(r.pattern)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.templates = tmpl
	r.mu.Unlock()

	return nil
}
