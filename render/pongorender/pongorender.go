// Package pongorender renders genview templates with pongo2 (Django-style
// templates), loaded from an fs.FS or a directory.
package pongorender

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/pthm/genview"
)

// Option configures a Renderer.
type Option func(*config)

type config struct {
	templates fs.FS
	baseDir   string
	globals   pongo2.Context
	noCache   bool
}

// WithFS loads templates from fsys, typically an embed.FS.
func WithFS(fsys fs.FS) Option {
	return func(c *config) {
		c.templates = fsys
	}
}

// WithBaseDir loads templates from a directory on disk.
func WithBaseDir(dir string) Option {
	return func(c *config) {
		c.baseDir = dir
	}
}

// WithGlobals seeds values visible to every template.
func WithGlobals(globals map[string]any) Option {
	return func(c *config) {
		if c.globals == nil {
			c.globals = pongo2.Context{}
		}
		for k, v := range globals {
			c.globals[k] = v
		}
	}
}

// WithoutCache re-parses templates on every render, for development.
func WithoutCache() Option {
	return func(c *config) {
		c.noCache = true
	}
}

// Renderer is a genview.TemplateRenderer over a pongo2 template set.
// Parsed templates are cached by name.
type Renderer struct {
	mu        sync.RWMutex
	set       *pongo2.TemplateSet
	templates map[string]*pongo2.Template
	noCache   bool
}

var _ genview.TemplateRenderer = (*Renderer)(nil)

// New creates a renderer. At least one of WithFS and WithBaseDir is required.
func New(opts ...Option) (*Renderer, error) {
	cfg := &config{}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	if cfg.baseDir == "" && cfg.templates == nil {
		return nil, errors.New("pongorender: need a base dir or an fs.FS")
	}

	var loaders []pongo2.TemplateLoader
	if cfg.baseDir != "" {
		loader, err := pongo2.NewLocalFileSystemLoader(cfg.baseDir)
		if err != nil {
			return nil, fmt.Errorf("pongorender: create local loader: %w", err)
		}
		loaders = append(loaders, loader)
	}
	if cfg.templates != nil {
		loaders = append(loaders, pongo2.NewFSLoader(cfg.templates))
	}

	set := pongo2.NewSet("genview", loaders...)
	if len(cfg.globals) > 0 {
		if set.Globals == nil {
			set.Globals = pongo2.Context{}
		}
		set.Globals.Update(cfg.globals)
	}

	return &Renderer{
		set:       set,
		templates: make(map[string]*pongo2.Template),
		noCache:   cfg.noCache,
	}, nil
}

// Render executes the template name with data as its context.
func (r *Renderer) Render(_ context.Context, name string, data *genview.Context) ([]byte, error) {
	tmpl, err := r.template(name)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteWriter(pongo2.Context(data.Map()), &buf); err != nil {
		return nil, fmt.Errorf("pongorender: execute %q: %w", name, err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) template(name string) (*pongo2.Template, error) {
	if r.noCache {
		tmpl, err := r.set.FromFile(name)
		if err != nil {
			return nil, fmt.Errorf("pongorender: load %q: %w", name, err)
		}
		return tmpl, nil
	}

	r.mu.RLock()
	tmpl, ok := r.templates[name]
	r.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if tmpl, ok := r.templates[name]; ok {
		return tmpl, nil
	}
	tmpl, err := r.set.FromFile(name)
	if err != nil {
		return nil, fmt.Errorf("pongorender: load %q: %w", name, err)
	}
	r.templates[name] = tmpl
	return tmpl, nil
}
