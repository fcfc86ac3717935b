// Package templrender renders genview templates with templ components.
//
// Each template name maps to a function building a component from the
// render context:
//
//	r := templrender.New().
//	    Register("todo_list.html", func(data *genview.Context) (templ.Component, error) {
//	        todos, _ := data.Get("object_list")
//	        return views.TodoList(todos.([]*Todo)), nil
//	    })
package templrender

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/a-h/templ"

	"github.com/pthm/genview"
)

// ErrUnknownTemplate is returned for names nothing was registered under.
var ErrUnknownTemplate = errors.New("templrender: unknown template")

// ComponentFunc builds the component for one render.
type ComponentFunc func(data *genview.Context) (templ.Component, error)

// LayoutFunc wraps a page component, typically in the site layout.
type LayoutFunc func(page templ.Component, data *genview.Context) templ.Component

// Renderer is a genview.TemplateRenderer over registered templ components.
// It is safe for concurrent use.
type Renderer struct {
	mu         sync.RWMutex
	components map[string]ComponentFunc
	layout     LayoutFunc
}

var _ genview.TemplateRenderer = (*Renderer)(nil)

// New creates an empty renderer.
func New() *Renderer {
	return &Renderer{components: make(map[string]ComponentFunc)}
}

// Register maps name to fn. Panics on a duplicate name.
func (r *Renderer) Register(name string, fn ComponentFunc) *Renderer {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.components[name]; exists {
		panic(fmt.Sprintf("templrender: duplicate template %q", name))
	}
	r.components[name] = fn
	return r
}

// Static registers a component that ignores the render context.
func (r *Renderer) Static(name string, c templ.Component) *Renderer {
	return r.Register(name, func(*genview.Context) (templ.Component, error) {
		return c, nil
	})
}

// WithLayout wraps every rendered page with layout.
func (r *Renderer) WithLayout(layout LayoutFunc) *Renderer {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.layout = layout
	return r
}

// Render builds the component registered under name and renders it.
func (r *Renderer) Render(ctx context.Context, name string, data *genview.Context) ([]byte, error) {
	r.mu.RLock()
	fn, ok := r.components[name]
	layout := r.layout
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTemplate, name)
	}

	c, err := fn(data)
	if err != nil {
		return nil, fmt.Errorf("templrender: build %q: %w", name, err)
	}
	if layout != nil {
		c = layout(c, data)
	}

	var buf bytes.Buffer
	if err := c.Render(ctx, &buf); err != nil {
		return nil, fmt.Errorf("templrender: render %q: %w", name, err)
	}
	return buf.Bytes(), nil
}
