// Package demo is a small todo application built from every genview view
// kind. cmd/genview-demo serves it.
package demo

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/pthm/genview"
)

// Route names.
const (
	RouteHome     = "home"
	RouteList     = "todo_list"
	RouteCreate   = "todo_create"
	RouteEdit     = "todo_edit"
	RouteDelete   = "todo_delete"
	RouteAbout    = "about"
	RouteFeedback = "feedback"
)

// Renderer names accepted by Options.Renderer.
const (
	RendererPongo = "pongo"
	RendererTempl = "templ"
)

// FeedbackMessage is flashed after a valid feedback submission.
const FeedbackMessage = "Thanks for the feedback!"

// Options configures New and Register. Logger, Key and Extra only apply
// to the registry New creates.
type Options struct {
	Store    genview.Store[*Todo]
	Renderer string
	Logger   zerolog.Logger
	Key      []byte

	// Registry options appended after the logger and key.
	Extra []genview.Option
}

// Router is where Register adds the demo routes: a *genview.Registry or
// a router adapter such as genviewecho.Router.
type Router interface {
	Add(name, pattern string, v genview.View)
}

// New builds a registry serving the demo.
func New(opts Options) (*genview.Registry, error) {
	regOpts := []genview.Option{genview.WithLogger(opts.Logger)}
	if len(opts.Key) > 0 {
		regOpts = append(regOpts, genview.WithKey(opts.Key))
	}
	reg := genview.NewRegistry(append(regOpts, opts.Extra...)...)
	if err := Register(reg, reg, opts); err != nil {
		return nil, err
	}
	return reg, nil
}

// Register adds the demo views to r. reg resolves route names and must be
// the registry r registers into.
//
//	/                   redirect to /todos
//	/todos              list
//	/todos/new          create
//	/todos/{pk}/edit    update
//	/todos/{pk}/delete  delete (GET or POST)
//	/about              static page
//	/feedback           form without persistence
func Register(r Router, reg *genview.Registry, opts Options) error {
	if opts.Store == nil {
		return fmt.Errorf("demo: store is required")
	}

	renderer, err := newRenderer(opts.Renderer, reg)
	if err != nil {
		return err
	}

	home, err := genview.NewRedirectView(genview.RedirectConfig{
		Name:   RouteHome,
		Target: RouteList,
		URLs:   reg,
	})
	if err != nil {
		return err
	}

	list, err := genview.NewListView(genview.ListConfig[*Todo]{
		Name:     RouteList,
		Template: "todo_list.html",
		Renderer: renderer,
		Store:    opts.Store,
		Context:  openCount(opts.Store),
	})
	if err != nil {
		return err
	}

	create, err := genview.NewCreateView(genview.EditConfig[*Todo]{
		FormConfig: genview.FormConfig[*Todo]{
			Name:       RouteCreate,
			Template:   "todo_form.html",
			Renderer:   renderer,
			Form:       todoForm,
			SuccessURL: RouteList,
			URLs:       reg,
		},
		Store: opts.Store,
		New:   NewTodo,
	})
	if err != nil {
		return err
	}

	edit, err := genview.NewUpdateView(genview.EditConfig[*Todo]{
		FormConfig: genview.FormConfig[*Todo]{
			Name:       RouteEdit,
			Template:   "todo_form.html",
			Renderer:   renderer,
			Form:       todoForm,
			SuccessURL: RouteList,
			URLs:       reg,
		},
		Store: opts.Store,
		New:   NewTodo,
	})
	if err != nil {
		return err
	}

	del, err := genview.NewDeleteView(genview.DeleteConfig[*Todo]{
		Name:       RouteDelete,
		Store:      opts.Store,
		SuccessURL: RouteList,
		URLs:       reg,
	})
	if err != nil {
		return err
	}

	about, err := genview.NewTemplateView(genview.TemplateConfig{
		Name:     RouteAbout,
		Template: "about.html",
		Renderer: renderer,
	})
	if err != nil {
		return err
	}

	feedback, err := genview.NewFormView(genview.FormConfig[*Feedback]{
		Name:           RouteFeedback,
		Template:       "feedback.html",
		Renderer:       renderer,
		Form:           feedbackForm,
		SuccessURL:     RouteAbout,
		URLs:           reg,
		SuccessMessage: FeedbackMessage,
	})
	if err != nil {
		return err
	}

	r.Add(RouteHome, "/{$}", home)
	r.Add(RouteList, "/todos", list)
	r.Add(RouteCreate, "/todos/new", create)
	r.Add(RouteEdit, "/todos/{pk}/edit", edit)
	r.Add(RouteDelete, "/todos/{pk}/delete", del)
	r.Add(RouteAbout, "/about", about)
	r.Add(RouteFeedback, "/feedback", feedback)
	return nil
}

// openCount adds the number of unfinished todos under "open".
func openCount(todos genview.Store[*Todo]) genview.ContextFunc {
	return func(req *genview.Request, data *genview.Context) error {
		all, err := todos.All(req.Context())
		if err != nil {
			return err
		}
		open := 0
		for _, t := range all {
			if !t.Done {
				open++
			}
		}
		data.Set("open", open)
		return nil
	}
}

func newRenderer(name string, reg *genview.Registry) (genview.TemplateRenderer, error) {
	switch name {
	case "", RendererPongo:
		return pongoRenderer(reg)
	case RendererTempl:
		return templRenderer(reg), nil
	default:
		return nil, fmt.Errorf("demo: unknown renderer %q", name)
	}
}

// urlFor reverses a route for templates. pk may be empty for routes
// without parameters.
func urlFor(reg *genview.Registry, name, pk string) string {
	var params map[string]string
	if pk != "" {
		params = map[string]string{"pk": pk}
	}
	u, err := reg.Reverse(name, params)
	if err != nil {
		return "#"
	}
	return u
}
