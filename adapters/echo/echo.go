// Package genviewecho provides Echo framework integration for genview views.
//
// Mount views onto an Echo instance or group:
//
//	e := echo.New()
//	r := genviewecho.Mount(e, genviewecho.WithKey(key))
//	r.Add("todo_list", "/todos", list)
//	r.Add("todo_edit", "/todos/{pk}/edit", edit)
//
// Or mount on a group with middleware:
//
//	g := e.Group("/app", authMiddleware)
//	r := genviewecho.MountGroup(g, genviewecho.WithPath("/app"))
//	r.Add("todo_list", "/todos", list)
//
// Patterns use the http.ServeMux wildcard syntax on both sides, so route
// names resolve to the same URLs Echo serves.
package genviewecho

import (
	"strings"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/pthm/genview"
)

// Option configures the Mount and MountGroup functions.
type Option func(*options)

type options struct {
	path    string
	regOpts []genview.Option
}

// WithKey sets the flash cookie key of the registry.
// The key should be at least 32 bytes of cryptographically random data.
// If not provided, a random key is generated (suitable for development only).
func WithKey(key []byte) Option {
	return func(o *options) {
		o.regOpts = append(o.regOpts, genview.WithKey(key))
	}
}

// WithLogger sets the registry's dispatch logger.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) {
		o.regOpts = append(o.regOpts, genview.WithLogger(l))
	}
}

// WithRegistryOptions passes further options to genview.NewRegistry.
func WithRegistryOptions(opts ...genview.Option) Option {
	return func(o *options) {
		o.regOpts = append(o.regOpts, opts...)
	}
}

// WithPath sets the URL prefix of the group the views are mounted on. Route
// names resolve to URLs under it. Defaults to "".
func WithPath(path string) Option {
	return func(o *options) {
		o.path = strings.TrimSuffix(path, "/")
	}
}

// router is what Echo and Echo groups have in common.
type router interface {
	Any(path string, handler echo.HandlerFunc, middleware ...echo.MiddlewareFunc) []*echo.Route
}

// Router registers views on Echo and on the genview registry that resolves
// their names.
type Router struct {
	*genview.Registry
	mux  router
	path string
}

// Mount creates a registry whose views are served by e.
//
//	e := echo.New()
//	r := genviewecho.Mount(e)
//	r.Add("todo_list", "/todos", list)
func Mount(e *echo.Echo, opts ...Option) *Router {
	return newRouter(e, opts)
}

// MountGroup creates a registry whose views are served by g, sharing the
// group's middleware (auth, logging, etc.). Pass the group prefix with
// WithPath so reverse resolution matches.
func MountGroup(g *echo.Group, opts ...Option) *Router {
	return newRouter(g, opts)
}

func newRouter(e router, opts []Option) *Router {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return &Router{
		Registry: genview.NewRegistry(o.regOpts...),
		mux:      e,
		path:     o.path,
	}
}

// Add registers v under name at pattern, relative to the mount path.
// Panics like genview.Registry.Add on duplicates.
func (r *Router) Add(name, pattern string, v genview.View) {
	r.Registry.Add(name, r.path+pattern, v)

	echoPath, rest := echoPattern(pattern)
	r.mux.Any(echoPath, func(c echo.Context) error {
		params := collectParams(c)
		if rest != "" {
			params[rest] = params["*"]
			delete(params, "*")
		}
		r.Serve(c.Response(), c.Request(), v, params)
		return nil
	})
}

// Handler adapts v to an Echo handler dispatching through reg. Echo path
// parameters become view path parameters by name.
//
//	e.GET("/todos/:pk/edit", genviewecho.Handler(reg, edit))
func Handler(reg *genview.Registry, v genview.View) echo.HandlerFunc {
	return func(c echo.Context) error {
		reg.Serve(c.Response(), c.Request(), v, collectParams(c))
		return nil
	}
}

func collectParams(c echo.Context) map[string]string {
	names := c.ParamNames()
	values := c.ParamValues()
	params := make(map[string]string, len(names))
	for i, name := range names {
		if i < len(values) {
			params[name] = values[i]
		}
	}
	return params
}

// echoPattern converts a ServeMux pattern to Echo syntax: {pk} becomes :pk,
// a trailing {rest...} becomes * and {$} is dropped. rest names the
// wildcard bound to *.
func echoPattern(pattern string) (path, rest string) {
	segments := strings.Split(pattern, "/")
	out := make([]string, 0, len(segments))
	for _, seg := range segments {
		switch {
		case seg == "{$}":
			seg = ""
		case strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "...}"):
			rest = strings.TrimSuffix(strings.TrimPrefix(seg, "{"), "...}")
			seg = "*"
		case strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}"):
			seg = ":" + strings.Trim(seg, "{}")
		}
		out = append(out, seg)
	}
	path = strings.Join(out, "/")
	if path == "" {
		path = "/"
	}
	return path, rest
}

// Render writes a templ component to the Echo response.
//
//	func handler(c echo.Context) error {
//	    return genviewecho.Render(c, myTemplate())
//	}
func Render(c echo.Context, component templ.Component) error {
	c.Response().Header().Set("Content-Type", "text/html; charset=utf-8")
	return component.Render(c.Request().Context(), c.Response())
}
