package genview

import (
	"crypto/rand"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/a-h/templ"
	"github.com/rs/zerolog"
)

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for dispatch logs. Defaults to a no-op logger.
func WithLogger(l zerolog.Logger) Option {
	return func(reg *Registry) {
		reg.log = l
	}
}

// WithKey sets the flash cookie signing key. The key should be at least 32
// bytes of random data. Without it a random key is generated, which does
// not survive restarts.
func WithKey(key []byte) Option {
	return func(reg *Registry) {
		reg.key = key
	}
}

// WithCookieName overrides DefaultFlashCookie.
func WithCookieName(name string) Option {
	return func(reg *Registry) {
		reg.cookie = name
	}
}

// WithEncryptedFlashes makes the flash cookie opaque instead of only signed.
func WithEncryptedFlashes() Option {
	return func(reg *Registry) {
		reg.encrypt = true
	}
}

// RequireHTMX rejects mutating requests (anything but GET and HEAD) that
// lack the HX-Request header, which cross-origin forms cannot set.
func RequireHTMX() Option {
	return func(reg *Registry) {
		reg.htmxOnly = true
	}
}

type route struct {
	name    string
	pattern string
	params  []string
	view    View
}

// Registry routes requests to views by path pattern, resolves view names
// back to URLs and carries flashes across redirects.
//
//	reg := genview.NewRegistry(genview.WithKey(key))
//	reg.Add("todo_list", "/todos", listView)
//	reg.Add("todo_edit", "/todos/{pk}/edit", updateView)
//	http.ListenAndServe(":8080", reg.Handler())
type Registry struct {
	mu       sync.RWMutex
	mux      *http.ServeMux
	routes   map[string]*route
	patterns map[string]string
	flashes  *FlashStore
	log      zerolog.Logger

	key      []byte
	cookie   string
	encrypt  bool
	htmxOnly bool

	// OnError is called when a dispatch fails. The default answers 404 for
	// not-found errors and 500 for everything else.
	OnError func(http.ResponseWriter, *http.Request, error)
}

var _ URLResolver = (*Registry)(nil)

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	reg := &Registry{
		mux:      http.NewServeMux(),
		routes:   make(map[string]*route),
		patterns: make(map[string]string),
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(reg)
	}

	if reg.key == nil {
		reg.key = make([]byte, 32)
		if _, err := rand.Read(reg.key); err != nil {
			panic(fmt.Sprintf("genview: failed to generate flash key: %v", err))
		}
	}

	fs, err := NewFlashStore(reg.key, reg.cookie)
	if err != nil {
		panic(fmt.Sprintf("genview: failed to create flash store: %v", err))
	}
	if reg.encrypt {
		fs.Encrypted()
	}
	reg.flashes = fs

	reg.OnError = func(w http.ResponseWriter, r *http.Request, err error) {
		if IsNotFound(err) {
			http.Error(w, "Not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Internal error", http.StatusInternalServerError)
	}

	return reg
}

// Add registers v under name at pattern. Patterns use http.ServeMux syntax
// without a method: "/todos", "/todos/{pk}/edit", "/{$}".
// Panics on an empty or duplicate name, a duplicate pattern or a nil view.
func (reg *Registry) Add(name, pattern string, v View) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if name == "" {
		panic("genview: route name must not be empty")
	}
	if v == nil {
		panic(fmt.Sprintf("genview: nil view for route %q", name))
	}
	if _, exists := reg.routes[name]; exists {
		panic(fmt.Sprintf("genview: duplicate route name %q", name))
	}
	if other, exists := reg.patterns[pattern]; exists {
		panic(fmt.Sprintf("genview: pattern %q already used by %q", pattern, other))
	}
	if !strings.HasPrefix(pattern, "/") {
		panic(fmt.Sprintf("genview: pattern %q must start with /", pattern))
	}

	rt := &route{name: name, pattern: pattern, params: wildcards(pattern), view: v}
	reg.routes[name] = rt
	reg.patterns[pattern] = name

	reg.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		params := make(map[string]string, len(rt.params))
		for _, p := range rt.params {
			params[p] = r.PathValue(p)
		}
		reg.Serve(w, r, rt.view, params)
	})
}

// View returns the view registered under name.
func (reg *Registry) View(name string) (View, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	rt, ok := reg.routes[name]
	if !ok {
		return nil, false
	}
	return rt.view, true
}

// Resolve returns the URL of the route registered under name. Routes with
// path parameters need Reverse.
func (reg *Registry) Resolve(name string) (string, error) {
	return reg.Reverse(name, nil)
}

// Reverse builds the URL of the route registered under name, filling its
// path parameters from params.
func (reg *Registry) Reverse(name string, params map[string]string) (string, error) {
	reg.mu.RLock()
	rt, ok := reg.routes[name]
	reg.mu.RUnlock()
	if !ok {
		return "", &ConfigError{Field: fmt.Sprintf("route %q", name)}
	}

	segments := strings.Split(rt.pattern, "/")
	out := segments[:0:0]
	for _, seg := range segments {
		if seg == "{$}" {
			continue
		}
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
			inner := strings.Trim(seg, "{}")
			p := strings.TrimSuffix(inner, "...")
			value, ok := params[p]
			if !ok || value == "" {
				return "", fmt.Errorf("genview: route %q: missing path parameter %q", name, p)
			}
			seg = escapeParam(value, p != inner)
		}
		out = append(out, seg)
	}

	path := strings.Join(out, "/")
	if path == "" {
		path = "/"
	}
	if strings.HasSuffix(rt.pattern, "{$}") && !strings.HasSuffix(path, "/") {
		path += "/"
	}
	return path, nil
}

// Action returns HTMX attributes that issue method against the named route.
//
//	attrs, _ := reg.Action("todo_delete", http.MethodPost, map[string]string{"pk": todo.ID})
//	// templ: <button { attrs... }>Delete</button>
func (reg *Registry) Action(name, method string, params map[string]string) (templ.Attributes, error) {
	target, err := reg.Reverse(name, params)
	if err != nil {
		return nil, err
	}

	attrs := templ.Attributes{}
	switch strings.ToUpper(method) {
	case "", http.MethodGet:
		attrs["hx-get"] = target
	case http.MethodPost:
		attrs["hx-post"] = target
	case http.MethodPut:
		attrs["hx-put"] = target
	case http.MethodPatch:
		attrs["hx-patch"] = target
	case http.MethodDelete:
		attrs["hx-delete"] = target
	default:
		return nil, fmt.Errorf("genview: unsupported htmx method %q", method)
	}
	return attrs, nil
}

// Handler returns the HTTP handler serving every registered view.
func (reg *Registry) Handler() http.Handler {
	return reg.mux
}

// Serve dispatches one request to v. Router adapters call it with the path
// parameters they extracted.
func (reg *Registry) Serve(w http.ResponseWriter, r *http.Request, v View, params map[string]string) {
	start := time.Now()
	log := reg.log.With().
		Str("view", v.Name()).
		Str("kind", v.Kind().String()).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Logger()

	if !v.Allows(r.Method) {
		w.Header().Set("Allow", strings.Join(v.Methods(), ", "))
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		log.Debug().Int("status", http.StatusMethodNotAllowed).Msg("method rejected")
		return
	}

	if reg.htmxOnly && r.Method != http.MethodGet && r.Method != http.MethodHead && !IsHTMX(r) {
		http.Error(w, "Forbidden: HTMX request required", http.StatusForbidden)
		log.Debug().Int("status", http.StatusForbidden).Msg("non-htmx mutation rejected")
		return
	}

	req, err := NewRequest(r, params)
	if err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		log.Debug().Err(err).Int("status", http.StatusBadRequest).Msg("form parse failed")
		return
	}

	pending, hadCookie, err := reg.flashes.Read(r)
	if err != nil {
		log.Warn().Err(err).Msg("dropping unreadable flash cookie")
	}
	req.SetMessages(pending)

	resp, err := v.Dispatch(req)
	if err != nil {
		if hadCookie {
			reg.flashes.Clear(w)
		}
		if IsNotFound(err) {
			log.Info().Err(err).Msg("not found")
		} else {
			log.Error().Err(err).Msg("dispatch failed")
		}
		reg.OnError(w, r, err)
		return
	}

	carry := len(resp.Flashes()) > 0 && (resp.IsRedirect() || !req.HTMX)
	switch {
	case carry:
		if err := reg.flashes.Save(w, resp.Flashes()); err != nil {
			log.Error().Err(err).Msg("saving flashes failed")
		}
	case hadCookie:
		reg.flashes.Clear(w)
	}

	if resp.IsNotFound() {
		log.Info().Msg("not found")
	}
	if err := resp.Write(w, r); err != nil {
		log.Error().Err(err).Msg("writing response failed")
		return
	}
	log.Debug().Int("status", resp.StatusCode()).Dur("dur", time.Since(start)).Msg("dispatched")
}

// escapeParam escapes a path parameter value. A {name...} value may span
// segments, so its slashes are kept.
func escapeParam(value string, rest bool) string {
	if !rest {
		return url.PathEscape(value)
	}
	parts := strings.Split(value, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}

// wildcards returns the names of the {name} and {name...} segments.
func wildcards(pattern string) []string {
	var names []string
	for _, seg := range strings.Split(pattern, "/") {
		if !strings.HasPrefix(seg, "{") || !strings.HasSuffix(seg, "}") || seg == "{$}" {
			continue
		}
		names = append(names, strings.TrimSuffix(strings.Trim(seg, "{}"), "..."))
	}
	return names
}
