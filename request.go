package genview

import (
	"context"
	"net/http"
	"net/url"
)

// Request is the per-dispatch input handed to View.Dispatch.
//
// It carries the HTTP method, the submitted form payload, the path
// parameters extracted by the router, the flashes left over from a previous
// redirect and a Notifier collecting the flashes this dispatch emits.
type Request struct {
	Method string
	Form   url.Values
	Params map[string]string
	HTMX   bool

	ctx     context.Context
	pending []Flash
	emitted *Flashes

	object    any
	objectSet bool
}

// NewRequest builds a Request from an incoming HTTP request. The form is
// parsed here, so the body is consumed.
func NewRequest(r *http.Request, params map[string]string) (*Request, error) {
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	req := &Request{
		Method:  r.Method,
		Form:    r.PostForm,
		Params:  params,
		HTMX:    IsHTMX(r),
		ctx:     r.Context(),
		emitted: &Flashes{},
	}
	if req.Params == nil {
		req.Params = map[string]string{}
	}
	return req, nil
}

// NewTestRequest builds a Request without an HTTP request, for driving
// Dispatch directly.
//
//	req := genview.NewTestRequest(http.MethodPost, map[string]string{"pk": "1"}, url.Values{"title": {"x"}})
func NewTestRequest(method string, params map[string]string, form url.Values) *Request {
	if params == nil {
		params = map[string]string{}
	}
	if form == nil {
		form = url.Values{}
	}
	return &Request{
		Method:  method,
		Form:    form,
		Params:  params,
		ctx:     context.Background(),
		emitted: &Flashes{},
	}
}

// Context returns the request's context.
func (r *Request) Context() context.Context {
	if r.ctx == nil {
		return context.Background()
	}
	return r.ctx
}

// WithContext returns a shallow copy of r with its context replaced.
func (r *Request) WithContext(ctx context.Context) *Request {
	r2 := *r
	r2.ctx = ctx
	return &r2
}

// Param returns the named path parameter.
func (r *Request) Param(name string) string {
	return r.Params[name]
}

// ObjectID returns the object identifier from the path, looking at "pk"
// first and "id" second.
func (r *Request) ObjectID() (string, bool) {
	if pk := r.Params["pk"]; pk != "" {
		return pk, true
	}
	if id := r.Params["id"]; id != "" {
		return id, true
	}
	return "", false
}

// Messages returns flashes emitted before the redirect that led to this
// request.
func (r *Request) Messages() []Flash {
	return r.pending
}

// SetMessages replaces the pending flashes (used by the registry after
// reading the flash cookie).
func (r *Request) SetMessages(flashes []Flash) {
	r.pending = flashes
}

// Notifier returns the per-request notification channel.
func (r *Request) Notifier() Notifier {
	if r.emitted == nil {
		r.emitted = &Flashes{}
	}
	return r.emitted
}

// Emitted returns the flashes emitted during this dispatch.
func (r *Request) Emitted() []Flash {
	if r.emitted == nil {
		return nil
	}
	return r.emitted.List()
}

// Object returns the entity the current dispatch is reading, editing or
// deleting. ok is false while no entity has been loaded or constructed.
func (r *Request) Object() (obj any, ok bool) {
	return r.object, r.objectSet
}

// setObject fills the per-dispatch object slot. The slot is written at most
// once per dispatch.
func (r *Request) setObject(obj any) {
	if r.objectSet {
		panic("genview: object set twice in one dispatch")
	}
	r.object = obj
	r.objectSet = true
}

// objectOf returns the per-dispatch object as an E.
func objectOf[E any](r *Request) (E, bool) {
	var zero E
	if !r.objectSet {
		return zero, false
	}
	obj, ok := r.object.(E)
	if !ok {
		return zero, false
	}
	return obj, true
}

func (r *Request) paramContext() *Context {
	c := NewContext()
	for _, k := range sortedKeys(r.Params) {
		c.Set(k, r.Params[k])
	}
	return c
}
