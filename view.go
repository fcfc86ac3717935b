package genview

import (
	"net/http"
	"slices"
	"strings"
)

// Kind tags which fixed dispatch algorithm a view runs.
type Kind int

const (
	KindBase Kind = iota
	KindTemplate
	KindList
	KindForm
	KindCreate
	KindUpdate
	KindDelete
	KindRedirect
)

func (k Kind) String() string {
	switch k {
	case KindBase:
		return "base"
	case KindTemplate:
		return "template"
	case KindList:
		return "list"
	case KindForm:
		return "form"
	case KindCreate:
		return "create"
	case KindUpdate:
		return "update"
	case KindDelete:
		return "delete"
	case KindRedirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// View is a configured request handler. Dispatch turns one request into one
// response.
//
// A view value holds only static configuration. Every Dispatch call keeps its
// own per-request state, so one view value can serve concurrent requests.
type View interface {
	Kind() Kind
	Name() string
	Methods() []string
	Allows(method string) bool
	Dispatch(req *Request) (Response, error)
}

// Base is embedded by every view kind. It declares the accepted methods and
// the view name used in errors and logs.
//
// Base on its own does not implement dispatch: calling Dispatch fails with
// ErrNotImplemented.
type Base struct {
	name    string
	methods []string
}

// NewBase creates a base view accepting methods, or GET when none are given.
func NewBase(name string, methods ...string) Base {
	if len(methods) == 0 {
		methods = []string{http.MethodGet}
	}
	norm := make([]string, 0, len(methods))
	for _, m := range methods {
		m = strings.ToUpper(strings.TrimSpace(m))
		if m != "" && !slices.Contains(norm, m) {
			norm = append(norm, m)
		}
	}
	return Base{name: name, methods: norm}
}

// Kind returns KindBase.
func (b Base) Kind() Kind { return KindBase }

// Name returns the view name.
func (b Base) Name() string { return b.name }

// Methods returns the accepted HTTP methods.
func (b Base) Methods() []string {
	if len(b.methods) == 0 {
		return []string{http.MethodGet}
	}
	return slices.Clone(b.methods)
}

// Allows reports whether method is accepted.
func (b Base) Allows(method string) bool {
	return slices.Contains(b.Methods(), strings.ToUpper(method))
}

// Dispatch must be provided by the embedding view.
func (b Base) Dispatch(*Request) (Response, error) {
	return Response{}, ErrNotImplemented
}

// complete finishes a dispatch: a not-found error becomes a 404 response and
// the flashes emitted through the request's Notifier ride on the response.
func complete(req *Request, resp Response, err error) (Response, error) {
	if err != nil {
		if IsNotFound(err) {
			return NotFound(), nil
		}
		return Response{}, err
	}
	return resp.withFlashes(req.Emitted()), nil
}
