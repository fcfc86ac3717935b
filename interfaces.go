package genview

import (
	"context"
	"net/url"
)

// Store is the persistence collaborator for entities of type E.
//
// Get reports a missing entity with found == false and a nil error; an error
// is reserved for store faults, which views pass through unchanged.
//
//	type todoStore struct{ ... }
//
//	func (s *todoStore) Get(ctx context.Context, id string) (*Todo, bool, error)
//	func (s *todoStore) All(ctx context.Context) ([]*Todo, error)
//	func (s *todoStore) Save(ctx context.Context, t *Todo) error
//	func (s *todoStore) Delete(ctx context.Context, t *Todo) error
type Store[E any] interface {
	Get(ctx context.Context, id string) (E, bool, error)
	All(ctx context.Context) ([]E, error)
	Save(ctx context.Context, entity E) error
	Delete(ctx context.Context, entity E) error
}

// TemplateRenderer turns a template name and a render context into output
// bytes. Implementations live in render/templrender and render/pongorender.
type TemplateRenderer interface {
	Render(ctx context.Context, name string, data *Context) ([]byte, error)
}

// Form validates a submitted payload and copies the validated values onto an
// entity. The form value itself is placed in the render context under "form",
// so implementations usually expose their values and errors to templates.
type Form[E any] interface {
	Validate(payload url.Values) bool
	ApplyTo(entity E) error
}

// FormType constructs forms, either empty or pre-populated from an entity.
type FormType[E any] interface {
	Empty() Form[E]
	Bound(entity E) Form[E]
}

// URLResolver resolves a named target to a URL. Registry implements it.
type URLResolver interface {
	Resolve(name string) (string, error)
}

// ResolverFunc adapts a function to URLResolver.
type ResolverFunc func(name string) (string, error)

// Resolve calls f(name).
func (f ResolverFunc) Resolve(name string) (string, error) {
	return f(name)
}

// StaticURLs is a URLResolver over a fixed name to URL table.
type StaticURLs map[string]string

// Resolve returns the URL registered for name.
func (s StaticURLs) Resolve(name string) (string, error) {
	u, ok := s[name]
	if !ok {
		return "", &ConfigError{Field: "url for " + name}
	}
	return u, nil
}

// Notifier receives transient user-facing messages. It is fire-and-forget.
type Notifier interface {
	Notify(level, message string)
}

// Renderable is implemented by views that render a template.
type Renderable interface {
	TemplateName() (string, error)
	ContextData(req *Request, extra *Context) (*Context, error)
}

// ObjectLoadable is implemented by views that load one entity by identifier.
type ObjectLoadable[E any] interface {
	GetObject(ctx context.Context, id string) (E, error)
}

// FormBound is implemented by views that build forms for entities.
type FormBound[E any] interface {
	BuildForm(entity E, present bool) (Form[E], error)
}
