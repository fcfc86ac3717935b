package genview

import (
	"context"
	"errors"
	"fmt"
)

// ListConfig configures a ListView.
type ListConfig[E any] struct {
	Name     string
	Template string
	Renderer TemplateRenderer
	Store    Store[E]
	OnGet    GetHook
	Context  ContextFunc
}

// ListView renders a template with every entity of the store under
// "object_list". The list is passed through as the store returns it.
type ListView[E any] struct {
	Base
	page
	store Store[E]
}

var _ Renderable = (*ListView[any])(nil)

// NewListView creates a ListView.
func NewListView[E any](cfg ListConfig[E]) (*ListView[E], error) {
	v := &ListView[E]{
		Base: NewBase(cfg.Name),
		page: page{
			view:     cfg.Name,
			template: cfg.Template,
			renderer: cfg.Renderer,
			onGet:    cfg.OnGet,
			extra:    cfg.Context,
		},
		store: cfg.Store,
	}
	errs := v.page.validate()
	if cfg.Store == nil {
		errs = append(errs, missing(cfg.Name, "store"))
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return v, nil
}

// Kind returns KindList.
func (v *ListView[E]) Kind() Kind { return KindList }

// TemplateName returns the configured template.
func (v *ListView[E]) TemplateName() (string, error) { return v.page.templateName() }

// Objects returns all entities from the store.
func (v *ListView[E]) Objects(ctx context.Context) ([]E, error) {
	if v.store == nil {
		return nil, missing(v.view, "store")
	}
	objs, err := v.store.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("genview: view %q: list: %w", v.view, err)
	}
	return objs, nil
}

// ContextData extends the template context with "object_list".
func (v *ListView[E]) ContextData(req *Request, extra *Context) (*Context, error) {
	data, err := v.page.contextData(req, extra)
	if err != nil {
		return nil, err
	}
	objs, err := v.Objects(req.Context())
	if err != nil {
		return nil, err
	}
	data.Set("object_list", objs)
	return data, nil
}

// Dispatch runs the GET hook, then renders the list.
func (v *ListView[E]) Dispatch(req *Request) (Response, error) {
	v.page.runGet(req)
	data, err := v.ContextData(req, req.paramContext())
	if err != nil {
		return complete(req, Response{}, err)
	}
	resp, err := v.page.render(req, data)
	return complete(req, resp, err)
}
