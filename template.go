package genview

import (
	"errors"
	"fmt"
	"net/http"
)

// GetHook runs on GET before the page renders. Its return value is
// discarded: a hook can neither short-circuit the render nor supply
// context this way. Use a ContextFunc to add context.
type GetHook func(req *Request) any

// ContextFunc adds keys to the render context. It must not remove keys.
type ContextFunc func(req *Request, data *Context) error

// TemplateConfig configures a TemplateView.
type TemplateConfig struct {
	Name     string
	Template string
	Renderer TemplateRenderer
	OnGet    GetHook
	Context  ContextFunc
}

// page is the template behavior shared by every rendering view kind.
type page struct {
	view     string
	template string
	renderer TemplateRenderer
	onGet    GetHook
	extra    ContextFunc
}

func (p page) templateName() (string, error) {
	if p.template == "" {
		return "", missing(p.view, "template")
	}
	return p.template, nil
}

// contextData returns extra plus the configured contributions.
func (p page) contextData(req *Request, extra *Context) (*Context, error) {
	data := extra.Clone()
	if p.extra != nil {
		if err := p.extra(req, data); err != nil {
			return nil, err
		}
	}
	return data, nil
}

func (p page) runGet(req *Request) {
	if req.Method == http.MethodGet && p.onGet != nil {
		_ = p.onGet(req)
	}
}

// render merges data into the final context and renders the template.
func (p page) render(req *Request, data *Context) (Response, error) {
	name, err := p.templateName()
	if err != nil {
		return Response{}, err
	}
	if p.renderer == nil {
		return Response{}, missing(p.view, "renderer")
	}

	ctx := data.Clone()
	if msgs := req.Messages(); len(msgs) > 0 && !ctx.Has("messages") {
		ctx.Set("messages", msgs)
	}

	body, err := p.renderer.Render(req.Context(), name, ctx)
	if err != nil {
		return Response{}, fmt.Errorf("genview: view %q: render %q: %w", p.view, name, err)
	}
	return Rendered(name, ctx, body), nil
}

func (p page) validate() []error {
	var errs []error
	if p.template == "" {
		errs = append(errs, missing(p.view, "template"))
	}
	if p.renderer == nil {
		errs = append(errs, missing(p.view, "renderer"))
	}
	return errs
}

// TemplateView renders a template on GET.
//
// Dispatch runs the OnGet hook and renders the template with the path
// parameters as context.
type TemplateView struct {
	Base
	page
}

var _ Renderable = (*TemplateView)(nil)

// NewTemplateView creates a TemplateView, reporting every missing field.
func NewTemplateView(cfg TemplateConfig) (*TemplateView, error) {
	v := &TemplateView{
		Base: NewBase(cfg.Name),
		page: page{
			view:     cfg.Name,
			template: cfg.Template,
			renderer: cfg.Renderer,
			onGet:    cfg.OnGet,
			extra:    cfg.Context,
		},
	}
	if errs := v.page.validate(); len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return v, nil
}

// Kind returns KindTemplate.
func (v *TemplateView) Kind() Kind { return KindTemplate }

// TemplateName returns the configured template.
func (v *TemplateView) TemplateName() (string, error) { return v.page.templateName() }

// ContextData returns extra (plus any configured contributions).
func (v *TemplateView) ContextData(req *Request, extra *Context) (*Context, error) {
	return v.page.contextData(req, extra)
}

// Render renders the template with ContextData(extra).
func (v *TemplateView) Render(req *Request, extra *Context) (Response, error) {
	data, err := v.ContextData(req, extra)
	if err != nil {
		return Response{}, err
	}
	return v.page.render(req, data)
}

// Dispatch runs the GET hook, then renders.
func (v *TemplateView) Dispatch(req *Request) (Response, error) {
	v.page.runGet(req)
	resp, err := v.Render(req, req.paramContext())
	return complete(req, resp, err)
}
