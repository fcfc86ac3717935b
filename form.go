package genview

import (
	"errors"
	"net/http"
)

// FormConfig configures a FormView.
type FormConfig[E any] struct {
	Name     string
	Template string
	Renderer TemplateRenderer

	// Form builds the empty or pre-populated form.
	Form FormType[E]

	// SuccessURL names the redirect target after a valid submission; URLs
	// resolves it.
	SuccessURL string
	URLs       URLResolver

	// SuccessMessage is flashed at level "success" after a valid submission.
	SuccessMessage string

	// Loader lets a plain FormView edit an entity named by the "pk" or "id"
	// path parameter. Create and update views use their store instead.
	Loader ObjectLoadable[E]

	OnGet   GetHook
	Context ContextFunc
}

// FormView renders a form on GET and validates it on POST.
//
// Dispatch:
//  1. with a "pk" or "id" path parameter, load the entity (404 when absent)
//     and build a pre-populated form;
//  2. otherwise build an empty form;
//  3. on POST, validate: valid submissions run the success pipeline and
//     redirect, invalid ones re-render the template with the form;
//  4. on GET, run the GET hook and render with the form and path params.
type FormView[E any] struct {
	Base
	page

	kind          Kind
	form          FormType[E]
	successURL    string
	urls          URLResolver
	message       string
	loader        ObjectLoadable[E]
	loadFromPath  bool
	includeObject bool
	steps         pipeline[E]
}

var (
	_ Renderable     = (*FormView[any])(nil)
	_ FormBound[any] = (*FormView[any])(nil)
)

// NewFormView creates a FormView.
func NewFormView[E any](cfg FormConfig[E]) (*FormView[E], error) {
	v := newFormView(cfg, KindForm)
	v.loader = cfg.Loader
	v.loadFromPath = true
	v.steps = pipeline[E]{notifyAndRedirectStep(v)}
	if errs := v.validate(); len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return v, nil
}

func newFormView[E any](cfg FormConfig[E], kind Kind) *FormView[E] {
	return &FormView[E]{
		Base: NewBase(cfg.Name, http.MethodGet, http.MethodPost),
		page: page{
			view:     cfg.Name,
			template: cfg.Template,
			renderer: cfg.Renderer,
			onGet:    cfg.OnGet,
			extra:    cfg.Context,
		},
		kind:       kind,
		form:       cfg.Form,
		successURL: cfg.SuccessURL,
		urls:       cfg.URLs,
		message:    cfg.SuccessMessage,
	}
}

func (v *FormView[E]) validate() []error {
	errs := v.page.validate()
	if v.form == nil {
		errs = append(errs, missing(v.view, "form type"))
	}
	if v.successURL == "" {
		errs = append(errs, missing(v.view, "success url"))
	}
	if v.urls == nil {
		errs = append(errs, missing(v.view, "url resolver"))
	}
	return errs
}

// Kind returns the view kind (form, create or update).
func (v *FormView[E]) Kind() Kind {
	if v.kind == KindBase {
		return KindForm
	}
	return v.kind
}

// TemplateName returns the configured template.
func (v *FormView[E]) TemplateName() (string, error) { return v.page.templateName() }

// ContextData returns extra plus the configured contributions and, for
// update views, the current object under "object".
func (v *FormView[E]) ContextData(req *Request, extra *Context) (*Context, error) {
	data, err := v.page.contextData(req, extra)
	if err != nil {
		return nil, err
	}
	if v.includeObject {
		if obj, ok := objectOf[E](req); ok {
			data.Set("object", obj)
		} else {
			data.Set("object", nil)
		}
	}
	return data, nil
}

// SuccessURL resolves the configured success target.
func (v *FormView[E]) SuccessURL() (string, error) {
	if v.successURL == "" {
		return "", missing(v.view, "success url")
	}
	if v.urls == nil {
		return "", missing(v.view, "url resolver")
	}
	return v.urls.Resolve(v.successURL)
}

// BuildForm returns a form bound to entity when present, else an empty one.
func (v *FormView[E]) BuildForm(entity E, present bool) (Form[E], error) {
	if v.form == nil {
		return nil, missing(v.view, "form type")
	}
	if present {
		return v.form.Bound(entity), nil
	}
	return v.form.Empty(), nil
}

// SuccessSteps lists the success pipeline in execution order.
func (v *FormView[E]) SuccessSteps() []string {
	return v.steps.names()
}

// Dispatch runs the form state machine.
func (v *FormView[E]) Dispatch(req *Request) (Response, error) {
	resp, err := v.dispatch(req)
	return complete(req, resp, err)
}

func (v *FormView[E]) dispatch(req *Request) (Response, error) {
	form, err := v.prepare(req)
	if err != nil {
		return Response{}, err
	}

	if req.Method == http.MethodPost {
		return v.post(req, form)
	}

	data := NewContext()
	data.Set("form", form)
	data.Merge(req.paramContext())

	v.page.runGet(req)
	return v.render(req, data)
}

// prepare loads the object named by the path, if any, and builds the form.
func (v *FormView[E]) prepare(req *Request) (Form[E], error) {
	id, hasID := req.ObjectID()
	if !hasID || !v.loadFromPath {
		var zero E
		return v.BuildForm(zero, false)
	}

	if v.loader == nil {
		return nil, missing(v.view, "store")
	}
	obj, err := v.loader.GetObject(req.Context(), id)
	if err != nil {
		return nil, err
	}
	req.setObject(obj)
	return v.BuildForm(obj, true)
}

func (v *FormView[E]) post(req *Request, form Form[E]) (Response, error) {
	if form.Validate(req.Form) {
		return v.formValid(req, form)
	}
	return v.formInvalid(req, form)
}

// formInvalid re-renders the template with the form and its errors. It
// never writes to the store.
func (v *FormView[E]) formInvalid(req *Request, form Form[E]) (Response, error) {
	return v.render(req, ContextOf("form", form))
}

func (v *FormView[E]) formValid(req *Request, form Form[E]) (Response, error) {
	return v.steps.run(req, form)
}

func (v *FormView[E]) render(req *Request, extra *Context) (Response, error) {
	data, err := v.ContextData(req, extra)
	if err != nil {
		return Response{}, err
	}
	return v.page.render(req, data)
}
