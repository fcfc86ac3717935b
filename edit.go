package genview

import "errors"

// Default success messages.
const (
	CreatedMessage = "Record created successfully!"
	EditedMessage  = "Record edited successfully!"
	DeletedMessage = "Record deleted successfully!"
)

// EditConfig configures CreateView and UpdateView: a form view plus the
// store and entity constructor of the single-object capability.
type EditConfig[E any] struct {
	FormConfig[E]

	Store Store[E]
	New   func() E
}

// CreateView creates an entity from a submitted form. It always starts from
// an empty entity; path identifiers are not used to load anything.
//
// A valid POST runs persist (construct, apply the form, save) and then
// notify-and-redirect.
type CreateView[E any] struct {
	*FormView[E]
	SingleObject[E]
}

var _ ObjectLoadable[any] = (*CreateView[any])(nil)

// NewCreateView creates a CreateView. An empty SuccessMessage defaults to
// CreatedMessage.
func NewCreateView[E any](cfg EditConfig[E]) (*CreateView[E], error) {
	if cfg.SuccessMessage == "" {
		cfg.SuccessMessage = CreatedMessage
	}
	obj := SingleObject[E]{Store: cfg.Store, New: cfg.New, view: cfg.Name}
	fv := newFormView(cfg.FormConfig, KindCreate)
	fv.steps = pipeline[E]{persistStep(obj), notifyAndRedirectStep(fv)}

	errs := append(fv.validate(), obj.validate()...)
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return &CreateView[E]{FormView: fv, SingleObject: obj}, nil
}

// UpdateView edits the entity named by the "pk" or "id" path parameter.
// The render context always carries "object": the loaded entity, or nil
// when the path names none.
//
// Without a path identifier the view behaves like a create: a valid POST
// constructs and saves a new entity.
type UpdateView[E any] struct {
	*FormView[E]
	SingleObject[E]
}

var _ ObjectLoadable[any] = (*UpdateView[any])(nil)

// NewUpdateView creates an UpdateView. An empty SuccessMessage defaults to
// EditedMessage.
func NewUpdateView[E any](cfg EditConfig[E]) (*UpdateView[E], error) {
	if cfg.SuccessMessage == "" {
		cfg.SuccessMessage = EditedMessage
	}
	obj := SingleObject[E]{Store: cfg.Store, New: cfg.New, view: cfg.Name}
	fv := newFormView(cfg.FormConfig, KindUpdate)
	fv.loader = obj
	fv.loadFromPath = true
	fv.includeObject = true
	fv.steps = pipeline[E]{persistStep(obj), notifyAndRedirectStep(fv)}

	errs := append(fv.validate(), obj.validate()...)
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return &UpdateView[E]{FormView: fv, SingleObject: obj}, nil
}
