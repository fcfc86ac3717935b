package genview

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// DeleteConfig configures a DeleteView.
type DeleteConfig[E any] struct {
	Name  string
	Store Store[E]

	SuccessURL string
	URLs       URLResolver

	// SuccessMessage defaults to DeletedMessage.
	SuccessMessage string

	// Methods defaults to GET and POST; both behave the same.
	Methods []string
}

// DeleteView deletes the entity named by the "pk" (or "id") path parameter
// and redirects. Nothing is rendered, and there is no confirmation step.
type DeleteView[E any] struct {
	Base
	SingleObject[E]

	successURL string
	urls       URLResolver
	message    string
}

var _ ObjectLoadable[any] = (*DeleteView[any])(nil)

// NewDeleteView creates a DeleteView.
func NewDeleteView[E any](cfg DeleteConfig[E]) (*DeleteView[E], error) {
	methods := cfg.Methods
	if len(methods) == 0 {
		methods = []string{http.MethodGet, http.MethodPost}
	}
	message := cfg.SuccessMessage
	if message == "" {
		message = DeletedMessage
	}
	v := &DeleteView[E]{
		Base:         NewBase(cfg.Name, methods...),
		SingleObject: SingleObject[E]{Store: cfg.Store, view: cfg.Name},
		successURL:   cfg.SuccessURL,
		urls:         cfg.URLs,
		message:      message,
	}

	var errs []error
	if cfg.Store == nil {
		errs = append(errs, missing(cfg.Name, "store"))
	}
	if cfg.SuccessURL == "" {
		errs = append(errs, missing(cfg.Name, "success url"))
	}
	if cfg.URLs == nil {
		errs = append(errs, missing(cfg.Name, "url resolver"))
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return v, nil
}

// Kind returns KindDelete.
func (v *DeleteView[E]) Kind() Kind { return KindDelete }

// SuccessURL resolves the configured success target.
func (v *DeleteView[E]) SuccessURL() (string, error) {
	if v.successURL == "" {
		return "", missing(v.view, "success url")
	}
	if v.urls == nil {
		return "", missing(v.view, "url resolver")
	}
	return v.urls.Resolve(v.successURL)
}

// DeleteObject removes obj from the store.
func (v *DeleteView[E]) DeleteObject(ctx context.Context, obj E) error {
	if v.Store == nil {
		return missing(v.view, "store")
	}
	if err := v.Store.Delete(ctx, obj); err != nil {
		return fmt.Errorf("genview: view %q: delete: %w", v.view, err)
	}
	return nil
}

// Dispatch loads, deletes, notifies and redirects, in that order. A missing
// entity yields a 404 before anything is deleted.
func (v *DeleteView[E]) Dispatch(req *Request) (Response, error) {
	resp, err := v.dispatch(req)
	return complete(req, resp, err)
}

func (v *DeleteView[E]) dispatch(req *Request) (Response, error) {
	id, ok := req.ObjectID()
	if !ok {
		return Response{}, missing(v.view, "pk")
	}

	obj, err := v.GetObject(req.Context(), id)
	if err != nil {
		return Response{}, err
	}
	req.setObject(obj)

	if err := v.DeleteObject(req.Context(), obj); err != nil {
		return Response{}, err
	}

	url, err := v.SuccessURL()
	if err != nil {
		return Response{}, err
	}
	req.Notifier().Notify(FlashSuccess, v.message)
	return Redirect(url), nil
}
