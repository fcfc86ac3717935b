package genview

import (
	"context"
	"fmt"
)

// SingleObject is the capability of loading one entity by identifier and
// persisting form input onto an entity. Edit and delete views embed it.
type SingleObject[E any] struct {
	// Store persists entities.
	Store Store[E]
	// New constructs an empty entity for create flows.
	New func() E

	view string
}

// GetObject fetches the entity with id, failing with ErrNotFound when the
// store has none. Dispatch turns that failure into a 404 response.
func (o SingleObject[E]) GetObject(ctx context.Context, id string) (E, error) {
	var zero E
	if o.Store == nil {
		return zero, missing(o.view, "store")
	}
	obj, found, err := o.Store.Get(ctx, id)
	if err != nil {
		return zero, fmt.Errorf("genview: view %q: get %q: %w", o.view, id, err)
	}
	if !found {
		return zero, fmt.Errorf("%w: view %q, id %q", ErrNotFound, o.view, id)
	}
	return obj, nil
}

// persist copies the validated form onto the dispatch's object, creating
// one first when none was loaded, and saves it.
func (o SingleObject[E]) persist(req *Request, form Form[E]) error {
	obj, ok := objectOf[E](req)
	if !ok {
		if o.New == nil {
			return missing(o.view, "entity constructor")
		}
		obj = o.New()
		req.setObject(obj)
	}
	if err := form.ApplyTo(obj); err != nil {
		return fmt.Errorf("genview: view %q: apply form: %w", o.view, err)
	}
	if o.Store == nil {
		return missing(o.view, "store")
	}
	if err := o.Store.Save(req.Context(), obj); err != nil {
		return fmt.Errorf("genview: view %q: save: %w", o.view, err)
	}
	return nil
}

func (o SingleObject[E]) validate() []error {
	var errs []error
	if o.Store == nil {
		errs = append(errs, missing(o.view, "store"))
	}
	if o.New == nil {
		errs = append(errs, missing(o.view, "entity constructor"))
	}
	return errs
}
