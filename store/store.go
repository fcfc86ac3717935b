// Package store holds what the bundled genview stores share: the entity
// contract and identifier generation.
package store

import (
	"errors"
	"reflect"

	"github.com/google/uuid"
)

// Entity is implemented by values the bundled stores persist. Stores assign
// an identifier on first save when EntityID is empty.
type Entity interface {
	EntityID() string
	SetEntityID(id string)
}

// ErrNilEntity is returned when saving or deleting a nil entity.
var ErrNilEntity = errors.New("store: nil entity")

// NewID returns a fresh random identifier.
func NewID() string {
	return uuid.NewString()
}

// EnsureID assigns a fresh identifier to e when it has none and reports
// whether it did.
func EnsureID(e Entity) bool {
	if e.EntityID() != "" {
		return false
	}
	e.SetEntityID(NewID())
	return true
}

// IsNil reports whether e is nil or a nil pointer.
func IsNil(e Entity) bool {
	if e == nil {
		return true
	}
	rv := reflect.ValueOf(e)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

// Clone returns a shallow copy of e: a new struct with the same field
// values when e points to a struct, e itself otherwise. Slices, maps and
// pointers inside the struct stay shared.
func Clone[E Entity](e E) E {
	rv := reflect.ValueOf(e)
	if !rv.IsValid() || rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return e
	}
	cp := reflect.New(rv.Elem().Type())
	cp.Elem().Set(rv.Elem())
	return cp.Interface().(E)
}
