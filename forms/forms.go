// Package forms binds submitted form payloads onto entity structs described
// by struct tags, providing genview.FormType implementations.
//
//	type Todo struct {
//	    ID    string
//	    Title string `form:"title,required,max=120" label:"Title"`
//	    Notes string `form:"notes,max=2000"`
//	    Done  bool   `form:"done"`
//	}
//
//	todoForm := forms.MustNew[*Todo]()
//
// Submitted text is trimmed and stripped of markup before validation.
// Supported field kinds are strings, bools (checkboxes) and integers.
package forms

import (
	"errors"
	"fmt"
	"html"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/pthm/genview"
)

// Validation messages. MsgRange is formatted with the accepted bounds.
const (
	MsgRequired = "This field is required."
	MsgInteger  = "Enter a whole number."
	MsgRange    = "Ensure this value is between %d and %d."
)

// ErrNotValidated is returned by ApplyTo on a form that has not passed Validate.
var ErrNotValidated = errors.New("forms: form has not been validated")

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

func sanitizer() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.StrictPolicy()
	})
	return policy
}

// clean trims s and strips any markup, keeping the plain text.
func clean(s string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(sanitizer().Sanitize(trimmed)))
}

type fieldSpec struct {
	name     string
	label    string
	index    []int
	kind     reflect.Kind
	required bool
	minLen   int
	maxLen   int
	bits     int
}

// Type builds forms for the struct E points to. It implements
// genview.FormType[E].
type Type[E any] struct {
	fields []fieldSpec
}

var _ genview.FormType[*struct{}] = (*Type[*struct{}])(nil)

// New inspects E, which must be a pointer to a struct with at least one
// form-tagged field.
func New[E any]() (*Type[E], error) {
	rt := reflect.TypeFor[E]()
	if rt.Kind() != reflect.Pointer || rt.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("forms: %v is not a pointer to a struct", rt)
	}
	rt = rt.Elem()

	var fields []fieldSpec
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		tag, ok := sf.Tag.Lookup("form")
		if !ok || tag == "-" || !sf.IsExported() {
			continue
		}
		spec, err := parseTag(sf, tag)
		if err != nil {
			return nil, err
		}
		fields = append(fields, spec)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("forms: %v has no form fields", rt)
	}
	return &Type[E]{fields: fields}, nil
}

// MustNew is New that panics on error, for package-level form types.
func MustNew[E any]() *Type[E] {
	t, err := New[E]()
	if err != nil {
		panic(err)
	}
	return t
}

func parseTag(sf reflect.StructField, tag string) (fieldSpec, error) {
	parts := strings.Split(tag, ",")
	spec := fieldSpec{
		name:  strings.TrimSpace(parts[0]),
		label: sf.Tag.Get("label"),
		index: sf.Index,
		kind:  sf.Type.Kind(),
	}
	if spec.name == "" {
		spec.name = strings.ToLower(sf.Name)
	}
	if spec.label == "" {
		spec.label = sf.Name
	}

	switch spec.kind {
	case reflect.String, reflect.Bool:
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		spec.bits = sf.Type.Bits()
	default:
		return spec, fmt.Errorf("forms: field %s: unsupported kind %v", sf.Name, spec.kind)
	}

	for _, opt := range parts[1:] {
		opt = strings.TrimSpace(opt)
		key, value, _ := strings.Cut(opt, "=")
		switch key {
		case "required":
			spec.required = true
		case "max", "min":
			n, err := strconv.Atoi(value)
			if err != nil || n < 0 {
				return spec, fmt.Errorf("forms: field %s: bad %s %q", sf.Name, key, value)
			}
			if key == "max" {
				spec.maxLen = n
			} else {
				spec.minLen = n
			}
		case "":
		default:
			return spec, fmt.Errorf("forms: field %s: unknown option %q", sf.Name, opt)
		}
	}
	return spec, nil
}

// Empty returns an unbound form.
func (t *Type[E]) Empty() genview.Form[E] {
	return t.newForm()
}

// Bound returns a form pre-populated from entity.
func (t *Type[E]) Bound(entity E) genview.Form[E] {
	f := t.newForm()
	rv := reflect.ValueOf(entity)
	if rv.IsNil() {
		return f
	}
	rv = rv.Elem()
	for _, spec := range t.fields {
		f.Values[spec.name] = format(rv.FieldByIndex(spec.index))
	}
	f.bound = true
	return f
}

func (t *Type[E]) newForm() *Form[E] {
	f := &Form[E]{
		typ:    t,
		Values: make(map[string]string, len(t.fields)),
		Errors: make(map[string]string),
	}
	for _, spec := range t.fields {
		f.Fields = append(f.Fields, Field{Name: spec.name, Label: spec.label, Required: spec.required, MaxLength: spec.maxLen, Checkbox: spec.kind == reflect.Bool})
	}
	return f
}

func format(v reflect.Value) string {
	switch v.Kind() {
	case reflect.String:
		return v.String()
	case reflect.Bool:
		if v.Bool() {
			return "on"
		}
		return ""
	default:
		return strconv.FormatInt(v.Int(), 10)
	}
}

// Field describes one input for templates.
type Field struct {
	Name      string
	Label     string
	Required  bool
	MaxLength int
	Checkbox  bool
}

// Form is one form instance: the values to show, and after Validate the
// errors per field. It implements genview.Form[E].
//
// Templates read Values and Errors by field name:
//
//	<input name="title" value="{{ form.Values.title }}">
//	{% if form.Errors.title %}<p class="error">{{ form.Errors.title }}</p>{% endif %}
type Form[E any] struct {
	Fields []Field
	Values map[string]string
	Errors map[string]string

	typ     *Type[E]
	bound   bool
	cleaned map[string]any
}

// IsBound reports whether the form was pre-populated from an entity.
func (f *Form[E]) IsBound() bool { return f.bound }

// Valid reports whether the last Validate succeeded.
func (f *Form[E]) Valid() bool { return f.cleaned != nil }

// Value returns the displayed value of a field.
func (f *Form[E]) Value(name string) string { return f.Values[name] }

// Error returns the validation error of a field, or "".
func (f *Form[E]) Error(name string) string { return f.Errors[name] }

// Validate cleans payload and checks it against the field rules. The
// cleaned values replace the displayed ones either way.
func (f *Form[E]) Validate(payload url.Values) bool {
	f.Errors = make(map[string]string)
	cleaned := make(map[string]any, len(f.typ.fields))

	for _, spec := range f.typ.fields {
		raw := payload.Get(spec.name)
		if spec.kind == reflect.Bool {
			on := raw == "on" || raw == "true" || raw == "1"
			if on {
				f.Values[spec.name] = "on"
			} else {
				f.Values[spec.name] = ""
			}
			if spec.required && !on {
				f.Errors[spec.name] = MsgRequired
				continue
			}
			cleaned[spec.name] = on
			continue
		}

		value := clean(raw)
		f.Values[spec.name] = value

		if value == "" {
			if spec.required {
				f.Errors[spec.name] = MsgRequired
				continue
			}
			if spec.kind == reflect.String {
				cleaned[spec.name] = ""
			} else {
				cleaned[spec.name] = int64(0)
			}
			continue
		}
		if spec.maxLen > 0 && len([]rune(value)) > spec.maxLen {
			f.Errors[spec.name] = fmt.Sprintf("Ensure this value has at most %d characters.", spec.maxLen)
			continue
		}
		if spec.minLen > 0 && len([]rune(value)) < spec.minLen {
			f.Errors[spec.name] = fmt.Sprintf("Ensure this value has at least %d characters.", spec.minLen)
			continue
		}

		if spec.kind == reflect.String {
			cleaned[spec.name] = value
			continue
		}
		n, err := strconv.ParseInt(value, 10, spec.bits)
		switch {
		case errors.Is(err, strconv.ErrRange):
			lo, hi := intRange(spec.bits)
			f.Errors[spec.name] = fmt.Sprintf(MsgRange, lo, hi)
			continue
		case err != nil:
			f.Errors[spec.name] = MsgInteger
			continue
		}
		cleaned[spec.name] = n
	}

	if len(f.Errors) > 0 {
		f.cleaned = nil
		return false
	}
	f.cleaned = cleaned
	return true
}

// ApplyTo copies the validated values onto entity.
func (f *Form[E]) ApplyTo(entity E) error {
	if f.cleaned == nil {
		return ErrNotValidated
	}
	rv := reflect.ValueOf(entity)
	if rv.IsNil() {
		return errors.New("forms: nil entity")
	}
	rv = rv.Elem()

	// Check every value before setting any, so a failure leaves entity as it was.
	for _, spec := range f.typ.fields {
		n, ok := f.cleaned[spec.name].(int64)
		if !ok {
			continue
		}
		if field := rv.FieldByIndex(spec.index); field.OverflowInt(n) {
			return fmt.Errorf("forms: field %s: %d overflows %v", spec.name, n, field.Type())
		}
	}

	for _, spec := range f.typ.fields {
		value, ok := f.cleaned[spec.name]
		if !ok {
			continue
		}
		field := rv.FieldByIndex(spec.index)
		switch spec.kind {
		case reflect.String:
			field.SetString(value.(string))
		case reflect.Bool:
			field.SetBool(value.(bool))
		default:
			field.SetInt(value.(int64))
		}
	}
	return nil
}

// intRange returns the bounds of a signed integer of the given width.
func intRange(bits int) (lo, hi int64) {
	return -1 << (bits - 1), 1<<(bits-1) - 1
}
