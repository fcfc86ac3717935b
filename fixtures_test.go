package genview

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
)

// note is the entity used throughout the view tests.
type note struct {
	ID    string
	Title string
}

// noteStore is an in-memory Store[*note] that counts writes and can be told
// to fail.
type noteStore struct {
	mu      sync.Mutex
	order   []string
	byID    map[string]*note
	nextID  int
	saves   int
	deletes int

	getErr    error
	allErr    error
	saveErr   error
	deleteErr error
}

func newNoteStore(notes ...*note) *noteStore {
	s := &noteStore{byID: make(map[string]*note)}
	for _, n := range notes {
		s.put(n)
	}
	return s
}

func (s *noteStore) put(n *note) {
	if n.ID == "" {
		s.nextID++
		n.ID = strconv.Itoa(100 + s.nextID)
	}
	if _, ok := s.byID[n.ID]; !ok {
		s.order = append(s.order, n.ID)
	}
	s.byID[n.ID] = n
}

func (s *noteStore) Get(_ context.Context, id string) (*note, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, false, s.getErr
	}
	n, ok := s.byID[id]
	return n, ok, nil
}

func (s *noteStore) All(context.Context) ([]*note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.allErr != nil {
		return nil, s.allErr
	}
	out := make([]*note, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out, nil
}

func (s *noteStore) Save(_ context.Context, n *note) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves++
	s.put(n)
	return nil
}

func (s *noteStore) Delete(_ context.Context, n *note) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deletes++
	delete(s.byID, n.ID)
	for i, id := range s.order {
		if id == n.ID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *noteStore) writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves + s.deletes
}

// renderCall records one Render invocation.
type renderCall struct {
	name string
	data *Context
}

// recordingRenderer writes "<name>|key=value,..." and remembers each call.
type recordingRenderer struct {
	mu    sync.Mutex
	calls []renderCall
	err   error
}

func (r *recordingRenderer) Render(_ context.Context, name string, data *Context) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, renderCall{name: name, data: data})
	if r.err != nil {
		return nil, r.err
	}
	parts := make([]string, 0, data.Len())
	for _, k := range data.Keys() {
		v, _ := data.Get(k)
		parts = append(parts, fmt.Sprintf("%s=%v", k, v))
	}
	return []byte(name + "|" + strings.Join(parts, ",")), nil
}

func (r *recordingRenderer) last() renderCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return renderCall{}
	}
	return r.calls[len(r.calls)-1]
}

func (r *recordingRenderer) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// noteForm requires a non-empty title.
type noteForm struct {
	Title  string
	Bound  *note
	Errors []string
	valid  bool
}

func (f *noteForm) Validate(payload url.Values) bool {
	f.Title = strings.TrimSpace(payload.Get("title"))
	f.Errors = nil
	if f.Title == "" {
		f.Errors = append(f.Errors, "title is required")
	}
	f.valid = len(f.Errors) == 0
	return f.valid
}

func (f *noteForm) ApplyTo(n *note) error {
	if !f.valid {
		return errors.New("form not validated")
	}
	n.Title = f.Title
	return nil
}

func (f *noteForm) String() string {
	if f.Bound != nil {
		return "form(" + f.Bound.ID + ")"
	}
	return "form()"
}

type noteFormType struct{}

func (noteFormType) Empty() Form[*note] { return &noteForm{} }

func (noteFormType) Bound(n *note) Form[*note] {
	return &noteForm{Title: n.Title, Bound: n}
}

var testURLs = StaticURLs{
	"note_list": "/notes",
	"home":      "/",
}

func newNote() *note { return &note{} }
