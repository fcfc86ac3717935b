package demo

import "github.com/pthm/genview/forms"

// Todo is the demo entity.
type Todo struct {
	ID    string `msgpack:"id"`
	Title string `msgpack:"title" form:"title,required,max=120" label:"Title"`
	Notes string `msgpack:"notes" form:"notes,max=2000" label:"Notes"`
	Done  bool   `msgpack:"done" form:"done" label:"Done"`
}

func (t *Todo) EntityID() string      { return t.ID }
func (t *Todo) SetEntityID(id string) { t.ID = id }

// NewTodo allocates an empty Todo.
func NewTodo() *Todo { return &Todo{} }

// Feedback is submitted through a plain form that stores nothing.
type Feedback struct {
	Email   string `form:"email,required,max=254" label:"Email"`
	Message string `form:"message,required,min=3,max=1000" label:"Message"`
}

var (
	todoForm     = forms.MustNew[*Todo]()
	feedbackForm = forms.MustNew[*Feedback]()
)
