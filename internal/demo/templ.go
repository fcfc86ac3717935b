package demo

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/a-h/templ"

	"github.com/pthm/genview"
	"github.com/pthm/genview/forms"
	"github.com/pthm/genview/render/templrender"
)

// templRenderer renders the same pages as the pongo2 templates with
// hand-written templ components.
func templRenderer(reg *genview.Registry) *templrender.Renderer {
	return templrender.New().
		Register("todo_list.html", func(data *genview.Context) (templ.Component, error) {
			v, _ := data.Get("object_list")
			todos, ok := v.([]*Todo)
			if !ok && v != nil {
				return nil, fmt.Errorf("object_list is %T", v)
			}
			open, _ := data.Get("open")
			return todoList(reg, todos, open), nil
		}).
		Register("todo_form.html", func(data *genview.Context) (templ.Component, error) {
			form, err := formOf[*Todo](data)
			if err != nil {
				return nil, err
			}
			obj, _ := data.Get("object")
			todo, _ := obj.(*Todo)
			return todoFormPage(form, todo), nil
		}).
		Register("feedback.html", func(data *genview.Context) (templ.Component, error) {
			form, err := formOf[*Feedback](data)
			if err != nil {
				return nil, err
			}
			return feedbackPage(form), nil
		}).
		Static("about.html", aboutPage(reg)).
		WithLayout(func(page templ.Component, data *genview.Context) templ.Component {
			var msgs []genview.Flash
			if v, ok := data.Get("messages"); ok {
				msgs, _ = v.([]genview.Flash)
			}
			return layout(reg, msgs, page)
		})
}

func formOf[E any](data *genview.Context) (*forms.Form[E], error) {
	v, _ := data.Get("form")
	form, ok := v.(*forms.Form[E])
	if !ok {
		return nil, fmt.Errorf("form is %T", v)
	}
	return form, nil
}

func write(w io.Writer, parts ...string) error {
	for _, p := range parts {
		if _, err := io.WriteString(w, p); err != nil {
			return err
		}
	}
	return nil
}

var esc = templ.EscapeString[string]

func layout(reg *genview.Registry, msgs []genview.Flash, page templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := write(w,
			`<!doctype html><html lang="en"><head><meta charset="utf-8"><title>genview demo</title>`,
			`<script src="https://unpkg.com/htmx.org@2.0.4"></script></head><body hx-boost="true"><nav>`,
			`<a href="`, esc(urlFor(reg, RouteList, "")), `">Todos</a>`,
			`<a href="`, esc(urlFor(reg, RouteCreate, "")), `">New todo</a>`,
			`<a href="`, esc(urlFor(reg, RouteAbout, "")), `">About</a></nav>`,
			`<div id="toasts" class="toast-container">`,
		); err != nil {
			return err
		}
		for _, m := range msgs {
			if err := write(w, `<div class="toast toast-`, esc(m.Level), `" data-auto-dismiss="3000">`, esc(m.Message), `</div>`); err != nil {
				return err
			}
		}
		if err := write(w, `</div><main>`); err != nil {
			return err
		}
		if err := page.Render(ctx, w); err != nil {
			return err
		}
		return write(w, `</main></body></html>`)
	})
}

func todoList(reg *genview.Registry, todos []*Todo, open any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := write(w, `<h1>Todos <small>`, esc(fmt.Sprint(open)), ` open</small></h1>`); err != nil {
			return err
		}
		if len(todos) == 0 {
			return write(w, `<p class="empty">Nothing to do.</p>`)
		}
		if err := write(w, `<ul class="todos">`); err != nil {
			return err
		}
		for _, t := range todos {
			class := ""
			if t.Done {
				class = "done"
			}
			attrs, err := reg.Action(RouteDelete, http.MethodPost, map[string]string{"pk": t.ID})
			if err != nil {
				return err
			}
			if err := write(w,
				`<li class="`, class, `"><a href="`, esc(urlFor(reg, RouteEdit, t.ID)), `">`, esc(t.Title), `</a>`,
				`<button`, attributes(attrs), `>Delete</button></li>`,
			); err != nil {
				return err
			}
		}
		return write(w, `</ul>`)
	})
}

// attributes renders attrs in key order, each with a leading space.
func attributes(attrs templ.Attributes) string {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		sb.WriteString(" ")
		sb.WriteString(esc(k))
		sb.WriteString(`="`)
		sb.WriteString(esc(fmt.Sprint(attrs[k])))
		sb.WriteString(`"`)
	}
	return sb.String()
}

func fieldError[E any](form *forms.Form[E], name string) string {
	if msg := form.Error(name); msg != "" {
		return `<p class="error">` + esc(msg) + `</p>`
	}
	return ""
}

func todoFormPage(form *forms.Form[*Todo], todo *Todo) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		heading := "New todo"
		if todo != nil {
			heading = "Edit todo"
		}
		checked := ""
		if form.Value("done") != "" {
			checked = " checked"
		}
		return write(w,
			`<h1>`, heading, `</h1><form method="post">`,
			`<label for="title">Title</label>`,
			`<input id="title" name="title" maxlength="120" required value="`, esc(form.Value("title")), `">`,
			fieldError(form, "title"),
			`<label for="notes">Notes</label>`,
			`<textarea id="notes" name="notes">`, esc(form.Value("notes")), `</textarea>`,
			fieldError(form, "notes"),
			`<label><input type="checkbox" name="done"`, checked, `> Done</label>`,
			`<button type="submit">Save</button></form>`,
		)
	})
}

func feedbackPage(form *forms.Form[*Feedback]) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return write(w,
			`<h1>Feedback</h1><form method="post">`,
			`<label for="email">Email</label>`,
			`<input id="email" name="email" value="`, esc(form.Value("email")), `">`,
			fieldError(form, "email"),
			`<label for="message">Message</label>`,
			`<textarea id="message" name="message">`, esc(form.Value("message")), `</textarea>`,
			fieldError(form, "message"),
			`<button type="submit">Send</button></form>`,
		)
	})
}

func aboutPage(reg *genview.Registry) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return write(w,
			`<h1>About</h1>`,
			`<p>A todo list served by generic list, create, update, delete and redirect views.</p>`,
			`<p><a href="`, esc(urlFor(reg, RouteFeedback, "")), `">Send feedback</a></p>`,
		)
	})
}
