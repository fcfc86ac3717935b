package templrender

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/a-h/templ"

	"github.com/pthm/genview"
)

func text(s string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, s)
		return err
	})
}

func TestRender(t *testing.T) {
	r := New().Register("hello.html", func(data *genview.Context) (templ.Component, error) {
		name, _ := data.Get("name")
		return text("Hello, " + templ.EscapeString(name.(string)) + "!"), nil
	})

	out, err := r.Render(context.Background(), "hello.html", genview.ContextOf("name", "<World>"))
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if got := string(out); got != "Hello, &lt;World&gt;!" {
		t.Errorf("Render() = %q", got)
	}
}

func TestRenderUnknown(t *testing.T) {
	_, err := New().Render(context.Background(), "missing.html", genview.NewContext())
	if !errors.Is(err, ErrUnknownTemplate) {
		t.Errorf("Render() error = %v, want ErrUnknownTemplate", err)
	}
}

func TestRenderErrors(t *testing.T) {
	boom := errors.New("boom")
	r := New().
		Register("build.html", func(*genview.Context) (templ.Component, error) { return nil, boom }).
		Static("render.html", templ.ComponentFunc(func(context.Context, io.Writer) error { return boom }))

	for _, name := range []string{"build.html", "render.html"} {
		if _, err := r.Render(context.Background(), name, nil); !errors.Is(err, boom) {
			t.Errorf("Render(%q) error = %v, want boom", name, err)
		}
	}
}

func TestLayout(t *testing.T) {
	r := New().
		Static("page.html", text("<p>body</p>")).
		WithLayout(func(page templ.Component, data *genview.Context) templ.Component {
			return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
				if _, err := io.WriteString(w, "<main>"); err != nil {
					return err
				}
				if err := page.Render(ctx, w); err != nil {
					return err
				}
				_, err := io.WriteString(w, "</main>")
				return err
			})
		})

	out, err := r.Render(context.Background(), "page.html", nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := string(out); got != "<main><p>body</p></main>" {
		t.Errorf("Render() = %q", got)
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	r := New().Static("a", text("a"))
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	r.Static("a", text("b"))
}
