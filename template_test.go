package genview

import (
	"errors"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewTemplateViewConfig(t *testing.T) {
	_, err := NewTemplateView(TemplateConfig{Name: "about"})
	if !IsConfigError(err) {
		t.Fatalf("NewTemplateView() error = %v, want ConfigError", err)
	}

	var fields []string
	for _, e := range err.(interface{ Unwrap() []error }).Unwrap() {
		var cfgErr *ConfigError
		if errors.As(e, &cfgErr) {
			fields = append(fields, cfgErr.Field)
		}
	}
	if diff := cmp.Diff([]string{"template", "renderer"}, fields); diff != "" {
		t.Errorf("missing fields mismatch (-want +got):\n%s", diff)
	}
}

func TestTemplateViewDispatch(t *testing.T) {
	r := &recordingRenderer{}
	v, err := NewTemplateView(TemplateConfig{Name: "about", Template: "about.html", Renderer: r})
	if err != nil {
		t.Fatal(err)
	}

	req := NewTestRequest(http.MethodGet, map[string]string{"slug": "team", "a": "1"}, nil)
	resp, err := v.Dispatch(req)
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}

	if resp.Template() != "about.html" {
		t.Errorf("Template() = %q", resp.Template())
	}
	if got := string(resp.Body()); got != "about.html|a=1,slug=team" {
		t.Errorf("Body() = %q", got)
	}
	if diff := cmp.Diff([]string{"a", "slug"}, r.last().data.Keys()); diff != "" {
		t.Errorf("context keys mismatch (-want +got):\n%s", diff)
	}
}

func TestTemplateViewGetHookDiscarded(t *testing.T) {
	r := &recordingRenderer{}
	calls := 0
	v, err := NewTemplateView(TemplateConfig{
		Name: "about", Template: "about.html", Renderer: r,
		OnGet: func(req *Request) any {
			calls++
			return Redirect("/elsewhere")
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	resp, err := v.Dispatch(NewTestRequest(http.MethodGet, nil, nil))
	if err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Errorf("hook calls = %d, want 1", calls)
	}
	if !resp.IsRendered() || r.count() != 1 {
		t.Errorf("hook result should not replace the render, got %+v", resp)
	}
}

func TestTemplateViewContextFunc(t *testing.T) {
	r := &recordingRenderer{}
	v, _ := NewTemplateView(TemplateConfig{
		Name: "about", Template: "about.html", Renderer: r,
		Context: func(req *Request, data *Context) error {
			data.Set("title", "About")
			return nil
		},
	})

	data, err := v.ContextData(NewTestRequest(http.MethodGet, nil, nil), ContextOf("x", 1))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(map[string]any{"x": 1, "title": "About"}, data.Map()); diff != "" {
		t.Errorf("ContextData() mismatch (-want +got):\n%s", diff)
	}
}

func TestTemplateViewMessages(t *testing.T) {
	r := &recordingRenderer{}
	v, _ := NewTemplateView(TemplateConfig{Name: "home", Template: "home.html", Renderer: r})

	req := NewTestRequest(http.MethodGet, nil, nil)
	req.SetMessages([]Flash{{FlashSuccess, "Record created successfully!"}})
	if _, err := v.Dispatch(req); err != nil {
		t.Fatal(err)
	}

	msgs, ok := r.last().data.Get("messages")
	if !ok {
		t.Fatal("render context should carry pending messages")
	}
	if diff := cmp.Diff([]Flash{{FlashSuccess, "Record created successfully!"}}, msgs); diff != "" {
		t.Errorf("messages mismatch (-want +got):\n%s", diff)
	}
}

func TestTemplateViewRenderError(t *testing.T) {
	boom := errors.New("template blew up")
	r := &recordingRenderer{err: boom}
	v, _ := NewTemplateView(TemplateConfig{Name: "home", Template: "home.html", Renderer: r})

	_, err := v.Dispatch(NewTestRequest(http.MethodGet, nil, nil))
	if !errors.Is(err, boom) {
		t.Errorf("Dispatch() error = %v, want wrapped renderer error", err)
	}
}

func TestZeroTemplateViewAccessors(t *testing.T) {
	var v TemplateView
	if _, err := v.TemplateName(); !IsConfigError(err) {
		t.Errorf("TemplateName() error = %v, want ConfigError", err)
	}
	if _, err := v.Dispatch(NewTestRequest(http.MethodGet, nil, nil)); !IsConfigError(err) {
		t.Errorf("Dispatch() error = %v, want ConfigError", err)
	}
}
