package pongorender

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/pthm/genview"
)

var templates = fstest.MapFS{
	"base.html":   {Data: []byte(`<main>{% block content %}{% endblock %}</main>`)},
	"list.html":   {Data: []byte(`{% extends "base.html" %}{% block content %}{% for o in object_list %}<li>{{ o }}</li>{% empty %}<p>none</p>{% endfor %}{% endblock %}`)},
	"hello.html":  {Data: []byte(`Hello {{ name }} from {{ site }}`)},
	"broken.html": {Data: []byte(`{% if %}`)},
}

func TestRender(t *testing.T) {
	r, err := New(WithFS(templates), WithGlobals(map[string]any{"site": "genview"}))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		tmpl   string
		data   *genview.Context
		expect string
	}{
		{"globals", "hello.html", genview.ContextOf("name", "<b>"), "Hello &lt;b&gt; from genview"},
		{"inheritance", "list.html", genview.ContextOf("object_list", []string{"a", "b"}), "<main><li>a</li><li>b</li></main>"},
		{"empty list", "list.html", genview.ContextOf("object_list", []string{}), "<main><p>none</p></main>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := r.Render(context.Background(), tt.tmpl, tt.data)
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			if got := string(out); got != tt.expect {
				t.Errorf("Render() = %q, want %q", got, tt.expect)
			}
		})
	}
}

func TestRenderErrors(t *testing.T) {
	r, err := New(WithFS(templates))
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"missing.html", "broken.html"} {
		if _, err := r.Render(context.Background(), name, genview.NewContext()); err == nil {
			t.Errorf("Render(%q) should fail", name)
		}
	}
}

func TestNewRequiresSource(t *testing.T) {
	if _, err := New(); err == nil {
		t.Error("New() without a source should fail")
	}
}

func TestBaseDirWithoutCache(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "page.html")
	if err := os.WriteFile(path, []byte("v1"), 0o600); err != nil {
		t.Fatal(err)
	}

	r, err := New(WithBaseDir(dir), WithoutCache())
	if err != nil {
		t.Fatal(err)
	}
	out, err := r.Render(context.Background(), "page.html", nil)
	if err != nil || string(out) != "v1" {
		t.Fatalf("Render() = %q, %v", out, err)
	}

	if err := os.WriteFile(path, []byte("v2"), 0o600); err != nil {
		t.Fatal(err)
	}
	out, err = r.Render(context.Background(), "page.html", nil)
	if err != nil || !strings.Contains(string(out), "v2") {
		t.Errorf("uncached Render() = %q, %v", out, err)
	}
}
