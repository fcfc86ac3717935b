package genview

import (
	"context"
	"net/http"
	"testing"
)

func TestParseFlashesFromHTML(t *testing.T) {
	tests := []struct {
		name   string
		html   string
		expect []Flash
	}{
		{"empty", "", nil},
		{"no toasts", "<p>hello</p>", nil},
		{
			name:   "rendered OOB",
			html:   "<p>page</p>" + RenderFlashesOOB([]Flash{{FlashSuccess, "Saved"}, {FlashError, "a < b"}}),
			expect: []Flash{{FlashSuccess, "Saved"}, {FlashError, "a < b"}},
		},
		{"unterminated", `<div class="toast toast-info">oops`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseFlashesFromHTML(tt.html)
			if len(got) != len(tt.expect) {
				t.Fatalf("parseFlashesFromHTML() = %+v, want %+v", got, tt.expect)
			}
			for i := range got {
				if got[i] != tt.expect[i] {
					t.Errorf("flash[%d] = %+v, want %+v", i, got[i], tt.expect[i])
				}
			}
		})
	}
}

func TestTestResultHelpers(t *testing.T) {
	r := &TestResult{
		HTML:        "<ul><li>a</li></ul>",
		StatusCode:  http.StatusFound,
		Headers:     http.Header{"X-Test": {"1"}},
		Flashes:     []Flash{{FlashInfo, "hi"}},
		RedirectURL: "/notes",
	}

	if !r.HTMLContains("<li>a</li>") || !r.HTMLContainsAll("<ul>", "</ul>") || r.HTMLContainsAll("<ul>", "<ol>") {
		t.Error("HTML helpers")
	}
	if !r.HasFlash(FlashInfo, "hi") || r.HasFlash(FlashInfo, "bye") || !r.HasFlashLevel(FlashInfo) || r.HasFlashLevel(FlashError) {
		t.Error("flash helpers")
	}
	if !r.WasRedirected() || !r.RedirectedTo("/notes") || r.RedirectedTo("/") {
		t.Error("redirect helpers")
	}
	if r.IsOK() || !r.HasStatus(http.StatusFound) || !r.HasHeader("X-Test", "1") {
		t.Error("status helpers")
	}
}

func TestTestCallContext(t *testing.T) {
	type ctxKey struct{}

	var seen any
	v, _ := NewTemplateView(TemplateConfig{
		Name: "ctx", Template: "ctx.html", Renderer: &recordingRenderer{},
		OnGet: func(req *Request) any {
			seen = req.Context().Value(ctxKey{})
			return nil
		},
	})
	reg := NewRegistry()
	reg.Add("ctx", "/ctx", v)

	ctx := context.WithValue(context.Background(), ctxKey{}, "value")
	result, err := NewTestCall(http.MethodGet, "/ctx").WithContext(ctx).Execute(reg)
	if err != nil {
		t.Fatal(err)
	}
	if !result.IsOK() || seen != "value" {
		t.Errorf("status %d, context value %v", result.StatusCode, seen)
	}
}
