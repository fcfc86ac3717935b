package genview

import (
	"context"
	"html"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
)

// TestResult holds the outcome of serving a request through a Registry.
//
// Flashes are collected from both transports: OOB toasts in the body of an
// HTMX render and the flash cookie set before a redirect.
type TestResult struct {
	HTML        string
	StatusCode  int
	Headers     http.Header
	Cookies     []*http.Cookie
	Flashes     []Flash
	RedirectURL string
}

// TestServe serves one request through reg and returns testable output.
//
//	result, err := genview.TestServe(reg, http.MethodPost, "/todos/new", map[string]string{
//	    "title": "Buy milk",
//	})
//	if !result.RedirectedTo("/todos") { ... }
func TestServe(reg *Registry, method, target string, formData map[string]string) (*TestResult, error) {
	return NewTestCall(method, target).WithFormValues(formData).Execute(reg)
}

// TestGet serves a GET request through reg.
func TestGet(reg *Registry, target string) (*TestResult, error) {
	return TestServe(reg, http.MethodGet, target, nil)
}

// TestPost serves a POST request through reg.
func TestPost(reg *Registry, target string, formData map[string]string) (*TestResult, error) {
	return TestServe(reg, http.MethodPost, target, formData)
}

// TestCall builds a request for Execute with finer control than TestServe:
//
//	result, err := genview.NewTestCall(http.MethodPost, "/todos/1/delete").
//	    HTMX().
//	    WithCookies(previous.Cookies).
//	    Execute(reg)
type TestCall struct {
	method   string
	target   string
	formData url.Values
	headers  map[string]string
	cookies  []*http.Cookie
	ctx      context.Context
}

// NewTestCall creates a request builder.
func NewTestCall(method, target string) *TestCall {
	return &TestCall{
		method:   method,
		target:   target,
		formData: url.Values{},
		headers:  make(map[string]string),
		ctx:      context.Background(),
	}
}

// WithFormData adds one form value.
func (b *TestCall) WithFormData(key, value string) *TestCall {
	b.formData.Add(key, value)
	return b
}

// WithFormValues adds several form values.
func (b *TestCall) WithFormValues(data map[string]string) *TestCall {
	for k, v := range data {
		b.formData.Set(k, v)
	}
	return b
}

// WithHeader sets a request header.
func (b *TestCall) WithHeader(key, value string) *TestCall {
	b.headers[key] = value
	return b
}

// HTMX marks the request as sent by HTMX.
func (b *TestCall) HTMX() *TestCall {
	return b.WithHeader("HX-Request", "true")
}

// WithCookies sends cookies, typically the ones a previous result set.
func (b *TestCall) WithCookies(cookies []*http.Cookie) *TestCall {
	b.cookies = append(b.cookies, cookies...)
	return b
}

// WithContext sets the request context.
func (b *TestCall) WithContext(ctx context.Context) *TestCall {
	b.ctx = ctx
	return b
}

// Execute serves the request through reg.
func (b *TestCall) Execute(reg *Registry) (*TestResult, error) {
	body := strings.NewReader(b.formData.Encode())
	req := httptest.NewRequest(b.method, b.target, body)
	req = req.WithContext(b.ctx)
	if len(b.formData) > 0 {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for k, v := range b.headers {
		req.Header.Set(k, v)
	}
	for _, c := range b.cookies {
		if c.MaxAge < 0 || c.Value == "" {
			continue
		}
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	reg.Handler().ServeHTTP(rec, req)

	resp := rec.Result()
	result := &TestResult{
		HTML:       rec.Body.String(),
		StatusCode: rec.Code,
		Headers:    rec.Header(),
		Cookies:    resp.Cookies(),
	}

	if redirect := rec.Header().Get("HX-Redirect"); redirect != "" {
		result.RedirectURL = redirect
	} else if loc := rec.Header().Get("Location"); loc != "" {
		result.RedirectURL = loc
	}

	result.Flashes = parseFlashesFromHTML(result.HTML)
	result.Flashes = append(result.Flashes, reg.cookieFlashes(result.Cookies)...)

	return result, nil
}

// cookieFlashes decodes the flashes stored in a set flash cookie.
func (reg *Registry) cookieFlashes(cookies []*http.Cookie) []Flash {
	probe := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		if c.MaxAge >= 0 && c.Value != "" {
			probe.AddCookie(c)
		}
	}
	flashes, _, err := reg.flashes.Read(probe)
	if err != nil {
		return nil
	}
	return flashes
}

// HTMLContains checks if the HTML contains a substring.
func (r *TestResult) HTMLContains(substr string) bool {
	return strings.Contains(r.HTML, substr)
}

// HTMLContainsAll checks if the HTML contains all the given substrings.
func (r *TestResult) HTMLContainsAll(substrs ...string) bool {
	for _, s := range substrs {
		if !strings.Contains(r.HTML, s) {
			return false
		}
	}
	return true
}

// HasFlash checks if a flash message was set with the given level and message.
func (r *TestResult) HasFlash(level, message string) bool {
	for _, f := range r.Flashes {
		if f.Level == level && f.Message == message {
			return true
		}
	}
	return false
}

// HasFlashLevel checks if any flash message was set with the given level.
func (r *TestResult) HasFlashLevel(level string) bool {
	for _, f := range r.Flashes {
		if f.Level == level {
			return true
		}
	}
	return false
}

// WasRedirected checks if the response was a redirect.
func (r *TestResult) WasRedirected() bool {
	return r.RedirectURL != ""
}

// RedirectedTo checks if the response was redirected to a specific URL.
func (r *TestResult) RedirectedTo(url string) bool {
	return r.RedirectURL == url
}

// IsOK checks if the status code is 200.
func (r *TestResult) IsOK() bool {
	return r.StatusCode == http.StatusOK
}

// HasStatus checks if the status code matches.
func (r *TestResult) HasStatus(code int) bool {
	return r.StatusCode == code
}

// HasHeader checks if a header is set with the given value.
func (r *TestResult) HasHeader(key, value string) bool {
	return r.Headers.Get(key) == value
}

// parseFlashesFromHTML extracts flash messages from OOB swap HTML, matching
// what RenderFlashesOOB writes:
// <div class="toast toast-success" ...>message</div>
func parseFlashesFromHTML(body string) []Flash {
	var flashes []Flash

	const prefix = `<div class="toast toast-`
	idx := 0
	for {
		start := strings.Index(body[idx:], prefix)
		if start == -1 {
			break
		}
		start += idx + len(prefix)

		levelEnd := strings.Index(body[start:], `"`)
		if levelEnd == -1 {
			break
		}
		level := body[start : start+levelEnd]

		tagEnd := strings.Index(body[start:], ">")
		if tagEnd == -1 {
			break
		}
		contentStart := start + tagEnd + 1

		contentEnd := strings.Index(body[contentStart:], "</div>")
		if contentEnd == -1 {
			break
		}

		flashes = append(flashes, Flash{
			Level:   level,
			Message: html.UnescapeString(body[contentStart : contentStart+contentEnd]),
		})

		idx = contentStart + contentEnd
	}

	return flashes
}
