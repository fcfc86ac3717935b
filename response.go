package genview

import (
	"net/http"
)

// Response is what a dispatch produces: a rendered page, a redirect or a
// not-found outcome, plus the flashes emitted along the way.
//
// The fluent setters return copies, mirroring how handlers build results:
//
//	return genview.Redirect("/todos").Flash(genview.FlashSuccess, "Saved!"), nil
//	return genview.Rendered("todo_form", data, body).Status(http.StatusUnprocessableEntity), nil
type Response struct {
	body     []byte
	template string
	data     *Context
	redirect string
	notFound bool
	flashes  []Flash
	headers  map[string]string
	status   int
}

// Rendered creates a response carrying rendered template output. The
// template name and context are kept for inspection in tests.
func Rendered(template string, data *Context, body []byte) Response {
	return Response{template: template, data: data, body: body}
}

// Redirect creates a redirect response to url.
func Redirect(url string) Response {
	return Response{redirect: url}
}

// NotFound creates a 404 response.
func NotFound() Response {
	return Response{notFound: true}
}

// Flash appends a flash message.
func (r Response) Flash(level, message string) Response {
	r.flashes = append(append([]Flash(nil), r.flashes...), Flash{Level: level, Message: message})
	return r
}

// Header sets a response header.
func (r Response) Header(key, value string) Response {
	headers := make(map[string]string, len(r.headers)+1)
	for k, v := range r.headers {
		headers[k] = v
	}
	headers[key] = value
	r.headers = headers
	return r
}

// Status overrides the HTTP status code.
func (r Response) Status(code int) Response {
	r.status = code
	return r
}

func (r Response) withFlashes(flashes []Flash) Response {
	if len(flashes) == 0 {
		return r
	}
	merged := make([]Flash, 0, len(flashes)+len(r.flashes))
	merged = append(merged, flashes...)
	merged = append(merged, r.flashes...)
	r.flashes = merged
	return r
}

// Body returns the rendered bytes (nil for redirects and not-found).
func (r Response) Body() []byte { return r.body }

// Template returns the name of the rendered template.
func (r Response) Template() string { return r.template }

// Data returns the render context used for the page.
func (r Response) Data() *Context { return r.data }

// RedirectURL returns the redirect target, empty when not a redirect.
func (r Response) RedirectURL() string { return r.redirect }

// IsRedirect reports whether the response redirects.
func (r Response) IsRedirect() bool { return r.redirect != "" }

// IsNotFound reports whether the response is a 404.
func (r Response) IsNotFound() bool { return r.notFound }

// IsRendered reports whether the response carries a rendered page.
func (r Response) IsRendered() bool { return !r.notFound && r.redirect == "" }

// Flashes returns the flashes attached to the response.
func (r Response) Flashes() []Flash { return r.flashes }

// Headers returns the custom headers.
func (r Response) Headers() map[string]string { return r.headers }

// StatusCode returns the effective HTTP status: the override if set,
// otherwise 404, 302 or 200 by kind.
func (r Response) StatusCode() int {
	switch {
	case r.status != 0:
		return r.status
	case r.notFound:
		return http.StatusNotFound
	case r.redirect != "":
		return http.StatusFound
	default:
		return http.StatusOK
	}
}

// Write sends the response. HTMX requests are redirected with the
// HX-Redirect header and get flashes appended as OOB toasts when a page is
// rendered.
func (r Response) Write(w http.ResponseWriter, req *http.Request) error {
	for k, v := range r.headers {
		w.Header().Set(k, v)
	}

	htmx := req != nil && IsHTMX(req)

	switch {
	case r.notFound:
		http.Error(w, "Not found", r.StatusCode())
		return nil
	case r.redirect != "":
		if htmx {
			w.Header().Set("HX-Redirect", r.redirect)
			w.WriteHeader(http.StatusOK)
			return nil
		}
		if req == nil {
			w.Header().Set("Location", r.redirect)
			w.WriteHeader(r.StatusCode())
			return nil
		}
		http.Redirect(w, req, r.redirect, r.StatusCode())
		return nil
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(r.StatusCode())
	if _, err := w.Write(r.body); err != nil {
		return err
	}
	if htmx && len(r.flashes) > 0 {
		_, err := w.Write([]byte(RenderFlashesOOB(r.flashes)))
		return err
	}
	return nil
}
