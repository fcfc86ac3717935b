package genview

import (
	"errors"
	"net/http"
)

// RedirectConfig configures a RedirectView.
type RedirectConfig struct {
	Name string
	// Target names the redirect destination; URLs resolves it.
	Target string
	URLs   URLResolver
	// Permanent answers 301 instead of 302.
	Permanent bool
}

// RedirectView always redirects to its target. It touches neither a store
// nor a renderer.
type RedirectView struct {
	Base
	target    string
	urls      URLResolver
	permanent bool
}

// NewRedirectView creates a RedirectView.
func NewRedirectView(cfg RedirectConfig) (*RedirectView, error) {
	var errs []error
	if cfg.Target == "" {
		errs = append(errs, missing(cfg.Name, "redirect url"))
	}
	if cfg.URLs == nil {
		errs = append(errs, missing(cfg.Name, "url resolver"))
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return &RedirectView{
		Base:      NewBase(cfg.Name),
		target:    cfg.Target,
		urls:      cfg.URLs,
		permanent: cfg.Permanent,
	}, nil
}

// Kind returns KindRedirect.
func (v *RedirectView) Kind() Kind { return KindRedirect }

// RedirectURL resolves the configured target.
func (v *RedirectView) RedirectURL() (string, error) {
	if v.target == "" {
		return "", missing(v.name, "redirect url")
	}
	if v.urls == nil {
		return "", missing(v.name, "url resolver")
	}
	return v.urls.Resolve(v.target)
}

// Dispatch redirects to RedirectURL.
func (v *RedirectView) Dispatch(req *Request) (Response, error) {
	url, err := v.RedirectURL()
	if err != nil {
		return Response{}, err
	}
	resp := Redirect(url)
	if v.permanent {
		resp = resp.Status(http.StatusMovedPermanently)
	}
	return complete(req, resp, nil)
}
