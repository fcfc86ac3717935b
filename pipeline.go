package genview

// Names of the steps a successful form submission runs through.
const (
	StepPersist           = "persist"
	StepNotifyAndRedirect = "notify-and-redirect"
)

// step is one stage of the success pipeline. A stage either hands over to
// the next one (nil response) or ends the dispatch with a response.
type step[E any] struct {
	name string
	run  func(req *Request, form Form[E]) (*Response, error)
}

// pipeline runs steps in their fixed order. The first error aborts the
// remaining steps, so nothing after a failed save is reached.
type pipeline[E any] []step[E]

func (p pipeline[E]) run(req *Request, form Form[E]) (Response, error) {
	for _, s := range p {
		resp, err := s.run(req, form)
		if err != nil {
			return Response{}, err
		}
		if resp != nil {
			return *resp, nil
		}
	}
	return Response{}, ErrNotImplemented
}

func (p pipeline[E]) names() []string {
	out := make([]string, len(p))
	for i, s := range p {
		out[i] = s.name
	}
	return out
}

func persistStep[E any](o SingleObject[E]) step[E] {
	return step[E]{
		name: StepPersist,
		run: func(req *Request, form Form[E]) (*Response, error) {
			return nil, o.persist(req, form)
		},
	}
}

// notifyAndRedirectStep resolves the success URL before emitting the
// message, so a resolution failure leaves no success flash behind.
func notifyAndRedirectStep[E any](v *FormView[E]) step[E] {
	return step[E]{
		name: StepNotifyAndRedirect,
		run: func(req *Request, _ Form[E]) (*Response, error) {
			url, err := v.SuccessURL()
			if err != nil {
				return nil, err
			}
			if v.message != "" {
				req.Notifier().Notify(FlashSuccess, v.message)
			}
			resp := Redirect(url)
			return &resp, nil
		},
	}
}
