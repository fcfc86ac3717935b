// Package genview provides generic, reusable views for server-rendered CRUD
// pages: list a collection, render a form, create, edit and delete one
// entity, and redirect.
//
// Views are configured once and dispatched per request. Each view kind runs
// a fixed algorithm over three collaborators supplied by the application:
//   - Store[E]: Get, All, Save and Delete for entities of type E
//   - TemplateRenderer: turns a template name and a *Context into bytes
//   - FormType[E]: builds empty or pre-populated forms that validate a
//     payload and copy their values onto an entity
//
// # View Kinds
//
//	TemplateView   GET: render a template with the path parameters
//	ListView[E]    GET: render with every entity under "object_list"
//	FormView[E]    GET renders the form, POST validates it
//	CreateView[E]  valid POST constructs, saves and redirects
//	UpdateView[E]  loads by "pk" or "id", valid POST saves and redirects
//	DeleteView[E]  loads, deletes and redirects
//	RedirectView   always redirects
//
// Constructors validate the static configuration and report every missing
// piece at once as *ConfigError values joined together:
//
//	edit, err := genview.NewUpdateView(genview.EditConfig[*Todo]{
//	    FormConfig: genview.FormConfig[*Todo]{
//	        Name:       "todo_edit",
//	        Template:   "todo_form.html",
//	        Renderer:   renderer,
//	        Form:       todoForm,
//	        SuccessURL: "todo_list",
//	        URLs:       reg,
//	    },
//	    Store: todos,
//	    New:   func() *Todo { return &Todo{} },
//	})
//
// # Dispatch State
//
// A view value holds configuration only. The entity an edit or delete view
// works on lives on the *Request for the duration of one dispatch, so a view
// can serve concurrent requests.
//
// A lookup that finds nothing yields a 404 response. Store faults and
// renderer failures are returned as errors and never turned into success.
//
// # Registration and Routing
//
// Views are registered with a Registry, which routes by http.ServeMux
// pattern and resolves route names back to URLs:
//
//	reg := genview.NewRegistry(genview.WithKey(key), genview.WithLogger(log))
//	reg.Add("todo_list", "/todos", list)
//	reg.Add("todo_edit", "/todos/{pk}/edit", edit)
//	http.ListenAndServe(":8080", reg.Handler())
//
// Success messages are flashed through the request's Notifier. Across a
// redirect they travel in a signed (optionally encrypted) cookie and reach
// the next page's templates under "messages". HTMX requests are redirected
// with HX-Redirect and receive rendered flashes as out-of-band toasts.
package genview
