package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mbolis/quick-form/app"
	"github.com/mbolis/quick-form/routes/middlewares"
)

func Wire(app app.App) http.Handler {
	root := chi.NewRouter()
	root.Use(middleware.RequestID, middleware.Logger, middleware.Recoverer)

	root.Get("/healthz", Healthz(app))
	root.Handle("/metrics", app.Metrics.Handler())

	root.Mount("/api", apiRouter(app))

	root.
		With(middlewares.CookieAuth(app.BearerServer), middlewares.Admin(app.TokenSecret)).
		Mount("/admin", servePrivateFiles("/admin"))
	root.Mount("/", servePublicFiles())

	return root
}

func apiRouter(app app.App) http.Handler {
	api := chi.NewRouter()

	api.Get("/forms/{id}", PublicGetForm(app))
	api.Post("/forms/{id}/submissions", PublicSubmitForm(app))

	api.Route("/admin", func(r chi.Router) {
		r.Use(middlewares.Admin(app.TokenSecret))
		adminRoutes(r, app)
	})

	api.Post("/login", Login(app))
	api.Post("/refresh", Refresh(app))

	return api
}

// adminRoutes are the author's endpoints; they expect the owner in the
// request context.
func adminRoutes(r chi.Router, app app.App) {
	// CRUD form
	r.Post("/forms", CreateForm(app))
	r.Get("/forms", ListForms(app))
	r.Get("/forms/{id}", GetForm(app))
	r.Put("/forms/{id}", UpdateForm(app))
	r.Delete("/forms/{id}", DeleteForm(app))
	r.Post("/forms/{id}/duplicate", DuplicateForm(app))

	// field editing
	r.Post("/forms/{id}/fields", AddField(app))
	r.Patch("/forms/{id}/fields/{fieldId}", PatchField(app))
	r.Delete("/forms/{id}/fields/{fieldId}", RemoveField(app))
	r.Post("/forms/{id}/fields/{fieldId}/move", MoveField(app))

	r.Get("/forms/{id}/submissions", ListSubmissions(app))
	r.Get("/forms/{id}/responses", GetResponses(app))
	r.Delete("/submissions/{id}", DeleteSubmission(app))
}

func servePublicFiles() http.Handler {
	return http.FileServer(http.Dir("public"))
}

func servePrivateFiles(path string) http.Handler {
	return http.StripPrefix(path, http.FileServer(http.Dir("private")))
}
