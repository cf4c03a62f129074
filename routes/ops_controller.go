package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/render"
	"github.com/mbolis/quick-form/app"
	"github.com/mbolis/quick-form/log"
)

// Healthz reports whether the document store answers.
func Healthz(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := app.Store.Ping(ctx); err != nil {
			log.Errorf("healthz.store: %s", err)
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, map[string]any{"status": "unavailable"})
			return
		}

		render.JSON(w, r, map[string]any{"status": "ok"})
	}
}
