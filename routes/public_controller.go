package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/mbolis/quick-form/app"
	"github.com/mbolis/quick-form/codec"
	"github.com/mbolis/quick-form/httpx"
	"github.com/mbolis/quick-form/log"
	"github.com/mbolis/quick-form/model"
)

// publicForm is what a respondent sees of a form.
type publicForm struct {
	ID          string                  `json:"id"`
	Title       string                  `json:"title"`
	Description string                  `json:"description"`
	Fields      []model.FieldDefinition `json:"fields"`
}

func PublicGetForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formId := chi.URLParam(r, "id")

		form, err := app.Forms.Get(r.Context(), formId)
		if err != nil {
			writeError(w, r, "get_form", formId, err)
			return
		}

		render.JSON(w, r, publicForm{
			ID:          form.ID,
			Title:       form.Title,
			Description: form.Description,
			Fields:      form.Fields,
		})
	}
}

type submitRequest struct {
	Values map[string]codec.RawValue `json:"values"`
}

func PublicSubmitForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formId := chi.URLParam(r, "id")

		req := submitRequest{}
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		rec, err := app.Submissions.Submit(r.Context(), formId, req.Values)
		if err != nil {
			writeError(w, r, "submit_form", formId, err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"id": rec.ID,
		})
	}
}
