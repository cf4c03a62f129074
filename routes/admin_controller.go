package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/mbolis/quick-form/app"
	"github.com/mbolis/quick-form/httpx"
	"github.com/mbolis/quick-form/log"
	"github.com/mbolis/quick-form/model"
	"github.com/mbolis/quick-form/routes/middlewares"
)

func CreateForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form := model.FormDefinition{}
		err := render.DecodeJSON(r.Body, &form)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		form.ID = ""
		form.OwnerID = middlewares.Owner(r)
		err = app.Forms.Save(r.Context(), &form)
		if err != nil {
			writeError(w, r, "create_form", nil, err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, form)
	}
}

func ListForms(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		forms, err := app.Forms.ListByOwner(r.Context(), middlewares.Owner(r))
		if err != nil {
			writeError(w, r, "list_forms", nil, err)
			return
		}
		if forms == nil {
			forms = []model.FormDefinition{}
		}

		render.JSON(w, r, map[string]any{
			"forms": forms,
		})
	}
}

func GetForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formId := chi.URLParam(r, "id")

		form, err := app.Forms.GetOwned(r.Context(), formId, middlewares.Owner(r))
		if err != nil {
			writeError(w, r, "get_form", formId, err)
			return
		}

		render.JSON(w, r, form)
	}
}

// UpdateForm replaces the whole form definition. Concurrent updates are
// last-write-wins.
func UpdateForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formId := chi.URLParam(r, "id")

		form := model.FormDefinition{}
		err := render.DecodeJSON(r.Body, &form)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		form.ID = formId
		form.OwnerID = middlewares.Owner(r)
		err = app.Forms.Save(r.Context(), &form)
		if err != nil {
			writeError(w, r, "update_form", formId, err)
			return
		}

		render.JSON(w, r, form)
	}
}

func DeleteForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formId := chi.URLParam(r, "id")

		err := app.Forms.Delete(r.Context(), formId, middlewares.Owner(r))
		if err != nil {
			writeError(w, r, "delete_form", formId, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func DuplicateForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formId := chi.URLParam(r, "id")

		form, err := app.Forms.Duplicate(r.Context(), formId, middlewares.Owner(r))
		if err != nil {
			writeError(w, r, "duplicate_form", formId, err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, form)
	}
}

type addFieldRequest struct {
	Variant string `json:"variant"`
	Label   string `json:"label"`
}

func AddField(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formId := chi.URLParam(r, "id")

		req := addFieldRequest{}
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		variant, err := model.ParseVariant(req.Variant)
		if err != nil {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "request.variant", "unknown variant %q", req.Variant)
			return
		}

		form, field, err := app.Forms.AddField(r.Context(), formId, middlewares.Owner(r), variant, req.Label)
		if err != nil {
			writeError(w, r, "add_field", formId, err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"form":  form,
			"field": field,
		})
	}
}

func PatchField(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formId, fieldId := chi.URLParam(r, "id"), chi.URLParam(r, "fieldId")

		patch := model.FieldPatch{}
		err := render.DecodeJSON(r.Body, &patch)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		form, err := app.Forms.PatchField(r.Context(), formId, middlewares.Owner(r), fieldId, patch)
		if err != nil {
			writeError(w, r, "patch_field", fieldId, err)
			return
		}

		render.JSON(w, r, form)
	}
}

func RemoveField(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formId, fieldId := chi.URLParam(r, "id"), chi.URLParam(r, "fieldId")

		form, err := app.Forms.RemoveField(r.Context(), formId, middlewares.Owner(r), fieldId)
		if err != nil {
			writeError(w, r, "remove_field", fieldId, err)
			return
		}

		render.JSON(w, r, form)
	}
}

type moveFieldRequest struct {
	Direction string `json:"direction"`
}

func MoveField(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formId, fieldId := chi.URLParam(r, "id"), chi.URLParam(r, "fieldId")

		req := moveFieldRequest{}
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		dir, err := model.ParseDirection(req.Direction)
		if err != nil {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "request.direction", "unknown direction %q", req.Direction)
			return
		}

		form, err := app.Forms.MoveField(r.Context(), formId, middlewares.Owner(r), fieldId, dir)
		if err != nil {
			writeError(w, r, "move_field", fieldId, err)
			return
		}

		render.JSON(w, r, form)
	}
}

func ListSubmissions(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formId := chi.URLParam(r, "id")

		submissions, err := app.Submissions.ListOwned(r.Context(), formId, middlewares.Owner(r))
		if err != nil {
			writeError(w, r, "list_submissions", formId, err)
			return
		}
		if submissions == nil {
			submissions = []model.SubmissionRecord{}
		}

		render.JSON(w, r, map[string]any{
			"submissions": submissions,
		})
	}
}

// GetResponses renders every submission of a form as one row per
// submission and one column per current field.
func GetResponses(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formId := chi.URLParam(r, "id")

		table, err := app.Submissions.Aggregate(r.Context(), formId, middlewares.Owner(r))
		if err != nil {
			writeError(w, r, "get_responses", formId, err)
			return
		}

		render.JSON(w, r, table)
	}
}

func DeleteSubmission(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		submissionId := chi.URLParam(r, "id")

		err := app.Submissions.Delete(r.Context(), submissionId, middlewares.Owner(r))
		if err != nil {
			writeError(w, r, "delete_submission", submissionId, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
