package routes

import (
	"errors"
	"net/http"

	"github.com/mbolis/quick-form/codec"
	"github.com/mbolis/quick-form/httpx"
	"github.com/mbolis/quick-form/model"
	"github.com/mbolis/quick-form/service"
)

type errorBody struct {
	Error   string `json:"error"`
	FieldID string `json:"fieldId,omitempty"`
}

type fieldErrorsBody struct {
	Errors []*codec.InvalidFieldValue `json:"errors"`
}

// writeError answers with the status matching a service error, logging it
// under code.
func writeError(w http.ResponseWriter, r *http.Request, code string, id any, err error) {
	var fieldErr *model.FieldError
	switch {
	case errors.Is(err, service.ErrFormNotFound),
		errors.Is(err, service.ErrSubmissionNotFound),
		errors.Is(err, model.ErrFieldNotFound):
		httpx.LogNotFound(w, code, id)

	case len(codec.FieldErrors(err)) > 0:
		httpx.LogStatusJSON(w, r, http.StatusUnprocessableEntity, code+".rejected", fieldErrorsBody{codec.FieldErrors(err)})

	case errors.As(err, &fieldErr):
		httpx.LogStatusJSON(w, r, http.StatusBadRequest, code+".invalid", errorBody{fieldErr.Err.Error(), fieldErr.FieldID})

	case errors.Is(err, model.ErrMissingTitle), errors.Is(err, model.ErrUnknownVariant):
		httpx.LogStatusJSON(w, r, http.StatusBadRequest, code+".invalid", errorBody{Error: err.Error()})

	default:
		httpx.LogInternalError(w, code, err)
	}
}
