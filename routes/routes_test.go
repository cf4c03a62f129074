package routes

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mbolis/quick-form/app"
	"github.com/mbolis/quick-form/config"
	"github.com/mbolis/quick-form/database"
	"github.com/mbolis/quick-form/httpx"
	"github.com/mbolis/quick-form/model"
	"github.com/mbolis/quick-form/routes/middlewares"
	"github.com/mbolis/quick-form/store/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type server struct {
	t       *testing.T
	handler http.Handler
}

// newServer serves the public and admin API, authenticating every admin
// request as owner.
func newServer(t *testing.T, owner string, a app.App) *server {
	r := chi.NewRouter()
	r.Get("/api/forms/{id}", PublicGetForm(a))
	r.Post("/api/forms/{id}/submissions", PublicSubmitForm(a))
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				next.ServeHTTP(w, r.WithContext(middlewares.WithOwner(r.Context(), owner)))
			})
		})
		adminRoutes(r, a)
	})
	return &server{t, r}
}

func newApp() app.App {
	return app.New(config.Config{TokenSecret: "secret"}, nil, memstore.New(), nil)
}

func (s *server) do(method, path, body string) *httptest.ResponseRecorder {
	s.t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("content-type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

// createFeedback builds a form with a required short answer and a
// Fast/Cheap/Reliable multi_choice through the API.
func (s *server) createFeedback() (formID, textID, choiceID string) {
	t := s.t
	rec := s.do("POST", "/api/admin/forms", `{"title":"Feedback"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	form := decode[model.FormDefinition](t, rec)

	type added struct {
		Field model.FieldDefinition `json:"field"`
	}
	rec = s.do("POST", "/api/admin/forms/"+form.ID+"/fields", `{"variant":"short_text","label":"Comment"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	text := decode[added](t, rec).Field

	rec = s.do("POST", "/api/admin/forms/"+form.ID+"/fields", `{"variant":"checkbox","label":"Why?"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	choice := decode[added](t, rec).Field
	assert.Equal(t, model.MultiChoice, choice.Variant)

	rec = s.do("PATCH", "/api/admin/forms/"+form.ID+"/fields/"+text.ID, `{"required":true}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = s.do("PATCH", "/api/admin/forms/"+form.ID+"/fields/"+choice.ID, `{"options":["Fast","Cheap","Reliable"]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	return form.ID, text.ID, choice.ID
}

func TestSubmitAndAggregate(t *testing.T) {
	s := newServer(t, "alice", newApp())
	formID, textID, choiceID := s.createFeedback()

	rec := s.do("GET", "/api/forms/"+formID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "ownerId")
	public := decode[publicForm](t, rec)
	assert.Len(t, public.Fields, 2)

	rec = s.do("POST", "/api/forms/"+formID+"/submissions",
		fmt.Sprintf(`{"values":{%q:"Great",%q:["Fast","Cheap"]}}`, textID, choiceID))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotEmpty(t, decode[map[string]string](t, rec)["id"])

	rec = s.do("GET", "/api/admin/forms/"+formID+"/responses", "")
	require.Equal(t, http.StatusOK, rec.Code)
	table := decode[struct {
		Columns []struct {
			Label string `json:"label"`
		} `json:"columns"`
		Rows []struct {
			Cells []string `json:"cells"`
		} `json:"rows"`
	}](t, rec)
	require.Len(t, table.Columns, 3)
	assert.Equal(t, "Submitted at", table.Columns[2].Label)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "Great", table.Rows[0].Cells[0])
	assert.Equal(t, "Fast, Cheap", table.Rows[0].Cells[1])
}

func TestSubmitRejected(t *testing.T) {
	s := newServer(t, "alice", newApp())
	formID, textID, choiceID := s.createFeedback()

	rec := s.do("POST", "/api/forms/"+formID+"/submissions",
		fmt.Sprintf(`{"values":{%q:"",%q:["Fast","Slow"]}}`, textID, choiceID))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())

	body := decode[fieldErrorsBody](t, rec)
	require.Len(t, body.Errors, 2)
	reasons := map[string]string{}
	for _, e := range body.Errors {
		reasons[e.FieldID] = string(e.Reason)
	}
	assert.Equal(t, "required_missing", reasons[textID])
	assert.Equal(t, "option_not_allowed", reasons[choiceID])

	rec = s.do("GET", "/api/admin/forms/"+formID+"/submissions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"submissions":[]}`, rec.Body.String())
}

func TestSubmitMalformed(t *testing.T) {
	s := newServer(t, "alice", newApp())
	formID, _, _ := s.createFeedback()

	rec := s.do("POST", "/api/forms/"+formID+"/submissions", `{"values":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do("POST", "/api/forms/nope/submissions", `{"values":{}}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do("GET", "/api/forms/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFormValidation(t *testing.T) {
	s := newServer(t, "alice", newApp())

	rec := s.do("POST", "/api/admin/forms", `{"title":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do("POST", "/api/admin/forms",
		`{"title":"T","fields":[{"id":"a","variant":"single_select","label":"x","options":[]}]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[errorBody](t, rec)
	assert.Equal(t, "a", body.FieldID)

	formID, textID, _ := s.createFeedback()
	rec = s.do("POST", "/api/admin/forms/"+formID+"/fields", `{"variant":"slider"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = s.do("POST", "/api/admin/forms/"+formID+"/fields/"+textID+"/move", `{"direction":"left"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = s.do("PATCH", "/api/admin/forms/"+formID+"/fields/missing", `{"label":"x"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateFormWithoutFieldIDs(t *testing.T) {
	s := newServer(t, "alice", newApp())

	rec := s.do("POST", "/api/admin/forms",
		`{"title":"Feedback","fields":[{"variant":"short_text","label":"Comment"}]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	form := decode[model.FormDefinition](t, rec)
	require.Len(t, form.Fields, 1)
	assert.NotEmpty(t, form.Fields[0].ID)
}

func TestFieldEditing(t *testing.T) {
	s := newServer(t, "alice", newApp())
	formID, textID, choiceID := s.createFeedback()

	rec := s.do("POST", "/api/admin/forms/"+formID+"/fields/"+choiceID+"/move", `{"direction":"up"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	form := decode[model.FormDefinition](t, rec)
	assert.Equal(t, choiceID, form.Fields[0].ID)
	assert.Equal(t, textID, form.Fields[1].ID)

	rec = s.do("DELETE", "/api/admin/forms/"+formID+"/fields/"+choiceID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	form = decode[model.FormDefinition](t, rec)
	require.Len(t, form.Fields, 1)
	assert.Equal(t, textID, form.Fields[0].ID)
}

func TestFormLifecycle(t *testing.T) {
	s := newServer(t, "alice", newApp())
	formID, textID, _ := s.createFeedback()

	rec := s.do("GET", "/api/admin/forms", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[struct {
		Forms []model.FormDefinition `json:"forms"`
	}](t, rec)
	require.Len(t, list.Forms, 1)

	rec = s.do("PUT", "/api/admin/forms/"+formID,
		fmt.Sprintf(`{"title":"Renamed","fields":[{"id":%q,"variant":"paragraph","label":"Tell us"}]}`, textID))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = s.do("GET", "/api/admin/forms/"+formID, "")
	form := decode[model.FormDefinition](t, rec)
	assert.Equal(t, "Renamed", form.Title)
	assert.Equal(t, "alice", form.OwnerID)
	require.Len(t, form.Fields, 1)
	assert.Equal(t, model.Paragraph, form.Fields[0].Variant)

	rec = s.do("POST", "/api/admin/forms/"+formID+"/duplicate", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	cp := decode[model.FormDefinition](t, rec)
	assert.Equal(t, "Renamed (copy)", cp.Title)
	assert.NotEqual(t, formID, cp.ID)

	rec = s.do("DELETE", "/api/admin/forms/"+formID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do("GET", "/api/admin/forms/"+formID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = s.do("DELETE", "/api/admin/forms/"+formID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOwnersAreIsolated(t *testing.T) {
	a := newApp()
	alice := newServer(t, "alice", a)
	mallory := newServer(t, "mallory", a)
	formID, textID, _ := alice.createFeedback()

	rec := alice.do("POST", "/api/forms/"+formID+"/submissions", fmt.Sprintf(`{"values":{%q:"hi"}}`, textID))
	require.Equal(t, http.StatusCreated, rec.Code)
	subID := decode[map[string]string](t, rec)["id"]

	for _, req := range [][2]string{
		{"GET", "/api/admin/forms/" + formID},
		{"DELETE", "/api/admin/forms/" + formID},
		{"POST", "/api/admin/forms/" + formID + "/duplicate"},
		{"GET", "/api/admin/forms/" + formID + "/submissions"},
		{"GET", "/api/admin/forms/" + formID + "/responses"},
		{"DELETE", "/api/admin/submissions/" + subID},
	} {
		rec := mallory.do(req[0], req[1], "")
		assert.Equal(t, http.StatusNotFound, rec.Code, "%s %s", req[0], req[1])
	}

	rec = mallory.do("GET", "/api/admin/forms", "")
	assert.JSONEq(t, `{"forms":[]}`, rec.Body.String())

	rec = alice.do("DELETE", "/api/admin/submissions/"+subID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestHealthzAndMetrics(t *testing.T) {
	a := newApp()
	h := Wire(a)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	a.Metrics.SubmissionAccepted()
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "quickform_submissions_total")
}

func TestAdminRequiresToken(t *testing.T) {
	h := Wire(newApp())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/api/admin/forms", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginThenAdmin(t *testing.T) {
	db, err := database.Open("file:routes_login?mode=memory&cache=shared")
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, httpx.AddUser(db, "alice", "pw"))

	cfg := config.Config{TokenSecret: "secret", TokenTTL: time.Minute}
	a := app.New(cfg, db, memstore.New(), httpx.NewBearerServer(db, cfg.TokenSecret, cfg.TokenTTL))
	h := Wire(a)

	req := httptest.NewRequest("POST", "/api/login", nil)
	req.SetBasicAuth("alice", "wrong")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.NotEqual(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest("POST", "/api/login", nil)
	req.SetBasicAuth("alice", "pw")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	tokens := decode[map[string]any](t, rec)
	access, _ := tokens["access_token"].(string)
	require.NotEmpty(t, access)

	req = httptest.NewRequest("POST", "/api/admin/forms", strings.NewReader(`{"title":"Mine"}`))
	req.Header.Set("authorization", "Bearer "+access)
	req.Header.Set("content-type", "application/json")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "alice", decode[model.FormDefinition](t, rec).OwnerID)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/api/refresh", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
