package contacts

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rolodex-app/rolodex/internal/auth"
)

// newContactsRouter mounts the handler behind a middleware that injects a
// fixed user, standing in for auth.Middleware.
func newContactsRouter(t *testing.T, userID int64) chi.Router {
	t.Helper()
	handler := NewHandler(nil, newTestService(newFakeRepo(), time.Now()))

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := auth.ContextWithUser(req.Context(), &auth.User{ID: userID, Email: "owner@example.com"})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	handler.MountRoutes(r)
	return r
}

func do(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	return res
}

const janeJSON = `{"firstname":"Jane","lastname":"Doe","email":"jane@example.com","phone":"+1 555 0100","birthday":"1990-06-15"}`

func TestCreateContactEndpoint(t *testing.T) {
	router := newContactsRouter(t, 1)

	res := do(t, router, http.MethodPost, "/contacts/", janeJSON)
	require.Equal(t, http.StatusCreated, res.Code)

	var created ContactResponse
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &created))
	assert.Equal(t, "Jane", created.FirstName)
	assert.Equal(t, "1990-06-15", created.Birthday)
	assert.NotZero(t, created.ID)
}

func TestCreateContactValidation(t *testing.T) {
	router := newContactsRouter(t, 1)

	res := do(t, router, http.MethodPost, "/contacts/", `{"firstname":"Jane"}`)
	assert.Equal(t, http.StatusBadRequest, res.Code)

	res = do(t, router, http.MethodPost, "/contacts/",
		`{"firstname":"Jane","lastname":"Doe","email":"jane@example.com","phone":"+1 555 0100","birthday":"15.06.1990"}`)
	assert.Equal(t, http.StatusBadRequest, res.Code)

	res = do(t, router, http.MethodPost, "/contacts/", `not json`)
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestGetUpdateDeleteContactEndpoints(t *testing.T) {
	router := newContactsRouter(t, 1)

	res := do(t, router, http.MethodPost, "/contacts/", janeJSON)
	require.Equal(t, http.StatusCreated, res.Code)

	res = do(t, router, http.MethodGet, "/contacts/1", "")
	require.Equal(t, http.StatusOK, res.Code)

	res = do(t, router, http.MethodPut, "/contacts/1",
		`{"firstname":"Janet","lastname":"Doe","email":"janet@example.com","phone":"+1 555 0100","birthday":"1990-06-15"}`)
	require.Equal(t, http.StatusOK, res.Code)
	var updated ContactResponse
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &updated))
	assert.Equal(t, "Janet", updated.FirstName)

	res = do(t, router, http.MethodDelete, "/contacts/1", "")
	require.Equal(t, http.StatusOK, res.Code)
	var deleted ContactResponse
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &deleted))
	assert.Equal(t, "Janet", deleted.FirstName)

	res = do(t, router, http.MethodGet, "/contacts/1", "")
	assert.Equal(t, http.StatusNotFound, res.Code)
}

func TestContactNotFoundAndBadID(t *testing.T) {
	router := newContactsRouter(t, 1)

	res := do(t, router, http.MethodGet, "/contacts/42", "")
	assert.Equal(t, http.StatusNotFound, res.Code)

	res = do(t, router, http.MethodDelete, "/contacts/42", "")
	assert.Equal(t, http.StatusNotFound, res.Code)

	res = do(t, router, http.MethodGet, "/contacts/abc", "")
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestListContactsEndpoint(t *testing.T) {
	router := newContactsRouter(t, 1)

	for i := 0; i < 3; i++ {
		res := do(t, router, http.MethodPost, "/contacts/", janeJSON)
		require.Equal(t, http.StatusCreated, res.Code)
	}

	res := do(t, router, http.MethodGet, "/contacts/?limit=2", "")
	require.Equal(t, http.StatusOK, res.Code)

	var list ListResponse
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &list))
	assert.Equal(t, 3, list.Total)
	assert.Len(t, list.Contacts, 2)

	// The legacy alias serves the same listing.
	res = do(t, router, http.MethodGet, "/user/contacts/", "")
	require.Equal(t, http.StatusOK, res.Code)
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &list))
	assert.Len(t, list.Contacts, 3)
}

func TestUpcomingBirthdaysEndpoint(t *testing.T) {
	repo := newFakeRepo()
	now := time.Date(2024, time.December, 29, 12, 0, 0, 0, time.UTC)
	handler := NewHandler(nil, newTestService(repo, now))

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := auth.ContextWithUser(req.Context(), &auth.User{ID: 1})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	handler.MountRoutes(r)

	res := do(t, r, http.MethodPost, "/contacts/",
		`{"firstname":"Amy","lastname":"New","email":"amy@example.com","phone":"+1 555 0101","birthday":"1992-01-02"}`)
	require.Equal(t, http.StatusCreated, res.Code)
	res = do(t, r, http.MethodPost, "/contacts/",
		`{"firstname":"Bob","lastname":"Far","email":"bob@example.com","phone":"+1 555 0102","birthday":"1992-03-15"}`)
	require.Equal(t, http.StatusCreated, res.Code)

	res = do(t, r, http.MethodGet, "/upcoming_birthdays/", "")
	require.Equal(t, http.StatusOK, res.Code)

	var list []ContactResponse
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Amy", list[0].FirstName)
}
