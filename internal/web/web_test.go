package web

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

func newTestRouter() http.Handler {
	r := chi.NewRouter()
	NewHandler("https://users.example.com").RegisterRoutes(r)
	return r
}

func TestServesIndexPage(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), `id="createUserForm"`)
	assert.Contains(t, rec.Body.String(), `src="/app.js"`)
}

func TestServesClientScriptUnchanged(t *testing.T) {
	want, err := assets.ReadFile("static/app.js")
	assert.NoError(t, err)

	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/app.js", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "javascript")
	assert.Equal(t, string(want), rec.Body.String())
}

func TestConfigAdvertisesAPIURL(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/config", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"apiUrl":"https://users.example.com"}`, rec.Body.String())
}
