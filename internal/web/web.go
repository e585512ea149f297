package web

import (
	"embed"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ms-users/internal/utils"
)

//go:embed static/index.html static/app.js
var assets embed.FS

type ConfigResponse struct {
	APIURL string `json:"apiUrl"`
}

type Handler struct {
	APIURL string
}

func NewHandler(apiURL string) *Handler {
	return &Handler{APIURL: apiURL}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", serveAsset("static/index.html", "text/html; charset=utf-8"))
	r.Get("/app.js", serveAsset("static/app.js", "text/javascript; charset=utf-8"))
	r.Get("/config", h.Config)
}

func (h *Handler) Config(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, ConfigResponse{APIURL: h.APIURL})
}

func serveAsset(name, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := assets.ReadFile(name)
		if err != nil {
			utils.WriteError(w, http.StatusNotFound, "Route not found")
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusOK)
		w.Write(body)
	}
}
