package server

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"ms-users/internal/logger"
	"ms-users/internal/users/user_api"
	"ms-users/internal/utils"
	"ms-users/internal/web"
)

type APIIndex struct {
	Message   string   `json:"message"`
	Endpoints []string `json:"endpoints"`
}

var apiIndex = APIIndex{
	Message: "User service API",
	Endpoints: []string{
		"GET /api/users - Get all users",
		"GET /api/users/:id - Get user by ID",
		"POST /api/users - Create user (body: {name, email})",
		"PUT /api/users/:id - Update user (body: {name, email})",
		"DELETE /api/users/:id - Delete user",
		"GET /api/users/:id/qr - QR code for the user's email",
	},
}

// NewRouter serves the page, its config, and the user API at both /users and
// /api/users. Unknown paths and methods answer 404 {"error":"Route not found"}.
func NewRouter(users *user_api.Handler, pages *web.Handler, log *logger.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(log))
	r.Use(Recoverer(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))

	r.NotFound(routeNotFound)
	r.MethodNotAllowed(routeNotFound)

	pages.RegisterRoutes(r)
	users.RegisterRoutes(r)

	r.Get("/api", func(w http.ResponseWriter, r *http.Request) {
		utils.WriteJSON(w, http.StatusOK, apiIndex)
	})
	users.RegisterRoutesAt(r, "/api")

	return r
}

// Recoverer turns a handler panic into a JSON 500 and logs the stack.
func Recoverer(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.Error("HTTP", fmt.Sprintf("panic serving %s %s: %v\n%s", r.Method, r.URL.Path, rec, debug.Stack()))
				utils.WriteFailure(w, "Internal server error", fmt.Errorf("%v", rec))
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func routeNotFound(w http.ResponseWriter, r *http.Request) {
	utils.WriteError(w, http.StatusNotFound, "Route not found")
}

// RequestLogger logs one line per request with its final status and latency.
func RequestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}
				log.LogAPI(r.Method, r.URL.Path, status, time.Since(start))
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
