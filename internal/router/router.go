package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/FACorreiaa/go-user-admin-api/internal/api/auth"
	"github.com/FACorreiaa/go-user-admin-api/internal/api/user"
)

// Config contains dependencies needed for the router setup.
type Config struct {
	AuthHandler            auth.AuthHandler
	UserHandler            user.Handler
	AuthenticateMiddleware func(http.Handler) http.Handler
}

// SetupRouter initializes and configures the main application router.
// Server-wide middleware (logger, requestID, recoverer) are expected to be
// applied before mounting this router in main.go.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Liveness endpoint
	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	})

	// --- Public routes ---
	r.Group(func(r chi.Router) {
		r.Post("/login", cfg.AuthHandler.Login)
	})

	// --- Protected routes ---
	r.Group(func(r chi.Router) {
		r.Use(cfg.AuthenticateMiddleware)

		r.Post("/register", cfg.UserHandler.Register)
		r.Get("/users", cfg.UserHandler.ListUsers)
		r.Get("/users/{id}", cfg.UserHandler.GetUser)
		r.Delete("/users/{id}", cfg.UserHandler.DeleteUser)
	})

	return r
}
