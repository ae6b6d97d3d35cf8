package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/phrazzld/pagepace/internal/api"
	apiMiddleware "github.com/phrazzld/pagepace/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))
	if origins := app.config.Server.AllowedOrigins; len(origins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   origins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Retry-After"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	authHandler := api.NewAuthHandler(app.jwtService, app.config.Auth)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)
	goalHandler := api.NewGoalHandler(app.goalService, app.logger)

	r.Route("/api", func(r chi.Router) {
		// Public endpoints are limited per client IP.
		r.With(app.rateLimiter.Middleware).Post("/auth/refresh", authHandler.RefreshToken)

		// Protected routes, limited per user.
		r.Route("/users/{userID}", func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Use(app.rateLimiter.Middleware)
			r.Use(apiMiddleware.RequireOwner("userID"))
			goalHandler.RegisterRoutes(r)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
