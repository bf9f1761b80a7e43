package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/lumapix/photos-api/app"
	"github.com/lumapix/photos-api/utils"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.CORS.Origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health endpoints stay open
		r.Get("/health", deps.HealthHandler.HandleHealth)
		r.Get("/ready", deps.HealthHandler.HandleReadiness)

		// Photo CRUD: reads are open to any authenticated user,
		// writes are owner-gated in the service layer
		r.Route("/photos", func(r chi.Router) {
			r.Use(deps.AuthMiddleware.RequireAuth)
			r.Get("/", deps.PhotoHandler.HandleListPhotos)
			r.Post("/", deps.PhotoHandler.HandleCreatePhoto)
			r.Get("/{id}", deps.PhotoHandler.HandleGetPhoto)
			r.Put("/{id}", deps.PhotoHandler.HandleUpdatePhoto)
			r.Patch("/{id}", deps.PhotoHandler.HandlePatchPhoto)
			r.Delete("/{id}", deps.PhotoHandler.HandleDeletePhoto)
		})

		// Current user
		r.Route("/users", func(r chi.Router) {
			r.Use(deps.AuthMiddleware.RequireAuth)
			r.Get("/me", deps.UserHandler.HandleCurrentUser)
		})
	})

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteNotFound(w, "Endpoint not found")
	})

	return r
}
