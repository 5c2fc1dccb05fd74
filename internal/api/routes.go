package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RegisterRoutes sets up all the API endpoints and middleware for the application.
func (s *Server) RegisterRoutes(r *chi.Mux) {
	// --- Global Middleware (Applied to ALL routes) ---
	// These are safe and useful for both REST API and WebSocket upgrade requests.
	r.Use(middleware.Logger)    // Logs incoming requests
	r.Use(middleware.Recoverer) // Recovers from panics and returns a 500 error

	// --- REST API Group with CORS ---
	// We create a new routing group specifically for our versioned REST API.
	// All routes defined within this group will be prefixed with "/api/v1".
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			// In production, you would tighten this to your frontend's domain.
			AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000", s.config.FrontendURL},
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300, // How long the browser can cache preflight results
		}))

		// Auth routes
		r.Post("/users/register", s.handleRegisterUser)
		r.Post("/users/login", s.handleLoginUser)
		r.Get("/auth/google/login", s.handleGoogleLogin)
		r.Get("/auth/google/callback", s.handleGoogleCallback)

		// --- Authenticated REST Routes ---
		// This nested group uses our custom authMiddleware. Every route defined
		// inside this group will first be processed by the middleware, which
		// checks for a valid JWT.
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			// This is an authenticated endpoint for establishing the notification stream.
			r.Get("/notifications/stream", s.handleSSE)

			// User Routes
			r.Get("/users/me", s.handleGetMyProfile)
			r.Patch("/users/me", s.handleUpdateMyProfile)
			r.Delete("/users/me", s.handleDeleteMyProfile)

			// Track Routes
			r.Post("/tracks", s.handleTrackUpload)
			r.Get("/tracks", s.handleListTracks)
			r.Get("/tracks/{trackID}", s.handleGetTrack)
			r.Delete("/tracks/{trackID}", s.handleDeleteTrack)
			r.Get("/tracks/{trackID}/points", s.handleGetTrackPoints)
			r.Get("/tracks/{trackID}/series", s.handleGetTrackSeries)

			// Live ingestion over WebSocket. Authentication uses the same
			// middleware; browsers pass the token as a query parameter since
			// the WebSocket API cannot set custom headers.
			r.Get("/live", s.handleLiveSession)
		})
	})
}
