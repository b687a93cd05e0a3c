package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// healthCheckTimeout bounds each dependency check of GET /health.
const healthCheckTimeout = 2 * time.Second

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		// Anonymous
		r.Post("/users", s.handleRegister)
		r.Get("/users/confirm", s.handleConfirm)
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/reset-password", s.handleResetPassword)
		r.Get("/views/{name}", s.handleOpenView)
		r.Get("/context", s.handleContext)

		// Logged in
		r.Group(func(r chi.Router) {
			r.Use(s.sessionMiddleware)

			r.Post("/auth/logout", s.handleLogout)
			r.Put("/auth/password", s.handleChangePassword)
			r.Get("/me", s.handleProfile)

			r.With(s.requireAdmin).Get("/users", s.handleListUsers)

			r.Route("/projects", func(r chi.Router) {
				r.Get("/", s.handleListProjects)
				r.Post("/", s.handleCreateProject)
				r.Get("/check", s.handleCheckProjects)

				r.Route("/{name}", func(r chi.Router) {
					r.Get("/", s.handleGetProject)
					r.Delete("/", s.handleDeleteProject)
					r.Put("/active", s.handleSetActiveProject)
					r.Get("/views", s.handleListViews)
				})
			})

			r.Post("/views", s.handleCreateView)
			r.Delete("/views/{name}", s.handleDeleteView)
		})
	})

	return r
}

// handleHealth runs the registered dependency checks.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string, len(s.health))
	healthy := true
	for name, check := range s.health {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		err := check(ctx)
		cancel()
		if err != nil {
			healthy = false
			checks[name] = err.Error()
			continue
		}
		checks[name] = "ok"
	}

	data := map[string]any{"version": s.version, "checks": checks}
	if !healthy {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "error", "message": "unhealthy", "data": data,
		})
		return
	}
	writeOK(w, "healthy", data)
}
