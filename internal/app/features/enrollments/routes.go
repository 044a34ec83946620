// internal/app/features/enrollments/routes.go
package enrollments

import (
	"github.com/dalemusser/learnhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the enrollment endpoints (typically at /api/enrollments).
// Every route needs a signed-in user; per-enrollment access is checked in
// the handlers.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/", h.ServeList)
		pr.Post("/", h.HandleEnroll)
		pr.Delete("/{id}", h.HandleUnenroll)
		pr.Patch("/{id}/progress", h.HandleProgress)
		pr.Post("/{id}/lessons", h.HandleCompleteLesson)
	})

	return r
}
