// internal/app/features/courses/routes.go
package courses

import (
	"github.com/dalemusser/learnhub/internal/app/system/auth"
	"github.com/dalemusser/learnhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the course endpoints (typically at /api/courses).
//
// The catalog and course detail are public. Authoring requires a creator
// or admin; ownership is checked per course in the handlers.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Get("/{id}", h.ServeGet)

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireRole(models.RoleCreator, models.RoleAdmin))

		pr.Post("/", h.HandleCreate)
		pr.Put("/{id}", h.HandleUpdate)
		pr.Delete("/{id}", h.HandleDelete)
		pr.Post("/{id}/publish", h.HandlePublish)
		pr.Post("/{id}/thumbnail", h.HandleThumbnail)
		pr.Post("/{id}/resources", h.HandleAddResource)
	})

	return r
}
