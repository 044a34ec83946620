// internal/app/features/dashboard/routes.go
package dashboard

import (
	"github.com/dalemusser/learnhub/internal/app/system/auth"
	"github.com/dalemusser/learnhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes wires the dashboard feature (typically at /api/dashboard).
//
// GET / picks the view for the caller's role; the role paths can also be
// requested directly. Admins may read every view.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Get("/", h.ServeDashboard)
	})
	r.With(sm.RequireRole(models.RoleAdmin)).Get("/admin", h.ServeAdmin)
	r.With(sm.RequireRole(models.RoleCreator, models.RoleAdmin)).Get("/creator", h.ServeCreator)
	r.With(sm.RequireRole(models.RoleMentor, models.RoleAdmin)).Get("/mentor", h.ServeMentor)
	r.With(sm.RequireRole(models.RoleStudent, models.RoleAdmin)).Get("/student", h.ServeStudent)

	return r
}
