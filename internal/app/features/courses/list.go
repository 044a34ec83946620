// internal/app/features/courses/list.go
package courses

import (
	"net/http"

	"github.com/dalemusser/learnhub/internal/app/features/shared"
	"github.com/dalemusser/learnhub/internal/app/system/authz"
	"github.com/dalemusser/learnhub/internal/app/system/catalog"
	"github.com/dalemusser/learnhub/internal/app/system/normalize"
	"github.com/dalemusser/learnhub/internal/app/system/respond"
	"github.com/dalemusser/learnhub/internal/app/system/timeouts"
	"github.com/dalemusser/learnhub/internal/domain/models"
	"go.uber.org/zap"
)

// Catalog scopes.
const (
	scopePublished = ""
	scopeMine      = "mine" // creator's own courses, drafts included
	scopeAll       = "all"  // admin: every course
)

type listResponse struct {
	Courses []models.Course `json:"courses"`
	Total   int             `json:"total"`
	Filter  filterEcho      `json:"filter"`
}

type filterEcho struct {
	Category string `json:"category,omitempty"`
	Level    string `json:"level,omitempty"`
	Price    string `json:"price,omitempty"`
	Duration string `json:"duration,omitempty"`
	Sort     string `json:"sort,omitempty"`
	Search   string `json:"q,omitempty"`
}

// ServeList handles GET /api/courses.
//
// The filter and sort are recomputed from the full list on every call:
// category, level, price (free|paid), duration (short|medium|long),
// sort (popular|newest|price_low|price_high) and q (search).
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	f := catalog.ParseFilter(r.URL.Query())
	scope := normalize.Choice(r.URL.Query().Get("scope"))

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "courses.list")
	defer cancel()

	var (
		source []models.Course
		err    error
	)
	switch scope {
	case scopeMine:
		_, _, uid, ok := authz.UserCtx(r)
		if !ok || !(authz.IsCreator(r) || authz.IsAdmin(r)) {
			respond.Forbidden(w, "Only course creators can list their own courses.")
			return
		}
		source, err = h.Courses.ListByCreator(ctx, uid)
	case scopeAll:
		if !authz.IsAdmin(r) {
			respond.Forbidden(w, "Only admins can list every course.")
			return
		}
		source, err = h.Courses.ListAll(ctx)
	case scopePublished:
		source, err = h.published(ctx)
	default:
		respond.BadRequest(w, "Unknown scope.")
		return
	}
	if err != nil {
		respond.ServerError(w, h.Log, "list courses failed", err, zap.String("scope", scope))
		return
	}

	out := catalog.Apply(source, f)
	respond.OK(w, listResponse{
		Courses: out,
		Total:   len(out),
		Filter: filterEcho{
			Category: f.Category,
			Level:    f.Level,
			Price:    f.PriceType,
			Duration: f.Duration,
			Sort:     f.Sort,
			Search:   f.Search,
		},
	})
}

// ServeGet handles GET /api/courses/{id}. Drafts are visible only to
// their creator and admins.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.ParamID(w, r, "id")
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "courses.get")
	defer cancel()

	c, err := h.Courses.GetByID(ctx, id)
	if shared.IsNotFound(err) {
		respond.NotFound(w, "Course not found.")
		return
	}
	if err != nil {
		respond.ServerError(w, h.Log, "load course failed", err, zap.String("course_id", id.Hex()))
		return
	}
	if !c.Published && !authz.CanManageCourse(r, *c) {
		respond.NotFound(w, "Course not found.")
		return
	}
	respond.OK(w, c)
}
