// internal/app/features/auditlog/types.go
package auditlog

import (
	"net/http"
	"slices"
	"time"

	"github.com/dalemusser/learnhub/internal/app/store/audit"
	"github.com/dalemusser/learnhub/internal/app/system/respond"
)

// listItem is one audit event with actor and target names resolved.
type listItem struct {
	ID         string            `json:"id"`
	CreatedAt  time.Time         `json:"created_at"`
	Category   string            `json:"category"`
	EventType  string            `json:"event_type"`
	ActorName  string            `json:"actor_name,omitempty"`
	TargetName string            `json:"target_name,omitempty"`
	IP         string            `json:"ip"`
	Success    bool              `json:"success"`
	Reason     string            `json:"failure_reason,omitempty"`
	Details    map[string]string `json:"details,omitempty"`
}

type listResponse struct {
	Events     []listItem `json:"events"`
	Page       int        `json:"page"`
	TotalPages int        `json:"total_pages"`
	Total      int64      `json:"total"`
}

// categoryOption describes a category and its event types.
type categoryOption struct {
	Value      string   `json:"value"`
	Label      string   `json:"label"`
	EventTypes []string `json:"event_types"`
}

// allCategories returns the available categories for filtering.
func allCategories() []categoryOption {
	return []categoryOption{
		{Value: audit.CategoryAuth, Label: "Authentication", EventTypes: eventTypesForCategory(audit.CategoryAuth)},
		{Value: audit.CategoryAdmin, Label: "Administration", EventTypes: eventTypesForCategory(audit.CategoryAdmin)},
		{Value: audit.CategoryEnrollment, Label: "Enrollment", EventTypes: eventTypesForCategory(audit.CategoryEnrollment)},
	}
}

// eventTypesForCategory returns the event types for a given category.
// If category is empty, returns all event types.
func eventTypesForCategory(category string) []string {
	authEvents := []string{
		audit.EventSignUp,
		audit.EventLoginSuccess,
		audit.EventLoginFailedUserNotFound,
		audit.EventLoginFailedWrongPassword,
		audit.EventLoginFailedUserDisabled,
		audit.EventLogout,
	}

	adminEvents := []string{
		audit.EventUserCreated,
		audit.EventUserUpdated,
		audit.EventUserDeleted,
		audit.EventCourseCreated,
		audit.EventCourseUpdated,
		audit.EventCoursePublished,
		audit.EventCourseDeleted,
		audit.EventMentorAssigned,
		audit.EventMentorRemoved,
	}

	enrollmentEvents := []string{
		audit.EventEnrolled,
		audit.EventUnenrolled,
	}

	switch category {
	case audit.CategoryAuth:
		return authEvents
	case audit.CategoryAdmin:
		return adminEvents
	case audit.CategoryEnrollment:
		return enrollmentEvents
	case "":
		return slices.Concat(authEvents, adminEvents, enrollmentEvents)
	default:
		return nil
	}
}

// ServeTypes handles GET /api/audit/types.
func (h *Handler) ServeTypes(w http.ResponseWriter, r *http.Request) {
	respond.OK(w, map[string][]categoryOption{"categories": allCategories()})
}
