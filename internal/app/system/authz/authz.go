// internal/app/system/authz/authz.go
package authz

import (
	"net/http"
	"strings"

	"github.com/dalemusser/learnhub/internal/app/system/auth"
	"github.com/dalemusser/learnhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the user's role (lowercased), name, Mongo ObjectID, and a found flag.
// If no user is present in context or the user ID is malformed, it returns
// "visitor", "", NilObjectID, false, so ok=true always means a valid ObjectID.
func UserCtx(r *http.Request) (role string, name string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "visitor", "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// malformed id in session or token: fail closed
		return "visitor", "", primitive.NilObjectID, false
	}
	return strings.ToLower(user.Role), user.Name, userID, true
}

// IsAdmin reports whether the current request's user is an admin.
func IsAdmin(r *http.Request) bool {
	return HasRole(r, models.RoleAdmin)
}

// IsCreator reports whether the current request's user is a course creator.
func IsCreator(r *http.Request) bool {
	return HasRole(r, models.RoleCreator)
}

// IsMentor reports whether the current request's user is a mentor.
func IsMentor(r *http.Request) bool {
	return HasRole(r, models.RoleMentor)
}

// IsStudent reports whether the current request's user is a student.
func IsStudent(r *http.Request) bool {
	return HasRole(r, models.RoleStudent)
}

// CanManageCourse reports whether the current user may edit, publish or
// delete c. Admins can manage every course; creators only their own.
func CanManageCourse(r *http.Request, c models.Course) bool {
	role, _, uid, ok := UserCtx(r)
	if !ok {
		return false
	}
	switch role {
	case models.RoleAdmin:
		return true
	case models.RoleCreator:
		return c.CreatorID != nil && *c.CreatorID == uid
	default:
		return false
	}
}

// CanActForStudent reports whether the current user may read or change
// records owned by studentID. Admins can act for anyone; everyone else
// only for themselves.
func CanActForStudent(r *http.Request, studentID primitive.ObjectID) bool {
	role, _, uid, ok := UserCtx(r)
	if !ok {
		return false
	}
	return role == models.RoleAdmin || uid == studentID
}
