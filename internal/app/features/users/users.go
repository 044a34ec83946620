// internal/app/features/users/users.go
package users

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dalemusser/learnhub/internal/app/features/shared"
	"github.com/dalemusser/learnhub/internal/app/store/audit"
	userstore "github.com/dalemusser/learnhub/internal/app/store/users"
	"github.com/dalemusser/learnhub/internal/app/system/auth"
	"github.com/dalemusser/learnhub/internal/app/system/authz"
	"github.com/dalemusser/learnhub/internal/app/system/inputval"
	"github.com/dalemusser/learnhub/internal/app/system/normalize"
	"github.com/dalemusser/learnhub/internal/app/system/paging"
	"github.com/dalemusser/learnhub/internal/app/system/respond"
	"github.com/dalemusser/learnhub/internal/app/system/timeouts"
	"github.com/dalemusser/learnhub/internal/app/system/txn"
	"github.com/dalemusser/learnhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const msgDuplicateEmail = "A user with that email already exists."

// ServeList handles GET /api/users?role=&after=&before=. Pages are ordered by
// name and navigated with the returned cursors.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	role := normalize.Role(r.URL.Query().Get("role"))
	if role != "" && !inputval.IsValidRole(role) {
		respond.BadRequest(w, "Unknown role.")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "users.list")
	defer cancel()

	params := paging.ParseParams(r)
	ks := paging.ConfigureKeyset(params)
	list, err := h.Users.ListPage(ctx, role, ks)
	if err != nil {
		respond.ServerError(w, h.Log, "list users failed", err, zap.String("role", role))
		return
	}

	page := paging.TrimPage(&list, params)
	if ks.Direction == paging.Backward {
		paging.Reverse(list)
	}
	resp := listResponse{Users: list, HasPrev: page.HasPrev, HasNext: page.HasNext}
	prev, next := paging.BuildCursors(list,
		func(u models.User) string { return u.FullNameCI },
		func(u models.User) primitive.ObjectID { return u.ID },
	)
	if page.HasPrev {
		resp.PrevCursor = prev
	}
	if page.HasNext {
		resp.NextCursor = next
	}
	respond.OK(w, resp)
}

type listResponse struct {
	Users      []models.User `json:"users"`
	HasPrev    bool          `json:"has_prev"`
	HasNext    bool          `json:"has_next"`
	PrevCursor string        `json:"prev_cursor,omitempty"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

// ServeGet handles GET /api/users/{id}.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.ParamID(w, r, "id")
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "users.get")
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if shared.IsNotFound(err) {
		respond.NotFound(w, "User not found.")
		return
	}
	if err != nil {
		respond.ServerError(w, h.Log, "load user failed", err, zap.String("user_id", id.Hex()))
		return
	}
	respond.OK(w, u)
}

type createInput struct {
	FullName string `json:"full_name" validate:"required,max=200" label:"Full name"`
	Email    string `json:"email" validate:"required,email,max=254" label:"Email"`
	Role     string `json:"role" validate:"required,role" label:"Role"`
	Password string `json:"password" validate:"required,min=8,password" label:"Password"`
}

// HandleCreate handles POST /api/users. Admins create accounts of any role.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in createInput
	if !shared.DecodeValid(w, r, &in) {
		return
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		respond.ServerError(w, h.Log, "hash password failed", err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "users.create")
	defer cancel()

	u, err := h.Users.Create(ctx, models.User{
		FullName:     in.FullName,
		Email:        in.Email,
		Role:         in.Role,
		PasswordHash: hash,
	})
	if errors.Is(err, userstore.ErrDuplicateEmail) {
		respond.Conflict(w, msgDuplicateEmail)
		return
	}
	if err != nil {
		respond.ServerError(w, h.Log, "create user failed", err, zap.String("email", in.Email))
		return
	}

	h.AuditLog.UserChanged(ctx, r, audit.EventUserCreated, u.ID, u.Role)
	respond.Created(w, u)
}

type updateInput struct {
	FullName string `json:"full_name" validate:"required,max=200" label:"Full name"`
	Email    string `json:"email" validate:"required,email,max=254" label:"Email"`
	Role     string `json:"role" validate:"required,role" label:"Role"`
	Status   string `json:"status" validate:"omitempty,oneof=active disabled" label:"Status"`
}

// HandleUpdate handles PUT /api/users/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.ParamID(w, r, "id")
	if !ok {
		return
	}
	var in updateInput
	if !shared.DecodeValid(w, r, &in) {
		return
	}

	_, _, self, _ := authz.UserCtx(r)
	role := normalize.Role(in.Role)
	status := normalize.Status(in.Status)
	if id == self && (role != models.RoleAdmin || status == userstore.StatusDisabled) {
		respond.BadRequest(w, "You can't change your own role or status. Ask another admin to make those changes.")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "users.update")
	defer cancel()

	err := h.Users.Update(ctx, id, userstore.Update{
		FullName: in.FullName,
		Email:    in.Email,
		Role:     role,
		Status:   status,
	})
	switch {
	case shared.IsNotFound(err):
		respond.NotFound(w, "User not found.")
		return
	case errors.Is(err, userstore.ErrDuplicateEmail):
		respond.Conflict(w, msgDuplicateEmail)
		return
	case err != nil:
		respond.ServerError(w, h.Log, "update user failed", err, zap.String("user_id", id.Hex()))
		return
	}

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		respond.ServerError(w, h.Log, "reload user failed", err, zap.String("user_id", id.Hex()))
		return
	}
	h.AuditLog.UserChanged(ctx, r, audit.EventUserUpdated, id, u.Role)
	respond.OK(w, u)
}

// HandleDelete handles DELETE /api/users/{id}. The user's enrollments,
// progress, completed lessons, mentor assignments and notifications go
// with it. Creators who still own courses cannot be deleted.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.ParamID(w, r, "id")
	if !ok {
		return
	}
	if _, _, self, _ := authz.UserCtx(r); id == self {
		respond.BadRequest(w, "You can't delete your own account.")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "users.delete")
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if shared.IsNotFound(err) {
		respond.NotFound(w, "User not found.")
		return
	}
	if err != nil {
		respond.ServerError(w, h.Log, "load user failed", err, zap.String("user_id", id.Hex()))
		return
	}

	if u.Role == models.RoleCreator {
		owned, err := h.Courses.ListByCreator(ctx, id)
		if err != nil {
			respond.ServerError(w, h.Log, "load courses failed", err, zap.String("user_id", id.Hex()))
			return
		}
		if len(owned) > 0 {
			respond.Conflict(w, "This creator still owns courses. Delete or reassign them first.")
			return
		}
	}

	if err := txn.Run(ctx, h.DB, h.Log, func(ctx context.Context) error {
		return h.cascade(ctx, id)
	}); err != nil {
		respond.ServerError(w, h.Log, "delete user failed", err, zap.String("user_id", id.Hex()))
		return
	}
	h.Cache.Invalidate(ctx)

	h.AuditLog.UserChanged(ctx, r, audit.EventUserDeleted, id, u.Role)
	respond.NoContent(w)
}

func (h *Handler) cascade(ctx context.Context, id primitive.ObjectID) error {
	courseIDs, err := h.Enrollments.DeleteByStudent(ctx, id)
	if err != nil {
		return fmt.Errorf("delete enrollments: %w", err)
	}
	for _, cid := range courseIDs {
		if err := h.Courses.IncEnrollmentCount(ctx, cid, -1); err != nil {
			return err
		}
	}
	if _, err := h.Progress.DeleteByStudent(ctx, id); err != nil {
		return fmt.Errorf("delete progress: %w", err)
	}
	if _, err := h.Lessons.DeleteByStudent(ctx, id); err != nil {
		return fmt.Errorf("delete completed lessons: %w", err)
	}
	if _, err := h.Mentors.DeleteByUser(ctx, id); err != nil {
		return fmt.Errorf("delete mentor assignments: %w", err)
	}
	if _, err := h.Notifications.DeleteByUser(ctx, id); err != nil {
		return fmt.Errorf("delete notifications: %w", err)
	}
	if _, err := h.Users.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}
