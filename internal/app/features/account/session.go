// internal/app/features/account/session.go
package account

import (
	"errors"
	"net/http"
	"time"

	"github.com/dalemusser/learnhub/internal/app/features/shared"
	"github.com/dalemusser/learnhub/internal/app/store/audit"
	userstore "github.com/dalemusser/learnhub/internal/app/store/users"
	"github.com/dalemusser/learnhub/internal/app/system/auth"
	"github.com/dalemusser/learnhub/internal/app/system/normalize"
	"github.com/dalemusser/learnhub/internal/app/system/respond"
	"github.com/dalemusser/learnhub/internal/app/system/timeouts"
	"github.com/dalemusser/learnhub/internal/domain/models"
	"go.uber.org/zap"
)

const msgBadCredentials = "Invalid email or password."

type signUpInput struct {
	FullName string `json:"full_name" validate:"required,max=200" label:"Full name"`
	Email    string `json:"email" validate:"required,email" label:"Email"`
	Password string `json:"password" validate:"required,min=8,password" label:"Password"`
	Role     string `json:"role" validate:"omitempty,oneof=student creator" label:"Role"`
}

type signInInput struct {
	Email    string `json:"email" validate:"required" label:"Email"`
	Password string `json:"password" validate:"required" label:"Password"`
}

// sessionResponse is returned by sign-up and sign-in. Browsers use the
// cookie that is also set; API clients send Token as a bearer token.
type sessionResponse struct {
	ID        string      `json:"id"`
	User      models.User `json:"user"`
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// HandleSignUp creates a student (or creator) account and signs it in.
// Mentor and admin accounts are created by admins.
func (h *Handler) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	var in signUpInput
	if !shared.DecodeValid(w, r, &in) {
		return
	}
	if ok, msg := h.Limiter.Check(r, in.Email); !ok {
		respond.Error(w, http.StatusTooManyRequests, msg)
		return
	}

	role := normalize.Role(in.Role)
	if role == "" {
		role = models.RoleStudent
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		respond.ServerError(w, h.Log, "hash password failed", err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "account.signup")
	defer cancel()

	u, err := h.Users.Create(ctx, models.User{
		FullName:     in.FullName,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         role,
	})
	if errors.Is(err, userstore.ErrDuplicateEmail) {
		respond.Conflict(w, "An account with this email already exists.")
		return
	}
	if err != nil {
		respond.ServerError(w, h.Log, "create user failed", err, zap.String("email", in.Email))
		return
	}

	h.AuditLog.SignUp(ctx, r, u.ID, u.Email, u.Role)
	h.startSession(w, r, http.StatusCreated, &u)
}

// HandleSignIn checks email and password and starts a session.
func (h *Handler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	var in signInInput
	if !shared.DecodeValid(w, r, &in) {
		return
	}
	email := normalize.Email(in.Email)
	if ok, msg := h.Limiter.Check(r, email); !ok {
		respond.Error(w, http.StatusTooManyRequests, msg)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "account.signin")
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, email)
	if shared.IsNotFound(err) {
		h.AuditLog.LoginFailed(ctx, r, audit.EventLoginFailedUserNotFound, nil, email, "user not found")
		respond.Unauthorized(w, msgBadCredentials)
		return
	}
	if err != nil {
		respond.ServerError(w, h.Log, "load user failed", err, zap.String("email", email))
		return
	}

	if err := auth.CheckPassword(u.PasswordHash, in.Password); err != nil {
		h.AuditLog.LoginFailed(ctx, r, audit.EventLoginFailedWrongPassword, &u.ID, email, "wrong password")
		respond.Unauthorized(w, msgBadCredentials)
		return
	}
	if u.Status == userstore.StatusDisabled {
		h.AuditLog.LoginFailed(ctx, r, audit.EventLoginFailedUserDisabled, &u.ID, email, "account disabled")
		respond.Forbidden(w, "This account has been disabled.")
		return
	}

	h.Limiter.ResetEmail(email)
	h.AuditLog.LoginSuccess(ctx, r, u.ID, email)
	h.startSession(w, r, http.StatusOK, u)
}

func (h *Handler) startSession(w http.ResponseWriter, r *http.Request, status int, u *models.User) {
	su := auth.SessionUser{
		ID:    u.ID.Hex(),
		Name:  u.FullName,
		Email: u.Email,
		Role:  u.Role,
	}
	if err := h.SessionMgr.SignIn(w, r, su); err != nil {
		respond.ServerError(w, h.Log, "save session failed", err, zap.String("user_id", su.ID))
		return
	}
	token, exp, err := h.SessionMgr.Tokens().Issue(su)
	if err != nil {
		respond.ServerError(w, h.Log, "issue token failed", err, zap.String("user_id", su.ID))
		return
	}
	respond.JSON(w, status, sessionResponse{
		ID:        su.ID,
		User:      *u,
		Token:     token,
		ExpiresAt: exp,
	})
}

// HandleSignOut clears the session cookie. Bearer tokens expire on
// their own.
func (h *Handler) HandleSignOut(w http.ResponseWriter, r *http.Request) {
	var userID string
	if u, ok := auth.CurrentUser(r); ok {
		userID = u.ID
	}
	if err := h.SessionMgr.SignOut(w, r); err != nil {
		h.Log.Warn("clear session failed", zap.Error(err))
	}
	h.AuditLog.Logout(r.Context(), r, userID)
	respond.NoContent(w)
}
