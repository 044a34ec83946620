// internal/app/features/account/me.go
package account

import (
	"net/http"

	"github.com/dalemusser/learnhub/internal/app/features/shared"
	userstore "github.com/dalemusser/learnhub/internal/app/store/users"
	"github.com/dalemusser/learnhub/internal/app/system/authz"
	"github.com/dalemusser/learnhub/internal/app/system/respond"
	"github.com/dalemusser/learnhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// ServeMe returns the signed-in user's record.
func (h *Handler) ServeMe(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		respond.Unauthorized(w, "Please sign in.")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "account.me")
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if shared.IsNotFound(err) {
		respond.NotFound(w, "Account not found.")
		return
	}
	if err != nil {
		respond.ServerError(w, h.Log, "load profile failed", err, zap.String("user_id", uid.Hex()))
		return
	}
	respond.OK(w, u)
}

type profileInput struct {
	FullName  *string `json:"full_name" validate:"omitempty,min=1,max=200" label:"Full name"`
	Phone     *string `json:"phone" validate:"omitempty,max=40" label:"Phone"`
	Bio       *string `json:"bio" validate:"omitempty,max=2000" label:"Bio"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,httpurl" label:"Avatar URL"`
}

// HandleUpdateMe applies a partial profile update. Omitted fields are
// left unchanged.
func (h *Handler) HandleUpdateMe(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		respond.Unauthorized(w, "Please sign in.")
		return
	}

	var in profileInput
	if !shared.DecodeValid(w, r, &in) {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "account.update")
	defer cancel()

	u, err := h.Users.UpdateProfile(ctx, uid, userstore.ProfileUpdate{
		FullName:  in.FullName,
		Phone:     in.Phone,
		Bio:       in.Bio,
		AvatarURL: in.AvatarURL,
	})
	if shared.IsNotFound(err) {
		respond.NotFound(w, "Account not found.")
		return
	}
	if err != nil {
		respond.ServerError(w, h.Log, "update profile failed", err, zap.String("user_id", uid.Hex()))
		return
	}
	respond.OK(w, u)
}
