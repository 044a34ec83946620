// Package shared holds the request helpers every API feature uses.
package shared

import (
	"errors"
	"net/http"

	"github.com/dalemusser/learnhub/internal/app/system/inputval"
	"github.com/dalemusser/learnhub/internal/app/system/respond"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ParamID reads an ObjectID URL parameter. On failure it writes 400 and
// returns false.
func ParamID(w http.ResponseWriter, r *http.Request, name string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, name))
	if err != nil {
		respond.BadRequest(w, "Invalid id.")
		return primitive.NilObjectID, false
	}
	return oid, true
}

// DecodeValid decodes a JSON body into dst and runs struct-tag
// validation. On failure it writes 400 with the first message and
// returns false.
func DecodeValid(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := respond.Decode(w, r, dst); err != nil {
		if errors.Is(err, respond.ErrEmptyBody) {
			respond.BadRequest(w, "Request body is required.")
			return false
		}
		respond.BadRequest(w, "Invalid JSON body.")
		return false
	}
	if res := inputval.Validate(dst); res.HasErrors() {
		respond.BadRequest(w, res.First())
		return false
	}
	return true
}

// IsNotFound reports whether err means the document does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}
