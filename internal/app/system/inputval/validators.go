package inputval

import (
	"net/mail"
	"net/url"
	"strings"
	"unicode"

	"github.com/dalemusser/learnhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var allowedRoles = []string{
	models.RoleStudent,
	models.RoleMentor,
	models.RoleCreator,
	models.RoleAdmin,
}

// AllowedRolesList returns the assignable roles in display order.
func AllowedRolesList() []string {
	out := make([]string, len(allowedRoles))
	copy(out, allowedRoles)
	return out
}

// IsValidRole reports whether s names a known role (case-insensitive).
func IsValidRole(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, r := range allowedRoles {
		if s == r {
			return true
		}
	}
	return false
}

// IsValidEmail accepts a bare RFC 5322 address (no display name, no
// whitespace). Single-label domains such as "localhost" are allowed.
func IsValidEmail(s string) bool {
	if s == "" || strings.IndexFunc(s, unicode.IsSpace) >= 0 {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	return addr.Name == "" && addr.Address == s
}

// IsValidHTTPURL accepts absolute http and https URLs with a host.
func IsValidHTTPURL(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}

// IsValidObjectID reports whether s is a 24-character hex Mongo ObjectID.
func IsValidObjectID(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) != 24 {
		return false
	}
	_, err := primitive.ObjectIDFromHex(s)
	return err == nil
}

// MaxPasswordBytes is bcrypt's input limit. Multi-byte characters count
// once per byte.
const MaxPasswordBytes = 72

// FitsPasswordLimit reports whether s can be hashed with bcrypt.
func FitsPasswordLimit(s string) bool {
	return len(s) <= MaxPasswordBytes
}
