// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles a user can hold. A user has exactly one role.
const (
	RoleStudent = "student"
	RoleMentor  = "mentor"
	RoleCreator = "creator"
	RoleAdmin   = "admin"
)

// User is the identity record for students, mentors, creators and admins.
// The _id doubles as the identifier returned from sign-up.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName     string             `bson:"full_name" json:"full_name"`
	FullNameCI   string             `bson:"full_name_ci" json:"-"` // lowercase, diacritics-stripped
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash,omitempty" json:"-"`
	Role         string             `bson:"role" json:"role"`
	Status       string             `bson:"status,omitempty" json:"status,omitempty"` // active | disabled

	Phone     string `bson:"phone,omitempty" json:"phone,omitempty"`
	Bio       string `bson:"bio,omitempty" json:"bio,omitempty"`
	AvatarURL string `bson:"avatar_url,omitempty" json:"avatar_url,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
