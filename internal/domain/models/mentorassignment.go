// internal/domain/models/mentorassignment.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MentorAssignment links a mentor to a student they look after.
// Exactly one document per (mentor_id, student_id).
type MentorAssignment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	MentorID  primitive.ObjectID `bson:"mentor_id" json:"mentor_id"`
	StudentID primitive.ObjectID `bson:"student_id" json:"student_id"`

	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	CreatedByID   primitive.ObjectID `bson:"created_by_id,omitempty" json:"created_by_id,omitempty"`
	CreatedByName string             `bson:"created_by_name,omitempty" json:"created_by_name,omitempty"`
}
