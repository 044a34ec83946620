// internal/domain/models/enrollment.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Enrollment statuses.
const (
	EnrollmentActive    = "active"
	EnrollmentCompleted = "completed"
)

// Enrollment links a student to a course.
// Exactly one document per (student_id, course_id).
type Enrollment struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	StudentID  primitive.ObjectID `bson:"student_id" json:"student_id"`
	CourseID   primitive.ObjectID `bson:"course_id" json:"course_id"`
	Progress   float64            `bson:"progress" json:"progress"` // 0-100
	Status     string             `bson:"status" json:"status"`
	EnrolledAt time.Time          `bson:"enrolled_at" json:"enrolled_at"`
}

// Progress is the per-course progress record read by dashboards.
type Progress struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	StudentID  primitive.ObjectID `bson:"student_id" json:"student_id"`
	CourseID   primitive.ObjectID `bson:"course_id" json:"course_id"`
	Percentage float64            `bson:"percentage,omitempty" json:"percentage"`
	UpdatedAt  time.Time          `bson:"updated_at" json:"updated_at"`
}

// CompletedLesson records that a student finished one lesson of a course.
// LessonKey is "<module index>.<topic index>".
type CompletedLesson struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	StudentID   primitive.ObjectID `bson:"student_id" json:"student_id"`
	CourseID    primitive.ObjectID `bson:"course_id" json:"course_id"`
	LessonKey   string             `bson:"lesson_key" json:"lesson_key"`
	CompletedAt time.Time          `bson:"completed_at" json:"completed_at"`
}
