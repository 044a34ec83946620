// internal/domain/models/course.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Topic kinds.
const (
	TopicText  = "text"
	TopicVideo = "video"
	TopicQuiz  = "quiz"
)

// Course is a catalog entry. Price 0 (or absent) means the course is free.
type Course struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	TitleCI     string             `bson:"title_ci" json:"-"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`

	Category      string  `bson:"category,omitempty" json:"category,omitempty"`
	Level         string  `bson:"level,omitempty" json:"level,omitempty"`
	Price         float64 `bson:"price,omitempty" json:"price"`
	DurationHours float64 `bson:"duration_hours,omitempty" json:"duration_hours"`

	EnrollmentCount int64 `bson:"enrollment_count" json:"enrollment_count"`

	Modules   []Module   `bson:"modules,omitempty" json:"modules,omitempty"`
	Resources []Resource `bson:"resources,omitempty" json:"resources,omitempty"`

	ThumbnailURL  string `bson:"thumbnail_url,omitempty" json:"thumbnail_url,omitempty"`
	CurriculumURL string `bson:"curriculum_url,omitempty" json:"curriculum_url,omitempty"`

	Published bool                `bson:"published" json:"published"`
	CreatorID *primitive.ObjectID `bson:"creator_id,omitempty" json:"creator_id,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// IsFree reports whether the course can be joined without a payment.
func (c Course) IsFree() bool { return c.Price <= 0 }

// Module is an ordered group of topics inside a course.
type Module struct {
	Title  string  `bson:"title" json:"title"`
	Topics []Topic `bson:"topics,omitempty" json:"topics,omitempty"`
}

// Topic is a single lesson. Only the fields matching Kind are used.
type Topic struct {
	Title    string         `bson:"title" json:"title"`
	Kind     string         `bson:"kind" json:"kind"` // text | video | quiz
	Body     string         `bson:"body,omitempty" json:"body,omitempty"`
	VideoURL string         `bson:"video_url,omitempty" json:"video_url,omitempty"`
	Quiz     []QuizQuestion `bson:"quiz,omitempty" json:"quiz,omitempty"`
}

// QuizQuestion is one multiple-choice question of a quiz topic.
type QuizQuestion struct {
	Question string   `bson:"question" json:"question"`
	Options  []string `bson:"options" json:"options"`
	Answer   int      `bson:"answer" json:"answer"` // index into Options
}

// Resource is file attachment metadata embedded in a course
// (assignments, handouts, curriculum files).
type Resource struct {
	Name        string    `bson:"name" json:"name"`
	URL         string    `bson:"url" json:"url"`
	ContentType string    `bson:"content_type,omitempty" json:"content_type,omitempty"`
	Size        int64     `bson:"size,omitempty" json:"size,omitempty"`
	UploadedAt  time.Time `bson:"uploaded_at" json:"uploaded_at"`
}
