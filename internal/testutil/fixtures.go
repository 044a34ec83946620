package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/learnhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser creates an active user with the given role.
func (f *Fixtures) CreateUser(ctx context.Context, fullName, email, role string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:         primitive.NewObjectID(),
		FullName:   fullName,
		FullNameCI: text.Fold(fullName),
		Email:      email,
		Role:       role,
		Status:     "active",
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateStudent creates a test student.
func (f *Fixtures) CreateStudent(ctx context.Context, fullName, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, fullName, email, models.RoleStudent)
}

// CreateMentor creates a test mentor.
func (f *Fixtures) CreateMentor(ctx context.Context, fullName, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, fullName, email, models.RoleMentor)
}

// CreateCreator creates a test course creator.
func (f *Fixtures) CreateCreator(ctx context.Context, fullName, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, fullName, email, models.RoleCreator)
}

// CreateAdmin creates a test admin.
func (f *Fixtures) CreateAdmin(ctx context.Context, fullName, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, fullName, email, models.RoleAdmin)
}

// CreateUserWithPassword creates an active user whose password_hash is hash.
func (f *Fixtures) CreateUserWithPassword(ctx context.Context, fullName, email, role, hash string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:           primitive.NewObjectID(),
		FullName:     fullName,
		FullNameCI:   text.Fold(fullName),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Status:       "active",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateDisabledUser creates a disabled test student.
func (f *Fixtures) CreateDisabledUser(ctx context.Context, fullName, email string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:         primitive.NewObjectID(),
		FullName:   fullName,
		FullNameCI: text.Fold(fullName),
		Email:      email,
		Role:       models.RoleStudent,
		Status:     "disabled",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create disabled user: %v", err)
	}
	return user
}

// CreateCourse creates a published course. A nil creatorID leaves the
// course unowned.
func (f *Fixtures) CreateCourse(ctx context.Context, title string, price float64, creatorID *primitive.ObjectID) models.Course {
	f.t.Helper()

	now := time.Now().UTC()
	course := models.Course{
		ID:            primitive.NewObjectID(),
		Title:         title,
		TitleCI:       text.Fold(title),
		Category:      "programming",
		Level:         "beginner",
		Price:         price,
		DurationHours: 8,
		Modules: []models.Module{
			{Title: "Intro", Topics: []models.Topic{
				{Title: "Welcome", Kind: models.TopicText, Body: "<p>Hello</p>"},
				{Title: "Setup", Kind: models.TopicVideo, VideoURL: "https://video.example.com/setup"},
			}},
		},
		Published: true,
		CreatorID: creatorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("courses").InsertOne(ctx, course); err != nil {
		f.t.Fatalf("failed to create test course: %v", err)
	}
	return course
}

// CreateEnrollment creates an active enrollment without touching the
// course's enrollment_count.
func (f *Fixtures) CreateEnrollment(ctx context.Context, studentID, courseID primitive.ObjectID, progress float64) models.Enrollment {
	f.t.Helper()

	e := models.Enrollment{
		ID:         primitive.NewObjectID(),
		StudentID:  studentID,
		CourseID:   courseID,
		Progress:   progress,
		Status:     models.EnrollmentActive,
		EnrolledAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("enrollments").InsertOne(ctx, e); err != nil {
		f.t.Fatalf("failed to create test enrollment: %v", err)
	}
	return e
}

// CreatePayment creates a payment record with the given status.
func (f *Fixtures) CreatePayment(ctx context.Context, studentID, courseID primitive.ObjectID, amount float64, status string) models.Payment {
	f.t.Helper()

	p := models.Payment{
		ID:        primitive.NewObjectID(),
		StudentID: studentID,
		CourseID:  courseID,
		Amount:    amount,
		Currency:  "usd",
		Status:    status,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("payments").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("failed to create test payment: %v", err)
	}
	return p
}
