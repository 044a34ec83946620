// internal/app/store/lessons/lessonstore.go
package lessonstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/learnhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrAlreadyCompleted is returned when the lesson was already recorded for
// this student and course.
var ErrAlreadyCompleted = errors.New("lesson already completed")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("completed_lessons")}
}

// Complete records one lesson completion. The unique
// (student_id, course_id, lesson_key) index rejects repeats.
func (s *Store) Complete(ctx context.Context, studentID, courseID primitive.ObjectID, lessonKey string) (models.CompletedLesson, error) {
	cl := models.CompletedLesson{
		ID:          primitive.NewObjectID(),
		StudentID:   studentID,
		CourseID:    courseID,
		LessonKey:   lessonKey,
		CompletedAt: time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, cl); err != nil {
		if wafflemongo.IsDup(err) {
			return models.CompletedLesson{}, ErrAlreadyCompleted
		}
		return models.CompletedLesson{}, fmt.Errorf("insert completed lesson: %w", err)
	}
	return cl, nil
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.CompletedLesson, error) {
	opts := options.Find().SetSort(bson.D{{Key: "completed_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.CompletedLesson{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListByStudentCourse returns the lessons a student finished in one course.
func (s *Store) ListByStudentCourse(ctx context.Context, studentID, courseID primitive.ObjectID) ([]models.CompletedLesson, error) {
	return s.find(ctx, bson.M{"student_id": studentID, "course_id": courseID})
}

// ListByStudent returns every lesson a student finished.
func (s *Store) ListByStudent(ctx context.Context, studentID primitive.ObjectID) ([]models.CompletedLesson, error) {
	return s.find(ctx, bson.M{"student_id": studentID})
}

// ListByStudents returns the completions of any of the given students.
func (s *Store) ListByStudents(ctx context.Context, studentIDs []primitive.ObjectID) ([]models.CompletedLesson, error) {
	if len(studentIDs) == 0 {
		return []models.CompletedLesson{}, nil
	}
	return s.find(ctx, bson.M{"student_id": bson.M{"$in": studentIDs}})
}

// ListAll returns every completion record.
func (s *Store) ListAll(ctx context.Context) ([]models.CompletedLesson, error) {
	return s.find(ctx, bson.M{})
}

// DeleteByStudentCourse removes a student's completions for one course.
// Used on unenroll.
func (s *Store) DeleteByStudentCourse(ctx context.Context, studentID, courseID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"student_id": studentID, "course_id": courseID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByCourse removes all completions for a course.
func (s *Store) DeleteByCourse(ctx context.Context, courseID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"course_id": courseID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByStudent removes all completions for a student.
func (s *Store) DeleteByStudent(ctx context.Context, studentID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"student_id": studentID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
