// internal/app/store/enrollments/enrollmentstore.go
package enrollmentstore

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

// ErrDuplicateEnrollment is returned when the student is already enrolled
// in the course. The unique (student_id, course_id) index raises it.
var ErrDuplicateEnrollment = errors.New("student is already enrolled in this course")

// ErrBadProgress is returned for progress outside 0..100.
var ErrBadProgress = errors.New("progress must be between 0 and 100")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("enrollments")}
}

// Create inserts an active enrollment with zero progress.
func (s *Store) Create(ctx context.Context, studentID, courseID primitive.ObjectID) (models.Enrollment, error) {
	e := models.Enrollment{
		ID:         primitive.NewObjectID(),
		StudentID:  studentID,
		CourseID:   courseID,
		Progress:   0,
		Status:     models.EnrollmentActive,
		EnrolledAt: time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, e); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Enrollment{}, ErrDuplicateEnrollment
		}
		return models.Enrollment{}, fmt.Errorf("insert enrollment: %w", err)
	}
	return e, nil
}

// GetByID returns a single enrollment by its _id.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Enrollment, error) {
	var e models.Enrollment
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&e); err != nil {
		return nil, err
	}
	return &e, nil
}

// Delete removes the enrollment and returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// SetProgress stores pct on the enrollment. Reaching 100 marks it completed;
// anything lower puts it back to active.
func (s *Store) SetProgress(ctx context.Context, id primitive.ObjectID, pct float64) (*models.Enrollment, error) {
	if pct < 0 || pct > 100 {
		return nil, ErrBadProgress
	}
	status := models.EnrollmentActive
	if pct >= 100 {
		status = models.EnrollmentCompleted
	}
	var out models.Enrollment
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"progress": pct, "status": status}},
		opts,
	).Decode(&out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.Enrollment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "enrolled_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Enrollment{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListByStudent returns a student's enrollments, newest first.
func (s *Store) ListByStudent(ctx context.Context, studentID primitive.ObjectID) ([]models.Enrollment, error) {
	return s.find(ctx, bson.M{"student_id": studentID})
}

// ListByStudents returns the enrollments of any of the given students.
func (s *Store) ListByStudents(ctx context.Context, studentIDs []primitive.ObjectID) ([]models.Enrollment, error) {
	if len(studentIDs) == 0 {
		return []models.Enrollment{}, nil
	}
	return s.find(ctx, bson.M{"student_id": bson.M{"$in": studentIDs}})
}

// ListByCourses returns the enrollments of any of the given courses.
func (s *Store) ListByCourses(ctx context.Context, courseIDs []primitive.ObjectID) ([]models.Enrollment, error) {
	if len(courseIDs) == 0 {
		return []models.Enrollment{}, nil
	}
	return s.find(ctx, bson.M{"course_id": bson.M{"$in": courseIDs}})
}

// ListAll returns every enrollment, newest first.
func (s *Store) ListAll(ctx context.Context) ([]models.Enrollment, error) {
	return s.find(ctx, bson.M{})
}

// DeleteByCourse removes all enrollments for a course.
// Used when a course is deleted.
func (s *Store) DeleteByCourse(ctx context.Context, courseID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"course_id": courseID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByStudent removes all enrollments for a student and returns the
// course IDs they were enrolled in. Used when a user is deleted.
func (s *Store) DeleteByStudent(ctx context.Context, studentID primitive.ObjectID) ([]primitive.ObjectID, error) {
	list, err := s.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if _, err := s.c.DeleteMany(ctx, bson.M{"student_id": studentID}); err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(list))
	for _, e := range list {
		ids = append(ids, e.CourseID)
	}
	return ids, nil
}
