// internal/app/store/progress/progressstore.go
package progressstore

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/learnhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("progress")}
}

// Upsert sets the percentage for (student, course), creating the record on
// first use. The unique (student_id, course_id) index keeps it single; a
// concurrent first write loses the insert race and is retried as an update.
func (s *Store) Upsert(ctx context.Context, studentID, courseID primitive.ObjectID, pct float64) (*models.Progress, error) {
	p, err := s.upsert(ctx, studentID, courseID, pct)
	if err != nil && wafflemongo.IsDup(err) {
		p, err = s.upsert(ctx, studentID, courseID, pct)
	}
	if err != nil {
		return nil, fmt.Errorf("upsert progress: %w", err)
	}
	return p, nil
}

func (s *Store) upsert(ctx context.Context, studentID, courseID primitive.ObjectID, pct float64) (*models.Progress, error) {
	var out models.Progress
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"student_id": studentID, "course_id": courseID},
		bson.M{
			"$set":         bson.M{"percentage": pct, "updated_at": time.Now().UTC()},
			"$setOnInsert": bson.M{"_id": primitive.NewObjectID()},
		},
		opts,
	).Decode(&out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Get returns the progress record for (student, course).
func (s *Store) Get(ctx context.Context, studentID, courseID primitive.ObjectID) (*models.Progress, error) {
	var p models.Progress
	if err := s.c.FindOne(ctx, bson.M{"student_id": studentID, "course_id": courseID}).Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.Progress, error) {
	cur, err := s.c.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Progress{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListAll returns every progress record.
func (s *Store) ListAll(ctx context.Context) ([]models.Progress, error) {
	return s.find(ctx, bson.M{})
}

// ListByStudents returns the progress records of any of the given students.
func (s *Store) ListByStudents(ctx context.Context, studentIDs []primitive.ObjectID) ([]models.Progress, error) {
	if len(studentIDs) == 0 {
		return []models.Progress{}, nil
	}
	return s.find(ctx, bson.M{"student_id": bson.M{"$in": studentIDs}})
}

// ListByCourses returns the progress records of any of the given courses.
func (s *Store) ListByCourses(ctx context.Context, courseIDs []primitive.ObjectID) ([]models.Progress, error) {
	if len(courseIDs) == 0 {
		return []models.Progress{}, nil
	}
	return s.find(ctx, bson.M{"course_id": bson.M{"$in": courseIDs}})
}

// Delete removes the record for (student, course).
func (s *Store) Delete(ctx context.Context, studentID, courseID primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"student_id": studentID, "course_id": courseID})
	return err
}

// DeleteByCourse removes all progress for a course.
func (s *Store) DeleteByCourse(ctx context.Context, courseID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"course_id": courseID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByStudent removes all progress for a student.
func (s *Store) DeleteByStudent(ctx context.Context, studentID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"student_id": studentID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
