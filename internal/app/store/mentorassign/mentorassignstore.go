// internal/app/store/mentorassign/mentorassignstore.go
package mentorassign

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

// ErrDuplicateAssignment is returned when the mentor is already assigned to
// the student. The unique (mentor_id, student_id) index raises it, so two
// concurrent requests cannot both succeed.
var ErrDuplicateAssignment = errors.New("mentor is already assigned to this student")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("mentor_assignments")}
}

// Create inserts a new mentor-student assignment.
// If CreatedAt is zero, it will be set to now (UTC).
func (s *Store) Create(ctx context.Context, a models.MentorAssignment) (models.MentorAssignment, error) {
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	if _, err := s.c.InsertOne(ctx, a); err != nil {
		if wafflemongo.IsDup(err) {
			return models.MentorAssignment{}, ErrDuplicateAssignment
		}
		return models.MentorAssignment{}, fmt.Errorf("insert mentor assignment: %w", err)
	}
	return a, nil
}

// Delete removes the assignment with the given _id and returns the number
// of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// GetByID returns a single assignment by its _id.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.MentorAssignment, error) {
	var a models.MentorAssignment
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	return a, err
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.MentorAssignment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.MentorAssignment{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListAll returns every assignment, newest first.
func (s *Store) ListAll(ctx context.Context) ([]models.MentorAssignment, error) {
	return s.find(ctx, bson.M{})
}

// ListByMentor returns the students assigned to a mentor.
func (s *Store) ListByMentor(ctx context.Context, mentorID primitive.ObjectID) ([]models.MentorAssignment, error) {
	return s.find(ctx, bson.M{"mentor_id": mentorID})
}

// ListByStudent returns the mentors assigned to a student.
func (s *Store) ListByStudent(ctx context.Context, studentID primitive.ObjectID) ([]models.MentorAssignment, error) {
	return s.find(ctx, bson.M{"student_id": studentID})
}

// DeleteByUser removes every assignment where the user is the mentor or
// the student. Used when a user is deleted.
func (s *Store) DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"$or": bson.A{
		bson.M{"mentor_id": userID},
		bson.M{"student_id": userID},
	}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
