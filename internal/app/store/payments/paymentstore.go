// internal/app/store/payments/paymentstore.go
package paymentstore

import (
	"context"

	"github.com/dalemusser/learnhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store reads payment records. Payments are written by the external
// checkout flow; nothing here inserts or changes them.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("payments")}
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.Payment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Payment{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListAll returns every payment, newest first.
func (s *Store) ListAll(ctx context.Context) ([]models.Payment, error) {
	return s.find(ctx, bson.M{})
}

// ListByStudent returns a student's payments, newest first.
func (s *Store) ListByStudent(ctx context.Context, studentID primitive.ObjectID) ([]models.Payment, error) {
	return s.find(ctx, bson.M{"student_id": studentID})
}

// ListByCourses returns the payments for any of the given courses.
func (s *Store) ListByCourses(ctx context.Context, courseIDs []primitive.ObjectID) ([]models.Payment, error) {
	if len(courseIDs) == 0 {
		return []models.Payment{}, nil
	}
	return s.find(ctx, bson.M{"course_id": bson.M{"$in": courseIDs}})
}

// HasSucceeded reports whether the student has a succeeded payment for the course.
func (s *Store) HasSucceeded(ctx context.Context, studentID, courseID primitive.ObjectID) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{
		"student_id": studentID,
		"course_id":  courseID,
		"status":     models.PaymentSucceeded,
	}, options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if err == nil {
		return true, nil
	}
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	return false, err
}
