// internal/app/store/courses/coursestore.go
package coursestore

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/learnhub/internal/app/system/normalize"
	"github.com/dalemusser/learnhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("courses")}
}

// listOrder is the source order handed to the catalog filter.
var listOrder = bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}

// Create inserts a new course. Enrollment count always starts at zero.
func (s *Store) Create(ctx context.Context, c models.Course) (models.Course, error) {
	c.ID = primitive.NewObjectID()
	c.Title = normalize.Name(c.Title)
	c.TitleCI = text.Fold(c.Title)
	c.Category = normalize.Category(c.Category)
	c.Level = normalize.Category(c.Level)
	c.EnrollmentCount = 0
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, c); err != nil {
		return models.Course{}, fmt.Errorf("insert course: %w", err)
	}
	return c, nil
}

// GetByID loads a course by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Course, error) {
	var c models.Course
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Update rewrites the creator-editable fields of a course. Enrollment
// count, owner and publish state are not touched.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, c models.Course) (*models.Course, error) {
	title := normalize.Name(c.Title)
	set := bson.M{
		"title":          title,
		"title_ci":       text.Fold(title),
		"description":    c.Description,
		"category":       normalize.Category(c.Category),
		"level":          normalize.Category(c.Level),
		"price":          c.Price,
		"duration_hours": c.DurationHours,
		"modules":        c.Modules,
		"curriculum_url": c.CurriculumURL,
		"updated_at":     time.Now().UTC(),
	}
	return s.findAndSet(ctx, id, set)
}

// SetPublished flips the publish state.
func (s *Store) SetPublished(ctx context.Context, id primitive.ObjectID, published bool) (*models.Course, error) {
	return s.findAndSet(ctx, id, bson.M{"published": published, "updated_at": time.Now().UTC()})
}

// SetThumbnail stores the uploaded thumbnail URL.
func (s *Store) SetThumbnail(ctx context.Context, id primitive.ObjectID, url string) (*models.Course, error) {
	return s.findAndSet(ctx, id, bson.M{"thumbnail_url": url, "updated_at": time.Now().UTC()})
}

func (s *Store) findAndSet(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Course, error) {
	var out models.Course
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AddResource appends an attachment to the course.
func (s *Store) AddResource(ctx context.Context, id primitive.ObjectID, res models.Resource) (*models.Course, error) {
	if res.UploadedAt.IsZero() {
		res.UploadedAt = time.Now().UTC()
	}
	var out models.Course
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{
			"$push": bson.M{"resources": res},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		},
		opts,
	).Decode(&out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a course and returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// IncEnrollmentCount adds delta to enrollment_count. Decrements never
// take the count below zero.
func (s *Store) IncEnrollmentCount(ctx context.Context, id primitive.ObjectID, delta int64) error {
	filter := bson.M{"_id": id}
	if delta < 0 {
		filter["enrollment_count"] = bson.M{"$gte": -delta}
	}
	if _, err := s.c.UpdateOne(ctx, filter, bson.M{"$inc": bson.M{"enrollment_count": delta}}); err != nil {
		return fmt.Errorf("adjust enrollment count: %w", err)
	}
	return nil
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.Course, error) {
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(listOrder))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Course{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListPublished returns every published course, oldest first.
func (s *Store) ListPublished(ctx context.Context) ([]models.Course, error) {
	return s.find(ctx, bson.M{"published": true})
}

// ListAll returns every course including drafts.
func (s *Store) ListAll(ctx context.Context) ([]models.Course, error) {
	return s.find(ctx, bson.M{})
}

// ListByCreator returns the courses owned by creatorID.
func (s *Store) ListByCreator(ctx context.Context, creatorID primitive.ObjectID) ([]models.Course, error) {
	return s.find(ctx, bson.M{"creator_id": creatorID})
}

// GetMany returns the courses with the given IDs. Missing IDs are skipped.
func (s *Store) GetMany(ctx context.Context, ids []primitive.ObjectID) ([]models.Course, error) {
	if len(ids) == 0 {
		return []models.Course{}, nil
	}
	return s.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}
