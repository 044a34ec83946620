// Package legacyfields moves student references written under older field
// names onto the canonical student_id field.
package legacyfields

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Canonical is the field every student reference ends up in.
const Canonical = "student_id"

// Collections holding student references.
var Collections = []string{"enrollments", "progress", "completed_lessons"}

// LegacyNames are the field names older clients wrote, in the order they
// are tried.
var LegacyNames = []string{"userId", "user_id", "studentId"}

// Result counts renamed documents per collection.
type Result map[string]int64

// Total returns the number of documents changed.
func (r Result) Total() int64 {
	var n int64
	for _, v := range r {
		n += v
	}
	return n
}

// Migrate renames legacy fields to student_id in every document that does
// not already have student_id. Hex string ids become ObjectIDs; anything
// else is copied as is. Documents that already carry student_id are left
// untouched, so running it again changes nothing.
func Migrate(ctx context.Context, db *mongo.Database) (Result, error) {
	res := Result{}
	for _, coll := range Collections {
		for _, legacy := range LegacyNames {
			n, err := renameField(ctx, db.Collection(coll), legacy)
			if err != nil {
				return res, fmt.Errorf("%s.%s: %w", coll, legacy, err)
			}
			if n > 0 {
				res[coll] += n
				zap.L().Info("renamed legacy student field",
					zap.String("collection", coll),
					zap.String("from", legacy),
					zap.Int64("documents", n))
			}
		}
	}
	return res, nil
}

func renameField(ctx context.Context, c *mongo.Collection, legacy string) (int64, error) {
	filter := bson.M{
		legacy:    bson.M{"$exists": true},
		Canonical: bson.M{"$exists": false},
	}
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			Canonical: bson.M{"$convert": bson.M{
				"input":   "$" + legacy,
				"to":      "objectId",
				"onError": "$" + legacy,
				"onNull":  nil,
			}},
		}}},
		{{Key: "$unset", Value: legacy}},
	}
	out, err := c.UpdateMany(ctx, filter, pipeline)
	if err != nil {
		return 0, err
	}
	return out.ModifiedCount, nil
}
