// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/learnhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Collections lists every collection LearnHub owns, in creation order.
var Collections = []string{
	"users",
	"courses",
	"enrollments",
	"progress",
	"completed_lessons",
	"mentor_assignments",
	"payments",
	"notifications",
	"audit_events",
}

// EnsureAll creates collections (if missing) and tries to attach JSON-Schema
// validators. On servers that don't support collMod/validators (e.g. some
// DocumentDB versions), we log and skip gracefully.
//
// Validation is "moderate": documents already stored that fail the schema
// (legacy field names, for instance) are left alone until they are updated.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	schemas := map[string]bson.M{
		"users":              usersSchema(),
		"courses":            coursesSchema(),
		"enrollments":        enrollmentsSchema(),
		"progress":           progressSchema(),
		"completed_lessons":  completedLessonsSchema(),
		"mentor_assignments": mentorAssignmentsSchema(),
		"payments":           paymentsSchema(),
		"notifications":      notificationsSchema(),
	}

	for _, coll := range Collections {
		if _, err := ensureCollection(ctx, db, coll); err != nil {
			problems = append(problems, coll+": "+err.Error())
			continue
		}
		schema, ok := schemas[coll]
		if !ok {
			continue
		}
		if err := setValidator(ctx, db, coll, schema); err != nil {
			if isNoSuchCommand(err) || isNotImplemented(err) {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", coll))
				continue
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers & logging ---------------------- */

// collectionExists returns true when <name> already exists.
// Uses ListCollectionNames to avoid "created collection" log when it didn't.
func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// ensureCollection idempotently makes sure <name> exists.
// Returns created==true only if we actually created it.
func ensureCollection(ctx context.Context, db *mongo.Database, name string) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		zap.L().Info("collection exists", zap.String("collection", name))
		return false, nil
	}
	// If listing failed, fall back to create-and-handle-race.
	if err := db.CreateCollection(ctx, name); err != nil {
		// NamespaceExists / already exists is fine (race or prior run).
		if isNamespaceExistsErr(err) {
			zap.L().Info("collection exists", zap.String("collection", name))
			return false, nil
		}
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	zap.L().Info("created collection", zap.String("collection", name))
	return true, nil
}

/* ------------------------------ validators ------------------------------- */

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	zap.L().Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func isNamespaceExistsErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 48 || strings.Contains(strings.ToLower(ce.Message), "already exists")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "already exists") || strings.Contains(s, "namespace exists")
}

func isNoSuchCommand(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 59 || strings.Contains(strings.ToLower(ce.Message), "no such command")) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no such command")
}

func isNotImplemented(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 115 ||
		strings.Contains(strings.ToLower(ce.Message), "not implemented") ||
		strings.Contains(strings.ToLower(ce.Message), "not supported")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "not implemented") || strings.Contains(s, "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

var nonBlank = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}

func objectSchema(required bson.A, props bson.M) bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType":   "object",
			"required":   required,
			"properties": props,
		},
	}
}

func percent() bson.M {
	return bson.M{"bsonType": "number", "minimum": 0, "maximum": 100}
}

func usersSchema() bson.M {
	return objectSchema(bson.A{"full_name", "email", "role"}, bson.M{
		"full_name":     nonBlank,
		"full_name_ci":  bson.M{"bsonType": "string"},
		"email":         nonBlank,
		"password_hash": bson.M{"bsonType": "string"},
		"role":          bson.M{"enum": bson.A{models.RoleStudent, models.RoleMentor, models.RoleCreator, models.RoleAdmin}},
		"status":        bson.M{"enum": bson.A{"active", "disabled"}},
	})
}

func coursesSchema() bson.M {
	return objectSchema(bson.A{"title", "published"}, bson.M{
		"title":            nonBlank,
		"title_ci":         bson.M{"bsonType": "string"},
		"price":            bson.M{"bsonType": "number", "minimum": 0},
		"duration_hours":   bson.M{"bsonType": "number", "minimum": 0},
		"enrollment_count": bson.M{"bsonType": "number"},
		"published":        bson.M{"bsonType": "bool"},
		"creator_id":       bson.M{"bsonType": "objectId"},
		"modules":          bson.M{"bsonType": "array"},
		"resources":        bson.M{"bsonType": "array"},
	})
}

func enrollmentsSchema() bson.M {
	return objectSchema(bson.A{"student_id", "course_id", "status"}, bson.M{
		"student_id":  bson.M{"bsonType": "objectId"},
		"course_id":   bson.M{"bsonType": "objectId"},
		"progress":    percent(),
		"status":      bson.M{"enum": bson.A{models.EnrollmentActive, models.EnrollmentCompleted}},
		"enrolled_at": bson.M{"bsonType": "date"},
	})
}

func progressSchema() bson.M {
	return objectSchema(bson.A{"student_id", "course_id"}, bson.M{
		"student_id": bson.M{"bsonType": "objectId"},
		"course_id":  bson.M{"bsonType": "objectId"},
		"percentage": percent(),
		"updated_at": bson.M{"bsonType": "date"},
	})
}

func completedLessonsSchema() bson.M {
	return objectSchema(bson.A{"student_id", "course_id", "lesson_key"}, bson.M{
		"student_id":   bson.M{"bsonType": "objectId"},
		"course_id":    bson.M{"bsonType": "objectId"},
		"lesson_key":   bson.M{"bsonType": "string", "pattern": "^[0-9]+\\.[0-9]+$"},
		"completed_at": bson.M{"bsonType": "date"},
	})
}

func mentorAssignmentsSchema() bson.M {
	return objectSchema(bson.A{"mentor_id", "student_id", "created_at"}, bson.M{
		"mentor_id":       bson.M{"bsonType": "objectId"},
		"student_id":      bson.M{"bsonType": "objectId"},
		"created_at":      bson.M{"bsonType": "date"},
		"created_by_id":   bson.M{"bsonType": "objectId"},
		"created_by_name": bson.M{"bsonType": "string"},
	})
}

func paymentsSchema() bson.M {
	return objectSchema(bson.A{"student_id", "course_id", "status"}, bson.M{
		"student_id": bson.M{"bsonType": "objectId"},
		"course_id":  bson.M{"bsonType": "objectId"},
		"amount":     bson.M{"bsonType": "number", "minimum": 0},
		"status":     bson.M{"bsonType": "string"},
	})
}

func notificationsSchema() bson.M {
	return objectSchema(bson.A{"user_id", "kind", "message", "read", "created_at"}, bson.M{
		"user_id":    bson.M{"bsonType": "objectId"},
		"kind":       nonBlank,
		"message":    bson.M{"bsonType": "string"},
		"read":       bson.M{"bsonType": "bool"},
		"created_at": bson.M{"bsonType": "date"},
	})
}
