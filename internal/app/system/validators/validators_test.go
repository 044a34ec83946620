package validators_test

import (
	"testing"
	"time"

	"github.com/dalemusser/learnhub/internal/app/system/validators"
	"github.com/dalemusser/learnhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func setup(t *testing.T) *mongo.Database {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	return db
}

func TestEnsureAll_IdempotentAndCreatesCollections(t *testing.T) {
	db := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("second EnsureAll failed: %v", err)
	}

	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		t.Fatalf("ListCollectionNames failed: %v", err)
	}
	have := make(map[string]bool)
	for _, n := range names {
		have[n] = true
	}
	for _, want := range validators.Collections {
		if !have[want] {
			t.Errorf("expected collection %q to exist", want)
		}
	}
}

func TestValidators(t *testing.T) {
	db := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	now := time.Now().UTC()
	sid, cid := primitive.NewObjectID(), primitive.NewObjectID()

	tests := []struct {
		name    string
		coll    string
		doc     bson.M
		wantErr bool
	}{
		{"valid user", "users", bson.M{"full_name": "Sam", "email": "sam@example.com", "role": "student", "status": "active"}, false},
		{"user missing email", "users", bson.M{"full_name": "Sam", "role": "student"}, true},
		{"user blank name", "users", bson.M{"full_name": "   ", "email": "x@example.com", "role": "student"}, true},
		{"user bad role", "users", bson.M{"full_name": "Sam", "email": "s@example.com", "role": "owner"}, true},
		{"user bad status", "users", bson.M{"full_name": "Sam", "email": "t@example.com", "role": "mentor", "status": "gone"}, true},

		{"valid course", "courses", bson.M{"title": "Go", "published": false, "price": 0}, false},
		{"course negative price", "courses", bson.M{"title": "Go", "published": true, "price": -1}, true},
		{"course missing published", "courses", bson.M{"title": "Go"}, true},

		{"valid enrollment", "enrollments", bson.M{"student_id": sid, "course_id": cid, "status": "active", "progress": 10, "enrolled_at": now}, false},
		{"enrollment progress over 100", "enrollments", bson.M{"student_id": sid, "course_id": primitive.NewObjectID(), "status": "active", "progress": 101}, true},
		{"enrollment string id", "enrollments", bson.M{"student_id": sid.Hex(), "course_id": cid, "status": "active"}, true},

		{"valid lesson", "completed_lessons", bson.M{"student_id": sid, "course_id": cid, "lesson_key": "0.1"}, false},
		{"bad lesson key", "completed_lessons", bson.M{"student_id": sid, "course_id": cid, "lesson_key": "intro"}, true},

		{"valid assignment", "mentor_assignments", bson.M{"mentor_id": primitive.NewObjectID(), "student_id": sid, "created_at": now}, false},
		{"assignment missing mentor", "mentor_assignments", bson.M{"student_id": sid, "created_at": now}, true},

		{"valid notification", "notifications", bson.M{"user_id": sid, "kind": "enrollment", "message": "hi", "read": false, "created_at": now}, false},
		{"notification missing read", "notifications", bson.M{"user_id": sid, "kind": "enrollment", "message": "hi", "created_at": now}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := db.Collection(tt.coll).InsertOne(ctx, tt.doc)
			if tt.wantErr && err == nil {
				t.Error("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("insert failed: %v", err)
			}
		})
	}
}
