package indexes_test

import (
	"context"
	"strings"
	"testing"

	"github.com/dalemusser/learnhub/internal/app/system/indexes"
	"github.com/dalemusser/learnhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func indexNames(t *testing.T, ctx context.Context, coll *mongo.Collection) map[string]bool {
	t.Helper()
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		t.Fatalf("List indexes failed: %v", err)
	}
	defer cur.Close(ctx)

	names := make(map[string]bool)
	for cur.Next(ctx) {
		var idx bson.M
		if err := cur.Decode(&idx); err != nil {
			continue
		}
		if name, ok := idx["name"].(string); ok {
			names[name] = true
		}
	}
	return names
}

func TestEnsureAll_Idempotent(t *testing.T) {
	// SetupTestDB already ran EnsureAll once.
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesIndexes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	want := map[string][]string{
		"users":              {"uniq_users_email", "idx_users_role_status_fullnameci_id"},
		"courses":            {"idx_courses_published_created", "idx_courses_creator_titleci"},
		"enrollments":        {"uniq_enrollments_student_course", "idx_enrollments_course_status"},
		"progress":           {"uniq_progress_student_course", "idx_progress_course"},
		"completed_lessons":  {"uniq_completed_student_course_lesson"},
		"payments":           {"idx_payments_student_course_status", "idx_payments_created"},
		"mentor_assignments": {"uniq_ma_mentor_student", "idx_ma_student"},
		"notifications":      {"idx_notifications_user_read_created"},
		"audit_events":       {"idx_audit_created", "idx_audit_category_created"},
	}

	for coll, names := range want {
		t.Run(coll, func(t *testing.T) {
			got := indexNames(t, ctx, db.Collection(coll))
			for _, n := range names {
				if !got[n] {
					t.Errorf("expected index %q on %s, have %v", n, coll, got)
				}
			}
		})
	}
}

func TestEnsureAll_UniquePairsEnforced(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	mentor := primitive.NewObjectID()
	student := primitive.NewObjectID()
	course := primitive.NewObjectID()

	tests := []struct {
		coll string
		doc  func() bson.M
	}{
		{"mentor_assignments", func() bson.M { return bson.M{"mentor_id": mentor, "student_id": student} }},
		{"enrollments", func() bson.M { return bson.M{"student_id": student, "course_id": course} }},
		{"completed_lessons", func() bson.M {
			return bson.M{"student_id": student, "course_id": course, "lesson_key": "0.1"}
		}},
		{"users", func() bson.M { return bson.M{"email": "dup@example.com"} }},
	}

	for _, tc := range tests {
		t.Run(tc.coll, func(t *testing.T) {
			c := db.Collection(tc.coll)
			if _, err := c.InsertOne(ctx, tc.doc()); err != nil {
				t.Fatalf("first insert: %v", err)
			}
			_, err := c.InsertOne(ctx, tc.doc())
			if !mongo.IsDuplicateKeyError(err) {
				t.Fatalf("expected duplicate key error, got %v", err)
			}
			n, err := c.CountDocuments(ctx, bson.M{})
			if err != nil {
				t.Fatalf("count: %v", err)
			}
			if n != 1 {
				t.Errorf("expected 1 document, got %d", n)
			}
		})
	}
}

func TestEnsureAll_ReportsExistingDuplicates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	c := db.Collection("mentor_assignments")
	if _, err := c.Indexes().DropOne(ctx, "uniq_ma_mentor_student"); err != nil {
		t.Fatalf("drop index: %v", err)
	}
	mentor, student := primitive.NewObjectID(), primitive.NewObjectID()
	for i := 0; i < 2; i++ {
		if _, err := c.InsertOne(ctx, bson.M{"mentor_id": mentor, "student_id": student}); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	err := indexes.EnsureAll(ctx, db)
	if err == nil {
		t.Fatal("expected error when duplicates block a unique index")
	}
	if !strings.Contains(err.Error(), "mentor_assignments") || !strings.Contains(err.Error(), "duplicates present") {
		t.Errorf("expected duplicate hint naming the collection, got %v", err)
	}
}
