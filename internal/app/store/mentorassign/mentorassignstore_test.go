package mentorassign_test

import (
	"errors"
	"testing"

	"github.com/dalemusser/learnhub/internal/app/store/mentorassign"
	"github.com/dalemusser/learnhub/internal/domain/models"
	"github.com/dalemusser/learnhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := mentorassign.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	mentor, student := primitive.NewObjectID(), primitive.NewObjectID()
	a, err := store.Create(ctx, models.MentorAssignment{MentorID: mentor, StudentID: student})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if a.ID.IsZero() || a.CreatedAt.IsZero() {
		t.Errorf("expected id and created_at, got %+v", a)
	}

	got, err := store.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.MentorID != mentor || got.StudentID != student {
		t.Errorf("unexpected assignment %+v", got)
	}
}

func TestStore_Create_DuplicateRejectedWithoutSecondDocument(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := mentorassign.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	mentor, student := primitive.NewObjectID(), primitive.NewObjectID()
	if _, err := store.Create(ctx, models.MentorAssignment{MentorID: mentor, StudentID: student}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	_, err := store.Create(ctx, models.MentorAssignment{MentorID: mentor, StudentID: student})
	if !errors.Is(err, mentorassign.ErrDuplicateAssignment) {
		t.Fatalf("expected ErrDuplicateAssignment, got %v", err)
	}

	n, err := db.Collection("mentor_assignments").CountDocuments(ctx, bson.M{"mentor_id": mentor, "student_id": student})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("expected exactly 1 assignment document, got %d", n)
	}
}

func TestStore_SameMentorOtherStudentAllowed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := mentorassign.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	mentor := primitive.NewObjectID()
	for i := 0; i < 3; i++ {
		if _, err := store.Create(ctx, models.MentorAssignment{MentorID: mentor, StudentID: primitive.NewObjectID()}); err != nil {
			t.Fatalf("Create %d: %v", i, err)
		}
	}
	list, err := store.ListByMentor(ctx, mentor)
	if err != nil || len(list) != 3 {
		t.Errorf("ListByMentor = %d, %v", len(list), err)
	}
}

func TestStore_ListAndDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := mentorassign.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	m1, m2 := primitive.NewObjectID(), primitive.NewObjectID()
	s1 := primitive.NewObjectID()
	a1, err := store.Create(ctx, models.MentorAssignment{MentorID: m1, StudentID: s1})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := store.Create(ctx, models.MentorAssignment{MentorID: m2, StudentID: s1}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	byStudent, err := store.ListByStudent(ctx, s1)
	if err != nil || len(byStudent) != 2 {
		t.Errorf("ListByStudent = %d, %v", len(byStudent), err)
	}

	n, err := store.Delete(ctx, a1.ID)
	if err != nil || n != 1 {
		t.Errorf("Delete = %d, %v", n, err)
	}
	// re-creating after delete is allowed
	if _, err := store.Create(ctx, models.MentorAssignment{MentorID: m1, StudentID: s1}); err != nil {
		t.Errorf("re-create after delete: %v", err)
	}

	n, err = store.DeleteByUser(ctx, s1)
	if err != nil || n != 2 {
		t.Errorf("DeleteByUser = %d, %v", n, err)
	}
	all, err := store.ListAll(ctx)
	if err != nil || len(all) != 0 {
		t.Errorf("ListAll = %d, %v", len(all), err)
	}
}
