package coursestore_test

import (
	"errors"
	"testing"

	coursestore "github.com/dalemusser/learnhub/internal/app/store/courses"
	"github.com/dalemusser/learnhub/internal/domain/models"
	"github.com/dalemusser/learnhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_CreateAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := coursestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := primitive.NewObjectID()
	created, err := store.Create(ctx, models.Course{
		Title:           " React Basics ",
		Category:        "Programming",
		Level:           "Beginner",
		Price:           0,
		DurationHours:   8,
		EnrollmentCount: 99,
		CreatorID:       &creator,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.EnrollmentCount != 0 {
		t.Errorf("expected enrollment count reset to 0, got %d", created.EnrollmentCount)
	}
	if created.Category != "programming" || created.Level != "beginner" {
		t.Errorf("expected lowercased category/level, got %q/%q", created.Category, created.Level)
	}

	got, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Title != "React Basics" || got.CreatorID == nil || *got.CreatorID != creator {
		t.Errorf("unexpected course %+v", got)
	}
	if !got.IsFree() {
		t.Error("expected free course")
	}
}

func TestStore_UpdateKeepsCountAndOwner(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := coursestore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := primitive.NewObjectID()
	c := fixtures.CreateCourse(ctx, "Go 101", 0, &creator)
	if err := store.IncEnrollmentCount(ctx, c.ID, 1); err != nil {
		t.Fatalf("IncEnrollmentCount: %v", err)
	}

	updated, err := store.Update(ctx, c.ID, models.Course{Title: "Go 102", Price: 49, DurationHours: 40})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Title != "Go 102" || updated.Price != 49 {
		t.Errorf("update not applied: %+v", updated)
	}
	if updated.EnrollmentCount != 1 {
		t.Errorf("expected enrollment count kept, got %d", updated.EnrollmentCount)
	}
	if updated.CreatorID == nil || *updated.CreatorID != creator {
		t.Error("expected owner kept")
	}

	_, err = store.Update(ctx, primitive.NewObjectID(), models.Course{Title: "x"})
	if !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("expected ErrNoDocuments, got %v", err)
	}
}

func TestStore_IncEnrollmentCount_NeverNegative(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := coursestore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	c := fixtures.CreateCourse(ctx, "Go", 0, nil)
	if err := store.IncEnrollmentCount(ctx, c.ID, -1); err != nil {
		t.Fatalf("IncEnrollmentCount: %v", err)
	}
	got, err := store.GetByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.EnrollmentCount != 0 {
		t.Errorf("expected 0, got %d", got.EnrollmentCount)
	}
}

func TestStore_PublishThumbnailResources(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := coursestore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	c := fixtures.CreateCourse(ctx, "Design", 10, nil)

	got, err := store.SetPublished(ctx, c.ID, false)
	if err != nil || got.Published {
		t.Fatalf("SetPublished = %+v, %v", got, err)
	}
	got, err = store.SetThumbnail(ctx, c.ID, "https://cdn/x.png")
	if err != nil || got.ThumbnailURL != "https://cdn/x.png" {
		t.Fatalf("SetThumbnail = %+v, %v", got, err)
	}
	got, err = store.AddResource(ctx, c.ID, models.Resource{Name: "a.pdf", URL: "https://cdn/a.pdf"})
	if err != nil {
		t.Fatalf("AddResource: %v", err)
	}
	got, err = store.AddResource(ctx, c.ID, models.Resource{Name: "b.pdf", URL: "https://cdn/b.pdf"})
	if err != nil {
		t.Fatalf("AddResource: %v", err)
	}
	if len(got.Resources) != 2 || got.Resources[1].Name != "b.pdf" || got.Resources[0].UploadedAt.IsZero() {
		t.Errorf("unexpected resources %+v", got.Resources)
	}
}

func TestStore_Lists(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := coursestore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := primitive.NewObjectID()
	a := fixtures.CreateCourse(ctx, "A", 0, &creator)
	b := fixtures.CreateCourse(ctx, "B", 0, nil)
	if _, err := store.SetPublished(ctx, b.ID, false); err != nil {
		t.Fatalf("SetPublished: %v", err)
	}

	pub, err := store.ListPublished(ctx)
	if err != nil {
		t.Fatalf("ListPublished: %v", err)
	}
	if len(pub) != 1 || pub[0].ID != a.ID {
		t.Errorf("expected only A published, got %+v", pub)
	}

	all, err := store.ListAll(ctx)
	if err != nil || len(all) != 2 {
		t.Errorf("ListAll = %d, %v", len(all), err)
	}

	mine, err := store.ListByCreator(ctx, creator)
	if err != nil || len(mine) != 1 || mine[0].ID != a.ID {
		t.Errorf("ListByCreator = %+v, %v", mine, err)
	}

	many, err := store.GetMany(ctx, []primitive.ObjectID{a.ID, primitive.NewObjectID()})
	if err != nil || len(many) != 1 {
		t.Errorf("GetMany = %+v, %v", many, err)
	}

	n, err := store.Delete(ctx, a.ID)
	if err != nil || n != 1 {
		t.Errorf("Delete = %d, %v", n, err)
	}
}
