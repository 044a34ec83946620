package users_test

import (
	"fmt"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/dalemusser/learnhub/internal/app/features/courses"
	"github.com/dalemusser/learnhub/internal/app/features/users"
	"github.com/dalemusser/learnhub/internal/app/store/mentorassign"
	"github.com/dalemusser/learnhub/internal/app/system/catalogcache"
	"github.com/dalemusser/learnhub/internal/domain/models"
	"github.com/dalemusser/learnhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*users.Handler, *mongo.Database, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return users.NewHandler(db, nil, nil, zap.NewNop()), db, testutil.NewFixtures(t, db)
}

func adminJSON(t *testing.T, method, target string, body any) *http.Request {
	return testutil.WithUser(testutil.NewJSONRequest(t, method, target, body), testutil.AdminUser())
}

func TestHandleCreate(t *testing.T) {
	h, _, _ := newTestHandler(t)

	tests := []struct {
		name   string
		body   map[string]string
		status int
	}{
		{"mentor", map[string]string{"full_name": "Mia Mentor", "email": "MIA@example.com", "role": "mentor", "password": "longenough"}, http.StatusCreated},
		{"duplicate email", map[string]string{"full_name": "Mia Again", "email": "mia@example.com", "role": "student", "password": "longenough"}, http.StatusConflict},
		{"bad role", map[string]string{"full_name": "X", "email": "x@example.com", "role": "owner", "password": "longenough"}, http.StatusBadRequest},
		{"short password", map[string]string{"full_name": "X", "email": "x@example.com", "role": "student", "password": "short"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			h.HandleCreate(rec, adminJSON(t, "POST", "/api/users", tt.body))
			rec.AssertStatus(t, tt.status)
		})
	}
}

func TestServeList_FiltersByRole(t *testing.T) {
	h, _, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateStudent(ctx, "Sam Student", "sam@example.com")
	fx.CreateStudent(ctx, "Olive Other", "olive@example.com")
	fx.CreateMentor(ctx, "Mia Mentor", "mia@example.com")

	for query, want := range map[string]int{"": 3, "?role=student": 2, "?role=mentor": 1, "?role=admin": 0} {
		rec := testutil.NewRecorder()
		h.ServeList(rec, testutil.NewAuthenticatedRequest("GET", "/api/users"+query, testutil.AdminUser()))
		rec.AssertStatus(t, http.StatusOK)
		var body struct {
			Users []models.User `json:"users"`
		}
		rec.DecodeJSON(t, &body)
		if len(body.Users) != want {
			t.Errorf("%q: got %d users, want %d", query, len(body.Users), want)
		}
	}

	rec := testutil.NewRecorder()
	h.ServeList(rec, testutil.NewAuthenticatedRequest("GET", "/api/users?role=owner", testutil.AdminUser()))
	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestServeList_Paging(t *testing.T) {
	h, _, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for i := range 55 {
		fx.CreateStudent(ctx, fmt.Sprintf("Student %02d", i), fmt.Sprintf("s%02d@example.com", i))
	}

	type page struct {
		Users      []models.User `json:"users"`
		HasPrev    bool          `json:"has_prev"`
		HasNext    bool          `json:"has_next"`
		PrevCursor string        `json:"prev_cursor"`
		NextCursor string        `json:"next_cursor"`
	}
	get := func(query string) page {
		t.Helper()
		rec := testutil.NewRecorder()
		h.ServeList(rec, testutil.NewAuthenticatedRequest("GET", "/api/users?role=student"+query, testutil.AdminUser()))
		rec.AssertStatus(t, http.StatusOK)
		var p page
		rec.DecodeJSON(t, &p)
		return p
	}

	first := get("")
	if len(first.Users) != 50 || first.HasPrev || !first.HasNext || first.NextCursor == "" {
		t.Fatalf("first page: len=%d prev=%v next=%v", len(first.Users), first.HasPrev, first.HasNext)
	}
	if first.Users[0].FullName != "Student 00" || first.Users[49].FullName != "Student 49" {
		t.Errorf("first page bounds: %q..%q", first.Users[0].FullName, first.Users[49].FullName)
	}

	second := get("&after=" + url.QueryEscape(first.NextCursor))
	if len(second.Users) != 5 || !second.HasPrev || second.HasNext {
		t.Fatalf("second page: len=%d prev=%v next=%v", len(second.Users), second.HasPrev, second.HasNext)
	}
	if second.Users[0].FullName != "Student 50" {
		t.Errorf("second page starts at %q", second.Users[0].FullName)
	}

	back := get("&before=" + url.QueryEscape(second.PrevCursor))
	if len(back.Users) != 50 || back.HasPrev || !back.HasNext {
		t.Fatalf("back page: len=%d prev=%v next=%v", len(back.Users), back.HasPrev, back.HasNext)
	}
	if back.Users[0].FullName != "Student 00" || back.Users[49].FullName != "Student 49" {
		t.Errorf("back page bounds: %q..%q", back.Users[0].FullName, back.Users[49].FullName)
	}
}

func TestHandleUpdate(t *testing.T) {
	h, _, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	s := fx.CreateStudent(ctx, "Sam Student", "sam@example.com")
	fx.CreateStudent(ctx, "Olive Other", "olive@example.com")

	update := func(id primitive.ObjectID, body map[string]string, user testutil.TestUser) *testutil.ResponseRecorder {
		rec := testutil.NewRecorder()
		req := testutil.WithUser(testutil.NewJSONRequest(t, "PUT", "/x", body), user)
		h.HandleUpdate(rec, testutil.WithChiURLParam(req, "id", id.Hex()))
		return rec
	}

	rec := update(s.ID, map[string]string{"full_name": "Samuel Student", "email": "sam@example.com", "role": "mentor"}, testutil.AdminUser())
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"role":"mentor"`)
	rec.AssertContains(t, `"full_name":"Samuel Student"`)

	update(s.ID, map[string]string{"full_name": "Sam", "email": "olive@example.com", "role": "student"}, testutil.AdminUser()).
		AssertStatus(t, http.StatusConflict)
	update(primitive.NewObjectID(), map[string]string{"full_name": "Nobody", "email": "n@example.com", "role": "student"}, testutil.AdminUser()).
		AssertStatus(t, http.StatusNotFound)

	admin := fx.CreateAdmin(ctx, "Ada Admin", "ada@example.com")
	update(admin.ID, map[string]string{"full_name": "Ada", "email": "ada@example.com", "role": "student"}, testutil.AsTestUser(admin)).
		AssertStatus(t, http.StatusBadRequest)
}

func TestHandleDelete_Cascades(t *testing.T) {
	h, db, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	student := fx.CreateStudent(ctx, "Sam Student", "sam@example.com")
	mentor := fx.CreateMentor(ctx, "Mia Mentor", "mia@example.com")
	course := fx.CreateCourse(ctx, "Go Basics", 0, nil)
	fx.CreateEnrollment(ctx, student.ID, course.ID, 50)
	if _, err := db.Collection("courses").UpdateByID(ctx, course.ID, bson.M{"$set": bson.M{"enrollment_count": 1}}); err != nil {
		t.Fatalf("set count: %v", err)
	}
	if _, err := db.Collection("progress").InsertOne(ctx, models.Progress{StudentID: student.ID, CourseID: course.ID, Percentage: 50}); err != nil {
		t.Fatalf("insert progress: %v", err)
	}
	if _, err := mentorassign.New(db).Create(ctx, models.MentorAssignment{MentorID: mentor.ID, StudentID: student.ID}); err != nil {
		t.Fatalf("assign: %v", err)
	}

	rec := testutil.NewRecorder()
	h.HandleDelete(rec, testutil.WithChiURLParam(
		testutil.NewAuthenticatedRequest("DELETE", "/x", testutil.AdminUser()), "id", student.ID.Hex()))
	rec.AssertStatus(t, http.StatusNoContent)

	checks := map[string]bson.M{
		"users":              {"_id": student.ID},
		"enrollments":        {"student_id": student.ID},
		"progress":           {"student_id": student.ID},
		"mentor_assignments": {"student_id": student.ID},
	}
	for coll, filter := range checks {
		n, err := db.Collection(coll).CountDocuments(ctx, filter)
		if err != nil {
			t.Fatalf("count %s: %v", coll, err)
		}
		if n != 0 {
			t.Errorf("%s: %d documents left", coll, n)
		}
	}

	var c models.Course
	if err := db.Collection("courses").FindOne(ctx, bson.M{"_id": course.ID}).Decode(&c); err != nil {
		t.Fatalf("load course: %v", err)
	}
	if c.EnrollmentCount != 0 {
		t.Errorf("enrollment_count = %d, want 0", c.EnrollmentCount)
	}
}

func TestHandleDelete_RefreshesCachedCatalog(t *testing.T) {
	db := testutil.SetupTestDB(t)
	rdb := testutil.SetupTestRedis(t, 2)
	logger := zap.NewNop()
	cache := catalogcache.New(rdb, time.Hour, logger, nil)
	catalog := courses.NewHandler(db, cache, nil, nil, nil, logger)
	h := users.NewHandler(db, cache, nil, logger)
	fx := testutil.NewFixtures(t, db)

	ctx, cancel := testutil.TestContext()
	defer cancel()

	student := fx.CreateStudent(ctx, "Sam Student", "sam@example.com")
	course := fx.CreateCourse(ctx, "Go Basics", 0, nil)
	fx.CreateEnrollment(ctx, student.ID, course.ID, 0)
	if _, err := db.Collection("courses").UpdateByID(ctx, course.ID, bson.M{"$set": bson.M{"enrollment_count": 1}}); err != nil {
		t.Fatalf("set count: %v", err)
	}

	count := func() int64 {
		t.Helper()
		rec := testutil.NewRecorder()
		catalog.ServeList(rec, testutil.NewRequest("GET", "/api/courses"))
		rec.AssertStatus(t, http.StatusOK)
		var body struct {
			Courses []models.Course `json:"courses"`
		}
		rec.DecodeJSON(t, &body)
		if len(body.Courses) != 1 {
			t.Fatalf("catalog = %d courses, want 1", len(body.Courses))
		}
		return body.Courses[0].EnrollmentCount
	}

	if got := count(); got != 1 {
		t.Fatalf("cached enrollment_count = %d, want 1", got)
	}

	rec := testutil.NewRecorder()
	h.HandleDelete(rec, testutil.WithChiURLParam(
		testutil.NewAuthenticatedRequest("DELETE", "/x", testutil.AdminUser()), "id", student.ID.Hex()))
	rec.AssertStatus(t, http.StatusNoContent)

	if got := count(); got != 0 {
		t.Errorf("enrollment_count after delete = %d, want 0", got)
	}
}

func TestHandleDelete_Guards(t *testing.T) {
	h, _, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fx.CreateAdmin(ctx, "Ada Admin", "ada@example.com")
	creator := fx.CreateCreator(ctx, "Cora Creator", "cora@example.com")
	fx.CreateCourse(ctx, "Owned", 0, &creator.ID)

	del := func(id primitive.ObjectID, user testutil.TestUser) *testutil.ResponseRecorder {
		rec := testutil.NewRecorder()
		h.HandleDelete(rec, testutil.WithChiURLParam(testutil.NewAuthenticatedRequest("DELETE", "/x", user), "id", id.Hex()))
		return rec
	}
	del(admin.ID, testutil.AsTestUser(admin)).AssertStatus(t, http.StatusBadRequest)
	del(creator.ID, testutil.AsTestUser(admin)).AssertStatus(t, http.StatusConflict)
	del(primitive.NewObjectID(), testutil.AsTestUser(admin)).AssertStatus(t, http.StatusNotFound)
}
