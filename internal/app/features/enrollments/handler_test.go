package enrollments_test

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/learnhub/internal/app/features/courses"
	"github.com/dalemusser/learnhub/internal/app/features/enrollments"
	"github.com/dalemusser/learnhub/internal/app/store/mentorassign"
	"github.com/dalemusser/learnhub/internal/app/system/catalogcache"
	"github.com/dalemusser/learnhub/internal/app/system/events"
	"github.com/dalemusser/learnhub/internal/app/system/metrics"
	"github.com/dalemusser/learnhub/internal/domain/models"
	"github.com/dalemusser/learnhub/internal/testutil"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type recordingPublisher struct {
	mu       sync.Mutex
	subjects []string
	payloads []any
}

func (p *recordingPublisher) Publish(_ context.Context, subject string, v any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, subject)
	p.payloads = append(p.payloads, v)
	return nil
}

type env struct {
	h       *enrollments.Handler
	db      *mongo.Database
	fx      *testutil.Fixtures
	events  *recordingPublisher
	metrics *metrics.Metrics
}

func newEnv(t *testing.T) env {
	t.Helper()
	db := testutil.SetupTestDB(t)
	pub := &recordingPublisher{}
	m := metrics.New()
	h := enrollments.NewHandler(db, nil, pub, m, nil, zap.NewNop())
	return env{h: h, db: db, fx: testutil.NewFixtures(t, db), events: pub, metrics: m}
}

func withID(r *http.Request, id primitive.ObjectID) *http.Request {
	return testutil.WithChiURLParam(r, "id", id.Hex())
}

func enrollReq(t *testing.T, user testutil.TestUser, body map[string]any) *http.Request {
	return testutil.WithUser(testutil.NewJSONRequest(t, "POST", "/api/enrollments", body), user)
}

func courseCount(t *testing.T, e env, id primitive.ObjectID) int64 {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	var c models.Course
	if err := e.db.Collection("courses").FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		t.Fatalf("load course: %v", err)
	}
	return c.EnrollmentCount
}

func TestHandleEnroll_FreeCourse(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	student := e.fx.CreateStudent(ctx, "Sam Student", "sam@example.com")
	course := e.fx.CreateCourse(ctx, "Go Basics", 0, nil)

	rec := testutil.NewRecorder()
	e.h.HandleEnroll(rec, enrollReq(t, testutil.AsTestUser(student), map[string]any{"course_id": course.ID.Hex()}))
	rec.AssertStatus(t, http.StatusCreated)
	rec.AssertContains(t, `"course_title":"Go Basics"`)

	if got := courseCount(t, e, course.ID); got != 1 {
		t.Errorf("enrollment_count = %d, want 1", got)
	}
	if got := promtest.ToFloat64(e.metrics.EnrollmentsCreated); got != 1 {
		t.Errorf("enrollments metric = %v, want 1", got)
	}
	if len(e.events.subjects) != 1 || e.events.subjects[0] != events.SubjectEnrollmentCreated {
		t.Fatalf("events = %v", e.events.subjects)
	}
	ev := e.events.payloads[0].(events.EnrollmentCreated)
	if ev.StudentID != student.ID || ev.CourseTitle != "Go Basics" {
		t.Errorf("unexpected event payload %+v", ev)
	}
}

func popularTitles(t *testing.T, h *courses.Handler) []string {
	t.Helper()
	rec := testutil.NewRecorder()
	h.ServeList(rec, testutil.NewRequest("GET", "/api/courses?sort=popular"))
	rec.AssertStatus(t, http.StatusOK)
	var body struct {
		Courses []models.Course `json:"courses"`
	}
	rec.DecodeJSON(t, &body)
	out := make([]string, len(body.Courses))
	for i, c := range body.Courses {
		out[i] = c.Title
	}
	return out
}

func TestEnrollAndUnenroll_RefreshCachedCatalog(t *testing.T) {
	db := testutil.SetupTestDB(t)
	rdb := testutil.SetupTestRedis(t, 1)
	logger := zap.NewNop()
	cache := catalogcache.New(rdb, time.Hour, logger, nil)
	catalog := courses.NewHandler(db, cache, nil, nil, nil, logger)
	h := enrollments.NewHandler(db, cache, nil, nil, nil, logger)
	fx := testutil.NewFixtures(t, db)

	ctx, cancel := testutil.TestContext()
	defer cancel()

	student := fx.CreateStudent(ctx, "Sam Student", "sam@example.com")
	fx.CreateCourse(ctx, "Go Basics", 0, nil)
	fx.CreateCourse(ctx, "Rust Basics", 0, nil)

	before := popularTitles(t, catalog)
	if len(before) != 2 {
		t.Fatalf("catalog = %v, want 2 courses", before)
	}
	last := before[1]
	var target models.Course
	if err := db.Collection("courses").FindOne(ctx, bson.M{"title": last}).Decode(&target); err != nil {
		t.Fatalf("load course: %v", err)
	}

	rec := testutil.NewRecorder()
	h.HandleEnroll(rec, enrollReq(t, testutil.AsTestUser(student), map[string]any{"course_id": target.ID.Hex()}))
	rec.AssertStatus(t, http.StatusCreated)

	after := popularTitles(t, catalog)
	if len(after) != 2 || after[0] != last {
		t.Fatalf("popular order after enroll = %v, want %q first", after, last)
	}

	var created struct {
		ID primitive.ObjectID `json:"id"`
	}
	rec.DecodeJSON(t, &created)
	rec = testutil.NewRecorder()
	h.HandleUnenroll(rec, withID(testutil.NewAuthenticatedRequest("DELETE", "/x", testutil.AsTestUser(student)), created.ID))
	rec.AssertStatus(t, http.StatusNoContent)

	var reloaded struct {
		Courses []models.Course `json:"courses"`
	}
	rec = testutil.NewRecorder()
	catalog.ServeList(rec, testutil.NewRequest("GET", "/api/courses?sort=popular"))
	rec.DecodeJSON(t, &reloaded)
	for _, c := range reloaded.Courses {
		if c.EnrollmentCount != 0 {
			t.Errorf("%s enrollment_count = %d after unenroll, want 0", c.Title, c.EnrollmentCount)
		}
	}
}

func TestHandleEnroll_DuplicateRejected(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	student := e.fx.CreateStudent(ctx, "Sam Student", "sam@example.com")
	course := e.fx.CreateCourse(ctx, "Go Basics", 0, nil)
	user := testutil.AsTestUser(student)
	body := map[string]any{"course_id": course.ID.Hex()}

	rec := testutil.NewRecorder()
	e.h.HandleEnroll(rec, enrollReq(t, user, body))
	rec.AssertStatus(t, http.StatusCreated)

	rec = testutil.NewRecorder()
	e.h.HandleEnroll(rec, enrollReq(t, user, body))
	rec.AssertStatus(t, http.StatusConflict)

	n, err := e.db.Collection("enrollments").CountDocuments(ctx, bson.M{"student_id": student.ID})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("enrollments = %d, want 1", n)
	}
	if got := courseCount(t, e, course.ID); got != 1 {
		t.Errorf("enrollment_count = %d, want 1", got)
	}
	if got := promtest.ToFloat64(e.metrics.DuplicatesRejected.WithLabelValues("enrollment")); got != 1 {
		t.Errorf("duplicate metric = %v, want 1", got)
	}
}

func TestHandleEnroll_PaidCourse(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	student := e.fx.CreateStudent(ctx, "Sam Student", "sam@example.com")
	paid := e.fx.CreateCourse(ctx, "Go in Depth", 99, nil)
	user := testutil.AsTestUser(student)
	body := map[string]any{"course_id": paid.ID.Hex()}

	rec := testutil.NewRecorder()
	e.h.HandleEnroll(rec, enrollReq(t, user, body))
	rec.AssertStatus(t, http.StatusPaymentRequired)

	e.fx.CreatePayment(ctx, student.ID, paid.ID, 99, "pending")
	rec = testutil.NewRecorder()
	e.h.HandleEnroll(rec, enrollReq(t, user, body))
	rec.AssertStatus(t, http.StatusPaymentRequired)

	e.fx.CreatePayment(ctx, student.ID, paid.ID, 99, models.PaymentSucceeded)
	rec = testutil.NewRecorder()
	e.h.HandleEnroll(rec, enrollReq(t, user, body))
	rec.AssertStatus(t, http.StatusCreated)
}

func TestHandleEnroll_AccessRules(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	student := e.fx.CreateStudent(ctx, "Sam Student", "sam@example.com")
	other := e.fx.CreateStudent(ctx, "Olive Other", "olive@example.com")
	mentor := e.fx.CreateMentor(ctx, "Mia Mentor", "mia@example.com")
	course := e.fx.CreateCourse(ctx, "Go Basics", 0, nil)

	draft := e.fx.CreateCourse(ctx, "Draft", 0, nil)
	if _, err := e.db.Collection("courses").UpdateByID(ctx, draft.ID, bson.M{"$set": bson.M{"published": false}}); err != nil {
		t.Fatalf("unpublish: %v", err)
	}

	tests := []struct {
		name string
		user testutil.TestUser
		body map[string]any
		want int
	}{
		{"student for someone else", testutil.AsTestUser(student), map[string]any{"course_id": course.ID.Hex(), "student_id": other.ID.Hex()}, http.StatusForbidden},
		{"mentor enrolling self", testutil.AsTestUser(mentor), map[string]any{"course_id": course.ID.Hex()}, http.StatusForbidden},
		{"draft course", testutil.AsTestUser(student), map[string]any{"course_id": draft.ID.Hex()}, http.StatusNotFound},
		{"unknown course", testutil.AsTestUser(student), map[string]any{"course_id": primitive.NewObjectID().Hex()}, http.StatusNotFound},
		{"bad course id", testutil.AsTestUser(student), map[string]any{"course_id": "nope"}, http.StatusBadRequest},
		{"admin for unknown student", testutil.AdminUser(), map[string]any{"course_id": course.ID.Hex(), "student_id": primitive.NewObjectID().Hex()}, http.StatusBadRequest},
		{"admin for student", testutil.AdminUser(), map[string]any{"course_id": course.ID.Hex(), "student_id": other.ID.Hex()}, http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			e.h.HandleEnroll(rec, enrollReq(t, tt.user, tt.body))
			rec.AssertStatus(t, tt.want)
		})
	}
}

func TestServeList_RoleScopes(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := e.fx.CreateCreator(ctx, "Cora Creator", "cora@example.com")
	mentor := e.fx.CreateMentor(ctx, "Mia Mentor", "mia@example.com")
	s1 := e.fx.CreateStudent(ctx, "Sam Student", "sam@example.com")
	s2 := e.fx.CreateStudent(ctx, "Olive Other", "olive@example.com")

	owned := e.fx.CreateCourse(ctx, "Owned", 0, &creator.ID)
	other := e.fx.CreateCourse(ctx, "Other", 0, nil)

	e.fx.CreateEnrollment(ctx, s1.ID, owned.ID, 0)
	e.fx.CreateEnrollment(ctx, s1.ID, other.ID, 0)
	e.fx.CreateEnrollment(ctx, s2.ID, other.ID, 0)

	if _, err := mentorassign.New(e.db).Create(ctx, models.MentorAssignment{MentorID: mentor.ID, StudentID: s2.ID}); err != nil {
		t.Fatalf("assign mentor: %v", err)
	}

	tests := []struct {
		name   string
		user   testutil.TestUser
		query  string
		status int
		want   int
	}{
		{"admin sees all", testutil.AdminUser(), "", http.StatusOK, 3},
		{"admin filters by student", testutil.AdminUser(), "?student=" + s1.ID.Hex(), http.StatusOK, 2},
		{"student sees own", testutil.AsTestUser(s1), "", http.StatusOK, 2},
		{"student cannot view others", testutil.AsTestUser(s1), "?student=" + s2.ID.Hex(), http.StatusForbidden, 0},
		{"creator sees own courses", testutil.AsTestUser(creator), "", http.StatusOK, 1},
		{"mentor sees assigned", testutil.AsTestUser(mentor), "", http.StatusOK, 1},
		{"mentor unassigned student", testutil.AsTestUser(mentor), "?student=" + s1.ID.Hex(), http.StatusForbidden, 0},
		{"bad student id", testutil.AdminUser(), "?student=zzz", http.StatusBadRequest, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			e.h.ServeList(rec, testutil.NewAuthenticatedRequest("GET", "/api/enrollments"+tt.query, tt.user))
			rec.AssertStatus(t, tt.status)
			if tt.status != http.StatusOK {
				return
			}
			var body struct {
				Enrollments []struct {
					CourseTitle string `json:"course_title"`
				} `json:"enrollments"`
			}
			rec.DecodeJSON(t, &body)
			if len(body.Enrollments) != tt.want {
				t.Errorf("got %d enrollments, want %d", len(body.Enrollments), tt.want)
			}
			for _, row := range body.Enrollments {
				if row.CourseTitle == "" {
					t.Error("missing course title")
				}
			}
		})
	}
}

func TestHandleUnenroll_RemovesProgress(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	student := e.fx.CreateStudent(ctx, "Sam Student", "sam@example.com")
	course := e.fx.CreateCourse(ctx, "Go Basics", 0, nil)
	user := testutil.AsTestUser(student)

	rec := testutil.NewRecorder()
	e.h.HandleEnroll(rec, enrollReq(t, user, map[string]any{"course_id": course.ID.Hex()}))
	rec.AssertStatus(t, http.StatusCreated)
	var enr models.Enrollment
	rec.DecodeJSON(t, &enr)

	rec = testutil.NewRecorder()
	e.h.HandleCompleteLesson(rec, withID(testutil.WithUser(
		testutil.NewJSONRequest(t, "POST", "/x", map[string]any{"lesson_key": "0.0"}), user), enr.ID))
	rec.AssertStatus(t, http.StatusCreated)

	// another student cannot see it
	stranger := testutil.StudentUser()
	rec = testutil.NewRecorder()
	e.h.HandleUnenroll(rec, withID(testutil.NewAuthenticatedRequest("DELETE", "/x", stranger), enr.ID))
	rec.AssertStatus(t, http.StatusNotFound)

	rec = testutil.NewRecorder()
	e.h.HandleUnenroll(rec, withID(testutil.NewAuthenticatedRequest("DELETE", "/x", user), enr.ID))
	rec.AssertStatus(t, http.StatusNoContent)

	for _, coll := range []string{"enrollments", "progress", "completed_lessons"} {
		n, err := e.db.Collection(coll).CountDocuments(ctx, bson.M{"student_id": student.ID})
		if err != nil {
			t.Fatalf("count %s: %v", coll, err)
		}
		if n != 0 {
			t.Errorf("%s: %d documents left", coll, n)
		}
	}
	if got := courseCount(t, e, course.ID); got != 0 {
		t.Errorf("enrollment_count = %d, want 0", got)
	}
}

func TestHandleProgress(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	student := e.fx.CreateStudent(ctx, "Sam Student", "sam@example.com")
	course := e.fx.CreateCourse(ctx, "Go Basics", 0, nil)
	enr := e.fx.CreateEnrollment(ctx, student.ID, course.ID, 0)
	user := testutil.AsTestUser(student)

	tests := []struct {
		name   string
		body   map[string]any
		status int
		want   string
	}{
		{"partial", map[string]any{"progress": 40}, http.StatusOK, models.EnrollmentActive},
		{"complete", map[string]any{"progress": 100}, http.StatusOK, models.EnrollmentCompleted},
		{"over 100", map[string]any{"progress": 101}, http.StatusBadRequest, ""},
		{"negative", map[string]any{"progress": -1}, http.StatusBadRequest, ""},
		{"missing", map[string]any{}, http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			e.h.HandleProgress(rec, withID(testutil.WithUser(
				testutil.NewJSONRequest(t, "PATCH", "/x", tt.body), user), enr.ID))
			rec.AssertStatus(t, tt.status)
			if tt.status != http.StatusOK {
				return
			}
			var got models.Enrollment
			rec.DecodeJSON(t, &got)
			if got.Status != tt.want {
				t.Errorf("status = %q, want %q", got.Status, tt.want)
			}
		})
	}

	var p models.Progress
	if err := e.db.Collection("progress").FindOne(ctx, bson.M{"student_id": student.ID, "course_id": course.ID}).Decode(&p); err != nil {
		t.Fatalf("load progress: %v", err)
	}
	if p.Percentage != 100 {
		t.Errorf("progress record = %v, want 100", p.Percentage)
	}
}

func TestHandleCompleteLesson(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	student := e.fx.CreateStudent(ctx, "Sam Student", "sam@example.com")
	course := e.fx.CreateCourse(ctx, "Go Basics", 0, nil) // 1 module, 2 topics
	enr := e.fx.CreateEnrollment(ctx, student.ID, course.ID, 0)
	user := testutil.AsTestUser(student)

	complete := func(key string) *testutil.ResponseRecorder {
		rec := testutil.NewRecorder()
		e.h.HandleCompleteLesson(rec, withID(testutil.WithUser(
			testutil.NewJSONRequest(t, "POST", "/x", map[string]any{"lesson_key": key}), user), enr.ID))
		return rec
	}

	rec := complete("0.1")
	rec.AssertStatus(t, http.StatusCreated)
	var body struct {
		Enrollment models.Enrollment `json:"enrollment"`
		Completed  int               `json:"completed"`
		Total      int               `json:"total"`
	}
	rec.DecodeJSON(t, &body)
	if body.Completed != 1 || body.Total != 2 || body.Enrollment.Progress != 50 {
		t.Errorf("unexpected response %+v", body)
	}

	complete("0.1").AssertStatus(t, http.StatusConflict)
	complete("1.0").AssertStatus(t, http.StatusBadRequest)
	complete("0.x").AssertStatus(t, http.StatusBadRequest)

	rec = complete("0.0")
	rec.AssertStatus(t, http.StatusCreated)
	rec.DecodeJSON(t, &body)
	if body.Enrollment.Status != models.EnrollmentCompleted || body.Enrollment.Progress != 100 {
		t.Errorf("enrollment not completed: %+v", body.Enrollment)
	}
}

func TestLessonHelpers(t *testing.T) {
	c := models.Course{Modules: []models.Module{
		{Topics: []models.Topic{{}, {}}},
		{Topics: []models.Topic{{}}},
	}}
	if got := enrollments.TotalLessons(c); got != 3 {
		t.Errorf("TotalLessons = %d, want 3", got)
	}

	keys := map[string]bool{
		"0.0": true, "0.1": true, "1.0": true,
		"1.1": false, "2.0": false, "-1.0": false, "00.1": false, "0": false, "": false, "a.b": false,
	}
	for k, want := range keys {
		if got := enrollments.ValidLessonKey(c, k); got != want {
			t.Errorf("ValidLessonKey(%q) = %v, want %v", k, got, want)
		}
	}

	progress := []struct {
		done, total int
		want        float64
	}{
		{0, 3, 0}, {1, 3, 33.3}, {2, 3, 66.7}, {3, 3, 100}, {4, 3, 100}, {1, 0, 0},
	}
	for _, p := range progress {
		if got := enrollments.LessonProgress(p.done, p.total); got != p.want {
			t.Errorf("LessonProgress(%d, %d) = %v, want %v", p.done, p.total, got, p.want)
		}
	}
}
