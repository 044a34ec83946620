package dashboard_test

import (
	"net/http"
	"testing"

	"github.com/dalemusser/learnhub/internal/app/features/dashboard"
	"github.com/dalemusser/learnhub/internal/app/store/mentorassign"
	"github.com/dalemusser/learnhub/internal/domain/models"
	"github.com/dalemusser/learnhub/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*dashboard.Handler, *mongo.Database, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return dashboard.NewHandler(db, zap.NewNop()), db, testutil.NewFixtures(t, db)
}

func TestServeDashboard_Unauthenticated(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := testutil.NewRecorder()
	h.ServeDashboard(rec, testutil.NewRequest("GET", "/api/dashboard"))
	rec.AssertStatus(t, http.StatusUnauthorized)
}

func TestServeAdmin(t *testing.T) {
	h, _, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	s1 := fx.CreateStudent(ctx, "Sam Student", "sam@example.com")
	s2 := fx.CreateStudent(ctx, "Olive Other", "olive@example.com")
	fx.CreateCreator(ctx, "Cora Creator", "cora@example.com")
	free := fx.CreateCourse(ctx, "React Basics", 0, nil)
	paid := fx.CreateCourse(ctx, "Advanced Node", 49.5, nil)
	fx.CreateEnrollment(ctx, s1.ID, free.ID, 0)
	fx.CreateEnrollment(ctx, s2.ID, paid.ID, 0)
	fx.CreatePayment(ctx, s2.ID, paid.ID, 49.5, models.PaymentSucceeded)
	fx.CreatePayment(ctx, s1.ID, paid.ID, 49.5, "failed")

	rec := testutil.NewRecorder()
	h.ServeDashboard(rec, testutil.NewAuthenticatedRequest("GET", "/api/dashboard", testutil.AdminUser()))
	rec.AssertStatus(t, http.StatusOK)

	var body struct {
		Summary struct {
			Totals struct {
				Users         int `json:"users"`
				Enrollments   int `json:"enrollments"`
				UsersEnrolled int `json:"users_enrolled"`
			} `json:"totals"`
			AverageProgressText string `json:"average_progress_text"`
		} `json:"summary"`
		Overview struct {
			UsersByRole map[string]int `json:"users_by_role"`
			Revenue     float64        `json:"revenue"`
		} `json:"overview"`
		Courses int `json:"courses"`
	}
	rec.DecodeJSON(t, &body)

	if body.Summary.Totals.Users != 3 || body.Summary.Totals.Enrollments != 2 || body.Summary.Totals.UsersEnrolled != 2 {
		t.Errorf("unexpected totals %+v", body.Summary.Totals)
	}
	if body.Summary.AverageProgressText != "0.00" {
		t.Errorf("average progress text = %q, want 0.00", body.Summary.AverageProgressText)
	}
	if body.Overview.UsersByRole[models.RoleStudent] != 2 || body.Overview.Revenue != 49.5 {
		t.Errorf("unexpected overview %+v", body.Overview)
	}
	if body.Courses != 2 {
		t.Errorf("courses = %d, want 2", body.Courses)
	}
}

func TestServeCreator_OnlyOwnCourses(t *testing.T) {
	h, _, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fx.CreateCreator(ctx, "Cora Creator", "cora@example.com")
	student := fx.CreateStudent(ctx, "Sam Student", "sam@example.com")
	mine := fx.CreateCourse(ctx, "Mine", 20, &creator.ID)
	other := fx.CreateCourse(ctx, "Other", 0, nil)
	fx.CreateEnrollment(ctx, student.ID, mine.ID, 0)
	fx.CreateEnrollment(ctx, student.ID, other.ID, 0)
	fx.CreatePayment(ctx, student.ID, mine.ID, 20, models.PaymentSucceeded)

	rec := testutil.NewRecorder()
	h.ServeDashboard(rec, testutil.NewAuthenticatedRequest("GET", "/api/dashboard", testutil.AsTestUser(creator)))
	rec.AssertStatus(t, http.StatusOK)

	var body struct {
		Courses []struct {
			Title       string `json:"title"`
			Enrollments int    `json:"enrollments"`
		} `json:"courses"`
		TotalRevenue float64 `json:"total_revenue"`
	}
	rec.DecodeJSON(t, &body)
	if len(body.Courses) != 1 || body.Courses[0].Title != "Mine" || body.Courses[0].Enrollments != 1 {
		t.Errorf("unexpected courses %+v", body.Courses)
	}
	if body.TotalRevenue != 20 {
		t.Errorf("revenue = %v, want 20", body.TotalRevenue)
	}
}

func TestServeStudent(t *testing.T) {
	h, db, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	student := fx.CreateStudent(ctx, "Sam Student", "sam@example.com")
	mentor := fx.CreateMentor(ctx, "Mia Mentor", "mia@example.com")
	c1 := fx.CreateCourse(ctx, "Go Basics", 0, nil)
	c2 := fx.CreateCourse(ctx, "Go in Depth", 0, nil)
	fx.CreateEnrollment(ctx, student.ID, c1.ID, 100)
	fx.CreateEnrollment(ctx, student.ID, c2.ID, 50)
	if _, err := mentorassign.New(db).Create(ctx, models.MentorAssignment{MentorID: mentor.ID, StudentID: student.ID}); err != nil {
		t.Fatalf("assign: %v", err)
	}

	rec := testutil.NewRecorder()
	h.ServeDashboard(rec, testutil.NewAuthenticatedRequest("GET", "/api/dashboard", testutil.AsTestUser(student)))
	rec.AssertStatus(t, http.StatusOK)

	var body struct {
		Courses []struct {
			TotalLessons int `json:"total_lessons"`
		} `json:"courses"`
		AverageProgress float64  `json:"average_progress"`
		Mentors         []string `json:"mentors"`
	}
	rec.DecodeJSON(t, &body)
	if len(body.Courses) != 2 || body.Courses[0].TotalLessons != 2 {
		t.Errorf("unexpected courses %+v", body.Courses)
	}
	if body.AverageProgress != 75 {
		t.Errorf("average = %v, want 75", body.AverageProgress)
	}
	if len(body.Mentors) != 1 || body.Mentors[0] != "Mia Mentor" {
		t.Errorf("mentors = %v", body.Mentors)
	}
}

func TestServeMentor(t *testing.T) {
	h, db, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	mentor := fx.CreateMentor(ctx, "Mia Mentor", "mia@example.com")
	assigned := fx.CreateStudent(ctx, "Sam Student", "sam@example.com")
	other := fx.CreateStudent(ctx, "Olive Other", "olive@example.com")
	course := fx.CreateCourse(ctx, "Go Basics", 0, nil)
	fx.CreateEnrollment(ctx, assigned.ID, course.ID, 0)
	fx.CreateEnrollment(ctx, other.ID, course.ID, 0)
	if _, err := mentorassign.New(db).Create(ctx, models.MentorAssignment{MentorID: mentor.ID, StudentID: assigned.ID}); err != nil {
		t.Fatalf("assign: %v", err)
	}

	rec := testutil.NewRecorder()
	h.ServeDashboard(rec, testutil.NewAuthenticatedRequest("GET", "/api/dashboard", testutil.AsTestUser(mentor)))
	rec.AssertStatus(t, http.StatusOK)

	var body struct {
		Students []struct {
			Name        string `json:"name"`
			Enrollments int    `json:"enrollments"`
		} `json:"students"`
	}
	rec.DecodeJSON(t, &body)
	if len(body.Students) != 1 || body.Students[0].Name != "Sam Student" || body.Students[0].Enrollments != 1 {
		t.Errorf("unexpected students %+v", body.Students)
	}
}
