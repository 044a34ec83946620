package dashstats

import (
	"sort"

	"github.com/dalemusser/learnhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Point is one chart sample.
type Point struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// AdminStats are the admin dashboard extras.
type AdminStats struct {
	UsersByRole        map[string]int `json:"users_by_role"`
	Revenue            float64        `json:"revenue"`
	SucceededPayments  int            `json:"succeeded_payments"`
	EnrollmentsByMonth []Point        `json:"enrollments_by_month"`
}

// AdminOverview counts users per role, sums succeeded payments and buckets
// enrollments by calendar month (UTC, "2006-01"), oldest first.
func AdminOverview(users []models.User, enrollments []models.Enrollment, payments []models.Payment) AdminStats {
	byRole := make(map[string]int)
	for _, u := range users {
		byRole[u.Role]++
	}

	revenue, succeeded := models.SucceededCents(payments)

	months := make(map[string]int)
	for _, e := range enrollments {
		if e.EnrolledAt.IsZero() {
			continue
		}
		months[e.EnrolledAt.UTC().Format("2006-01")]++
	}
	points := make([]Point, 0, len(months))
	for label, n := range months {
		points = append(points, Point{Label: label, Value: n})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Label < points[j].Label })

	return AdminStats{
		UsersByRole:        byRole,
		Revenue:            models.CentsToAmount(revenue),
		SucceededPayments:  succeeded,
		EnrollmentsByMonth: points,
	}
}

// CourseStats is one row of the creator dashboard.
type CourseStats struct {
	CourseID        primitive.ObjectID `json:"course_id"`
	Title           string             `json:"title"`
	Published       bool               `json:"published"`
	Enrollments     int                `json:"enrollments"`
	Completed       int                `json:"completed"`
	AverageProgress float64            `json:"average_progress"`
	Revenue         float64            `json:"revenue"`
}

// CreatorStats are the creator dashboard totals.
type CreatorStats struct {
	Courses          []CourseStats `json:"courses"`
	TotalEnrollments int           `json:"total_enrollments"`
	TotalRevenue     float64       `json:"total_revenue"`
}

// CreatorOverview reports on the given courses only; records for other
// courses are ignored. Rows keep the order of courses.
func CreatorOverview(courses []models.Course, enrollments []models.Enrollment, progress []models.Progress, payments []models.Payment) CreatorStats {
	idx := make(map[primitive.ObjectID]int, len(courses))
	rows := make([]CourseStats, len(courses))
	pct := make([]acc, len(courses))
	revenue := make([]int64, len(courses))
	for i, c := range courses {
		idx[c.ID] = i
		rows[i] = CourseStats{CourseID: c.ID, Title: c.Title, Published: c.Published}
	}

	for _, e := range enrollments {
		i, ok := idx[e.CourseID]
		if !ok {
			continue
		}
		rows[i].Enrollments++
		if e.Status == models.EnrollmentCompleted {
			rows[i].Completed++
		}
	}
	for _, p := range progress {
		i, ok := idx[p.CourseID]
		if !ok {
			continue
		}
		pct[i].progress++
		pct[i].pctSum += p.Percentage
	}
	for _, p := range payments {
		i, ok := idx[p.CourseID]
		if !ok || p.Status != models.PaymentSucceeded {
			continue
		}
		revenue[i] += p.Cents()
	}

	out := CreatorStats{Courses: rows}
	var total int64
	for i := range rows {
		rows[i].AverageProgress = Mean(pct[i].pctSum, pct[i].progress)
		rows[i].Revenue = models.CentsToAmount(revenue[i])
		out.TotalEnrollments += rows[i].Enrollments
		total += revenue[i]
	}
	out.TotalRevenue = models.CentsToAmount(total)
	return out
}

// StudentCourse is one row of the student dashboard.
type StudentCourse struct {
	EnrollmentID     primitive.ObjectID `json:"enrollment_id"`
	CourseID         primitive.ObjectID `json:"course_id"`
	Title            string             `json:"title"`
	ThumbnailURL     string             `json:"thumbnail_url,omitempty"`
	Progress         float64            `json:"progress"`
	Status           string             `json:"status"`
	CompletedLessons int                `json:"completed_lessons"`
	TotalLessons     int                `json:"total_lessons"`
}

// StudentOverview joins a student's enrollments with their courses and
// completed lessons. Enrollments whose course no longer exists are skipped.
func StudentOverview(enrollments []models.Enrollment, courses []models.Course, completed []models.CompletedLesson) []StudentCourse {
	byID := make(map[primitive.ObjectID]models.Course, len(courses))
	for _, c := range courses {
		byID[c.ID] = c
	}
	done := make(map[primitive.ObjectID]int)
	for _, cl := range completed {
		done[cl.CourseID]++
	}

	out := make([]StudentCourse, 0, len(enrollments))
	for _, e := range enrollments {
		c, ok := byID[e.CourseID]
		if !ok {
			continue
		}
		total := 0
		for _, m := range c.Modules {
			total += len(m.Topics)
		}
		out = append(out, StudentCourse{
			EnrollmentID:     e.ID,
			CourseID:         c.ID,
			Title:            c.Title,
			ThumbnailURL:     c.ThumbnailURL,
			Progress:         e.Progress,
			Status:           e.Status,
			CompletedLessons: done[c.ID],
			TotalLessons:     total,
		})
	}
	return out
}
