// Package dashstats computes the dashboard summaries from raw collection
// reads. Every function is a one-shot batch over the slices it is handed;
// nothing is cached between calls.
package dashstats

import (
	"fmt"
	"math"
	"sort"

	"github.com/dalemusser/learnhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserStats is one student's slice of the platform totals.
type UserStats struct {
	UserID           primitive.ObjectID `json:"user_id"`
	Enrollments      int                `json:"enrollments"`
	ProgressRecords  int                `json:"progress_records"`
	CompletedLessons int                `json:"completed_lessons"`
	AverageProgress  float64            `json:"average_progress"`
}

// Totals are platform-wide counts.
type Totals struct {
	Users            int `json:"users"`
	Enrollments      int `json:"enrollments"`
	ProgressRecords  int `json:"progress_records"`
	CompletedLessons int `json:"completed_lessons"`

	// distinct students appearing in each collection
	UsersEnrolled       int `json:"users_enrolled"`
	UsersWithProgress   int `json:"users_with_progress"`
	UsersWithCompletion int `json:"users_with_completion"`
}

// Summary is the result of Summarize.
type Summary struct {
	Totals              Totals      `json:"totals"`
	AverageProgress     float64     `json:"average_progress"`
	AverageProgressText string      `json:"average_progress_text"`
	PerUser             []UserStats `json:"per_user"`
}

type acc struct {
	enrollments int
	progress    int
	completed   int
	pctSum      float64
}

// Summarize groups the records by student_id and totals them.
// PerUser holds every known user plus any student referenced only by
// records, ordered by id.
func Summarize(users []models.User, enrollments []models.Enrollment, progress []models.Progress, completed []models.CompletedLesson) Summary {
	byUser := make(map[primitive.ObjectID]*acc, len(users))
	get := func(id primitive.ObjectID) *acc {
		a, ok := byUser[id]
		if !ok {
			a = &acc{}
			byUser[id] = a
		}
		return a
	}

	for _, u := range users {
		get(u.ID)
	}

	enrolled := map[primitive.ObjectID]struct{}{}
	for _, e := range enrollments {
		get(e.StudentID).enrollments++
		enrolled[e.StudentID] = struct{}{}
	}

	withProgress := map[primitive.ObjectID]struct{}{}
	var pctTotal float64
	for _, p := range progress {
		a := get(p.StudentID)
		a.progress++
		a.pctSum += p.Percentage
		pctTotal += p.Percentage
		withProgress[p.StudentID] = struct{}{}
	}

	withCompletion := map[primitive.ObjectID]struct{}{}
	for _, c := range completed {
		get(c.StudentID).completed++
		withCompletion[c.StudentID] = struct{}{}
	}

	avg := Mean(pctTotal, len(progress))

	per := make([]UserStats, 0, len(byUser))
	for id, a := range byUser {
		per = append(per, UserStats{
			UserID:           id,
			Enrollments:      a.enrollments,
			ProgressRecords:  a.progress,
			CompletedLessons: a.completed,
			AverageProgress:  Mean(a.pctSum, a.progress),
		})
	}
	sort.Slice(per, func(i, j int) bool { return per[i].UserID.Hex() < per[j].UserID.Hex() })

	return Summary{
		Totals: Totals{
			Users:               len(users),
			Enrollments:         len(enrollments),
			ProgressRecords:     len(progress),
			CompletedLessons:    len(completed),
			UsersEnrolled:       len(enrolled),
			UsersWithProgress:   len(withProgress),
			UsersWithCompletion: len(withCompletion),
		},
		AverageProgress:     avg,
		AverageProgressText: FormatPercent(avg),
		PerUser:             per,
	}
}

// Mean is sum/n rounded to two decimals, or 0 when n is 0.
func Mean(sum float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return round2(sum / float64(n))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// FormatPercent renders v with two decimals.
func FormatPercent(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
