package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dalemusser/learnhub/internal/domain/models"
)

// Notification kinds.
const (
	KindEnrollment = "enrollment"
	KindMentor     = "mentor"
	KindCourse     = "course"
)

// Notifications maps an event to the notifications it produces. Unknown
// subjects yield nothing.
func Notifications(subject string, data []byte, now time.Time) ([]models.Notification, error) {
	switch subject {
	case SubjectEnrollmentCreated:
		var e EnrollmentCreated
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, fmt.Errorf("decode %s: %w", subject, err)
		}
		return []models.Notification{{
			UserID:    e.StudentID,
			Kind:      KindEnrollment,
			Message:   fmt.Sprintf("You are now enrolled in %s.", titleOr(e.CourseTitle, "a new course")),
			CreatedAt: now,
		}}, nil

	case SubjectMentorAssigned:
		var e MentorAssigned
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, fmt.Errorf("decode %s: %w", subject, err)
		}
		return []models.Notification{
			{
				UserID:    e.StudentID,
				Kind:      KindMentor,
				Message:   fmt.Sprintf("%s is now your mentor.", titleOr(e.MentorName, "A mentor")),
				CreatedAt: now,
			},
			{
				UserID:    e.MentorID,
				Kind:      KindMentor,
				Message:   fmt.Sprintf("You have been assigned to mentor %s.", titleOr(e.StudentName, "a new student")),
				CreatedAt: now,
			},
		}, nil

	case SubjectCoursePublished:
		var e CoursePublished
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, fmt.Errorf("decode %s: %w", subject, err)
		}
		if e.CreatorID == nil {
			return nil, nil
		}
		return []models.Notification{{
			UserID:    *e.CreatorID,
			Kind:      KindCourse,
			Message:   fmt.Sprintf("Your course %s is now live.", titleOr(e.Title, "")),
			CreatedAt: now,
		}}, nil
	}
	return nil, nil
}

func titleOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
