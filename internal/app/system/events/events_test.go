package events_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/dalemusser/learnhub/internal/app/system/events"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}

func TestNotifications(t *testing.T) {
	now := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	student := primitive.NewObjectID()
	mentor := primitive.NewObjectID()
	creator := primitive.NewObjectID()

	tests := []struct {
		name     string
		subject  string
		payload  any
		wantUser []primitive.ObjectID
		wantMsg  []string
	}{
		{
			name:     "enrollment",
			subject:  events.SubjectEnrollmentCreated,
			payload:  events.EnrollmentCreated{StudentID: student, CourseTitle: "React Basics"},
			wantUser: []primitive.ObjectID{student},
			wantMsg:  []string{"You are now enrolled in React Basics."},
		},
		{
			name:     "mentor assigned",
			subject:  events.SubjectMentorAssigned,
			payload:  events.MentorAssigned{MentorID: mentor, MentorName: "Ada", StudentID: student, StudentName: "Sam"},
			wantUser: []primitive.ObjectID{student, mentor},
			wantMsg:  []string{"Ada is now your mentor.", "You have been assigned to mentor Sam."},
		},
		{
			name:     "course published",
			subject:  events.SubjectCoursePublished,
			payload:  events.CoursePublished{Title: "Advanced Node", CreatorID: &creator},
			wantUser: []primitive.ObjectID{creator},
			wantMsg:  []string{"Your course Advanced Node is now live."},
		},
		{
			name:    "course without creator",
			subject: events.SubjectCoursePublished,
			payload: events.CoursePublished{Title: "Orphan"},
		},
		{
			name:    "unknown subject",
			subject: "learnhub.something.else",
			payload: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := events.Notifications(tt.subject, mustJSON(t, tt.payload), now)
			if err != nil {
				t.Fatalf("Notifications: %v", err)
			}
			if len(got) != len(tt.wantUser) {
				t.Fatalf("got %d notifications, want %d", len(got), len(tt.wantUser))
			}
			for i, n := range got {
				if n.UserID != tt.wantUser[i] {
					t.Errorf("[%d] user = %s, want %s", i, n.UserID.Hex(), tt.wantUser[i].Hex())
				}
				if n.Message != tt.wantMsg[i] {
					t.Errorf("[%d] message = %q, want %q", i, n.Message, tt.wantMsg[i])
				}
				if !n.CreatedAt.Equal(now) || n.Read {
					t.Errorf("[%d] unexpected created/read: %+v", i, n)
				}
			}
		})
	}
}

func TestNotifications_BadPayload(t *testing.T) {
	_, err := events.Notifications(events.SubjectEnrollmentCreated, []byte("{not json"), time.Now())
	if err == nil {
		t.Error("expected decode error")
	}
}

func TestNop(t *testing.T) {
	var p events.Publisher = events.Nop{}
	if err := p.Publish(context.Background(), events.SubjectCoursePublished, nil); err != nil {
		t.Errorf("Nop.Publish: %v", err)
	}
}
