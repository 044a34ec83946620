// Package events publishes domain events on NATS and turns them into
// user notifications.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dalemusser/learnhub/internal/app/system/metrics"
	"github.com/nats-io/nats.go"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Subjects.
const (
	SubjectEnrollmentCreated = "learnhub.enrollment.created"
	SubjectMentorAssigned    = "learnhub.mentor.assigned"
	SubjectCoursePublished   = "learnhub.course.published"

	// SubjectAll matches every LearnHub subject.
	SubjectAll = "learnhub.>"
)

type EnrollmentCreated struct {
	EnrollmentID primitive.ObjectID `json:"enrollment_id"`
	StudentID    primitive.ObjectID `json:"student_id"`
	CourseID     primitive.ObjectID `json:"course_id"`
	CourseTitle  string             `json:"course_title"`
	At           time.Time          `json:"at"`
}

type MentorAssigned struct {
	AssignmentID primitive.ObjectID `json:"assignment_id"`
	MentorID     primitive.ObjectID `json:"mentor_id"`
	MentorName   string             `json:"mentor_name"`
	StudentID    primitive.ObjectID `json:"student_id"`
	StudentName  string             `json:"student_name"`
	At           time.Time          `json:"at"`
}

type CoursePublished struct {
	CourseID  primitive.ObjectID  `json:"course_id"`
	Title     string              `json:"title"`
	CreatorID *primitive.ObjectID `json:"creator_id,omitempty"`
	At        time.Time           `json:"at"`
}

// Publisher sends an event. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, subject string, v any) error
}

// Nop drops every event. Used when NATS is not configured.
type Nop struct{}

func (Nop) Publish(context.Context, string, any) error { return nil }

const (
	connectWait   = 5 * time.Second
	maxReconnects = -1
	reconnectWait = 2 * time.Second
)

// Connect dials NATS with reconnect handling that logs through zap.
func Connect(url, name string, log *zap.Logger) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name(name),
		nats.Timeout(connectWait),
		nats.MaxReconnects(maxReconnects),
		nats.ReconnectWait(reconnectWait),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("nats disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("nats reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats at %s: %w", url, err)
	}
	log.Info("connected to nats", zap.String("url", nc.ConnectedUrl()))
	return nc, nil
}

// NATSPublisher publishes JSON-encoded events.
type NATSPublisher struct {
	conn    *nats.Conn
	metrics *metrics.Metrics
}

func NewNATSPublisher(conn *nats.Conn, m *metrics.Metrics) *NATSPublisher {
	return &NATSPublisher{conn: conn, metrics: m}
}

func (p *NATSPublisher) Publish(ctx context.Context, subject string, v any) error {
	err := p.publish(ctx, subject, v)
	p.metrics.EventPublished(subject, err)
	return err
}

func (p *NATSPublisher) publish(ctx context.Context, subject string, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", subject, err)
	}
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}
