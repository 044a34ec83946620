// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/learnhub/internal/app/store/audit"
	"github.com/dalemusser/learnhub/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Destinations accepted by each Config field.
const (
	All = "all" // MongoDB + zap
	DB  = "db"  // MongoDB only
	Log = "log" // zap only
	Off = "off"
)

// Config selects the destination per event category.
type Config struct {
	Auth       string
	Admin      string
	Enrollment string
}

// Logger records audit events to MongoDB (via audit.Store) and zap.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

// ClientIP returns the first X-Forwarded-For hop, X-Real-IP, or RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.UserID != nil {
		fields = append(fields, zap.String("user_id", event.UserID.Hex()))
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

func (l *Logger) setting(category string) string {
	var s string
	switch category {
	case audit.CategoryAuth:
		s = l.config.Auth
	case audit.CategoryAdmin:
		s = l.config.Admin
	case audit.CategoryEnrollment:
		s = l.config.Enrollment
	}
	if s == "" {
		return All
	}
	return strings.ToLower(s)
}

// Log records an audit event based on configuration.
// A nil Logger is a no-op.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	setting := l.setting(event.Category)
	if setting == Off {
		return
	}
	if setting == All || setting == Log {
		l.logToZap(event)
	}
	if (setting == All || setting == DB) && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

func oidPtr(hex string) *primitive.ObjectID {
	oid, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return nil
	}
	return &oid
}

// base fills request context and the signed-in actor, if any.
func base(r *http.Request, category, eventType string) audit.Event {
	ev := audit.Event{
		Category:  category,
		EventType: eventType,
		IP:        ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
	}
	if u, ok := auth.CurrentUser(r); ok {
		ev.ActorID = oidPtr(u.ID)
	}
	return ev
}

// --- Authentication Events ---

// SignUp logs a self-service account creation.
func (l *Logger) SignUp(ctx context.Context, r *http.Request, userID primitive.ObjectID, email, role string) {
	ev := base(r, audit.CategoryAuth, audit.EventSignUp)
	ev.UserID = &userID
	ev.Details = map[string]string{"email": email, "role": role}
	l.Log(ctx, ev)
}

// LoginSuccess logs a successful sign-in.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	ev := base(r, audit.CategoryAuth, audit.EventLoginSuccess)
	ev.UserID = &userID
	ev.Details = map[string]string{"email": email}
	l.Log(ctx, ev)
}

// LoginFailed logs a failed sign-in. userID is nil when no account matched.
func (l *Logger) LoginFailed(ctx context.Context, r *http.Request, eventType string, userID *primitive.ObjectID, email, reason string) {
	ev := base(r, audit.CategoryAuth, eventType)
	ev.UserID = userID
	ev.Success = false
	ev.FailureReason = reason
	ev.Details = map[string]string{"attempted_email": email}
	l.Log(ctx, ev)
}

// Logout logs a sign-out. userIDStr comes from the session and may be empty.
func (l *Logger) Logout(ctx context.Context, r *http.Request, userIDStr string) {
	ev := base(r, audit.CategoryAuth, audit.EventLogout)
	ev.UserID = oidPtr(userIDStr)
	l.Log(ctx, ev)
}

// --- Admin Events ---

// UserChanged logs an admin create, update or delete of a user account.
func (l *Logger) UserChanged(ctx context.Context, r *http.Request, eventType string, targetID primitive.ObjectID, role string) {
	ev := base(r, audit.CategoryAdmin, eventType)
	ev.UserID = &targetID
	ev.Details = map[string]string{"role": role}
	l.Log(ctx, ev)
}

// CourseChanged logs a course create, update, publish or delete.
func (l *Logger) CourseChanged(ctx context.Context, r *http.Request, eventType string, courseID primitive.ObjectID, title string) {
	ev := base(r, audit.CategoryAdmin, eventType)
	ev.Details = map[string]string{"course_id": courseID.Hex(), "course_title": title}
	l.Log(ctx, ev)
}

// MentorAssignment logs a mentor assignment being created or removed.
func (l *Logger) MentorAssignment(ctx context.Context, r *http.Request, eventType string, mentorID, studentID primitive.ObjectID) {
	ev := base(r, audit.CategoryAdmin, eventType)
	ev.UserID = &studentID
	ev.Details = map[string]string{"mentor_id": mentorID.Hex()}
	l.Log(ctx, ev)
}

// --- Enrollment Events ---

// Enrollment logs a student joining or leaving a course.
func (l *Logger) Enrollment(ctx context.Context, r *http.Request, eventType string, studentID, courseID primitive.ObjectID) {
	ev := base(r, audit.CategoryEnrollment, eventType)
	ev.UserID = &studentID
	ev.Details = map[string]string{"course_id": courseID.Hex()}
	l.Log(ctx, ev)
}
