package auditlog_test

import (
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/learnhub/internal/app/store/audit"
	"github.com/dalemusser/learnhub/internal/app/system/auditlog"
	"github.com/dalemusser/learnhub/internal/app/system/auth"
	"github.com/dalemusser/learnhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_NilLogger(t *testing.T) {
	var logger *auditlog.Logger
	ctx, cancel := testutil.TestContext()
	defer cancel()
	req := httptest.NewRequest("GET", "/", nil)

	// no-ops, must not panic
	logger.Log(ctx, audit.Event{EventType: "test"})
	logger.LoginSuccess(ctx, req, primitive.NewObjectID(), "a@example.com")
	logger.Logout(ctx, req, primitive.NewObjectID().Hex())
}

func TestLogger_LogOnly_NoStore(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := auditlog.New(nil, zap.New(core), auditlog.Config{Auth: auditlog.Log})
	ctx, cancel := testutil.TestContext()
	defer cancel()

	req := httptest.NewRequest("POST", "/api/account/signin", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	logger.LoginSuccess(ctx, req, primitive.NewObjectID(), "ada@example.com")

	entries := logs.FilterMessage("audit event").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 audit log line, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["ip"] != "203.0.113.9" {
		t.Errorf("expected first forwarded hop, got %v", fields["ip"])
	}
	if fields["detail_email"] != "ada@example.com" {
		t.Errorf("expected email detail, got %v", fields["detail_email"])
	}
}

func TestLogger_FailureLogsAtWarn(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := auditlog.New(nil, zap.New(core), auditlog.Config{Auth: auditlog.Log})
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger.LoginFailed(ctx, httptest.NewRequest("POST", "/", nil), audit.EventLoginFailedWrongPassword, nil, "x@example.com", "wrong password")

	entries := logs.All()
	if len(entries) != 1 || entries[0].Level != zap.WarnLevel {
		t.Fatalf("expected one warn entry, got %+v", entries)
	}
}

func TestLogger_ConfigOff(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{Auth: auditlog.Off, Admin: auditlog.Off, Enrollment: auditlog.Off})
	userID := primitive.NewObjectID()
	logger.LoginSuccess(ctx, httptest.NewRequest("POST", "/", nil), userID, "a@example.com")

	n, err := store.CountByFilter(ctx, audit.QueryFilter{})
	if err != nil {
		t.Fatalf("CountByFilter: %v", err)
	}
	if n != 0 {
		t.Errorf("expected no events when config is off, got %d", n)
	}
}

func TestLogger_DBStoresActorAndTarget(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{Admin: auditlog.DB})
	admin := primitive.NewObjectID()
	student := primitive.NewObjectID()
	mentor := primitive.NewObjectID()

	req := auth.WithTestUser(httptest.NewRequest("POST", "/api/mentor-assignments", nil),
		&auth.SessionUser{ID: admin.Hex(), Role: "admin"})
	logger.MentorAssignment(ctx, req, audit.EventMentorAssigned, mentor, student)

	events, err := store.GetByUser(ctx, student, 10)
	if err != nil {
		t.Fatalf("GetByUser: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	ev := events[0]
	if ev.ActorID == nil || *ev.ActorID != admin {
		t.Errorf("expected actor %s, got %v", admin.Hex(), ev.ActorID)
	}
	if ev.Details["mentor_id"] != mentor.Hex() {
		t.Errorf("expected mentor detail, got %v", ev.Details)
	}
}

func TestLogger_CategoryFilteredByConfig(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{Auth: auditlog.Off, Enrollment: auditlog.DB})
	student := primitive.NewObjectID()
	req := httptest.NewRequest("POST", "/", nil)

	logger.LoginSuccess(ctx, req, student, "s@example.com")
	logger.Enrollment(ctx, req, audit.EventEnrolled, student, primitive.NewObjectID())

	events, err := store.GetByUser(ctx, student, 10)
	if err != nil {
		t.Fatalf("GetByUser: %v", err)
	}
	if len(events) != 1 || events[0].EventType != audit.EventEnrolled {
		t.Errorf("expected only the enrollment event, got %+v", events)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"forwarded", map[string]string{"X-Forwarded-For": "1.2.3.4"}, "1.2.3.4"},
		{"forwarded chain", map[string]string{"X-Forwarded-For": " 1.2.3.4 , 5.6.7.8"}, "1.2.3.4"},
		{"real ip", map[string]string{"X-Real-IP": "9.9.9.9"}, "9.9.9.9"},
		{"remote addr", nil, "192.0.2.1:1234"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			if got := auditlog.ClientIP(req); got != tc.want {
				t.Errorf("ClientIP = %q, want %q", got, tc.want)
			}
		})
	}
}
