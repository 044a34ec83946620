package timeouts_test

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/learnhub/internal/app/system/timeouts"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestDefaults(t *testing.T) {
	timeouts.Reset()
	if timeouts.Ping() != timeouts.DefaultPing {
		t.Errorf("Ping() = %v, want %v", timeouts.Ping(), timeouts.DefaultPing)
	}
	if timeouts.Upload() != timeouts.DefaultUpload {
		t.Errorf("Upload() = %v, want %v", timeouts.Upload(), timeouts.DefaultUpload)
	}
}

func TestConfigure_IgnoresZero(t *testing.T) {
	t.Cleanup(timeouts.Reset)
	timeouts.Reset()

	timeouts.Configure(timeouts.Config{Short: 7 * time.Second})

	got := timeouts.Current()
	if got.Short != 7*time.Second {
		t.Errorf("Short = %v, want 7s", got.Short)
	}
	if got.Medium != timeouts.DefaultMedium {
		t.Errorf("Medium = %v, want default %v", got.Medium, timeouts.DefaultMedium)
	}
}

func TestWithTimeout_LogsOnDeadline(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	log := zap.New(core)

	ctx, cancel := timeouts.WithTimeout(context.Background(), time.Millisecond, log, "slow op")
	<-ctx.Done()
	cancel()

	if logs.Len() != 1 {
		t.Fatalf("expected 1 warning, got %d", logs.Len())
	}
	if op := logs.All()[0].ContextMap()["operation"]; op != "slow op" {
		t.Errorf("operation field = %v, want %q", op, "slow op")
	}
}

func TestWithTimeout_NoLogWhenCanceledEarly(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)

	_, cancel := timeouts.WithTimeout(context.Background(), time.Minute, zap.New(core), "fast op")
	cancel()

	if logs.Len() != 0 {
		t.Errorf("expected no warnings, got %d", logs.Len())
	}
}
