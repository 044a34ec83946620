// Package ratelimit throttles sign-in and sign-up attempts with fixed
// windows kept in memory. Limits are per process.
package ratelimit

import (
	"net/http"
	"sync"
	"time"

	"github.com/dalemusser/learnhub/internal/app/system/auditlog"
	"github.com/dalemusser/learnhub/internal/app/system/normalize"
)

// Limiter allows up to limit hits per key per window.
type Limiter struct {
	mu      sync.Mutex
	windows map[string]*window
	limit   int
	period  time.Duration
	now     func() time.Time
}

type window struct {
	count     int
	expiresAt time.Time
}

// sweepAt is the map size at which Allow drops expired windows first.
const sweepAt = 4096

// New returns a Limiter.
func New(limit int, period time.Duration) *Limiter {
	return &Limiter{
		windows: make(map[string]*window),
		limit:   limit,
		period:  period,
		now:     time.Now,
	}
}

// Allow records a hit for key and reports whether it is within the limit.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if len(l.windows) >= sweepAt {
		l.sweep(now)
	}
	w, ok := l.windows[key]
	if !ok || !now.Before(w.expiresAt) {
		l.windows[key] = &window{count: 1, expiresAt: now.Add(l.period)}
		return true
	}
	if w.count >= l.limit {
		return false
	}
	w.count++
	return true
}

// Remaining returns how many hits key has left in its current window.
func (l *Limiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || !l.now().Before(w.expiresAt) {
		return l.limit
	}
	if n := l.limit - w.count; n > 0 {
		return n
	}
	return 0
}

// Reset forgets key.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, key)
}

// Sweep drops expired windows and returns how many were removed.
func (l *Limiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sweep(l.now())
}

func (l *Limiter) sweep(now time.Time) int {
	n := 0
	for key, w := range l.windows {
		if !now.Before(w.expiresAt) {
			delete(l.windows, key)
			n++
		}
	}
	return n
}

// AuthLimiter limits account attempts per client IP and per email.
type AuthLimiter struct {
	ip    *Limiter
	email *Limiter
}

// NewAuthLimiter returns the default limits: 10 attempts a minute per IP
// and 5 attempts per 5 minutes per email.
func NewAuthLimiter() *AuthLimiter {
	return NewAuthLimiterWithConfig(10, time.Minute, 5, 5*time.Minute)
}

func NewAuthLimiterWithConfig(ipLimit int, ipPeriod time.Duration, emailLimit int, emailPeriod time.Duration) *AuthLimiter {
	return &AuthLimiter{
		ip:    New(ipLimit, ipPeriod),
		email: New(emailLimit, emailPeriod),
	}
}

// Check records an attempt and returns false with a user-facing message
// when either limit is exceeded. A nil AuthLimiter allows everything.
func (a *AuthLimiter) Check(r *http.Request, email string) (bool, string) {
	if a == nil {
		return true, ""
	}
	if !a.ip.Allow(auditlog.ClientIP(r)) {
		return false, "Too many attempts. Please wait a minute before trying again."
	}
	if key := normalize.Email(email); key != "" {
		if !a.email.Allow(key) {
			return false, "Too many attempts for this account. Please wait a few minutes."
		}
	}
	return true, ""
}

// ResetEmail clears the per-email window after a successful sign-in.
func (a *AuthLimiter) ResetEmail(email string) {
	if a == nil {
		return
	}
	if key := normalize.Email(email); key != "" {
		a.email.Reset(key)
	}
}

// Sweep drops expired windows from both limiters.
func (a *AuthLimiter) Sweep() int {
	if a == nil {
		return 0
	}
	return a.ip.Sweep() + a.email.Sweep()
}
