// Package ratelimit caps OTP issuance per (client, phone) pair inside a
// fixed window. The Redis implementation is the one that is correct for
// multi-instance deployments; the in-memory one only holds for a single
// process and is used for development and tests.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

const (
	// Window is the fixed rate-limit window. It resets once elapsed
	// rather than sliding.
	Window = 15 * time.Minute
	// MaxSends is the number of OTP sends allowed per window.
	MaxSends = 3
)

// Limiter reports whether another OTP send is allowed for the key.
// A denied request must not touch the counter.
type Limiter interface {
	Allow(ctx context.Context, clientID, phone string) (bool, error)
}

type memoryEntry struct {
	count       int
	windowStart time.Time
}

// MemoryLimiter is a process-local Limiter. Single-instance deployments only.
type MemoryLimiter struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	now     func() time.Time
}

// NewMemoryLimiter constructs a MemoryLimiter.
func NewMemoryLimiter() *MemoryLimiter {
	return NewMemoryLimiterWithClock(time.Now)
}

// NewMemoryLimiterWithClock constructs a MemoryLimiter with an injected
// clock, for tests that advance the window.
func NewMemoryLimiterWithClock(now func() time.Time) *MemoryLimiter {
	return &MemoryLimiter{
		entries: make(map[string]*memoryEntry),
		now:     now,
	}
}

// Allow implements Limiter.
func (l *MemoryLimiter) Allow(ctx context.Context, clientID, phone string) (bool, error) {
	key := clientID + ":" + phone
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.entries[key]
	if !ok || now.Sub(entry.windowStart) >= Window {
		l.entries[key] = &memoryEntry{count: 1, windowStart: now}
		return true, nil
	}

	if entry.count >= MaxSends {
		return false, nil
	}

	entry.count++
	return true, nil
}
