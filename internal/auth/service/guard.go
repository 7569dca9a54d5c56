package service

import (
	"sync"
	"time"
)

type failureRecord struct {
	count       int
	windowStart time.Time
}

// Guard is the brute-force guard: a per-client failure counter with a fixed
// window. Once the count reaches the threshold, the client must present a
// CAPTCHA token for the remainder of the window. A successful login forgives
// all prior failures.
type Guard struct {
	threshold int
	window    time.Duration
	now       func() time.Time

	mu       sync.RWMutex
	failures map[string]failureRecord
}

// NewGuard constructs a guard with the given failure threshold and window.
func NewGuard(threshold int, window time.Duration) *Guard {
	return &Guard{
		threshold: threshold,
		window:    window,
		now:       time.Now,
		failures:  make(map[string]failureRecord),
	}
}

// RecordFailure increments the failure counter for clientID, starting a new
// window if the previous one has lapsed.
func (g *Guard) RecordFailure(clientID string) {
	now := g.now()

	g.mu.Lock()
	defer g.mu.Unlock()

	record, ok := g.failures[clientID]
	if !ok || now.Sub(record.windowStart) > g.window {
		record = failureRecord{windowStart: now}
	}
	record.count++
	g.failures[clientID] = record
}

// RecordSuccess clears the counter for clientID entirely.
func (g *Guard) RecordSuccess(clientID string) {
	g.mu.Lock()
	delete(g.failures, clientID)
	g.mu.Unlock()
}

// CaptchaRequired reports whether clientID has reached the failure threshold
// within the current window. Lapsed windows are evicted on access.
func (g *Guard) CaptchaRequired(clientID string) bool {
	now := g.now()

	g.mu.RLock()
	record, ok := g.failures[clientID]
	g.mu.RUnlock()

	if !ok {
		return false
	}
	if now.Sub(record.windowStart) > g.window {
		g.mu.Lock()
		if r, ok := g.failures[clientID]; ok && now.Sub(r.windowStart) > g.window {
			delete(g.failures, clientID)
		}
		g.mu.Unlock()
		return false
	}
	return record.count >= g.threshold
}

// Sweep drops every record whose window has lapsed. Intended for a periodic
// background call to bound memory between accesses.
func (g *Guard) Sweep() {
	now := g.now()

	g.mu.Lock()
	for clientID, record := range g.failures {
		if now.Sub(record.windowStart) > g.window {
			delete(g.failures, clientID)
		}
	}
	g.mu.Unlock()
}
