package data

import (
	"sync"
	"time"
)

// TimeProvider is the clock used for CreatedAt/UpdatedAt stamps. Services
// take one so tests can pin time.
type TimeProvider interface {
	Now() time.Time
}

// RealTimeProvider reads the system clock in UTC.
type RealTimeProvider struct{}

// Now returns the current UTC time.
func (RealTimeProvider) Now() time.Time {
	return time.Now().UTC()
}

// FixedTimeProvider returns a settable instant. Safe for concurrent use.
type FixedTimeProvider struct {
	mu sync.Mutex
	t  time.Time
}

// NewFixedTimeProvider creates a FixedTimeProvider at t.
func NewFixedTimeProvider(t time.Time) *FixedTimeProvider {
	return &FixedTimeProvider{t: t}
}

// Now returns the fixed instant.
func (f *FixedTimeProvider) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

// Set moves the clock to t.
func (f *FixedTimeProvider) Set(t time.Time) {
	f.mu.Lock()
	f.t = t
	f.mu.Unlock()
}

// Advance moves the clock forward by d.
func (f *FixedTimeProvider) Advance(d time.Duration) {
	f.mu.Lock()
	f.t = f.t.Add(d)
	f.mu.Unlock()
}
