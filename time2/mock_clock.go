package time2

import (
	"sync"
	"time"
)

// A fake clock useful for testing timing.  Optionally advances itself by
// AutoAdvance on every Now call, so code timing itself between two Now calls
// observes a fixed duration.
type MockClock struct {
	mu          sync.Mutex
	currentTime time.Time
	autoAdvance time.Duration
}

func NewMockClock(start time.Time, autoAdvance time.Duration) *MockClock {
	return &MockClock{currentTime: start, autoAdvance: autoAdvance}
}

// Resets the mock clock back to initial state.
func (c *MockClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentTime = time.Time{}
	c.autoAdvance = 0
}

// Set the mock clock to a specific time.
func (c *MockClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentTime = t
}

// Advances the mock clock by the specified duration.
func (c *MockClock) Advance(delta time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentTime = c.currentTime.Add(delta)
}

// Returns the fake current time, then applies the auto advance.
func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.currentTime
	c.currentTime = c.currentTime.Add(c.autoAdvance)
	return now
}

// Returns the time elapsed since t, measured against the fake current time.
func (c *MockClock) Since(t time.Time) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentTime.Sub(t)
}
