package mocks

import (
	"sync"
	"time"

	"github.com/mcoot/stonecluster/internal/dependencies/clock"
)

// MockClock is a mock implementation of Clock for testing.
// It is safe to advance from a test while a relay loop reads it.
type MockClock struct {
	mu          sync.Mutex
	currentTime time.Time
	tickers     []chan time.Time
}

// Ensure MockClock implements Clock
var _ clock.Clock = (*MockClock)(nil)

// NewMockClock creates a MockClock set to the given time
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{currentTime: t}
}

// Now returns the mocked current time
func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentTime
}

// Advance moves the clock forward by the given duration
func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentTime = c.currentTime.Add(d)
}

// Set sets the clock to the given time
func (c *MockClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentTime = t
}

// Ticker returns a channel that only ticks when Tick is called
func (c *MockClock) Ticker(d time.Duration) (<-chan time.Time, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch := make(chan time.Time, 1)
	c.tickers = append(c.tickers, ch)
	return ch, func() {}
}

// Tick delivers the current time to every ticker created from this clock.
// Ticks are dropped for tickers whose previous tick has not been consumed.
func (c *MockClock) Tick() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ch := range c.tickers {
		select {
		case ch <- c.currentTime:
		default:
		}
	}
}
