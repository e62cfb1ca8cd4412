package testfixtures

import (
	"sync"
	"time"
)

// Clock is a controllable time source for live status tests.
type Clock struct {
	mu      sync.Mutex
	current time.Time
}

// NewClock starts at start, or at ReferenceTime when start is zero.
func NewClock(start time.Time) *Clock {
	if start.IsZero() {
		start = ReferenceTime()
	}
	return &Clock{current: start}
}

// Now returns the tracked instant.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// NowFunc exposes Now for injection into services.
func (c *Clock) NowFunc() func() time.Time {
	if c == nil {
		return time.Now
	}
	return c.Now
}

// Set jumps to t.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	c.current = t
	c.mu.Unlock()
}

// Advance moves forward by d and returns the new instant.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
	return c.current
}

// At moves the clock to hour:minute on the next occurrence of weekday, counting the
// current day, in the clock's own location. It returns the new instant.
func (c *Clock) At(weekday time.Weekday, hour, minute int) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	cur := c.current
	offset := (int(weekday) - int(cur.Weekday()) + 7) % 7
	day := cur.AddDate(0, 0, offset)
	c.current = time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, cur.Location())
	return c.current
}
