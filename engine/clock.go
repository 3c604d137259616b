package engine

import (
	"sync"
	"time"
)

// TimeProvider is a source of wall-clock readings
type TimeProvider interface {
	Now() time.Time
}

// SystemTimeProvider reads the real monotonic clock
type SystemTimeProvider struct{}

// NewSystemTimeProvider creates a real-time provider
func NewSystemTimeProvider() *SystemTimeProvider {
	return &SystemTimeProvider{}
}

// Now returns the current time with monotonic clock reading
func (p *SystemTimeProvider) Now() time.Time {
	return time.Now()
}

// MockTimeProvider is a controllable time source for tests and deterministic replays
type MockTimeProvider struct {
	mu          sync.RWMutex
	currentTime time.Time
}

// NewMockTimeProvider creates a mock time provider at startTime
func NewMockTimeProvider(startTime time.Time) *MockTimeProvider {
	return &MockTimeProvider{currentTime: startTime}
}

// Now returns the current mocked time
func (m *MockTimeProvider) Now() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentTime
}

// Advance moves the mocked time forward by d
func (m *MockTimeProvider) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentTime = m.currentTime.Add(d)
}

// FrameClock converts successive TimeProvider readings into per-frame delta seconds
// Not safe for concurrent use, the frame loop owns it
type FrameClock struct {
	provider TimeProvider
	maxDelta time.Duration
	last     time.Time
	started  bool
	frames   uint64
	paused   bool
}

// NewFrameClock creates a clock; maxDelta <= 0 disables the per-frame cap
func NewFrameClock(provider TimeProvider, maxDelta time.Duration) *FrameClock {
	return &FrameClock{provider: provider, maxDelta: maxDelta}
}

// Tick returns seconds since the previous Tick, 0 on the first call and while paused
func (c *FrameClock) Tick() float64 {
	now := c.provider.Now()
	c.frames++
	if !c.started {
		c.started = true
		c.last = now
		return 0
	}

	elapsed := now.Sub(c.last)
	c.last = now
	if c.paused || elapsed < 0 {
		return 0
	}
	if c.maxDelta > 0 && elapsed > c.maxDelta {
		elapsed = c.maxDelta
	}
	return elapsed.Seconds()
}

// SetPaused freezes delta time at zero while keeping the reference time current
func (c *FrameClock) SetPaused(paused bool) {
	c.paused = paused
}

// Paused reports the pause state
func (c *FrameClock) Paused() bool {
	return c.paused
}

// Frames returns the number of Tick calls
func (c *FrameClock) Frames() uint64 {
	return c.frames
}
