package rate

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestPacer(rate float64) (*Pacer, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	p := NewPacer(rate)
	p.now = clock.Now
	p.lastDrip = clock.Now()
	return p, clock
}

func TestNewPacer(t *testing.T) {
	tests := []struct {
		name     string
		rate     float64
		expected float64
	}{
		{"positive rate", 100.0, 100.0},
		{"zero rate defaults to 1", 0.0, 1.0},
		{"negative rate defaults to 1", -10.0, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewPacer(tt.rate).Rate(); got != tt.expected {
				t.Errorf("Rate() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestPacer_Next(t *testing.T) {
	p, clock := newTestPacer(100) // 10ms apart
	start := clock.Now()

	if next := p.Next(); !next.Equal(start) {
		t.Errorf("First Next() = %v, want immediate %v", next, start)
	}

	if next := p.Next(); next.Sub(start) != 10*time.Millisecond {
		t.Errorf("Second Next() delay = %v, want 10ms", next.Sub(start))
	}

	// the third slot follows the second, not the current time
	if next := p.Next(); next.Sub(start) != 20*time.Millisecond {
		t.Errorf("Third Next() delay = %v, want 20ms", next.Sub(start))
	}
}

func TestPacer_NoBurstAfterIdle(t *testing.T) {
	p, clock := newTestPacer(100)
	_ = p.Next()

	clock.Advance(time.Second)
	now := clock.Now()
	if next := p.Next(); !next.Equal(now) {
		t.Errorf("Next() after idle = %v, want immediate", next.Sub(now))
	}
	if next := p.Next(); next.Sub(now) != 10*time.Millisecond {
		t.Errorf("Next() after idle burst = %v, want 10ms", next.Sub(now))
	}
}

func TestPacer_Stats(t *testing.T) {
	p, _ := newTestPacer(100)
	_ = p.Next()
	_ = p.Next()

	scheduled, waited := p.Stats()
	if scheduled != 2 {
		t.Errorf("scheduled = %d, want 2", scheduled)
	}
	if waited != 10*time.Millisecond {
		t.Errorf("waited = %v, want 10ms", waited)
	}
}

func TestPacer_WaitRespectsContext(t *testing.T) {
	p := NewPacer(1)
	_ = p.Next()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := p.Wait(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait() error = %v, want DeadlineExceeded", err)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("Wait() took %v, should return when the context is done", elapsed)
	}
}

func TestPacer_WaitImmediate(t *testing.T) {
	p := NewPacer(1000)
	if err := p.Wait(context.Background()); err != nil {
		t.Errorf("Wait() error = %v", err)
	}
}
