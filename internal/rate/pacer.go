// Package rate paces repeated exchanges to a target rate.
package rate

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Pacer schedules exchanges at a fixed rate using a leaky bucket. Next
// answers "when should the next exchange start" rather than counting
// available tokens, so a pacer never bursts after falling idle.
//
// Pacer is safe for concurrent use.
type Pacer struct {
	mu          sync.Mutex
	rate        float64 // exchanges per second
	lastDrip    time.Time
	accumulated float64
	now         func() time.Time

	scheduled atomic.Int64
	waited    atomic.Int64 // nanoseconds
}

// NewPacer returns a pacer for rate exchanges per second. A non-positive
// rate is treated as one per second. The first exchange starts immediately.
func NewPacer(rate float64) *Pacer {
	if rate <= 0 {
		rate = 1
	}
	p := &Pacer{rate: rate, accumulated: 1, now: time.Now}
	p.lastDrip = p.now()
	return p
}

// Next returns when the next exchange should start. A time in the past means
// the caller is behind schedule and should start immediately.
func (p *Pacer) Next() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	elapsed := now.Sub(p.lastDrip).Seconds()
	if elapsed < 0 {
		elapsed = 0
	}

	p.accumulated += elapsed * p.rate
	if p.accumulated > 1 {
		p.accumulated = 1
	}
	p.scheduled.Add(1)

	if p.accumulated >= 1 {
		p.accumulated--
		p.lastDrip = now
		return now
	}

	// slots already handed out push the schedule forward
	base := now
	if p.lastDrip.After(now) {
		base = p.lastDrip
	}
	next := base.Add(time.Duration((1 - p.accumulated) / p.rate * float64(time.Second)))
	p.accumulated = 0
	// the drip is charged at next, otherwise waking up there would count
	// the same interval twice
	p.lastDrip = next
	p.waited.Add(int64(next.Sub(now)))
	return next
}

// Wait blocks until the next exchange may start or ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	d := time.Until(p.Next())
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Rate returns the target rate in exchanges per second.
func (p *Pacer) Rate() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rate
}

// Stats returns how many exchanges were scheduled and the total time callers
// were asked to wait.
func (p *Pacer) Stats() (scheduled int64, waited time.Duration) {
	return p.scheduled.Load(), time.Duration(p.waited.Load())
}
