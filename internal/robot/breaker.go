package robot

import (
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen is returned without contacting the robot while an endpoint's
// breaker is open
var ErrCircuitOpen = errors.New("robot circuit open")

// BreakerState is the state of one endpoint's breaker
type BreakerState string

const (
	BreakerClosed   BreakerState = "closed"
	BreakerOpen     BreakerState = "open"
	BreakerHalfOpen BreakerState = "half_open"
)

// breaker trips per endpoint after a run of consecutive failures. After the
// cooldown one probe is let through (half-open); its outcome closes or
// reopens the circuit.
type breaker struct {
	failureThreshold int
	cooldown         time.Duration
	now              func() time.Time

	mu       sync.Mutex
	circuits map[string]*circuit
}

type circuit struct {
	state        BreakerState
	failures     int
	changedAt    time.Time
	probePending bool
}

// newBreaker returns nil when threshold is not positive; a nil breaker
// allows everything.
func newBreaker(threshold int, cooldown time.Duration) *breaker {
	if threshold <= 0 {
		return nil
	}
	return &breaker{
		failureThreshold: threshold,
		cooldown:         cooldown,
		now:              time.Now,
		circuits:         make(map[string]*circuit),
	}
}

func (b *breaker) get(path string) *circuit {
	c, ok := b.circuits[path]
	if !ok {
		c = &circuit{state: BreakerClosed, changedAt: b.now()}
		b.circuits[path] = c
	}
	return c
}

// allow reports whether a request to path may proceed
func (b *breaker) allow(path string) bool {
	if b == nil {
		return true
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	c := b.get(path)
	switch c.state {
	case BreakerOpen:
		if b.now().Sub(c.changedAt) < b.cooldown {
			return false
		}
		c.state = BreakerHalfOpen
		c.changedAt = b.now()
		c.probePending = true
		return true
	case BreakerHalfOpen:
		if c.probePending {
			return false
		}
		c.probePending = true
		return true
	default:
		return true
	}
}

func (b *breaker) recordSuccess(path string) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	c := b.get(path)
	if c.state != BreakerClosed {
		c.changedAt = b.now()
	}
	c.state = BreakerClosed
	c.failures = 0
	c.probePending = false
}

func (b *breaker) recordFailure(path string) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	c := b.get(path)
	c.failures++
	c.probePending = false
	switch c.state {
	case BreakerHalfOpen:
		c.state = BreakerOpen
		c.changedAt = b.now()
	case BreakerClosed:
		if c.failures >= b.failureThreshold {
			c.state = BreakerOpen
			c.changedAt = b.now()
		}
	}
}

// abort releases a pending half-open probe whose outcome is unknown
func (b *breaker) abort(path string) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if c, ok := b.circuits[path]; ok {
		c.probePending = false
	}
}

func (b *breaker) state(path string) BreakerState {
	if b == nil {
		return BreakerClosed
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	c, ok := b.circuits[path]
	if !ok {
		return BreakerClosed
	}
	if c.state == BreakerOpen && b.now().Sub(c.changedAt) >= b.cooldown {
		return BreakerHalfOpen
	}
	return c.state
}
