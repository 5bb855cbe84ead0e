package resilience

import (
	"sync"
	"time"

	crerr "github.com/cockroachdb/errors"
)

var ErrCircuitOpen = crerr.New("circuit breaker is open")

type CircuitState string

const (
	CircuitClosed   CircuitState = "closed"
	CircuitOpen     CircuitState = "open"
	CircuitHalfOpen CircuitState = "half_open"
)

// BreakerConfig tunes a Breaker. Zero values fall back to defaults.
type BreakerConfig struct {
	Enabled          bool
	FailureThreshold int
	OpenTimeout      time.Duration
	HalfOpenMaxReq   int
}

func (c BreakerConfig) normalized() BreakerConfig {
	if c.FailureThreshold < 1 {
		c.FailureThreshold = 5
	}
	if c.OpenTimeout <= 0 {
		c.OpenTimeout = 15 * time.Second
	}
	if c.HalfOpenMaxReq < 1 {
		c.HalfOpenMaxReq = 2
	}
	return c
}

// Breaker trips after a run of consecutive failures, rejects calls
// while open, and probes with a bounded number of half-open requests
// once the open timeout elapses.
type Breaker struct {
	mu  sync.Mutex
	cfg BreakerConfig
	now func() time.Time

	state     CircuitState
	failures  int
	openedAt  time.Time
	probing   int
	probeWins int
}

func NewBreaker(cfg BreakerConfig) *Breaker {
	return &Breaker{
		cfg:   cfg.normalized(),
		now:   time.Now,
		state: CircuitClosed,
	}
}

// Allow reports whether a call may proceed, reserving a half-open
// probe slot when the breaker is recovering.
func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == CircuitOpen {
		if b.now().Sub(b.openedAt) < b.cfg.OpenTimeout {
			return ErrCircuitOpen
		}
		b.state = CircuitHalfOpen
		b.probing = 0
		b.probeWins = 0
	}

	if b.state == CircuitHalfOpen {
		if b.probing >= b.cfg.HalfOpenMaxReq {
			return ErrCircuitOpen
		}
		b.probing++
	}

	return nil
}

func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case CircuitClosed:
		b.failures = 0
	case CircuitHalfOpen:
		if b.probing > 0 {
			b.probing--
		}
		b.probeWins++
		if b.probeWins >= b.cfg.HalfOpenMaxReq && b.probing == 0 {
			b.state = CircuitClosed
			b.failures = 0
		}
	}
}

func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case CircuitClosed:
		b.failures++
		if b.failures >= b.cfg.FailureThreshold {
			b.trip()
		}
	case CircuitHalfOpen:
		if b.probing > 0 {
			b.probing--
		}
		b.trip()
	case CircuitOpen:
		b.openedAt = b.now()
	}
}

func (b *Breaker) State() CircuitState {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == CircuitOpen && b.now().Sub(b.openedAt) >= b.cfg.OpenTimeout {
		return CircuitHalfOpen
	}
	return b.state
}

func (b *Breaker) trip() {
	b.state = CircuitOpen
	b.openedAt = b.now()
	b.probing = 0
	b.probeWins = 0
}
