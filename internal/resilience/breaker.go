// Package resilience guards outbound delivery with retries and a circuit
// breaker, and reports component health on demand.
package resilience

import (
	"errors"
	"sync"
	"time"
)

// CircuitState represents the state of a circuit breaker.
type CircuitState string

const (
	CircuitClosed   CircuitState = "CLOSED"
	CircuitOpen     CircuitState = "OPEN"
	CircuitHalfOpen CircuitState = "HALF_OPEN"
)

// ErrCircuitOpen is returned when the breaker rejects a call.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// BreakerConfig holds circuit breaker configuration.
type BreakerConfig struct {
	// FailureThreshold is the number of consecutive failures that opens the circuit.
	FailureThreshold int
	// SuccessThreshold is the number of half-open successes that closes it again.
	SuccessThreshold int
	// Cooldown is how long the circuit stays open before a trial call.
	Cooldown time.Duration
}

// DefaultBreakerConfig returns the settings used for notification delivery.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold: 5,
		SuccessThreshold: 1,
		Cooldown:         30 * time.Second,
	}
}

// BreakerStats is a snapshot of breaker counters.
type BreakerStats struct {
	Name           string       `json:"name"`
	State          CircuitState `json:"state"`
	Failures       int          `json:"consecutive_failures"`
	TotalCalls     int64        `json:"total_calls"`
	TotalFailures  int64        `json:"total_failures"`
	TotalRejected  int64        `json:"total_rejected"`
	LastStateShift time.Time    `json:"last_state_change"`
}

// Breaker is a consecutive-failure circuit breaker. Calls run on the
// caller's goroutine.
type Breaker struct {
	name   string
	config BreakerConfig
	now    func() time.Time

	mu              sync.Mutex
	state           CircuitState
	failures        int
	successes       int
	openedAt        time.Time
	lastStateChange time.Time
	trialInFlight   bool

	totalCalls    int64
	totalFailures int64
	totalRejected int64

	onStateChange func(name string, from, to CircuitState)
}

// NewBreaker creates a closed breaker. Non-positive thresholds fall back to
// the defaults.
func NewBreaker(name string, config BreakerConfig) *Breaker {
	def := DefaultBreakerConfig()
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = def.FailureThreshold
	}
	if config.SuccessThreshold <= 0 {
		config.SuccessThreshold = def.SuccessThreshold
	}
	if config.Cooldown <= 0 {
		config.Cooldown = def.Cooldown
	}
	b := &Breaker{
		name:   name,
		config: config,
		now:    time.Now,
		state:  CircuitClosed,
	}
	b.lastStateChange = b.now()
	return b
}

// SetClock overrides time.Now.
func (b *Breaker) SetClock(now func() time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.now = now
}

// OnStateChange registers a callback invoked after each transition. It runs
// without the breaker lock held.
func (b *Breaker) OnStateChange(fn func(name string, from, to CircuitState)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onStateChange = fn
}

// Execute runs fn unless the circuit is open. Errors marked with Permanent
// are returned without counting against the circuit.
func (b *Breaker) Execute(fn func() error) error {
	trial, err := b.allow()
	if err != nil {
		return err
	}
	err = fn()
	b.record(err, trial)
	return err
}

func (b *Breaker) allow() (bool, error) {
	b.mu.Lock()
	b.totalCalls++
	switch b.state {
	case CircuitOpen:
		if b.now().Sub(b.openedAt) < b.config.Cooldown {
			b.totalRejected++
			b.mu.Unlock()
			return false, ErrCircuitOpen
		}
		shift := b.transition(CircuitHalfOpen)
		b.trialInFlight = true
		b.mu.Unlock()
		shift()
		return true, nil
	case CircuitHalfOpen:
		if b.trialInFlight {
			b.totalRejected++
			b.mu.Unlock()
			return false, ErrCircuitOpen
		}
		b.trialInFlight = true
		b.mu.Unlock()
		return true, nil
	}
	b.mu.Unlock()
	return false, nil
}

func (b *Breaker) record(err error, trial bool) {
	b.mu.Lock()
	if trial {
		b.trialInFlight = false
	}
	shift := func() {}

	if err == nil || IsPermanent(err) {
		b.failures = 0
		if b.state == CircuitHalfOpen {
			b.successes++
			if b.successes >= b.config.SuccessThreshold {
				shift = b.transition(CircuitClosed)
			}
		}
		b.mu.Unlock()
		shift()
		return
	}

	b.totalFailures++
	b.failures++
	switch {
	case b.state == CircuitHalfOpen:
		shift = b.transition(CircuitOpen)
	case b.state == CircuitClosed && b.failures >= b.config.FailureThreshold:
		shift = b.transition(CircuitOpen)
	}
	b.mu.Unlock()
	shift()
}

// transition must be called with mu held. It returns the deferred callback.
func (b *Breaker) transition(to CircuitState) func() {
	from := b.state
	if from == to {
		return func() {}
	}
	b.state = to
	b.lastStateChange = b.now()
	b.successes = 0
	switch to {
	case CircuitOpen:
		b.openedAt = b.lastStateChange
	case CircuitClosed:
		b.failures = 0
	}
	cb := b.onStateChange
	if cb == nil {
		return func() {}
	}
	name := b.name
	return func() { cb(name, from, to) }
}

// State returns the current state, accounting for an elapsed cooldown.
func (b *Breaker) State() CircuitState {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == CircuitOpen && b.now().Sub(b.openedAt) >= b.config.Cooldown {
		return CircuitHalfOpen
	}
	return b.state
}

// Stats returns a snapshot of the breaker counters.
func (b *Breaker) Stats() BreakerStats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return BreakerStats{
		Name:           b.name,
		State:          b.state,
		Failures:       b.failures,
		TotalCalls:     b.totalCalls,
		TotalFailures:  b.totalFailures,
		TotalRejected:  b.totalRejected,
		LastStateShift: b.lastStateChange,
	}
}

// Reset closes the circuit and clears the failure count.
func (b *Breaker) Reset() {
	b.mu.Lock()
	shift := b.transition(CircuitClosed)
	b.failures = 0
	b.trialInFlight = false
	b.mu.Unlock()
	shift()
}
