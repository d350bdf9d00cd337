package circuitbreaker

import (
	"sync"
	"time"
)

type State int32

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

type Config struct {
	FailThreshold    int           `json:"fail_threshold"`
	SuccessThreshold int           `json:"success_threshold"`
	Timeout          time.Duration `json:"timeout"`
}

// Breaker trips after FailThreshold consecutive failures, refuses calls for
// Timeout, then lets calls through in half-open state until SuccessThreshold
// consecutive successes close it again. Any half-open failure reopens it.
type Breaker struct {
	mu        sync.Mutex
	config    Config
	state     State
	failures  int
	successes int
	openedAt  time.Time
	changes   int
	now       func() time.Time
}

// Option customizes a Breaker.
type Option func(*Breaker)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(b *Breaker) { b.now = now }
}

func New(config Config, opts ...Option) *Breaker {
	b := &Breaker{config: config, now: time.Now}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Allow reports whether a call may proceed. An open breaker whose timeout
// has elapsed moves to half-open and allows the call.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.advance()
	return b.state != StateOpen
}

// Record reports the outcome of a call that Allow let through.
func (b *Breaker) Record(success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.advance()
	switch b.state {
	case StateClosed:
		if success {
			b.failures = 0
			return
		}
		b.failures++
		if b.failures >= b.config.FailThreshold {
			b.open()
		}
	case StateHalfOpen:
		if !success {
			b.open()
			return
		}
		b.successes++
		if b.successes >= b.config.SuccessThreshold {
			b.transition(StateClosed)
			b.failures = 0
			b.successes = 0
		}
	}
}

func (b *Breaker) advance() {
	if b.state == StateOpen && b.now().Sub(b.openedAt) >= b.config.Timeout {
		b.transition(StateHalfOpen)
		b.failures = 0
		b.successes = 0
	}
}

func (b *Breaker) open() {
	b.openedAt = b.now()
	b.successes = 0
	b.transition(StateOpen)
}

func (b *Breaker) transition(to State) {
	if b.state != to {
		b.state = to
		b.changes++
	}
}

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.advance()
	return b.state
}

func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.transition(StateClosed)
	b.failures = 0
	b.successes = 0
}

func (b *Breaker) Failures() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures
}

func (b *Breaker) Successes() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.successes
}

// StateChanges returns how many times the breaker changed state.
func (b *Breaker) StateChanges() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.changes
}
