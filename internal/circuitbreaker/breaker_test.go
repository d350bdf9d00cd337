package circuitbreaker

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

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
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestBreaker(fail, success int) (*Breaker, *fakeClock) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	b := New(Config{
		FailThreshold:    fail,
		SuccessThreshold: success,
		Timeout:          time.Second,
	}, WithClock(clock.Now))
	return b, clock
}

func TestState_String(t *testing.T) {
	tests := []struct {
		name  string
		state State
		want  string
	}{
		{"closed", StateClosed, "CLOSED"},
		{"open", StateOpen, "OPEN"},
		{"half_open", StateHalfOpen, "HALF_OPEN"},
		{"unknown", State(9), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.state.String())
		})
	}
}

func TestBreaker_TransitionToOpen(t *testing.T) {
	breaker, _ := newTestBreaker(3, 2)
	assert.True(t, breaker.Allow())

	breaker.Record(false)
	breaker.Record(false)
	assert.Equal(t, StateClosed, breaker.State())

	breaker.Record(false)
	assert.Equal(t, StateOpen, breaker.State())
	assert.False(t, breaker.Allow())
}

func TestBreaker_HalfOpenAfterTimeout(t *testing.T) {
	breaker, clock := newTestBreaker(2, 2)
	breaker.Record(false)
	breaker.Record(false)

	clock.Advance(999 * time.Millisecond)
	assert.False(t, breaker.Allow())

	clock.Advance(time.Millisecond)
	assert.True(t, breaker.Allow())
	assert.Equal(t, StateHalfOpen, breaker.State())
}

func TestBreaker_HalfOpenToClosed(t *testing.T) {
	breaker, clock := newTestBreaker(2, 2)
	breaker.Record(false)
	breaker.Record(false)
	clock.Advance(time.Second)

	breaker.Record(true)
	assert.Equal(t, StateHalfOpen, breaker.State())
	breaker.Record(true)
	assert.Equal(t, StateClosed, breaker.State())
	assert.Equal(t, 3, breaker.StateChanges())
}

func TestBreaker_HalfOpenFailureReopens(t *testing.T) {
	breaker, clock := newTestBreaker(2, 2)
	breaker.Record(false)
	breaker.Record(false)
	clock.Advance(time.Second)

	breaker.Record(true)
	breaker.Record(false)
	assert.Equal(t, StateOpen, breaker.State())
	assert.False(t, breaker.Allow(), "timeout restarts on reopen")
}

func TestBreaker_Reset(t *testing.T) {
	breaker, _ := newTestBreaker(2, 2)
	breaker.Record(false)
	breaker.Record(false)

	breaker.Reset()

	assert.Equal(t, StateClosed, breaker.State())
	assert.Equal(t, 0, breaker.Failures())
	assert.Equal(t, 0, breaker.Successes())
}

func TestBreaker_SuccessResetsFailures(t *testing.T) {
	breaker, _ := newTestBreaker(5, 2)
	breaker.Record(false)
	breaker.Record(false)
	breaker.Record(false)
	assert.Equal(t, 3, breaker.Failures())

	breaker.Record(true)
	assert.Equal(t, 0, breaker.Failures())
}
