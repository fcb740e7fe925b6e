package llm

import (
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen возвращается без обращения к API, пока выключатель разомкнут.
var ErrCircuitOpen = errors.New("circuit breaker is open")

type circuitState int

const (
	stateClosed circuitState = iota
	stateOpen
	stateHalfOpen
)

func (s circuitState) String() string {
	switch s {
	case stateOpen:
		return "open"
	case stateHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

// circuitBreaker отключает обращения к модели после серии сбоев API.
// Ответ без селектора сбоем не считается.
type circuitBreaker struct {
	maxFailures  int
	resetTimeout time.Duration
	now          func() time.Time

	mu          sync.Mutex
	state       circuitState
	failures    int
	lastFailure time.Time
}

func newCircuitBreaker(maxFailures int, resetTimeout time.Duration) *circuitBreaker {
	if maxFailures <= 0 {
		maxFailures = 5
	}
	if resetTimeout <= 0 {
		resetTimeout = 30 * time.Second
	}
	return &circuitBreaker{maxFailures: maxFailures, resetTimeout: resetTimeout, now: time.Now}
}

func (cb *circuitBreaker) allow() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == stateOpen {
		if cb.now().Sub(cb.lastFailure) < cb.resetTimeout {
			return ErrCircuitOpen
		}
		cb.state = stateHalfOpen
	}
	return nil
}

func (cb *circuitBreaker) record(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err == nil {
		cb.state = stateClosed
		cb.failures = 0
		return
	}

	cb.failures++
	cb.lastFailure = cb.now()
	if cb.state == stateHalfOpen || cb.failures >= cb.maxFailures {
		cb.state = stateOpen
	}
}

func (cb *circuitBreaker) State() circuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}
