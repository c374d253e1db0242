// Package circuit tracks whether a downstream dependency is currently failing.
package circuit

import "sync"

// Transition reports a state change caused by the last recorded outcome.
type Transition int

const (
	NoChange Transition = iota
	Opened
	Closed
)

// Breaker opens after a run of consecutive failures and closes again after a
// run of consecutive successes. It never blocks calls; callers decide what an
// open breaker means for them.
type Breaker struct {
	name             string
	failureThreshold int
	successThreshold int

	mu        sync.Mutex
	open      bool
	failures  int
	successes int
}

type Option func(*Breaker)

// WithFailureThreshold defaults to 5.
func WithFailureThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.failureThreshold = n
		}
	}
}

// WithSuccessThreshold defaults to 3.
func WithSuccessThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.successThreshold = n
		}
	}
}

func New(name string, opts ...Option) *Breaker {
	b := &Breaker{
		name:             name,
		failureThreshold: 5,
		successThreshold: 3,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Breaker) Name() string { return b.name }

func (b *Breaker) IsOpen() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.open
}

// Record counts the outcome of one call.
func (b *Breaker) Record(err error) Transition {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err != nil {
		b.failures++
		b.successes = 0
		if !b.open && b.failures >= b.failureThreshold {
			b.open = true
			return Opened
		}
		return NoChange
	}

	b.failures = 0
	if !b.open {
		return NoChange
	}
	b.successes++
	if b.successes >= b.successThreshold {
		b.open = false
		b.successes = 0
		return Closed
	}
	return NoChange
}
