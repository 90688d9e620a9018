package circuitbreaker

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"
)

var ErrOpen = errors.New("circuit breaker is open")

// Breaker stops calling a failing collaborator for a cool-down period.
type Breaker struct {
	mu              sync.Mutex
	name            string
	state           State
	failures        int
	successes       int
	lastFailure     time.Time
	lastStateChange time.Time
	now             func() time.Time

	maxFailures     int
	coolDown        time.Duration
	halfOpenSuccess int
}

type Config struct {
	Name            string
	MaxFailures     int           // consecutive failures before opening, default 5
	CoolDown        time.Duration // time spent open before a trial call, default 30s
	HalfOpenSuccess int           // trial successes needed to close, default 1
	Now             func() time.Time
}

func New(cfg Config) *Breaker {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 5
	}
	if cfg.CoolDown <= 0 {
		cfg.CoolDown = 30 * time.Second
	}
	if cfg.HalfOpenSuccess <= 0 {
		cfg.HalfOpenSuccess = 1
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Breaker{
		name:            cfg.Name,
		state:           StateClosed,
		now:             cfg.Now,
		maxFailures:     cfg.MaxFailures,
		coolDown:        cfg.CoolDown,
		halfOpenSuccess: cfg.HalfOpenSuccess,
		lastStateChange: cfg.Now(),
	}
}

// Execute runs fn unless the breaker is open.
func (b *Breaker) Execute(ctx context.Context, fn func(context.Context) error) error {
	if err := b.before(); err != nil {
		return err
	}

	err := fn(ctx)

	b.mu.Lock()
	defer b.mu.Unlock()

	// A cancelled caller says nothing about the collaborator's health
	if err != nil && ctx.Err() == nil {
		b.onFailure()
		return err
	}
	if err == nil {
		b.onSuccess()
	}
	return err
}

func (b *Breaker) before() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateOpen {
		if b.now().Sub(b.lastFailure) < b.coolDown {
			return ErrOpen
		}
		b.setState(StateHalfOpen)
		b.successes = 0
	}
	return nil
}

func (b *Breaker) onFailure() {
	b.failures++
	b.lastFailure = b.now()

	if b.state == StateHalfOpen || b.failures >= b.maxFailures {
		b.setState(StateOpen)
		b.successes = 0
	}
}

func (b *Breaker) onSuccess() {
	switch b.state {
	case StateHalfOpen:
		b.successes++
		if b.successes >= b.halfOpenSuccess {
			b.setState(StateClosed)
			b.failures = 0
		}
	case StateClosed:
		b.failures = 0
	}
}

func (b *Breaker) setState(next State) {
	if b.state == next {
		return
	}
	log.Printf("[breaker %s] %s -> %s", b.name, b.state, next)
	b.state = next
	b.lastStateChange = b.now()
}

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Reset forces the breaker closed.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.setState(StateClosed)
	b.failures = 0
	b.successes = 0
}

type Metrics struct {
	State           State
	Failures        int
	LastFailure     time.Time
	LastStateChange time.Time
}

func (b *Breaker) Metrics() Metrics {
	b.mu.Lock()
	defer b.mu.Unlock()

	return Metrics{
		State:           b.state,
		Failures:        b.failures,
		LastFailure:     b.lastFailure,
		LastStateChange: b.lastStateChange,
	}
}
