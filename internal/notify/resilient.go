package notify

import (
	"context"
	"errors"
	"time"

	"github.com/AyushSingh360/Aryan-portfolio/internal/circuitbreaker"
	"github.com/AyushSingh360/Aryan-portfolio/internal/models"
)

// Resilient retries a notifier a bounded number of times behind a circuit
// breaker. Once the breaker opens, sends fail without reaching the transport.
type Resilient struct {
	next     Notifier
	breaker  *circuitbreaker.Breaker
	attempts int
	delay    time.Duration
}

func NewResilient(next Notifier, breaker *circuitbreaker.Breaker, attempts int, delay time.Duration) *Resilient {
	if attempts < 1 {
		attempts = 1
	}
	return &Resilient{
		next:     next,
		breaker:  breaker,
		attempts: attempts,
		delay:    delay,
	}
}

func (r *Resilient) Send(ctx context.Context, n models.Notification) error {
	var lastErr error
	for i := 0; i < r.attempts; i++ {
		err := r.breaker.Execute(ctx, func(ctx context.Context) error {
			return r.next.Send(ctx, n)
		})
		if err == nil {
			return nil
		}
		if errors.Is(err, circuitbreaker.ErrOpen) {
			return err
		}
		lastErr = err

		if i == r.attempts-1 || r.delay <= 0 {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.delay):
		}
	}
	return lastErr
}
