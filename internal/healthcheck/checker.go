package healthcheck

import (
	"context"
	"log"
	"sync"
	"time"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// Checker pings the optional backing services in the background so /health
// answers from memory.
type Checker struct {
	mu          sync.RWMutex
	targets     map[string]Pinger
	status      map[string]*Status
	interval    time.Duration
	timeout     time.Duration
	maxFailures int
	running     bool
}

type Config struct {
	Interval    time.Duration // How often to check (default: 15s)
	Timeout     time.Duration // Per ping timeout (default: 2s)
	MaxFailures int           // Failures before marking unhealthy (default: 2)
}

func NewChecker(cfg Config) *Checker {
	if cfg.Interval <= 0 {
		cfg.Interval = 15 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 2
	}

	return &Checker{
		targets:     make(map[string]Pinger),
		status:      make(map[string]*Status),
		interval:    cfg.Interval,
		timeout:     cfg.Timeout,
		maxFailures: cfg.MaxFailures,
	}
}

// Register adds a dependency. Targets start out healthy.
func (c *Checker) Register(name string, p Pinger) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.targets[name] = p
	c.status[name] = &Status{
		Target:    name,
		IsHealthy: true,
		LastCheck: time.Now(),
	}
}

// Start checks every target once, then again on every interval until ctx is
// done.
func (c *Checker) Start(ctx context.Context) {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return
	}
	c.running = true
	n := len(c.targets)
	c.mu.Unlock()

	log.Printf("Starting health checks for %d dependencies (interval: %v)", n, c.interval)

	c.CheckAll(ctx)

	go func() {
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				c.CheckAll(ctx)
			case <-ctx.Done():
				log.Printf("Health checker stopped")
				return
			}
		}
	}()
}

func (c *Checker) CheckAll(ctx context.Context) {
	c.mu.RLock()
	targets := make(map[string]Pinger, len(c.targets))
	for name, p := range c.targets {
		targets[name] = p
	}
	c.mu.RUnlock()

	var wg sync.WaitGroup
	for name, p := range targets {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.checkTarget(ctx, name, p)
		}()
	}
	wg.Wait()
}

func (c *Checker) checkTarget(ctx context.Context, name string, p Pinger) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := p.Ping(ctx); err != nil {
		c.recordFailure(name, err)
		return
	}
	c.recordSuccess(name)
}

func (c *Checker) recordSuccess(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	status := c.status[name]
	status.LastCheck = time.Now()
	status.LastSuccess = status.LastCheck
	status.FailureCount = 0

	if !status.IsHealthy {
		log.Printf("%s is now healthy", name)
		status.IsHealthy = true
	}
}

func (c *Checker) recordFailure(name string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	status := c.status[name]
	status.LastCheck = time.Now()
	status.LastFailure = status.LastCheck
	status.FailureCount++

	if status.IsHealthy && status.FailureCount >= c.maxFailures {
		log.Printf("%s is now unhealthy (failures: %d): %v", name, status.FailureCount, err)
		status.IsHealthy = false
	}
}

// GetAllStatus returns a copy of every target's status.
func (c *Checker) GetAllStatus() map[string]Status {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]Status, len(c.status))
	for name, s := range c.status {
		out[name] = *s
	}
	return out
}

// OverallHealth is Healthy with no dependencies registered.
func (c *Checker) OverallHealth() HealthStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()

	healthy := 0
	for _, s := range c.status {
		if s.IsHealthy {
			healthy++
		}
	}

	switch {
	case healthy == len(c.status):
		return Healthy
	case healthy == 0:
		return Unhealthy
	default:
		return Degraded
	}
}
