package handler

import (
	"net/http"
	"time"

	"github.com/AyushSingh360/Aryan-portfolio/internal/circuitbreaker"
	"github.com/AyushSingh360/Aryan-portfolio/internal/healthcheck"
	"github.com/gin-gonic/gin"
)

// HealthHandler reports the state of the optional backing services as last
// seen by the background checker.
type HealthHandler struct {
	checker   *healthcheck.Checker
	breakers  map[string]*circuitbreaker.Breaker
	startTime time.Time
}

func NewHealthHandler(checker *healthcheck.Checker) *HealthHandler {
	if checker == nil {
		checker = healthcheck.NewChecker(healthcheck.Config{})
	}

	return &HealthHandler{
		checker:   checker,
		breakers:  make(map[string]*circuitbreaker.Breaker),
		startTime: time.Now(),
	}
}

// AddBreaker reports b's state under name. An open breaker does not change
// the overall status.
func (h *HealthHandler) AddBreaker(name string, b *circuitbreaker.Breaker) {
	h.breakers[name] = b
}

// Handles GET /health
func (h *HealthHandler) Check(c *gin.Context) {
	overall := h.checker.OverallHealth()

	statusCode := http.StatusOK
	if overall != healthcheck.Healthy {
		statusCode = http.StatusServiceUnavailable
	}

	checks := gin.H{}
	for name, s := range h.checker.GetAllStatus() {
		checks[name] = s.IsHealthy
	}
	for name, b := range h.breakers {
		m := b.Metrics()
		checks[name] = gin.H{
			"state":             m.State.String(),
			"failures":          m.Failures,
			"last_state_change": m.LastStateChange.Unix(),
		}
	}

	c.JSON(statusCode, gin.H{
		"status":    overall.String(),
		"service":   "portfolio-contact",
		"uptime":    time.Since(h.startTime).Seconds(),
		"timestamp": time.Now().Unix(),
		"checks":    checks,
	})
}
