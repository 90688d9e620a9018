package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AyushSingh360/Aryan-portfolio/internal/circuitbreaker"
	"github.com/AyushSingh360/Aryan-portfolio/internal/healthcheck"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func checkHealth(h *HealthHandler) (*httptest.ResponseRecorder, map[string]any) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/health", h.Check)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	var resp map[string]any
	json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func TestHealth_NoDependencies(t *testing.T) {
	w, resp := checkHealth(NewHealthHandler(nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", resp["status"])
}

func TestHealth_Degraded(t *testing.T) {
	checker := healthcheck.NewChecker(healthcheck.Config{MaxFailures: 1})
	checker.Register("redis", pingerFunc(func(context.Context) error { return nil }))
	checker.Register("database", pingerFunc(func(context.Context) error { return errors.New("down") }))
	checker.CheckAll(context.Background())

	w, resp := checkHealth(NewHealthHandler(checker))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "degraded", resp["status"])

	checks, ok := resp["checks"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, checks["redis"])
	assert.Equal(t, false, checks["database"])
}

func TestHealth_ReportsMailBreaker(t *testing.T) {
	breaker := circuitbreaker.New(circuitbreaker.Config{Name: "smtp", MaxFailures: 1})
	breaker.Execute(context.Background(), func(context.Context) error { return errors.New("421") })

	h := NewHealthHandler(nil)
	h.AddBreaker("smtp_breaker", breaker)

	w, resp := checkHealth(h)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", resp["status"])

	checks, ok := resp["checks"].(map[string]any)
	require.True(t, ok)
	smtp, ok := checks["smtp_breaker"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "open", smtp["state"])
	assert.Equal(t, float64(1), smtp["failures"])
}
