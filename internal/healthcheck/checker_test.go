package healthcheck

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakePinger struct {
	fail atomic.Bool
}

func (f *fakePinger) Ping(ctx context.Context) error {
	if f.fail.Load() {
		return errors.New("unreachable")
	}
	return nil
}

func TestChecker_NoTargetsIsHealthy(t *testing.T) {
	c := NewChecker(Config{})
	assert.Equal(t, Healthy, c.OverallHealth())
}

func TestChecker_MarksUnhealthyAfterMaxFailures(t *testing.T) {
	ctx := context.Background()
	redis := &fakePinger{}
	db := &fakePinger{}

	c := NewChecker(Config{MaxFailures: 2})
	c.Register("redis", redis)
	c.Register("database", db)

	db.fail.Store(true)

	c.CheckAll(ctx)
	assert.Equal(t, Healthy, c.OverallHealth(), "one failure is tolerated")

	c.CheckAll(ctx)
	assert.Equal(t, Degraded, c.OverallHealth())

	status := c.GetAllStatus()
	assert.False(t, status["database"].IsHealthy)
	assert.Equal(t, 2, status["database"].FailureCount)
	assert.True(t, status["redis"].IsHealthy)

	redis.fail.Store(true)
	c.CheckAll(ctx)
	c.CheckAll(ctx)
	assert.Equal(t, Unhealthy, c.OverallHealth())
}

func TestChecker_RecoversOnSuccess(t *testing.T) {
	ctx := context.Background()
	db := &fakePinger{}
	db.fail.Store(true)

	c := NewChecker(Config{MaxFailures: 1})
	c.Register("database", db)

	c.CheckAll(ctx)
	assert.Equal(t, Unhealthy, c.OverallHealth())

	db.fail.Store(false)
	c.CheckAll(ctx)
	assert.Equal(t, Healthy, c.OverallHealth())
	assert.Zero(t, c.GetAllStatus()["database"].FailureCount)
}

func TestHealthStatus_String(t *testing.T) {
	assert.Equal(t, "healthy", Healthy.String())
	assert.Equal(t, "degraded", Degraded.String())
	assert.Equal(t, "unhealthy", Unhealthy.String())
	assert.Equal(t, "unknown", HealthStatus(9).String())
}
