package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHealthCheckerAggregatesWorstStatus(t *testing.T) {
	hc := NewHealthChecker("test")
	hc.RegisterCheck("ok", func(ctx context.Context) ComponentHealth {
		return ComponentHealth{Status: HealthStatusOK}
	})
	hc.RegisterCheck("degraded", func(ctx context.Context) ComponentHealth {
		return ComponentHealth{Status: HealthStatusDegraded}
	})

	resp := hc.Check(context.Background())
	require.Equal(t, HealthStatusDegraded, resp.Status)
}

func TestHealthCheckerUnhealthyOverridesDegraded(t *testing.T) {
	hc := NewHealthChecker("test")
	hc.RegisterCheck("degraded", func(ctx context.Context) ComponentHealth {
		return ComponentHealth{Status: HealthStatusDegraded}
	})
	hc.RegisterCheck("unhealthy", func(ctx context.Context) ComponentHealth {
		return ComponentHealth{Status: HealthStatusUnhealthy}
	})

	resp := hc.Check(context.Background())
	require.Equal(t, HealthStatusUnhealthy, resp.Status)
}

func TestEventLoopCheckReportsUnhealthyWhenStale(t *testing.T) {
	check := EventLoopCheck(func() time.Duration { return time.Minute }, time.Second)
	result := check(context.Background())
	require.Equal(t, HealthStatusUnhealthy, result.Status)
}

func TestEventLoopCheckReportsOKWhenFresh(t *testing.T) {
	check := EventLoopCheck(func() time.Duration { return time.Millisecond }, time.Second)
	result := check(context.Background())
	require.Equal(t, HealthStatusOK, result.Status)
}

func TestEntityStoreCheckReportsOKForWritableDir(t *testing.T) {
	check := EntityStoreCheck(t.TempDir())
	result := check(context.Background())
	require.Equal(t, HealthStatusOK, result.Status)
}

func TestEntityStoreCheckReportsUnhealthyForMissingDir(t *testing.T) {
	check := EntityStoreCheck("/nonexistent/path/that/does/not/exist")
	result := check(context.Background())
	require.Equal(t, HealthStatusUnhealthy, result.Status)
}
