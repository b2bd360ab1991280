package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"google.golang.org/grpc/health/grpc_health_v1"

	"appscore-lab/pkg/logger"
)

type fakePinger struct {
	err error
}

func (f *fakePinger) Ping(context.Context) error { return f.err }

func status(t *testing.T, c *Checker, service string) grpc_health_v1.HealthCheckResponse_ServingStatus {
	t.Helper()
	resp, err := c.Server().Check(context.Background(), &grpc_health_v1.HealthCheckRequest{Service: service})
	if err != nil {
		t.Fatalf("Check(%q): %v", service, err)
	}
	return resp.GetStatus()
}

func TestCheckerFollowsDependencies(t *testing.T) {
	redis := &fakePinger{}
	c := NewChecker(map[string]Pinger{"redis": redis, "postgres": nil}, time.Second, logger.NewNop())

	if got := status(t, c, ""); got != grpc_health_v1.HealthCheckResponse_SERVING {
		t.Fatalf("initial status = %v, want SERVING", got)
	}

	redis.err = errors.New("connection refused")
	if c.CheckOnce(context.Background()) {
		t.Error("CheckOnce reported healthy with a failing dependency")
	}
	if got := status(t, c, ServiceName); got != grpc_health_v1.HealthCheckResponse_NOT_SERVING {
		t.Errorf("status = %v, want NOT_SERVING", got)
	}

	redis.err = nil
	if !c.CheckOnce(context.Background()) {
		t.Error("CheckOnce reported unhealthy after recovery")
	}
	if got := status(t, c, ""); got != grpc_health_v1.HealthCheckResponse_SERVING {
		t.Errorf("status = %v, want SERVING", got)
	}
}
