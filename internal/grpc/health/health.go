package health

import (
	"context"
	"time"

	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"appscore-lab/pkg/logger"
)

// ServiceName is the service name reported alongside the overall ("") status
const ServiceName = "appscore.v1.ReportService"

// Pinger is any dependency whose liveness gates serving status
type Pinger interface {
	Ping(ctx context.Context) error
}

// Checker keeps the gRPC health status in step with its dependencies
type Checker struct {
	server   *grpchealth.Server
	deps     map[string]Pinger
	interval time.Duration
	logger   *logger.Logger
}

// NewChecker creates a checker; nil dependencies are skipped
func NewChecker(deps map[string]Pinger, interval time.Duration, log *logger.Logger) *Checker {
	live := make(map[string]Pinger, len(deps))
	for name, p := range deps {
		if p != nil {
			live[name] = p
		}
	}
	if interval <= 0 {
		interval = 10 * time.Second
	}

	c := &Checker{
		server:   grpchealth.NewServer(),
		deps:     live,
		interval: interval,
		logger:   log.WithComponent("grpc-health"),
	}
	c.setStatus(grpc_health_v1.HealthCheckResponse_SERVING)
	return c
}

// Register attaches the health service to a gRPC server
func (c *Checker) Register(grpcServer *grpc.Server) {
	grpc_health_v1.RegisterHealthServer(grpcServer, c.server)
}

// Server exposes the underlying health server
func (c *Checker) Server() *grpchealth.Server {
	return c.server
}

// CheckOnce pings every dependency and updates the serving status
func (c *Checker) CheckOnce(ctx context.Context) bool {
	healthy := true
	for name, dep := range c.deps {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := dep.Ping(pingCtx)
		cancel()
		if err != nil {
			c.logger.Warn().Err(err).Str("dependency", name).Msg("health check failed")
			healthy = false
		}
	}

	if healthy {
		c.setStatus(grpc_health_v1.HealthCheckResponse_SERVING)
	} else {
		c.setStatus(grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	}
	return healthy
}

// Run checks dependencies every interval until ctx is done
func (c *Checker) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.CheckOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			c.server.Shutdown()
			return
		case <-ticker.C:
			c.CheckOnce(ctx)
		}
	}
}

func (c *Checker) setStatus(status grpc_health_v1.HealthCheckResponse_ServingStatus) {
	c.server.SetServingStatus("", status)
	c.server.SetServingStatus(ServiceName, status)
}
