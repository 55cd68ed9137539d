package dashboard

import (
	"context"
	"net"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// HealthServer exposes grpc.health.v1.Health for orchestrators that probe over gRPC.
type HealthServer struct {
	logger *zap.SugaredLogger
	grpc   *grpc.Server
	health *health.Server
}

func NewHealthServer(logger *zap.SugaredLogger) *HealthServer {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	h := health.NewServer()
	s := grpc.NewServer()
	healthpb.RegisterHealthServer(s, h)
	h.SetServingStatus(serviceName, healthpb.HealthCheckResponse_NOT_SERVING)
	h.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	return &HealthServer{logger: logger, grpc: s, health: h}
}

// SetServing reports the overall and per-service status.
func (h *HealthServer) SetServing(serving bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		st = healthpb.HealthCheckResponse_SERVING
	}
	h.health.SetServingStatus(serviceName, st)
	h.health.SetServingStatus("", st)
}

// Serve blocks until the listener fails or Shutdown is called.
func (h *HealthServer) Serve(lis net.Listener) error {
	h.logger.Infow("grpc health listening", "addr", lis.Addr().String())
	return h.grpc.Serve(lis)
}

// Shutdown marks the service NOT_SERVING and stops gracefully, or forcefully once ctx ends.
func (h *HealthServer) Shutdown(ctx context.Context) {
	h.health.Shutdown()
	done := make(chan struct{})
	go func() {
		h.grpc.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		h.grpc.Stop()
	}
}
