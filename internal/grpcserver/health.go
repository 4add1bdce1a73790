package grpcserver

import (
	"net"

	gp "github.com/grpc-ecosystem/go-grpc-prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// GatewayService is the health service name reported for the adapter.
const GatewayService = "kdcpay.Gateway"

// Server exposes the gRPC health protocol so orchestrators can probe the
// adapter without going through the public HTTP router.
type Server struct {
	grpc   *grpc.Server
	health *health.Server
}

func New() *Server {
	grpcSrv := grpc.NewServer(
		grpc.UnaryInterceptor(gp.UnaryServerInterceptor),
		grpc.StreamInterceptor(gp.StreamServerInterceptor),
	)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(grpcSrv, hs)

	// Metrics
	gp.Register(grpcSrv)

	s := &Server{grpc: grpcSrv, health: hs}
	s.SetServing(false)
	return s
}

// SetServing flips both the overall status and GatewayService.
func (s *Server) SetServing(ok bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if ok {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(GatewayService, status)
}

func (s *Server) Serve(lis net.Listener) error {
	return s.grpc.Serve(lis)
}

// Stop reports NOT_SERVING to watchers, then drains in-flight calls.
func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}
