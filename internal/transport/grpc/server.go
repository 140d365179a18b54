package grpcx

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the name health checks report on, besides the overall "".
const ServiceName = "underbyte.Rooms"

// Server is the gRPC side of the process. It carries the standard health
// service so orchestrators can probe readiness without going through HTTP.
type Server struct {
	GRPC   *grpc.Server
	health *health.Server
}

func NewServer(opts ...grpc.ServerOption) *Server {
	opts = append([]grpc.ServerOption{
		grpc.ChainUnaryInterceptor(UnaryServerInterceptor()),
		grpc.ChainStreamInterceptor(StreamServerInterceptor()),
	}, opts...)

	s := &Server{
		GRPC:   grpc.NewServer(opts...),
		health: health.NewServer(),
	}
	healthpb.RegisterHealthServer(s.GRPC, s.health)
	s.SetServing(true)
	return s
}

// SetServing flips the reported status for the whole server and ServiceName.
func (s *Server) SetServing(ok bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if ok {
		st = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(ServiceName, st)
}

// GracefulStop reports NOT_SERVING to watchers, then drains.
func (s *Server) GracefulStop() {
	s.health.Shutdown()
	s.GRPC.GracefulStop()
}

// Shutdown drains like GracefulStop but force-stops once ctx expires.
// Open health Watch streams never finish on their own.
func (s *Server) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		s.GRPC.Stop()
		<-done
		return ctx.Err()
	}
}
