package grpc

import (
	"context"
	"fmt"
	"log"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName - имя сервиса в grpc.health.v1
const ServiceName = "taskplanner.v1.TaskPlanner"

// HealthChecker - зависимость, от которой зависит статус SERVING
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type GRPCServer struct {
	checks   []HealthChecker
	interval time.Duration
	health   *health.Server
	server   *grpc.Server
}

func NewGRPCServer(interval time.Duration, checks ...HealthChecker) *GRPCServer {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	s := &GRPCServer{
		checks:   checks,
		interval: interval,
		health:   health.NewServer(),
	}
	s.server = grpc.NewServer(grpc.UnaryInterceptor(s.unaryInterceptor))
	healthpb.RegisterHealthServer(s.server, s.health)
	reflection.Register(s.server)
	return s
}

// Start слушает порт и блокируется до Stop
func (s *GRPCServer) Start(ctx context.Context, port string) error {
	lis, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	s.Probe(ctx)
	go s.probeLoop(ctx)

	log.Printf("gRPC server listening on :%s", port)
	return s.server.Serve(lis)
}

func (s *GRPCServer) Stop() {
	s.health.Shutdown()
	s.server.GracefulStop()
}

// Probe проверяет зависимости и выставляет статус
func (s *GRPCServer) Probe(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING

	for _, check := range s.checks {
		checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := check.HealthCheck(checkCtx)
		cancel()
		if err != nil {
			log.Printf("Проверка здоровья не пройдена: %v", err)
			status = healthpb.HealthCheckResponse_NOT_SERVING
			break
		}
	}

	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
	return status
}

func (s *GRPCServer) probeLoop(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Probe(ctx)
		}
	}
}

func (s *GRPCServer) unaryInterceptor(ctx context.Context, req interface{},
	info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	log.Printf("gRPC method: %s", info.FullMethod)
	return handler(ctx, req)
}
