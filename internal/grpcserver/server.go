package grpcserver

import (
	"fmt"
	"net"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName — имя сервиса в протоколе проверки здоровья.
const ServiceName = "vitals.Collector"

// Server — gRPC-сервер коллектора со стандартным сервисом health.
type Server struct {
	*grpc.Server
	Health *health.Server
}

// ParseSubnet разбирает CIDR доверенной подсети. Пустая строка даёт nil.
func ParseSubnet(cidr string) (*net.IPNet, error) {
	if cidr == "" {
		return nil, nil
	}
	_, subnet, err := net.ParseCIDR(cidr)
	if err != nil {
		return nil, fmt.Errorf("invalid trusted subnet %q: %w", cidr, err)
	}
	return subnet, nil
}

// NewServer создаёт gRPC-сервер с цепочкой перехватчиков (лог, проверка подсети)
// и регистрирует сервис health в состоянии NOT_SERVING.
func NewServer(logger *zap.Logger, trustedSubnet string) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	subnet, err := ParseSubnet(trustedSubnet)
	if err != nil {
		return nil, err
	}

	s := grpc.NewServer(grpc.ChainUnaryInterceptor(
		LoggingInterceptor(logger),
		IPSubnetInterceptor(subnet),
	))
	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	healthpb.RegisterHealthServer(s, hs)

	return &Server{Server: s, Health: hs}, nil
}

// SetServing переключает состояние сервиса коллектора.
func (s *Server) SetServing(serving bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		st = healthpb.HealthCheckResponse_SERVING
	}
	s.Health.SetServingStatus(ServiceName, st)
}
