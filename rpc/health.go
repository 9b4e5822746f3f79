package rpc

import (
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/wfunc/blockduel/logger"
)

// ServiceName is the name reported by the health service.
const ServiceName = "blockduel"

// HealthServer serves the standard gRPC health protocol.
type HealthServer struct {
	listener net.Listener
	grpc     *grpc.Server
	health   *health.Server
}

func NewHealthServer(addr string) (*HealthServer, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	s := &HealthServer{
		listener: listener,
		grpc:     grpc.NewServer(),
		health:   health.NewServer(),
	}
	healthpb.RegisterHealthServer(s.grpc, s.health)
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	return s, nil
}

func (s *HealthServer) Addr() string {
	return s.listener.Addr().String()
}

// Start blocks until Stop.
func (s *HealthServer) Start() {
	logger.Log.Infof("gRPC health server listening on %s", s.Addr())
	if err := s.grpc.Serve(s.listener); err != nil {
		logger.Log.Errorf("gRPC health server: %v", err)
	}
}

// Stop reports NOT_SERVING and shuts the server down.
func (s *HealthServer) Stop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}
