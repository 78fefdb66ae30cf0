package service

import (
	"context"
	"fmt"
	"net"

	grpcprom "github.com/grpc-ecosystem/go-grpc-middleware/providers/prometheus"
	grpclogging "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"
	"github.com/jgoulah/gridserve/internal/consumptionpb"
	"github.com/jgoulah/gridserve/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
)

// Options tunes NewServer
type Options struct {
	// Registerer receives the RPC server metrics. Nil skips registration.
	Registerer prometheus.Registerer
}

// Server is the gRPC server exposing ConsumptionService and the standard
// health service.
type Server struct {
	grpc   *grpc.Server
	health *health.Server
	log    logrus.FieldLogger
}

// NewServer builds a server for svc with recovery, logging and metrics
// interceptors installed.
func NewServer(svc consumptionpb.ConsumptionServiceServer, log logrus.FieldLogger, opts Options) *Server {
	metrics := grpcprom.NewServerMetrics(grpcprom.WithServerHandlingTimeHistogram())
	if opts.Registerer != nil {
		opts.Registerer.MustRegister(metrics)
	}

	panicHandler := func(p any) error {
		log.WithField("panic", p).Error("recovered from panic in RPC handler")
		return status.Errorf(codes.Internal, "internal error")
	}

	gs := grpc.NewServer(
		grpc.ForceServerCodec(consumptionpb.Codec{}),
		grpc.ChainUnaryInterceptor(
			metrics.UnaryServerInterceptor(),
			requestIDFields,
			grpclogging.UnaryServerInterceptor(
				logging.GRPCLogger(log),
				grpclogging.WithLogOnEvents(grpclogging.FinishCall),
			),
			recovery.UnaryServerInterceptor(recovery.WithRecoveryHandler(panicHandler)),
		),
	)

	consumptionpb.RegisterConsumptionServiceServer(gs, svc)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(consumptionpb.ServiceName, healthpb.HealthCheckResponse_SERVING)

	// consumptionpb registers its descriptor, so grpcurl can list and call the service
	reflection.Register(gs)

	metrics.InitializeMetrics(gs)

	return &Server{grpc: gs, health: hs, log: log}
}

// Serve accepts connections on lis until ctx is cancelled, then reports
// NOT_SERVING and drains in-flight calls.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.grpc.Serve(lis)
	}()

	s.log.WithField("addr", lis.Addr().String()).Info("RPC server listening")

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serving RPC: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("RPC server shutting down")
	s.health.Shutdown()
	s.grpc.GracefulStop()
	<-errCh
	return nil
}

// requestIDFields tags the call's log lines with the caller's request id
func requestIDFields(ctx context.Context, req any, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if id := requestID(ctx); id != "" {
		ctx = grpclogging.InjectFields(ctx, grpclogging.Fields{"request_id", id})
	}
	return handler(ctx, req)
}
