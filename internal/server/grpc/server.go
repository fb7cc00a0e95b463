package grpcserver

import (
	"context"
	"net"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/rzbill/cuidd/internal/rpc"
	"github.com/rzbill/cuidd/internal/runtime"
	identifiersvc "github.com/rzbill/cuidd/internal/services/identifiers"
	logpkg "github.com/rzbill/cuidd/pkg/log"
)

// shutdownTimeout bounds GracefulStop before in-flight calls are cut.
const shutdownTimeout = 5 * time.Second

// Server owns the gRPC server instance and runtime.
type Server struct {
	rt          *runtime.Runtime
	svc         *identifiersvc.Service
	logger      logpkg.Logger
	grpc        *grpc.Server
	lis         net.Listener
	stopTimeout time.Duration
}

// New constructs a gRPC server with its own identifiers service.
func New(rt *runtime.Runtime, logger logpkg.Logger, opts ...grpc.ServerOption) *Server {
	return NewWithService(rt, identifiersvc.New(rt, logger), logger, opts...)
}

// NewWithService constructs a gRPC server around an existing service, so
// that both transports can share one.
func NewWithService(rt *runtime.Runtime, svc *identifiersvc.Service, logger logpkg.Logger, opts ...grpc.ServerOption) *Server {
	if logger == nil {
		logger = logpkg.NewNop()
	}
	s := &Server{rt: rt, svc: svc, logger: logger.WithComponent("grpc"), stopTimeout: shutdownTimeout}
	base := []grpc.ServerOption{
		grpc.StatsHandler(otelgrpc.NewServerHandler(otelgrpc.WithTracerProvider(rt.TracerProvider()))),
		grpc.ChainUnaryInterceptor(s.logUnary),
	}
	s.grpc = grpc.NewServer(append(base, opts...)...)
	healthpb.RegisterHealthServer(s.grpc, &healthSvc{rt: rt})
	s.grpc.RegisterService(&rpc.ServiceDesc, &identifiersSvc{svc: svc})
	return s
}

// ListenAndServe binds to addr and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, l)
}

// Serve serves on l until ctx is done.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	s.lis = l
	errCh := make(chan error, 1)
	go func() { errCh <- s.grpc.Serve(l) }()
	select {
	case <-ctx.Done():
		s.stop()
		return nil
	case err := <-errCh:
		return err
	}
}

// stop drains in-flight calls, forcing them closed after stopTimeout.
func (s *Server) stop() {
	done := make(chan struct{})
	go func() {
		s.grpc.GracefulStop()
		close(done)
	}()
	t := time.NewTimer(s.stopTimeout)
	defer t.Stop()
	select {
	case <-done:
	case <-t.C:
		s.logger.Warn("graceful stop timed out, closing open calls", logpkg.Dur("after", s.stopTimeout))
		s.grpc.Stop()
		<-done
	}
}

// Close stops the server and closes the listener.
func (s *Server) Close() {
	if s.grpc != nil {
		s.stop()
	}
	if s.lis != nil {
		_ = s.lis.Close()
	}
}

func (s *Server) logUnary(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	fields := []logpkg.Field{
		logpkg.Str("method", info.FullMethod),
		logpkg.Str("code", status.Code(err).String()),
		logpkg.Dur("took", time.Since(start)),
	}
	if err != nil {
		fields = append(fields, logpkg.Err(err))
	}
	s.logger.Debug("rpc", fields...)
	return resp, err
}
