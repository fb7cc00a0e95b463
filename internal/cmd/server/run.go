package serverrun

import (
	"context"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	cfgpkg "github.com/rzbill/cuidd/internal/config"
	"github.com/rzbill/cuidd/internal/runtime"
	grpcserver "github.com/rzbill/cuidd/internal/server/grpc"
	httpserver "github.com/rzbill/cuidd/internal/server/http"
	identifiersvc "github.com/rzbill/cuidd/internal/services/identifiers"
	pebblestore "github.com/rzbill/cuidd/internal/storage/pebble"
	logpkg "github.com/rzbill/cuidd/pkg/log"
)

// Options configures Run.
type Options struct {
	DataDir       string
	GRPCAddr      string
	HTTPAddr      string
	Fsync         pebblestore.FsyncMode
	FsyncInterval time.Duration
	Config        cfgpkg.Config

	// TrimInterval is how often expired audit events are removed when
	// Config.AuditRetentionHours is set. Defaults to one minute.
	TrimInterval time.Duration
	// LogOutput overrides the log destination (stderr when empty).
	LogOutput string
	// OnListen is called once both listeners are bound.
	OnListen func(grpcAddr, httpAddr net.Addr)
}

// Run starts the gRPC and HTTP servers and blocks until ctx is cancelled or
// one of the servers fails.
func Run(ctx context.Context, opts Options) error {
	sctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if opts.DataDir == "" {
		opts.DataDir = cfgpkg.DefaultDataDir()
	}

	logger, err := logpkg.ApplyConfig(&logpkg.Config{
		Level:  opts.Config.LogLevel,
		Format: opts.Config.LogFormat,
		Output: opts.LogOutput,
	})
	if err != nil {
		return errors.Wrap(err, "configure logger")
	}
	defer func() { _ = logger.Sync() }()
	// Pebble logs through the standard library logger.
	restore := logpkg.RedirectStdLog(logger)
	defer restore()

	rt, err := runtime.Open(runtime.Options{
		DataDir:       filepath.Join(opts.DataDir, "store"),
		Fsync:         opts.Fsync,
		FsyncInterval: opts.FsyncInterval,
		Config:        opts.Config,
		Logger:        logger,
	})
	if err != nil {
		return errors.Wrap(err, "open runtime")
	}
	defer rt.Close()

	glis, err := net.Listen("tcp", opts.GRPCAddr)
	if err != nil {
		return errors.Wrapf(err, "listen grpc %s", opts.GRPCAddr)
	}
	hlis, err := net.Listen("tcp", opts.HTTPAddr)
	if err != nil {
		_ = glis.Close()
		return errors.Wrapf(err, "listen http %s", opts.HTTPAddr)
	}

	logger.Info("starting cuidd server",
		logpkg.Str("grpc", glis.Addr().String()),
		logpkg.Str("http", hlis.Addr().String()),
		logpkg.Str("data_dir", opts.DataDir),
		logpkg.Str("fsync", opts.Fsync.String()),
		logpkg.Str("fingerprint", rt.Generator().FingerprintValue()),
		logpkg.Int("kinds", len(rt.Kinds().Names())),
	)
	if opts.OnListen != nil {
		opts.OnListen(glis.Addr(), hlis.Addr())
	}

	// One service instance backs both transports.
	svc := identifiersvc.New(rt, logger)
	gsrv := grpcserver.NewWithService(rt, svc, logger)
	hsrv := httpserver.NewWithService(rt, svc, logger)

	g, gctx := errgroup.WithContext(sctx)
	g.Go(func() error {
		return errors.Wrap(gsrv.Serve(gctx, glis), "grpc")
	})
	g.Go(func() error {
		return errors.Wrap(hsrv.Serve(gctx, hlis), "http")
	})
	if retention := opts.Config.AuditRetention(); retention > 0 {
		every := opts.TrimInterval
		if every <= 0 {
			every = time.Minute
		}
		g.Go(func() error {
			trimLoop(gctx, svc, retention, every, logger)
			return nil
		})
	}
	err = g.Wait()

	// Stop both servers before the runtime closes the store.
	gsrv.Close()
	hsrv.Close()
	if err != nil {
		logger.Error("server stopped", logpkg.Err(err))
		return err
	}
	logger.Info("server stopped")
	return nil
}

// trimLoop removes audit events older than retention every interval until
// ctx is done.
func trimLoop(ctx context.Context, svc *identifiersvc.Service, retention, every time.Duration, logger logpkg.Logger) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		if _, err := svc.TrimEvents(ctx, retention); err != nil && ctx.Err() == nil {
			logger.Warn("audit trim failed", logpkg.Err(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}
