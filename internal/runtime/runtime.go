package runtime

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	cfgpkg "github.com/rzbill/cuidd/internal/config"
	"github.com/rzbill/cuidd/internal/eventlog"
	"github.com/rzbill/cuidd/internal/kinds"
	"github.com/rzbill/cuidd/internal/ledger"
	pebblestore "github.com/rzbill/cuidd/internal/storage/pebble"
	"github.com/rzbill/cuidd/pkg/cuid"
	logpkg "github.com/rzbill/cuidd/pkg/log"
)

// Options for building the Runtime.
type Options struct {
	DataDir       string
	Fsync         pebblestore.FsyncMode
	FsyncInterval time.Duration
	Config        cfgpkg.Config
	// GeneratorOptions are appended after the options derived from Config.
	GeneratorOptions []cuid.Option
	// Logger receives slow storage warnings. Nil disables them.
	Logger logpkg.Logger
}

// Runtime wires storage, the generator and config for a single node.
type Runtime struct {
	db       *pebblestore.DB
	ledger   *ledger.Ledger
	audit    *eventlog.Log
	gen      *cuid.Generator
	registry *kinds.Registry
	config   cfgpkg.Config
	tracing  *sdktrace.TracerProvider
}

// Open validates the config, opens storage and builds the generator.
func Open(opts Options) (*Runtime, error) {
	if err := opts.Config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	registry, err := kinds.NewRegistry(opts.Config.Kinds)
	if err != nil {
		return nil, err
	}

	tpOpts := []sdktrace.TracerProviderOption{}
	if opts.Config.TraceStdout {
		exp, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, errors.Wrap(err, "stdout trace exporter")
		}
		tpOpts = append(tpOpts, sdktrace.WithBatcher(exp))
	}

	db, err := pebblestore.Open(pebblestore.Options{
		DataDir:       opts.DataDir,
		Fsync:         opts.Fsync,
		FsyncInterval: opts.FsyncInterval,
		Metrics:       newStoreMetrics(opts.Logger, opts.Config.SlowStore()),
	})
	if err != nil {
		return nil, err
	}

	audit, err := eventlog.Open(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	led := ledger.New(db)
	for _, name := range registry.Names() {
		if _, err := led.EnsureKind(context.Background(), name); err != nil {
			_ = db.Close()
			return nil, errors.Wrapf(err, "register kind %s", name)
		}
	}

	genOpts := []cuid.Option{}
	if opts.Config.Fingerprint != "" {
		genOpts = append(genOpts, cuid.WithFingerprint(opts.Config.Fingerprint))
	}
	genOpts = append(genOpts, opts.GeneratorOptions...)

	return &Runtime{
		db:       db,
		ledger:   led,
		audit:    audit,
		gen:      cuid.New(genOpts...),
		registry: registry,
		config:   opts.Config,
		tracing:  sdktrace.NewTracerProvider(tpOpts...),
	}, nil
}

// Close flushes spans and closes storage.
func (r *Runtime) Close() error {
	var errs []error
	if r.tracing != nil {
		if err := r.tracing.Shutdown(context.Background()); err != nil {
			errs = append(errs, err)
		}
	}
	if r.db != nil {
		if err := r.db.Close(); err != nil {
			errs = append(errs, err)
		}
		r.db = nil
	}
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// CheckHealth performs a simple health check.
func (r *Runtime) CheckHealth(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.db == nil {
		return errors.New("db not open")
	}
	return r.db.Ping()
}

// Ledger returns the issuance ledger.
func (r *Runtime) Ledger() *ledger.Ledger { return r.ledger }

// Audit returns the issuance event log.
func (r *Runtime) Audit() *eventlog.Log { return r.audit }

// Generator returns the process identifier generator.
func (r *Runtime) Generator() *cuid.Generator { return r.gen }

// Kinds returns the registry of mintable kinds.
func (r *Runtime) Kinds() *kinds.Registry { return r.registry }

// Config returns the runtime configuration.
func (r *Runtime) Config() cfgpkg.Config { return r.config }

// TracerProvider returns the provider spans are recorded on.
func (r *Runtime) TracerProvider() trace.TracerProvider { return r.tracing }
