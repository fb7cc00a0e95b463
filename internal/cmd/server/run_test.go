package serverrun

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	cfgpkg "github.com/rzbill/cuidd/internal/config"
	"github.com/rzbill/cuidd/internal/eventlog"
	"github.com/rzbill/cuidd/internal/runtime"
	identifiersvc "github.com/rzbill/cuidd/internal/services/identifiers"
	pebblestore "github.com/rzbill/cuidd/internal/storage/pebble"
	logpkg "github.com/rzbill/cuidd/pkg/log"
)

type bound struct{ grpc, http net.Addr }

func startRun(t *testing.T, opts Options) (bound, context.CancelFunc, <-chan error) {
	t.Helper()
	ready := make(chan bound, 1)
	opts.OnListen = func(g, h net.Addr) { ready <- bound{grpc: g, http: h} }
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, opts) }()
	select {
	case b := <-ready:
		return b, cancel, done
	case err := <-done:
		cancel()
		t.Fatalf("run exited early: %v", err)
	case <-time.After(10 * time.Second):
		cancel()
		t.Fatalf("servers did not start")
	}
	return bound{}, cancel, done
}

func baseOptions(t *testing.T) Options {
	dir := t.TempDir()
	return Options{
		DataDir:       dir,
		GRPCAddr:      "127.0.0.1:0",
		HTTPAddr:      "127.0.0.1:0",
		Fsync:         pebblestore.FsyncModeInterval,
		FsyncInterval: 5 * time.Millisecond,
		Config:        cfgpkg.Default(),
		LogOutput:     filepath.Join(dir, "cuidd.log"),
	}
}

func TestRunServesBothTransports(t *testing.T) {
	opts := baseOptions(t)
	b, cancel, done := startRun(t, opts)

	resp, err := http.Get("http://" + b.http.String() + "/v1/healthz")
	require.NoError(t, err)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "ok", body["status"])

	conn, err := grpc.NewClient(b.grpc.String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()
	ctx, cctx := context.WithTimeout(context.Background(), 5*time.Second)
	defer cctx()
	hres, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	require.Equal(t, healthpb.HealthCheckResponse_SERVING, hres.GetStatus())

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatalf("run did not stop")
	}

	require.DirExists(t, filepath.Join(opts.DataDir, "store"))
	logs, err := os.ReadFile(opts.LogOutput)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(logs), "starting cuidd server"), string(logs))
}

func TestTrimLoopRemovesExpiredEvents(t *testing.T) {
	opts := baseOptions(t)
	rt, err := runtime.Open(runtime.Options{DataDir: opts.DataDir, Fsync: opts.Fsync, Config: opts.Config})
	require.NoError(t, err)
	defer rt.Close()
	svc := identifiersvc.New(rt, nil)

	ctx := context.Background()
	old := time.Now().Add(-3 * time.Hour).UnixMilli()
	_, err = rt.Audit().Append(ctx, eventlog.Event{AtMs: old, Action: eventlog.ActionMint, Kind: "todo"})
	require.NoError(t, err)
	_, err = svc.Mint(ctx, identifiersvc.MintRequest{Kind: "todo"})
	require.NoError(t, err)

	lctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		trimLoop(lctx, svc, time.Hour, 10*time.Millisecond, logpkg.NewNop())
		close(done)
	}()
	require.Eventually(t, func() bool {
		res, err := svc.Events(ctx, identifiersvc.EventsRequest{})
		return err == nil && len(res.Items) == 1
	}, 5*time.Second, 10*time.Millisecond)
	cancel()
	<-done
}

func TestRunFailsOnBusyPort(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	opts := baseOptions(t)
	opts.HTTPAddr = l.Addr().String()
	err = Run(context.Background(), opts)
	require.Error(t, err)
	require.Contains(t, err.Error(), "listen http")
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	opts := baseOptions(t)
	opts.Config.MaxBatch = 0
	require.Error(t, Run(context.Background(), opts))
}

func TestRunRejectsUnknownLogFormat(t *testing.T) {
	opts := baseOptions(t)
	opts.Config.LogFormat = "xml"
	err := Run(context.Background(), opts)
	require.Error(t, err)
	require.Contains(t, err.Error(), "configure logger")
}
