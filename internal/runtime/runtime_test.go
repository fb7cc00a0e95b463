package runtime

import (
	"context"
	"testing"

	cfgpkg "github.com/rzbill/cuidd/internal/config"
	"github.com/rzbill/cuidd/internal/eventlog"
	"github.com/rzbill/cuidd/internal/ledger"
	pebblestore "github.com/rzbill/cuidd/internal/storage/pebble"
	logpkg "github.com/rzbill/cuidd/pkg/log"
)

func TestOpenCloseHealth(t *testing.T) {
	rt, err := Open(Options{DataDir: t.TempDir(), Fsync: pebblestore.FsyncModeAlways, Config: cfgpkg.Default()})
	if err != nil {
		t.Fatalf("open runtime: %v", err)
	}
	if err := rt.CheckHealth(context.Background()); err != nil {
		t.Fatalf("health: %v", err)
	}
	if err := rt.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := rt.CheckHealth(context.Background()); err == nil {
		t.Fatalf("health after close should fail")
	}
}

func TestFingerprintFromConfig(t *testing.T) {
	cfg := cfgpkg.Default()
	cfg.Fingerprint = "ab12"
	rt, err := Open(Options{DataDir: t.TempDir(), Config: cfg})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rt.Close()
	p, err := rt.Generator().Next().Parts()
	if err != nil {
		t.Fatalf("parts: %v", err)
	}
	if p.Fingerprint != "ab12" {
		t.Fatalf("fingerprint: %s", p.Fingerprint)
	}
}

func TestLedgerWired(t *testing.T) {
	rt, err := Open(Options{DataDir: t.TempDir(), Config: cfgpkg.Default()})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rt.Close()
	ctx := context.Background()
	id := rt.Generator().Next().String()
	if err := rt.Ledger().Append(ctx, []ledger.Record{{ID: id, Kind: "todo"}}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if _, err := rt.Ledger().Get(ctx, id); err != nil {
		t.Fatalf("get: %v", err)
	}
	if !rt.Kinds().Allowed("todo") || rt.Kinds().Allowed("spaceship") {
		t.Fatalf("registry not built from config")
	}
}

func TestAuditLogWired(t *testing.T) {
	dir := t.TempDir()
	rt, err := Open(Options{DataDir: dir, Config: cfgpkg.Default()})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	ctx := context.Background()
	if _, err := rt.Audit().Append(ctx, eventlog.Event{Action: eventlog.ActionMint, Kind: "todo"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := rt.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	rt, err = Open(Options{DataDir: dir, Config: cfgpkg.Default()})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer rt.Close()
	if rt.Audit().LastSeq() != 1 {
		t.Fatalf("last seq = %d", rt.Audit().LastSeq())
	}
}

func TestOpenRejectsInvalidConfig(t *testing.T) {
	cfg := cfgpkg.Default()
	cfg.MaxBatch = 0
	if _, err := Open(Options{DataDir: t.TempDir(), Config: cfg}); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestOpenRejectsNonBase36Fingerprint(t *testing.T) {
	cfg := cfgpkg.Default()
	cfg.Fingerprint = "AB12"
	if _, err := Open(Options{DataDir: t.TempDir(), Config: cfg}); err == nil {
		t.Fatalf("expected uppercase fingerprint to be rejected")
	}
}

func TestConfiguredKindsRegistered(t *testing.T) {
	cfg := cfgpkg.Default()
	cfg.Kinds = []string{"todo", "note"}
	rt, err := Open(Options{DataDir: t.TempDir(), Config: cfg, Logger: logpkg.NewNop()})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rt.Close()

	metas, err := rt.Ledger().Kinds(context.Background())
	if err != nil {
		t.Fatalf("kinds: %v", err)
	}
	if len(metas) != 2 || metas[0].Name != "note" || metas[1].Name != "todo" || metas[0].Issued != 0 {
		t.Fatalf("kinds = %+v", metas)
	}
}
