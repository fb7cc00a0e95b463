package eventlog

import (
	"context"
	"testing"

	pebblestore "github.com/rzbill/cuidd/internal/storage/pebble"
)

func openDB(t *testing.T, dir string) *pebblestore.DB {
	t.Helper()
	db, err := pebblestore.Open(pebblestore.Options{DataDir: dir, Fsync: pebblestore.FsyncModeAlways})
	if err != nil {
		t.Fatalf("open pebble: %v", err)
	}
	return db
}

func newTestLog(t *testing.T) *Log {
	t.Helper()
	db := openDB(t, t.TempDir())
	t.Cleanup(func() { _ = db.Close() })
	l, err := Open(db)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	return l
}

func TestAppendAssignsSequential(t *testing.T) {
	l := newTestLog(t)
	ctx := context.Background()
	seqs, err := l.Append(ctx,
		Event{Action: ActionMint, Kind: "todo", IDs: []string{"a"}},
		Event{Action: ActionRevoke, Kind: "todo", IDs: []string{"a"}},
	)
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if len(seqs) != 2 || seqs[0] != 1 || seqs[1] != 2 {
		t.Fatalf("seqs = %v", seqs)
	}
	if l.LastSeq() != 2 {
		t.Fatalf("last seq = %d", l.LastSeq())
	}
	if seqs, _ := l.Append(ctx); seqs != nil {
		t.Fatalf("empty append returned %v", seqs)
	}
}

func TestAppendStampsTime(t *testing.T) {
	l := newTestLog(t)
	l.now = func() int64 { return 42 }
	if _, err := l.Append(context.Background(), Event{Action: ActionMint}, Event{Action: ActionMint, AtMs: 7}); err != nil {
		t.Fatalf("append: %v", err)
	}
	events, err := l.Read(ReadOptions{})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if events[0].AtMs != 42 || events[1].AtMs != 7 {
		t.Fatalf("timestamps = %d, %d", events[0].AtMs, events[1].AtMs)
	}
}

func TestAppendDurableAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	db := openDB(t, dir)
	l, err := Open(db)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	ctx := context.Background()
	seqs, err := l.Append(ctx, Event{Action: ActionMint, Kind: "note", IDs: []string{"x"}})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// reopen and ensure lastSeq is restored via meta
	db2 := openDB(t, dir)
	t.Cleanup(func() { _ = db2.Close() })
	l2, err := Open(db2)
	if err != nil {
		t.Fatalf("open log2: %v", err)
	}
	seqs2, err := l2.Append(ctx, Event{Action: ActionMint, Kind: "note", IDs: []string{"y"}})
	if err != nil {
		t.Fatalf("append2: %v", err)
	}
	if !(seqs[0] < seqs2[0]) {
		t.Fatalf("expected next seq > previous: prev=%d next=%d", seqs[0], seqs2[0])
	}
}

func TestAppendCanceledContext(t *testing.T) {
	l := newTestLog(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := l.Append(ctx, Event{Action: ActionMint}); err == nil {
		t.Fatalf("expected error")
	}
	if l.LastSeq() != 0 {
		t.Fatalf("failed append advanced seq to %d", l.LastSeq())
	}
}
