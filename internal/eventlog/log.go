package eventlog

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"sync"
	"time"

	"github.com/pkg/errors"

	pebblestore "github.com/rzbill/cuidd/internal/storage/pebble"
)

// Action identifies what happened to the identifiers of an event.
type Action uint8

const (
	ActionUnknown Action = iota
	ActionMint
	ActionRevoke
)

func (a Action) String() string {
	switch a {
	case ActionMint:
		return "mint"
	case ActionRevoke:
		return "revoke"
	default:
		return "unknown"
	}
}

// MarshalJSON renders the action by name.
func (a Action) MarshalJSON() ([]byte, error) { return json.Marshal(a.String()) }

// UnmarshalJSON accepts the names produced by MarshalJSON.
func (a *Action) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	switch s {
	case "mint":
		*a = ActionMint
	case "revoke":
		*a = ActionRevoke
	default:
		*a = ActionUnknown
	}
	return nil
}

// Event is one audited change to the ledger.
type Event struct {
	Seq    uint64   `json:"seq"`
	AtMs   int64    `json:"at_ms"`
	Action Action   `json:"action"`
	Kind   string   `json:"kind"`
	IDs    []string `json:"ids"`
	Label  string   `json:"label,omitempty"`
}

// Log provides append-only operations over the audit keyspace.
type Log struct {
	db *pebblestore.DB

	mu       sync.Mutex
	lastSeq  uint64
	notifyCh chan struct{}
	now      func() int64
}

// Open initializes a Log and loads the last sequence from metadata (if any).
func Open(db *pebblestore.DB) (*Log, error) {
	l := &Log{db: db, notifyCh: make(chan struct{}), now: func() int64 { return time.Now().UnixMilli() }}
	meta, err := db.Get(metaKey)
	switch {
	case err == nil && len(meta) >= 8:
		l.lastSeq = binary.BigEndian.Uint64(meta[:8])
	case err != nil && !errors.Is(err, pebblestore.ErrNotFound):
		return nil, errors.Wrap(err, "load audit metadata")
	}
	return l, nil
}

// Append appends events as a single atomic batch and returns their
// sequence numbers. A zero AtMs is stamped with the current time.
func (l *Log) Append(ctx context.Context, events ...Event) ([]uint64, error) {
	if len(events) == 0 {
		return nil, nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.db.NewBatch()
	defer b.Close()

	seq := l.lastSeq
	seqs := make([]uint64, len(events))
	for i, e := range events {
		seq++
		if e.AtMs == 0 {
			e.AtMs = l.now()
		}
		val, err := EncodeEvent(e)
		if err != nil {
			return nil, err
		}
		if err := b.Set(KeyEntry(seq), val, nil); err != nil {
			return nil, err
		}
		seqs[i] = seq
	}

	var meta [8]byte
	binary.BigEndian.PutUint64(meta[:], seq)
	if err := b.Set(metaKey, meta[:], nil); err != nil {
		return nil, err
	}
	if err := l.db.CommitBatch(ctx, b); err != nil {
		return nil, err
	}
	l.lastSeq = seq
	// notify waiters
	close(l.notifyCh)
	l.notifyCh = make(chan struct{})
	return seqs, nil
}

// LastSeq returns the highest assigned sequence.
func (l *Log) LastSeq() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastSeq
}
