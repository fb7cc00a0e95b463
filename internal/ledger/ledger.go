package ledger

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/pkg/errors"

	"github.com/rzbill/cuidd/internal/kinds"
	pebblestore "github.com/rzbill/cuidd/internal/storage/pebble"
	"github.com/rzbill/cuidd/pkg/cuid"
)

var (
	// ErrDuplicate is returned when an identifier is already recorded.
	ErrDuplicate = errors.New("ledger: duplicate identifier")
	// ErrNotFound is returned for identifiers the ledger has never seen.
	ErrNotFound = errors.New("ledger: not found")
	// ErrInvalid is returned for records that fail validation.
	ErrInvalid = errors.New("ledger: invalid record")
)

// Record is one issued identifier.
type Record struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	Label       string `json:"label,omitempty"`
	IssuedAtMs  int64  `json:"issued_at_ms"`
	Fingerprint string `json:"fingerprint"`
}

// KindMeta holds per-kind bookkeeping.
type KindMeta struct {
	Name        string `json:"name"`
	CreatedAtMs int64  `json:"created_at_ms"`
	Issued      uint64 `json:"issued"`
}

// ListOptions controls a List scan.
type ListOptions struct {
	// After is an exclusive cursor: the last ID of the previous page.
	After   string
	Limit   int
	Reverse bool
	// Match filters records; nil keeps everything.
	Match func(Record) bool
}

// Ledger records issued identifiers in Pebble. Writers are serialized so
// that duplicate checks and per-kind counters stay consistent.
type Ledger struct {
	db  *pebblestore.DB
	mu  sync.Mutex
	now func() int64
}

// New returns a Ledger over db.
func New(db *pebblestore.DB) *Ledger {
	return &Ledger{db: db, now: func() int64 { return time.Now().UnixMilli() }}
}

func validate(r Record) error {
	if err := kinds.Validate(r.Kind); err != nil {
		return errors.Wrapf(ErrInvalid, "kind: %v", err)
	}
	if !cuid.Valid(r.ID) {
		return errors.Wrapf(ErrInvalid, "id %q", r.ID)
	}
	return nil
}

// Append records recs in one atomic batch. If any identifier is already
// present, in the store or earlier in recs, nothing is written and the error
// wraps ErrDuplicate.
func (l *Ledger) Append(ctx context.Context, recs []Record) error {
	if len(recs) == 0 {
		return nil
	}
	for _, r := range recs {
		if err := validate(r); err != nil {
			return err
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.db.NewBatch()
	defer b.Close()

	added := make(map[string]uint64)
	for _, r := range recs {
		_, err := l.db.GetBatch(b, reverseKey(r.ID))
		if err == nil {
			return errors.Wrapf(ErrDuplicate, "%s", r.ID)
		}
		if !errors.Is(err, pebblestore.ErrNotFound) {
			return err
		}
		val, err := json.Marshal(r)
		if err != nil {
			return err
		}
		if err := b.Set(reverseKey(r.ID), []byte(r.Kind), nil); err != nil {
			return err
		}
		if err := b.Set(recordKey(r.Kind, r.ID), val, nil); err != nil {
			return err
		}
		added[r.Kind]++
	}

	for kind, n := range added {
		meta, err := l.kindMeta(b, kind)
		if err != nil {
			return err
		}
		meta.Issued += n
		if err := putKindMeta(b, meta); err != nil {
			return err
		}
	}
	return l.db.CommitBatch(ctx, b)
}

// Get returns the record for id.
func (l *Ledger) Get(ctx context.Context, id string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	kind, err := l.db.Get(reverseKey(id))
	if err != nil {
		return Record{}, notFound(err, id)
	}
	return l.getRecord(string(kind), id)
}

func (l *Ledger) getRecord(kind, id string) (Record, error) {
	val, err := l.db.Get(recordKey(kind, id))
	if err != nil {
		return Record{}, notFound(err, id)
	}
	var r Record
	if err := json.Unmarshal(val, &r); err != nil {
		return Record{}, errors.Wrapf(err, "decode record %s", id)
	}
	return r, nil
}

// List returns records of kind in identifier order. An empty kind lists
// every kind through the reverse index.
func (l *Ledger) List(ctx context.Context, kind string, opts ListOptions) ([]Record, error) {
	if kind != "" {
		if err := kinds.Validate(kind); err != nil {
			return nil, errors.Wrapf(ErrInvalid, "kind: %v", err)
		}
	}

	var (
		out     []Record
		scanErr error
	)
	keep := func(r Record) bool {
		if opts.Match == nil || opts.Match(r) {
			out = append(out, r)
		}
		return opts.Limit <= 0 || len(out) < opts.Limit
	}

	var err error
	if kind == "" {
		var from []byte
		if opts.After != "" {
			from = reverseKey(opts.After)
		}
		err = l.db.ScanPrefix(reversePrefix, from, opts.Reverse, func(k, v []byte) bool {
			if ctx.Err() != nil {
				scanErr = ctx.Err()
				return false
			}
			r, err := l.getRecord(string(v), string(k[len(reversePrefix):]))
			if err != nil {
				scanErr = err
				return false
			}
			return keep(r)
		})
	} else {
		var from []byte
		if opts.After != "" {
			from = recordKey(kind, opts.After)
		}
		err = l.db.ScanPrefix(recordKindPrefix(kind), from, opts.Reverse, func(_, v []byte) bool {
			if ctx.Err() != nil {
				scanErr = ctx.Err()
				return false
			}
			var r Record
			if err := json.Unmarshal(v, &r); err != nil {
				scanErr = errors.Wrap(err, "decode record")
				return false
			}
			return keep(r)
		})
	}
	if err != nil {
		return nil, err
	}
	if scanErr != nil {
		return nil, scanErr
	}
	return out, nil
}

// Delete removes id, decrements its kind's counter and returns the removed
// record.
func (l *Ledger) Delete(ctx context.Context, id string) (Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	kindBytes, err := l.db.Get(reverseKey(id))
	if err != nil {
		return Record{}, notFound(err, id)
	}
	rec, err := l.getRecord(string(kindBytes), id)
	if err != nil {
		return Record{}, err
	}

	b := l.db.NewBatch()
	defer b.Close()
	if err := b.Delete(reverseKey(id), nil); err != nil {
		return Record{}, err
	}
	if err := b.Delete(recordKey(rec.Kind, id), nil); err != nil {
		return Record{}, err
	}
	meta, err := l.kindMeta(b, rec.Kind)
	if err != nil {
		return Record{}, err
	}
	if meta.Issued > 0 {
		meta.Issued--
	}
	if err := putKindMeta(b, meta); err != nil {
		return Record{}, err
	}
	if err := l.db.CommitBatch(ctx, b); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// EnsureKind creates the kind record if absent and returns it.
func (l *Ledger) EnsureKind(ctx context.Context, kind string) (KindMeta, error) {
	if err := kinds.Validate(kind); err != nil {
		return KindMeta{}, errors.Wrapf(ErrInvalid, "kind: %v", err)
	}
	if err := ctx.Err(); err != nil {
		return KindMeta{}, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	val, err := l.db.Get(kindKey(kind))
	switch {
	case err == nil:
		var m KindMeta
		if err := json.Unmarshal(val, &m); err != nil {
			return KindMeta{}, errors.Wrapf(err, "decode kind %s", kind)
		}
		return m, nil
	case !errors.Is(err, pebblestore.ErrNotFound):
		return KindMeta{}, err
	}

	meta := KindMeta{Name: kind, CreatedAtMs: l.now()}
	val, err = json.Marshal(meta)
	if err != nil {
		return KindMeta{}, err
	}
	if err := l.db.Set(kindKey(kind), val); err != nil {
		return KindMeta{}, err
	}
	return meta, nil
}

// Kinds lists every kind that has ever been recorded, sorted by name.
func (l *Ledger) Kinds(ctx context.Context) ([]KindMeta, error) {
	var (
		out     []KindMeta
		scanErr error
	)
	err := l.db.ScanPrefix(kindPrefix, nil, false, func(_, v []byte) bool {
		if ctx.Err() != nil {
			scanErr = ctx.Err()
			return false
		}
		var m KindMeta
		if err := json.Unmarshal(v, &m); err != nil {
			scanErr = errors.Wrap(err, "decode kind")
			return false
		}
		out = append(out, m)
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, scanErr
}

// kindMeta reads the kind record through b, creating a fresh one if absent.
func (l *Ledger) kindMeta(b *pebble.Batch, kind string) (KindMeta, error) {
	val, err := l.db.GetBatch(b, kindKey(kind))
	if errors.Is(err, pebblestore.ErrNotFound) {
		return KindMeta{Name: kind, CreatedAtMs: l.now()}, nil
	}
	if err != nil {
		return KindMeta{}, err
	}
	var m KindMeta
	if err := json.Unmarshal(val, &m); err != nil {
		return KindMeta{}, errors.Wrapf(err, "decode kind %s", kind)
	}
	return m, nil
}

func putKindMeta(b *pebble.Batch, m KindMeta) error {
	val, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return b.Set(kindKey(m.Name), val, nil)
}

func notFound(err error, id string) error {
	if errors.Is(err, pebblestore.ErrNotFound) {
		return errors.Wrapf(ErrNotFound, "%s", id)
	}
	return err
}
