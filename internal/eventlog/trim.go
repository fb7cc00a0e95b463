package eventlog

import (
	"context"
)

// TrimOlderThan deletes events stamped before cutoffMs. Deletes are
// committed in batches of up to batchLimit keys. Returns the number of
// deleted events. Unreadable entries are deleted as well.
func (l *Log) TrimOlderThan(ctx context.Context, cutoffMs int64, batchLimit int) (int, error) {
	if batchLimit <= 0 {
		batchLimit = 1024
	}
	deleted := 0
	var from []byte
	for {
		var keys [][]byte
		done := true
		err := l.db.ScanPrefix(entryPrefix, from, false, func(key, value []byte) bool {
			ms, ok := timestampOf(value)
			if ok && ms >= cutoffMs {
				return false
			}
			keys = append(keys, append([]byte(nil), key...))
			if len(keys) == batchLimit {
				done = false
				return false
			}
			return true
		})
		if err != nil {
			return deleted, err
		}
		if len(keys) == 0 {
			return deleted, nil
		}

		b := l.db.NewBatch()
		for _, k := range keys {
			if err := b.Delete(k, nil); err != nil {
				b.Close()
				return deleted, err
			}
		}
		err = l.db.CommitBatch(ctx, b)
		b.Close()
		if err != nil {
			return deleted, err
		}
		deleted += len(keys)
		if done {
			return deleted, nil
		}
		from = keys[len(keys)-1]
	}
}
