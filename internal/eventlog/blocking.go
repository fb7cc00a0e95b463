package eventlog

import (
	"context"
)

// WaitAfter blocks until an event with a sequence greater than after exists
// or ctx is done.
func (l *Log) WaitAfter(ctx context.Context, after uint64) error {
	for {
		l.mu.Lock()
		last, ch := l.lastSeq, l.notifyCh
		l.mu.Unlock()
		if last > after {
			return nil
		}
		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
