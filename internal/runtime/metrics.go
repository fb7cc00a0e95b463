package runtime

import (
	"time"

	pebblestore "github.com/rzbill/cuidd/internal/storage/pebble"
	logpkg "github.com/rzbill/cuidd/pkg/log"
)

// slowStoreLog is a pebble MetricsHook that warns about storage operations
// slower than threshold.
type slowStoreLog struct {
	logger    logpkg.Logger
	threshold time.Duration
}

var _ pebblestore.MetricsHook = slowStoreLog{}

func newStoreMetrics(logger logpkg.Logger, threshold time.Duration) pebblestore.MetricsHook {
	if logger == nil || threshold <= 0 {
		return pebblestore.NoopMetrics{}
	}
	return slowStoreLog{logger: logger.WithComponent("storage"), threshold: threshold}
}

func (m slowStoreLog) ObserveWrite(elapsed time.Duration, bytes int) {
	m.observe("write", elapsed, bytes)
}

func (m slowStoreLog) ObserveRead(elapsed time.Duration, bytes int) {
	m.observe("read", elapsed, bytes)
}

func (m slowStoreLog) ObserveBatchCommit(elapsed time.Duration, bytes int) {
	m.observe("batch commit", elapsed, bytes)
}

func (m slowStoreLog) observe(op string, elapsed time.Duration, bytes int) {
	if elapsed < m.threshold {
		return
	}
	m.logger.Warn("slow storage "+op,
		logpkg.Dur("took", elapsed),
		logpkg.Int("bytes", bytes),
		logpkg.Dur("threshold", m.threshold),
	)
}
