package eventlog

// ReadOptions selects a page of events.
type ReadOptions struct {
	// After is an exclusive sequence; zero starts at the beginning (or the
	// end when Reverse is set).
	After   uint64
	Limit   int
	Reverse bool
}

// Read returns up to Limit events (all when Limit is 0). Entries that fail
// their checksum are skipped.
func (l *Log) Read(opts ReadOptions) ([]Event, error) {
	var from []byte
	if opts.After > 0 {
		from = KeyEntry(opts.After)
	}
	out := make([]Event, 0, max(1, opts.Limit))
	err := l.db.ScanPrefix(entryPrefix, from, opts.Reverse, func(key, value []byte) bool {
		seq, ok := seqFromKey(key)
		if !ok {
			return true
		}
		e, err := DecodeEvent(value)
		if err != nil {
			return true
		}
		e.Seq = seq
		out = append(out, e)
		return opts.Limit == 0 || len(out) < opts.Limit
	})
	return out, err
}
