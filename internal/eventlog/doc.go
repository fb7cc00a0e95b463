// Package eventlog implements the append-only audit trail of issuance
// events (mint and revoke).
//
// # Overview
//
// Events are persisted in Pebble under lexicographically ordered keys:
//   - audit/m              (metadata: lastSeq)
//   - audit/e/{seq_be8}    (entries)
//
// Records are stored as: headerLen(uvarint) | header | payload | crc32c(header|payload).
// The header carries the event time and action; the payload is the JSON body.
//
// API surface (internal)
//
//	l, _ := Open(db)
//	// Append a batch atomically; returns assigned seq numbers
//	seqs, _ := l.Append(ctx, Event{Action: ActionMint, Kind: "todo", IDs: ids})
//
//	// Read forward/reverse after an exclusive sequence with a limit
//	events, _ := l.Read(ReadOptions{After: seqs[0], Limit: 100})
//
//	// Blocking wait/notify
//	_ = l.WaitAfter(ctx, seqs[0])
//
//	// Trim by age using header timestamps
//	_, _ = l.TrimOlderThan(ctx, cutoffMs, 1024)
package eventlog
