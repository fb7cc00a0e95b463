package eventlog

import (
	"encoding/binary"
)

// Keyspace helpers for Pebble keys.
//
// Layout (byte-wise, lexicographically sortable):
// - audit/m
// - audit/e/{seq_be8}

var (
	metaKey     = []byte("audit/m")
	entryPrefix = []byte("audit/e/")
)

// KeyEntry builds the entry key with a big-endian sequence for proper ordering.
func KeyEntry(seq uint64) []byte {
	k := make([]byte, 0, len(entryPrefix)+8)
	k = append(k, entryPrefix...)
	return binary.BigEndian.AppendUint64(k, seq)
}

// seqFromKey extracts the sequence from an entry key.
func seqFromKey(k []byte) (uint64, bool) {
	if len(k) != len(entryPrefix)+8 {
		return 0, false
	}
	return binary.BigEndian.Uint64(k[len(entryPrefix):]), true
}
