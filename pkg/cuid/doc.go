// Package cuid produces collision-resistant, time-ordered string identifiers.
//
// # Format
//
// An identifier is the concatenation of
//
//	c                 fixed leading marker
//	timestamp         ms since the Unix epoch, base-36, zero-padded to 8 chars
//	counter           same-millisecond tie-breaker, base-36, exactly 8 chars
//	fingerprint       first 4 hex chars of MD5(hostname), or "0000"
//	random            4 chars drawn uniformly from [0-9a-z]
//
// for a minimum length of 21. While the timestamp stays below 36^8 (until
// the year 2059) identifiers sort lexicographically in generation order.
//
// # Generator state
//
// A Generator owns its last-millisecond/counter register and guards it with
// a mutex, so a single instance may be shared by any number of goroutines.
// The counter is updated before encoding and persists across calls:
//   - If the clock reports the same millisecond as the previous call, the
//     counter is incremented.
//   - If the clock regresses, the generator pins to the last seen millisecond
//     and keeps incrementing, so the timestamp segment never goes backwards.
//   - If the counter would exceed 8 base-36 digits within one millisecond,
//     the generator waits for the next millisecond.
//
// Usage
//
//	g := cuid.New()
//	id := g.Next()
//	parts, _ := cuid.Parse(id.String())
package cuid
