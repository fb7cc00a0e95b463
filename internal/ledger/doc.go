// Package ledger keeps a durable record of every identifier the service has
// issued, keyed so that a kind's records scan in identifier (time) order.
//
// Keys:
//
//	idx/<kind>/<id>   JSON Record
//	ids/<id>          kind, the reverse index used by Get and cross-kind List
//	kinds/<kind>      JSON KindMeta with the issued count
package ledger
