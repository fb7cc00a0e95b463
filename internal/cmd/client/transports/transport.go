// Package transports provides pluggable transport implementations for the CLI.
package transports

import (
	"context"

	"github.com/rzbill/cuidd/internal/ledger"
	identifiersvc "github.com/rzbill/cuidd/internal/services/identifiers"
)

// Transport abstracts the wire used by the CLI (gRPC or HTTP).
type Transport interface {
	Mint(ctx context.Context, req identifiersvc.MintRequest) ([]ledger.Record, error)
	Inspect(ctx context.Context, id string) (identifiersvc.Inspection, error)
	List(ctx context.Context, req identifiersvc.ListRequest) (identifiersvc.ListResult, error)
	Revoke(ctx context.Context, id string) error
	Kinds(ctx context.Context) ([]ledger.KindMeta, error)
	Events(ctx context.Context, req identifiersvc.EventsRequest) (identifiersvc.EventsResult, error)
}

var (
	_ Transport = (*GrpcTransport)(nil)
	_ Transport = (*HTTPTransport)(nil)
)
