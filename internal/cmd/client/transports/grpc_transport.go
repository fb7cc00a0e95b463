package transports

import (
	"context"

	"google.golang.org/grpc"

	"github.com/rzbill/cuidd/internal/ledger"
	"github.com/rzbill/cuidd/internal/rpc"
	identifiersvc "github.com/rzbill/cuidd/internal/services/identifiers"
)

// GrpcTransport implements Transport over cuidd.v1.Identifiers.
type GrpcTransport struct {
	dial func(ctx context.Context) (*grpc.ClientConn, error)
}

// NewGrpcTransport constructs a GrpcTransport using the provided dialer.
// Each call opens and closes its own connection.
func NewGrpcTransport(dial func(ctx context.Context) (*grpc.ClientConn, error)) *GrpcTransport {
	return &GrpcTransport{dial: dial}
}

func (t *GrpcTransport) withClient(ctx context.Context, fn func(cli *rpc.Client) error) error {
	conn, err := t.dial(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()
	return fn(rpc.NewClient(conn))
}

// Mint mints identifiers via gRPC.
func (t *GrpcTransport) Mint(ctx context.Context, req identifiersvc.MintRequest) (recs []ledger.Record, err error) {
	err = t.withClient(ctx, func(cli *rpc.Client) error {
		recs, err = cli.Mint(ctx, req)
		return err
	})
	return recs, err
}

// Inspect looks an identifier up via gRPC.
func (t *GrpcTransport) Inspect(ctx context.Context, id string) (out identifiersvc.Inspection, err error) {
	err = t.withClient(ctx, func(cli *rpc.Client) error {
		out, err = cli.Inspect(ctx, id)
		return err
	})
	return out, err
}

// List pages through recorded identifiers via gRPC.
func (t *GrpcTransport) List(ctx context.Context, req identifiersvc.ListRequest) (out identifiersvc.ListResult, err error) {
	err = t.withClient(ctx, func(cli *rpc.Client) error {
		out, err = cli.List(ctx, req)
		return err
	})
	return out, err
}

// Revoke forgets an identifier via gRPC.
func (t *GrpcTransport) Revoke(ctx context.Context, id string) error {
	return t.withClient(ctx, func(cli *rpc.Client) error {
		return cli.Revoke(ctx, id)
	})
}

// Kinds returns per-kind counts via gRPC.
func (t *GrpcTransport) Kinds(ctx context.Context) (out []ledger.KindMeta, err error) {
	err = t.withClient(ctx, func(cli *rpc.Client) error {
		out, err = cli.Kinds(ctx)
		return err
	})
	return out, err
}

// Events pages through the audit trail via gRPC.
func (t *GrpcTransport) Events(ctx context.Context, req identifiersvc.EventsRequest) (out identifiersvc.EventsResult, err error) {
	err = t.withClient(ctx, func(cli *rpc.Client) error {
		out, err = cli.Events(ctx, req)
		return err
	})
	return out, err
}
