package rpc

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/rzbill/cuidd/internal/ledger"
	identifiersvc "github.com/rzbill/cuidd/internal/services/identifiers"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "cuidd.v1.Identifiers"

// Method names.
const (
	MethodMint    = "Mint"
	MethodInspect = "Inspect"
	MethodList    = "List"
	MethodRevoke  = "Revoke"
	MethodKinds   = "Kinds"
	MethodEvents  = "Events"
)

// FullMethod returns /cuidd.v1.Identifiers/<method>.
func FullMethod(method string) string { return "/" + ServiceName + "/" + method }

// IdentifiersServer is implemented by the gRPC transport.
type IdentifiersServer interface {
	Mint(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Inspect(context.Context, *structpb.Struct) (*structpb.Struct, error)
	List(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Revoke(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Kinds(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Events(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// ServiceDesc describes the service for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*IdentifiersServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodMint, IdentifiersServer.Mint),
		unary(MethodInspect, IdentifiersServer.Inspect),
		unary(MethodList, IdentifiersServer.List),
		unary(MethodRevoke, IdentifiersServer.Revoke),
		unary(MethodKinds, IdentifiersServer.Kinds),
		unary(MethodEvents, IdentifiersServer.Events),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "cuidd/v1/identifiers.proto",
}

type unaryCall func(IdentifiersServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unary(method string, call unaryCall) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(IdentifiersServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(srv.(IdentifiersServer), ctx, req.(*structpb.Struct))
			})
		},
	}
}

// ToStruct converts a JSON-tagged value into a Struct.
func ToStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := protojson.Unmarshal(b, out); err != nil {
		return nil, errors.Wrap(err, "value is not a JSON object")
	}
	return out, nil
}

// FromStruct decodes a Struct into a JSON-tagged value.
func FromStruct(s *structpb.Struct, v any) error {
	b, err := protojson.Marshal(s)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// IDRequest is the Inspect and Revoke payload.
type IDRequest struct {
	ID string `json:"id"`
}

// KindsResponse is the Kinds payload.
type KindsResponse struct {
	Kinds []ledger.KindMeta `json:"kinds"`
}

// MintResponse is the Mint payload.
type MintResponse struct {
	IDs []ledger.Record `json:"ids"`
}

// Client calls cuidd.v1.Identifiers over a connection.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps cc.
func NewClient(cc grpc.ClientConnInterface) *Client { return &Client{cc: cc} }

func (c *Client) invoke(ctx context.Context, method string, req, resp any) error {
	in, err := ToStruct(req)
	if err != nil {
		return err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(method), in, out); err != nil {
		return err
	}
	return FromStruct(out, resp)
}

// Mint calls Mint.
func (c *Client) Mint(ctx context.Context, req identifiersvc.MintRequest) ([]ledger.Record, error) {
	var resp MintResponse
	if err := c.invoke(ctx, MethodMint, req, &resp); err != nil {
		return nil, err
	}
	return resp.IDs, nil
}

// Inspect calls Inspect.
func (c *Client) Inspect(ctx context.Context, id string) (identifiersvc.Inspection, error) {
	var resp identifiersvc.Inspection
	err := c.invoke(ctx, MethodInspect, IDRequest{ID: id}, &resp)
	return resp, err
}

// List calls List.
func (c *Client) List(ctx context.Context, req identifiersvc.ListRequest) (identifiersvc.ListResult, error) {
	var resp identifiersvc.ListResult
	err := c.invoke(ctx, MethodList, req, &resp)
	return resp, err
}

// Revoke calls Revoke.
func (c *Client) Revoke(ctx context.Context, id string) error {
	var resp struct{}
	return c.invoke(ctx, MethodRevoke, IDRequest{ID: id}, &resp)
}

// Kinds calls Kinds.
func (c *Client) Kinds(ctx context.Context) ([]ledger.KindMeta, error) {
	var resp KindsResponse
	if err := c.invoke(ctx, MethodKinds, struct{}{}, &resp); err != nil {
		return nil, err
	}
	return resp.Kinds, nil
}

// Events calls Events.
func (c *Client) Events(ctx context.Context, req identifiersvc.EventsRequest) (identifiersvc.EventsResult, error) {
	var resp identifiersvc.EventsResult
	err := c.invoke(ctx, MethodEvents, req, &resp)
	return resp, err
}
