package grpcserver

import (
	"context"

	"github.com/pkg/errors"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/rzbill/cuidd/internal/ledger"
	"github.com/rzbill/cuidd/internal/rpc"
	identifiersvc "github.com/rzbill/cuidd/internal/services/identifiers"
)

type identifiersSvc struct {
	svc *identifiersvc.Service
}

func (s *identifiersSvc) Mint(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req identifiersvc.MintRequest
	if err := rpc.FromStruct(in, &req); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "decode request: %v", err)
	}
	recs, err := s.svc.Mint(ctx, req)
	if err != nil {
		return nil, toStatus(err)
	}
	return reply(rpc.MintResponse{IDs: recs})
}

func (s *identifiersSvc) Inspect(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req rpc.IDRequest
	if err := rpc.FromStruct(in, &req); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "decode request: %v", err)
	}
	res, err := s.svc.Inspect(ctx, req.ID)
	if err != nil {
		return nil, toStatus(err)
	}
	return reply(res)
}

func (s *identifiersSvc) List(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req identifiersvc.ListRequest
	if err := rpc.FromStruct(in, &req); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "decode request: %v", err)
	}
	res, err := s.svc.List(ctx, req)
	if err != nil {
		return nil, toStatus(err)
	}
	return reply(res)
}

func (s *identifiersSvc) Revoke(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req rpc.IDRequest
	if err := rpc.FromStruct(in, &req); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "decode request: %v", err)
	}
	if err := s.svc.Revoke(ctx, req.ID); err != nil {
		return nil, toStatus(err)
	}
	return &structpb.Struct{}, nil
}

func (s *identifiersSvc) Kinds(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	metas, err := s.svc.Stats(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return reply(rpc.KindsResponse{Kinds: metas})
}

func (s *identifiersSvc) Events(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req identifiersvc.EventsRequest
	if err := rpc.FromStruct(in, &req); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "decode request: %v", err)
	}
	res, err := s.svc.Events(ctx, req)
	if err != nil {
		return nil, toStatus(err)
	}
	return reply(res)
}

func reply(v any) (*structpb.Struct, error) {
	out, err := rpc.ToStruct(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}

// toStatus maps service errors to gRPC status codes.
func toStatus(err error) error {
	switch {
	case errors.Is(err, identifiersvc.ErrInvalidArgument):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, identifiersvc.ErrKindNotAllowed):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, identifiersvc.ErrNotFound), errors.Is(err, ledger.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, ledger.ErrDuplicate):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, "internal error")
	}
}
