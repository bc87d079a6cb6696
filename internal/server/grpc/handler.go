package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/mandaditos/internal/common"
	"github.com/dmitrijs2005/mandaditos/internal/docstore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

func (s *GRPCServer) mapError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, common.ErrUnknownCollection):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, common.ErrorUnauthorized):
		return status.Error(codes.Unauthenticated, "unauthorized")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	}
	s.logger.Error(ctx, "request failed", "error", err)
	return status.Error(codes.Internal, "internal error")
}

func (s *GRPCServer) Login(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req := docstore.DecodeLoginRequest(in)

	token, err := s.auth.Login(ctx, req.Device, []byte(req.AccessKey))
	if err != nil {
		s.logger.Info(ctx, "Login rejected", "device", req.Device)
		return nil, s.mapError(ctx, err)
	}

	s.logger.Info(ctx, "Logged in", "device", req.Device)
	return docstore.LoginResponse{AccessToken: token}.Struct()
}

func (s *GRPCServer) Ping(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return docstore.PingResponse{Status: "OK"}.Struct()
}

func (s *GRPCServer) Create(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req := docstore.DecodeCreateRequest(in)
	if req.OriginID == "" {
		return nil, status.Error(codes.InvalidArgument, "origin_id is required")
	}

	id, err := s.documents.Create(ctx, req.Collection, req.OriginID, req.Payload)
	if err != nil {
		return nil, s.mapError(ctx, err)
	}
	return docstore.CreateResponse{RemoteID: id}.Struct()
}

func (s *GRPCServer) Update(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req := docstore.DecodeUpdateRequest(in)

	if err := s.documents.Update(ctx, req.Collection, req.RemoteID, req.Payload); err != nil {
		return nil, s.mapError(ctx, err)
	}
	return docstore.Empty(), nil
}

func (s *GRPCServer) List(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req := docstore.DecodeListRequest(in)

	docs, err := s.documents.List(ctx, req.Collection, req.Field, req.Value)
	if err != nil {
		return nil, s.mapError(ctx, err)
	}

	resp := docstore.ListResponse{Documents: make([]docstore.Document, 0, len(docs))}
	for _, d := range docs {
		resp.Documents = append(resp.Documents, docstore.Document{RemoteID: d.ID, OriginID: d.OriginID, Payload: d.Payload})
	}
	return resp.Struct()
}

func (s *GRPCServer) Delete(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req := docstore.DecodeDeleteRequest(in)

	if err := s.documents.Delete(ctx, req.Collection, req.RemoteID); err != nil {
		return nil, s.mapError(ctx, err)
	}
	return docstore.Empty(), nil
}

func (s *GRPCServer) Export(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req := docstore.DecodeExportRequest(in)

	key, n, err := s.documents.Export(ctx, req.Collection)
	if err != nil {
		return nil, s.mapError(ctx, err)
	}
	s.logger.Info(ctx, "Exported collection", "collection", req.Collection, "key", key, "count", n, "device", DeviceFromContext(ctx))
	return docstore.ExportResponse{Key: key, Count: n}.Struct()
}
