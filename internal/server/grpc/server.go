// Package grpcserver exposes the declaration page gRPC API handlers.
package grpcserver

import (
	"context"
	"errors"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/and161185/lovepage/internal/convert"
	"github.com/and161185/lovepage/internal/errs"
	"github.com/and161185/lovepage/internal/service"
)

// Server wires the declaration service into gRPC handlers.
type Server struct {
	svc service.DeclarationService
	now func() time.Time
}

var _ DeclarationsServer = (*Server)(nil)

// New constructs a gRPC server with the injected service.
func New(svc service.DeclarationService) *Server {
	return &Server{svc: svc, now: time.Now}
}

// Share stores or encodes the document and returns its link.
func (s *Server) Share(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	doc, err := convert.FromProtoDocument(req, s.now())
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "bad document: %v", err)
	}
	link, err := s.svc.Share(ctx, doc)
	if err != nil {
		return nil, toStatus("share", err)
	}
	out, err := convert.ToProtoLink(link)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "share: %v", err)
	}
	return out, nil
}

// Open resolves a share link. Unreadable links come back in "missing" mode, not as errors.
func (s *Server) Open(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	v := s.svc.Open(ctx, req.GetValue())
	out, err := convert.ToProtoView(v, s.now())
	if err != nil {
		return nil, status.Errorf(codes.Internal, "open: %v", err)
	}
	return out, nil
}

// NormalizeImage converts an uploaded or remote image into an embeddable asset.
func (s *Server) NormalizeImage(ctx context.Context, req *structpb.Struct) (*wrapperspb.StringValue, error) {
	src, crop, err := convert.FromProtoSource(req)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "bad source: %v", err)
	}
	asset, err := s.svc.Normalize(ctx, src, crop)
	if err != nil {
		return nil, toStatus("normalize image", err)
	}
	return wrapperspb.String(asset), nil
}

// NormalizeAudio converts an uploaded song into an embeddable asset.
func (s *Server) NormalizeAudio(ctx context.Context, req *structpb.Struct) (*wrapperspb.StringValue, error) {
	src, _, err := convert.FromProtoSource(req)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "bad source: %v", err)
	}
	asset, err := s.svc.NormalizeAudio(ctx, src)
	if err != nil {
		return nil, toStatus("normalize audio", err)
	}
	return wrapperspb.String(asset), nil
}

func toStatus(op string, err error) error {
	switch {
	case errors.Is(err, errs.ErrValidation), errors.Is(err, errs.ErrDecode), errors.Is(err, errs.ErrDecodeFailed):
		return status.Errorf(codes.InvalidArgument, "%s: %v", op, err)
	case errors.Is(err, context.DeadlineExceeded):
		return status.Errorf(codes.DeadlineExceeded, "%s: %v", op, err)
	default:
		return status.Errorf(codes.Internal, "%s: %v", op, err)
	}
}
