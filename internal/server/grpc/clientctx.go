package grpcserver

import (
	"context"
	"net"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"

	"github.com/and161185/lovepage/internal/share"
)

// ClientUnary tags the request context with the caller address used by the share gate.
// With trustProxy the first x-forwarded-for entry wins over the peer address; without it
// the header is ignored, since any caller can set it.
func ClientUnary(trustProxy bool) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, _ *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		if c := clientAddr(ctx, trustProxy); c != "" {
			ctx = share.WithClient(ctx, c)
		}
		return next(ctx, req)
	}
}

func clientAddr(ctx context.Context, trustProxy bool) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok && trustProxy {
		if v := md.Get("x-forwarded-for"); len(v) > 0 {
			first, _, _ := strings.Cut(v[0], ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
	}
	p, ok := peer.FromContext(ctx)
	if !ok || p.Addr == nil {
		return ""
	}
	addr := p.Addr.String()
	// ports change per connection; only the host identifies the client
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
