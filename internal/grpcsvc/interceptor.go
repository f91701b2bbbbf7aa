package grpcsvc

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	eventbus "github.com/hanpama/gqlvalidate/internal/eventbus"
	events "github.com/hanpama/gqlvalidate/internal/events"
	reqid "github.com/hanpama/gqlvalidate/internal/reqid"
)

// RequestIDKey is the incoming metadata key holding the caller's request id.
// The HTTP server forwards the same key to resolvers.
const RequestIDKey = "graphql-request-id"

// UnaryInterceptor attaches a request id to the call context and publishes
// GRPCServerStart and GRPCServerFinish around the handler.
func UnaryInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if md, ok := metadata.FromIncomingContext(ctx); ok && len(md.Get(RequestIDKey)) > 0 {
		ctx = reqid.WithID(ctx, md.Get(RequestIDKey)[0])
	} else {
		ctx, _ = reqid.NewContext(ctx)
	}

	addr := ""
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		addr = p.Addr.String()
	}

	start := time.Now()
	eventbus.Publish(ctx, events.GRPCServerStart{Method: info.FullMethod, Peer: addr})
	resp, err := handler(ctx, req)
	eventbus.Publish(ctx, events.GRPCServerFinish{
		Method:   info.FullMethod,
		Peer:     addr,
		Code:     status.Code(err),
		Err:      err,
		Duration: time.Since(start),
	})
	return resp, err
}

// NewServer returns a grpc.Server with the interceptor installed and the
// service registered.
func NewServer(s *Service, opts ...grpc.ServerOption) *grpc.Server {
	opts = append([]grpc.ServerOption{grpc.ChainUnaryInterceptor(UnaryInterceptor)}, opts...)
	gs := grpc.NewServer(opts...)
	s.Register(gs)
	return gs
}
