package grpcsvc

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/backoff"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	eventbus "github.com/hanpama/gqlvalidate/internal/eventbus"
	events "github.com/hanpama/gqlvalidate/internal/events"
	reqid "github.com/hanpama/gqlvalidate/internal/reqid"
)

// Result is the decoded response of a Validate call.
type Result struct {
	Valid            bool
	Value            map[string]any
	ValidationErrors []any
}

// Client calls a remote Validation service.
//
// Defaults:
//   - RPC timeout 3s, used only when the context has no deadline
//   - insecure credentials with the default connect backoff
type Client struct {
	target  string
	timeout time.Duration
	conn    *grpc.ClientConn
	closed  atomic.Bool
}

type ClientOption func(*clientOptions)

type clientOptions struct {
	timeout time.Duration
	dial    []grpc.DialOption
}

func WithRPCTimeout(d time.Duration) ClientOption {
	return func(o *clientOptions) { o.timeout = d }
}

func WithDialOptions(opts ...grpc.DialOption) ClientOption {
	return func(o *clientOptions) { o.dial = opts }
}

// Dial creates a client for target. The connection is established lazily on
// the first call.
func Dial(target string, opts ...ClientOption) (*Client, error) {
	o := &clientOptions{timeout: 3 * time.Second}
	for _, f := range opts {
		f(o)
	}
	if len(o.dial) == 0 {
		o.dial = []grpc.DialOption{
			grpc.WithTransportCredentials(insecure.NewCredentials()),
			grpc.WithConnectParams(grpc.ConnectParams{Backoff: backoff.DefaultConfig}),
		}
	}
	conn, err := grpc.NewClient(target, o.dial...)
	if err != nil {
		return nil, fmt.Errorf("grpcsvc: dial %s: %w", target, err)
	}
	return &Client{target: target, timeout: o.timeout, conn: conn}, nil
}

// Validate validates input as an instance of typeName on the remote service.
// The request id of ctx, if any, is forwarded in metadata.
func (c *Client) Validate(ctx context.Context, typeName string, input map[string]any) (*Result, error) {
	if c.closed.Load() {
		return nil, fmt.Errorf("grpcsvc: client closed")
	}
	if _, ok := ctx.Deadline(); !ok && c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	if rid, ok := reqid.FromContext(ctx); ok {
		ctx = metadata.AppendToOutgoingContext(ctx, RequestIDKey, rid)
	}

	var in any
	if input != nil {
		in = input
	}
	req, err := structpb.NewStruct(map[string]any{"type": typeName, "input": in})
	if err != nil {
		return nil, fmt.Errorf("grpcsvc: encode request: %w", err)
	}

	start := time.Now()
	eventbus.Publish(ctx, events.GRPCClientStart{Method: ValidateMethod, Target: c.target})
	resp := new(structpb.Struct)
	err = c.conn.Invoke(ctx, ValidateMethod, req, resp)
	eventbus.Publish(ctx, events.GRPCClientFinish{
		Method:   ValidateMethod,
		Target:   c.target,
		Code:     status.Code(err),
		Err:      err,
		Duration: time.Since(start),
	})
	if err != nil {
		return nil, err
	}

	out := resp.AsMap()
	res := &Result{}
	res.Valid, _ = out["valid"].(bool)
	res.Value, _ = out["value"].(map[string]any)
	res.ValidationErrors, _ = out["validationErrors"].([]any)
	return res, nil
}

func (c *Client) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	return c.conn.Close()
}
