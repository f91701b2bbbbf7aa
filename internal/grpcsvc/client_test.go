package grpcsvc

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	eventbus "github.com/hanpama/gqlvalidate/internal/eventbus"
	events "github.com/hanpama/gqlvalidate/internal/events"
	reqid "github.com/hanpama/gqlvalidate/internal/reqid"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	gs := NewServer(newTestService(t))
	go func() { _ = gs.Serve(lis) }()
	t.Cleanup(gs.Stop)

	c, err := Dial("passthrough:///bufnet", WithDialOptions(
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestClientValidate(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	res, err := c.Validate(ctx, "SignupInput", map[string]any{"email": "a@b.c"})
	require.NoError(t, err)
	require.True(t, res.Valid)
	require.Equal(t, map[string]any{"email": "a@b.c"}, res.Value)
	require.Empty(t, res.ValidationErrors)

	res, err = c.Validate(ctx, "SignupInput", map[string]any{"email": ""})
	require.NoError(t, err)
	require.False(t, res.Valid)
	require.Nil(t, res.Value)
	require.Equal(t, []any{map[string]any{"code": "EmptyString", "path": []any{"email"}}}, res.ValidationErrors)

	_, err = c.Validate(ctx, "Nope", nil)
	require.Equal(t, codes.NotFound, status.Code(err))
}

func TestClientForwardsRequestID(t *testing.T) {
	bus := eventbus.New()
	eventbus.Use(bus)
	t.Cleanup(func() { eventbus.Use(nil) })

	serverIDs := make(chan string, 1)
	eventbus.SubscribeTo(bus, func(ctx context.Context, e events.GRPCServerStart) {
		id, _ := reqid.FromContext(ctx)
		serverIDs <- id
	})
	var finished []events.GRPCClientFinish
	eventbus.SubscribeTo(bus, func(ctx context.Context, e events.GRPCClientFinish) {
		finished = append(finished, e)
	})

	c := newTestClient(t)
	ctx := reqid.WithID(context.Background(), "rid-42")
	_, err := c.Validate(ctx, "SignupInput", nil)
	require.NoError(t, err)

	require.Equal(t, "rid-42", <-serverIDs)
	require.Len(t, finished, 1)
	require.Equal(t, codes.OK, finished[0].Code)
	require.Equal(t, "passthrough:///bufnet", finished[0].Target)
}

func TestClientClosed(t *testing.T) {
	c := newTestClient(t)
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	_, err := c.Validate(context.Background(), "SignupInput", nil)
	require.EqualError(t, err, "grpcsvc: client closed")
}
