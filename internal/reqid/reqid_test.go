package reqid

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestContextRoundTrip(t *testing.T) {
	ctx, id := NewContext(context.Background())
	got, ok := FromContext(ctx)
	require.True(t, ok)
	require.Equal(t, id, got)
	_, err := uuid.Parse(got)
	require.NoError(t, err)

	_, ok = FromContext(context.Background())
	require.False(t, ok, "unexpected id in empty context")
}

func TestWithID(t *testing.T) {
	got, ok := FromContext(WithID(context.Background(), "upstream-1"))
	require.True(t, ok)
	require.Equal(t, "upstream-1", got)
}
