package logger

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	eventbus "github.com/hanpama/gqlvalidate/internal/eventbus"
	events "github.com/hanpama/gqlvalidate/internal/events"
	reqid "github.com/hanpama/gqlvalidate/internal/reqid"
	validation "github.com/hanpama/gqlvalidate/internal/validation"
)

func entries(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	sc := bufio.NewScanner(buf)
	for sc.Scan() {
		var e map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &e))
		out = append(out, e)
	}
	return out
}

func TestNew_Fields(t *testing.T) {
	var buf bytes.Buffer
	l := New("test-role", zerolog.DebugLevel, &buf)
	l.Info().Msg("hello")

	got := entries(t, &buf)
	require.Len(t, got, 1)
	assert.Equal(t, "test-role", got[0]["role"])
	assert.Contains(t, got[0], "time")
	assert.Contains(t, got[0], "func")
	assert.Equal(t, "func", zerolog.CallerFieldName)
}

func TestNew_Level(t *testing.T) {
	var buf bytes.Buffer
	l := New("test", zerolog.WarnLevel, &buf)
	l.Info().Msg("dropped")
	l.Warn().Msg("kept")
	got := entries(t, &buf)
	require.Len(t, got, 1)
	assert.Equal(t, "kept", got[0]["message"])
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, lvl)

	lvl, err = ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, lvl)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestNop_DiscardsOutput(t *testing.T) {
	var buf bytes.Buffer
	l := Nop()
	l.Logger = l.Output(&buf)
	l.Info().Msg("should be discarded")
	assert.Empty(t, buf.String())
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	l := New("ctx", zerolog.DebugLevel, &buf)
	ctx := l.WithContext(context.Background())
	FromContext(ctx).Info().Msg("from ctx")
	got := entries(t, &buf)
	require.Len(t, got, 1)
	assert.Equal(t, "ctx", got[0]["role"])
}

func TestSubscribe(t *testing.T) {
	eventbus.Use(eventbus.New())
	t.Cleanup(func() { eventbus.Use(nil) })

	var buf bytes.Buffer
	l := New("events", zerolog.DebugLevel, &buf)
	unsubscribe := l.Subscribe()

	ctx := reqid.WithID(context.Background(), "rid-7")
	eventbus.Publish(ctx, events.HTTPFinish{Request: httptest.NewRequest("POST", "/graphql", nil), Status: 200})
	eventbus.Publish(ctx, events.ValidationFinish{
		Target:     "SignupInput",
		ErrorCount: 1,
		Err:        &validation.Failure{Errors: []*validation.Error{validation.EmptyString().WithPath("email")}},
	})
	eventbus.Publish(ctx, events.ValidationFinish{Target: "SignupInput", Err: errors.New("boom")})

	got := entries(t, &buf)
	require.Len(t, got, 3)
	assert.Equal(t, "http request", got[0]["message"])
	assert.Equal(t, "rid-7", got[0]["request_id"])
	assert.Equal(t, float64(200), got[0]["status"])

	assert.Equal(t, "validation failed", got[1]["message"])
	assert.Equal(t, []any{"EmptyString at email"}, got[1]["errors"])

	assert.Equal(t, "validation aborted", got[2]["message"])
	assert.Equal(t, "error", got[2]["level"])

	unsubscribe()
	eventbus.Publish(ctx, events.HTTPFinish{Request: httptest.NewRequest("GET", "/", nil)})
	assert.Empty(t, buf.String())
}
