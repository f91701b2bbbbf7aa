package logger

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	eventbus "github.com/hanpama/gqlvalidate/internal/eventbus"
	events "github.com/hanpama/gqlvalidate/internal/events"
	reqid "github.com/hanpama/gqlvalidate/internal/reqid"
	validation "github.com/hanpama/gqlvalidate/internal/validation"
)

// Subscribe logs HTTP requests, GraphQL operations, gRPC calls and
// validation walks published on the global bus.
func (l *Logger) Subscribe() (unsubscribe func()) {
	subs := []func(){
		eventbus.Subscribe(func(ctx context.Context, e events.HTTPFinish) {
			l.request(ctx, zerolog.InfoLevel).
				Str("method", e.Request.Method).
				Str("path", e.Request.URL.Path).
				Int("status", e.Status).
				Dur("duration", e.Duration).
				Msg("http request")
		}),
		eventbus.Subscribe(func(ctx context.Context, e events.GraphQLFinish) {
			level := zerolog.DebugLevel
			if len(e.Errors) > 0 {
				level = zerolog.WarnLevel
			}
			l.request(ctx, level).
				Errs("errors", e.Errors).
				Str("operation", e.OperationName).
				Str("type", e.OperationType).
				Dur("duration", e.Duration).
				Msg("graphql operation")
		}),
		eventbus.Subscribe(func(ctx context.Context, e events.GRPCServerFinish) {
			level := zerolog.InfoLevel
			if e.Err != nil {
				level = zerolog.WarnLevel
			}
			l.request(ctx, level).
				Err(e.Err).
				Str("method", e.Method).
				Str("peer", e.Peer).
				Str("code", e.Code.String()).
				Dur("duration", e.Duration).
				Msg("grpc call")
		}),
		eventbus.Subscribe(func(ctx context.Context, e events.ValidationFinish) {
			var failure *validation.Failure
			switch {
			case e.Err == nil:
				l.request(ctx, zerolog.DebugLevel).
					Str("target", e.Target).
					Dur("duration", e.Duration).
					Msg("validation passed")
			case errors.As(e.Err, &failure):
				codes := make([]string, len(failure.Errors))
				for i, ve := range failure.Errors {
					codes[i] = ve.Error()
				}
				l.request(ctx, zerolog.InfoLevel).
					Str("target", e.Target).
					Strs("errors", codes).
					Msg("validation failed")
			default:
				l.request(ctx, zerolog.ErrorLevel).
					Str("target", e.Target).
					Err(e.Err).
					Msg("validation aborted")
			}
		}),
	}
	return func() {
		for _, f := range subs {
			f()
		}
	}
}

func (l *Logger) request(ctx context.Context, level zerolog.Level) *zerolog.Event {
	ev := l.WithLevel(level)
	if rid, ok := reqid.FromContext(ctx); ok {
		ev = ev.Str("request_id", rid)
	}
	return ev
}
