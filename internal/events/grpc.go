package events

import (
	"time"

	"google.golang.org/grpc/codes"
)

// GRPCServerStart is emitted when a unary gRPC call is received.
type GRPCServerStart struct {
	Method string
	Peer   string
}

// GRPCServerFinish is emitted after a unary gRPC handler returns.
type GRPCServerFinish struct {
	Method   string
	Peer     string
	Code     codes.Code
	Err      error
	Duration time.Duration
}

// GRPCClientStart is emitted before a call to a remote Validation service.
type GRPCClientStart struct {
	Method string
	Target string
}

// GRPCClientFinish is emitted after the remote call returns.
type GRPCClientFinish struct {
	Method   string
	Target   string
	Code     codes.Code
	Err      error
	Duration time.Duration
}
