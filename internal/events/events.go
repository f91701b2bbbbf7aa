// Package events defines the payloads published on the event bus. The
// request context passed to Publish carries the request id.
package events

import (
	"net/http"
	"time"
)

// HTTPStart is emitted when an HTTP request is received.
type HTTPStart struct {
	Request *http.Request
}

// HTTPFinish is emitted after the handler completes.
type HTTPFinish struct {
	Request  *http.Request
	Status   int
	Duration time.Duration
}

// GraphQLStart is emitted before executing a GraphQL operation.
type GraphQLStart struct {
	OperationName string
	OperationType string
	CacheHit      bool
}

// GraphQLFinish is emitted after executing a GraphQL operation.
type GraphQLFinish struct {
	OperationName string
	OperationType string
	Errors        []error
	Duration      time.Duration
}
