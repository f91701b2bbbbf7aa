package executor

import (
	"context"
)

// Runtime resolves field values for the Executor.
//
// Execution is breadth first. At each depth the Executor resolves sync fields
// through ResolveSync as it meets them, then hands every async field queued at
// that depth to a single BatchResolveAsync call. Fields under a response path
// that has already been nulled are never handed out.
//
// Errors returned by any method become GraphQL errors located at the field;
// errors that expose Extensions() keep them. Implementations must be safe for
// concurrent use by different requests and must not mutate source or args.
type Runtime interface {
	// ResolveSync resolves a field whose schema definition is not async.
	// Returning (nil, nil) yields null.
	ResolveSync(ctx context.Context, objectType string, field string, source any, args map[string]any) (any, error)

	// BatchResolveAsync resolves one depth of async fields. results[i]
	// answers tasks[i]; a failure in one element leaves the others alone.
	BatchResolveAsync(ctx context.Context, tasks []AsyncResolveTask) []AsyncResolveResult

	// ResolveType names the object type of a value of an interface or union.
	ResolveType(ctx context.Context, abstractType string, value any) (string, error)

	// ResolveUnionConcreteValue and ResolveInterfaceConcreteValue unwrap an
	// abstract value before its concrete selection set is executed.
	ResolveUnionConcreteValue(ctx context.Context, unionTypeName string, value any) (any, error)
	ResolveInterfaceConcreteValue(ctx context.Context, interfaceTypeName string, value any) (any, error)

	// SerializeLeafValue turns a scalar or enum value into its JSON form.
	SerializeLeafValue(ctx context.Context, scalarOrEnumTypeName string, value any) (any, error)
}

// AsyncResolveTask is one async field awaiting resolution.
type AsyncResolveTask struct {
	ObjectType string
	Field      string
	// Source is the parent value, nil for root fields.
	Source any
	// Args are already coerced and, when a validator is configured, validated.
	Args map[string]any
}

type AsyncResolveResult struct {
	Value any
	Error error
}
