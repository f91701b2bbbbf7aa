// Package executor runs GraphQL operations breadth first against a Runtime,
// checking field arguments with an optional ArgumentValidator before any
// resolver sees them.
//
// # Execution
//
// ExecuteRequest selects the operation, coerces variables and walks the root
// selection set. Each field is handled in four steps:
//
//  1. Arguments are coerced to their declared types. Defaults fill missing
//     arguments; an argument bound to an unset variable counts as missing.
//  2. The ArgumentValidator, when configured, receives the coerced arguments
//     of every field that declares any. Its result replaces them. An error
//     nulls the field and is reported at the field path, so a rejected
//     mutation never reaches its resolver.
//  3. Sync fields (schema.Field.Async == false) are resolved immediately and
//     completed in place. Async fields are queued.
//  4. When the selection sets of a depth are exhausted, every queued field is
//     handed to Runtime.BatchResolveAsync at once. Completing those values may
//     queue the next depth.
//
// The schema builder marks Query root fields async and everything else sync,
// so mutation root fields run one after another in document order.
//
// # Nulls and errors
//
// A null in a non-null position replaces the value at the nearest nullable
// position above it, following the GraphQL rules. When no such position exists
// below the root, the top-level field is nulled and sibling root fields keep
// their values. Queued work below a nulled path is dropped before the next
// batch.
//
// Errors are collected in the order they occur. An error implementing
//
//	Extensions() map[string]any
//
// keeps its message and extensions in the response; the validation package's
// aggregate ValidationError relies on this to carry its validationErrors list.
package executor
