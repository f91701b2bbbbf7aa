package executor

import (
	"context"
	"errors"
	"fmt"

	language "github.com/hanpama/gqlvalidate/internal/language"
	schema "github.com/hanpama/gqlvalidate/internal/schema"
)

// ArgumentValidator checks and transforms coerced field arguments before the
// field is resolved. A returned error nulls the field and is reported at its
// path; errors exposing Extensions() keep those extensions.
type ArgumentValidator interface {
	ValidateArguments(ctx context.Context, objectType, field string, args map[string]any) (map[string]any, error)
}

// Option configures an Executor.
type Option func(*Executor)

// WithArgumentValidator runs v on the arguments of every field that declares any.
func WithArgumentValidator(v ArgumentValidator) Option {
	return func(e *Executor) { e.validator = v }
}

type Executor struct {
	runtime   Runtime
	schema    *schema.Schema
	validator ArgumentValidator
}

func NewExecutor(runtime Runtime, schema *schema.Schema, opts ...Option) *Executor {
	e := &Executor{runtime: runtime, schema: schema}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExecuteRequest runs one operation of document. Request-level failures
// (operation selection, variable coercion) return a result without data.
func (e *Executor) ExecuteRequest(
	ctx context.Context,
	document *language.QueryDocument,
	operationName string,
	variableValues map[string]any,
	initialValue any,
) *ExecutionResult {
	operation, err := selectOperation(document, operationName)
	if err != nil {
		return requestError(err)
	}
	variables, err := coerceVariableValues(e.schema, operation, variableValues)
	if err != nil {
		return requestError(err)
	}
	rootType, err := e.rootType(operation.Operation)
	if err != nil {
		return requestError(err)
	}

	state := &executionState{
		ctx:       ctx,
		runtime:   e.runtime,
		schema:    e.schema,
		validator: e.validator,
		document:  document,
		variables: variables,
		errors:    []GraphQLError{},
	}

	data := executeSelectionSet(state, rootType, operation.SelectionSet, initialValue, Path{}, nil)
	if data == nil {
		data = map[string]any{}
	}
	// One batch per depth: completing a batch may queue the next depth.
	for len(state.pending) > 0 {
		tasks, results := flushDepth(state)
		for i, res := range results {
			completeAsync(state, tasks[i], res, data)
		}
	}
	return &ExecutionResult{Data: data, Errors: state.errors}
}

func requestError(err error) *ExecutionResult {
	return &ExecutionResult{Errors: []GraphQLError{{Message: err.Error()}}}
}

func (e *Executor) rootType(op language.Operation) (*schema.Type, error) {
	var t *schema.Type
	switch op {
	case language.Query:
		t = e.schema.GetQueryType()
	case language.Mutation:
		t = e.schema.GetMutationType()
	case language.Subscription:
		t = e.schema.GetSubscriptionType()
	default:
		return nil, fmt.Errorf("unsupported operation type: %s", op)
	}
	if t == nil {
		return nil, fmt.Errorf("schema does not support %s operations", op)
	}
	return t, nil
}

// selectOperation picks the named operation, or the only one when name is empty.
func selectOperation(document *language.QueryDocument, name string) (*language.OperationDefinition, error) {
	if name == "" {
		switch len(document.Operations) {
		case 0:
			return nil, errors.New("document contains no operations")
		case 1:
			return document.Operations[0], nil
		}
		return nil, errors.New("operation name is required when the document contains multiple operations")
	}
	if op := document.Operations.ForName(name); op != nil {
		return op, nil
	}
	return nil, fmt.Errorf("unknown operation named %q", name)
}

// flushDepth hands every live queued task to the runtime in one call.
func flushDepth(state *executionState) ([]asyncTask, []AsyncResolveResult) {
	live := make([]asyncTask, 0, len(state.pending))
	for _, at := range state.pending {
		if !state.isNulled(at.path) {
			live = append(live, at)
		}
	}
	state.pending = nil
	if len(live) == 0 {
		return nil, nil
	}

	tasks := make([]AsyncResolveTask, len(live))
	for i, at := range live {
		tasks[i] = at.task
	}
	results := state.runtime.BatchResolveAsync(state.ctx, tasks)
	if len(results) != len(tasks) {
		err := fmt.Errorf("runtime returned %d results for %d tasks", len(results), len(tasks))
		results = make([]AsyncResolveResult, len(tasks))
		for i := range results {
			results[i].Error = err
		}
	}
	return live, results
}

// completeAsync writes one batch result into the response tree.
func completeAsync(state *executionState, at asyncTask, res AsyncResolveResult, data map[string]any) {
	if state.isNulled(at.path) {
		return
	}

	var completed any
	if res.Error != nil {
		state.addFieldError(res.Error, at.path)
	} else {
		completed = completeValue(state, at.typ, at.fields, res.Value, at.path, at.boundary)
	}
	if !isNullish(completed) {
		setAt(data, at.path, completed)
		return
	}

	target := at.path
	if schema.IsNonNull(at.typ) {
		target = at.boundary
		if len(target) == 0 {
			target = at.path.rootField()
		}
	}
	setAt(data, target, nil)
	state.markNulled(target)
}

func typeRefFromAST(t *language.Type) *schema.TypeRef {
	if t == nil {
		return nil
	}
	var ref *schema.TypeRef
	if t.Elem != nil {
		ref = schema.ListType(typeRefFromAST(t.Elem))
	} else {
		ref = schema.NamedType(t.NamedType)
	}
	if t.NonNull {
		return schema.NonNullType(ref)
	}
	return ref
}
