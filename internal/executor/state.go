package executor

import (
	"context"
	"fmt"
	"reflect"
	"slices"

	language "github.com/hanpama/gqlvalidate/internal/language"
	schema "github.com/hanpama/gqlvalidate/internal/schema"
)

// executionState is owned by a single ExecuteRequest call.
type executionState struct {
	ctx       context.Context
	runtime   Runtime
	schema    *schema.Schema
	validator ArgumentValidator
	document  *language.QueryDocument
	variables map[string]any

	// pending holds the async fields queued at the depth being built.
	pending []asyncTask
	errors  []GraphQLError
	// nulled lists response paths already replaced by null. Work below
	// them is dropped.
	nulled []Path
}

// asyncTask is a queued async field together with what is needed to
// complete its value once the batch returns.
type asyncTask struct {
	task   AsyncResolveTask
	path   Path
	typ    *schema.TypeRef
	fields []*language.Field
	// boundary is the nearest nullable position at or above path. A null
	// in a non-null field replaces the value there.
	boundary Path
}

// asyncPending marks a response slot filled in by a later batch.
type asyncPending struct{}

func (s *executionState) addError(message string, path Path) {
	s.errors = append(s.errors, GraphQLError{Message: message, Path: path})
}

func (s *executionState) addErrorf(path Path, format string, args ...any) {
	s.addError(fmt.Sprintf(format, args...), path)
}

// addFieldError records err at path, carrying extensions from errors that expose them.
func (s *executionState) addFieldError(err error, path Path) {
	s.errors = append(s.errors, newGraphQLError(err, path))
}

func (s *executionState) hasErrorAt(path Path) bool {
	return slices.ContainsFunc(s.errors, func(e GraphQLError) bool {
		return slices.Equal(e.Path, path)
	})
}

func (s *executionState) markNulled(p Path) {
	if len(p) > 0 {
		s.nulled = append(s.nulled, p)
	}
}

func (s *executionState) isNulled(p Path) bool {
	return slices.ContainsFunc(s.nulled, p.hasPrefix)
}

// isNullish reports nil interfaces and typed nils.
func isNullish(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Interface, reflect.Pointer, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
