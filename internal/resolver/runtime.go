// Package resolver implements executor.Runtime with Go functions registered
// per field. Fields without a function are projected from map sources.
package resolver

import (
	"context"
	"encoding/base64"
	"fmt"
	"math"
	"sync"

	"golang.org/x/sync/errgroup"

	executor "github.com/hanpama/gqlvalidate/internal/executor"
	schema "github.com/hanpama/gqlvalidate/internal/schema"
)

// Func resolves one field for one parent value.
type Func = func(ctx context.Context, source any, args map[string]any) (any, error)

// Runtime resolves fields in process.
//   - Registered functions win over projection for both sync and async fields.
//   - Unregistered fields read source[field] when source is a map[string]any.
//   - BatchResolveAsync groups tasks by (objectType, field) and runs groups in
//     parallel; tasks inside a group run in order. Results keep task order.
//   - A panicking function fails its own task only.
type Runtime struct {
	mu     sync.RWMutex
	funcs  map[string]Func
	schema *schema.Schema
	limit  int
}

var _ executor.Runtime = (*Runtime)(nil)

type Option func(*Runtime)

// WithConcurrency bounds the number of groups resolved at the same time.
// Zero or negative means unbounded.
func WithConcurrency(n int) Option {
	return func(r *Runtime) { r.limit = n }
}

// New returns a runtime serving sch. The schema is used for enum
// serialization and abstract type resolution.
func New(sch *schema.Schema, opts ...Option) *Runtime {
	r := &Runtime{funcs: make(map[string]Func), schema: sch}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register sets the function resolving objectType.field.
func (r *Runtime) Register(objectType, field string, fn Func) *Runtime {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[objectType+"."+field] = fn
	return r
}

func (r *Runtime) lookup(objectType, field string) Func {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.funcs[objectType+"."+field]
}

func (r *Runtime) ResolveSync(ctx context.Context, objectType string, field string, source any, args map[string]any) (any, error) {
	return r.resolve(ctx, objectType, field, source, args)
}

func (r *Runtime) BatchResolveAsync(ctx context.Context, tasks []executor.AsyncResolveTask) []executor.AsyncResolveResult {
	results := make([]executor.AsyncResolveResult, len(tasks))
	if len(tasks) == 0 {
		return results
	}

	type groupKey struct {
		objectType string
		field      string
	}
	var groups [][]int
	idxByKey := map[groupKey]int{}
	for i, t := range tasks {
		k := groupKey{objectType: t.ObjectType, field: t.Field}
		if gi, ok := idxByKey[k]; ok {
			groups[gi] = append(groups[gi], i)
		} else {
			idxByKey[k] = len(groups)
			groups = append(groups, []int{i})
		}
	}

	var g errgroup.Group
	if r.limit > 0 {
		g.SetLimit(r.limit)
	}
	for _, idxs := range groups {
		g.Go(func() error {
			for _, i := range idxs {
				if err := ctx.Err(); err != nil {
					results[i] = executor.AsyncResolveResult{Error: err}
					continue
				}
				t := tasks[i]
				v, err := r.resolve(ctx, t.ObjectType, t.Field, t.Source, t.Args)
				results[i] = executor.AsyncResolveResult{Value: v, Error: err}
			}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (r *Runtime) resolve(ctx context.Context, objectType, field string, source any, args map[string]any) (v any, err error) {
	fn := r.lookup(objectType, field)
	if fn == nil {
		return project(objectType, field, source)
	}
	defer func() {
		if p := recover(); p != nil {
			v, err = nil, fmt.Errorf("resolver %s.%s panicked: %v", objectType, field, p)
		}
	}()
	return fn(ctx, source, args)
}

func project(objectType, field string, source any) (any, error) {
	switch s := source.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return s[field], nil
	default:
		return nil, fmt.Errorf("no resolver for %s.%s and source %T is not a map", objectType, field, source)
	}
}

// ResolveType reads the "__typename" key of map values.
func (r *Runtime) ResolveType(ctx context.Context, abstractType string, value any) (string, error) {
	if m, ok := value.(map[string]any); ok {
		if name, ok := m["__typename"].(string); ok && name != "" {
			return name, nil
		}
	}
	if r.schema != nil {
		if t := r.schema.Types[abstractType]; t != nil && len(t.PossibleTypes) == 1 {
			return t.PossibleTypes[0], nil
		}
	}
	return "", fmt.Errorf("cannot resolve concrete type of %s from %T", abstractType, value)
}

func (r *Runtime) ResolveUnionConcreteValue(ctx context.Context, unionTypeName string, value any) (any, error) {
	return value, nil
}

func (r *Runtime) ResolveInterfaceConcreteValue(ctx context.Context, interfaceTypeName string, value any) (any, error) {
	return value, nil
}

// SerializeLeafValue coerces built-in scalars to their JSON representation
// and checks enum membership. Custom scalars pass through, byte slices as
// base64 strings.
func (r *Runtime) SerializeLeafValue(ctx context.Context, scalarOrEnumTypeName string, value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	switch scalarOrEnumTypeName {
	case "Int":
		return serializeInt(value)
	case "Float":
		return serializeFloat(value)
	case "String":
		return serializeString(value)
	case "Boolean":
		if b, ok := value.(bool); ok {
			return b, nil
		}
		return nil, fmt.Errorf("Boolean cannot represent %v (%T)", value, value)
	case "ID":
		switch v := value.(type) {
		case string:
			return v, nil
		case int, int32, int64:
			return fmt.Sprint(v), nil
		}
		return nil, fmt.Errorf("ID cannot represent %v (%T)", value, value)
	}

	if r.schema != nil {
		if t := r.schema.Types[scalarOrEnumTypeName]; t != nil && t.Kind == schema.TypeKindEnum {
			name := fmt.Sprint(value)
			if !t.HasEnumValue(name) {
				return nil, fmt.Errorf("enum %s has no value %q", t.Name, name)
			}
			return name, nil
		}
	}
	if b, ok := value.([]byte); ok {
		return base64.StdEncoding.EncodeToString(b), nil
	}
	return value, nil
}

func serializeInt(value any) (any, error) {
	var n int64
	switch v := value.(type) {
	case int:
		n = int64(v)
	case int32:
		n = int64(v)
	case int64:
		n = v
	case float64:
		if v != math.Trunc(v) {
			return nil, fmt.Errorf("Int cannot represent non-integer value %v", v)
		}
		n = int64(v)
	default:
		return nil, fmt.Errorf("Int cannot represent %v (%T)", value, value)
	}
	if n > math.MaxInt32 || n < math.MinInt32 {
		return nil, fmt.Errorf("Int cannot represent non 32-bit signed integer value %d", n)
	}
	return int(n), nil
}

func serializeFloat(value any) (any, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	}
	return nil, fmt.Errorf("Float cannot represent %v (%T)", value, value)
}

func serializeString(value any) (any, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	case bool, int, int32, int64, float64:
		return fmt.Sprint(v), nil
	}
	return nil, fmt.Errorf("String cannot represent %v (%T)", value, value)
}
