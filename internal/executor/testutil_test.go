package executor

import (
	"context"
	"fmt"
	"sync"
	"testing"

	language "github.com/hanpama/gqlvalidate/internal/language"
	schema "github.com/hanpama/gqlvalidate/internal/schema"
)

// mustParseQuery parses a GraphQL query and fails the test on error.
func mustParseQuery(t *testing.T, q string) *language.QueryDocument {
	t.Helper()
	d, err := language.ParseQuery(q)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return d
}

func mustBuildSchema(t *testing.T, sdl string) *schema.Schema {
	t.Helper()
	sch, err := schema.BuildFromSDL(sdl)
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	return sch
}

type fakeFunc func(ctx context.Context, source any, args map[string]any) (any, error)

func constant(v any) fakeFunc {
	return func(context.Context, any, map[string]any) (any, error) { return v, nil }
}

// fakeRuntime resolves "Type.field" keys with fakeFuncs and projects map
// sources otherwise. It records the keys handed to each batch.
type fakeRuntime struct {
	mu      sync.Mutex
	funcs   map[string]fakeFunc
	syncs   []string
	batches [][]string
	args    map[string][]map[string]any
}

func newFakeRuntime(funcs map[string]fakeFunc) *fakeRuntime {
	return &fakeRuntime{funcs: funcs, args: map[string][]map[string]any{}}
}

func (f *fakeRuntime) resolve(ctx context.Context, objectType, field string, source any, args map[string]any) (any, error) {
	key := objectType + "." + field
	f.mu.Lock()
	fn := f.funcs[key]
	f.args[key] = append(f.args[key], args)
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx, source, args)
	}
	if m, ok := source.(map[string]any); ok {
		return m[field], nil
	}
	return nil, nil
}

func (f *fakeRuntime) ResolveSync(ctx context.Context, objectType string, field string, source any, args map[string]any) (any, error) {
	f.mu.Lock()
	f.syncs = append(f.syncs, objectType+"."+field)
	f.mu.Unlock()
	return f.resolve(ctx, objectType, field, source, args)
}

func (f *fakeRuntime) BatchResolveAsync(ctx context.Context, tasks []AsyncResolveTask) []AsyncResolveResult {
	keys := make([]string, len(tasks))
	results := make([]AsyncResolveResult, len(tasks))
	for i, t := range tasks {
		keys[i] = t.ObjectType + "." + t.Field
		v, err := f.resolve(ctx, t.ObjectType, t.Field, t.Source, t.Args)
		results[i] = AsyncResolveResult{Value: v, Error: err}
	}
	f.mu.Lock()
	f.batches = append(f.batches, keys)
	f.mu.Unlock()
	return results
}

func (f *fakeRuntime) ResolveType(ctx context.Context, abstractType string, value any) (string, error) {
	if m, ok := value.(map[string]any); ok {
		if name, ok := m["__typename"].(string); ok {
			return name, nil
		}
	}
	return "", fmt.Errorf("cannot resolve type of %s", abstractType)
}

func (f *fakeRuntime) ResolveUnionConcreteValue(ctx context.Context, unionTypeName string, value any) (any, error) {
	return value, nil
}

func (f *fakeRuntime) ResolveInterfaceConcreteValue(ctx context.Context, interfaceTypeName string, value any) (any, error) {
	return value, nil
}

func (f *fakeRuntime) SerializeLeafValue(ctx context.Context, scalarOrEnumTypeName string, value any) (any, error) {
	return value, nil
}
