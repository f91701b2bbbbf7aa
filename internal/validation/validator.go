package validation

import (
	"context"
	"fmt"
	"sort"
	"time"

	eventbus "github.com/hanpama/gqlvalidate/internal/eventbus"
	events "github.com/hanpama/gqlvalidate/internal/events"
	schema "github.com/hanpama/gqlvalidate/internal/schema"
)

// Validator walks input values through the hooks bound to their types. It
// is immutable after New and safe for concurrent use.
type Validator struct {
	shapes map[string]*Shape
	args   map[string]*Shape
}

// New compiles the input types of sch together with the hooks of reg. It
// fails when reg references a type, field or argument sch does not declare.
func New(sch *schema.Schema, reg *Registry) (*Validator, error) {
	if reg == nil {
		reg = NewRegistry()
	}
	shapes, args, err := compile(sch, reg)
	if err != nil {
		return nil, err
	}
	return &Validator{shapes: shapes, args: args}, nil
}

// ValidateInput validates value as an instance of the input object type
// typeName. A nil value is valid. On failure the error is a *Failure.
func (v *Validator) ValidateInput(ctx context.Context, typeName string, value map[string]any) (map[string]any, error) {
	shape := v.shapes[typeName]
	if shape == nil {
		return nil, fmt.Errorf("validation: unknown input type %q", typeName)
	}
	if value == nil {
		return nil, nil
	}
	w := &walker{ctx: ctx, info: Info{InputType: typeName}}
	return v.run(ctx, w, typeName, func() (map[string]any, error) {
		return w.object(shape, value, nil)
	})
}

// ValidateArguments validates the coerced arguments of objectType.field.
// Input-object arguments are walked as if their fields were the
// arguments: errors inside an "input" argument are reported at ["email"],
// not ["input", "email"]. Other arguments report at [argName].
func (v *Validator) ValidateArguments(ctx context.Context, objectType, field string, args map[string]any) (map[string]any, error) {
	shape := v.args[coordinate(objectType, field)]
	if shape == nil || args == nil {
		return args, nil
	}
	w := &walker{ctx: ctx, info: Info{ObjectType: objectType, Field: field}}
	return v.run(ctx, w, coordinate(objectType, field), func() (map[string]any, error) {
		return w.object(shape, args, nil)
	})
}

func (v *Validator) run(ctx context.Context, w *walker, target string, walk func() (map[string]any, error)) (map[string]any, error) {
	start := time.Now()
	eventbus.Publish(ctx, events.ValidationStart{Target: target})
	out, err := walk()
	if err == nil && len(w.errs) > 0 {
		err = &Failure{Errors: w.errs}
	}
	eventbus.Publish(ctx, events.ValidationFinish{
		Target:     target,
		ErrorCount: len(w.errs),
		Err:        err,
		Duration:   time.Since(start),
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Shape returns the compiled shape of an input object type, or nil.
func (v *Validator) Shape(typeName string) *Shape { return v.shapes[typeName] }

// InputTypes returns the names of all compiled input object types, sorted.
func (v *Validator) InputTypes() []string {
	names := make([]string, 0, len(v.shapes))
	for name := range v.shapes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolver is the function signature registered with resolver.Runtime.
type Resolver = func(ctx context.Context, source any, args map[string]any) (any, error)

// Validated decorates next so that it only runs with validated, transformed
// arguments. On failure next is not called and the *Failure is returned.
func Validated(v *Validator, objectType, field string, next Resolver) Resolver {
	return func(ctx context.Context, source any, args map[string]any) (any, error) {
		out, err := v.ValidateArguments(ctx, objectType, field, args)
		if err != nil {
			return nil, err
		}
		return next(ctx, source, out)
	}
}

// Validate is the call form of Validated for use inside a resolver body.
func Validate(ctx context.Context, v *Validator, objectType, field string, args map[string]any) (map[string]any, error) {
	return v.ValidateArguments(ctx, objectType, field, args)
}
