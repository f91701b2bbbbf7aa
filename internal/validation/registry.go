package validation

import "context"

// FieldHook validates and optionally transforms the value of one field.
// input is the object the field belongs to, as received by the walk.
// Returning a *Error or ErrorList rejects the value; any other error aborts
// the walk.
type FieldHook func(ctx context.Context, value any, input map[string]any) (any, error)

// ObjectHook validates a whole input object after all of its fields were
// walked. It receives the transformed object and returns the object to keep
// (nil keeps the input unchanged).
type ObjectHook func(ctx context.Context, input map[string]any) (map[string]any, error)

// Registry collects hooks by GraphQL type and field name. It is consumed by
// New; later changes do not affect compiled validators.
type Registry struct {
	fields    map[string]map[string]FieldHook
	objects   map[string]ObjectHook
	arguments map[string]map[string]FieldHook
	argsHooks map[string]ObjectHook
}

func NewRegistry() *Registry {
	return &Registry{
		fields:    make(map[string]map[string]FieldHook),
		objects:   make(map[string]ObjectHook),
		arguments: make(map[string]map[string]FieldHook),
		argsHooks: make(map[string]ObjectHook),
	}
}

// Field registers a hook for field of input object typeName. Hooks
// registered twice for the same field run in registration order, each
// receiving the previous one's result.
func (r *Registry) Field(typeName, field string, hook FieldHook) *Registry {
	addFieldHook(r.fields, typeName, field, hook)
	return r
}

// Object registers the object-level hook of input object typeName.
func (r *Registry) Object(typeName string, hook ObjectHook) *Registry {
	r.objects[typeName] = chainObject(r.objects[typeName], hook)
	return r
}

// Argument registers a hook for one argument of objectType.field, typically
// a scalar mutation argument.
func (r *Registry) Argument(objectType, field, arg string, hook FieldHook) *Registry {
	addFieldHook(r.arguments, coordinate(objectType, field), arg, hook)
	return r
}

// Arguments registers a hook that sees all arguments of objectType.field
// after they were walked.
func (r *Registry) Arguments(objectType, field string, hook ObjectHook) *Registry {
	key := coordinate(objectType, field)
	r.argsHooks[key] = chainObject(r.argsHooks[key], hook)
	return r
}

// Merge copies all hooks of other into r, after r's own hooks.
func (r *Registry) Merge(other *Registry) *Registry {
	if other == nil {
		return r
	}
	for typeName, fields := range other.fields {
		for field, hook := range fields {
			addFieldHook(r.fields, typeName, field, hook)
		}
	}
	for typeName, hook := range other.objects {
		r.objects[typeName] = chainObject(r.objects[typeName], hook)
	}
	for key, args := range other.arguments {
		for arg, hook := range args {
			addFieldHook(r.arguments, key, arg, hook)
		}
	}
	for key, hook := range other.argsHooks {
		r.argsHooks[key] = chainObject(r.argsHooks[key], hook)
	}
	return r
}

func coordinate(objectType, field string) string { return objectType + "." + field }

func addFieldHook(m map[string]map[string]FieldHook, owner, field string, hook FieldHook) {
	fields := m[owner]
	if fields == nil {
		fields = make(map[string]FieldHook)
		m[owner] = fields
	}
	fields[field] = chainField(fields[field], hook)
}

func chainField(first, next FieldHook) FieldHook {
	if first == nil {
		return next
	}
	return func(ctx context.Context, value any, input map[string]any) (any, error) {
		v, err := first(ctx, value, input)
		if err != nil {
			return nil, err
		}
		return next(ctx, v, input)
	}
}

func chainObject(first, next ObjectHook) ObjectHook {
	if first == nil {
		return next
	}
	return func(ctx context.Context, input map[string]any) (map[string]any, error) {
		out, err := first(ctx, input)
		if err != nil {
			return nil, err
		}
		if out == nil {
			out = input
		}
		return next(ctx, out)
	}
}
