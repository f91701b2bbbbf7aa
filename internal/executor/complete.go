package executor

import (
	"fmt"
	"reflect"

	language "github.com/hanpama/gqlvalidate/internal/language"
	schema "github.com/hanpama/gqlvalidate/internal/schema"
)

// executeSelectionSet resolves sync fields in place and queues async ones.
// It returns nil when a non-null field below a non-root path came back null.
func executeSelectionSet(state *executionState, objectType *schema.Type, selectionSet language.SelectionSet, objectValue any, path Path, boundary Path) map[string]any {
	out := make(map[string]any)
	for _, group := range collectFields(state, objectType, selectionSet) {
		fieldPath := path.with(group.responseName)
		name := group.fields[0].Name

		if name == "__typename" {
			out[group.responseName] = objectType.Name
			continue
		}
		fieldDef := objectType.Field(name)
		if fieldDef == nil {
			state.addErrorf(fieldPath, "Cannot query field '%s' on type '%s'", name, objectType.Name)
			continue
		}

		value := executeField(state, objectType, fieldDef, objectValue, group.fields, fieldPath, boundary)
		if !isNullish(value) {
			out[group.responseName] = value
			continue
		}
		if schema.IsNonNull(fieldDef.Type) && len(path) > 0 {
			state.markNulled(path)
			return nil
		}
		out[group.responseName] = nil
	}
	return out
}

// validateArguments runs the configured validator, turning a panic into an error.
func validateArguments(state *executionState, objectType, field string, args map[string]any) (out map[string]any, err error) {
	defer func() {
		if p := recover(); p != nil {
			out, err = nil, fmt.Errorf("argument validator for %s.%s panicked: %v", objectType, field, p)
		}
	}()
	return state.validator.ValidateArguments(state.ctx, objectType, field, args)
}

func executeField(state *executionState, objectType *schema.Type, fieldDef *schema.Field, objectValue any, fields []*language.Field, path Path, boundary Path) any {
	args, ok := coerceArgumentValues(fieldDef, fields[0].Arguments, state.variables, state, path)
	if !ok {
		return nil
	}
	if state.validator != nil && len(fieldDef.Arguments) > 0 {
		validated, err := validateArguments(state, objectType.Name, fieldDef.Name, args)
		if err != nil {
			state.addFieldError(err, path)
			return nil
		}
		args = validated
	}

	if fieldDef.Async {
		if !schema.IsNonNull(fieldDef.Type) {
			boundary = path
		}
		state.pending = append(state.pending, asyncTask{
			task: AsyncResolveTask{
				ObjectType: objectType.Name,
				Field:      fieldDef.Name,
				Source:     objectValue,
				Args:       args,
			},
			path:     path,
			typ:      fieldDef.Type,
			fields:   fields,
			boundary: boundary,
		})
		return asyncPending{}
	}

	value, err := state.runtime.ResolveSync(state.ctx, objectType.Name, fieldDef.Name, objectValue, args)
	if err != nil {
		state.addFieldError(err, path)
		return nil
	}
	return completeValue(state, fieldDef.Type, fields, value, path, boundary)
}

// completeValue shapes a resolved value after its declared type.
func completeValue(state *executionState, fieldType *schema.TypeRef, fields []*language.Field, result any, path Path, boundary Path) any {
	if schema.IsNonNull(fieldType) {
		if isNullish(result) {
			if !state.hasErrorAt(path) {
				state.addErrorf(path, "Cannot return null for non-nullable field %s", path)
			}
			return nil
		}
		return completeValue(state, schema.Unwrap(fieldType), fields, result, path, boundary)
	}

	if isNullish(result) {
		return nil
	}
	boundary = path

	if schema.IsList(fieldType) {
		return completeList(state, fieldType, fields, result, path, boundary)
	}

	name := schema.GetNamedType(fieldType)
	typ := state.schema.Types[name]
	if typ == nil {
		state.addErrorf(path, "Unknown type: %s", name)
		return nil
	}
	switch typ.Kind {
	case schema.TypeKindScalar, schema.TypeKindEnum:
		v, err := state.runtime.SerializeLeafValue(state.ctx, name, result)
		if err != nil {
			state.addFieldError(err, path)
			return nil
		}
		return v
	case schema.TypeKindObject:
		return executeSelectionSet(state, typ, mergeSelectionSets(fields), result, path, boundary)
	case schema.TypeKindInterface, schema.TypeKindUnion:
		return completeAbstract(state, typ, fields, result, path, boundary)
	}
	state.addErrorf(path, "Cannot complete value of unexpected type: %s", typ.Kind)
	return nil
}

func completeList(state *executionState, listType *schema.TypeRef, fields []*language.Field, result any, path Path, boundary Path) any {
	items, ok := result.([]any)
	if !ok {
		rv := reflect.ValueOf(result)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			state.addErrorf(path, "Expected list value, got %T", result)
			return nil
		}
		items = make([]any, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
	}

	inner := schema.Unwrap(listType)
	out := make([]any, len(items))
	for i, item := range items {
		v := completeValue(state, inner, fields, item, path.with(i), boundary)
		if isNullish(v) && schema.IsNonNull(inner) {
			state.markNulled(path)
			return nil
		}
		out[i] = v
	}
	return out
}

func completeAbstract(state *executionState, abstract *schema.Type, fields []*language.Field, result any, path Path, boundary Path) any {
	typeName, err := state.runtime.ResolveType(state.ctx, abstract.Name, result)
	if err != nil {
		state.addFieldError(err, path)
		return nil
	}
	concrete := state.schema.Types[typeName]
	if concrete == nil || concrete.Kind != schema.TypeKindObject {
		state.addErrorf(path, "Abstract type %s must resolve to an Object type at runtime. Got: %s", abstract.Name, typeName)
		return nil
	}
	if abstract.Kind == schema.TypeKindUnion {
		result, err = state.runtime.ResolveUnionConcreteValue(state.ctx, abstract.Name, result)
	} else {
		result, err = state.runtime.ResolveInterfaceConcreteValue(state.ctx, abstract.Name, result)
	}
	if err != nil {
		state.addFieldError(err, path)
		return nil
	}
	return executeSelectionSet(state, concrete, mergeSelectionSets(fields), result, path, boundary)
}

func mergeSelectionSets(fields []*language.Field) language.SelectionSet {
	var merged language.SelectionSet
	for _, f := range fields {
		merged = append(merged, f.SelectionSet...)
	}
	return merged
}
