package executor

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	language "github.com/hanpama/gqlvalidate/internal/language"
	schema "github.com/hanpama/gqlvalidate/internal/schema"
)

// coerceVariableValues coerces the provided variables to the operation's
// declared types. Only declared variables are returned.
func coerceVariableValues(sch *schema.Schema, operation *language.OperationDefinition, provided map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(operation.VariableDefinitions))
	for _, def := range operation.VariableDefinitions {
		name, typ := def.Variable, def.Type
		val, ok := lookupVariable(provided, name)
		switch {
		case !ok && def.DefaultValue != nil:
			v, err := astValueToGo(def.DefaultValue)
			if err != nil {
				return nil, fmt.Errorf("default value of variable $%s: %w", name, err)
			}
			val = v
		case !ok && typ.NonNull:
			return nil, fmt.Errorf("variable $%s of required type %s was not provided", name, typ)
		case !ok:
			continue
		case val == nil && typ.NonNull:
			return nil, fmt.Errorf("variable $%s of type %s cannot be null", name, typ)
		}
		cv, err := coerceValue(sch, val, typeRefFromAST(typ))
		if err != nil {
			return nil, fmt.Errorf("variable $%s of type %s cannot be coerced: %w", name, typ, err)
		}
		out[name] = cv
	}
	return out, nil
}

// lookupVariable accepts names with or without the leading "$".
func lookupVariable(vars map[string]any, name string) (any, bool) {
	if v, ok := vars[name]; ok {
		return v, true
	}
	v, ok := vars[strings.TrimPrefix(name, "$")]
	return v, ok
}

// coerceArgumentValues builds the argument map of one field. Failures are
// recorded at path and reported through ok.
func coerceArgumentValues(fieldDef *schema.Field, arguments language.ArgumentList, variables map[string]any, state *executionState, path Path) (args map[string]any, ok bool) {
	args = make(map[string]any, len(fieldDef.Arguments))
	ok = true
	for _, argDef := range fieldDef.Arguments {
		var (
			val any
			err error
		)
		if arg := arguments.ForName(argDef.Name); arg != nil && !unsetVariable(arg.Value, variables) {
			val, err = valueFromASTWithVars(arg.Value, variables)
			if err == nil {
				val, err = coerceValue(state.schema, val, argDef.Type)
			}
			if err != nil {
				state.addErrorf(path, "argument '%s' cannot be coerced: %v", argDef.Name, err)
				ok = false
				continue
			}
			args[argDef.Name] = val
			continue
		}
		switch {
		case argDef.DefaultValue != nil:
			val, err = coerceValue(state.schema, argDef.DefaultValue, argDef.Type)
			if err != nil {
				state.addErrorf(path, "default value of argument '%s' cannot be coerced: %v", argDef.Name, err)
				ok = false
				continue
			}
			args[argDef.Name] = val
		case schema.IsNonNull(argDef.Type):
			state.addErrorf(path, "argument '%s' of required type was not provided", argDef.Name)
			ok = false
		}
	}
	return args, ok
}

func unsetVariable(value *language.Value, variables map[string]any) bool {
	if value == nil || value.Kind != language.Variable {
		return false
	}
	_, ok := lookupVariable(variables, value.Raw)
	return !ok
}

// valueFromASTWithVars converts a literal to a Go value, substituting
// variables at any depth. Object fields bound to unset variables are left out.
func valueFromASTWithVars(value *language.Value, variables map[string]any) (any, error) {
	if value == nil {
		return nil, nil
	}
	switch value.Kind {
	case language.Variable:
		v, _ := lookupVariable(variables, value.Raw)
		return v, nil
	case language.ListValue:
		out := make([]any, len(value.Children))
		for i, c := range value.Children {
			v, err := valueFromASTWithVars(c.Value, variables)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case language.ObjectValue:
		out := make(map[string]any, len(value.Children))
		for _, f := range value.Children {
			if unsetVariable(f.Value, variables) {
				continue
			}
			v, err := valueFromASTWithVars(f.Value, variables)
			if err != nil {
				return nil, err
			}
			out[f.Name] = v
		}
		return out, nil
	}
	return astValueToGo(value)
}

// astValueToGo converts a constant literal.
func astValueToGo(value *language.Value) (any, error) {
	if value == nil {
		return nil, nil
	}
	switch value.Kind {
	case language.IntValue:
		n, err := strconv.Atoi(value.Raw)
		if err != nil {
			return nil, fmt.Errorf("invalid int literal %s: %w", value.Raw, err)
		}
		return n, nil
	case language.FloatValue:
		f, err := strconv.ParseFloat(value.Raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid float literal %s: %w", value.Raw, err)
		}
		return f, nil
	case language.StringValue, language.BlockValue, language.EnumValue:
		return value.Raw, nil
	case language.BooleanValue:
		return value.Raw == "true", nil
	case language.ListValue:
		out := make([]any, len(value.Children))
		for i, c := range value.Children {
			v, err := astValueToGo(c.Value)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case language.ObjectValue:
		out := make(map[string]any, len(value.Children))
		for _, f := range value.Children {
			v, err := astValueToGo(f.Value)
			if err != nil {
				return nil, err
			}
			out[f.Name] = v
		}
		return out, nil
	}
	return nil, nil
}

var builtinCoercers = map[string]func(any) (any, error){
	"Int":     coerceToInt,
	"Float":   coerceToFloat,
	"String":  coerceToString,
	"Boolean": coerceToBoolean,
	"ID":      coerceToID,
}

// coerceValue coerces an input value to targetType.
func coerceValue(sch *schema.Schema, value any, targetType *schema.TypeRef) (any, error) {
	if schema.IsNonNull(targetType) {
		if value == nil {
			return nil, fmt.Errorf("cannot provide null for non-null type %s", targetType)
		}
		return coerceValue(sch, value, schema.Unwrap(targetType))
	}
	if value == nil {
		return nil, nil
	}
	if schema.IsList(targetType) {
		return coerceList(sch, value, schema.Unwrap(targetType))
	}

	name := schema.GetNamedType(targetType)
	if coerce, ok := builtinCoercers[name]; ok {
		return coerce(value)
	}
	var typ *schema.Type
	if sch != nil {
		typ = sch.Types[name]
	}
	switch {
	case typ == nil:
		// Custom scalars without a definition pass through.
		return value, nil
	case typ.Kind == schema.TypeKindInputObject:
		return coerceInputObject(sch, value, typ)
	case typ.Kind == schema.TypeKindEnum:
		return coerceToEnum(value, typ)
	}
	return value, nil
}

// CoerceInputObject coerces a decoded value, such as a JSON object, to the
// input object type typeName using the rules applied to variables.
func CoerceInputObject(sch *schema.Schema, typeName string, value map[string]any) (map[string]any, error) {
	typ := sch.Types[typeName]
	if typ == nil || typ.Kind != schema.TypeKindInputObject {
		return nil, fmt.Errorf("%s is not an input object type", typeName)
	}
	if value == nil {
		return nil, nil
	}
	out, err := coerceInputObject(sch, value, typ)
	if err != nil {
		return nil, err
	}
	return out.(map[string]any), nil
}

// coerceInputObject rejects unknown fields, enforces required fields, and
// fills in defaults before coercing each field to its declared type.
func coerceInputObject(sch *schema.Schema, value any, typ *schema.Type) (any, error) {
	in, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected an object for input type %s, got %T", typ.Name, value)
	}

	var unknown []string
	for k := range in {
		if typ.InputField(k) == nil {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		slices.Sort(unknown)
		return nil, fmt.Errorf("unknown field '%s' on input type %s", unknown[0], typ.Name)
	}

	out := make(map[string]any, len(typ.InputFields))
	for _, f := range typ.InputFields {
		v, present := in[f.Name]
		if !present {
			if f.DefaultValue == nil {
				if schema.IsNonNull(f.Type) {
					return nil, fmt.Errorf("required field '%s' of type %s was not provided", f.Name, f.Type)
				}
				continue
			}
			v = f.DefaultValue
		}
		cv, err := coerceValue(sch, v, f.Type)
		if err != nil {
			return nil, fmt.Errorf("field '%s': %w", f.Name, err)
		}
		out[f.Name] = cv
	}
	return out, nil
}

// coerceList wraps a single item in a list of one.
func coerceList(sch *schema.Schema, value any, itemType *schema.TypeRef) (any, error) {
	items, ok := value.([]any)
	if !ok {
		item, err := coerceValue(sch, value, itemType)
		if err != nil {
			return nil, err
		}
		return []any{item}, nil
	}
	out := make([]any, len(items))
	for i, item := range items {
		v, err := coerceValue(sch, item, itemType)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// coerceToInt accepts whole numbers in the 32-bit range GraphQL Int allows.
func coerceToInt(value any) (any, error) {
	var n float64
	switch v := value.(type) {
	case int:
		n = float64(v)
	case int32:
		return int(v), nil
	case int64:
		n = float64(v)
	case float32:
		n = float64(v)
	case float64:
		n = v
	case string:
		i, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("cannot coerce %q to int: %w", v, err)
		}
		n = float64(i)
	default:
		return nil, fmt.Errorf("cannot coerce %v (%T) to int", value, value)
	}
	if n != math.Trunc(n) {
		return nil, fmt.Errorf("cannot coerce %v to int: not a whole number", value)
	}
	if n < math.MinInt32 || n > math.MaxInt32 {
		return nil, fmt.Errorf("cannot coerce %v to int: outside the 32-bit range", value)
	}
	return int(n), nil
}

func coerceToFloat(value any) (any, error) {
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
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f, nil
		}
	}
	return nil, fmt.Errorf("cannot coerce %v (%T) to float", value, value)
}

func coerceToString(value any) (any, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case map[string]any, []any:
		return nil, fmt.Errorf("cannot coerce %T to string", value)
	}
	return fmt.Sprint(value), nil
}

func coerceToBoolean(value any) (any, error) {
	if v, ok := value.(bool); ok {
		return v, nil
	}
	return nil, fmt.Errorf("cannot coerce %v (%T) to boolean", value, value)
}

func coerceToID(value any) (any, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case map[string]any, []any:
		return nil, fmt.Errorf("cannot coerce %T to ID", value)
	}
	return fmt.Sprint(value), nil
}

func coerceToEnum(value any, typ *schema.Type) (any, error) {
	s, ok := value.(string)
	if !ok || !typ.HasEnumValue(s) {
		return nil, fmt.Errorf("value %v is not a member of enum %s", value, typ.Name)
	}
	return s, nil
}
