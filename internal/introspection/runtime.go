package introspection

import (
	"context"
	"sort"
	"strings"

	executor "github.com/hanpama/gqlvalidate/internal/executor"
	schema "github.com/hanpama/gqlvalidate/internal/schema"
)

// Wrap returns the extended schema and a runtime that resolves
// introspection fields itself and delegates everything else to base.
func Wrap(base executor.Runtime, sch *schema.Schema) (executor.Runtime, *schema.Schema, error) {
	extended, err := extend(sch)
	if err != nil {
		return nil, nil, err
	}
	return &runtime{Runtime: base, schema: extended}, extended, nil
}

type runtime struct {
	executor.Runtime
	schema *schema.Schema
}

func (r *runtime) ResolveSync(ctx context.Context, objectType, field string, source any, args map[string]any) (any, error) {
	if strings.HasPrefix(objectType, "__") {
		return r.resolveMeta(source, field, args), nil
	}
	if objectType == r.schema.QueryType {
		switch field {
		case "__schema":
			return r.schema, nil
		case "__type":
			name, _ := args["name"].(string)
			if t := r.schema.Types[name]; t != nil {
				return t, nil
			}
			return nil, nil
		}
	}
	return r.Runtime.ResolveSync(ctx, objectType, field, source, args)
}

func (r *runtime) SerializeLeafValue(ctx context.Context, typeName string, value any) (any, error) {
	if strings.HasPrefix(typeName, "__") {
		return value, nil
	}
	return r.Runtime.SerializeLeafValue(ctx, typeName, value)
}

func (r *runtime) resolveMeta(source any, field string, args map[string]any) any {
	switch src := source.(type) {
	case *schema.Schema:
		return schemaField(src, field)
	case *schema.Type:
		return r.typeField(src, field, args)
	case *schema.TypeRef:
		return r.typeRefField(src, field, args)
	case *schema.Field:
		return fieldField(src, field, args)
	case *schema.InputValue:
		return inputValueField(src, field)
	case *schema.EnumValue:
		return enumValueField(src, field)
	case *schema.Directive:
		return directiveField(src, field, args)
	}
	return nil
}

func schemaField(sch *schema.Schema, field string) any {
	switch field {
	case "description":
		return optional(sch.Description)
	case "types":
		out := make([]*schema.Type, 0, len(sch.Types))
		for _, t := range sch.Types {
			out = append(out, t)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
		return out
	case "queryType":
		return nilIfMissing(sch.GetQueryType())
	case "mutationType":
		return nilIfMissing(sch.GetMutationType())
	case "subscriptionType":
		return nilIfMissing(sch.GetSubscriptionType())
	case "directives":
		out := make([]*schema.Directive, 0, len(sch.Directives))
		for _, d := range sch.Directives {
			out = append(out, d)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
		return out
	}
	return nil
}

func (r *runtime) typeField(t *schema.Type, field string, args map[string]any) any {
	switch field {
	case "kind":
		return string(t.Kind)
	case "name":
		return t.Name
	case "description":
		return optional(t.Description)
	case "specifiedByURL":
		if t.SpecifiedByURL == nil {
			return nil
		}
		return *t.SpecifiedByURL
	case "fields":
		if t.Kind != schema.TypeKindObject && t.Kind != schema.TypeKindInterface {
			return nil
		}
		out := []*schema.Field{}
		for _, f := range t.Fields {
			if strings.HasPrefix(f.Name, "__") || (f.IsDeprecated && !includeDeprecated(args)) {
				continue
			}
			out = append(out, f)
		}
		return out
	case "interfaces":
		if t.Kind != schema.TypeKindObject && t.Kind != schema.TypeKindInterface {
			return nil
		}
		return r.named(t.Interfaces)
	case "possibleTypes":
		if t.Kind != schema.TypeKindInterface && t.Kind != schema.TypeKindUnion {
			return nil
		}
		return r.named(t.PossibleTypes)
	case "enumValues":
		if t.Kind != schema.TypeKindEnum {
			return nil
		}
		out := []*schema.EnumValue{}
		for _, ev := range t.EnumValues {
			if !ev.IsDeprecated || includeDeprecated(args) {
				out = append(out, ev)
			}
		}
		return out
	case "inputFields":
		if t.Kind != schema.TypeKindInputObject {
			return nil
		}
		return inputValues(t.InputFields, args)
	case "isOneOf":
		if t.Kind != schema.TypeKindInputObject {
			return nil
		}
		return t.OneOf
	}
	// ofType is null for named types.
	return nil
}

// typeRefField answers for wrapper types and delegates named references to
// the type they name.
func (r *runtime) typeRefField(tr *schema.TypeRef, field string, args map[string]any) any {
	if tr.Kind == schema.TypeRefKindNamed {
		if t := r.schema.Types[tr.Named]; t != nil {
			return r.typeField(t, field, args)
		}
		return nil
	}
	switch field {
	case "kind":
		return string(tr.Kind)
	case "ofType":
		return tr.OfType
	}
	return nil
}

func (r *runtime) named(names []string) []*schema.Type {
	out := []*schema.Type{}
	for _, name := range names {
		if t := r.schema.Types[name]; t != nil {
			out = append(out, t)
		}
	}
	return out
}

func fieldField(f *schema.Field, field string, args map[string]any) any {
	switch field {
	case "name":
		return f.Name
	case "description":
		return optional(f.Description)
	case "args":
		return inputValues(f.Arguments, args)
	case "type":
		return f.Type
	case "isDeprecated":
		return f.IsDeprecated
	case "deprecationReason":
		return deprecationReason(f.IsDeprecated, f.DeprecationReason)
	}
	return nil
}

func inputValueField(v *schema.InputValue, field string) any {
	switch field {
	case "name":
		return v.Name
	case "description":
		return optional(v.Description)
	case "type":
		return v.Type
	case "defaultValue":
		if v.DefaultValue == nil {
			return nil
		}
		return schema.ValueLiteral(v.DefaultValue)
	case "isDeprecated":
		return v.IsDeprecated
	case "deprecationReason":
		return deprecationReason(v.IsDeprecated, v.DeprecationReason)
	}
	return nil
}

func enumValueField(ev *schema.EnumValue, field string) any {
	switch field {
	case "name":
		return ev.Name
	case "description":
		return optional(ev.Description)
	case "isDeprecated":
		return ev.IsDeprecated
	case "deprecationReason":
		return deprecationReason(ev.IsDeprecated, ev.DeprecationReason)
	}
	return nil
}

func directiveField(d *schema.Directive, field string, args map[string]any) any {
	switch field {
	case "name":
		return d.Name
	case "description":
		return optional(d.Description)
	case "isRepeatable":
		return d.IsRepeatable
	case "locations":
		return append([]string(nil), d.Locations...)
	case "args":
		return inputValues(d.Arguments, args)
	}
	return nil
}

func inputValues(in []*schema.InputValue, args map[string]any) []*schema.InputValue {
	out := []*schema.InputValue{}
	for _, v := range in {
		if !v.IsDeprecated || includeDeprecated(args) {
			out = append(out, v)
		}
	}
	return out
}

func includeDeprecated(args map[string]any) bool {
	b, _ := args["includeDeprecated"].(bool)
	return b
}

func deprecationReason(deprecated bool, reason string) any {
	if !deprecated {
		return nil
	}
	return reason
}

func optional(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// nilIfMissing keeps a typed nil pointer out of the result.
func nilIfMissing(t *schema.Type) any {
	if t == nil {
		return nil
	}
	return t
}
