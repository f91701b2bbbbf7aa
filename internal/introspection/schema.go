// Package introspection answers __schema and __type queries from the
// schema model. Wrap extends a schema with the introspection types and puts
// a runtime in front of the application runtime.
package introspection

import (
	"fmt"
	"strings"

	language "github.com/hanpama/gqlvalidate/internal/language"
	schema "github.com/hanpama/gqlvalidate/internal/schema"
)

// preludeTypes returns the __-prefixed types of the gqlparser prelude.
func preludeTypes() ([]*schema.Type, error) {
	doc, err := language.ParsePrelude()
	if err != nil {
		return nil, fmt.Errorf("introspection: parse prelude: %w", err)
	}
	var out []*schema.Type
	for _, def := range doc.Definitions {
		if strings.HasPrefix(def.Name, "__") {
			out = append(out, schema.BuildDefinition(def))
		}
	}
	return out, nil
}

// extend returns a copy of sch with the introspection types and the
// __schema and __type fields on the query type. sch is not modified.
func extend(sch *schema.Schema) (*schema.Schema, error) {
	types, err := preludeTypes()
	if err != nil {
		return nil, err
	}
	out := &schema.Schema{
		QueryType:        sch.QueryType,
		MutationType:     sch.MutationType,
		SubscriptionType: sch.SubscriptionType,
		Types:            make(map[string]*schema.Type, len(sch.Types)+len(types)),
		Directives:       sch.Directives,
		Description:      sch.Description,
	}
	for name, t := range sch.Types {
		out.Types[name] = t
	}
	for _, t := range types {
		out.AddType(t)
	}

	query := sch.GetQueryType()
	if query == nil {
		return out, nil
	}
	q := *query
	q.Fields = append(append([]*schema.Field(nil), query.Fields...),
		&schema.Field{
			Name:        "__schema",
			Description: "Access the current type schema of this server.",
			Type:        schema.NonNullType(schema.NamedType("__Schema")),
		},
		&schema.Field{
			Name:        "__type",
			Description: "Request the type information of a single type.",
			Arguments: []*schema.InputValue{
				{Name: "name", Type: schema.NonNullType(schema.NamedType("String"))},
			},
			Type: schema.NamedType("__Type"),
		},
	)
	out.Types[q.Name] = &q
	return out, nil
}
