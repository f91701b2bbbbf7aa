package schema

import (
	"sort"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"

	language "github.com/hanpama/gqlvalidate/internal/language"
)

// BuildFromSDL parses and validates the given SDL and returns the
// corresponding executable Schema.
func BuildFromSDL(sdl string) (*Schema, error) {
	return BuildFromSources(&language.Source{Name: "schema.graphql", Input: sdl})
}

// BuildFromSources loads several SDL sources (types may be extended across
// sources) and builds one Schema.
func BuildFromSources(sources ...*language.Source) (*Schema, error) {
	doc, err := language.LoadSchema(sources...)
	if err != nil {
		return nil, err
	}
	return BuildFromAST(doc), nil
}

// BuildFromAST converts a validated gqlparser schema. Query root fields are
// marked async so they resolve in batches; mutation root fields stay sync so
// they run serially in document order. Non-root fields are projections.
func BuildFromAST(doc *language.Schema) *Schema {
	s := NewSchema("")
	if doc.Query != nil {
		s.SetQueryType(doc.Query.Name)
	}
	if doc.Mutation != nil {
		s.SetMutationType(doc.Mutation.Name)
	}
	if doc.Subscription != nil {
		s.SetSubscriptionType(doc.Subscription.Name)
	}
	addBuiltins(s)

	names := make([]string, 0, len(doc.Types))
	for name := range doc.Types {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		def := doc.Types[name]
		if def.BuiltIn || strings.HasPrefix(name, "__") {
			continue
		}
		if t := buildDefinition(def, def.Name == s.QueryType); t != nil {
			s.AddType(t)
		}
	}
	for _, dir := range doc.Directives {
		if dir.Position != nil && dir.Position.Src != nil && dir.Position.Src.BuiltIn {
			continue
		}
		s.AddDirective(buildDirective(dir))
	}
	return s
}

// BuildDefinition converts a single type definition that is not part of a
// loaded schema, such as the introspection types. Fields are sync.
func BuildDefinition(def *language.Definition) *Type {
	return buildDefinition(def, false)
}

func buildDefinition(def *ast.Definition, async bool) *Type {
	switch def.Kind {
	case ast.Object:
		return buildObject(def, async)
	case ast.Interface:
		return buildInterface(def)
	case ast.Enum:
		return buildEnum(def)
	case ast.InputObject:
		return buildInput(def)
	case ast.Union:
		return buildUnion(def)
	case ast.Scalar:
		return buildScalar(def)
	}
	return nil
}

func buildObject(def *ast.Definition, async bool) *Type {
	t := NewType(def.Name, TypeKindObject, def.Description)
	for _, name := range sortedCopy(def.Interfaces) {
		t.AddInterface(name)
	}
	for _, fd := range def.Fields {
		if strings.HasPrefix(fd.Name, "__") {
			continue
		}
		t.AddField(buildField(fd).SetAsync(async))
	}
	return t
}

func buildInterface(def *ast.Definition) *Type {
	t := NewType(def.Name, TypeKindInterface, def.Description)
	for _, name := range sortedCopy(def.Interfaces) {
		t.AddInterface(name)
	}
	for _, fd := range def.Fields {
		t.AddField(buildField(fd))
	}
	return t
}

func buildField(def *ast.FieldDefinition) *Field {
	f := NewField(def.Name, def.Description, buildTypeRef(def.Type))
	if reason, ok := deprecation(def.Directives); ok {
		f.Deprecate(reason)
	}
	for _, arg := range def.Arguments {
		in := NewInputValue(arg.Name, arg.Description, buildTypeRef(arg.Type)).SetDefault(constValue(arg.DefaultValue))
		if reason, ok := deprecation(arg.Directives); ok {
			in.Deprecate(reason)
		}
		f.AddArgument(in)
	}
	return f
}

func buildEnum(def *ast.Definition) *Type {
	t := NewType(def.Name, TypeKindEnum, def.Description)
	for _, v := range def.EnumValues {
		e := NewEnumValue(v.Name, v.Description)
		if reason, ok := deprecation(v.Directives); ok {
			e.Deprecate(reason)
		}
		t.AddEnumValue(e)
	}
	return t
}

// buildInput keeps SDL declaration order; validation errors are reported in
// that order.
func buildInput(def *ast.Definition) *Type {
	t := NewType(def.Name, TypeKindInputObject, def.Description).
		SetOneOf(def.Directives.ForName("oneOf") != nil)
	for _, fd := range def.Fields {
		in := NewInputValue(fd.Name, fd.Description, buildTypeRef(fd.Type)).SetDefault(constValue(fd.DefaultValue))
		if reason, ok := deprecation(fd.Directives); ok {
			in.Deprecate(reason)
		}
		t.AddInputField(in)
	}
	return t
}

func buildUnion(def *ast.Definition) *Type {
	t := NewType(def.Name, TypeKindUnion, def.Description)
	for _, name := range sortedCopy(def.Types) {
		t.AddPossibleType(name)
	}
	return t
}

func buildScalar(def *ast.Definition) *Type {
	t := NewType(def.Name, TypeKindScalar, def.Description)
	if d := def.Directives.ForName("specifiedBy"); d != nil {
		if arg := d.Arguments.ForName("url"); arg != nil && arg.Value != nil {
			t.SetSpecifiedByURL(arg.Value.Raw)
		}
	}
	return t
}

func buildDirective(dir *ast.DirectiveDefinition) *Directive {
	d := NewDirective(dir.Name, dir.Description).SetRepeatable(dir.IsRepeatable)
	for _, loc := range dir.Locations {
		d.Locations = append(d.Locations, string(loc))
	}
	for _, arg := range dir.Arguments {
		d.AddArgument(NewInputValue(arg.Name, arg.Description, buildTypeRef(arg.Type)).SetDefault(constValue(arg.DefaultValue)))
	}
	return d
}

func buildTypeRef(t *ast.Type) *TypeRef {
	if t == nil {
		return nil
	}
	var ref *TypeRef
	if t.Elem != nil {
		ref = ListType(buildTypeRef(t.Elem))
	} else {
		ref = NamedType(t.NamedType)
	}
	if t.NonNull {
		return NonNullType(ref)
	}
	return ref
}

func deprecation(dirs ast.DirectiveList) (string, bool) {
	d := dirs.ForName("deprecated")
	if d == nil {
		return "", false
	}
	if arg := d.Arguments.ForName("reason"); arg != nil && arg.Value != nil {
		return arg.Value.Raw, true
	}
	return "", true
}

func constValue(v *ast.Value) any {
	if v == nil {
		return nil
	}
	out, err := v.Value(nil)
	if err != nil {
		return nil
	}
	return out
}

func sortedCopy(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}
