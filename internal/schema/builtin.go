package schema

import (
	"fmt"
	"slices"
	"sync"

	language "github.com/hanpama/gqlvalidate/internal/language"
)

var (
	builtinScalarNames    = []string{"String", "Int", "Float", "Boolean", "ID"}
	builtinDirectiveNames = []string{"include", "skip"}
)

// builtins are built once from the gqlparser prelude and shared by every
// schema. They are never mutated.
var builtins = sync.OnceValue(func() struct {
	scalars    []*Type
	directives []*Directive
} {
	doc, err := language.ParsePrelude()
	if err != nil {
		panic(fmt.Sprintf("schema: parse prelude: %v", err))
	}
	var out struct {
		scalars    []*Type
		directives []*Directive
	}
	for _, def := range doc.Definitions {
		if slices.Contains(builtinScalarNames, def.Name) {
			out.scalars = append(out.scalars, buildScalar(def))
		}
	}
	for _, dir := range doc.Directives {
		if slices.Contains(builtinDirectiveNames, dir.Name) {
			out.directives = append(out.directives, buildDirective(dir))
		}
	}
	return out
})

func addBuiltins(s *Schema) {
	b := builtins()
	for _, t := range b.scalars {
		s.AddType(t)
	}
	for _, d := range b.directives {
		s.AddDirective(d)
	}
}

func isBuiltinType(t *Type) bool {
	return t.Kind == TypeKindScalar && slices.Contains(builtinScalarNames, t.Name)
}

func isBuiltinDirective(d *Directive) bool {
	return slices.Contains(builtinDirectiveNames, d.Name)
}
