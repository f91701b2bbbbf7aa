package language

import (
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
	"github.com/vektah/gqlparser/v2/validator"
)

func ParseQuery(source string) (*QueryDocument, error) {
	doc, err := parser.ParseQuery(&ast.Source{Input: source})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func ParseSchema(name, source string) (*SchemaDocument, error) {
	doc, err := parser.ParseSchema(&ast.Source{Name: name, Input: source})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// LoadSchema parses and validates SDL sources into a single schema. Builtin
// scalars and directives are prepended by gqlparser.
func LoadSchema(sources ...*Source) (*Schema, error) {
	s, err := gqlparser.LoadSchema(sources...)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// AsError extracts a located parse/validation error when err carries one.
func AsError(err error) (*Error, bool) {
	switch e := err.(type) {
	case *Error:
		return e, true
	case ErrorList:
		if len(e) > 0 {
			return e[0], true
		}
	}
	return nil, false
}

// ParsePrelude parses the builtin definitions gqlparser prepends to every
// schema: scalars, directives and the introspection types.
func ParsePrelude() (*SchemaDocument, error) {
	doc, err := parser.ParseSchema(validator.Prelude)
	if err != nil {
		return nil, err
	}
	return doc, nil
}
