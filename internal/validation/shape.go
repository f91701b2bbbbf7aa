package validation

import (
	"fmt"

	schema "github.com/hanpama/gqlvalidate/internal/schema"
)

// FieldKind tags the value stored in an input field.
type FieldKind int

const (
	KindScalar FieldKind = iota // scalars and enums
	KindObject                  // input objects
	KindList
)

func (k FieldKind) String() string {
	switch k {
	case KindScalar:
		return "Scalar"
	case KindObject:
		return "Object"
	case KindList:
		return "List"
	}
	return fmt.Sprintf("FieldKind(%d)", int(k))
}

// Node describes the value of a field. Object nodes point at the shape of
// their input type; list nodes describe their element.
type Node struct {
	Kind     FieldKind
	TypeName string
	Shape    *Shape
	Elem     *Node
}

// FieldShape is one declared field of an input type (or one argument of a
// field when the shape describes arguments).
type FieldShape struct {
	Name string
	Node
	Hook FieldHook
}

// Shape is the compiled, immutable description of an input type: fields in
// declaration order and the optional object-level hook.
type Shape struct {
	Name   string
	Fields []*FieldShape
	Hook   ObjectHook

	// arguments shapes walk input-object arguments without adding the
	// argument name to the path.
	arguments bool
}

// Field returns the field shape with the given name, or nil.
func (s *Shape) Field(name string) *FieldShape {
	for _, f := range s.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func nodeFor(sch *schema.Schema, t *schema.TypeRef) Node {
	if schema.IsNonNull(t) {
		return nodeFor(sch, schema.Unwrap(t))
	}
	if t.Kind == schema.TypeRefKindList {
		elem := nodeFor(sch, t.OfType)
		return Node{Kind: KindList, Elem: &elem}
	}
	name := schema.GetNamedType(t)
	if named := sch.Types[name]; named != nil && named.Kind == schema.TypeKindInputObject {
		return Node{Kind: KindObject, TypeName: name}
	}
	return Node{Kind: KindScalar, TypeName: name}
}

// compile builds shapes for every input object type and every field with
// arguments, binding hooks from reg.
func compile(sch *schema.Schema, reg *Registry) (map[string]*Shape, map[string]*Shape, error) {
	shapes := make(map[string]*Shape)
	for _, t := range sch.InputObjectTypes() {
		shape := &Shape{Name: t.Name, Hook: reg.objects[t.Name]}
		for _, in := range t.InputFields {
			shape.Fields = append(shape.Fields, &FieldShape{
				Name: in.Name,
				Node: nodeFor(sch, in.Type),
				Hook: reg.fields[t.Name][in.Name],
			})
		}
		shapes[t.Name] = shape
	}

	args := make(map[string]*Shape)
	for _, t := range sch.Types {
		if t.Kind != schema.TypeKindObject {
			continue
		}
		for _, f := range t.Fields {
			key := coordinate(t.Name, f.Name)
			if len(f.Arguments) == 0 {
				continue
			}
			shape := &Shape{Name: key, Hook: reg.argsHooks[key], arguments: true}
			for _, a := range f.Arguments {
				shape.Fields = append(shape.Fields, &FieldShape{
					Name: a.Name,
					Node: nodeFor(sch, a.Type),
					Hook: reg.arguments[key][a.Name],
				})
			}
			args[key] = shape
		}
	}

	for _, s := range shapes {
		for _, f := range s.Fields {
			link(&f.Node, shapes)
		}
	}
	for _, s := range args {
		for _, f := range s.Fields {
			link(&f.Node, shapes)
		}
	}

	if err := checkRegistry(sch, reg, shapes, args); err != nil {
		return nil, nil, err
	}
	return shapes, args, nil
}

func link(n *Node, shapes map[string]*Shape) {
	switch n.Kind {
	case KindObject:
		n.Shape = shapes[n.TypeName]
	case KindList:
		link(n.Elem, shapes)
	}
}

// checkRegistry rejects hooks bound to types, fields or arguments the schema
// does not declare.
func checkRegistry(sch *schema.Schema, reg *Registry, shapes, args map[string]*Shape) error {
	for typeName, fields := range reg.fields {
		shape := shapes[typeName]
		if shape == nil {
			return fmt.Errorf("validation: %q is not an input object type", typeName)
		}
		for field := range fields {
			if shape.Field(field) == nil {
				return fmt.Errorf("validation: input type %q has no field %q", typeName, field)
			}
		}
	}
	for typeName := range reg.objects {
		if shapes[typeName] == nil {
			return fmt.Errorf("validation: %q is not an input object type", typeName)
		}
	}
	for key, fieldArgs := range reg.arguments {
		shape := args[key]
		if shape == nil {
			return fmt.Errorf("validation: field %s does not exist or takes no arguments", key)
		}
		for arg := range fieldArgs {
			if shape.Field(arg) == nil {
				return fmt.Errorf("validation: field %s has no argument %q", key, arg)
			}
		}
	}
	for key := range reg.argsHooks {
		if args[key] == nil {
			return fmt.Errorf("validation: field %s does not exist or takes no arguments", key)
		}
	}
	return nil
}
