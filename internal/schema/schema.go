// Package schema is the executable view of a GraphQL schema: named types
// with ordered fields, input fields and arguments, plus the flags the
// executor and the validation walk read (Field.Async, Type.OneOf).
package schema

type Schema struct {
	Description      string
	QueryType        string
	MutationType     string
	SubscriptionType string
	Types            map[string]*Type
	Directives       map[string]*Directive
}

// GetQueryType, GetMutationType and GetSubscriptionType return nil when the
// schema has no such root.
func (s *Schema) GetQueryType() *Type        { return s.Types[s.QueryType] }
func (s *Schema) GetMutationType() *Type     { return s.Types[s.MutationType] }
func (s *Schema) GetSubscriptionType() *Type { return s.Types[s.SubscriptionType] }

// IsInputType reports whether the named type behind t may appear in input
// position (scalar, enum or input object).
func (s *Schema) IsInputType(t *TypeRef) bool {
	named := s.Types[GetNamedType(t)]
	if named == nil {
		return false
	}
	switch named.Kind {
	case TypeKindScalar, TypeKindEnum, TypeKindInputObject:
		return true
	}
	return false
}

type TypeKind string

const (
	TypeKindScalar      TypeKind = "SCALAR"
	TypeKindObject      TypeKind = "OBJECT"
	TypeKindInterface   TypeKind = "INTERFACE"
	TypeKindUnion       TypeKind = "UNION"
	TypeKindEnum        TypeKind = "ENUM"
	TypeKindInputObject TypeKind = "INPUT_OBJECT"
)

// Type is a named type. Which members are set depends on Kind. Fields,
// InputFields and EnumValues keep SDL declaration order; validation errors
// are reported in that order.
type Type struct {
	Name        string
	Kind        TypeKind
	Description string

	Fields     []*Field // object, interface
	Interfaces []string // object, interface
	// PossibleTypes lists union members. Interfaces leave it empty; their
	// implementations name them in Interfaces.
	PossibleTypes  []string
	EnumValues     []*EnumValue
	InputFields    []*InputValue
	OneOf          bool
	SpecifiedByURL *string
}

type Field struct {
	Name        string
	Description string
	Type        *TypeRef
	Arguments   []*InputValue
	// Async fields are resolved in depth-wide batches, others in place.
	Async             bool
	IsDeprecated      bool
	DeprecationReason string
}

// InputValue is an argument or an input object field.
type InputValue struct {
	Name              string
	Description       string
	Type              *TypeRef
	DefaultValue      any
	IsDeprecated      bool
	DeprecationReason string
}

type EnumValue struct {
	Name              string
	Description       string
	IsDeprecated      bool
	DeprecationReason string
}

type Directive struct {
	Name         string
	Description  string
	Locations    []string
	Arguments    []*InputValue
	IsRepeatable bool
}

type TypeRefKind string

const (
	TypeRefKindNamed   TypeRefKind = "NAMED"
	TypeRefKindList    TypeRefKind = "LIST"
	TypeRefKindNonNull TypeRefKind = "NON_NULL"
)

// TypeRef is a possibly wrapped type reference such as [Int!]!.
type TypeRef struct {
	Kind   TypeRefKind
	OfType *TypeRef
	Named  string
}

func NamedType(name string) *TypeRef  { return &TypeRef{Kind: TypeRefKindNamed, Named: name} }
func ListType(t *TypeRef) *TypeRef    { return &TypeRef{Kind: TypeRefKindList, OfType: t} }
func NonNullType(t *TypeRef) *TypeRef { return &TypeRef{Kind: TypeRefKindNonNull, OfType: t} }

func (t *TypeRef) IsNonNull() bool { return t != nil && t.Kind == TypeRefKindNonNull }

// IsList is true for [T] and [T]!.
func (t *TypeRef) IsList() bool {
	if t == nil {
		return false
	}
	if t.Kind == TypeRefKindNonNull {
		t = t.OfType
	}
	return t != nil && t.Kind == TypeRefKindList
}

// Unwrap peels one List or NonNull layer. Named references are returned as is.
func (t *TypeRef) Unwrap() *TypeRef {
	if t.Kind == TypeRefKindNamed {
		return t
	}
	return t.OfType
}

func (t *TypeRef) GetNamedType() string {
	for t != nil && t.Kind != TypeRefKindNamed {
		t = t.OfType
	}
	if t == nil {
		return ""
	}
	return t.Named
}

// String renders the reference in SDL notation, e.g. "[Int!]!".
func (t *TypeRef) String() string { return renderTypeRef(t) }

// Function forms of the TypeRef methods.
func IsNonNull(t *TypeRef) bool      { return t.IsNonNull() }
func IsList(t *TypeRef) bool         { return t.IsList() }
func Unwrap(t *TypeRef) *TypeRef     { return t.Unwrap() }
func GetNamedType(t *TypeRef) string { return t.GetNamedType() }
