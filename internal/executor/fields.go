package executor

import (
	"slices"

	language "github.com/hanpama/gqlvalidate/internal/language"
	schema "github.com/hanpama/gqlvalidate/internal/schema"
)

// fieldGroup is every selection sharing one response name, in document order.
type fieldGroup struct {
	responseName string
	fields       []*language.Field
}

// collectFields flattens fragments and applies @skip/@include. Groups keep
// the order in which their response names first appear.
func collectFields(state *executionState, objectType *schema.Type, selectionSet language.SelectionSet) []fieldGroup {
	c := &collector{state: state, objectType: objectType, index: map[string]int{}, visited: map[string]bool{}}
	c.collect(selectionSet)
	return c.groups
}

type collector struct {
	state      *executionState
	objectType *schema.Type
	groups     []fieldGroup
	index      map[string]int
	visited    map[string]bool
}

func (c *collector) collect(selectionSet language.SelectionSet) {
	for _, selection := range selectionSet {
		switch sel := selection.(type) {
		case *language.Field:
			if !c.included(sel.Directives) {
				continue
			}
			name := sel.Alias
			if name == "" {
				name = sel.Name
			}
			if i, ok := c.index[name]; ok {
				c.groups[i].fields = append(c.groups[i].fields, sel)
				continue
			}
			c.index[name] = len(c.groups)
			c.groups = append(c.groups, fieldGroup{responseName: name, fields: []*language.Field{sel}})

		case *language.InlineFragment:
			if c.included(sel.Directives) && c.applies(sel.TypeCondition) {
				c.collect(sel.SelectionSet)
			}

		case *language.FragmentSpread:
			if c.visited[sel.Name] || !c.included(sel.Directives) {
				continue
			}
			c.visited[sel.Name] = true
			def := c.state.document.Fragments.ForName(sel.Name)
			if def == nil || !c.applies(def.TypeCondition) || !c.included(def.Directives) {
				continue
			}
			c.collect(def.SelectionSet)
		}
	}
}

// included evaluates @skip(if:) and @include(if:). A missing or non-boolean
// condition keeps the selection.
func (c *collector) included(directives language.DirectiveList) bool {
	if d := directives.ForName("skip"); d != nil {
		if v, ok := c.condition(d); ok && v {
			return false
		}
	}
	if d := directives.ForName("include"); d != nil {
		if v, ok := c.condition(d); ok && !v {
			return false
		}
	}
	return true
}

func (c *collector) condition(d *language.Directive) (value, ok bool) {
	arg := d.Arguments.ForName("if")
	if arg == nil {
		return false, false
	}
	v, err := valueFromASTWithVars(arg.Value, c.state.variables)
	if err != nil {
		return false, false
	}
	value, ok = v.(bool)
	return value, ok
}

// applies reports whether a fragment typed on condition selects fields of
// the object type: the type itself, an interface it implements, or a union
// containing it.
func (c *collector) applies(condition string) bool {
	if condition == "" || condition == c.objectType.Name {
		return true
	}
	if c.state.schema == nil {
		return false
	}
	abstract := c.state.schema.Types[condition]
	if abstract == nil {
		return false
	}
	switch abstract.Kind {
	case schema.TypeKindInterface:
		return slices.Contains(c.objectType.Interfaces, condition) || slices.Contains(abstract.PossibleTypes, c.objectType.Name)
	case schema.TypeKindUnion:
		return slices.Contains(abstract.PossibleTypes, c.objectType.Name)
	}
	return false
}
