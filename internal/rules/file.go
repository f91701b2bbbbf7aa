package rules

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	validation "github.com/hanpama/gqlvalidate/internal/validation"
)

// ErrUnknownRule is returned when a rule file names a rule that does not exist.
var ErrUnknownRule = errors.New("unknown rule")

// File is a parsed rule file:
//
//	types:
//	  TestInput:
//	    fields:
//	      email: [trim, email]
//	      numbers: [{length: {min: 2}}, {range: {min: 0, max: 9}}]
//	arguments:
//	  Mutation.rename:
//	    name: [trim, nonEmpty]
type File struct {
	Types     map[string]TypeRules         `yaml:"types"`
	Arguments map[string]map[string][]Rule `yaml:"arguments"`
}

// TypeRules lists the rules of the fields of one input object type.
type TypeRules struct {
	Fields map[string][]Rule `yaml:"fields"`
}

// Rule is one entry of a rule list, either a bare name or a single-key
// mapping from name to limits.
type Rule struct {
	Name   string
	Limits Limits
	Line   int

	// limited is set for the mapping form, even when the mapping is empty.
	limited bool
}

func (r *Rule) UnmarshalYAML(n *yaml.Node) error {
	r.Line = n.Line
	switch n.Kind {
	case yaml.ScalarNode:
		r.Name = n.Value
		return nil
	case yaml.MappingNode:
		if len(n.Content) != 2 {
			return fmt.Errorf("line %d: a rule mapping must have exactly one key", n.Line)
		}
		r.Name = n.Content[0].Value
		r.limited = true
		return r.decodeLimits(n.Content[1])
	}
	return fmt.Errorf("line %d: a rule must be a name or a mapping", n.Line)
}

func (r *Rule) decodeLimits(n *yaml.Node) error {
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: limits of %q must be a mapping of min and max", n.Line, r.Name)
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, value := n.Content[i], n.Content[i+1]
		var bound **float64
		switch key.Value {
		case "min":
			bound = &r.Limits.Min
		case "max":
			bound = &r.Limits.Max
		default:
			return fmt.Errorf("line %d: unknown limit %q for rule %q", key.Line, key.Value, r.Name)
		}
		var f float64
		if err := value.Decode(&f); err != nil {
			return fmt.Errorf("line %d: %s of %q: %w", value.Line, key.Value, r.Name, err)
		}
		*bound = &f
	}
	return nil
}

// Hook returns the validation hook named by r. Only length and range take
// limits, and they need at least one end.
func (r Rule) Hook() (validation.FieldHook, error) {
	var hook validation.FieldHook
	switch r.Name {
	case "length", "range":
		return r.boundedHook()
	case "trim":
		hook = Trim
	case "nonEmpty":
		hook = NonEmpty
	case "email":
		hook = Email
	case "nonNegative":
		hook = NonNegative
	default:
		return nil, fmt.Errorf("line %d: %w %q", r.Line, ErrUnknownRule, r.Name)
	}
	if r.limited || !r.Limits.isZero() {
		return nil, fmt.Errorf("line %d: rule %q takes no limits", r.Line, r.Name)
	}
	return hook, nil
}

func (r Rule) boundedHook() (validation.FieldHook, error) {
	l := r.Limits
	if l.isZero() {
		return nil, fmt.Errorf("line %d: rule %q needs a min or a max", r.Line, r.Name)
	}
	if l.Min != nil && l.Max != nil && *l.Min > *l.Max {
		return nil, fmt.Errorf("line %d: rule %q has min %v above max %v", r.Line, r.Name, *l.Min, *l.Max)
	}
	if r.Name == "length" {
		return Length(l), nil
	}
	return Range(l), nil
}

// Load parses a rule file and checks that every rule exists.
func Load(r io.Reader) (*File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("rules: %w", err)
	}
	for key := range f.Arguments {
		if _, _, ok := strings.Cut(key, "."); !ok {
			return nil, fmt.Errorf("rules: argument target %q is not of the form Type.field", key)
		}
	}
	if err := f.each(func(string, string, validation.FieldHook) {}); err != nil {
		return nil, err
	}
	return &f, nil
}

// LoadFile reads and parses the rule file at path.
func LoadFile(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return Load(fh)
}

// Apply registers the rules of f on reg and returns reg.
func (f *File) Apply(reg *validation.Registry) *validation.Registry {
	// Rules were checked by Load.
	_ = f.each(func(owner, name string, hook validation.FieldHook) {
		if objectType, field, ok := strings.Cut(owner, "."); ok {
			reg.Argument(objectType, field, name, hook)
			return
		}
		reg.Field(owner, name, hook)
	})
	return reg
}

// each visits every rule list in a stable order with its chained hook.
// owner is a type name, or "Type.field" for arguments.
func (f *File) each(visit func(owner, name string, hook validation.FieldHook)) error {
	for _, typeName := range sortedKeys(f.Types) {
		if err := visitRules(typeName, f.Types[typeName].Fields, visit); err != nil {
			return err
		}
	}
	for _, key := range sortedKeys(f.Arguments) {
		if err := visitRules(key, f.Arguments[key], visit); err != nil {
			return err
		}
	}
	return nil
}

func visitRules(owner string, fields map[string][]Rule, visit func(owner, name string, hook validation.FieldHook)) error {
	for _, name := range sortedKeys(fields) {
		hooks := make([]validation.FieldHook, 0, len(fields[name]))
		for _, r := range fields[name] {
			h, err := r.Hook()
			if err != nil {
				return fmt.Errorf("rules: %s.%s: %w", owner, name, err)
			}
			hooks = append(hooks, h)
		}
		visit(owner, name, Chain(hooks...))
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
