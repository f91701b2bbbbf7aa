package validation

import (
	"context"
	"errors"
	"fmt"
	"maps"
)

// walker carries the errors collected during one validation call.
type walker struct {
	ctx  context.Context
	info Info
	errs []*Error
}

// object walks the fields of value in declaration order, then runs the
// object-level hook. value itself is never modified.
func (w *walker) object(shape *Shape, value map[string]any, path Path) (map[string]any, error) {
	out := maps.Clone(value)
	for _, f := range shape.Fields {
		v, ok := value[f.Name]
		if !ok || v == nil {
			continue
		}
		fieldPath := path.with(f.Name)
		childPath := fieldPath
		if shape.arguments && f.Kind == KindObject {
			childPath = path
		}

		nv, err := w.node(&f.Node, v, childPath)
		if err != nil {
			return nil, err
		}
		if f.Hook != nil {
			hv, err := f.Hook(w.hookContext(fieldPath), nv, value)
			if err != nil {
				if w.capture(err, fieldPath) {
					continue
				}
				return nil, err
			}
			nv = hv
		}
		out[f.Name] = nv
	}

	if shape.Hook != nil {
		res, err := shape.Hook(w.hookContext(path), out)
		if err != nil {
			if !w.capture(err, path) {
				return nil, err
			}
		} else if res != nil {
			out = res
		}
	}
	return out, nil
}

func (w *walker) node(n *Node, v any, path Path) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch n.Kind {
	case KindObject:
		m, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("validation: expected %s object at %s, got %T", n.TypeName, path, v)
		}
		if n.Shape == nil {
			return nil, fmt.Errorf("validation: unknown input type %s at %s", n.TypeName, path)
		}
		return w.object(n.Shape, m, path)
	case KindList:
		items, ok := v.([]any)
		if !ok {
			return nil, fmt.Errorf("validation: expected list at %s, got %T", path, v)
		}
		if n.Elem.Kind == KindScalar {
			return items, nil
		}
		out := make([]any, len(items))
		for i, item := range items {
			nv, err := w.node(n.Elem, item, path.with(i))
			if err != nil {
				return nil, err
			}
			out[i] = nv
		}
		return out, nil
	default:
		return v, nil
	}
}

// capture records validation errors returned by a hook at path. It reports
// false for errors that are not validation errors.
func (w *walker) capture(err error, path Path) bool {
	var list ErrorList
	if errors.As(err, &list) {
		for _, e := range list {
			w.add(e, path)
		}
		return true
	}
	var single *Error
	if errors.As(err, &single) {
		w.add(single, path)
		return true
	}
	var nested *Failure
	if errors.As(err, &nested) {
		for _, e := range nested.Errors {
			w.add(e.WithPath(append(append(Path(nil), path...), e.Path...)...), path)
		}
		return true
	}
	return false
}

func (w *walker) add(e *Error, path Path) {
	out := e.clone()
	if !e.pathSet {
		out.Path = append(Path(nil), path...)
	}
	w.errs = append(w.errs, out)
}

func (w *walker) hookContext(path Path) context.Context {
	info := w.info
	info.Path = path
	return context.WithValue(w.ctx, infoKey{}, info)
}

// Info describes where a hook runs. It is available to hooks through
// InfoFromContext.
type Info struct {
	// InputType is the input type passed to ValidateInput, empty for
	// argument validation.
	InputType string
	// ObjectType and Field identify the field whose arguments are validated.
	ObjectType string
	Field      string
	// Path is the location of the value handed to the hook.
	Path Path
}

type infoKey struct{}

// InfoFromContext returns the Info of the hook invocation running with ctx.
func InfoFromContext(ctx context.Context) (Info, bool) {
	info, ok := ctx.Value(infoKey{}).(Info)
	return info, ok
}
