package validation

import (
	"fmt"
	"maps"
	"strings"
)

// Message is the message of the single GraphQL error that carries all
// validation errors of a request.
const Message = "ValidationError"

// ExtensionKey is the GraphQL error extension holding the ordered error list.
const ExtensionKey = "validationErrors"

// Codes of the built-in error kinds.
const (
	CodeEmptyString        = "EmptyString"
	CodeInvalidEmailFormat = "InvalidEmailFormat"
	CodeLengthNotInRange   = "LengthNotInRange"
	CodeNegativeValue      = "NegativeValue"
	CodeNotInRange         = "NotInRange"
)

// Path locates a value inside an input tree. Elements are field names
// (string) or list indices (int).
type Path []any

func (p Path) with(elem any) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = elem
	return out
}

func (p Path) String() string {
	var b strings.Builder
	for i, elem := range p {
		switch v := elem.(type) {
		case int:
			fmt.Fprintf(&b, "[%d]", v)
		default:
			if i > 0 {
				b.WriteByte('.')
			}
			fmt.Fprint(&b, v)
		}
	}
	return b.String()
}

// Error is a single validation failure. Hooks return it (or an ErrorList)
// to reject a value; the walk fills in Path from the failure site unless the
// error was built with WithPath.
type Error struct {
	Code string
	Path Path
	Meta map[string]any

	pathSet bool
}

// NewError returns an error of a user-defined kind.
func NewError(code string) *Error {
	return &Error{Code: code}
}

// WithPath returns a copy of e reported at path instead of at the location
// where the hook ran.
func (e *Error) WithPath(path ...any) *Error {
	out := e.clone()
	out.Path = append(Path(nil), path...)
	out.pathSet = true
	return out
}

// WithMeta returns a copy of e with key set in its metadata.
func (e *Error) WithMeta(key string, value any) *Error {
	out := e.clone()
	if out.Meta == nil {
		out.Meta = make(map[string]any, 1)
	}
	out.Meta[key] = value
	return out
}

// HasPath reports whether the path was set explicitly with WithPath.
func (e *Error) HasPath() bool { return e.pathSet }

func (e *Error) Error() string {
	if len(e.Path) == 0 {
		return e.Code
	}
	return e.Code + " at " + e.Path.String()
}

// Detail is the JSON shape of an entry of extensions.validationErrors.
func (e *Error) Detail() map[string]any {
	path := make([]any, len(e.Path))
	copy(path, e.Path)
	d := map[string]any{"code": e.Code, "path": path}
	if len(e.Meta) > 0 {
		d["meta"] = maps.Clone(e.Meta)
	}
	return d
}

func (e *Error) clone() *Error {
	out := *e
	out.Path = append(Path(nil), e.Path...)
	out.Meta = maps.Clone(e.Meta)
	return &out
}

// ErrorList lets a hook report several errors at once.
type ErrorList []*Error

func (l ErrorList) Error() string {
	parts := make([]string, len(l))
	for i, e := range l {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "; ")
}

// Failure is the aggregate outcome of a walk that collected errors. Its
// Extensions are attached to the GraphQL error by the executor.
type Failure struct {
	Errors []*Error
}

func (f *Failure) Error() string { return Message }

// Extensions returns {"validationErrors": [{code, path, meta?}, ...]}.
func (f *Failure) Extensions() map[string]any {
	details := make([]any, len(f.Errors))
	for i, e := range f.Errors {
		details[i] = e.Detail()
	}
	return map[string]any{ExtensionKey: details}
}

// Bound sets an optional range bound in an error's metadata.
type Bound func(meta map[string]any)

func Min(v any) Bound { return func(m map[string]any) { m["min"] = v } }
func Max(v any) Bound { return func(m map[string]any) { m["max"] = v } }

func EmptyString() *Error        { return NewError(CodeEmptyString) }
func InvalidEmailFormat() *Error { return NewError(CodeInvalidEmailFormat) }
func NegativeValue() *Error      { return NewError(CodeNegativeValue) }

// LengthNotInRange reports a string or list length outside the given bounds.
func LengthNotInRange(bounds ...Bound) *Error {
	return bounded(CodeLengthNotInRange, bounds)
}

// NotInRange reports a number outside the given bounds.
func NotInRange(bounds ...Bound) *Error {
	return bounded(CodeNotInRange, bounds)
}

func bounded(code string, bounds []Bound) *Error {
	e := NewError(code)
	if len(bounds) == 0 {
		return e
	}
	e.Meta = make(map[string]any, len(bounds))
	for _, b := range bounds {
		b(e.Meta)
	}
	return e
}
