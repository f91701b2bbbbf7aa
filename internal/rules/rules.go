// Package rules provides ready-made validation hooks and binds them to
// schema fields from YAML rule files.
package rules

import (
	"context"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	validation "github.com/hanpama/gqlvalidate/internal/validation"
)

// Limits bounds a length or a number. A nil end is open.
type Limits struct {
	Min *float64 `yaml:"min"`
	Max *float64 `yaml:"max"`
}

func AtLeast(min float64) Limits      { return Limits{Min: &min} }
func AtMost(max float64) Limits       { return Limits{Max: &max} }
func Between(min, max float64) Limits { return Limits{Min: &min, Max: &max} }

func (l Limits) isZero() bool { return l.Min == nil && l.Max == nil }

func (l Limits) contains(n float64) bool {
	return (l.Min == nil || n >= *l.Min) && (l.Max == nil || n <= *l.Max)
}

// bounds lists the configured ends for error metadata. Whole numbers are
// reported as ints.
func (l Limits) bounds() []validation.Bound {
	var out []validation.Bound
	if l.Min != nil {
		out = append(out, validation.Min(metaNumber(*l.Min)))
	}
	if l.Max != nil {
		out = append(out, validation.Max(metaNumber(*l.Max)))
	}
	return out
}

func metaNumber(f float64) any {
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return int(f)
	}
	return f
}

// Trim strips surrounding white space from strings.
func Trim(ctx context.Context, value any, _ map[string]any) (any, error) {
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s), nil
	}
	return value, nil
}

// NonEmpty rejects empty strings.
func NonEmpty(ctx context.Context, value any, _ map[string]any) (any, error) {
	if s, ok := value.(string); ok && s == "" {
		return nil, validation.EmptyString()
	}
	return value, nil
}

var check = validator.New()

// Email accepts a bare address such as "a@b.c"; display names and angle
// brackets are rejected.
func Email(ctx context.Context, value any, _ map[string]any) (any, error) {
	s, ok := value.(string)
	if !ok {
		return value, nil
	}
	if err := check.VarCtx(ctx, s, "email"); err != nil {
		return nil, validation.InvalidEmailFormat()
	}
	return value, nil
}

// NonNegative rejects numbers below zero.
func NonNegative(ctx context.Context, value any, _ map[string]any) (any, error) {
	if n, ok := number(value); ok && n < 0 {
		return nil, validation.NegativeValue()
	}
	return value, nil
}

// Length checks the rune count of strings and the size of lists.
func Length(l Limits) validation.FieldHook {
	return func(ctx context.Context, value any, _ map[string]any) (any, error) {
		var n int
		switch v := value.(type) {
		case string:
			n = utf8.RuneCountInString(v)
		case []any:
			n = len(v)
		default:
			return value, nil
		}
		if !l.contains(float64(n)) {
			return nil, validation.LengthNotInRange(l.bounds()...)
		}
		return value, nil
	}
}

// Range checks a number, or every number of a list.
func Range(l Limits) validation.FieldHook {
	return func(ctx context.Context, value any, _ map[string]any) (any, error) {
		items, ok := value.([]any)
		if !ok {
			items = []any{value}
		}
		for _, item := range items {
			if n, ok := number(item); ok && !l.contains(n) {
				return nil, validation.NotInRange(l.bounds()...)
			}
		}
		return value, nil
	}
}

// Chain runs hooks in order, each receiving the previous result. The first
// error stops the chain.
func Chain(hooks ...validation.FieldHook) validation.FieldHook {
	return func(ctx context.Context, value any, input map[string]any) (any, error) {
		var err error
		for _, h := range hooks {
			if value, err = h(ctx, value, input); err != nil {
				return nil, err
			}
		}
		return value, nil
	}
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
