package validation_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	validation "github.com/hanpama/gqlvalidate/internal/validation"
)

func validateMutation(t *testing.T, input any) (map[string]any, error) {
	t.Helper()
	return testValidator(t).ValidateArguments(context.Background(), "Mutation", "testMutation", map[string]any{"input": input})
}

func TestValidateArguments_SimpleValidation(t *testing.T) {
	_, err := validateMutation(t, map[string]any{"email": "invalid_email"})
	require.EqualError(t, err, "ValidationError")
	require.Equal(t, []any{
		map[string]any{"code": "InvalidEmailFormat", "path": []any{"email"}},
	}, details(t, err))
}

func TestValidateArguments_NestedValidation(t *testing.T) {
	_, err := validateMutation(t, map[string]any{
		"email":  "invalid_email",
		"people": []any{map[string]any{"theName": "", "theAge": -1}},
	})
	require.Equal(t, []any{
		map[string]any{"code": "InvalidEmailFormat", "path": []any{"email"}},
		map[string]any{"code": "EmptyString", "path": []any{"people", 0, "theName"}},
		map[string]any{"code": "NegativeValue", "path": []any{"people", 0, "theAge"}},
		map[string]any{"code": codeNameAndAgeInEmail, "path": []any{}},
	}, details(t, err))
}

func TestValidateArguments_ValidInput(t *testing.T) {
	out, err := validateMutation(t, map[string]any{
		"email":  "a0@b.c",
		"people": []any{map[string]any{"theName": "a", "theAge": 0}},
	})
	require.NoError(t, err)
	require.Equal(t, "a0@b.c", out["input"].(map[string]any)["email"])
}

func TestValidateArguments_Transform(t *testing.T) {
	in := map[string]any{
		"email":     " a0@b.c ",
		"thePerson": map[string]any{"theName": " a ", "theAge": 0},
	}
	out, err := validateMutation(t, in)
	require.NoError(t, err)

	want := map[string]any{
		"input": map[string]any{
			"email":     "a0@b.c",
			"thePerson": map[string]any{"theName": "a", "theAge": 0},
		},
	}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Fatalf("arguments mismatch (-want +got):\n%s", diff)
	}
	// The caller's value is left untouched.
	require.Equal(t, " a0@b.c ", in["email"])
	require.Equal(t, " a ", in["thePerson"].(map[string]any)["theName"])
}

func TestValidateArguments_SubTreesAreIndependent(t *testing.T) {
	out, err := validateMutation(t, map[string]any{
		"email":     "top.level@email",
		"thePerson": map[string]any{"email": "sub.tree@email"},
	})
	require.NoError(t, err)
	require.Equal(t, "top.level@email", out["input"].(map[string]any)["email"])
	require.Equal(t, "sub.tree@email", out["input"].(map[string]any)["thePerson"].(map[string]any)["email"])
}

func TestValidateArguments_RootValidate(t *testing.T) {
	input := map[string]any{
		"email":  "a1@b.c",
		"people": []any{map[string]any{"theName": "a", "theAge": 0}},
	}
	_, err := validateMutation(t, input)
	require.Equal(t, []any{
		map[string]any{"code": codeNameAndAgeInEmail, "path": []any{}},
	}, details(t, err))

	input["email"] = "a0@b.c"
	_, err = validateMutation(t, input)
	require.NoError(t, err)
}

func TestValidateArguments_ListOfScalars(t *testing.T) {
	_, err := validateMutation(t, map[string]any{"numbers": []any{1}})
	require.Equal(t, []any{
		map[string]any{"code": "LengthNotInRange", "path": []any{"numbers"}, "meta": map[string]any{"min": 2}},
	}, details(t, err))

	_, err = validateMutation(t, map[string]any{"numbers": []any{1, 2}})
	require.NoError(t, err)
}

func TestValidateArguments_NestedObjectHookPath(t *testing.T) {
	_, err := validateMutation(t, map[string]any{
		"people": []any{map[string]any{"theName": "0", "theAge": 0}},
	})
	require.Equal(t, [][]any{{"name"}}, paths(t, err))

	_, err = validateMutation(t, map[string]any{
		"thePerson": map[string]any{"theName": "0", "theAge": 0},
	})
	require.Equal(t, [][]any{{"name"}}, paths(t, err))
}

func TestValidateArguments_ErrorCodes(t *testing.T) {
	_, err := validateMutation(t, map[string]any{"email": "asd"})
	require.Equal(t, validation.CodeInvalidEmailFormat, details(t, err)[0].(map[string]any)["code"])
}

func TestValidateArguments_Range(t *testing.T) {
	_, err := validateMutation(t, map[string]any{"numbers": []any{-1, 0}})
	d := details(t, err)[0].(map[string]any)
	require.Equal(t, validation.CodeNotInRange, d["code"])
	require.Equal(t, map[string]any{"min": 0, "max": 9}, d["meta"])
}

func TestValidateArguments_Nulls(t *testing.T) {
	for name, input := range map[string]any{
		"top level":    nil,
		"inner object": map[string]any{"thePerson": nil},
		"list element": map[string]any{"people": []any{nil}},
		"scalar":       map[string]any{"email": nil},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := validateMutation(t, input)
			require.NoError(t, err)
		})
	}
}

func TestValidateArguments_MalformedValue(t *testing.T) {
	_, err := validateMutation(t, map[string]any{"people": "nobody"})
	require.Error(t, err)
	var failure *validation.Failure
	require.False(t, errors.As(err, &failure))
	require.Contains(t, err.Error(), "expected list at people")
}

func TestValidateArguments_ScalarArgument(t *testing.T) {
	reg := testRegistry().
		Argument("Mutation", "testMutation", "rootString", func(ctx context.Context, value any, _ map[string]any) (any, error) {
			if value.(string) == "" {
				return nil, validation.EmptyString()
			}
			return strings.ToUpper(value.(string)), nil
		}).
		Arguments("Mutation", "testMutation", func(ctx context.Context, args map[string]any) (map[string]any, error) {
			if args["input"] == nil && args["rootString"] == nil {
				return nil, validation.NewError("NothingToDo")
			}
			return args, nil
		})
	v, err := validation.New(testSchema(t), reg)
	require.NoError(t, err)

	out, err := v.ValidateArguments(context.Background(), "Mutation", "testMutation", map[string]any{"rootString": "abc"})
	require.NoError(t, err)
	require.Equal(t, map[string]any{"rootString": "ABC"}, out)

	_, err = v.ValidateArguments(context.Background(), "Mutation", "testMutation", map[string]any{"rootString": ""})
	require.Equal(t, [][]any{{"rootString"}}, paths(t, err))

	_, err = v.ValidateArguments(context.Background(), "Mutation", "testMutation", map[string]any{})
	require.Equal(t, []any{
		map[string]any{"code": "NothingToDo", "path": []any{}},
	}, details(t, err))
}

func TestValidateInput(t *testing.T) {
	v := testValidator(t)
	ctx := context.Background()

	_, err := v.ValidateInput(ctx, "PersonalDataInput", map[string]any{"theName": "", "theAge": -3})
	require.Equal(t, [][]any{{"theName"}, {"theAge"}}, paths(t, err))

	out, err := v.ValidateInput(ctx, "TestInput", map[string]any{"people": []any{map[string]any{"theName": " x "}}})
	require.NoError(t, err)
	require.Equal(t, map[string]any{"people": []any{map[string]any{"theName": "x"}}}, out)

	out, err = v.ValidateInput(ctx, "TestInput", nil)
	require.NoError(t, err)
	require.Nil(t, out)

	_, err = v.ValidateInput(ctx, "Mutation", map[string]any{})
	require.EqualError(t, err, `validation: unknown input type "Mutation"`)
}

func TestValidateInput_ObjectHookAfterFailedField(t *testing.T) {
	// theAge fails its field hook, yet the object hook still sees -1 and
	// reports after it.
	_, err := testValidator(t).ValidateInput(context.Background(), "PersonalDataInput", map[string]any{
		"theName": "-1",
		"theAge":  -1,
	})
	want := []any{
		map[string]any{"code": "NegativeValue", "path": []any{"theAge"}},
		map[string]any{"code": codeNameEqualsAge, "path": []any{"name"}},
	}
	if diff := cmp.Diff(want, details(t, err)); diff != "" {
		t.Fatalf("validation errors mismatch (-want +got):\n%s", diff)
	}
}

func TestWalk_HookOrder(t *testing.T) {
	var calls []string
	record := func(name string) validation.FieldHook {
		return func(ctx context.Context, value any, _ map[string]any) (any, error) {
			info, _ := validation.InfoFromContext(ctx)
			calls = append(calls, name+"@"+info.Path.String())
			return value, nil
		}
	}
	recordObject := func(name string) validation.ObjectHook {
		return func(ctx context.Context, input map[string]any) (map[string]any, error) {
			info, _ := validation.InfoFromContext(ctx)
			calls = append(calls, name+"@"+info.Path.String())
			return nil, nil
		}
	}
	reg := validation.NewRegistry().
		Field("TestInput", "thePerson", record("thePerson")).
		Field("TestInput", "email", record("email")).
		Field("TestInput", "people", record("people")).
		Object("TestInput", recordObject("TestInput")).
		Field("PersonalDataInput", "theName", record("theName")).
		Object("PersonalDataInput", recordObject("PersonalDataInput"))
	v, err := validation.New(testSchema(t), reg)
	require.NoError(t, err)

	_, err = v.ValidateInput(context.Background(), "TestInput", map[string]any{
		"thePerson": map[string]any{"theName": "b"},
		"people":    []any{map[string]any{"theName": "a"}},
		"email":     "x@y",
	})
	require.NoError(t, err)
	require.Equal(t, []string{
		"email@email",
		"theName@people[0].theName",
		"PersonalDataInput@people[0]",
		"people@people",
		"theName@thePerson.theName",
		"PersonalDataInput@thePerson",
		"thePerson@thePerson",
		"TestInput@",
	}, calls)
}

func TestWalk_ChainedHooksAndErrorList(t *testing.T) {
	reg := validation.NewRegistry().
		Field("PersonalDataInput", "theName", func(ctx context.Context, value any, _ map[string]any) (any, error) {
			return strings.TrimSpace(value.(string)), nil
		}).
		Field("PersonalDataInput", "theName", func(ctx context.Context, value any, _ map[string]any) (any, error) {
			if value.(string) == "" {
				return nil, validation.ErrorList{
					validation.EmptyString(),
					validation.LengthNotInRange(validation.Min(1)),
				}
			}
			return value, nil
		})
	v, err := validation.New(testSchema(t), reg)
	require.NoError(t, err)

	_, err = v.ValidateInput(context.Background(), "PersonalDataInput", map[string]any{"theName": "   "})
	require.Equal(t, []any{
		map[string]any{"code": "EmptyString", "path": []any{"theName"}},
		map[string]any{"code": "LengthNotInRange", "path": []any{"theName"}, "meta": map[string]any{"min": 1}},
	}, details(t, err))
}

func TestWalk_NestedFailureIsPrefixed(t *testing.T) {
	inner := testValidator(t)
	reg := validation.NewRegistry().
		Field("TestInput", "email", func(ctx context.Context, value any, _ map[string]any) (any, error) {
			_, err := inner.ValidateInput(ctx, "PersonalDataInput", map[string]any{"theAge": -1})
			return value, err
		})
	v, err := validation.New(testSchema(t), reg)
	require.NoError(t, err)

	_, err = v.ValidateInput(context.Background(), "TestInput", map[string]any{"email": "x"})
	require.Equal(t, [][]any{{"email", "theAge"}}, paths(t, err))
}

func TestWalk_HookErrorAborts(t *testing.T) {
	boom := errors.New("lookup failed")
	reg := validation.NewRegistry().
		Field("TestInput", "email", func(ctx context.Context, value any, _ map[string]any) (any, error) {
			return nil, boom
		}).
		Field("TestInput", "numbers", func(ctx context.Context, value any, _ map[string]any) (any, error) {
			t.Fatal("walk continued after a non-validation error")
			return value, nil
		})
	v, err := validation.New(testSchema(t), reg)
	require.NoError(t, err)

	_, err = v.ValidateInput(context.Background(), "TestInput", map[string]any{"email": "x", "numbers": []any{1}})
	require.ErrorIs(t, err, boom)
}

func TestWalk_InfoForArguments(t *testing.T) {
	var got validation.Info
	reg := validation.NewRegistry().
		Field("TestInput", "email", func(ctx context.Context, value any, _ map[string]any) (any, error) {
			got, _ = validation.InfoFromContext(ctx)
			return value, nil
		})
	v, err := validation.New(testSchema(t), reg)
	require.NoError(t, err)

	_, err = v.ValidateArguments(context.Background(), "Mutation", "testMutation", map[string]any{
		"input": map[string]any{"email": "a@b"},
	})
	require.NoError(t, err)
	require.Equal(t, validation.Info{ObjectType: "Mutation", Field: "testMutation", Path: validation.Path{"email"}}, got)
}
