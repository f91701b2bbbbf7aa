package executor

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	schema "github.com/hanpama/gqlvalidate/internal/schema"
	validation "github.com/hanpama/gqlvalidate/internal/validation"
)

const signupSDL = `
type Query { ok: Boolean }

input SignupInput {
  email: String!
  age: Int
}

type Mutation {
  signup(input: SignupInput!): String
  rename(name: String!): String
}
`

func signupValidator(t *testing.T, sch *schema.Schema) *validation.Validator {
	t.Helper()
	reg := validation.NewRegistry().
		Field("SignupInput", "email", func(ctx context.Context, value any, _ map[string]any) (any, error) {
			s := strings.TrimSpace(value.(string))
			if !strings.Contains(s, "@") {
				return nil, validation.InvalidEmailFormat()
			}
			return s, nil
		}).
		Field("SignupInput", "age", func(ctx context.Context, value any, _ map[string]any) (any, error) {
			if value.(int) < 0 {
				return nil, validation.NegativeValue()
			}
			return value, nil
		})
	v, err := validation.New(sch, reg)
	require.NoError(t, err)
	return v
}

func TestArgumentValidator_RejectsBeforeResolve(t *testing.T) {
	sch, err := schema.BuildFromSDL(signupSDL)
	require.NoError(t, err)
	rt := newFakeRuntime(map[string]fakeFunc{
		"Mutation.signup": func(ctx context.Context, src any, args map[string]any) (any, error) {
			return args["input"].(map[string]any)["email"], nil
		},
		"Mutation.rename": constant("renamed"),
	})
	exec := NewExecutor(rt, sch, WithArgumentValidator(signupValidator(t, sch)))

	doc := mustParseQuery(t, `mutation($age: Int) { signup(input: {email: "nope", age: $age}) rename(name: "x") }`)
	gotRes := exec.ExecuteRequest(context.Background(), doc, "", map[string]any{"age": float64(-1)}, nil)

	wantRes := &ExecutionResult{
		Data: map[string]any{"signup": nil, "rename": "renamed"},
		Errors: []GraphQLError{{
			Message: "ValidationError",
			Path:    Path{"signup"},
			Extensions: map[string]any{
				"validationErrors": []any{
					map[string]any{"code": "InvalidEmailFormat", "path": []any{"email"}},
					map[string]any{"code": "NegativeValue", "path": []any{"age"}},
				},
			},
		}},
	}
	if diff := cmp.Diff(wantRes, gotRes); diff != "" {
		t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
	}

	require.Equal(t, []string{"Mutation.rename"}, rt.syncs)
	require.Equal(t, []map[string]any{{"name": "x"}}, rt.args["Mutation.rename"])
}

func TestArgumentValidator_PassesTransformedArguments(t *testing.T) {
	sch, err := schema.BuildFromSDL(signupSDL)
	require.NoError(t, err)
	rt := newFakeRuntime(map[string]fakeFunc{
		"Mutation.signup": func(ctx context.Context, src any, args map[string]any) (any, error) {
			return args["input"].(map[string]any)["email"], nil
		},
	})
	exec := NewExecutor(rt, sch, WithArgumentValidator(signupValidator(t, sch)))

	doc := mustParseQuery(t, `mutation { signup(input: {email: "  a@b.c  "}) }`)
	gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil, nil)

	wantRes := &ExecutionResult{Data: map[string]any{"signup": "a@b.c"}, Errors: []GraphQLError{}}
	if diff := cmp.Diff(wantRes, gotRes); diff != "" {
		t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
	}
}

func TestArgumentValidator_PanicBecomesFieldError(t *testing.T) {
	sch, err := schema.BuildFromSDL(signupSDL)
	require.NoError(t, err)
	v, err := validation.New(sch, validation.NewRegistry().
		Argument("Mutation", "rename", "name", func(ctx context.Context, value any, _ map[string]any) (any, error) {
			panic("boom")
		}))
	require.NoError(t, err)
	rt := newFakeRuntime(map[string]fakeFunc{
		"Mutation.signup": constant("ok"),
		"Mutation.rename": constant("renamed"),
	})
	exec := NewExecutor(rt, sch, WithArgumentValidator(v))

	doc := mustParseQuery(t, `mutation { rename(name: "x") signup(input: {email: "a@b.c"}) }`)
	res := exec.ExecuteRequest(context.Background(), doc, "", nil, nil)

	require.Equal(t, map[string]any{"rename": nil, "signup": "ok"}, res.Data)
	require.Len(t, res.Errors, 1)
	require.Equal(t, Path{"rename"}, res.Errors[0].Path)
	require.Equal(t, "argument validator for Mutation.rename panicked: boom", res.Errors[0].Message)
	require.Equal(t, []string{"Mutation.signup"}, rt.syncs)
}

func TestResolverError_Extensions(t *testing.T) {
	sch, err := schema.BuildFromSDL(signupSDL)
	require.NoError(t, err)
	v := signupValidator(t, sch)
	rt := newFakeRuntime(map[string]fakeFunc{
		"Mutation.signup": fakeFunc(validation.Validated(v, "Mutation", "signup",
			func(ctx context.Context, src any, args map[string]any) (any, error) {
				return "unreachable", nil
			})),
	})
	exec := NewExecutor(rt, sch)

	doc := mustParseQuery(t, `mutation { signup(input: {email: "nope"}) }`)
	gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil, nil)

	require.Len(t, gotRes.Errors, 1)
	require.Equal(t, "ValidationError", gotRes.Errors[0].Message)
	require.Equal(t, map[string]any{
		"validationErrors": []any{
			map[string]any{"code": "InvalidEmailFormat", "path": []any{"email"}},
		},
	}, gotRes.Errors[0].Extensions)
	require.Equal(t, map[string]any{"signup": nil}, gotRes.Data)
}

func TestArgumentCoercion_UnknownInputField(t *testing.T) {
	sch, err := schema.BuildFromSDL(signupSDL)
	require.NoError(t, err)
	rt := newFakeRuntime(map[string]fakeFunc{"Mutation.signup": constant("x")})
	exec := NewExecutor(rt, sch)

	doc := mustParseQuery(t, `mutation($in: SignupInput!) { signup(input: $in) }`)
	gotRes := exec.ExecuteRequest(context.Background(), doc, "", map[string]any{
		"in": map[string]any{"email": "a@b.c", "nickname": "zz"},
	}, nil)

	require.Nil(t, gotRes.Data)
	require.Len(t, gotRes.Errors, 1)
	require.Contains(t, gotRes.Errors[0].Message, "unknown field 'nickname' on input type SignupInput")
	require.Empty(t, rt.syncs)
}
