package validation_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	validation "github.com/hanpama/gqlvalidate/internal/validation"
)

func identity(ctx context.Context, value any, _ map[string]any) (any, error) { return value, nil }

func TestNew_RejectsUnknownTargets(t *testing.T) {
	sch := testSchema(t)
	cases := map[string]struct {
		reg  *validation.Registry
		want string
	}{
		"unknown input type": {
			reg:  validation.NewRegistry().Field("Nope", "x", identity),
			want: `validation: "Nope" is not an input object type`,
		},
		"output type": {
			reg: validation.NewRegistry().Object("PersonalData", func(ctx context.Context, in map[string]any) (map[string]any, error) {
				return in, nil
			}),
			want: `validation: "PersonalData" is not an input object type`,
		},
		"unknown field": {
			reg:  validation.NewRegistry().Field("TestInput", "nope", identity),
			want: `validation: input type "TestInput" has no field "nope"`,
		},
		"field without arguments": {
			reg:  validation.NewRegistry().Argument("Query", "ok", "x", identity),
			want: "validation: field Query.ok does not exist or takes no arguments",
		},
		"unknown argument": {
			reg:  validation.NewRegistry().Argument("Mutation", "testMutation", "nope", identity),
			want: `validation: field Mutation.testMutation has no argument "nope"`,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := validation.New(sch, tc.reg)
			require.EqualError(t, err, tc.want)
		})
	}
}

func TestRegistry_Merge(t *testing.T) {
	suffix := func(s string) validation.FieldHook {
		return func(ctx context.Context, value any, _ map[string]any) (any, error) {
			return value.(string) + s, nil
		}
	}
	base := validation.NewRegistry().Field("PersonalDataInput", "email", suffix("-a"))
	extra := validation.NewRegistry().Field("PersonalDataInput", "email", suffix("-b"))
	v, err := validation.New(testSchema(t), base.Merge(extra).Merge(nil))
	require.NoError(t, err)

	out, err := v.ValidateInput(context.Background(), "PersonalDataInput", map[string]any{"email": "x"})
	require.NoError(t, err)
	require.Equal(t, "x-a-b", out["email"])
}

func TestValidator_Shapes(t *testing.T) {
	v, err := validation.New(testSchema(t), nil)
	require.NoError(t, err)

	require.Equal(t, []string{"PersonalDataInput", "TestInput"}, v.InputTypes())

	shape := v.Shape("TestInput")
	require.NotNil(t, shape)
	var names []string
	for _, f := range shape.Fields {
		names = append(names, f.Name+":"+f.Kind.String())
	}
	require.Equal(t, []string{"email:Scalar", "people:List", "numbers:List", "thePerson:Object"}, names)
	require.Equal(t, validation.KindObject, shape.Field("people").Elem.Kind)
	require.Same(t, v.Shape("PersonalDataInput"), shape.Field("thePerson").Shape)
	require.Nil(t, v.Shape("Mutation"))
}
