package validation_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	schema "github.com/hanpama/gqlvalidate/internal/schema"
	validation "github.com/hanpama/gqlvalidate/internal/validation"
)

const testSDL = `
type Query { ok: Boolean }

input PersonalDataInput {
  theName: String
  theAge: Int
  email: String
}

input TestInput {
  email: String
  people: [PersonalDataInput]
  numbers: [Int!]
  thePerson: PersonalDataInput
}

type PersonalData { theName: String }

type TestMutationOutput {
  email: String
  thePerson: PersonalData
}

type Mutation {
  testMutation(input: TestInput, rootString: String): TestMutationOutput
}
`

const (
	codeNameEqualsAge     = "NameEqualsAge"
	codeNameAndAgeInEmail = "NameAndAgeInEmail"
)

func testSchema(t *testing.T) *schema.Schema {
	t.Helper()
	sch, err := schema.BuildFromSDL(testSDL)
	require.NoError(t, err)
	return sch
}

// testRegistry binds the hooks used throughout these tests: per-field checks
// on both input types plus an object-level check on each.
func testRegistry() *validation.Registry {
	return validation.NewRegistry().
		Field("PersonalDataInput", "theName", func(ctx context.Context, value any, _ map[string]any) (any, error) {
			name := value.(string)
			if len(name) == 0 {
				return nil, validation.EmptyString()
			}
			return strings.TrimSpace(name), nil
		}).
		Field("PersonalDataInput", "theAge", func(ctx context.Context, value any, _ map[string]any) (any, error) {
			if value.(int) < 0 {
				return nil, validation.NegativeValue()
			}
			return value, nil
		}).
		Object("PersonalDataInput", func(ctx context.Context, input map[string]any) (map[string]any, error) {
			if name, ok := input["theName"].(string); ok && name == fmt.Sprint(input["theAge"]) {
				return nil, validation.NewError(codeNameEqualsAge).WithPath("name")
			}
			return input, nil
		}).
		Field("TestInput", "email", func(ctx context.Context, value any, _ map[string]any) (any, error) {
			email := value.(string)
			if !strings.Contains(email, "@") {
				return nil, validation.InvalidEmailFormat()
			}
			return strings.Trim(email, " "), nil
		}).
		Field("TestInput", "numbers", func(ctx context.Context, value any, _ map[string]any) (any, error) {
			numbers := value.([]any)
			if len(numbers) < 2 {
				return nil, validation.LengthNotInRange(validation.Min(2))
			}
			for _, n := range numbers {
				if n.(int) < 0 || n.(int) > 9 {
					return nil, validation.NotInRange(validation.Min(0), validation.Max(9))
				}
			}
			return numbers, nil
		}).
		Object("TestInput", func(ctx context.Context, input map[string]any) (map[string]any, error) {
			people, _ := input["people"].([]any)
			email, _ := input["email"].(string)
			if len(people) == 0 || email == "" {
				return input, nil
			}
			first, _ := people[0].(map[string]any)
			if strings.Split(email, "@")[0] != fmt.Sprint(first["theName"])+fmt.Sprint(first["theAge"]) {
				return nil, validation.NewError(codeNameAndAgeInEmail)
			}
			return input, nil
		})
}

func testValidator(t *testing.T) *validation.Validator {
	t.Helper()
	v, err := validation.New(testSchema(t), testRegistry())
	require.NoError(t, err)
	return v
}

// details returns the extensions.validationErrors entries of err.
func details(t *testing.T, err error) []any {
	t.Helper()
	var failure *validation.Failure
	require.ErrorAs(t, err, &failure)
	return failure.Extensions()[validation.ExtensionKey].([]any)
}

func paths(t *testing.T, err error) [][]any {
	t.Helper()
	var out [][]any
	for _, d := range details(t, err) {
		out = append(out, d.(map[string]any)["path"].([]any))
	}
	return out
}
