package language

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseQuery(t *testing.T) {
	doc, err := ParseQuery(`mutation Save($in: PersonInput!) { save(input: $in) { id } }`)
	require.NoError(t, err)
	require.Len(t, doc.Operations, 1)
	require.Equal(t, Mutation, doc.Operations[0].Operation)
	require.Equal(t, "Save", doc.Operations[0].Name)

	_, err = ParseQuery(`{ broken`)
	require.Error(t, err)
	e, ok := AsError(err)
	require.True(t, ok)
	require.NotEmpty(t, e.Locations)
}

func TestLoadSchema(t *testing.T) {
	s, err := LoadSchema(&Source{Name: "a.graphql", Input: `
		type Query { ok: Boolean }
		input PersonInput { name: String! }
	`})
	require.NoError(t, err)
	require.Equal(t, InputObject, s.Types["PersonInput"].Kind)
	require.NotNil(t, s.Types["String"])

	_, err = LoadSchema(&Source{Name: "b.graphql", Input: `type Query { x: Missing }`})
	require.Error(t, err)
	_, ok := AsError(err)
	require.True(t, ok)
}

func TestParseSchema(t *testing.T) {
	doc, err := ParseSchema("c.graphql", `input A { x: Int = 1 }`)
	require.NoError(t, err)
	require.Len(t, doc.Definitions, 1)
	require.Equal(t, "A", doc.Definitions[0].Name)
}

func TestParsePrelude(t *testing.T) {
	doc, err := ParsePrelude()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, def := range doc.Definitions {
		names[def.Name] = true
	}
	for _, n := range []string{"Int", "String", "__Schema", "__Type", "__TypeKind"} {
		require.True(t, names[n], n)
	}
}

func TestAsError_Unrelated(t *testing.T) {
	_, ok := AsError(nil)
	require.False(t, ok)
}
