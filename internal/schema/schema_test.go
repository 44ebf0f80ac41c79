package schema

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func buildTestSchema() *Schema {
	s := NewSchema("").SetQueryType("Query")
	s.AddType(NewType("Episode", TypeKindEnum, "").
		AddEnumValue(NewEnumValue("NEWHOPE", "")).
		AddEnumValue(NewEnumValue("EMPIRE", "Released in 1980.")))
	s.AddType(NewType("Character", TypeKindInterface, "").
		AddField(NewField("name", "", NamedType("String"))).
		AddPossibleType("Droid"))
	s.AddType(NewType("Droid", TypeKindObject, "A droid.").
		AddInterface("Character").
		AddField(NewField("name", "", NamedType("String"))).
		AddField(NewField("friends", "", ListType(NamedType("Character"))).SetAsync(true)))
	s.AddType(NewType("Query", TypeKindObject, "").
		AddField(NewField("droid", "", NamedType("Droid")).
			SetAsync(true).
			AddArgument(NewInputValue("id", "", NonNullType(NamedType("ID"))).SetDefault("r2"))).
		AddField(NewField("old", "", NamedType("String")).Deprecate("use droid")))
	return s
}

func TestRender(t *testing.T) {
	got := Render(buildTestSchema())
	want := `interface Character {
  name: String
}

"""
A droid.
"""
type Droid implements Character {
  name: String
  friends: [Character]
}

enum Episode {
  NEWHOPE
  """
  Released in 1980.
  """
  EMPIRE
}

type Query {
  droid(id: ID! = "r2"): Droid
  old: String @deprecated(reason: "use droid")
}
`
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Render mismatch (-want +got):\n%s", diff)
	}
}

func TestIsPossibleType(t *testing.T) {
	s := buildTestSchema()
	require.True(t, s.IsPossibleType("Character", "Droid"))
	require.True(t, s.IsPossibleType("Droid", "Droid"))
	require.False(t, s.IsPossibleType("Character", "Query"))
	require.False(t, s.IsPossibleType("Missing", "Droid"))
}

func TestTypeRefHelpers(t *testing.T) {
	ref := NonNullType(ListType(NonNullType(NamedType("Droid"))))
	require.True(t, IsNonNull(ref))
	require.True(t, IsList(ref))
	require.Equal(t, "Droid", GetNamedType(ref))
	require.True(t, IsNonNull(Unwrap(Unwrap(ref))))
}
