package introspection

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	executor "github.com/hanpama/swgraph/internal/executor"
	language "github.com/hanpama/swgraph/internal/language"
	"github.com/hanpama/swgraph/internal/repository/memory"
	"github.com/hanpama/swgraph/internal/starwars"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, query string) any {
	t.Helper()
	store := memory.NewSeeded()
	g := starwars.NewGraph(store.Droids(), store.Humans())
	rt := Wrap(starwars.NewRuntime(g), g.Schema())
	exec := executor.NewExecutor(rt, rt.Schema())

	doc, err := language.ParseQuery(query)
	require.NoError(t, err)
	res := exec.ExecuteRequest(context.Background(), doc, "", nil, nil)
	require.Empty(t, res.Errors)
	return executor.ToPlain(res.Data)
}

func TestSchemaTypes(t *testing.T) {
	got := execute(t, `{ __schema { queryType { name } types { name } } }`)

	sch := got.(map[string]any)["__schema"].(map[string]any)
	require.Equal(t, map[string]any{"name": "Query"}, sch["queryType"])
	var names []string
	for _, typ := range sch["types"].([]any) {
		names = append(names, typ.(map[string]any)["name"].(string))
	}
	require.Subset(t, names, []string{"Character", "Droid", "Episode", "Human", "Info", "Query", "__Schema", "__Type"})
	require.IsNonDecreasing(t, names)
}

func TestQueryFields(t *testing.T) {
	got := execute(t, `{
		__type(name: "Query") {
			kind
			fields {
				name
				args { name defaultValue }
				type { kind name ofType { kind name } }
			}
		}
	}`)

	idArg := func(def string) []any {
		return []any{map[string]any{"name": "id", "defaultValue": def}}
	}
	named := func(kind, name string) map[string]any {
		return map[string]any{"kind": kind, "name": name, "ofType": nil}
	}
	want := map[string]any{"__type": map[string]any{
		"kind": "OBJECT",
		"fields": []any{
			map[string]any{"name": "droid", "args": idArg(`"1ae34c3b-c1a0-4b7b-9375-c5a221d49e68"`), "type": named("OBJECT", "Droid")},
			map[string]any{"name": "randomDroid", "args": []any{}, "type": named("OBJECT", "Droid")},
			map[string]any{"name": "human", "args": idArg(`"94fbd693-2027-4804-bf40-ed427fe76fda"`), "type": named("OBJECT", "Human")},
			map[string]any{"name": "randomHuman", "args": []any{}, "type": named("OBJECT", "Human")},
			map[string]any{"name": "info", "args": []any{}, "type": map[string]any{
				"kind":   "NON_NULL",
				"name":   nil,
				"ofType": map[string]any{"kind": "OBJECT", "name": "Info"},
			}},
		},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("__type(Query) mismatch (-want +got):\n%s", diff)
	}
}

func TestAbstractAndEnumTypes(t *testing.T) {
	got := execute(t, `{
		character: __type(name: "Character") { kind possibleTypes { name } }
		episode: __type(name: "Episode") { kind enumValues { name } }
		missing: __type(name: "Starship") { name }
	}`)

	want := map[string]any{
		"character": map[string]any{
			"kind":          "INTERFACE",
			"possibleTypes": []any{map[string]any{"name": "Droid"}, map[string]any{"name": "Human"}},
		},
		"episode": map[string]any{
			"kind": "ENUM",
			"enumValues": []any{
				map[string]any{"name": "NEWHOPE"},
				map[string]any{"name": "EMPIRE"},
				map[string]any{"name": "JEDI"},
			},
		},
		"missing": nil,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestDataFieldsStillResolve(t *testing.T) {
	got := execute(t, `{ __typename info { name } }`)

	want := map[string]any{"__typename": "Query", "info": map[string]any{"name": "maana.io.template"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}
