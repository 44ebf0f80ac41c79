package executor

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	schema "github.com/hanpama/swgraph/internal/schema"
	"github.com/stretchr/testify/require"
)

type plainResult struct {
	Data   any
	Errors []GraphQLError
}

func plain(r *ExecutionResult) plainResult {
	return plainResult{Data: ToPlain(r.Data), Errors: r.Errors}
}

func assertResult(t *testing.T, want plainResult, got *ExecutionResult) {
	t.Helper()
	if diff := cmp.Diff(want, plain(got), cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
	}
}

func characterSchema() *schema.Schema {
	friends := func() *schema.Field {
		return schema.NewField("friends", "", schema.ListType(schema.NamedType("Character"))).SetAsync(true)
	}
	s := schema.NewSchema("").SetQueryType("Query")
	s.AddType(schema.NewType("Character", schema.TypeKindInterface, "").
		AddField(schema.NewField("name", "", schema.NamedType("String"))).
		AddField(friends()).
		AddPossibleType("Droid").
		AddPossibleType("Human"))
	s.AddType(schema.NewType("Droid", schema.TypeKindObject, "").
		AddInterface("Character").
		AddField(schema.NewField("name", "", schema.NamedType("String"))).
		AddField(schema.NewField("primaryFunction", "", schema.NamedType("String"))).
		AddField(schema.NewField("serial", "", schema.NonNullType(schema.NamedType("String")))).
		AddField(friends()))
	s.AddType(schema.NewType("Human", schema.TypeKindObject, "").
		AddInterface("Character").
		AddField(schema.NewField("name", "", schema.NamedType("String"))).
		AddField(schema.NewField("homePlanet", "", schema.NamedType("String"))).
		AddField(friends()))
	s.AddType(schema.NewType("Query", schema.TypeKindObject, "").
		AddField(schema.NewField("hero", "", schema.NamedType("Character")).
			SetAsync(true).
			AddArgument(schema.NewInputValue("id", "", schema.NamedType("ID")).SetDefault("r2"))).
		AddField(schema.NewField("all", "", schema.ListType(schema.NamedType("Character"))).SetAsync(true)).
		AddField(schema.NewField("count", "", schema.NamedType("Int")).
			SetAsync(true).
			AddArgument(schema.NewInputValue("n", "", schema.NamedType("Int")))).
		AddField(schema.NewField("must", "", schema.NonNullType(schema.NamedType("String"))).SetAsync(true)).
		AddField(schema.NewField("info", "", schema.NamedType("String"))))
	return s
}

var (
	luke = map[string]any{"__typename": "Human", "name": "Luke", "homePlanet": "Tatooine", "friends": []any{}}
	r2   = map[string]any{"__typename": "Droid", "name": "R2-D2", "primaryFunction": "Astromech", "friends": []any{luke}}
)

func newCharacterRuntime() *MockRuntime {
	return NewMockRuntime(map[string]MockResolver{
		"Query.hero": NewMockValueResolver(r2),
		"Query.all":  NewMockValueResolver([]any{r2, luke}),
		"Query.info": NewMockValueResolver("I"),
	})
}

func TestOrdering_FieldOrderAndBatching(t *testing.T) {
	rt := newCharacterRuntime()
	exec := NewExecutor(rt, characterSchema())

	got := exec.ExecuteRequest(context.Background(), mustParseQuery(t, "{ info hero { name } all { name } }"), "", nil, nil)

	assertResult(t, plainResult{Data: map[string]any{
		"info": "I",
		"hero": map[string]any{"name": "R2-D2"},
		"all":  []any{map[string]any{"name": "R2-D2"}, map[string]any{"name": "Luke"}},
	}}, got)
	require.Equal(t, []string{"info", "hero", "all"}, got.Data.(*OrderedMap).Keys())

	wantCalls := []Call{
		{Kind: CallKindSync, ObjectType: "Query", Field: "info"},
		{Kind: CallKindAsync, ObjectType: "Query", Field: "hero", Args: map[string]any{"id": "r2"}, BatchID: 1},
		{Kind: CallKindAsync, ObjectType: "Query", Field: "all", BatchID: 1},
		{Kind: CallKindSync, ObjectType: "Droid", Field: "name"},
		{Kind: CallKindSync, ObjectType: "Droid", Field: "name"},
		{Kind: CallKindSync, ObjectType: "Human", Field: "name"},
	}
	if diff := cmp.Diff(wantCalls, rt.GetCalls(), cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("Runtime calls mismatch (-want +got):\n%s", diff)
	}
}

func TestOrdering_OneBatchPerAsyncDepth(t *testing.T) {
	rt := newCharacterRuntime()
	exec := NewExecutor(rt, characterSchema())

	got := exec.ExecuteRequest(context.Background(), mustParseQuery(t, "{ hero { friends { friends { name } } } }"), "", nil, nil)

	assertResult(t, plainResult{Data: map[string]any{
		"hero": map[string]any{"friends": []any{map[string]any{"friends": []any{}}}},
	}}, got)
	require.Equal(t, 3, rt.BatchCount())
}

func TestMarshalJSON_KeepsQueryOrder(t *testing.T) {
	exec := NewExecutor(newCharacterRuntime(), characterSchema())

	got := exec.ExecuteRequest(context.Background(), mustParseQuery(t, "{ info hero { primaryFunction: name name: __typename } }"), "", nil, nil)

	b, err := json.Marshal(got)
	require.NoError(t, err)
	require.Equal(t, `{"data":{"info":"I","hero":{"primaryFunction":"R2-D2","name":"Droid"}}}`, string(b))
}

func TestCollect_AbstractFragments(t *testing.T) {
	exec := NewExecutor(newCharacterRuntime(), characterSchema())
	doc := mustParseQuery(t, `
		{ all { ...Named ... on Droid { primaryFunction } ... on Human { homePlanet } } }
		fragment Named on Character { name }
	`)

	got := exec.ExecuteRequest(context.Background(), doc, "", nil, nil)

	assertResult(t, plainResult{Data: map[string]any{
		"all": []any{
			map[string]any{"name": "R2-D2", "primaryFunction": "Astromech"},
			map[string]any{"name": "Luke", "homePlanet": "Tatooine"},
		},
	}}, got)
}

func TestArguments(t *testing.T) {
	t.Run("coercion failure skips resolver and keeps siblings", func(t *testing.T) {
		rt := newCharacterRuntime()
		exec := NewExecutor(rt, characterSchema())

		got := exec.ExecuteRequest(context.Background(), mustParseQuery(t, `{ count(n: "abc") info }`), "", nil, nil)

		assertResult(t, plainResult{
			Data: map[string]any{"count": nil, "info": "I"},
			Errors: []GraphQLError{{
				Message:    `argument "n" cannot be coerced: cannot coerce abc (string) to int`,
				Path:       Path{"count"},
				Extensions: map[string]any{"code": CodeArgumentBinding},
			}},
		}, got)
		require.Equal(t, 0, rt.BatchCount())
	})

	t.Run("omitted argument takes schema default", func(t *testing.T) {
		rt := newCharacterRuntime()
		exec := NewExecutor(rt, characterSchema())

		exec.ExecuteRequest(context.Background(), mustParseQuery(t, `{ hero { name } }`), "", nil, nil)

		require.Equal(t, map[string]any{"id": "r2"}, rt.GetCalls()[0].Args)
	})

	t.Run("explicit argument", func(t *testing.T) {
		rt := newCharacterRuntime()
		exec := NewExecutor(rt, characterSchema())

		exec.ExecuteRequest(context.Background(), mustParseQuery(t, `{ hero(id: "c3") { name } }`), "", nil, nil)

		require.Equal(t, map[string]any{"id": "c3"}, rt.GetCalls()[0].Args)
	})

	t.Run("unsupplied variable takes schema default", func(t *testing.T) {
		rt := newCharacterRuntime()
		exec := NewExecutor(rt, characterSchema())

		exec.ExecuteRequest(context.Background(), mustParseQuery(t, `query Q($id: ID) { hero(id: $id) { name } }`), "", nil, nil)

		require.Equal(t, map[string]any{"id": "r2"}, rt.GetCalls()[0].Args)
	})

	t.Run("supplied variable", func(t *testing.T) {
		rt := newCharacterRuntime()
		exec := NewExecutor(rt, characterSchema())

		exec.ExecuteRequest(context.Background(), mustParseQuery(t, `query Q($id: ID) { hero(id: $id) { name } }`), "", map[string]any{"id": "lk"}, nil)

		require.Equal(t, map[string]any{"id": "lk"}, rt.GetCalls()[0].Args)
	})
}

type codedError struct{ code string }

func (e codedError) Error() string { return "fetch failed" }

func (e codedError) Extensions() map[string]any { return map[string]any{"code": e.code} }

func TestErrors_ExtensionsArePropagated(t *testing.T) {
	rt := newCharacterRuntime()
	rt.resolvers["Query.hero"] = NewMockErrorResolver(codedError{code: "FETCH_FAILURE"})
	exec := NewExecutor(rt, characterSchema())

	got := exec.ExecuteRequest(context.Background(), mustParseQuery(t, "{ hero { name } info }"), "", nil, nil)

	assertResult(t, plainResult{
		Data: map[string]any{"hero": nil, "info": "I"},
		Errors: []GraphQLError{{
			Message:    "fetch failed",
			Path:       Path{"hero"},
			Extensions: map[string]any{"code": "FETCH_FAILURE"},
		}},
	}, got)
	require.Equal(t, "FETCH_FAILURE", got.Errors[0].Code())
}

func TestErrors_PlainErrorHasNoExtensions(t *testing.T) {
	rt := newCharacterRuntime()
	rt.resolvers["Query.hero"] = NewMockErrorResolver(errors.New("boom"))
	exec := NewExecutor(rt, characterSchema())

	got := exec.ExecuteRequest(context.Background(), mustParseQuery(t, "{ hero { name } }"), "", nil, nil)

	assertResult(t, plainResult{
		Data:   map[string]any{"hero": nil},
		Errors: []GraphQLError{{Message: "boom", Path: Path{"hero"}}},
	}, got)
}

func TestNonNull(t *testing.T) {
	t.Run("root async field", func(t *testing.T) {
		exec := NewExecutor(newCharacterRuntime(), characterSchema())

		got := exec.ExecuteRequest(context.Background(), mustParseQuery(t, "{ must info }"), "", nil, nil)

		assertResult(t, plainResult{
			Data:   map[string]any{"must": nil, "info": "I"},
			Errors: []GraphQLError{{Message: "Cannot return null for non-nullable field must", Path: Path{"must"}}},
		}, got)
	})

	t.Run("nested sync field nulls parent and prunes its tasks", func(t *testing.T) {
		rt := newCharacterRuntime()
		exec := NewExecutor(rt, characterSchema())

		got := exec.ExecuteRequest(context.Background(), mustParseQuery(t, "{ hero { name friends { name } ... on Droid { serial } } }"), "", nil, nil)

		assertResult(t, plainResult{
			Data:   map[string]any{"hero": nil},
			Errors: []GraphQLError{{Message: "Cannot return null for non-nullable field hero.serial", Path: Path{"hero", "serial"}}},
		}, got)
		require.Equal(t, 1, rt.BatchCount())
	})
}

func TestCancellation(t *testing.T) {
	cancelled := plainResult{Errors: []GraphQLError{{
		Message:    ErrCancelled.Error(),
		Extensions: map[string]any{"code": CodeCancelled},
	}}}

	t.Run("before execution", func(t *testing.T) {
		rt := newCharacterRuntime()
		exec := NewExecutor(rt, characterSchema())
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		got := exec.ExecuteRequest(ctx, mustParseQuery(t, "{ info hero { name } }"), "", nil, nil)

		assertResult(t, cancelled, got)
		require.True(t, got.Cancelled())
		require.Empty(t, rt.GetCalls())
	})

	t.Run("during a batch", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		rt := newCharacterRuntime()
		rt.resolvers["Query.hero"] = func(context.Context, any, map[string]any) (any, error) {
			cancel()
			return r2, nil
		}
		exec := NewExecutor(rt, characterSchema())

		got := exec.ExecuteRequest(ctx, mustParseQuery(t, "{ info hero { name friends { name } } }"), "", nil, nil)

		assertResult(t, cancelled, got)
		require.Nil(t, got.Data)
		require.Equal(t, 1, rt.BatchCount())
	})
}

func TestOrderedMap(t *testing.T) {
	m := NewOrderedMap()
	m.Set("b", 1)
	m.Set("a", 2)
	m.Set("b", 3)

	require.Equal(t, []string{"b", "a"}, m.Keys())
	require.Equal(t, 2, m.Len())
	v, ok := m.Get("b")
	require.True(t, ok)
	require.Equal(t, 3, v)

	b, err := json.Marshal(m)
	require.NoError(t, err)
	require.Equal(t, `{"b":3,"a":2}`, string(b))

	var nilMap *OrderedMap
	b, err = json.Marshal(nilMap)
	require.NoError(t, err)
	require.Equal(t, "null", string(b))
}
