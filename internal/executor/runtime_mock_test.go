package executor

import (
	"context"
	"fmt"
	"sync"
	"testing"

	language "github.com/hanpama/swgraph/internal/language"
)

// MockResolver resolves a single item; MockRuntime adapts it for batched calls in tests.
type MockResolver func(ctx context.Context, source any, args map[string]any) (any, error)

const (
	CallKindSync  = "sync"
	CallKindAsync = "async"
)

func NewMockValueResolver(val any) MockResolver {
	return func(ctx context.Context, source any, args map[string]any) (any, error) {
		return val, nil
	}
}

func NewMockErrorResolver(err error) MockResolver {
	return func(ctx context.Context, source any, args map[string]any) (any, error) {
		return nil, err
	}
}

// Call is one task-level invocation. Async calls in the same flush share a BatchID.
type Call struct {
	Kind       string
	ObjectType string
	Field      string
	Args       map[string]any
	BatchID    int
}

// MockRuntime implements Runtime over a resolver registry keyed by
// "ObjectType.Field". Fields without a resolver read the same key from a
// map[string]any source.
type MockRuntime struct {
	mu        sync.Mutex
	resolvers map[string]MockResolver
	calls     []Call
	batchSeq  int
}

func NewMockRuntime(resolvers map[string]MockResolver) *MockRuntime {
	m := &MockRuntime{resolvers: make(map[string]MockResolver)}
	for k, v := range resolvers {
		m.resolvers[k] = v
	}
	return m
}

func (m *MockRuntime) resolve(ctx context.Context, objectType, field string, source any, args map[string]any) (any, error) {
	m.mu.Lock()
	r := m.resolvers[objectType+"."+field]
	m.mu.Unlock()
	if r != nil {
		return r(ctx, source, args)
	}
	if obj, ok := source.(map[string]any); ok {
		return obj[field], nil
	}
	return nil, nil
}

func (m *MockRuntime) ResolveSync(ctx context.Context, objectType string, field string, source any, args map[string]any) (any, error) {
	m.mu.Lock()
	m.calls = append(m.calls, Call{Kind: CallKindSync, ObjectType: objectType, Field: field, Args: args})
	m.mu.Unlock()
	return m.resolve(ctx, objectType, field, source, args)
}

func (m *MockRuntime) BatchResolveAsync(ctx context.Context, tasks []AsyncResolveTask) []AsyncResolveResult {
	m.mu.Lock()
	m.batchSeq++
	batchID := m.batchSeq
	for _, t := range tasks {
		m.calls = append(m.calls, Call{Kind: CallKindAsync, ObjectType: t.ObjectType, Field: t.Field, Args: t.Args, BatchID: batchID})
	}
	m.mu.Unlock()

	results := make([]AsyncResolveResult, len(tasks))
	for i, t := range tasks {
		val, err := m.resolve(ctx, t.ObjectType, t.Field, t.Source, t.Args)
		results[i] = AsyncResolveResult{Value: val, Error: err}
	}
	return results
}

func (m *MockRuntime) ResolveType(ctx context.Context, abstractType string, value any) (string, error) {
	if obj, ok := value.(map[string]any); ok {
		if typename, ok := obj["__typename"].(string); ok {
			return typename, nil
		}
	}
	return "", fmt.Errorf("cannot resolve type of %T for %s", value, abstractType)
}

func (m *MockRuntime) SerializeLeafValue(ctx context.Context, typeName string, value any) (any, error) {
	return value, nil
}

func (m *MockRuntime) GetCalls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

func (m *MockRuntime) BatchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.batchSeq
}

func mustParseQuery(t *testing.T, source string) *language.QueryDocument {
	t.Helper()
	doc, err := language.ParseQuery(source)
	if err != nil {
		t.Fatalf("parse %q: %v", source, err)
	}
	return doc
}
