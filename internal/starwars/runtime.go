package starwars

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	eventbus "github.com/hanpama/swgraph/internal/eventbus"
	events "github.com/hanpama/swgraph/internal/events"
	"github.com/hanpama/swgraph/internal/executor"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds the fetches one batch runs at once.
const DefaultConcurrency = 16

// Runtime implements executor.Runtime over a Graph.
// Invariants and boundaries:
//   - Descriptor trust: every (objectType, field) the executor asks for exists
//     in the Graph. A missing descriptor is a programming error and panics.
//   - Binding: arguments are bound before the fetch runs. A binding failure
//     is returned for that task only.
//   - Absence: ErrNotFound from a repository resolves to null with no error.
//   - Concurrency: BatchResolveAsync runs the fetches of a batch in parallel,
//     bounded by the configured limit. Results preserve input order.
type Runtime struct {
	graph       *Graph
	concurrency int
	seq         atomic.Uint64
}

var _ executor.Runtime = (*Runtime)(nil)

type RuntimeOption func(*Runtime)

// WithConcurrency sets the per-batch fetch limit. n <= 0 removes the limit.
func WithConcurrency(n int) RuntimeOption { return func(r *Runtime) { r.concurrency = n } }

func NewRuntime(graph *Graph, opts ...RuntimeOption) *Runtime {
	r := &Runtime{graph: graph, concurrency: DefaultConcurrency}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveSync runs projections. It never performs I/O.
func (r *Runtime) ResolveSync(ctx context.Context, objectType string, field string, source any, args map[string]any) (any, error) {
	fd := r.graph.Field(objectType, field)
	if fd == nil || fd.Resolve == nil {
		panic(fmt.Sprintf("ResolveSync: no projection registered for %s.%s", objectType, field))
	}
	return fd.Resolve(source)
}

// BatchResolveAsync runs every fetch of one depth. Each task gets its own
// result; a failing task does not affect its siblings.
func (r *Runtime) BatchResolveAsync(ctx context.Context, tasks []executor.AsyncResolveTask) []executor.AsyncResolveResult {
	results := make([]executor.AsyncResolveResult, len(tasks))
	if len(tasks) == 0 {
		return results
	}
	if len(tasks) == 1 {
		results[0] = r.fetch(ctx, tasks[0])
		return results
	}

	var g errgroup.Group
	if r.concurrency > 0 {
		g.SetLimit(r.concurrency)
	}
	for i, t := range tasks {
		g.Go(func() error {
			results[i] = r.fetch(ctx, t)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (r *Runtime) fetch(ctx context.Context, t executor.AsyncResolveTask) executor.AsyncResolveResult {
	fd := r.graph.Field(t.ObjectType, t.Field)
	if fd == nil || fd.Fetch == nil {
		panic(fmt.Sprintf("BatchResolveAsync: no fetch registered for %s.%s", t.ObjectType, t.Field))
	}

	args, err := fd.BindArguments(t.ObjectType, t.Args)
	if err != nil {
		return executor.AsyncResolveResult{Error: err}
	}
	if err := ctx.Err(); err != nil {
		return executor.AsyncResolveResult{Error: err}
	}

	seq := r.seq.Add(1)
	start := time.Now()
	eventbus.Publish(ctx, events.ResolveStart{Seq: seq, ObjectType: t.ObjectType, Field: t.Field})

	value, err := fd.Fetch(ctx, t.Source, args)
	notFound := errors.Is(err, ErrNotFound)
	switch {
	case err == nil, notFound:
		err = nil
	case ctx.Err() != nil:
		// request ended; the executor drops the whole response
	default:
		err = &FetchError{Field: t.ObjectType + "." + t.Field, Err: err}
	}

	eventbus.Publish(ctx, events.ResolveFinish{
		Seq:        seq,
		ObjectType: t.ObjectType,
		Field:      t.Field,
		NotFound:   notFound,
		Err:        err,
		Duration:   time.Since(start),
	})
	if err != nil || notFound {
		return executor.AsyncResolveResult{Error: err}
	}
	return executor.AsyncResolveResult{Value: value}
}

// ResolveType dispatches on the variant tag.
func (r *Runtime) ResolveType(ctx context.Context, abstractType string, value any) (string, error) {
	c, ok := value.(Character)
	if !ok || isNilCharacter(c) {
		return "", fmt.Errorf("cannot resolve %s from %T", abstractType, value)
	}
	return c.Kind().String(), nil
}

func (r *Runtime) SerializeLeafValue(ctx context.Context, typeName string, value any) (any, error) {
	if typeName == "Episode" {
		return serializeEpisode(value)
	}
	sc := r.graph.scalars[typeName]
	if sc == nil {
		return nil, fmt.Errorf("unknown leaf type %s", typeName)
	}
	return sc.Serialize(value)
}

// NewExecutor returns an executor serving g.
func NewExecutor(g *Graph, opts ...RuntimeOption) *executor.Executor {
	return executor.NewExecutor(NewRuntime(g, opts...), g.Schema())
}
