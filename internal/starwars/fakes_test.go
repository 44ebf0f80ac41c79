package starwars

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hanpama/swgraph/internal/executor"
	language "github.com/hanpama/swgraph/internal/language"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

var (
	r2ID   = uuid.MustParse(DefaultDroidID)
	c3poID = uuid.MustParse("c2bbf949-764b-4d4f-bce6-0404211810fa")
	lukeID = uuid.MustParse(DefaultHumanID)
)

// world backs both fake repositories so friend refs can cross variants.
type world struct {
	mu        sync.Mutex
	droids    map[uuid.UUID]*Droid
	humans    map[uuid.UUID]*Human
	requested []uuid.UUID
	fetches   int

	// friend lookups per repository
	droidFriendCalls int
	humanFriendCalls int

	// fail is returned by every fetch when set.
	fail error
	// block makes fetches wait for ctx; started is closed by the first one.
	block    bool
	started  chan struct{}
	once     sync.Once
	observed error
}

func newWorld() *world {
	r2 := &Droid{
		ID:              r2ID,
		Name:            "R2-D2",
		AppearsIn:       []Episode{EpisodeNewHope, EpisodeEmpire, EpisodeJedi},
		PrimaryFunction: lo.ToPtr("Astromech"),
		ChargePeriod:    720 * time.Hour,
		Created:         time.Date(1977, time.May, 25, 0, 0, 0, 0, time.UTC),
		Friends: []CharacterRef{
			{Kind: KindHuman, ID: lukeID},
			{Kind: KindDroid, ID: c3poID},
		},
	}
	c3po := &Droid{ID: c3poID, Name: "C-3PO"}
	luke := &Human{
		ID:          lukeID,
		Name:        "Luke Skywalker",
		AppearsIn:   []Episode{EpisodeNewHope},
		DateOfBirth: time.Date(1951, time.September, 25, 0, 0, 0, 0, time.UTC),
		HomePlanet:  lo.ToPtr("Tatooine"),
		Friends:     []CharacterRef{{Kind: KindDroid, ID: r2ID}},
	}
	return &world{
		droids:  map[uuid.UUID]*Droid{r2ID: r2, c3poID: c3po},
		humans:  map[uuid.UUID]*Human{lukeID: luke},
		started: make(chan struct{}),
	}
}

func (w *world) enter(ctx context.Context, id uuid.UUID) error {
	w.mu.Lock()
	w.fetches++
	if id != uuid.Nil {
		w.requested = append(w.requested, id)
	}
	fail, block := w.fail, w.block
	w.mu.Unlock()

	if fail != nil {
		return fail
	}
	if block {
		w.once.Do(func() { close(w.started) })
		<-ctx.Done()
		w.mu.Lock()
		w.observed = ctx.Err()
		w.mu.Unlock()
		return ctx.Err()
	}
	return nil
}

func (w *world) friends(ctx context.Context, refs []CharacterRef) ([]Character, error) {
	if err := w.enter(ctx, uuid.Nil); err != nil {
		return nil, err
	}
	var out []Character
	for _, ref := range refs {
		switch ref.Kind {
		case KindDroid:
			if d, ok := w.droids[ref.ID]; ok {
				out = append(out, d)
			}
		case KindHuman:
			if h, ok := w.humans[ref.ID]; ok {
				out = append(out, h)
			}
		}
	}
	return out, nil
}

type fakeDroids struct{ w *world }

func (f fakeDroids) GetDroid(ctx context.Context, id uuid.UUID) (*Droid, error) {
	if err := f.w.enter(ctx, id); err != nil {
		return nil, err
	}
	if d, ok := f.w.droids[id]; ok {
		return d, nil
	}
	return nil, ErrNotFound
}

func (f fakeDroids) GetRandomDroid(ctx context.Context) (*Droid, error) {
	if err := f.w.enter(ctx, uuid.Nil); err != nil {
		return nil, err
	}
	return f.w.droids[r2ID], nil
}

func (f fakeDroids) GetFriends(ctx context.Context, d *Droid) ([]Character, error) {
	f.w.mu.Lock()
	f.w.droidFriendCalls++
	f.w.mu.Unlock()
	return f.w.friends(ctx, d.Friends)
}

type fakeHumans struct{ w *world }

func (f fakeHumans) GetHuman(ctx context.Context, id uuid.UUID) (*Human, error) {
	if err := f.w.enter(ctx, id); err != nil {
		return nil, err
	}
	if h, ok := f.w.humans[id]; ok {
		return h, nil
	}
	return nil, ErrNotFound
}

func (f fakeHumans) GetRandomHuman(ctx context.Context) (*Human, error) {
	if err := f.w.enter(ctx, uuid.Nil); err != nil {
		return nil, err
	}
	return f.w.humans[lukeID], nil
}

func (f fakeHumans) GetFriends(ctx context.Context, h *Human) ([]Character, error) {
	f.w.mu.Lock()
	f.w.humanFriendCalls++
	f.w.mu.Unlock()
	return f.w.friends(ctx, h.Friends)
}

func newTestGraph(w *world) *Graph { return NewGraph(fakeDroids{w}, fakeHumans{w}) }

// run validates query against the rendered schema and executes it.
func run(t *testing.T, ctx context.Context, w *world, query string) *executor.ExecutionResult {
	t.Helper()
	g := newTestGraph(w)
	sch, err := language.LoadSchema("starwars.graphql", g.SDL())
	require.NoError(t, err)
	doc, errs := language.LoadQuery(sch, query)
	require.Empty(t, errs)
	return NewExecutor(g).ExecuteRequest(ctx, doc, "", nil, nil)
}
