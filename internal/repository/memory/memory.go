// Package memory implements the character repositories over in-process maps.
package memory

import (
	"context"
	"math/rand/v2"
	"sync"

	"github.com/google/uuid"
	"github.com/hanpama/swgraph/internal/repository/seed"
	"github.com/hanpama/swgraph/internal/starwars"
)

// Store holds droids and humans. Friend refs may point at either map, so
// both repositories share one Store.
type Store struct {
	mu       sync.RWMutex
	droids   map[uuid.UUID]*starwars.Droid
	humans   map[uuid.UUID]*starwars.Human
	droidIDs []uuid.UUID
	humanIDs []uuid.UUID
}

func New() *Store {
	return &Store{
		droids: make(map[uuid.UUID]*starwars.Droid),
		humans: make(map[uuid.UUID]*starwars.Human),
	}
}

// NewSeeded returns a Store holding the seed characters.
func NewSeeded() *Store {
	s := New()
	for _, d := range seed.Droids() {
		s.PutDroid(d)
	}
	for _, h := range seed.Humans() {
		s.PutHuman(h)
	}
	return s
}

// PutDroid inserts or replaces d. Stored values must not be mutated afterwards.
func (s *Store) PutDroid(d *starwars.Droid) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.droids[d.ID]; !ok {
		s.droidIDs = append(s.droidIDs, d.ID)
	}
	s.droids[d.ID] = d
}

func (s *Store) PutHuman(h *starwars.Human) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.humans[h.ID]; !ok {
		s.humanIDs = append(s.humanIDs, h.ID)
	}
	s.humans[h.ID] = h
}

func (s *Store) Droids() *DroidRepository { return &DroidRepository{s: s} }

func (s *Store) Humans() *HumanRepository { return &HumanRepository{s: s} }

// resolve looks refs up in order, skipping any that are gone.
func (s *Store) resolve(ctx context.Context, refs []starwars.CharacterRef) ([]starwars.Character, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]starwars.Character, 0, len(refs))
	for _, ref := range refs {
		switch ref.Kind {
		case starwars.KindDroid:
			if d, ok := s.droids[ref.ID]; ok {
				out = append(out, d)
			}
		case starwars.KindHuman:
			if h, ok := s.humans[ref.ID]; ok {
				out = append(out, h)
			}
		}
	}
	return out, nil
}

type DroidRepository struct{ s *Store }

var _ starwars.DroidRepository = (*DroidRepository)(nil)

func (r *DroidRepository) GetDroid(ctx context.Context, id uuid.UUID) (*starwars.Droid, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	d, ok := r.s.droids[id]
	if !ok {
		return nil, starwars.ErrNotFound
	}
	return d, nil
}

func (r *DroidRepository) GetRandomDroid(ctx context.Context) (*starwars.Droid, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if len(r.s.droidIDs) == 0 {
		return nil, starwars.ErrNotFound
	}
	return r.s.droids[r.s.droidIDs[rand.IntN(len(r.s.droidIDs))]], nil
}

func (r *DroidRepository) GetFriends(ctx context.Context, droid *starwars.Droid) ([]starwars.Character, error) {
	return r.s.resolve(ctx, droid.Friends)
}

type HumanRepository struct{ s *Store }

var _ starwars.HumanRepository = (*HumanRepository)(nil)

func (r *HumanRepository) GetHuman(ctx context.Context, id uuid.UUID) (*starwars.Human, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	h, ok := r.s.humans[id]
	if !ok {
		return nil, starwars.ErrNotFound
	}
	return h, nil
}

func (r *HumanRepository) GetRandomHuman(ctx context.Context) (*starwars.Human, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if len(r.s.humanIDs) == 0 {
		return nil, starwars.ErrNotFound
	}
	return r.s.humans[r.s.humanIDs[rand.IntN(len(r.s.humanIDs))]], nil
}

func (r *HumanRepository) GetFriends(ctx context.Context, human *starwars.Human) ([]starwars.Character, error) {
	return r.s.resolve(ctx, human.Friends)
}
