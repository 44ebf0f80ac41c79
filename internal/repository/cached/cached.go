// Package cached puts a ristretto read-through cache in front of the
// character repositories.
//
// Characters are cached by id and friend lists by their parent. Absence is
// never cached. Every lookup publishes events.CacheLookup.
package cached

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/google/uuid"
	eventbus "github.com/hanpama/swgraph/internal/eventbus"
	events "github.com/hanpama/swgraph/internal/events"
	"github.com/hanpama/swgraph/internal/starwars"
)

type Options struct {
	NumCounters int64
	MaxCost     int64
	// TTL bounds staleness. Zero keeps entries until evicted.
	TTL time.Duration
}

// Cache is shared by the droid and human decorators so friend lists of
// either variant fill the same character entries.
type Cache struct {
	data *ristretto.Cache[string, any]
	ttl  time.Duration
}

func New(opt Options) (*Cache, error) {
	data, err := ristretto.NewCache(&ristretto.Config[string, any]{
		NumCounters: opt.NumCounters,
		MaxCost:     opt.MaxCost,
		BufferItems: 64,
		// every entry costs 1, so MaxCost is an entry count
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}
	return &Cache{data: data, ttl: opt.TTL}, nil
}

func (c *Cache) Close() { c.data.Close() }

func (c *Cache) Droids(inner starwars.DroidRepository) *DroidRepository {
	return &DroidRepository{c: c, inner: inner}
}

func (c *Cache) Humans(inner starwars.HumanRepository) *HumanRepository {
	return &HumanRepository{c: c, inner: inner}
}

func characterKey(ref starwars.CharacterRef) string { return ref.String() }

func friendsKey(ref starwars.CharacterRef) string { return "friends:" + ref.String() }

func (c *Cache) lookup(ctx context.Context, entity, key string) (any, bool) {
	v, ok := c.data.Get(key)
	eventbus.Publish(ctx, events.CacheLookup{Entity: entity, Hit: ok})
	return v, ok
}

func (c *Cache) store(key string, v any) { c.data.SetWithTTL(key, v, 1, c.ttl) }

func (c *Cache) storeCharacter(ch starwars.Character) {
	c.store(characterKey(starwars.CharacterRef{Kind: ch.Kind(), ID: ch.GetID()}), ch)
}

func (c *Cache) friends(ctx context.Context, parent starwars.CharacterRef, load func() ([]starwars.Character, error)) ([]starwars.Character, error) {
	if v, ok := c.lookup(ctx, "friends", friendsKey(parent)); ok {
		return v.([]starwars.Character), nil
	}
	friends, err := load()
	if err != nil {
		return nil, err
	}
	c.store(friendsKey(parent), friends)
	for _, f := range friends {
		c.storeCharacter(f)
	}
	return friends, nil
}

type DroidRepository struct {
	c     *Cache
	inner starwars.DroidRepository
}

var _ starwars.DroidRepository = (*DroidRepository)(nil)

func (r *DroidRepository) GetDroid(ctx context.Context, id uuid.UUID) (*starwars.Droid, error) {
	ref := starwars.CharacterRef{Kind: starwars.KindDroid, ID: id}
	if v, ok := r.c.lookup(ctx, "droid", characterKey(ref)); ok {
		return v.(*starwars.Droid), nil
	}
	d, err := r.inner.GetDroid(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, starwars.ErrNotFound
	}
	r.c.storeCharacter(d)
	return d, nil
}

// GetRandomDroid always asks the inner repository and caches the pick.
func (r *DroidRepository) GetRandomDroid(ctx context.Context) (*starwars.Droid, error) {
	d, err := r.inner.GetRandomDroid(ctx)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, starwars.ErrNotFound
	}
	r.c.storeCharacter(d)
	return d, nil
}

func (r *DroidRepository) GetFriends(ctx context.Context, droid *starwars.Droid) ([]starwars.Character, error) {
	return r.c.friends(ctx, droid.Ref(), func() ([]starwars.Character, error) {
		return r.inner.GetFriends(ctx, droid)
	})
}

type HumanRepository struct {
	c     *Cache
	inner starwars.HumanRepository
}

var _ starwars.HumanRepository = (*HumanRepository)(nil)

func (r *HumanRepository) GetHuman(ctx context.Context, id uuid.UUID) (*starwars.Human, error) {
	ref := starwars.CharacterRef{Kind: starwars.KindHuman, ID: id}
	if v, ok := r.c.lookup(ctx, "human", characterKey(ref)); ok {
		return v.(*starwars.Human), nil
	}
	h, err := r.inner.GetHuman(ctx, id)
	if err != nil {
		return nil, err
	}
	if h == nil {
		return nil, starwars.ErrNotFound
	}
	r.c.storeCharacter(h)
	return h, nil
}

func (r *HumanRepository) GetRandomHuman(ctx context.Context) (*starwars.Human, error) {
	h, err := r.inner.GetRandomHuman(ctx)
	if err != nil {
		return nil, err
	}
	if h == nil {
		return nil, starwars.ErrNotFound
	}
	r.c.storeCharacter(h)
	return h, nil
}

func (r *HumanRepository) GetFriends(ctx context.Context, human *starwars.Human) ([]starwars.Character, error) {
	return r.c.friends(ctx, human.Ref(), func() ([]starwars.Character, error) {
		return r.inner.GetFriends(ctx, human)
	})
}
