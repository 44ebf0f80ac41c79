// Package redisrepo implements the character repositories on Redis.
//
// Each character is a JSON document under <prefix>droid:<id> or
// <prefix>human:<id>. The sets <prefix>droids and <prefix>humans index the
// ids for random picks.
package redisrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hanpama/swgraph/internal/starwars"
	"github.com/redis/go-redis/v9"
)

const (
	droidKeyPrefix = "droid:"
	humanKeyPrefix = "human:"
	droidSetKey    = "droids"
	humanSetKey    = "humans"
)

type Options struct {
	Addr     string
	Password string
	DB       int
	// Prefix namespaces every key, e.g. "swgraph:".
	Prefix string
}

// Store owns the Redis client shared by both repositories.
type Store struct {
	client redis.UniversalClient
	prefix string
}

func New(opt Options) *Store {
	client := redis.NewClient(&redis.Options{
		Addr:     opt.Addr,
		Password: opt.Password,
		DB:       opt.DB,
	})
	return NewWithClient(client, opt.Prefix)
}

// NewWithClient wraps an existing client. Close closes it.
func NewWithClient(client redis.UniversalClient, prefix string) *Store {
	return &Store{client: client, prefix: prefix}
}

func (s *Store) Close() error { return s.client.Close() }

// Ping checks that Redis is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (s *Store) Droids() *DroidRepository { return &DroidRepository{s: s} }

func (s *Store) Humans() *HumanRepository { return &HumanRepository{s: s} }

func (s *Store) key(ref starwars.CharacterRef) string {
	switch ref.Kind {
	case starwars.KindDroid:
		return s.prefix + droidKeyPrefix + ref.ID.String()
	default:
		return s.prefix + humanKeyPrefix + ref.ID.String()
	}
}

func (s *Store) setKey(kind starwars.Kind) string {
	if kind == starwars.KindDroid {
		return s.prefix + droidSetKey
	}
	return s.prefix + humanSetKey
}

// Seed writes droids and humans in one transaction, replacing existing
// documents with the same ids.
func (s *Store) Seed(ctx context.Context, droids []*starwars.Droid, humans []*starwars.Human) error {
	pipe := s.client.TxPipeline()
	for _, d := range droids {
		data, err := json.Marshal(d)
		if err != nil {
			return fmt.Errorf("failed to marshal droid %s: %w", d.ID, err)
		}
		pipe.Set(ctx, s.key(d.Ref()), data, 0)
		pipe.SAdd(ctx, s.setKey(starwars.KindDroid), d.ID.String())
	}
	for _, h := range humans {
		data, err := json.Marshal(h)
		if err != nil {
			return fmt.Errorf("failed to marshal human %s: %w", h.ID, err)
		}
		pipe.Set(ctx, s.key(h.Ref()), data, 0)
		pipe.SAdd(ctx, s.setKey(starwars.KindHuman), h.ID.String())
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to seed characters: %w", err)
	}
	return nil
}

func (s *Store) get(ctx context.Context, ref starwars.CharacterRef) (starwars.Character, error) {
	data, err := s.client.Get(ctx, s.key(ref)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, starwars.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get %s: %w", ref, err)
	}
	return decode(ref, data)
}

func (s *Store) random(ctx context.Context, kind starwars.Kind) (starwars.Character, error) {
	member, err := s.client.SRandMember(ctx, s.setKey(kind)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, starwars.ErrNotFound
		}
		return nil, fmt.Errorf("failed to pick random %s: %w", kind, err)
	}
	id, err := uuid.Parse(member)
	if err != nil {
		return nil, fmt.Errorf("corrupt %s index member %q: %w", kind, member, err)
	}
	return s.get(ctx, starwars.CharacterRef{Kind: kind, ID: id})
}

// resolve loads refs with one MGET, keeping their order and skipping
// documents that no longer exist.
func (s *Store) resolve(ctx context.Context, refs []starwars.CharacterRef) ([]starwars.Character, error) {
	out := make([]starwars.Character, 0, len(refs))
	if len(refs) == 0 {
		return out, ctx.Err()
	}
	keys := make([]string, len(refs))
	for i, ref := range refs {
		keys[i] = s.key(ref)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load friends: %w", err)
	}
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		c, err := decode(refs[i], []byte(raw))
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func decode(ref starwars.CharacterRef, data []byte) (starwars.Character, error) {
	var c starwars.Character
	switch ref.Kind {
	case starwars.KindDroid:
		c = &starwars.Droid{}
	case starwars.KindHuman:
		c = &starwars.Human{}
	default:
		return nil, fmt.Errorf("unknown character kind in %s", ref)
	}
	if err := json.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", ref, err)
	}
	return c, nil
}

type DroidRepository struct{ s *Store }

var _ starwars.DroidRepository = (*DroidRepository)(nil)

func (r *DroidRepository) GetDroid(ctx context.Context, id uuid.UUID) (*starwars.Droid, error) {
	c, err := r.s.get(ctx, starwars.CharacterRef{Kind: starwars.KindDroid, ID: id})
	if err != nil {
		return nil, err
	}
	return c.(*starwars.Droid), nil
}

func (r *DroidRepository) GetRandomDroid(ctx context.Context) (*starwars.Droid, error) {
	c, err := r.s.random(ctx, starwars.KindDroid)
	if err != nil {
		return nil, err
	}
	return c.(*starwars.Droid), nil
}

func (r *DroidRepository) GetFriends(ctx context.Context, droid *starwars.Droid) ([]starwars.Character, error) {
	return r.s.resolve(ctx, droid.Friends)
}

type HumanRepository struct{ s *Store }

var _ starwars.HumanRepository = (*HumanRepository)(nil)

func (r *HumanRepository) GetHuman(ctx context.Context, id uuid.UUID) (*starwars.Human, error) {
	c, err := r.s.get(ctx, starwars.CharacterRef{Kind: starwars.KindHuman, ID: id})
	if err != nil {
		return nil, err
	}
	return c.(*starwars.Human), nil
}

func (r *HumanRepository) GetRandomHuman(ctx context.Context) (*starwars.Human, error) {
	c, err := r.s.random(ctx, starwars.KindHuman)
	if err != nil {
		return nil, err
	}
	return c.(*starwars.Human), nil
}

func (r *HumanRepository) GetFriends(ctx context.Context, human *starwars.Human) ([]starwars.Character, error) {
	return r.s.resolve(ctx, human.Friends)
}
