package starwars

import (
	"context"

	"github.com/google/uuid"
)

// DroidRepository fetches droids. GetDroid and GetRandomDroid report a
// missing droid with ErrNotFound. GetFriends returns friends in stored
// order, skipping refs that no longer resolve.
//
// Implementations must honour ctx and be safe for concurrent use.
type DroidRepository interface {
	GetDroid(ctx context.Context, id uuid.UUID) (*Droid, error)
	GetRandomDroid(ctx context.Context) (*Droid, error)
	GetFriends(ctx context.Context, droid *Droid) ([]Character, error)
}

// HumanRepository is the Human counterpart of DroidRepository.
type HumanRepository interface {
	GetHuman(ctx context.Context, id uuid.UUID) (*Human, error)
	GetRandomHuman(ctx context.Context) (*Human, error)
	GetFriends(ctx context.Context, human *Human) ([]Character, error)
}
