package starwars

import (
	"context"
	"errors"

	schema "github.com/hanpama/swgraph/internal/schema"
	"github.com/samber/lo"
)

// NewCharacterDescriptor declares the Character interface shared by Droid
// and Human.
func NewCharacterDescriptor() *InterfaceDescriptor {
	return &InterfaceDescriptor{
		Name:        "Character",
		Description: "A character in the Star Wars universe.",
		Fields: []*FieldDescriptor{
			{Name: "id", Description: "The unique identifier of the character.", Type: schema.NonNullType(schema.NamedType("ID"))},
			{Name: "name", Description: "The name of the character.", Type: schema.NamedType("String")},
			{Name: "appearsIn", Description: "Which movie they appear in.", Type: schema.ListType(schema.NamedType("Episode"))},
			{Name: "friends", Description: friendsDescription, Type: schema.ListType(schema.NamedType("Character"))},
		},
	}
}

const friendsDescription = "The friends of the character, or an empty list if they have none."

func idField(description string) *FieldDescriptor {
	return &FieldDescriptor{
		Name:        "id",
		Description: description,
		Type:        schema.NonNullType(schema.NamedType("ID")),
		Resolve:     project(func(c HasID) any { return c.GetID() }),
	}
}

func nameField(description string) *FieldDescriptor {
	return &FieldDescriptor{
		Name:        "name",
		Description: description,
		Type:        schema.NamedType("String"),
		Resolve:     project(func(c HasName) any { return c.GetName() }),
	}
}

func appearsInField() *FieldDescriptor {
	return &FieldDescriptor{
		Name:        "appearsIn",
		Description: "Which movie they appear in.",
		Type:        schema.ListType(schema.NamedType("Episode")),
		Resolve: project(func(c Character) any {
			return lo.Ternary(c.GetAppearsIn() == nil, []Episode{}, c.GetAppearsIn())
		}),
	}
}

// friendsField fetches friends through the repository that owns the parent
// variant. A parent that vanished between fetches has no friends.
func friendsField[T Character](fetch func(ctx context.Context, parent T) ([]Character, error)) *FieldDescriptor {
	return &FieldDescriptor{
		Name:        "friends",
		Description: friendsDescription,
		Type:        schema.ListType(schema.NamedType("Character")),
		Fetch: func(ctx context.Context, source any, _ Args) (any, error) {
			parent, ok := source.(T)
			if !ok {
				return nil, errors.New("friends: unexpected parent type")
			}
			friends, err := fetch(ctx, parent)
			if errors.Is(err, ErrNotFound) {
				return []Character{}, nil
			}
			if err != nil {
				return nil, err
			}
			return lo.Filter(friends, func(c Character, _ int) bool { return !isNilCharacter(c) }), nil
		},
	}
}

func isNilCharacter(c Character) bool {
	switch v := c.(type) {
	case nil:
		return true
	case *Droid:
		return v == nil
	case *Human:
		return v == nil
	}
	return false
}
