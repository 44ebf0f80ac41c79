package starwars

import (
	"context"

	schema "github.com/hanpama/swgraph/internal/schema"
)

// Ids used when droid or human is queried without an id.
const (
	DefaultDroidID = "1ae34c3b-c1a0-4b7b-9375-c5a221d49e68"
	DefaultHumanID = "94fbd693-2027-4804-bf40-ed427fe76fda"
)

// NewQueryDescriptor declares the root Query type.
//
// The id arguments are non-null but carry a default, so omitting them
// fetches the default character instead of failing validation.
func NewQueryDescriptor(droids DroidRepository, humans HumanRepository) *ObjectDescriptor {
	return &ObjectDescriptor{
		Name:        "Query",
		Description: "The query type, represents all of the entry points into our object graph.",
		Fields: []*FieldDescriptor{
			{
				Name:        "droid",
				Description: "Get a droid by its unique identifier.",
				Type:        schema.NamedType("Droid"),
				Arguments: []*ArgumentDescriptor{{
					Name:        "id",
					Description: "The unique identifier of the droid.",
					Type:        schema.NonNullType(schema.NamedType("ID")),
					Default:     DefaultDroidID,
					Bind:        BindUUID,
				}},
				Fetch: func(ctx context.Context, _ any, args Args) (any, error) {
					return entity(droids.GetDroid(ctx, args.UUID("id")))
				},
			},
			{
				Name:        "randomDroid",
				Description: "Get a random droid from the database.",
				Type:        schema.NamedType("Droid"),
				Fetch: func(ctx context.Context, _ any, _ Args) (any, error) {
					return entity(droids.GetRandomDroid(ctx))
				},
			},
			{
				Name:        "human",
				Description: "Get a human by its unique identifier.",
				Type:        schema.NamedType("Human"),
				Arguments: []*ArgumentDescriptor{{
					Name:        "id",
					Description: "The unique identifier of the human.",
					Type:        schema.NonNullType(schema.NamedType("ID")),
					Default:     DefaultHumanID,
					Bind:        BindUUID,
				}},
				Fetch: func(ctx context.Context, _ any, args Args) (any, error) {
					return entity(humans.GetHuman(ctx, args.UUID("id")))
				},
			},
			{
				Name:        "randomHuman",
				Description: "Get a random human from the database.",
				Type:        schema.NamedType("Human"),
				Fetch: func(ctx context.Context, _ any, _ Args) (any, error) {
					return entity(humans.GetRandomHuman(ctx))
				},
			},
			{
				Name:        "info",
				Description: "Static information about this service.",
				Type:        schema.NonNullType(schema.NamedType("Info")),
				Resolve:     func(any) (any, error) { return StaticInfo, nil },
			},
		},
	}
}

func NewInfoDescriptor() *ObjectDescriptor {
	return &ObjectDescriptor{
		Name: "Info",
		Fields: []*FieldDescriptor{
			{Name: "id", Type: schema.NonNullType(schema.NamedType("ID")), Resolve: project(func(i Info) any { return i.ID })},
			{Name: "name", Type: schema.NamedType("String"), Resolve: project(func(i Info) any { return i.Name })},
			{Name: "description", Type: schema.NamedType("String"), Resolve: project(func(i Info) any { return i.Description })},
		},
	}
}
