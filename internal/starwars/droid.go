package starwars

import (
	"context"

	schema "github.com/hanpama/swgraph/internal/schema"
)

// NewDroidDescriptor declares the Droid type. Friends are fetched from repo.
func NewDroidDescriptor(repo DroidRepository) *ObjectDescriptor {
	return &ObjectDescriptor{
		Name:        "Droid",
		Description: "A mechanical creature in the Star Wars universe.",
		Interfaces:  []string{"Character"},
		Fields: []*FieldDescriptor{
			idField("The unique identifier of the droid."),
			nameField("The name of the droid."),
			{
				Name:        "primaryFunction",
				Description: "The primary function of the droid.",
				Type:        schema.NamedType("String"),
				Resolve:     project(func(d *Droid) any { return optional(d.PrimaryFunction) }),
			},
			{
				Name:        "chargePeriod",
				Description: "How long the droid runs on a full charge.",
				Type:        schema.NamedType("Duration"),
				Resolve:     project(func(d *Droid) any { return d.ChargePeriod }),
			},
			{
				Name:        "created",
				Description: "When the droid was manufactured.",
				Type:        schema.NamedType("DateTime"),
				Resolve:     project(func(d *Droid) any { return d.Created }),
			},
			appearsInField(),
			friendsField(func(ctx context.Context, d *Droid) ([]Character, error) {
				return repo.GetFriends(ctx, d)
			}),
		},
	}
}
