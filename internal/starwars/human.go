package starwars

import (
	"context"

	schema "github.com/hanpama/swgraph/internal/schema"
)

// NewHumanDescriptor declares the Human type. Friends are fetched from repo.
func NewHumanDescriptor(repo HumanRepository) *ObjectDescriptor {
	return &ObjectDescriptor{
		Name:        "Human",
		Description: "A humanoid creature from the Star Wars universe.",
		Interfaces:  []string{"Character"},
		Fields: []*FieldDescriptor{
			idField("The unique identifier of the human."),
			nameField("The name of the human."),
			{
				Name:        "dateOfBirth",
				Description: "The date of birth of the human.",
				Type:        schema.NamedType("Date"),
				Resolve:     project(func(h *Human) any { return h.DateOfBirth }),
			},
			{
				Name:        "homePlanet",
				Description: "The home planet of the human.",
				Type:        schema.NamedType("String"),
				Resolve:     project(func(h *Human) any { return optional(h.HomePlanet) }),
			},
			appearsInField(),
			friendsField(func(ctx context.Context, h *Human) ([]Character, error) {
				return repo.GetFriends(ctx, h)
			}),
		},
	}
}
