// Package seed holds the canonical characters every repository starts from.
package seed

import (
	"time"

	"github.com/google/uuid"
	"github.com/hanpama/swgraph/internal/starwars"
	"github.com/samber/lo"
)

var (
	R2D2  = uuid.MustParse(starwars.DefaultDroidID)
	C3PO  = uuid.MustParse("c2bbf949-764b-4d4f-bce6-0404211810fa")
	Luke  = uuid.MustParse(starwars.DefaultHumanID)
	Han   = uuid.MustParse("7f7bf389-2cfb-45f4-b91e-9d95441c1ecc")
	Leia  = uuid.MustParse("5d7b5a66-3a0a-4d42-8b9f-c1ea0e4a1f21")
	Vader = uuid.MustParse("2a0c1b33-ad44-4c55-a0e4-7c7e6d1f8b0a")
)

func trilogy() []starwars.Episode {
	return []starwars.Episode{starwars.EpisodeNewHope, starwars.EpisodeEmpire, starwars.EpisodeJedi}
}

func droid(id uuid.UUID) starwars.CharacterRef {
	return starwars.CharacterRef{Kind: starwars.KindDroid, ID: id}
}

func human(id uuid.UUID) starwars.CharacterRef {
	return starwars.CharacterRef{Kind: starwars.KindHuman, ID: id}
}

func date(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

// Droids returns fresh copies of the seeded droids.
func Droids() []*starwars.Droid {
	return []*starwars.Droid{
		{
			ID:              R2D2,
			Name:            "R2-D2",
			AppearsIn:       trilogy(),
			PrimaryFunction: lo.ToPtr("Astromech"),
			ChargePeriod:    30 * 24 * time.Hour,
			Created:         date(1977, time.May, 25),
			Friends:         []starwars.CharacterRef{human(Luke), human(Han), human(Leia), droid(C3PO)},
		},
		{
			ID:              C3PO,
			Name:            "C-3PO",
			AppearsIn:       trilogy(),
			PrimaryFunction: lo.ToPtr("Protocol"),
			ChargePeriod:    2 * 24 * time.Hour,
			Created:         date(1977, time.May, 25),
			Friends:         []starwars.CharacterRef{human(Luke), human(Han), human(Leia), droid(R2D2)},
		},
	}
}

// Humans returns fresh copies of the seeded humans.
func Humans() []*starwars.Human {
	return []*starwars.Human{
		{
			ID:          Luke,
			Name:        "Luke Skywalker",
			AppearsIn:   trilogy(),
			DateOfBirth: date(1951, time.September, 25),
			HomePlanet:  lo.ToPtr("Tatooine"),
			Friends:     []starwars.CharacterRef{human(Han), human(Leia), droid(C3PO), droid(R2D2)},
		},
		{
			ID:          Han,
			Name:        "Han Solo",
			AppearsIn:   trilogy(),
			DateOfBirth: date(1942, time.July, 13),
			Friends:     []starwars.CharacterRef{human(Luke), human(Leia), droid(R2D2)},
		},
		{
			ID:          Leia,
			Name:        "Leia Organa",
			AppearsIn:   trilogy(),
			DateOfBirth: date(1956, time.October, 21),
			HomePlanet:  lo.ToPtr("Alderaan"),
			Friends:     []starwars.CharacterRef{human(Luke), human(Han), droid(C3PO), droid(R2D2)},
		},
		{
			ID:          Vader,
			Name:        "Darth Vader",
			AppearsIn:   trilogy(),
			DateOfBirth: date(1931, time.January, 17),
			HomePlanet:  lo.ToPtr("Tatooine"),
			Friends:     []starwars.CharacterRef{},
		},
	}
}
