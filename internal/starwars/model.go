package starwars

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Episode is one of the original trilogy films.
type Episode int

const (
	EpisodeNewHope Episode = iota + 4
	EpisodeEmpire
	EpisodeJedi
)

// Episodes lists every Episode in release order.
var Episodes = []Episode{EpisodeNewHope, EpisodeEmpire, EpisodeJedi}

var episodeNames = map[Episode]string{
	EpisodeNewHope: "NEWHOPE",
	EpisodeEmpire:  "EMPIRE",
	EpisodeJedi:    "JEDI",
}

var episodeDescriptions = map[Episode]string{
	EpisodeNewHope: "Star Wars Episode IV: A New Hope, released in 1977.",
	EpisodeEmpire:  "Star Wars Episode V: Empire Strikes Back, released in 1980.",
	EpisodeJedi:    "Star Wars Episode VI: Return of the Jedi, released in 1983.",
}

// String returns the GraphQL enum value name.
func (e Episode) String() string {
	if name, ok := episodeNames[e]; ok {
		return name
	}
	return fmt.Sprintf("Episode(%d)", int(e))
}

func ParseEpisode(s string) (Episode, error) {
	for ep, name := range episodeNames {
		if name == s {
			return ep, nil
		}
	}
	return 0, fmt.Errorf("unknown episode %q", s)
}

func (e Episode) MarshalText() ([]byte, error) {
	if _, ok := episodeNames[e]; !ok {
		return nil, fmt.Errorf("unknown episode %d", int(e))
	}
	return []byte(e.String()), nil
}

func (e *Episode) UnmarshalText(b []byte) error {
	ep, err := ParseEpisode(string(b))
	if err != nil {
		return err
	}
	*e = ep
	return nil
}

// Kind tags the concrete variant of a Character.
type Kind int

const (
	KindDroid Kind = iota + 1
	KindHuman
)

// String returns the GraphQL object type name of the variant.
func (k Kind) String() string {
	switch k {
	case KindDroid:
		return "Droid"
	case KindHuman:
		return "Human"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	switch k {
	case KindDroid, KindHuman:
		return []byte(k.String()), nil
	}
	return nil, fmt.Errorf("unknown kind %d", int(k))
}

func (k *Kind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "Droid":
		*k = KindDroid
	case "Human":
		*k = KindHuman
	default:
		return fmt.Errorf("unknown kind %q", string(b))
	}
	return nil
}

// CharacterRef points at a Character of a known variant. Friendships are
// stored as refs and resolved by the repositories.
type CharacterRef struct {
	Kind Kind      `json:"kind"`
	ID   uuid.UUID `json:"id"`
}

func (r CharacterRef) String() string { return r.Kind.String() + ":" + r.ID.String() }

// HasID is implemented by values with a stable identity.
type HasID interface {
	GetID() uuid.UUID
}

type HasName interface {
	GetName() string
}

type HasFriends interface {
	GetFriends() []CharacterRef
}

// Character is the closed set of Droid and Human.
type Character interface {
	HasID
	HasName
	HasFriends
	GetAppearsIn() []Episode
	Kind() Kind
}

var (
	_ Character = (*Droid)(nil)
	_ Character = (*Human)(nil)
)

type Droid struct {
	ID              uuid.UUID      `json:"id"`
	Name            string         `json:"name"`
	AppearsIn       []Episode      `json:"appearsIn"`
	PrimaryFunction *string        `json:"primaryFunction,omitempty"`
	ChargePeriod    time.Duration  `json:"chargePeriod"`
	Created         time.Time      `json:"created"`
	Friends         []CharacterRef `json:"friends"`
}

func (d *Droid) GetID() uuid.UUID           { return d.ID }
func (d *Droid) GetName() string            { return d.Name }
func (d *Droid) GetAppearsIn() []Episode    { return d.AppearsIn }
func (d *Droid) GetFriends() []CharacterRef { return d.Friends }
func (d *Droid) Kind() Kind                 { return KindDroid }

// Ref returns a reference to d.
func (d *Droid) Ref() CharacterRef { return CharacterRef{Kind: KindDroid, ID: d.ID} }

type Human struct {
	ID          uuid.UUID      `json:"id"`
	Name        string         `json:"name"`
	AppearsIn   []Episode      `json:"appearsIn"`
	DateOfBirth time.Time      `json:"dateOfBirth"`
	HomePlanet  *string        `json:"homePlanet,omitempty"`
	Friends     []CharacterRef `json:"friends"`
}

func (h *Human) GetID() uuid.UUID           { return h.ID }
func (h *Human) GetName() string            { return h.Name }
func (h *Human) GetAppearsIn() []Episode    { return h.AppearsIn }
func (h *Human) GetFriends() []CharacterRef { return h.Friends }
func (h *Human) Kind() Kind                 { return KindHuman }

func (h *Human) Ref() CharacterRef { return CharacterRef{Kind: KindHuman, ID: h.ID} }

// Info describes the service itself. It has no backing store.
type Info struct {
	ID          string
	Name        string
	Description string
}

// StaticInfo is returned by every info query.
var StaticInfo = Info{
	ID:          "ed7584-2124-98fs-00s3-t739478t",
	Name:        "maana.io.template",
	Description: "Dockerized ASP.NET Core GraphQL Template",
}
