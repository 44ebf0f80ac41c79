package starwars

import (
	schema "github.com/hanpama/swgraph/internal/schema"
	"github.com/samber/lo"
)

// Graph is the full set of descriptors served by one Runtime.
type Graph struct {
	Query      *ObjectDescriptor
	Objects    []*ObjectDescriptor
	Interfaces []*InterfaceDescriptor
	Scalars    []*ScalarDescriptor

	objects map[string]*ObjectDescriptor
	scalars map[string]*ScalarDescriptor
}

// NewGraph wires the descriptors to the given repositories.
func NewGraph(droids DroidRepository, humans HumanRepository) *Graph {
	g := &Graph{
		Query: NewQueryDescriptor(droids, humans),
		Objects: []*ObjectDescriptor{
			NewDroidDescriptor(droids),
			NewHumanDescriptor(humans),
			NewInfoDescriptor(),
		},
		Interfaces: []*InterfaceDescriptor{NewCharacterDescriptor()},
		Scalars:    append(append([]*ScalarDescriptor{}, builtinScalars...), customScalars...),
	}
	g.objects = lo.KeyBy(append([]*ObjectDescriptor{g.Query}, g.Objects...), func(o *ObjectDescriptor) string { return o.Name })
	g.scalars = lo.KeyBy(g.Scalars, func(s *ScalarDescriptor) string { return s.Name })
	return g
}

func (g *Graph) Object(name string) *ObjectDescriptor { return g.objects[name] }

// Field returns the descriptor of objectType.field, or nil.
func (g *Graph) Field(objectType, field string) *FieldDescriptor {
	o := g.objects[objectType]
	if o == nil {
		return nil
	}
	return o.Field(field)
}

// Schema builds the executable schema. Each call returns a fresh value.
func (g *Graph) Schema() *schema.Schema {
	s := schema.NewSchema("").SetQueryType(g.Query.Name)
	s.AddType(g.Query.schemaType())
	for _, o := range g.Objects {
		s.AddType(o.schemaType())
	}
	for _, i := range g.Interfaces {
		implementors := lo.FilterMap(g.Objects, func(o *ObjectDescriptor, _ int) (string, bool) {
			return o.Name, lo.Contains(o.Interfaces, i.Name)
		})
		s.AddType(i.schemaType(implementors))
	}

	episode := schema.NewType("Episode", schema.TypeKindEnum, "One of the films in the Star Wars Trilogy.")
	for _, ep := range Episodes {
		episode.AddEnumValue(schema.NewEnumValue(ep.String(), episodeDescriptions[ep]))
	}
	s.AddType(episode)

	for _, sc := range g.Scalars {
		if sc.builtin {
			continue
		}
		s.AddType(schema.NewType(sc.Name, schema.TypeKindScalar, sc.Description))
	}
	return s
}

// SDL renders the schema in GraphQL schema definition language.
func (g *Graph) SDL() string { return schema.Render(g.Schema()) }
