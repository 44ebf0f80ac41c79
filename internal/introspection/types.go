package introspection

import schema "github.com/hanpama/swgraph/internal/schema"

var (
	str     = schema.NamedType("String")
	boolean = schema.NamedType("Boolean")
)

func nonNull(name string) *schema.TypeRef { return schema.NonNullType(schema.NamedType(name)) }

func listOf(name string) *schema.TypeRef { return schema.ListType(nonNull(name)) }

func includeDeprecated() *schema.InputValue {
	return schema.NewInputValue("includeDeprecated", "", boolean).SetDefault(false)
}

// extend returns a copy of s whose query type also serves __schema and
// __type, plus the introspection types those fields return.
func extend(s *schema.Schema) *schema.Schema {
	out := &schema.Schema{
		QueryType:        s.QueryType,
		MutationType:     s.MutationType,
		SubscriptionType: s.SubscriptionType,
		Types:            make(map[string]*schema.Type, len(s.Types)+8),
		Directives:       s.Directives,
		Description:      s.Description,
	}
	for name, t := range s.Types {
		out.Types[name] = t
	}
	for _, t := range metaTypes() {
		out.AddType(t)
	}

	if q := s.GetQueryType(); q != nil {
		query := *q
		query.Fields = append(append([]*schema.Field{}, q.Fields...),
			schema.NewField("__schema", "Access the current type schema of this server.", nonNull("__Schema")),
			schema.NewField("__type", "Request the type information of a single type.", schema.NamedType("__Type")).
				AddArgument(schema.NewInputValue("name", "The name of the type to look up.", nonNull("String"))),
		)
		out.AddType(&query)
	}
	return out
}

func metaTypes() []*schema.Type {
	schemaType := schema.NewType("__Schema", schema.TypeKindObject,
		"A GraphQL Schema defines the capabilities of a GraphQL server.").
		AddField(schema.NewField("description", "", str)).
		AddField(schema.NewField("types", "A list of all types supported by this server.", schema.NonNullType(listOf("__Type")))).
		AddField(schema.NewField("queryType", "The type that query operations will be rooted at.", nonNull("__Type"))).
		AddField(schema.NewField("mutationType", "", schema.NamedType("__Type"))).
		AddField(schema.NewField("subscriptionType", "", schema.NamedType("__Type"))).
		AddField(schema.NewField("directives", "A list of all directives supported by this server.", schema.NonNullType(listOf("__Directive"))))

	typeType := schema.NewType("__Type", schema.TypeKindObject,
		"The fundamental unit of any GraphQL Schema is the type.").
		AddField(schema.NewField("kind", "", nonNull("__TypeKind"))).
		AddField(schema.NewField("name", "", str)).
		AddField(schema.NewField("description", "", str)).
		AddField(schema.NewField("specifiedByURL", "", str)).
		AddField(schema.NewField("fields", "", listOf("__Field")).AddArgument(includeDeprecated())).
		AddField(schema.NewField("interfaces", "", listOf("__Type"))).
		AddField(schema.NewField("possibleTypes", "", listOf("__Type"))).
		AddField(schema.NewField("enumValues", "", listOf("__EnumValue")).AddArgument(includeDeprecated())).
		AddField(schema.NewField("inputFields", "", listOf("__InputValue")).AddArgument(includeDeprecated())).
		AddField(schema.NewField("ofType", "", schema.NamedType("__Type"))).
		AddField(schema.NewField("isOneOf", "", boolean))

	fieldType := schema.NewType("__Field", schema.TypeKindObject, "").
		AddField(schema.NewField("name", "", nonNull("String"))).
		AddField(schema.NewField("description", "", str)).
		AddField(schema.NewField("args", "", schema.NonNullType(listOf("__InputValue"))).AddArgument(includeDeprecated())).
		AddField(schema.NewField("type", "", nonNull("__Type"))).
		AddField(schema.NewField("isDeprecated", "", nonNull("Boolean"))).
		AddField(schema.NewField("deprecationReason", "", str))

	inputValueType := schema.NewType("__InputValue", schema.TypeKindObject, "").
		AddField(schema.NewField("name", "", nonNull("String"))).
		AddField(schema.NewField("description", "", str)).
		AddField(schema.NewField("type", "", nonNull("__Type"))).
		AddField(schema.NewField("defaultValue", "", str)).
		AddField(schema.NewField("isDeprecated", "", nonNull("Boolean"))).
		AddField(schema.NewField("deprecationReason", "", str))

	enumValueType := schema.NewType("__EnumValue", schema.TypeKindObject, "").
		AddField(schema.NewField("name", "", nonNull("String"))).
		AddField(schema.NewField("description", "", str)).
		AddField(schema.NewField("isDeprecated", "", nonNull("Boolean"))).
		AddField(schema.NewField("deprecationReason", "", str))

	directiveType := schema.NewType("__Directive", schema.TypeKindObject, "").
		AddField(schema.NewField("name", "", nonNull("String"))).
		AddField(schema.NewField("description", "", str)).
		AddField(schema.NewField("isRepeatable", "", nonNull("Boolean"))).
		AddField(schema.NewField("locations", "", schema.NonNullType(listOf("__DirectiveLocation")))).
		AddField(schema.NewField("args", "", schema.NonNullType(listOf("__InputValue"))).AddArgument(includeDeprecated()))

	typeKind := enum("__TypeKind", typeKinds)
	directiveLocation := enum("__DirectiveLocation", directiveLocations)

	return []*schema.Type{
		schemaType, typeType, fieldType, inputValueType, enumValueType, directiveType,
		typeKind, directiveLocation,
	}
}

var typeKinds = []string{"SCALAR", "OBJECT", "INTERFACE", "UNION", "ENUM", "INPUT_OBJECT", "LIST", "NON_NULL"}

var directiveLocations = []string{
	"QUERY", "MUTATION", "SUBSCRIPTION", "FIELD", "FRAGMENT_DEFINITION", "FRAGMENT_SPREAD",
	"INLINE_FRAGMENT", "VARIABLE_DEFINITION", "SCHEMA", "SCALAR", "OBJECT", "FIELD_DEFINITION",
	"ARGUMENT_DEFINITION", "INTERFACE", "UNION", "ENUM", "ENUM_VALUE", "INPUT_OBJECT",
	"INPUT_FIELD_DEFINITION",
}

func enum(name string, values []string) *schema.Type {
	t := schema.NewType(name, schema.TypeKindEnum, "")
	for _, v := range values {
		t.AddEnumValue(schema.NewEnumValue(v, ""))
	}
	return t
}
