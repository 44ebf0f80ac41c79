// Package introspection serves __schema and __type on top of another
// executor.Runtime.
package introspection

import (
	"context"
	"fmt"
	"sort"

	executor "github.com/hanpama/swgraph/internal/executor"
	schema "github.com/hanpama/swgraph/internal/schema"
	"github.com/samber/lo"
)

// Runtime answers fields of the introspection types from the schema it was
// built with and hands everything else to the wrapped runtime.
type Runtime struct {
	base     executor.Runtime
	served   *schema.Schema
	extended *schema.Schema
}

var _ executor.Runtime = (*Runtime)(nil)

// Wrap returns a Runtime describing s. Execute against Runtime.Schema, which
// adds the introspection types and root fields to s.
func Wrap(base executor.Runtime, s *schema.Schema) *Runtime {
	return &Runtime{base: base, served: s, extended: extend(s)}
}

func (r *Runtime) Schema() *schema.Schema { return r.extended }

func (r *Runtime) ResolveSync(ctx context.Context, objectType, field string, source any, args map[string]any) (any, error) {
	switch objectType {
	case r.served.QueryType:
		switch field {
		case "__schema":
			return r.served, nil
		case "__type":
			name, _ := args["name"].(string)
			if t := r.lookup(name); t != nil {
				return t, nil
			}
			return nil, nil
		}
	case "__Schema":
		return r.schemaField(field)
	case "__Type":
		switch src := source.(type) {
		case *schema.Type:
			return r.typeField(src, field, args)
		case *schema.TypeRef:
			return r.wrapperField(src, field)
		}
	case "__Field":
		return r.fieldField(source.(*schema.Field), field, args)
	case "__InputValue":
		return r.inputValueField(source.(*schema.InputValue), field)
	case "__EnumValue":
		return enumValueField(source.(*schema.EnumValue), field)
	case "__Directive":
		return directiveField(source.(*schema.Directive), field, args)
	}
	return r.base.ResolveSync(ctx, objectType, field, source, args)
}

func (r *Runtime) BatchResolveAsync(ctx context.Context, tasks []executor.AsyncResolveTask) []executor.AsyncResolveResult {
	return r.base.BatchResolveAsync(ctx, tasks)
}

func (r *Runtime) ResolveType(ctx context.Context, abstractType string, value any) (string, error) {
	return r.base.ResolveType(ctx, abstractType, value)
}

func (r *Runtime) SerializeLeafValue(ctx context.Context, typeName string, value any) (any, error) {
	switch typeName {
	case "__TypeKind", "__DirectiveLocation":
		if s, ok := value.(string); ok {
			return s, nil
		}
		return nil, fmt.Errorf("%s cannot represent %T", typeName, value)
	}
	return r.base.SerializeLeafValue(ctx, typeName, value)
}

// typeOf turns a reference into an introspection source: named references
// become their definition, wrappers stay TypeRefs.
func (r *Runtime) typeOf(ref *schema.TypeRef) any {
	if ref == nil {
		return nil
	}
	if ref.Kind == schema.TypeRefKindNamed {
		if t := r.lookup(ref.Named); t != nil {
			return t
		}
		return nil
	}
	return ref
}

// lookup finds a type of the served schema or one of the introspection
// types. The query type is the served one, without __schema and __type.
func (r *Runtime) lookup(name string) *schema.Type {
	if t := r.served.Types[name]; t != nil {
		return t
	}
	return r.extended.Types[name]
}

func (r *Runtime) named(names []string) []*schema.Type {
	out := lo.FilterMap(names, func(name string, _ int) (*schema.Type, bool) {
		t := r.lookup(name)
		return t, t != nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *Runtime) schemaField(field string) (any, error) {
	s := r.served
	switch field {
	case "description":
		return optional(s.Description), nil
	case "types":
		return r.named(lo.Keys(r.extended.Types)), nil
	case "queryType":
		return s.GetQueryType(), nil
	case "mutationType":
		return s.GetMutationType(), nil
	case "subscriptionType":
		return s.GetSubscriptionType(), nil
	case "directives":
		dirs := lo.Values(s.Directives)
		sort.Slice(dirs, func(i, j int) bool { return dirs[i].Name < dirs[j].Name })
		return dirs, nil
	}
	return nil, fmt.Errorf("unknown field __Schema.%s", field)
}

func (r *Runtime) typeField(t *schema.Type, field string, args map[string]any) (any, error) {
	hasFields := t.Kind == schema.TypeKindObject || t.Kind == schema.TypeKindInterface
	switch field {
	case "kind":
		return string(t.Kind), nil
	case "name":
		return t.Name, nil
	case "description":
		return optional(t.Description), nil
	case "specifiedByURL":
		if t.SpecifiedByURL == nil {
			return nil, nil
		}
		return *t.SpecifiedByURL, nil
	case "fields":
		if !hasFields {
			return nil, nil
		}
		return visible(t.Fields, args, func(f *schema.Field) bool { return f.IsDeprecated }), nil
	case "interfaces":
		if !hasFields {
			return nil, nil
		}
		return r.named(t.Interfaces), nil
	case "possibleTypes":
		if t.Kind != schema.TypeKindInterface && t.Kind != schema.TypeKindUnion {
			return nil, nil
		}
		return r.named(t.PossibleTypes), nil
	case "enumValues":
		if t.Kind != schema.TypeKindEnum {
			return nil, nil
		}
		return visible(t.EnumValues, args, func(v *schema.EnumValue) bool { return v.IsDeprecated }), nil
	case "inputFields":
		if t.Kind != schema.TypeKindInputObject {
			return nil, nil
		}
		return visible(t.InputFields, args, func(v *schema.InputValue) bool { return v.IsDeprecated }), nil
	case "ofType":
		return nil, nil
	case "isOneOf":
		if t.Kind != schema.TypeKindInputObject {
			return nil, nil
		}
		return t.OneOf, nil
	}
	return nil, fmt.Errorf("unknown field __Type.%s", field)
}

// wrapperField resolves __Type fields of LIST and NON_NULL wrappers.
func (r *Runtime) wrapperField(ref *schema.TypeRef, field string) (any, error) {
	switch field {
	case "kind":
		return string(ref.Kind), nil
	case "ofType":
		return r.typeOf(ref.OfType), nil
	}
	return nil, nil
}

func (r *Runtime) fieldField(f *schema.Field, field string, args map[string]any) (any, error) {
	switch field {
	case "name":
		return f.Name, nil
	case "description":
		return optional(f.Description), nil
	case "args":
		return visible(f.Arguments, args, func(v *schema.InputValue) bool { return v.IsDeprecated }), nil
	case "type":
		return r.typeOf(f.Type), nil
	case "isDeprecated":
		return f.IsDeprecated, nil
	case "deprecationReason":
		return deprecationReason(f.IsDeprecated, f.DeprecationReason), nil
	}
	return nil, fmt.Errorf("unknown field __Field.%s", field)
}

func (r *Runtime) inputValueField(v *schema.InputValue, field string) (any, error) {
	switch field {
	case "name":
		return v.Name, nil
	case "description":
		return optional(v.Description), nil
	case "type":
		return r.typeOf(v.Type), nil
	case "defaultValue":
		if v.DefaultValue == nil {
			return nil, nil
		}
		return schema.RenderValue(v.DefaultValue), nil
	case "isDeprecated":
		return v.IsDeprecated, nil
	case "deprecationReason":
		return deprecationReason(v.IsDeprecated, v.DeprecationReason), nil
	}
	return nil, fmt.Errorf("unknown field __InputValue.%s", field)
}

func enumValueField(v *schema.EnumValue, field string) (any, error) {
	switch field {
	case "name":
		return v.Name, nil
	case "description":
		return optional(v.Description), nil
	case "isDeprecated":
		return v.IsDeprecated, nil
	case "deprecationReason":
		return deprecationReason(v.IsDeprecated, v.DeprecationReason), nil
	}
	return nil, fmt.Errorf("unknown field __EnumValue.%s", field)
}

func directiveField(d *schema.Directive, field string, args map[string]any) (any, error) {
	switch field {
	case "name":
		return d.Name, nil
	case "description":
		return optional(d.Description), nil
	case "isRepeatable":
		return d.IsRepeatable, nil
	case "locations":
		return d.Locations, nil
	case "args":
		return visible(d.Arguments, args, func(v *schema.InputValue) bool { return v.IsDeprecated }), nil
	}
	return nil, fmt.Errorf("unknown field __Directive.%s", field)
}

// visible drops deprecated entries unless includeDeprecated is true. It
// keeps declaration order.
func visible[T any](items []T, args map[string]any, deprecated func(T) bool) []T {
	include, _ := args["includeDeprecated"].(bool)
	return lo.Filter(items, func(item T, _ int) bool { return include || !deprecated(item) })
}

func deprecationReason(deprecated bool, reason string) any {
	if !deprecated {
		return nil
	}
	return reason
}

func optional(s string) any {
	if s == "" {
		return nil
	}
	return s
}
