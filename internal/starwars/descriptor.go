package starwars

import (
	"context"
	"fmt"
	"reflect"

	"github.com/google/uuid"
	schema "github.com/hanpama/swgraph/internal/schema"
	"github.com/samber/lo"
)

// Args holds bound argument values keyed by argument name.
type Args map[string]any

// UUID returns the bound uuid argument, or uuid.Nil.
func (a Args) UUID(name string) uuid.UUID {
	id, _ := a[name].(uuid.UUID)
	return id
}

// Binder converts a raw argument value into the type a fetch expects.
type Binder func(raw any) (any, error)

// BindUUID accepts the string form of a UUID.
func BindUUID(raw any) (any, error) {
	switch v := raw.(type) {
	case uuid.UUID:
		return v, nil
	case string:
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, err
		}
		return id, nil
	default:
		return nil, fmt.Errorf("expected string, got %T", raw)
	}
}

// ArgumentDescriptor declares one field argument. Default is used when the
// caller omits the argument and is published as the schema default.
type ArgumentDescriptor struct {
	Name        string
	Description string
	Type        *schema.TypeRef
	Default     any
	Bind        Binder
}

// ResolveFunc projects a field from its parent without I/O.
type ResolveFunc func(source any) (any, error)

// FetchFunc loads a field from a repository.
type FetchFunc func(ctx context.Context, source any, args Args) (any, error)

// FieldDescriptor declares one field. Exactly one of Resolve and Fetch is
// set; Fetch fields are batched by the executor.
type FieldDescriptor struct {
	Name        string
	Description string
	Type        *schema.TypeRef
	Arguments   []*ArgumentDescriptor
	Resolve     ResolveFunc
	Fetch       FetchFunc
}

func (f *FieldDescriptor) Async() bool { return f.Fetch != nil }

// BindArguments substitutes defaults for omitted arguments and runs each
// binder. The first failure is returned as an *ArgumentBindingError.
func (f *FieldDescriptor) BindArguments(objectType string, raw map[string]any) (Args, error) {
	args := make(Args, len(f.Arguments))
	for _, a := range f.Arguments {
		v, ok := raw[a.Name]
		if !ok || v == nil {
			v = a.Default
		}
		if v == nil {
			continue
		}
		if a.Bind != nil {
			bound, err := a.Bind(v)
			if err != nil {
				return nil, &ArgumentBindingError{Field: objectType + "." + f.Name, Argument: a.Name, Value: v, Err: err}
			}
			v = bound
		}
		args[a.Name] = v
	}
	return args, nil
}

func (f *FieldDescriptor) schemaField() *schema.Field {
	sf := schema.NewField(f.Name, f.Description, f.Type).SetAsync(f.Async())
	for _, a := range f.Arguments {
		iv := schema.NewInputValue(a.Name, a.Description, a.Type)
		if a.Default != nil {
			iv.SetDefault(a.Default)
		}
		sf.AddArgument(iv)
	}
	return sf
}

// ObjectDescriptor declares an object type and the fields it exposes.
type ObjectDescriptor struct {
	Name        string
	Description string
	Interfaces  []string
	Fields      []*FieldDescriptor
}

func (o *ObjectDescriptor) Field(name string) *FieldDescriptor {
	f, _ := lo.Find(o.Fields, func(f *FieldDescriptor) bool { return f.Name == name })
	return f
}

func (o *ObjectDescriptor) schemaType() *schema.Type {
	t := schema.NewType(o.Name, schema.TypeKindObject, o.Description)
	for _, iface := range o.Interfaces {
		t.AddInterface(iface)
	}
	for _, f := range o.Fields {
		t.AddField(f.schemaField())
	}
	return t
}

// InterfaceDescriptor declares an abstract type. Its fields carry no
// resolvers; values are dispatched to the implementing object first.
type InterfaceDescriptor struct {
	Name        string
	Description string
	Fields      []*FieldDescriptor
}

func (i *InterfaceDescriptor) schemaType(possibleTypes []string) *schema.Type {
	t := schema.NewType(i.Name, schema.TypeKindInterface, i.Description)
	for _, f := range i.Fields {
		t.AddField(f.schemaField())
	}
	for _, name := range possibleTypes {
		t.AddPossibleType(name)
	}
	return t
}

// project adapts a typed projection into a ResolveFunc.
func project[T any](fn func(T) any) ResolveFunc {
	return func(source any) (any, error) {
		v, ok := source.(T)
		if !ok {
			return nil, fmt.Errorf("expected %v source, got %T", reflect.TypeFor[T](), source)
		}
		return fn(v), nil
	}
}

// optional turns a nil pointer into an untyped nil.
func optional[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

// entity turns a repository result into a field value without leaking
// typed nils.
func entity[T any](v *T, err error) (any, error) {
	if err != nil || v == nil {
		return nil, err
	}
	return v, nil
}
