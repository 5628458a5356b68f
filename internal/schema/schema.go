package schema

import (
	"context"
	"sort"
	"sync"
)

// Schema is the registry of named types plus the names of the root operation types.
// It is built once at startup and read concurrently afterwards.
type Schema struct {
	QueryType    string
	MutationType string
	Types        map[string]*Type // All named types keyed by name
	Description  string
}

// NewSchema returns an empty schema.
func NewSchema(description string) *Schema {
	return &Schema{Types: make(map[string]*Type), Description: description}
}

func (s *Schema) SetQueryType(name string) *Schema    { s.QueryType = name; return s }
func (s *Schema) SetMutationType(name string) *Schema { s.MutationType = name; return s }

// AddType registers t under its name, replacing any previous type of that name.
func (s *Schema) AddType(t *Type) *Schema {
	s.Types[t.Name] = t
	return s
}

// GetQueryType returns the root query type (may be nil if absent)
func (s *Schema) GetQueryType() *Type { return s.Types[s.QueryType] }

// GetMutationType returns the root mutation type (may be nil if absent)
func (s *Schema) GetMutationType() *Type { return s.Types[s.MutationType] }

// TypeOf returns the named result type of f, looked up at call time.
func (s *Schema) TypeOf(f *Field) *Type {
	if f == nil {
		return nil
	}
	return s.Types[f.Type]
}

// IsComposite reports whether selecting f requires a sub-selection.
func (s *Schema) IsComposite(f *Field) bool {
	t := s.TypeOf(f)
	return t != nil && t.Kind == TypeKindObject
}

// TypeNames returns all type names sorted lexicographically.
func (s *Schema) TypeNames() []string {
	names := make([]string, 0, len(s.Types))
	for name := range s.Types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TypeKind represents the kind of a named type
type TypeKind string

const (
	TypeKindScalar TypeKind = "SCALAR"
	TypeKindObject TypeKind = "OBJECT"
)

// FieldsThunk produces the fields of an object type. It is evaluated lazily, the
// first time the fields are needed, so that mutually referencing types can be
// declared in any order.
type FieldsThunk func() []*Field

// SerializeFunc converts a resolved leaf value into a JSON-safe Go value.
type SerializeFunc func(value any) (any, error)

// Type is a named object or scalar type.
type Type struct {
	Name        string
	Kind        TypeKind
	Description string
	// Serialize is set for scalar types.
	Serialize SerializeFunc

	thunk  FieldsThunk
	once   sync.Once
	fields []*Field
	index  map[string]*Field
}

// NewObjectType declares an object type whose fields are produced by thunk.
func NewObjectType(name, description string, thunk FieldsThunk) *Type {
	return &Type{Name: name, Kind: TypeKindObject, Description: description, thunk: thunk}
}

// NewScalarType declares a leaf type.
func NewScalarType(name, description string, serialize SerializeFunc) *Type {
	return &Type{Name: name, Kind: TypeKindScalar, Description: description, Serialize: serialize}
}

func (t *Type) load() {
	t.once.Do(func() {
		if t.thunk != nil {
			t.fields = t.thunk()
		}
		t.index = make(map[string]*Field, len(t.fields))
		for _, f := range t.fields {
			t.index[f.Name] = f
		}
	})
}

// Fields returns the declared fields in declaration order.
func (t *Type) Fields() []*Field {
	t.load()
	return t.fields
}

// Field returns the field called name, or nil.
func (t *Type) Field(name string) *Field {
	t.load()
	return t.index[name]
}

// FieldKind is the result shape of a field.
type FieldKind string

const (
	FieldKindScalar FieldKind = "SCALAR"
	FieldKindObject FieldKind = "OBJECT"
	FieldKindList   FieldKind = "LIST"
)

// ResolveFunc computes a field value from its parent value and coerced arguments.
// Returning (nil, nil) yields an absent value.
type ResolveFunc func(ctx context.Context, source any, args map[string]any) (any, error)

// Field is the definition of a field on an object type.
//
// Type names the result type; for list fields it names the element type. The
// reference is resolved through the Schema when the field is planned, never at
// declaration time.
type Field struct {
	Name              string
	Description       string
	Kind              FieldKind
	Type              string
	NonNull           bool
	Arguments         []*Argument
	Resolve           ResolveFunc
	IsDeprecated      bool
	DeprecationReason string
}

// NewField declares a field.
func NewField(name string, kind FieldKind, typeName string, resolve ResolveFunc) *Field {
	return &Field{Name: name, Kind: kind, Type: typeName, Resolve: resolve}
}

func (f *Field) Describe(description string) *Field { f.Description = description; return f }
func (f *Field) SetNonNull() *Field                 { f.NonNull = true; return f }

func (f *Field) AddArgument(a *Argument) *Field {
	f.Arguments = append(f.Arguments, a)
	return f
}

func (f *Field) Deprecate(reason string) *Field {
	f.IsDeprecated = true
	f.DeprecationReason = reason
	return f
}

// Argument returns the argument definition called name, or nil.
func (f *Field) Argument(name string) *Argument {
	for _, a := range f.Arguments {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// Argument declares a named scalar argument of a field.
type Argument struct {
	Name         string
	Description  string
	Type         string // scalar type name
	Required     bool
	DefaultValue any
}

// NewArgument declares an optional argument.
func NewArgument(name, typeName, description string) *Argument {
	return &Argument{Name: name, Type: typeName, Description: description}
}

func (a *Argument) SetRequired() *Argument       { a.Required = true; return a }
func (a *Argument) SetDefault(v any) *Argument    { a.DefaultValue = v; return a }
