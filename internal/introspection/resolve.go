package introspection

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	schema "github.com/hanpama/bookgraph/internal/schema"
)

const (
	kindList    = "LIST"
	kindNonNull = "NON_NULL"
)

// typeRef is the value behind every __Type. A named type has named set; LIST and
// NON_NULL wrappers have ofType set instead.
type typeRef struct {
	named   *schema.Type
	wrapper string
	ofType  *typeRef
}

func named(t *schema.Type) *typeRef {
	if t == nil {
		return nil
	}
	return &typeRef{named: t}
}

func (t *typeRef) kind() string {
	if t.named != nil {
		return string(t.named.Kind)
	}
	return t.wrapper
}

func wrap(kind string, of *typeRef) *typeRef {
	if of == nil {
		return nil
	}
	return &typeRef{wrapper: kind, ofType: of}
}

// fieldTypeRef builds the type expression of f, e.g. [Book] or Int!.
func fieldTypeRef(sch *schema.Schema, f *schema.Field) *typeRef {
	ref := named(sch.TypeOf(f))
	if f.Kind == schema.FieldKindList {
		ref = wrap(kindList, ref)
	}
	if f.NonNull {
		ref = wrap(kindNonNull, ref)
	}
	return ref
}

func argumentTypeRef(sch *schema.Schema, a *schema.Argument) *typeRef {
	ref := named(sch.Types[a.Type])
	if a.Required {
		ref = wrap(kindNonNull, ref)
	}
	return ref
}

type directive struct {
	name        string
	description string
	locations   []string
	args        []*schema.Argument
}

// builtinDirectives are the directives FromDocument honours.
var builtinDirectives = []*directive{
	{
		name:        "include",
		description: "Directs the executor to include this field or fragment only when the `if` argument is true.",
		locations:   []string{"FIELD", "FRAGMENT_SPREAD", "INLINE_FRAGMENT"},
		args:        []*schema.Argument{schema.NewArgument("if", "Boolean", "Included when true.").SetRequired()},
	},
	{
		name:        "skip",
		description: "Directs the executor to skip this field or fragment when the `if` argument is true.",
		locations:   []string{"FIELD", "FRAGMENT_SPREAD", "INLINE_FRAGMENT"},
		args:        []*schema.Argument{schema.NewArgument("if", "Boolean", "Skipped when true.").SetRequired()},
	},
}

// --- root fields ---

func resolveSchema(sch *schema.Schema) schema.ResolveFunc {
	return func(context.Context, any, map[string]any) (any, error) {
		return sch, nil
	}
}

func resolveTypeByName(sch *schema.Schema) schema.ResolveFunc {
	return func(_ context.Context, _ any, args map[string]any) (any, error) {
		name, _ := args["name"].(string)
		return named(sch.Types[name]), nil
	}
}

// --- source adapters ---

func sourceError(want string, got any) error {
	return fmt.Errorf("introspection: expected %s source, got %T", want, got)
}

func onSchema(get func(*schema.Schema) any) schema.ResolveFunc {
	return func(_ context.Context, source any, _ map[string]any) (any, error) {
		s, ok := source.(*schema.Schema)
		if !ok {
			return nil, sourceError(schemaTypeName, source)
		}
		return get(s), nil
	}
}

func onType(get func(*typeRef, map[string]any) any) schema.ResolveFunc {
	return func(_ context.Context, source any, args map[string]any) (any, error) {
		t, ok := source.(*typeRef)
		if !ok {
			return nil, sourceError(typeTypeName, source)
		}
		return get(t, args), nil
	}
}

func onField(get func(*schema.Field, map[string]any) any) schema.ResolveFunc {
	return func(_ context.Context, source any, args map[string]any) (any, error) {
		f, ok := source.(*schema.Field)
		if !ok {
			return nil, sourceError(fieldTypeName, source)
		}
		return get(f, args), nil
	}
}

func onArgument(get func(*schema.Argument) any) schema.ResolveFunc {
	return func(_ context.Context, source any, _ map[string]any) (any, error) {
		a, ok := source.(*schema.Argument)
		if !ok {
			return nil, sourceError(inputValueTypeName, source)
		}
		return get(a), nil
	}
}

func onDirective(get func(*directive) any) schema.ResolveFunc {
	return func(_ context.Context, source any, _ map[string]any) (any, error) {
		d, ok := source.(*directive)
		if !ok {
			return nil, sourceError(directiveTypeName, source)
		}
		return get(d), nil
	}
}

// --- helpers ---

func resolveSchemaTypes(sch *schema.Schema) any {
	return lo.Map(sch.TypeNames(), func(name string, _ int) *typeRef {
		return named(sch.Types[name])
	})
}

// resolveTypeFields lists the fields of an object type; other kinds have none.
func resolveTypeFields(t *typeRef, args map[string]any) any {
	if t.named == nil || t.named.Kind != schema.TypeKindObject {
		return nil
	}
	includeDeprecated, _ := args["includeDeprecated"].(bool)
	return lo.Filter(t.named.Fields(), func(f *schema.Field, _ int) bool {
		return includeDeprecated || !f.IsDeprecated
	})
}

// Objects implement no interfaces here, but the list is still non-null for them.
func resolveTypeInterfaces(t *typeRef, _ map[string]any) any {
	if t.named == nil || t.named.Kind != schema.TypeKindObject {
		return nil
	}
	return []*typeRef{}
}

func optionalString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
