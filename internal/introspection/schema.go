// Package introspection adds the __schema and __type root fields and the
// introspection object types to a schema.
package introspection

import (
	schema "github.com/hanpama/bookgraph/internal/schema"
)

const (
	schemaTypeName     = "__Schema"
	typeTypeName       = "__Type"
	fieldTypeName      = "__Field"
	inputValueTypeName = "__InputValue"
	enumValueTypeName  = "__EnumValue"
	directiveTypeName  = "__Directive"
)

// Extend returns a copy of original whose query type also answers __schema and
// __type. The original schema is left untouched; types are shared between both.
func Extend(original *schema.Schema) *schema.Schema {
	extended := schema.NewSchema(original.Description)
	extended.SetQueryType(original.QueryType).SetMutationType(original.MutationType)
	for _, typ := range original.Types {
		extended.AddType(typ)
	}

	addIntrospectionTypes(extended)

	if queryType := original.GetQueryType(); queryType != nil {
		extended.AddType(schema.NewObjectType(queryType.Name, queryType.Description, func() []*schema.Field {
			fields := append([]*schema.Field(nil), queryType.Fields()...)
			return append(fields,
				schema.NewField("__schema", schema.FieldKindObject, schemaTypeName, resolveSchema(extended)).
					Describe("Access the current type schema of this server.").
					SetNonNull(),
				schema.NewField("__type", schema.FieldKindObject, typeTypeName, resolveTypeByName(extended)).
					Describe("Request the type information of a single type.").
					AddArgument(schema.NewArgument("name", "String", "The name of the type to look up.").SetRequired()),
			)
		}))
	}

	return extended
}

// addIntrospectionTypes adds the introspection types to the schema
func addIntrospectionTypes(sch *schema.Schema) {
	sch.AddType(schemaType()).
		AddType(typeType()).
		AddType(fieldType(sch)).
		AddType(inputValueType(sch)).
		AddType(enumValueType()).
		AddType(directiveType())
}

func includeDeprecatedArg() *schema.Argument {
	return schema.NewArgument("includeDeprecated", "Boolean", "").SetDefault(false)
}

// schemaType returns the __Schema introspection type definition
func schemaType() *schema.Type {
	return schema.NewObjectType(schemaTypeName, "A GraphQL Schema defines the capabilities of a GraphQL server.", func() []*schema.Field {
		return []*schema.Field{
			schema.NewField("description", schema.FieldKindScalar, "String", onSchema(func(s *schema.Schema) any {
				return optionalString(s.Description)
			})),
			schema.NewField("types", schema.FieldKindList, typeTypeName, onSchema(resolveSchemaTypes)).
				Describe("A list of all types supported by this server.").
				SetNonNull(),
			schema.NewField("queryType", schema.FieldKindObject, typeTypeName, onSchema(func(s *schema.Schema) any {
				return named(s.GetQueryType())
			})).
				Describe("The type that query operations will be rooted at.").
				SetNonNull(),
			schema.NewField("mutationType", schema.FieldKindObject, typeTypeName, onSchema(func(s *schema.Schema) any {
				return named(s.GetMutationType())
			})).
				Describe("If this server supports mutation, the type that mutation operations will be rooted at."),
			schema.NewField("subscriptionType", schema.FieldKindObject, typeTypeName, onSchema(func(*schema.Schema) any {
				return nil
			})).
				Describe("If this server support subscription, the type that subscription operations will be rooted at."),
			schema.NewField("directives", schema.FieldKindList, directiveTypeName, onSchema(func(*schema.Schema) any {
				return builtinDirectives
			})).
				Describe("A list of all directives supported by this server.").
				SetNonNull(),
		}
	})
}

// typeType returns the __Type introspection type definition
func typeType() *schema.Type {
	return schema.NewObjectType(typeTypeName, "The fundamental unit of any GraphQL Schema is the type.", func() []*schema.Field {
		return []*schema.Field{
			schema.NewField("kind", schema.FieldKindScalar, "String", onType(func(t *typeRef, _ map[string]any) any {
				return t.kind()
			})).
				Describe("The kind of type.").
				SetNonNull(),
			schema.NewField("name", schema.FieldKindScalar, "String", onType(func(t *typeRef, _ map[string]any) any {
				if t.named == nil {
					return nil
				}
				return t.named.Name
			})),
			schema.NewField("description", schema.FieldKindScalar, "String", onType(func(t *typeRef, _ map[string]any) any {
				if t.named == nil {
					return nil
				}
				return optionalString(t.named.Description)
			})),
			schema.NewField("specifiedByURL", schema.FieldKindScalar, "String", onType(func(*typeRef, map[string]any) any {
				return nil
			})),
			schema.NewField("fields", schema.FieldKindList, fieldTypeName, onType(resolveTypeFields)).
				AddArgument(includeDeprecatedArg()),
			schema.NewField("interfaces", schema.FieldKindList, typeTypeName, onType(resolveTypeInterfaces)),
			schema.NewField("possibleTypes", schema.FieldKindList, typeTypeName, onType(func(*typeRef, map[string]any) any {
				return nil
			})),
			schema.NewField("enumValues", schema.FieldKindList, enumValueTypeName, onType(func(*typeRef, map[string]any) any {
				return nil
			})).
				AddArgument(includeDeprecatedArg()),
			schema.NewField("inputFields", schema.FieldKindList, inputValueTypeName, onType(func(*typeRef, map[string]any) any {
				return nil
			})).
				AddArgument(includeDeprecatedArg()),
			schema.NewField("ofType", schema.FieldKindObject, typeTypeName, onType(func(t *typeRef, _ map[string]any) any {
				return t.ofType
			})),
			schema.NewField("isOneOf", schema.FieldKindScalar, "Boolean", onType(func(t *typeRef, _ map[string]any) any {
				if t.named == nil {
					return nil
				}
				return false
			})),
		}
	})
}

// fieldType returns the __Field introspection type definition
func fieldType(sch *schema.Schema) *schema.Type {
	return schema.NewObjectType(fieldTypeName, "Object and Interface types are described by a list of Fields, each of which has a name, potentially a list of arguments, and a return type.", func() []*schema.Field {
		return []*schema.Field{
			schema.NewField("name", schema.FieldKindScalar, "String", onField(func(f *schema.Field, _ map[string]any) any {
				return f.Name
			})).SetNonNull(),
			schema.NewField("description", schema.FieldKindScalar, "String", onField(func(f *schema.Field, _ map[string]any) any {
				return optionalString(f.Description)
			})),
			schema.NewField("args", schema.FieldKindList, inputValueTypeName, onField(func(f *schema.Field, _ map[string]any) any {
				return f.Arguments
			})).
				SetNonNull().
				AddArgument(includeDeprecatedArg()),
			schema.NewField("type", schema.FieldKindObject, typeTypeName, onField(func(f *schema.Field, _ map[string]any) any {
				return fieldTypeRef(sch, f)
			})).SetNonNull(),
			schema.NewField("isDeprecated", schema.FieldKindScalar, "Boolean", onField(func(f *schema.Field, _ map[string]any) any {
				return f.IsDeprecated
			})).SetNonNull(),
			schema.NewField("deprecationReason", schema.FieldKindScalar, "String", onField(func(f *schema.Field, _ map[string]any) any {
				if !f.IsDeprecated {
					return nil
				}
				return f.DeprecationReason
			})),
		}
	})
}

// inputValueType returns the __InputValue introspection type definition
func inputValueType(sch *schema.Schema) *schema.Type {
	return schema.NewObjectType(inputValueTypeName, "Arguments provided to Fields or Directives and the input fields of an InputObject are represented as Input Values which describe their type and optionally a default value.", func() []*schema.Field {
		return []*schema.Field{
			schema.NewField("name", schema.FieldKindScalar, "String", onArgument(func(a *schema.Argument) any {
				return a.Name
			})).SetNonNull(),
			schema.NewField("description", schema.FieldKindScalar, "String", onArgument(func(a *schema.Argument) any {
				return optionalString(a.Description)
			})),
			schema.NewField("type", schema.FieldKindObject, typeTypeName, onArgument(func(a *schema.Argument) any {
				return argumentTypeRef(sch, a)
			})).SetNonNull(),
			schema.NewField("defaultValue", schema.FieldKindScalar, "String", onArgument(func(a *schema.Argument) any {
				if a.DefaultValue == nil {
					return nil
				}
				return schema.RenderValue(a.DefaultValue)
			})).
				Describe("A GraphQL-formatted string representing the default value for this input value."),
			schema.NewField("isDeprecated", schema.FieldKindScalar, "Boolean", onArgument(func(*schema.Argument) any {
				return false
			})).SetNonNull(),
			schema.NewField("deprecationReason", schema.FieldKindScalar, "String", onArgument(func(*schema.Argument) any {
				return nil
			})),
		}
	})
}

// enumValueType returns the __EnumValue introspection type definition. No type in
// this schema is an enum, so it is only ever reached through an empty list.
func enumValueType() *schema.Type {
	return schema.NewObjectType(enumValueTypeName, "One possible value for a given Enum.", func() []*schema.Field {
		return []*schema.Field{
			schema.NewField("name", schema.FieldKindScalar, "String", nil).SetNonNull(),
			schema.NewField("description", schema.FieldKindScalar, "String", nil),
			schema.NewField("isDeprecated", schema.FieldKindScalar, "Boolean", nil).SetNonNull(),
			schema.NewField("deprecationReason", schema.FieldKindScalar, "String", nil),
		}
	})
}

// directiveType returns the __Directive introspection type definition
func directiveType() *schema.Type {
	return schema.NewObjectType(directiveTypeName, "A Directive provides a way to describe alternate runtime execution and type validation behavior in a GraphQL document.", func() []*schema.Field {
		return []*schema.Field{
			schema.NewField("name", schema.FieldKindScalar, "String", onDirective(func(d *directive) any {
				return d.name
			})).SetNonNull(),
			schema.NewField("description", schema.FieldKindScalar, "String", onDirective(func(d *directive) any {
				return optionalString(d.description)
			})),
			schema.NewField("isRepeatable", schema.FieldKindScalar, "Boolean", onDirective(func(*directive) any {
				return false
			})).SetNonNull(),
			schema.NewField("locations", schema.FieldKindList, "String", onDirective(func(d *directive) any {
				return d.locations
			})).SetNonNull(),
			schema.NewField("args", schema.FieldKindList, inputValueTypeName, onDirective(func(d *directive) any {
				return d.args
			})).
				SetNonNull().
				AddArgument(includeDeprecatedArg()),
		}
	})
}
