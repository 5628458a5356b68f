package executor

import (
	"context"
	"testing"

	language "github.com/hanpama/bookgraph/internal/language"
	schema "github.com/hanpama/bookgraph/internal/schema"
)

// mustParseQuery parses a GraphQL query and fails the test on error.
func mustParseQuery(t *testing.T, q string) *language.QueryDocument {
	t.Helper()
	d, err := language.ParseQuery(q)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return d
}

func newSchemaWithQueryType(query *schema.Type, additional ...*schema.Type) *schema.Schema {
	sch := schema.AddBuiltins(schema.NewSchema(""))
	if query != nil {
		sch.SetQueryType(query.Name)
		sch.AddType(query)
	}
	for _, t := range additional {
		sch.AddType(t)
	}
	return sch
}

func newObjectType(name string, fields ...*schema.Field) *schema.Type {
	return schema.NewObjectType(name, "", func() []*schema.Field { return fields })
}

// valueResolver always returns val.
func valueResolver(val any) schema.ResolveFunc {
	return func(context.Context, any, map[string]any) (any, error) { return val, nil }
}

// errorResolver always fails with err.
func errorResolver(err error) schema.ResolveFunc {
	return func(context.Context, any, map[string]any) (any, error) { return nil, err }
}

// keyResolver reads key from a map[string]any source.
func keyResolver(key string) schema.ResolveFunc {
	return func(_ context.Context, src any, _ map[string]any) (any, error) {
		return src.(map[string]any)[key], nil
	}
}
