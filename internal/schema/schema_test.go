package schema

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func noop(context.Context, any, map[string]any) (any, error) { return nil, nil }

func TestObjectType_FieldsAreLazy(t *testing.T) {
	calls := 0
	typ := NewObjectType("Lazy", "", func() []*Field {
		calls++
		return []*Field{NewField("a", FieldKindScalar, "String", noop)}
	})
	require.Equal(t, 0, calls)

	require.NotNil(t, typ.Field("a"))
	require.Nil(t, typ.Field("b"))
	require.Len(t, typ.Fields(), 1)
	require.Equal(t, 1, calls)
}

func TestSchema_CyclicTypes(t *testing.T) {
	s := AddBuiltins(NewSchema(""))
	// Declared before the type it references exists.
	s.AddType(NewObjectType("Book", "", func() []*Field {
		return []*Field{NewField("author", FieldKindObject, "Author", noop)}
	}))
	s.AddType(NewObjectType("Author", "", func() []*Field {
		return []*Field{NewField("books", FieldKindList, "Book", noop)}
	}))

	author := s.TypeOf(s.Types["Book"].Field("author"))
	require.NotNil(t, author)
	require.Equal(t, "Author", author.Name)
	require.Same(t, s.Types["Book"], s.TypeOf(author.Field("books")))
	require.True(t, s.IsComposite(author.Field("books")))
	require.False(t, s.IsComposite(NewField("x", FieldKindScalar, "Int", noop)))
	require.Nil(t, s.TypeOf(NewField("x", FieldKindObject, "Nope", noop)))
	require.Nil(t, s.TypeOf(nil))
}

func TestSchema_RootTypes(t *testing.T) {
	s := NewSchema("")
	require.Nil(t, s.GetQueryType())
	require.Nil(t, s.GetMutationType())

	q := NewObjectType("Query", "", nil)
	s.SetQueryType("Query").AddType(q)
	require.Same(t, q, s.GetQueryType())
	require.Nil(t, s.GetMutationType())
	require.Empty(t, q.Fields())
}

func TestSchema_TypeNamesSorted(t *testing.T) {
	s := AddBuiltins(NewSchema(""))
	s.AddType(NewObjectType("Query", "", nil))
	require.Equal(t, []string{"Boolean", "Int", "Query", "String"}, s.TypeNames())
}

func TestBuiltins_Serialize(t *testing.T) {
	cases := []struct {
		typ     *Type
		in      any
		want    any
		wantErr bool
	}{
		{IntType, 3, 3, false},
		{IntType, int64(7), 7, false},
		{IntType, int64(1 << 40), nil, true},
		{IntType, 2.0, 2, false},
		{IntType, 2.5, nil, true},
		{IntType, "3", nil, true},
		{StringType, "x", "x", false},
		{StringType, 1, nil, true},
		{BooleanType, true, true, false},
		{BooleanType, "true", nil, true},
	}
	for _, tc := range cases {
		got, err := tc.typ.Serialize(tc.in)
		if tc.wantErr {
			require.Error(t, err, "%s(%v)", tc.typ.Name, tc.in)
			continue
		}
		require.NoError(t, err)
		require.Equal(t, tc.want, got)
	}
	require.True(t, IsBuiltin(IntType))
	require.False(t, IsBuiltin(NewScalarType("Int", "", nil)))
}

func TestRender(t *testing.T) {
	s := AddBuiltins(NewSchema(""))
	s.SetQueryType("Query").SetMutationType("Mutation")
	s.AddType(NewObjectType("Book", "A book", func() []*Field {
		return []*Field{
			NewField("id", FieldKindScalar, "Int", noop).SetNonNull(),
			NewField("author", FieldKindObject, "Author", noop),
			NewField("title", FieldKindScalar, "String", noop).Deprecate("use name"),
		}
	}))
	s.AddType(NewObjectType("Author", "", func() []*Field {
		return []*Field{NewField("books", FieldKindList, "Book", noop)}
	}))
	s.AddType(NewObjectType("Query", "", func() []*Field {
		return []*Field{
			NewField("book", FieldKindObject, "Book", noop).
				Describe("Single Book").
				AddArgument(NewArgument("id", "Int", "")),
			NewField("search", FieldKindList, "Book", noop).
				AddArgument(NewArgument("q", "String", "").SetRequired()).
				AddArgument(NewArgument("limit", "Int", "").SetDefault(10)),
		}
	}))
	s.AddType(NewObjectType("Mutation", "", func() []*Field {
		return []*Field{NewField("noop", FieldKindScalar, "Boolean", noop)}
	}))
	s.AddType(NewObjectType("__Hidden", "", nil))

	want := `schema {
  query: Query
  mutation: Mutation
}

type Author {
  books: [Book]
}

"""
A book
"""
type Book {
  id: Int!
  author: Author
  title: String @deprecated(reason: "use name")
}

type Mutation {
  noop: Boolean
}

type Query {
  """
  Single Book
  """
  book(id: Int): Book
  search(q: String!, limit: Int = 10): [Book]
}
`
	if diff := cmp.Diff(want, Render(s)); diff != "" {
		t.Fatalf("Render mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, "", Render(nil))
}
