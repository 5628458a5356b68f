// Package library declares the Book and Author object types and the root Query and
// Mutation types, with resolvers bound to a Store.
package library

import (
	"context"
	"fmt"

	schema "github.com/hanpama/bookgraph/internal/schema"
	store "github.com/hanpama/bookgraph/internal/store"
)

// Store is the entity storage the resolvers read from and append to.
type Store interface {
	AuthorByID(id int) (store.Author, bool)
	BookByID(id int) (store.Book, bool)
	BooksByAuthor(authorID int) []store.Book
	Authors() []store.Author
	Books() []store.Book
	AddAuthor(ctx context.Context, name string) store.Author
	AddBook(ctx context.Context, name string, authorID int) store.Book
}

const (
	BookTypeName     = "Book"
	AuthorTypeName   = "Author"
	QueryTypeName    = "Query"
	MutationTypeName = "Mutation"
)

// NewSchema builds the registry for st.
func NewSchema(st Store) *schema.Schema {
	s := schema.NewSchema("")
	s.SetQueryType(QueryTypeName).
		SetMutationType(MutationTypeName)
	schema.AddBuiltins(s)
	s.AddType(bookType(st)).
		AddType(authorType(st)).
		AddType(queryType(st)).
		AddType(mutationType(st))
	return s
}

func bookType(st Store) *schema.Type {
	return schema.NewObjectType(BookTypeName, "This represents a book", func() []*schema.Field {
		return []*schema.Field{
			schema.NewField("id", schema.FieldKindScalar, "Int", bookField(func(b store.Book) any { return b.ID })),
			schema.NewField("name", schema.FieldKindScalar, "String", bookField(func(b store.Book) any { return b.Name })),
			schema.NewField("authorId", schema.FieldKindScalar, "Int", bookField(func(b store.Book) any { return b.AuthorID })),
			schema.NewField("author", schema.FieldKindObject, AuthorTypeName,
				func(_ context.Context, source any, _ map[string]any) (any, error) {
					b, err := asBook(source)
					if err != nil {
						return nil, err
					}
					if a, ok := st.AuthorByID(b.AuthorID); ok {
						return a, nil
					}
					return nil, nil
				}),
		}
	})
}

func authorType(st Store) *schema.Type {
	return schema.NewObjectType(AuthorTypeName, "This represents an author", func() []*schema.Field {
		return []*schema.Field{
			schema.NewField("id", schema.FieldKindScalar, "Int", authorField(func(a store.Author) any { return a.ID })),
			schema.NewField("name", schema.FieldKindScalar, "String", authorField(func(a store.Author) any { return a.Name })),
			schema.NewField("books", schema.FieldKindList, BookTypeName,
				func(_ context.Context, source any, _ map[string]any) (any, error) {
					a, err := asAuthor(source)
					if err != nil {
						return nil, err
					}
					return st.BooksByAuthor(a.ID), nil
				}),
		}
	})
}

func queryType(st Store) *schema.Type {
	return schema.NewObjectType(QueryTypeName, "Root Query", func() []*schema.Field {
		return []*schema.Field{
			schema.NewField("book", schema.FieldKindObject, BookTypeName,
				func(_ context.Context, _ any, args map[string]any) (any, error) {
					id, ok := args["id"].(int)
					if !ok {
						return nil, nil
					}
					if b, ok := st.BookByID(id); ok {
						return b, nil
					}
					return nil, nil
				}).
				Describe("Single Book").
				AddArgument(schema.NewArgument("id", "Int", "")),
			schema.NewField("books", schema.FieldKindList, BookTypeName,
				func(context.Context, any, map[string]any) (any, error) {
					return st.Books(), nil
				}).
				Describe("List Of Books"),
			schema.NewField("author", schema.FieldKindObject, AuthorTypeName,
				func(_ context.Context, _ any, args map[string]any) (any, error) {
					id, ok := args["id"].(int)
					if !ok {
						return nil, nil
					}
					if a, ok := st.AuthorByID(id); ok {
						return a, nil
					}
					return nil, nil
				}).
				Describe("Single Author").
				AddArgument(schema.NewArgument("id", "Int", "")),
			schema.NewField("authors", schema.FieldKindList, AuthorTypeName,
				func(context.Context, any, map[string]any) (any, error) {
					return st.Authors(), nil
				}).
				Describe("List Of Authors"),
		}
	})
}

// Mutation arguments are required and coerced before a resolver runs, so the
// type assertions below cannot fail for a planned operation.
func mutationType(st Store) *schema.Type {
	return schema.NewObjectType(MutationTypeName, "Root Mutation", func() []*schema.Field {
		return []*schema.Field{
			schema.NewField("addBook", schema.FieldKindObject, BookTypeName,
				func(ctx context.Context, _ any, args map[string]any) (any, error) {
					name, _ := args["name"].(string)
					authorID, _ := args["authorId"].(int)
					return st.AddBook(ctx, name, authorID), nil
				}).
				Describe("Adding a Book").
				AddArgument(schema.NewArgument("name", "String", "").SetRequired()).
				AddArgument(schema.NewArgument("authorId", "Int", "").SetRequired()),
			schema.NewField("addAuthor", schema.FieldKindObject, AuthorTypeName,
				func(ctx context.Context, _ any, args map[string]any) (any, error) {
					name, _ := args["name"].(string)
					return st.AddAuthor(ctx, name), nil
				}).
				Describe("Adding an Author").
				AddArgument(schema.NewArgument("name", "String", "").SetRequired()),
		}
	})
}

func bookField(project func(store.Book) any) schema.ResolveFunc {
	return func(_ context.Context, source any, _ map[string]any) (any, error) {
		b, err := asBook(source)
		if err != nil {
			return nil, err
		}
		return project(b), nil
	}
}

func authorField(project func(store.Author) any) schema.ResolveFunc {
	return func(_ context.Context, source any, _ map[string]any) (any, error) {
		a, err := asAuthor(source)
		if err != nil {
			return nil, err
		}
		return project(a), nil
	}
}

func asBook(source any) (store.Book, error) {
	switch v := source.(type) {
	case store.Book:
		return v, nil
	case *store.Book:
		if v != nil {
			return *v, nil
		}
	}
	return store.Book{}, fmt.Errorf("expected Book source, got %T", source)
}

func asAuthor(source any) (store.Author, error) {
	switch v := source.(type) {
	case store.Author:
		return v, nil
	case *store.Author:
		if v != nil {
			return *v, nil
		}
	}
	return store.Author{}, fmt.Errorf("expected Author source, got %T", source)
}
