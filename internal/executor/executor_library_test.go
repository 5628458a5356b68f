package executor_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	executor "github.com/hanpama/bookgraph/internal/executor"
	language "github.com/hanpama/bookgraph/internal/language"
	library "github.com/hanpama/bookgraph/internal/library"
	store "github.com/hanpama/bookgraph/internal/store"
)

func newLibrary(t *testing.T, opts ...executor.Option) (*executor.Executor, *store.Store) {
	t.Helper()
	st := store.New(store.DefaultSeed())
	return executor.NewExecutor(library.NewSchema(st), opts...), st
}

func run(t *testing.T, exec *executor.Executor, query string, vars map[string]any) *executor.ExecutionResult {
	t.Helper()
	doc, err := language.ParseQuery(query)
	require.NoError(t, err)
	return exec.ExecuteRequest(context.Background(), doc, "", vars)
}

// Pattern: Result comparison
func TestLibrary_BookWithAuthor_Result(t *testing.T) {
	exec, _ := newLibrary(t)

	gotRes := run(t, exec, `{ book(id: 1) { name author { name } } }`, nil)

	wantRes := &executor.ExecutionResult{Data: map[string]any{
		"book": map[string]any{
			"name":   "Harry Potter and the Chamber of Secrets",
			"author": map[string]any{"name": "J. K. Rowling"},
		},
	}}
	if diff := cmp.Diff(wantRes, gotRes); diff != "" {
		t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
	}
}

// Pattern: Result comparison
func TestLibrary_AuthorWithBooks_Result(t *testing.T) {
	exec, _ := newLibrary(t)

	gotRes := exec.ExecuteField(context.Background(), executor.Query, "author",
		map[string]any{"id": 3},
		executor.SelectionSet{executor.Select("name"), executor.Select("books", executor.Select("name"))},
	)

	wantRes := &executor.ExecutionResult{Data: map[string]any{
		"author": map[string]any{
			"name": "Brent Weeks",
			"books": []any{
				map[string]any{"name": "The Way of Shadows"},
				map[string]any{"name": "Beyond the Shadows"},
			},
		},
	}}
	if diff := cmp.Diff(wantRes, gotRes); diff != "" {
		t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
	}
}

func TestLibrary_AuthorBooksMatchStoreFilter(t *testing.T) {
	exec, st := newLibrary(t)

	for _, a := range st.Authors() {
		res := exec.ExecuteField(context.Background(), executor.Query, "author",
			map[string]any{"id": a.ID},
			executor.SelectionSet{executor.Select("books", executor.Select("id"), executor.Select("authorId"))},
		)
		require.Empty(t, res.Errors)

		var want []any
		for _, b := range st.Books() {
			if b.AuthorID == a.ID {
				want = append(want, map[string]any{"id": b.ID, "authorId": a.ID})
			}
		}
		got := res.Data["author"].(map[string]any)["books"]
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("books of author %d mismatch (-want +got):\n%s", a.ID, diff)
		}
	}
}

// Pattern: Result comparison
func TestLibrary_MissingEntitiesAreAbsent_Result(t *testing.T) {
	exec, _ := newLibrary(t)

	gotRes := run(t, exec, `{ book(id: 99) { name } author(id: 99) { name } missing: book { name } books { id } }`, nil)

	require.Empty(t, gotRes.Errors)
	require.Nil(t, gotRes.Data["book"])
	require.Nil(t, gotRes.Data["author"])
	require.Nil(t, gotRes.Data["missing"])
	require.Len(t, gotRes.Data["books"], 8)
}

// Pattern: Result comparison
func TestLibrary_AddAuthor_Result(t *testing.T) {
	exec, st := newLibrary(t)
	before := len(st.Authors())

	gotRes := run(t, exec, `mutation { addAuthor(name: "Ursula K. Le Guin") { id name } }`, nil)

	wantRes := &executor.ExecutionResult{Data: map[string]any{
		"addAuthor": map[string]any{"id": before + 1, "name": "Ursula K. Le Guin"},
	}}
	if diff := cmp.Diff(wantRes, gotRes); diff != "" {
		t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
	}

	listed := run(t, exec, `{ authors { id name } }`, nil)
	authors := listed.Data["authors"].([]any)
	require.Len(t, authors, before+1)
	require.Equal(t, map[string]any{"id": before + 1, "name": "Ursula K. Le Guin"}, authors[before])
}

// Pattern: Result comparison
func TestLibrary_AddBookWithUnknownAuthor_Result(t *testing.T) {
	exec, _ := newLibrary(t)

	gotRes := run(t, exec, `mutation { addBook(name: "X", authorId: 999) { id name authorId author { name } } }`, nil)

	wantRes := &executor.ExecutionResult{Data: map[string]any{
		"addBook": map[string]any{"id": 9, "name": "X", "authorId": 999, "author": nil},
	}}
	if diff := cmp.Diff(wantRes, gotRes); diff != "" {
		t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
	}

	again := run(t, exec, `{ book(id: 9) { author { name } } }`, nil)
	require.Empty(t, again.Errors)
	require.Equal(t, map[string]any{"author": nil}, again.Data["book"])
}

// Pattern: Result comparison
func TestLibrary_EmptySelectionRejectsWholeRequest_Result(t *testing.T) {
	exec, _ := newLibrary(t)

	for _, q := range []string{
		`{ books { name } book(id: 1) { author } }`,
		`{ author(id: 1) { name books } }`,
	} {
		gotRes := run(t, exec, q, nil)
		require.Nil(t, gotRes.Data, q)
		require.Len(t, gotRes.Errors, 1, q)
		require.True(t, executor.IsKind(gotRes.Errors[0], executor.ErrEmptySelection), q)
	}
}

func TestLibrary_RejectedMutationDoesNotWrite(t *testing.T) {
	exec, st := newLibrary(t)

	cases := []string{
		// invalid selection on the returned entity
		`mutation { addBook(name: "X", authorId: 1) { author } }`,
		// unknown field after a valid one
		`mutation { addAuthor(name: "A") { id } addBook(name: "B", authorId: 1) { isbn } }`,
		// wrong argument kind
		`mutation { addBook(name: "X", authorId: "1") { id } }`,
		// missing required argument
		`mutation { addAuthor { id } }`,
		// enum literal where a string is expected
		`mutation { addAuthor(name: Foo) { id } }`,
		// one response name for two appends
		`mutation { x: addAuthor(name: "A") { id } x: addAuthor(name: "B") { id } }`,
	}
	for _, q := range cases {
		res := run(t, exec, q, nil)
		require.Nil(t, res.Data, q)
		require.NotEmpty(t, res.Errors, q)
	}
	require.Len(t, st.Authors(), 3)
	require.Len(t, st.Books(), 8)
}

func TestLibrary_ConflictingAliasesAreRejected(t *testing.T) {
	exec, _ := newLibrary(t)

	for _, q := range []string{
		`{ x: book(id: 1) { name } x: author(id: 3) { name } }`,
		`{ x: book(id: 1) { name } x: book(id: 7) { name } }`,
		`{ book(id: 1) { author { n: name n: id } } }`,
	} {
		res := run(t, exec, q, nil)
		require.Nil(t, res.Data, q)
		require.Len(t, res.Errors, 1, q)
		require.True(t, executor.IsKind(res.Errors[0], executor.ErrFieldsConflict), res.Errors[0].Message)
	}

	res := run(t, exec, `{ x: book(id: 1) { name } x: book(id: 1) { author { name } } }`, nil)
	require.Empty(t, res.Errors)
	require.Equal(t, map[string]any{
		"name":   "Harry Potter and the Chamber of Secrets",
		"author": map[string]any{"name": "J. K. Rowling"},
	}, res.Data["x"])
}

func TestLibrary_MutationsRunInOrder(t *testing.T) {
	exec, _ := newLibrary(t)

	res := run(t, exec, `mutation {
		first: addAuthor(name: "A") { id }
		second: addAuthor(name: "B") { id }
		book: addBook(name: "C", authorId: 5) { author { name } }
	}`, nil)

	require.Empty(t, res.Errors)
	require.Equal(t, map[string]any{"id": 4}, res.Data["first"])
	require.Equal(t, map[string]any{"id": 5}, res.Data["second"])
	require.Equal(t, map[string]any{"author": map[string]any{"name": "B"}}, res.Data["book"])
}

func TestLibrary_Variables(t *testing.T) {
	exec, _ := newLibrary(t)

	// JSON decoding yields float64 numbers
	res := run(t, exec, `query ($id: Int) { book(id: $id) { name } }`, map[string]any{"id": float64(4)})
	require.Empty(t, res.Errors)
	require.Equal(t, map[string]any{"name": "The Fellowship of the Ring"}, res.Data["book"])

	res = run(t, exec, `mutation Add($name: String!, $author: Int!) { addBook(name: $name, authorId: $author) { id } }`,
		map[string]any{"name": "The Blinding Knife", "author": 3})
	require.Empty(t, res.Errors)
	require.Equal(t, map[string]any{"id": 9}, res.Data["addBook"])
}

func TestLibrary_ParallelMatchesSerial(t *testing.T) {
	serial, _ := newLibrary(t)
	parallel, _ := newLibrary(t, executor.WithParallelism(4))

	q := `{
		authors { id name books { id name author { id name } } }
		books { name author { name books { name } } }
		book(id: 5) { __typename name }
	}`
	want := run(t, serial, q, nil)
	got := run(t, parallel, q, nil)
	require.Empty(t, want.Errors)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("parallel result mismatch (-serial +parallel):\n%s", diff)
	}
}

func TestLibrary_ConcurrentQueriesAndMutations(t *testing.T) {
	exec, st := newLibrary(t, executor.WithParallelism(2))

	done := make(chan struct{})
	for i := 0; i < 20; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			res := run(t, exec, `mutation { addBook(name: "N", authorId: 1) { id } }`, nil)
			if len(res.Errors) > 0 {
				t.Errorf("mutation errors: %v", res.Errors)
			}
		}()
		go func() {
			defer func() { done <- struct{}{} }()
			res := run(t, exec, `{ author(id: 1) { books { id } } }`, nil)
			if len(res.Errors) > 0 {
				t.Errorf("query errors: %v", res.Errors)
			}
		}()
	}
	for i := 0; i < 40; i++ {
		<-done
	}
	require.Len(t, st.Books(), 28)
	require.Len(t, st.BooksByAuthor(1), 23)
}
