// Package store holds the in-memory author and book collections.
//
// Both collections are append-only. Each one is guarded by its own RWMutex so that
// scans share the lock while appends hold it exclusively. Lookups never fail: a
// missing entity is reported with ok == false.
package store

import (
	"context"
	"sync"

	"github.com/samber/lo"

	eventbus "github.com/hanpama/bookgraph/internal/eventbus"
	events "github.com/hanpama/bookgraph/internal/events"
)

type Author struct {
	ID   int    `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

type Book struct {
	ID       int    `yaml:"id" json:"id"`
	Name     string `yaml:"name" json:"name"`
	AuthorID int    `yaml:"authorId" json:"authorId"`
}

// Seed is the initial content of a Store.
type Seed struct {
	Authors []Author `yaml:"authors"`
	Books   []Book   `yaml:"books"`
}

// DefaultSeed returns the literal data set the service starts with.
func DefaultSeed() Seed {
	return Seed{
		Authors: []Author{
			{ID: 1, Name: "J. K. Rowling"},
			{ID: 2, Name: "J. R. R. Tolkien"},
			{ID: 3, Name: "Brent Weeks"},
		},
		Books: []Book{
			{ID: 1, Name: "Harry Potter and the Chamber of Secrets", AuthorID: 1},
			{ID: 2, Name: "Harry Potter and the Prisoner of Azkaban", AuthorID: 1},
			{ID: 3, Name: "Harry Potter and the Goblet of Fire", AuthorID: 1},
			{ID: 4, Name: "The Fellowship of the Ring", AuthorID: 2},
			{ID: 5, Name: "The Two Towers", AuthorID: 2},
			{ID: 6, Name: "The Return of the King", AuthorID: 2},
			{ID: 7, Name: "The Way of Shadows", AuthorID: 3},
			{ID: 8, Name: "Beyond the Shadows", AuthorID: 3},
		},
	}
}

// Store owns the author and book collections for the lifetime of the process.
type Store struct {
	authorsMu sync.RWMutex
	authors   []Author

	booksMu sync.RWMutex
	books   []Book
}

// New creates a Store holding a copy of seed.
func New(seed Seed) *Store {
	return &Store{
		authors: append([]Author(nil), seed.Authors...),
		books:   append([]Book(nil), seed.Books...),
	}
}

// AuthorByID returns the first author whose ID equals id.
func (s *Store) AuthorByID(id int) (Author, bool) {
	s.authorsMu.RLock()
	defer s.authorsMu.RUnlock()
	return lo.Find(s.authors, func(a Author) bool { return a.ID == id })
}

// BookByID returns the first book whose ID equals id.
func (s *Store) BookByID(id int) (Book, bool) {
	s.booksMu.RLock()
	defer s.booksMu.RUnlock()
	return lo.Find(s.books, func(b Book) bool { return b.ID == id })
}

// BooksByAuthor returns the books written by authorID in insertion order.
func (s *Store) BooksByAuthor(authorID int) []Book {
	s.booksMu.RLock()
	defer s.booksMu.RUnlock()
	return lo.Filter(s.books, func(b Book, _ int) bool { return b.AuthorID == authorID })
}

// Authors returns a snapshot of all authors.
func (s *Store) Authors() []Author {
	s.authorsMu.RLock()
	defer s.authorsMu.RUnlock()
	return append([]Author(nil), s.authors...)
}

// Books returns a snapshot of all books.
func (s *Store) Books() []Book {
	s.booksMu.RLock()
	defer s.booksMu.RUnlock()
	return append([]Book(nil), s.books...)
}

// AddAuthor appends a new author. The ID is the collection length after the
// append, so it is only unique as long as nothing is ever removed.
func (s *Store) AddAuthor(ctx context.Context, name string) Author {
	s.authorsMu.Lock()
	a := Author{ID: len(s.authors) + 1, Name: name}
	s.authors = append(s.authors, a)
	s.authorsMu.Unlock()

	eventbus.Publish(ctx, events.AuthorAdded{ID: a.ID, Name: a.Name})
	return a
}

// AddBook appends a new book. authorID is stored as given; it is not checked
// against the author collection. IDs follow the same rule as AddAuthor.
func (s *Store) AddBook(ctx context.Context, name string, authorID int) Book {
	s.booksMu.Lock()
	b := Book{ID: len(s.books) + 1, Name: name, AuthorID: authorID}
	s.books = append(s.books, b)
	s.booksMu.Unlock()

	eventbus.Publish(ctx, events.BookAdded{ID: b.ID, Name: b.Name, AuthorID: b.AuthorID})
	return b
}
