// Package events declares the values published on the event bus. Subscribers
// (logging, tracing) receive the publisher's context, which carries the request id.
package events

import (
	"net/http"
	"time"
)

// HTTPStart is emitted when the endpoint receives a request.
type HTTPStart struct {
	Request *http.Request
}

// HTTPFinish is emitted after the response has been written.
type HTTPFinish struct {
	Request  *http.Request
	Status   int
	Duration time.Duration
}

// OperationStart is emitted before a query or mutation is executed.
type OperationStart struct {
	Query         string
	OperationName string
	OperationType string
}

// OperationFinish is emitted after a query or mutation has been executed.
// Errors holds every error reported in the response, structural or located.
type OperationFinish struct {
	Query         string
	OperationName string
	OperationType string
	Errors        []error
	Duration      time.Duration
}

// AuthorAdded is emitted after an author has been appended to the store.
type AuthorAdded struct {
	ID   int
	Name string
}

// BookAdded is emitted after a book has been appended to the store.
// AuthorID is recorded as given and may not match any author.
type BookAdded struct {
	ID       int
	Name     string
	AuthorID int
}
