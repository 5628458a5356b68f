// Package reqid attaches a per-request identifier to a context.
package reqid

import (
	"context"

	"github.com/google/uuid"
)

// Header is the HTTP header used to echo or accept a request id.
const Header = "X-Request-Id"

// key is the context key for the request ID.
type key struct{}

// scope is stored under key. Each WithID call allocates its own, so two
// requests echoing the same client id still have distinct scopes.
type scope struct{ id string }

// NewContext returns a copy of parent carrying a freshly generated random (v4) id.
func NewContext(parent context.Context) (context.Context, string) {
	return WithID(parent, uuid.NewString())
}

// WithID returns a copy of parent carrying id. An id that is not a valid UUID is
// replaced by a generated one, so callers may pass client-supplied values.
func WithID(parent context.Context, id string) (context.Context, string) {
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}
	return context.WithValue(parent, key{}, &scope{id: id}), id
}

// FromContext extracts the request ID from ctx.
// It returns the ID and whether it was present.
func FromContext(ctx context.Context) (string, bool) {
	sc, ok := ctx.Value(key{}).(*scope)
	if !ok {
		return "", false
	}
	return sc.id, true
}

// Token returns a comparable value identifying the WithID call that produced
// ctx. Unlike the id, it is never shared between requests.
func Token(ctx context.Context) (any, bool) {
	sc, ok := ctx.Value(key{}).(*scope)
	if !ok {
		return nil, false
	}
	return sc, true
}
