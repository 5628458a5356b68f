// Package executor plans and executes queries and mutations against a
// schema.Schema whose fields carry their own resolvers.
//
// # Requests
//
// An Operation is a kind (query or mutation) plus a SelectionSet on the
// corresponding root type. Each Selection names a field, optionally with an alias,
// arguments and a nested selection. FromDocument builds an Operation from a parsed
// GraphQL document; callers that do not speak GraphQL text can build one directly,
// or use ExecuteField for the common single-root-field case.
//
// # Planning
//
// Before anything is resolved the whole selection is walked against the schema:
//   - every field must exist on the type it is selected on (UNKNOWN_FIELD);
//   - arguments are checked against the field's declared arguments and coerced to
//     their scalar types (INVALID_ARGUMENTS);
//   - object and list-of-object fields need a sub-selection
//     (EMPTY_SELECTION_ON_COMPOSITE_FIELD), scalar fields must not have one
//     (SELECTION_ON_SCALAR_FIELD);
//   - nesting is bounded by Options.MaxDepth (DEPTH_LIMIT_EXCEEDED). The schema is
//     cyclic (Book.author.books.author...), so without the bound a caller could
//     request arbitrarily deep trees.
//
// The first violation rejects the operation with no data. Because mutations are
// planned the same way, a rejected mutation never reaches the store.
//
// Field types are referenced by name and looked up in the schema while planning,
// and object types produce their fields lazily, so mutually referencing types
// need no particular declaration order.
//
// # Execution
//
// Execution is a depth-first walk of the plan. Each field's resolver receives the
// parent value and the coerced arguments; its result is completed according to
// the field kind: scalars are serialized by their type, objects are resolved
// against the child plan, lists complete element by element with the index in the
// path. A nil result is an absent value and is written as nil; it is not an
// error and does not affect sibling fields.
//
// Query fields may be resolved concurrently (Options.Parallelism). Root mutation
// fields always run serially in document order.
//
// Resolver failures are recorded as located errors (RESOLVER_ERROR) with a nil
// value at that position; the rest of the result is still produced.
package executor
