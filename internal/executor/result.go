package executor

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type Path []PathElement

// PathElement is a response name (string) or a list index (int).
type PathElement any

func (p Path) String() string {
	var b strings.Builder
	for i, elem := range p {
		switch v := elem.(type) {
		case string:
			if i > 0 {
				b.WriteByte('.')
			}
			b.WriteString(v)
		case int:
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(v))
			b.WriteByte(']')
		}
	}
	return b.String()
}

func appendPath(path Path, elem PathElement) Path {
	newPath := make(Path, len(path)+1)
	copy(newPath, path)
	newPath[len(path)] = elem
	return newPath
}

// ErrorKind classifies an execution error. It is reported to clients as
// extensions.code.
type ErrorKind string

const (
	// ErrUnknownField: a selected field is not declared on the type it is selected on.
	ErrUnknownField ErrorKind = "UNKNOWN_FIELD"
	// ErrInvalidArguments: an argument is unknown, missing while required, or of the
	// wrong scalar kind.
	ErrInvalidArguments ErrorKind = "INVALID_ARGUMENTS"
	// ErrEmptySelection: an object or list-of-object field was selected without a
	// sub-selection.
	ErrEmptySelection ErrorKind = "EMPTY_SELECTION_ON_COMPOSITE_FIELD"
	// ErrSelectionOnScalar: a scalar field was selected with a sub-selection.
	ErrSelectionOnScalar ErrorKind = "SELECTION_ON_SCALAR_FIELD"
	// ErrFieldsConflict: two selections share a response name but differ in field
	// or arguments.
	ErrFieldsConflict ErrorKind = "FIELDS_CONFLICT"
	// ErrDepthLimit: the selection nests deeper than the executor allows.
	ErrDepthLimit ErrorKind = "DEPTH_LIMIT_EXCEEDED"
	// ErrInvalidRequest: the document could not be turned into an operation.
	ErrInvalidRequest ErrorKind = "INVALID_REQUEST"
	// ErrResolver: a resolver or leaf serializer failed. Only this kind leaves
	// partial data in the result.
	ErrResolver ErrorKind = "RESOLVER_ERROR"
)

// GraphQLError represents an error that occurred during planning or execution
type GraphQLError struct {
	Message    string         `json:"message"`
	Path       Path           `json:"path,omitempty"`
	Kind       ErrorKind      `json:"-"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

func (e GraphQLError) Error() string {
	if len(e.Path) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (at %s)", e.Message, e.Path)
}

func newError(kind ErrorKind, path Path, format string, args ...any) *GraphQLError {
	return &GraphQLError{
		Message:    fmt.Sprintf(format, args...),
		Path:       path,
		Kind:       kind,
		Extensions: map[string]any{"code": string(kind)},
	}
}

// IsKind reports whether err is a GraphQLError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var ge GraphQLError
	if errors.As(err, &ge) {
		return ge.Kind == kind
	}
	var gp *GraphQLError
	if errors.As(err, &gp) && gp != nil {
		return gp.Kind == kind
	}
	return false
}

// ExecutionResult represents the result of executing an operation.
// Data is nil when the operation was rejected before any field was resolved.
type ExecutionResult struct {
	Data   map[string]any `json:"data"`
	Errors []GraphQLError `json:"errors,omitempty"`
}
