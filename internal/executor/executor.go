package executor

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"golang.org/x/sync/errgroup"

	language "github.com/hanpama/bookgraph/internal/language"
	schema "github.com/hanpama/bookgraph/internal/schema"
)

// DefaultMaxDepth bounds selection nesting unless WithMaxDepth says otherwise.
const DefaultMaxDepth = 12

type Options struct {
	// MaxDepth is the deepest field nesting accepted; root fields are at depth 1.
	// 0 disables the bound.
	MaxDepth int

	// Parallelism is the number of sibling query fields resolved concurrently.
	// Values below 2 resolve everything on the calling goroutine.
	Parallelism int
}

type Option func(*Options)

func WithMaxDepth(n int) Option    { return func(o *Options) { o.MaxDepth = n } }
func WithParallelism(n int) Option { return func(o *Options) { o.Parallelism = n } }

type Executor struct {
	schema *schema.Schema
	opt    Options
}

func NewExecutor(schema *schema.Schema, opts ...Option) *Executor {
	op := Options{MaxDepth: DefaultMaxDepth}
	for _, f := range opts {
		f(&op)
	}
	return &Executor{schema: schema, opt: op}
}

// Schema returns the schema the executor resolves against.
func (e *Executor) Schema() *schema.Schema { return e.schema }

// executionState holds the state of one operation
type executionState struct {
	context context.Context
	mu      sync.Mutex
	errors  []GraphQLError
}

// Helper function to add an error to the execution state
func (state *executionState) addError(kind ErrorKind, path Path, message string) {
	state.mu.Lock()
	defer state.mu.Unlock()
	state.errors = append(state.errors, *newError(kind, path, "%s", message))
}

// ExecuteRequest decodes the selected operation of document and executes it.
func (e *Executor) ExecuteRequest(
	ctx context.Context,
	document *language.QueryDocument,
	operationName string,
	variableValues map[string]any,
) *ExecutionResult {
	op, gerr := FromDocument(document, operationName, variableValues)
	if gerr != nil {
		return &ExecutionResult{Errors: []GraphQLError{*gerr}}
	}
	return e.Execute(ctx, op)
}

// ExecuteField executes an operation with a single root field.
func (e *Executor) ExecuteField(
	ctx context.Context,
	kind OperationKind,
	field string,
	args map[string]any,
	selection SelectionSet,
) *ExecutionResult {
	root := &Selection{Name: field, Args: args, Selection: selection}
	return e.Execute(ctx, &Operation{Kind: kind, Selection: SelectionSet{root}})
}

// Execute plans op against the schema and, if the plan is valid, resolves it.
//
// Planning checks every selected field, argument and sub-selection before any
// resolver runs. A planning error rejects the whole operation: the result carries
// that single error and no data, and for mutations nothing has been written.
// Absent values (a lookup that matched nothing) are written as nil and are not
// errors. Resolver failures are recorded at their path with a nil value while
// the other fields complete.
func (e *Executor) Execute(ctx context.Context, op *Operation) *ExecutionResult {
	var rootType *schema.Type
	switch op.Kind {
	case Query:
		rootType = e.schema.GetQueryType()
	case Mutation:
		rootType = e.schema.GetMutationType()
	default:
		return &ExecutionResult{Errors: []GraphQLError{*newError(ErrInvalidRequest, nil, "unsupported operation type: %s", op.Kind)}}
	}
	if rootType == nil {
		return &ExecutionResult{Errors: []GraphQLError{*newError(ErrInvalidRequest, nil, "root type not found for %s operation", op.Kind)}}
	}

	p := &planner{schema: e.schema, maxDepth: e.opt.MaxDepth}
	fields, gerr := p.planSelectionSet(rootType, op.Selection, Path{}, 1)
	if gerr != nil {
		return &ExecutionResult{Errors: []GraphQLError{*gerr}}
	}

	state := &executionState{context: ctx}
	var data map[string]any
	if op.Kind == Mutation {
		// Root mutation fields run one after another in document order.
		data = e.executeFieldsSerially(state, rootType, fields, nil, Path{})
	} else {
		data = e.executeFields(state, rootType, fields, nil, Path{})
	}
	return &ExecutionResult{Data: data, Errors: state.errors}
}

func (e *Executor) executeFieldsSerially(state *executionState, objectType *schema.Type, fields []*plannedField, source any, path Path) map[string]any {
	resultMap := make(map[string]any, len(fields))
	for _, f := range fields {
		resultMap[f.responseName] = e.executeField(state, objectType, f, source, appendPath(path, f.responseName))
	}
	return resultMap
}

// executeFields resolves sibling fields, concurrently when Parallelism allows.
func (e *Executor) executeFields(state *executionState, objectType *schema.Type, fields []*plannedField, source any, path Path) map[string]any {
	if e.opt.Parallelism < 2 || len(fields) < 2 {
		return e.executeFieldsSerially(state, objectType, fields, source, path)
	}

	values := make([]any, len(fields))
	var g errgroup.Group
	g.SetLimit(e.opt.Parallelism)
	for i, f := range fields {
		g.Go(func() error {
			values[i] = e.executeField(state, objectType, f, source, appendPath(path, f.responseName))
			return nil
		})
	}
	_ = g.Wait()

	resultMap := make(map[string]any, len(fields))
	for i, f := range fields {
		resultMap[f.responseName] = values[i]
	}
	return resultMap
}

func (e *Executor) executeField(state *executionState, objectType *schema.Type, f *plannedField, source any, path Path) any {
	if f.typename {
		return objectType.Name
	}
	if err := state.context.Err(); err != nil {
		state.addError(ErrResolver, path, err.Error())
		return nil
	}
	if f.def.Resolve == nil {
		state.addError(ErrResolver, path, fmt.Sprintf("no resolver for field '%s.%s'", objectType.Name, f.def.Name))
		return nil
	}
	value, err := f.def.Resolve(state.context, source, f.args)
	if err != nil {
		state.addError(ErrResolver, path, err.Error())
		return nil
	}
	return e.completeValue(state, f, value, path)
}

// completeValue shapes a resolved value according to the field definition
func (e *Executor) completeValue(state *executionState, f *plannedField, result any, path Path) any {
	if isNullish(result) {
		return nil
	}
	if f.def.Kind == schema.FieldKindList {
		return e.completeListValue(state, f, result, path)
	}
	return e.completeItem(state, f, result, path)
}

// completeListValue completes each element with index-aware paths
func (e *Executor) completeListValue(state *executionState, f *plannedField, result any, path Path) any {
	var items []any
	if direct, ok := result.([]any); ok {
		items = direct
	} else {
		rv := reflect.ValueOf(result)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			state.addError(ErrResolver, path, fmt.Sprintf("Expected list value, got %T", result))
			return nil
		}
		items = make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			items[i] = rv.Index(i).Interface()
		}
	}

	completed := make([]any, len(items))
	for i, item := range items {
		if isNullish(item) {
			continue
		}
		completed[i] = e.completeItem(state, f, item, appendPath(path, i))
	}
	return completed
}

func (e *Executor) completeItem(state *executionState, f *plannedField, item any, path Path) any {
	if f.resultType.Kind == schema.TypeKindObject {
		return e.executeFields(state, f.resultType, f.children, item, path)
	}
	if f.resultType.Serialize == nil {
		return item
	}
	serialized, err := f.resultType.Serialize(item)
	if err != nil {
		state.addError(ErrResolver, path, err.Error())
		return nil
	}
	return serialized
}

// isNullish returns true for nil interfaces and typed nils (map, slice, ptr, interface)
func isNullish(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Interface, reflect.Ptr, reflect.Map, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
