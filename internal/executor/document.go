package executor

import (
	"strconv"
	"strings"

	language "github.com/hanpama/bookgraph/internal/language"
)

// FromDocument turns a parsed GraphQL document into an Operation.
//
// The operation is chosen by name, or by uniqueness when operationName is empty.
// Variables are substituted into arguments, fragments are flattened into the
// selection with their type conditions, and fields excluded by @skip or @include
// are dropped. Argument types are not checked here; that happens when the
// operation is planned.
func FromDocument(doc *language.QueryDocument, operationName string, variables map[string]any) (*Operation, *GraphQLError) {
	opDef := getOperation(doc, operationName)
	if opDef == nil {
		if operationName == "" && len(doc.Operations) > 1 {
			return nil, newError(ErrInvalidRequest, nil, "must provide operation name if query contains multiple operations")
		}
		return nil, newError(ErrInvalidRequest, nil, "operation not found")
	}

	var kind OperationKind
	switch opDef.Operation {
	case language.Query:
		kind = Query
	case language.Mutation:
		kind = Mutation
	default:
		return nil, newError(ErrInvalidRequest, nil, "unsupported operation type: %s", opDef.Operation)
	}

	vars, gerr := coerceVariableValues(opDef, variables)
	if gerr != nil {
		return nil, gerr
	}

	d := &decoder{document: doc, variables: vars, activeFragments: make(map[string]bool)}
	return &Operation{
		Kind:      kind,
		Name:      opDef.Name,
		Selection: d.collectSelections(opDef.SelectionSet, ""),
	}, nil
}

// getOperation retrieves the operation from the document
func getOperation(document *language.QueryDocument, operationName string) *language.OperationDefinition {
	if operationName == "" && len(document.Operations) == 1 {
		return document.Operations[0]
	}
	for _, op := range document.Operations {
		if op.Name == operationName {
			return op
		}
	}
	return nil
}

// coerceVariableValues applies defaults and checks that required variables are
// present. Scalar coercion is left to argument coercion.
func coerceVariableValues(operation *language.OperationDefinition, variableValues map[string]any) (map[string]any, *GraphQLError) {
	coerced := make(map[string]any)
	for _, varDef := range operation.VariableDefinitions {
		name := varDef.Variable
		t := varDef.Type
		val, ok := variableValues[name]
		if !ok {
			if v2, ok2 := variableValues[strings.TrimPrefix(name, "$")]; ok2 {
				val = v2
				ok = true
			}
		}
		if !ok {
			if varDef.DefaultValue != nil {
				val = astValueToGo(varDef.DefaultValue)
			} else if t.NonNull {
				return nil, newError(ErrInvalidRequest, nil, "variable $%s of required type %s was not provided", name, t.String())
			} else {
				continue
			}
		}
		if val == nil && t.NonNull {
			return nil, newError(ErrInvalidRequest, nil, "variable $%s of type %s cannot be null", name, t.String())
		}
		coerced[name] = val
	}
	return coerced, nil
}

type decoder struct {
	document  *language.QueryDocument
	variables map[string]any
	// fragments currently being expanded, to stop spread cycles
	activeFragments map[string]bool
}

func (d *decoder) collectSelections(set language.SelectionSet, typeCondition string) SelectionSet {
	var out SelectionSet
	for _, selection := range set {
		switch sel := selection.(type) {
		case *language.Field:
			if !d.shouldIncludeNode(sel.Directives) {
				continue
			}
			alias := sel.Alias
			if alias == sel.Name {
				alias = ""
			}
			out = append(out, &Selection{
				Name:          sel.Name,
				Alias:         alias,
				Args:          d.arguments(sel.Arguments),
				TypeCondition: typeCondition,
				Selection:     d.collectSelections(sel.SelectionSet, ""),
			})

		case *language.InlineFragment:
			if !d.shouldIncludeNode(sel.Directives) {
				continue
			}
			cond := sel.TypeCondition
			if cond == "" {
				cond = typeCondition
			}
			out = append(out, d.collectSelections(sel.SelectionSet, cond)...)

		case *language.FragmentSpread:
			if !d.shouldIncludeNode(sel.Directives) || d.activeFragments[sel.Name] {
				continue
			}
			fragmentDef := d.document.Fragments.ForName(sel.Name)
			if fragmentDef == nil || !d.shouldIncludeNode(fragmentDef.Directives) {
				continue
			}
			cond := fragmentDef.TypeCondition
			if cond == "" {
				cond = typeCondition
			}
			d.activeFragments[sel.Name] = true
			out = append(out, d.collectSelections(fragmentDef.SelectionSet, cond)...)
			delete(d.activeFragments, sel.Name)
		}
	}
	return out
}

func (d *decoder) arguments(list language.ArgumentList) map[string]any {
	if len(list) == 0 {
		return nil
	}
	args := make(map[string]any, len(list))
	for _, arg := range list {
		args[arg.Name] = valueFromASTWithVars(arg.Value, d.variables)
	}
	return args
}

// shouldIncludeNode checks if a node should be included based on directives
func (d *decoder) shouldIncludeNode(directives language.DirectiveList) bool {
	if skip := directives.ForName("skip"); skip != nil {
		if b, ok := d.directiveArgument(skip, "if").(bool); ok && b {
			return false
		}
	}
	if include := directives.ForName("include"); include != nil {
		if b, ok := d.directiveArgument(include, "if").(bool); ok && !b {
			return false
		}
	}
	return true
}

func (d *decoder) directiveArgument(directive *language.Directive, name string) any {
	for _, arg := range directive.Arguments {
		if arg.Name == name {
			return valueFromASTWithVars(arg.Value, d.variables)
		}
	}
	return nil
}

// valueFromASTWithVars converts an AST value to a runtime value with variable substitution
func valueFromASTWithVars(value *language.Value, variableValues map[string]any) any {
	if value == nil {
		return nil
	}
	if value.Kind == language.Variable {
		if v, ok := variableValues[value.Raw]; ok {
			return v
		}
		return nil
	}
	switch value.Kind {
	case language.ListValue:
		out := make([]any, len(value.Children))
		for i, c := range value.Children {
			out[i] = valueFromASTWithVars(c.Value, variableValues)
		}
		return out
	case language.ObjectValue:
		m := make(map[string]any, len(value.Children))
		for _, f := range value.Children {
			m[f.Name] = valueFromASTWithVars(f.Value, variableValues)
		}
		return m
	}
	return astValueToGo(value)
}

// astValueToGo converts a constant AST value to a Go value
func astValueToGo(value *language.Value) any {
	if value == nil {
		return nil
	}
	switch value.Kind {
	case language.IntValue:
		if iv, err := strconv.Atoi(value.Raw); err == nil {
			return iv
		}
		// out of range for int; argument coercion rejects it
		fv, _ := strconv.ParseFloat(value.Raw, 64)
		return fv
	case language.FloatValue:
		fv, _ := strconv.ParseFloat(value.Raw, 64)
		return fv
	case language.StringValue, language.BlockValue:
		return value.Raw
	case language.BooleanValue:
		return value.Raw == "true"
	case language.NullValue:
		return nil
	case language.EnumValue:
		return EnumValue(value.Raw)
	case language.ListValue:
		out := make([]any, len(value.Children))
		for i, c := range value.Children {
			out[i] = astValueToGo(c.Value)
		}
		return out
	case language.ObjectValue:
		m := make(map[string]any)
		for _, f := range value.Children {
			m[f.Name] = astValueToGo(f.Value)
		}
		return m
	default:
		return nil
	}
}
