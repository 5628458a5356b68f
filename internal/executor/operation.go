package executor

// OperationKind selects the root type an operation starts from.
type OperationKind string

const (
	Query    OperationKind = "query"
	Mutation OperationKind = "mutation"
)

// Selection requests one field, optionally with arguments and, for object and
// list-of-object fields, a nested selection.
//
// TypeCondition restricts the selection to objects of the named type. It is set
// for fields that came from a fragment.
type Selection struct {
	Name          string
	Alias         string
	Args          map[string]any
	TypeCondition string
	Selection     SelectionSet
}

// SelectionSet is an ordered list of selections.
type SelectionSet []*Selection

// ResponseName is the key the field's value is written under.
func (s *Selection) ResponseName() string {
	if s.Alias != "" {
		return s.Alias
	}
	return s.Name
}

// Select builds a Selection for name with the given nested selections.
func Select(name string, sub ...*Selection) *Selection {
	return &Selection{Name: name, Selection: sub}
}

// WithArgs sets the arguments of s and returns it.
func (s *Selection) WithArgs(args map[string]any) *Selection {
	s.Args = args
	return s
}

// As sets the alias of s and returns it.
func (s *Selection) As(alias string) *Selection {
	s.Alias = alias
	return s
}

// Operation is a decoded request: its kind and the selection on the root type.
type Operation struct {
	Kind      OperationKind
	Name      string
	Selection SelectionSet
}
