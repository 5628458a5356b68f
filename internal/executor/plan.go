package executor

import (
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	schema "github.com/hanpama/bookgraph/internal/schema"
)

const typenameField = "__typename"

// plannedField is a selection that has been checked against the schema: its
// definition is known, its arguments are coerced, and its children are planned
// against the field's result type.
type plannedField struct {
	responseName string
	def          *schema.Field
	resultType   *schema.Type
	args         map[string]any
	children     []*plannedField
	typename     bool
}

// collectedFieldMap preserves field order from the original selection
type collectedFieldMap struct {
	fields []collectedField
	index  map[string]int
}

type collectedField struct {
	ResponseName string
	Selections   []*Selection
}

func newCollectedFieldMap() *collectedFieldMap {
	return &collectedFieldMap{
		fields: make([]collectedField, 0),
		index:  make(map[string]int),
	}
}

func (cfm *collectedFieldMap) add(responseName string, sel *Selection) {
	if idx, exists := cfm.index[responseName]; exists {
		cfm.fields[idx].Selections = append(cfm.fields[idx].Selections, sel)
		return
	}
	cfm.index[responseName] = len(cfm.fields)
	cfm.fields = append(cfm.fields, collectedField{
		ResponseName: responseName,
		Selections:   []*Selection{sel},
	})
}

// collectFields groups the selections that apply to objectType by response name.
func collectFields(objectType *schema.Type, set SelectionSet) *collectedFieldMap {
	grouped := newCollectedFieldMap()
	for _, sel := range set {
		if sel == nil {
			continue
		}
		if sel.TypeCondition != "" && sel.TypeCondition != objectType.Name {
			continue
		}
		grouped.add(sel.ResponseName(), sel)
	}
	return grouped
}

// conflictingSelection returns the first selection in sels that cannot share a
// response name with sels[0]: it names another field or passes other arguments.
func conflictingSelection(sels []*Selection) *Selection {
	first := sels[0]
	for _, s := range sels[1:] {
		if s.Name != first.Name || !cmp.Equal(first.Args, s.Args, cmpopts.EquateEmpty()) {
			return s
		}
	}
	return nil
}

// mergeSelectionSets merges the nested selections of fields sharing a response name
func mergeSelectionSets(sels []*Selection) SelectionSet {
	var merged SelectionSet
	for _, s := range sels {
		merged = append(merged, s.Selection...)
	}
	return merged
}

type planner struct {
	schema   *schema.Schema
	maxDepth int
}

// planSelectionSet validates set against objectType. depth is the nesting level of
// the fields in set; root fields are at depth 1. The first violation found aborts
// planning.
func (p *planner) planSelectionSet(objectType *schema.Type, set SelectionSet, path Path, depth int) ([]*plannedField, *GraphQLError) {
	grouped := collectFields(objectType, set)
	planned := make([]*plannedField, 0, len(grouped.fields))

	for _, cf := range grouped.fields {
		first := cf.Selections[0]
		fieldPath := appendPath(path, cf.ResponseName)
		if other := conflictingSelection(cf.Selections); other != nil {
			if other.Name != first.Name {
				return nil, newError(ErrFieldsConflict, fieldPath,
					"Fields '%s' conflict because '%s' and '%s' are different fields", cf.ResponseName, first.Name, other.Name)
			}
			return nil, newError(ErrFieldsConflict, fieldPath,
				"Fields '%s' conflict because they have differing arguments", cf.ResponseName)
		}
		sub := mergeSelectionSets(cf.Selections)

		if first.Name == typenameField {
			if len(sub) > 0 {
				return nil, newError(ErrSelectionOnScalar, fieldPath,
					"Field '%s' must not have a selection since type 'String' has no subfields", typenameField)
			}
			planned = append(planned, &plannedField{responseName: cf.ResponseName, typename: true})
			continue
		}

		def := objectType.Field(first.Name)
		if def == nil {
			return nil, newError(ErrUnknownField, fieldPath,
				"Cannot query field '%s' on type '%s'", first.Name, objectType.Name)
		}
		if p.maxDepth > 0 && depth > p.maxDepth {
			return nil, newError(ErrDepthLimit, fieldPath,
				"Selection exceeds the maximum depth of %d", p.maxDepth)
		}

		args, gerr := coerceArgumentValues(objectType, def, first.Args, fieldPath)
		if gerr != nil {
			return nil, gerr
		}

		resultType := p.schema.TypeOf(def)
		if resultType == nil {
			return nil, newError(ErrUnknownField, fieldPath,
				"Unknown type '%s' for field '%s.%s'", def.Type, objectType.Name, def.Name)
		}

		pf := &plannedField{responseName: cf.ResponseName, def: def, resultType: resultType, args: args}
		switch resultType.Kind {
		case schema.TypeKindObject:
			if len(sub) == 0 {
				return nil, newError(ErrEmptySelection, fieldPath,
					"Field '%s' of type '%s' must have a selection of subfields", def.Name, schema.RenderFieldType(def))
			}
			children, gerr := p.planSelectionSet(resultType, sub, fieldPath, depth+1)
			if gerr != nil {
				return nil, gerr
			}
			pf.children = children
		default:
			if len(sub) > 0 {
				return nil, newError(ErrSelectionOnScalar, fieldPath,
					"Field '%s' must not have a selection since type '%s' has no subfields", def.Name, schema.RenderFieldType(def))
			}
		}
		planned = append(planned, pf)
	}
	return planned, nil
}
