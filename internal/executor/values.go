package executor

import (
	"fmt"
	"math"
	"sort"

	schema "github.com/hanpama/bookgraph/internal/schema"
)

// coerceArgumentValues checks the supplied arguments against the field's declared
// arguments and coerces them to their scalar types. Optional arguments that were
// not supplied and have no default are left out of the result, so a resolver sees
// them as absent.
func coerceArgumentValues(
	objectType *schema.Type,
	fieldDef *schema.Field,
	arguments map[string]any,
	path Path,
) (map[string]any, *GraphQLError) {
	coerced := make(map[string]any, len(fieldDef.Arguments))

	names := make([]string, 0, len(arguments))
	for name := range arguments {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		argDef := fieldDef.Argument(name)
		if argDef == nil {
			return nil, newError(ErrInvalidArguments, path,
				"Unknown argument '%s' on field '%s.%s'", name, objectType.Name, fieldDef.Name)
		}
		val := arguments[name]
		if val == nil {
			if argDef.Required {
				return nil, newError(ErrInvalidArguments, path,
					"argument '%s' of type %s cannot be null", name, schema.RenderArgumentType(argDef))
			}
			continue
		}
		cv, err := coerceValue(val, argDef.Type)
		if err != nil {
			return nil, newError(ErrInvalidArguments, path,
				"argument '%s' cannot be coerced: %v", name, err)
		}
		coerced[name] = cv
	}

	for _, argDef := range fieldDef.Arguments {
		if _, ok := coerced[argDef.Name]; ok {
			continue
		}
		if argDef.DefaultValue != nil {
			coerced[argDef.Name] = argDef.DefaultValue
		} else if argDef.Required {
			return nil, newError(ErrInvalidArguments, path,
				"argument '%s' of required type %s was not provided", argDef.Name, schema.RenderArgumentType(argDef))
		}
	}
	return coerced, nil
}

// EnumValue is an enum literal taken from a document. It is kept apart from
// string so that `name: Foo` is not accepted where a String is expected.
type EnumValue string

// coerceValue coerces a non-null input value to the named scalar type.
func coerceValue(value any, scalar string) (any, error) {
	switch scalar {
	case "Int":
		return coerceToInt(value)
	case "String":
		return coerceToString(value)
	case "Boolean":
		return coerceToBoolean(value)
	default:
		return value, nil
	}
}

// Input coercion is strict: a string is never read as a number and a number is
// never read as a string.
func coerceToInt(value any) (any, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int32:
		return int(v), nil
	case int64:
		if v <= math.MaxInt32 && v >= math.MinInt32 {
			return int(v), nil
		}
	case float64:
		// JSON variables decode numbers as float64.
		if v == math.Trunc(v) && v <= math.MaxInt32 && v >= math.MinInt32 {
			return int(v), nil
		}
	}
	return nil, fmt.Errorf("cannot coerce %v (%T) to Int", value, value)
}

func coerceToString(value any) (any, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case EnumValue:
		return nil, fmt.Errorf("enum value %s is not a String; quote it", string(v))
	}
	return nil, fmt.Errorf("cannot coerce %v (%T) to String", value, value)
}

func coerceToBoolean(value any) (any, error) {
	if v, ok := value.(bool); ok {
		return v, nil
	}
	return nil, fmt.Errorf("cannot coerce %v (%T) to Boolean", value, value)
}
