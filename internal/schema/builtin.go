package schema

import (
	"fmt"
	"math"
)

var StringType = NewScalarType(
	"String",
	"The `String` scalar type represents textual data, represented as UTF-8 character sequences.",
	serializeString,
)

var IntType = NewScalarType(
	"Int",
	"The `Int` scalar type represents non-fractional signed whole numeric values.",
	serializeInt,
)

var BooleanType = NewScalarType(
	"Boolean",
	"The `Boolean` scalar type represents `true` or `false`.",
	serializeBoolean,
)

// AddBuiltins registers the built-in scalars on s.
func AddBuiltins(s *Schema) *Schema {
	return s.AddType(StringType).AddType(IntType).AddType(BooleanType)
}

// IsBuiltin reports whether t is one of the built-in scalars.
func IsBuiltin(t *Type) bool {
	return t == StringType || t == IntType || t == BooleanType
}

func serializeString(v any) (any, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case fmt.Stringer:
		return s.String(), nil
	}
	return nil, fmt.Errorf("String cannot represent value: %v", v)
}

func serializeInt(v any) (any, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		if n > math.MaxInt32 || n < math.MinInt32 {
			return nil, fmt.Errorf("Int cannot represent non 32-bit signed integer value: %d", n)
		}
		return int(n), nil
	case float64:
		if n == math.Trunc(n) {
			return int(n), nil
		}
	}
	return nil, fmt.Errorf("Int cannot represent non-integer value: %v", v)
}

func serializeBoolean(v any) (any, error) {
	if b, ok := v.(bool); ok {
		return b, nil
	}
	return nil, fmt.Errorf("Boolean cannot represent a non boolean value: %v", v)
}
