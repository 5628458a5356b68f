package schema

import (
	"fmt"
	"strconv"
	"strings"
)

// Render produces SDL from the Schema.
// Deterministic ordering: the schema block first, then types sorted by name.
// Built-in scalars and introspection types (names starting with "__") are omitted.
func Render(s *Schema) string {
	if s == nil {
		return ""
	}
	var b strings.Builder

	renderSchemaBlock(&b, s)

	for _, name := range s.TypeNames() {
		typ := s.Types[name]
		if IsBuiltin(typ) || strings.HasPrefix(name, "__") {
			continue
		}
		switch typ.Kind {
		case TypeKindScalar:
			renderScalar(&b, typ)
		case TypeKindObject:
			renderObject(&b, typ)
		}
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

// ----- render helpers -----

func renderSchemaBlock(b *strings.Builder, s *Schema) {
	renderDescription(b, s.Description, "")
	b.WriteString("schema {\n")
	if s.QueryType != "" {
		b.WriteString("  query: ")
		b.WriteString(s.QueryType)
		b.WriteString("\n")
	}
	if s.MutationType != "" {
		b.WriteString("  mutation: ")
		b.WriteString(s.MutationType)
		b.WriteString("\n")
	}
	b.WriteString("}\n\n")
}

func renderDescription(b *strings.Builder, desc, indent string) {
	if desc == "" {
		return
	}
	b.WriteString(indent)
	b.WriteString("\"\"\"\n")
	// Escape quotes in description
	escaped := strings.ReplaceAll(desc, "\"", "\\\"")
	b.WriteString(indent)
	b.WriteString(escaped)
	b.WriteString("\n")
	b.WriteString(indent)
	b.WriteString("\"\"\"\n")
}

func renderScalar(b *strings.Builder, typ *Type) {
	renderDescription(b, typ.Description, "")
	b.WriteString("scalar ")
	b.WriteString(typ.Name)
	b.WriteString("\n\n")
}

func renderObject(b *strings.Builder, typ *Type) {
	renderDescription(b, typ.Description, "")
	b.WriteString("type ")
	b.WriteString(typ.Name)
	b.WriteString(" {\n")
	for _, field := range typ.Fields() {
		renderField(b, field)
	}
	b.WriteString("}\n\n")
}

func renderField(b *strings.Builder, field *Field) {
	renderDescription(b, field.Description, "  ")
	b.WriteString("  ")
	b.WriteString(field.Name)
	if len(field.Arguments) > 0 {
		b.WriteString("(")
		for i, arg := range field.Arguments {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(arg.Name)
			b.WriteString(": ")
			b.WriteString(RenderArgumentType(arg))
			if arg.DefaultValue != nil {
				b.WriteString(" = ")
				b.WriteString(RenderValue(arg.DefaultValue))
			}
		}
		b.WriteString(")")
	}
	b.WriteString(": ")
	b.WriteString(RenderFieldType(field))

	if field.IsDeprecated {
		b.WriteString(" @deprecated")
		if field.DeprecationReason != "" {
			b.WriteString("(reason: \"")
			b.WriteString(field.DeprecationReason)
			b.WriteString("\")")
		}
	}

	b.WriteString("\n")
}

// RenderFieldType renders the SDL type expression of a field, e.g. "[Book]".
func RenderFieldType(f *Field) string {
	out := f.Type
	if f.Kind == FieldKindList {
		out = "[" + out + "]"
	}
	if f.NonNull {
		out += "!"
	}
	return out
}

// RenderArgumentType renders the SDL type expression of an argument, e.g. "Int!".
func RenderArgumentType(a *Argument) string {
	if a.Required {
		return a.Type + "!"
	}
	return a.Type
}

// RenderValue renders a default value literal.
func RenderValue(value any) string {
	if value == nil {
		return "null"
	}

	switch v := value.(type) {
	case string:
		return strconv.Quote(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}
