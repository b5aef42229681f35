package pattern

import (
	"strconv"
	"strings"
)

// Format renders p in a compact, grammar-like notation for diagnostics.
func Format(p Pattern) string {
	var b strings.Builder
	format(&b, p)
	return b.String()
}

// FormatNameClass renders a name class.
func FormatNameClass(nc NameClass) string {
	switch nc := nc.(type) {
	case SimpleName:
		return nc.Name.String()
	case AnyName:
		if nc.Except != nil {
			return "* - " + FormatNameClass(nc.Except)
		}
		return "*"
	case NsName:
		s := "{" + nc.Namespace + "}*"
		if nc.Except != nil {
			s += " - " + FormatNameClass(nc.Except)
		}
		return s
	case NameClassChoice:
		parts := make([]string, 0, len(nc.Classes))
		for _, c := range nc.Classes {
			parts = append(parts, FormatNameClass(c))
		}
		return "(" + strings.Join(parts, " | ") + ")"
	case nil:
		return "<nil>"
	default:
		return "?"
	}
}

func format(b *strings.Builder, p Pattern) {
	switch p := p.(type) {
	case *Element:
		b.WriteString("element ")
		b.WriteString(FormatNameClass(p.name))
		b.WriteString(" { ")
		format(b, p.content)
		b.WriteString(" }")
	case *Attribute:
		b.WriteString("attribute ")
		b.WriteString(FormatNameClass(p.name))
		b.WriteString(" { ")
		format(b, p.value)
		b.WriteString(" }")
	case *Group:
		binary(b, p.left, p.right, ", ")
	case *Choice:
		binary(b, p.left, p.right, " | ")
	case *Interleave:
		binary(b, p.left, p.right, " & ")
	case *After:
		b.WriteString("after(")
		format(b, p.left)
		b.WriteString("; ")
		format(b, p.right)
		b.WriteString(")")
	case *OneOrMore:
		b.WriteString("(")
		format(b, p.operand)
		b.WriteString(")+")
	case *Value:
		b.WriteString(strconv.Quote(p.literal))
	case *Text:
		b.WriteString("text")
	case *Empty:
		b.WriteString("empty")
	case *NotAllowed:
		b.WriteString("notAllowed")
	case *Ref:
		b.WriteString(p.name)
	case nil:
		b.WriteString("<nil>")
	default:
		b.WriteString("?")
	}
}

func binary(b *strings.Builder, left, right Pattern, op string) {
	b.WriteString("(")
	format(b, left)
	b.WriteString(op)
	format(b, right)
	b.WriteString(")")
}
